package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/egg/lang"
	"github.com/ardnew/egg/log"
	"github.com/ardnew/egg/pkg"
)

// Output formats of the run and parse commands.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTree = "tree"
	formatEgg  = "egg"
)

// Run evaluates a program and prints its result.
type Run struct {
	Expr   string   `help:"Program text, evaluated after any files."       placeholder:"PROGRAM" short:"e"`
	Output string   `default:"text" enum:"text,json,yaml" help:"Result format (${enum})." short:"o"`
	Print  bool     `default:"true" help:"Echo printed values to standard output." negatable:""`
	Indent int      `default:"2" help:"Indent width of JSON and YAML output."`
	Files  []string `arg:"" help:"Program file(s), or '-' for stdin." optional:"" type:"path"`
}

// report is the structured result of a run.
type report struct {
	Result  any           `json:"result,omitempty"  yaml:"result,omitempty"`
	Logs    []any         `json:"logs,omitempty"    yaml:"logs,omitempty"`
	Failure *lang.Failure `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	std := stdioFrom(ctx)

	text, err := programText(ctx, r.Expr, r.Files)
	if err != nil {
		return err
	}

	// Structured formats carry the print log in the report instead.
	var echo io.Writer
	if r.Print && r.Output == formatText {
		echo = std.Out
	}

	in := newInterpreter(ctx, echo)

	value, runErr := in.RunContext(ctx, text)

	log.DebugContext(ctx, "run complete",
		slog.Int("source_length", len(text)),
		slog.Int("printed", len(in.Logs())),
		slog.Bool("ok", runErr == nil),
	)

	if err := r.render(ctx, std, in, value, runErr); err != nil {
		return ErrRender.With(slog.String("format", r.Output)).Wrap(err)
	}

	if runErr != nil {
		return ErrProgram.Wrap(runErr)
	}

	return nil
}

func (r *Run) render(
	ctx context.Context,
	std Stdio,
	in *lang.Interpreter,
	value lang.Value,
	runErr error,
) error {
	if r.Output == formatText {
		if runErr != nil {
			_, err := fmt.Fprintln(std.Err, lang.FailureOf(runErr))

			return err
		}

		_, err := fmt.Fprintln(std.Out, lang.FormatValue(value))

		return err
	}

	var rep report

	if runErr != nil {
		f := lang.FailureOf(runErr)
		rep.Failure = &f
	} else {
		rep.Result = lang.ToNative(value)
	}

	if r.Print {
		for _, v := range in.Logs() {
			rep.Logs = append(rep.Logs, lang.ToNative(v))
		}
	}

	return renderStructured(ctx, std.Out, r.Output, rep, r.Indent)
}

// renderStructured writes v to w in the given structured format.
func renderStructured(
	ctx context.Context,
	w io.Writer,
	format string,
	v any,
	indent int,
) error {
	switch format {
	case formatJSON:
		if err := lang.FormatJSON(ctx, w, v, indent); err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

	case formatYAML:
		if err := lang.FormatYAML(ctx, w, v, indent); err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

	default:
		return pkg.ErrInvalidFormat.Wrapf("%q", format)
	}

	return nil
}

