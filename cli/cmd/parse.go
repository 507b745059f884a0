package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/egg/lang"
)

// Parse prints the syntax tree of a program without evaluating it.
type Parse struct {
	Format string   `arg:"" default:"tree" enum:"tree,json,yaml,egg" help:"Tree format (${enum})."`
	Files  []string `arg:"" help:"Program file(s), or '-' for stdin." optional:"" type:"path"`
	Expr   string   `help:"Program text, parsed after any files." placeholder:"PROGRAM" short:"e"`
	Indent int      `default:"2" help:"Indent width of JSON and YAML output."`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	std := stdioFrom(ctx)

	text, err := programText(ctx, p.Expr, p.Files)
	if err != nil {
		return err
	}

	node, err := lang.Parse(text)
	if err != nil {
		if p.Format == formatJSON || p.Format == formatYAML {
			f := lang.FailureOf(err)
			if rerr := renderStructured(ctx, std.Out, p.Format, report{Failure: &f}, p.Indent); rerr != nil {
				return ErrRender.Wrap(rerr)
			}
		} else if _, werr := fmt.Fprintln(std.Err, lang.FailureOf(err)); werr != nil {
			return ErrRender.Wrap(werr)
		}

		return ErrProgram.With(slog.String("command", "parse")).Wrap(err)
	}

	switch p.Format {
	case formatTree:
		lang.PrintTree(std.Out, node)

	case formatEgg:
		_, err = fmt.Fprintln(std.Out, lang.FormatNode(node))

	default:
		err = renderStructured(ctx, std.Out, p.Format, lang.NodeToMap(node), p.Indent)
	}

	if err != nil {
		return ErrRender.With(slog.String("format", p.Format)).Wrap(err)
	}

	return nil
}
