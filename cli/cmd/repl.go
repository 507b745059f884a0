package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/egg/cli/cmd/repl"
	"github.com/ardnew/egg/log"
	"github.com/ardnew/egg/pkg"
)

// Repl starts an interactive session.
type Repl struct {
	History string   `default:"${cache}/history.utf8" help:"History file." type:"path"`
	Files   []string `arg:"" help:"Program file(s) evaluated in the session before the prompt." optional:"" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	std := stdioFrom(ctx)
	in := newInterpreter(ctx, nil)

	if len(r.Files) > 0 {
		text, err := programText(ctx, "", r.Files)
		if err != nil {
			return err
		}

		if _, err := in.EvalIn(ctx, text, in.Session()); err != nil {
			return pkg.ErrEval.Wrap(err)
		}

		log.DebugContext(ctx, "repl preloaded",
			slog.Int("files", len(r.Files)),
			slog.Int("bindings", len(in.Session().Names())),
		)
	}

	return repl.Run(ctx, in, repl.Config{
		History: r.History,
		Input:   std.In,
		Output:  std.Out,
		Logger:  log.Default(),
	})
}
