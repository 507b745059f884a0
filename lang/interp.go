package lang

import (
	"context"
	"io"
	"log/slog"
	"slices"

	"github.com/ardnew/egg/log"
)

// Interpreter owns a global frame seeded with the primitive library and the
// log of values passed to print. Independent interpreters share nothing.
//
// An Interpreter must not be used from multiple goroutines at once.
type Interpreter struct {
	globals  *Env
	session  *Env
	logs     []Value
	out      io.Writer
	logger   log.Logger
	maxDepth int
	cache    *parseCache
}

// Option configures an [Interpreter].
type Option func(*Interpreter)

// WithLogger sets the structured logger for trace-level debugging and print
// mirroring. If not provided, the logger is zero-valued and all logging is a
// no-op.
func WithLogger(logger log.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

// WithOutput mirrors every printed value to w, one per line.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) {
		in.out = w
	}
}

// WithMaxDepth limits the number of nested applications and closure calls
// active at once. A limit of zero or less disables the check.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		in.maxDepth = depth
	}
}

// WithParseCache enables caching of parsed programs keyed by their source.
func WithParseCache(enable bool) Option {
	return func(in *Interpreter) {
		if enable {
			in.cache = newParseCache()
		} else {
			in.cache = nil
		}
	}
}

// New creates an interpreter with a fresh global frame.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		globals:  NewEnv(nil),
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(in)
	}

	in.installBuiltins(in.globals)

	return in
}

// Run parses text and evaluates it in a fresh child of the global frame.
func Run(text string) (Value, error) {
	return New().Run(text)
}

// Run parses text and evaluates it in a fresh child of the global frame.
// Bindings made with let are discarded afterward; set may still modify
// global bindings.
func (in *Interpreter) Run(text string) (Value, error) {
	return in.RunContext(context.Background(), text)
}

// RunContext is like [Interpreter.Run] but stops with [ErrCanceled] once ctx
// is done. Cancellation is observed between loop iterations and closure calls.
func (in *Interpreter) RunContext(ctx context.Context, text string) (Value, error) {
	return in.EvalIn(ctx, text, in.globals.Child())
}

// EvalIn parses text and evaluates it in env.
func (in *Interpreter) EvalIn(
	ctx context.Context,
	text string,
	env *Env,
) (Value, error) {
	in.logger.TraceContext(
		ctx,
		"run start",
		slog.Int("source_length", len(text)),
	)

	node, err := in.parse(ctx, text)
	if err != nil {
		in.logger.TraceContext(ctx, "run failed", slog.Any("error", err))

		return nil, err
	}

	v, err := in.evaluate(ctx, node, env)
	if err != nil {
		in.logger.TraceContext(ctx, "run failed", slog.Any("error", err))

		return nil, err
	}

	in.logger.TraceContext(
		ctx,
		"run finish",
		slog.String("kind", v.Kind().String()),
	)

	return v, nil
}

// Evaluate evaluates node in env using the interpreter's options.
func (in *Interpreter) Evaluate(ctx context.Context, node Node, env *Env) (Value, error) {
	return in.evaluate(ctx, node, env)
}

func (in *Interpreter) evaluate(
	ctx context.Context,
	node Node,
	env *Env,
) (Value, error) {
	e := &evaluator{
		ctx:      ctx,
		logger:   in.logger,
		maxDepth: in.maxDepth,
	}

	if err := e.checkContext(); err != nil {
		return nil, err
	}

	return e.eval(node, env)
}

func (in *Interpreter) parse(ctx context.Context, text string) (Node, error) {
	if in.cache != nil {
		return in.cache.parse(ctx, in.logger, text)
	}

	node, err := Parse(text)
	if err != nil {
		return nil, err
	}

	in.logger.TraceContext(ctx, "parse complete", slog.Int("nodes", Count(node)))

	return node, nil
}

// Globals returns the global frame.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

// Session returns a long-lived child of the global frame, created on first
// use, in which successive evaluations share their let bindings.
func (in *Interpreter) Session() *Env {
	if in.session == nil {
		in.session = in.globals.Child()
	}

	return in.session
}

// Logs returns a copy of every value printed so far, oldest first.
func (in *Interpreter) Logs() []Value {
	return slices.Clone(in.logs)
}
