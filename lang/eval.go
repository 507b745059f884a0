package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ardnew/egg/log"
)

// DefaultMaxDepth is the default limit on nested applications and closure
// calls active at once.
const DefaultMaxDepth = 10000

// Evaluate evaluates node in env with the default depth limit and no
// cancellation.
func Evaluate(node Node, env *Env) (Value, error) {
	e := &evaluator{ctx: context.Background(), maxDepth: DefaultMaxDepth}

	return e.eval(node, env)
}

// evaluator holds the state for one recursive evaluation.
type evaluator struct {
	ctx      context.Context
	logger   log.Logger
	maxDepth int
	depth    int
}

// eval dispatches on the node arm.
func (e *evaluator) eval(node Node, env *Env) (Value, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil

	case *Variable:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return nil, ErrReference.Errorf("undefined binding: " + n.Name).
				WithPosition(n.At).
				With(slog.String("name", n.Name))
		}

		return v, nil

	case *Apply:
		return e.evalApply(n, env)

	default:
		return nil, ErrType.Errorf("invalid node").
			With(slog.String("type", fmt.Sprintf("%T", node)))
	}
}

// evalApply interprets a special form or a strict call.
func (e *evaluator) evalApply(n *Apply, env *Env) (Value, error) {
	if err := e.enter(n.At); err != nil {
		return nil, err
	}
	defer e.leave()

	if op, ok := n.Operator.(*Variable); ok {
		if f, ok := e.form(op.Name); ok {
			return f(n.Args, env, n.At)
		}
	}

	op, err := e.eval(n.Operator, env)
	if err != nil {
		return nil, err
	}

	fn, ok := op.(*Func)
	if !ok {
		return nil, ErrType.Errorf("applying a non-function").
			WithPosition(n.At).
			With(slog.String("kind", op.Kind().String()))
	}

	args := make([]Value, len(n.Args))

	for i, arg := range n.Args {
		if args[i], err = e.eval(arg, env); err != nil {
			return nil, err
		}
	}

	return e.call(fn, args, n.At)
}

// call invokes fn with already-evaluated arguments.
func (e *evaluator) call(fn *Func, args []Value, at Position) (Value, error) {
	if fn.IsNative() {
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, wrongArity(fn.Name, fn.Arity, len(args), at)
		}

		v, err := fn.Native(args)
		if err != nil {
			return nil, positioned(err, at)
		}

		return v, nil
	}

	if err := e.checkContext(); err != nil {
		return nil, err
	}

	if len(args) != len(fn.Params) {
		return nil, wrongArity("", len(fn.Params), len(args), at)
	}

	scope := fn.Scope.Child()
	for i, name := range fn.Params {
		scope.Define(name, args[i])
	}

	e.logger.TraceContext(
		e.ctx,
		"call",
		slog.Int("params", len(fn.Params)),
		slog.Int("depth", e.depth),
	)

	return e.eval(fn.Body, scope)
}

func (e *evaluator) enter(at Position) error {
	e.depth++

	if e.maxDepth > 0 && e.depth > e.maxDepth {
		return ErrDepth.Errorf("depth limit " + strconv.Itoa(e.maxDepth)).
			WithPosition(at)
	}

	return nil
}

func (e *evaluator) leave() { e.depth-- }

// checkContext reports cancellation of the evaluation context.
func (e *evaluator) checkContext() error {
	if e.ctx == nil || e.ctx.Err() == nil {
		return nil
	}

	return ErrCanceled.Wrap(context.Cause(e.ctx))
}

func wrongArity(name string, want, got int, at Position) *Error {
	attrs := []slog.Attr{slog.Int("expected", want), slog.Int("got", got)}
	if name != "" {
		attrs = append(attrs, slog.String("name", name))
	}

	return ErrType.Errorf("wrong arity").WithPosition(at).With(attrs...)
}

// positioned attaches at to err unless err already carries a position.
func positioned(err error, at Position) error {
	var e *Error
	if !errors.As(err, &e) {
		return WrapError(err).WithPosition(at)
	}

	if _, ok := e.Position(); ok {
		return err
	}

	return e.WithPosition(at)
}
