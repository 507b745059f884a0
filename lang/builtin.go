package lang

import (
	"fmt"
	"log/slog"
	"math"
)

// variadic marks a primitive that accepts any number of arguments.
const variadic = -1

// native is the Go implementation of a primitive.
type native = func(args []Value) (Value, error)

// installBuiltins binds the primitive library into env.
func (in *Interpreter) installBuiltins(env *Env) {
	env.Define("true", Boolean(true))
	env.Define("false", Boolean(false))

	def := func(arity int, fn native, names ...string) {
		for _, name := range names {
			env.Define(name, &Func{Name: name, Arity: arity, Native: fn})
		}
	}

	def(2, func(args []Value) (Value, error) {
		return Bool(args[0]) && Bool(args[1]), nil
	}, "and")
	def(2, func(args []Value) (Value, error) {
		return Bool(args[0]) || Bool(args[1]), nil
	}, "or")
	def(1, func(args []Value) (Value, error) {
		return !Bool(args[0]), nil
	}, "not")

	def(2, arithmetic("+", func(a, b float64) float64 { return a + b }), "+")
	def(2, arithmetic("-", func(a, b float64) float64 { return a - b }), "-")
	def(2, arithmetic("*", func(a, b float64) float64 { return a * b }), "*")
	def(2, arithmetic("/", func(a, b float64) float64 { return a / b }), "/")
	def(2, arithmetic("mod", math.Mod), "mod")
	def(2, euclid("gcd", gcd), "gcd")
	def(2, euclid("lcm", lcm), "lcm")

	def(2, compare("<", func(c int) bool { return c < 0 }), "<")
	def(2, compare(">", func(c int) bool { return c > 0 }), ">")
	def(2, func(args []Value) (Value, error) {
		return Boolean(Identical(args[0], args[1])), nil
	}, "==")

	def(variadic, func(args []Value) (Value, error) {
		return NewArray(args...), nil
	}, "array", "[]")
	def(1, func(args []Value) (Value, error) {
		a, err := arrayArg("length", args[0])
		if err != nil {
			return nil, err
		}

		return Number(a.Len()), nil
	}, "length", "#")
	def(2, element, "element")

	def(1, in.print, "print", "show")
}

// print records v in the output log, mirrors it to the host, and returns it.
func (in *Interpreter) print(args []Value) (Value, error) {
	v := args[0]

	in.logs = append(in.logs, v)

	in.logger.Debug("print", slog.String("value", FormatValue(v)))

	if in.out != nil {
		if _, err := fmt.Fprintln(in.out, Display(v)); err != nil {
			return nil, WrapError(err).With(slog.String("op", "print"))
		}
	}

	return v, nil
}

func arithmetic(op string, fn func(a, b float64) float64) native {
	return func(args []Value) (Value, error) {
		a, b, err := numberArgs(op, args)
		if err != nil {
			return nil, err
		}

		return Number(fn(a, b)), nil
	}
}

// euclid wraps gcd and lcm, which only terminate for finite operands.
func euclid(op string, fn func(a, b float64) float64) native {
	return func(args []Value) (Value, error) {
		a, b, err := numberArgs(op, args)
		if err != nil {
			return nil, err
		}

		if math.IsInf(a, 0) || math.IsNaN(a) || math.IsInf(b, 0) || math.IsNaN(b) {
			return nil, ErrType.Errorf(op + " expects finite numbers")
		}

		return Number(fn(a, b)), nil
	}
}

func gcd(a, b float64) float64 {
	for b != 0 {
		a, b = b, math.Mod(a, b)
	}

	return math.Abs(a)
}

func lcm(a, b float64) float64 {
	switch {
	case a == 0 && b == 0:
		return 0

	case a == 0:
		return math.Abs(b)

	case b == 0:
		return math.Abs(a)

	default:
		return math.Abs(a) / gcd(a, b) * math.Abs(b)
	}
}

func compare(op string, accept func(int) bool) native {
	return func(args []Value) (Value, error) {
		switch a := args[0].(type) {
		case Number:
			if b, ok := args[1].(Number); ok {
				switch {
				case a < b:
					return Boolean(accept(-1)), nil

				case a > b:
					return Boolean(accept(1)), nil

				default:
					// Equal, or unordered when either is NaN.
					return Boolean(a == b && accept(0)), nil
				}
			}

		case String:
			if b, ok := args[1].(String); ok {
				switch {
				case a < b:
					return Boolean(accept(-1)), nil

				case a > b:
					return Boolean(accept(1)), nil

				default:
					return Boolean(accept(0)), nil
				}
			}
		}

		return nil, operandError(op, "two numbers or two strings", args...)
	}
}

func element(args []Value) (Value, error) {
	a, err := arrayArg("element", args[0])
	if err != nil {
		return nil, err
	}

	n, ok := args[1].(Number)
	if !ok || math.Trunc(float64(n)) != float64(n) || math.IsInf(float64(n), 0) {
		return nil, operandError("element", "an integral index", args[1])
	}

	if n < 0 || n >= Number(a.Len()) {
		return nil, ErrType.Errorf("index out of range").
			With(slog.Float64("index", float64(n)), slog.Int("length", a.Len()))
	}

	return a.Elems[int(n)], nil
}

func numberArgs(op string, args []Value) (float64, float64, error) {
	a, ok := args[0].(Number)
	b, ok2 := args[1].(Number)

	if !ok || !ok2 {
		return 0, 0, operandError(op, "numbers", args...)
	}

	return float64(a), float64(b), nil
}

func arrayArg(op string, v Value) (*Array, error) {
	a, ok := v.(*Array)
	if !ok {
		return nil, operandError(op, "an array", v)
	}

	return a, nil
}

func operandError(op, want string, got ...Value) *Error {
	kinds := make([]string, len(got))
	for i, v := range got {
		kinds[i] = v.Kind().String()
	}

	return ErrType.Errorf(op+" expects "+want).
		With(slog.String("op", op), slog.Any("got", kinds))
}
