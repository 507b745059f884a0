package lang

import (
	"log/slog"
	"slices"
)

// form is the handler of a special form. It receives its argument trees
// unevaluated.
type form func(args []Node, env *Env, at Position) (Value, error)

// formNames lists the reserved operator names.
var formNames = []string{"::", "do", "fun", "if", "let", "set", "while"}

// SpecialForms returns the sorted names that are interpreted as special forms
// when they appear as the operator of an application.
func SpecialForms() []string {
	return slices.Clone(formNames)
}

// IsSpecialForm reports whether name is a reserved operator name.
func IsSpecialForm(name string) bool {
	_, found := slices.BinarySearch(formNames, name)

	return found
}

func (e *evaluator) form(name string) (form, bool) {
	switch name {
	case "if":
		return e.evalIf, true

	case "while":
		return e.evalWhile, true

	case "do":
		return e.evalDo, true

	case "let":
		return e.evalLet, true

	case "set":
		return e.evalSet, true

	case "fun", "::":
		return e.evalFun, true

	default:
		return nil, false
	}
}

// evalIf evaluates exactly one of the two branches.
func (e *evaluator) evalIf(args []Node, env *Env, at Position) (Value, error) {
	if len(args) != 3 {
		return nil, wrongArity("if", 3, len(args), at)
	}

	cond, err := e.eval(args[0], env)
	if err != nil {
		return nil, err
	}

	if Truthy(cond) {
		return e.eval(args[1], env)
	}

	return e.eval(args[2], env)
}

// evalWhile loops until the condition is false and yields false.
func (e *evaluator) evalWhile(args []Node, env *Env, at Position) (Value, error) {
	if len(args) != 2 {
		return nil, wrongArity("while", 2, len(args), at)
	}

	for {
		if err := e.checkContext(); err != nil {
			return nil, err
		}

		cond, err := e.eval(args[0], env)
		if err != nil {
			return nil, err
		}

		if !Truthy(cond) {
			return Boolean(false), nil
		}

		if _, err := e.eval(args[1], env); err != nil {
			return nil, err
		}
	}
}

// evalDo evaluates args in order and yields the last value, or false when
// there are none.
func (e *evaluator) evalDo(args []Node, env *Env, _ Position) (Value, error) {
	var result Value = Boolean(false)

	for _, arg := range args {
		v, err := e.eval(arg, env)
		if err != nil {
			return nil, err
		}

		result = v
	}

	return result, nil
}

// evalLet defines a binding in the innermost frame.
func (e *evaluator) evalLet(args []Node, env *Env, at Position) (Value, error) {
	name, err := bindingName("let", args, at)
	if err != nil {
		return nil, err
	}

	v, err := e.eval(args[1], env)
	if err != nil {
		return nil, err
	}

	env.Define(name, v)

	return v, nil
}

// evalSet replaces the nearest existing binding.
func (e *evaluator) evalSet(args []Node, env *Env, at Position) (Value, error) {
	name, err := bindingName("set", args, at)
	if err != nil {
		return nil, err
	}

	v, err := e.eval(args[1], env)
	if err != nil {
		return nil, err
	}

	if !env.Assign(name, v) {
		return nil, ErrReference.Errorf("setting undefined binding: " + name).
			WithPosition(args[0].Pos()).
			With(slog.String("name", name))
	}

	return v, nil
}

// evalFun builds a closure over env. The last argument is the body and every
// other argument names a parameter.
func (e *evaluator) evalFun(args []Node, env *Env, at Position) (Value, error) {
	if len(args) == 0 {
		return nil, wrongArity("fun", 1, 0, at)
	}

	params := make([]string, len(args)-1)

	for i, arg := range args[:len(args)-1] {
		v, ok := arg.(*Variable)
		if !ok {
			return nil, ErrSyntax.Errorf("parameter names must be words").
				WithPosition(arg.Pos()).
				With(slog.String("type", arg.Type().String()))
		}

		params[i] = v.Name
	}

	return &Func{
		Params: params,
		Body:   args[len(args)-1],
		Scope:  env,
	}, nil
}

// bindingName validates the operands of let and set.
func bindingName(op string, args []Node, at Position) (string, error) {
	if len(args) != 2 {
		return "", wrongArity(op, 2, len(args), at)
	}

	v, ok := args[0].(*Variable)
	if !ok {
		return "", ErrSyntax.Errorf("bad use of " + op).
			WithPosition(args[0].Pos()).
			With(slog.String("type", args[0].Type().String()))
	}

	return v.Name, nil
}
