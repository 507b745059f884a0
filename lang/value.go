package lang

import "math"

// Kind indicates the arm of a runtime [Value].
type Kind int

const (
	KindNumber Kind = iota
	KindString
	KindBoolean
	KindArray
	KindFunc
)

// String returns a string representation of the value kind.
func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Number"

	case KindString:
		return "String"

	case KindBoolean:
		return "Boolean"

	case KindArray:
		return "Array"

	case KindFunc:
		return "Function"

	default:
		return "Unknown"
	}
}

// Value is a runtime value. The concrete type is one of [Number], [String],
// [Boolean], [*Array], or [*Func]; no other implementations exist.
type Value interface {
	Kind() Kind
	value()
}

type (
	// Number is a double-precision number.
	Number float64

	// String is an immutable string.
	String string

	// Boolean is true or false.
	Boolean bool

	// Array is an ordered, growable sequence of values. Arrays have reference
	// semantics: two arrays are equal only if they are the same array.
	Array struct {
		Elems []Value
	}
)

func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Boolean) Kind() Kind { return KindBoolean }
func (*Array) Kind() Kind  { return KindArray }
func (*Func) Kind() Kind   { return KindFunc }

func (Number) value()  {}
func (String) value()  {}
func (Boolean) value() {}
func (*Array) value()  {}
func (*Func) value()   {}

// NewArray returns an array holding a copy of elems.
func NewArray(elems ...Value) *Array {
	a := &Array{Elems: make([]Value, len(elems))}
	copy(a.Elems, elems)

	return a
}

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.Elems) }

// Func is a callable value: either a closure created by the fun form or a
// native primitive.
type Func struct {
	// Name is the binding name for primitives and empty for closures.
	Name string

	// Closure fields.
	Params []string
	Body   Node
	Scope  *Env

	// Native fields. Arity is the required argument count, or -1 when any
	// number of arguments is accepted.
	Arity  int
	Native func(args []Value) (Value, error)
}

// IsNative reports whether f is a primitive implemented in Go.
func (f *Func) IsNative() bool { return f.Native != nil }

// Truthy reports whether v is treated as true by conditionals.
// Only the Boolean false is falsy; 0, "", and empty arrays are truthy.
func Truthy(v Value) bool {
	b, ok := v.(Boolean)

	return !ok || bool(b)
}

// Bool coerces v to a strict Boolean using conventional truth-table rules:
// false, 0, NaN and the empty string are false, everything else is true.
// It is used by the boolean combinators, not by conditionals.
func Bool(v Value) Boolean {
	switch v := v.(type) {
	case Boolean:
		return v

	case Number:
		return Boolean(v != 0 && !math.IsNaN(float64(v)))

	case String:
		return v != ""

	default:
		return v != nil
	}
}

// Identical reports whether a and b are the same value without coercion.
// Numbers compare by SameValue (NaN equals NaN, 0 differs from -0); arrays
// and functions compare by identity.
func Identical(a, b Value) bool {
	switch x := a.(type) {
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}

		fx, fy := float64(x), float64(y)
		if math.IsNaN(fx) || math.IsNaN(fy) {
			return math.IsNaN(fx) && math.IsNaN(fy)
		}

		return fx == fy && math.Signbit(fx) == math.Signbit(fy)

	case String:
		y, ok := b.(String)

		return ok && x == y

	case Boolean:
		y, ok := b.(Boolean)

		return ok && x == y

	case *Array:
		y, ok := b.(*Array)

		return ok && x == y

	case *Func:
		y, ok := b.(*Func)

		return ok && x == y

	default:
		return false
	}
}
