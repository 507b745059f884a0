package lang

import (
	"encoding/json"
	"math"
)

// MarshalJSON implements json.Marshaler for Literal.
func (n *Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(NodeToMap(n))
}

// MarshalJSON implements json.Marshaler for Variable.
func (n *Variable) MarshalJSON() ([]byte, error) {
	return json.Marshal(NodeToMap(n))
}

// MarshalJSON implements json.Marshaler for Apply.
func (n *Apply) MarshalJSON() ([]byte, error) {
	return json.Marshal(NodeToMap(n))
}

// NodeToMap converts a tree to native Go maps and slices:
//
//	{"type": "literal", "value": 3}
//	{"type": "variable", "name": "x"}
//	{"type": "apply", "operator": {...}, "args": [...]}
func NodeToMap(n Node) map[string]any {
	switch n := n.(type) {
	case *Literal:
		return map[string]any{
			"type":  TypeLiteral.String(),
			"value": ToNative(n.Value),
		}

	case *Variable:
		return map[string]any{
			"type": TypeVariable.String(),
			"name": n.Name,
		}

	case *Apply:
		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			args[i] = NodeToMap(arg)
		}

		return map[string]any{
			"type":     TypeApply.String(),
			"operator": NodeToMap(n.Operator),
			"args":     args,
		}

	default:
		return nil
	}
}

// ToNative converts a Value to its native Go type.
// Integral numbers become int64 and other finite numbers float64; NaN and the
// infinities, which JSON cannot represent, become strings. Functions become a
// descriptive string.
func ToNative(v Value) any {
	switch v := v.(type) {
	case Number:
		f := float64(v)

		switch {
		case math.IsNaN(f) || math.IsInf(f, 0):
			return formatNumber(f)

		case f == math.Trunc(f) && math.Abs(f) < 1<<53:
			return int64(f)

		default:
			return f
		}

	case String:
		return string(v)

	case Boolean:
		return bool(v)

	case *Array:
		result := make([]any, len(v.Elems))
		for i, elem := range v.Elems {
			result[i] = ToNative(elem)
		}

		return result

	case *Func:
		return FormatValue(v)

	default:
		return nil
	}
}
