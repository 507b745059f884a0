package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote renders s as a string literal using the two supported escapes.
func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// FormatValue returns the textual form of v: numbers in shortest form,
// strings quoted, arrays as [a, b], closures by their parameter list, and
// primitives by name.
func FormatValue(v Value) string {
	var sb strings.Builder

	writeValue(&sb, v)

	return sb.String()
}

// Display is like [FormatValue] except that a top-level string is written
// without quotes.
func Display(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}

	return FormatValue(v)
}

func writeValue(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case Number:
		sb.WriteString(formatNumber(float64(v)))

	case String:
		sb.WriteString(quote(string(v)))

	case Boolean:
		sb.WriteString(strconv.FormatBool(bool(v)))

	case *Array:
		sb.WriteByte('[')

		for i, elem := range v.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeValue(sb, elem)
		}

		sb.WriteByte(']')

	case *Func:
		if v.IsNative() {
			sb.WriteString("<builtin " + v.Name + ">")

			return
		}

		sb.WriteString("fun(" + strings.Join(v.Params, ", ") + ")")

	default:
		sb.WriteString("<nil>")
	}
}

// formatNumber writes f the way a reader expects to see it: integers without
// a fraction, very large and very small magnitudes in exponent form.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"

	case math.IsInf(f, 1):
		return "Infinity"

	case math.IsInf(f, -1):
		return "-Infinity"

	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatNode renders n in surface syntax. Parsing the result of a tree
// produced by [Parse] yields a structurally identical tree.
func FormatNode(n Node) string {
	var sb strings.Builder

	writeNode(&sb, n)

	return sb.String()
}

func writeNode(sb *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Literal:
		if f, ok := n.Value.(Number); ok && math.IsInf(float64(f), 1) {
			// Overflowing literals parse to +Inf.
			sb.WriteString("1e999")

			return
		}

		writeValue(sb, n.Value)

	case *Variable:
		sb.WriteString(n.Name)

	case *Apply:
		writeNode(sb, n.Operator)
		sb.WriteByte('(')

		for i, arg := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeNode(sb, arg)
		}

		sb.WriteByte(')')
	}
}

// FormatJSON writes v as JSON to the writer. A positive indent selects
// indented output.
func FormatJSON(_ context.Context, w io.Writer, v any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes v as YAML to the writer. A positive indent selects block
// style; otherwise flow style is used.
func FormatYAML(ctx context.Context, w io.Writer, v any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, v, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}
