package lang

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{name: "integer", value: Number(3), want: "3"},
		{name: "fraction", value: Number(0.5), want: "0.5"},
		{name: "negative", value: Number(-2.25), want: "-2.25"},
		{name: "large", value: Number(1e21), want: "1e+21"},
		{name: "below large", value: Number(1e20), want: "100000000000000000000"},
		{name: "tiny", value: Number(1e-7), want: "1e-07"},
		{name: "negative zero", value: Number(math.Copysign(0, -1)), want: "0"},
		{name: "nan", value: Number(math.NaN()), want: "NaN"},
		{name: "inf", value: Number(math.Inf(-1)), want: "-Infinity"},
		{name: "string", value: String(`say "hi" \o/`), want: `"say \"hi\" \\o/"`},
		{name: "boolean", value: Boolean(true), want: "true"},
		{name: "empty array", value: NewArray(), want: "[]"},
		{name: "nested array", value: NewArray(Number(1), NewArray(String("x"))), want: `[1, ["x"]]`},
		{name: "closure", value: &Func{Params: []string{"x", "y"}}, want: "fun(x, y)"},
		{name: "primitive", value: &Func{Name: "+", Native: func([]Value) (Value, error) { return nil, nil }}, want: "<builtin +>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.value); got != tt.want {
				t.Errorf("FormatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(String("plain")); got != "plain" {
		t.Errorf("Display(string) = %q, want %q", got, "plain")
	}

	if got := Display(NewArray(String("q"))); got != `["q"]` {
		t.Errorf("Display(array) = %q, want %q", got, `["q"]`)
	}
}

func TestFormatNode_RoundTrip(t *testing.T) {
	sources := []string{
		"x",
		"42",
		"1e+21",
		"0.001",
		`"a \"quoted\" \\ string"`,
		"true",
		"f()",
		"+(1, 2)",
		"makeAdder(1)(2)",
		"do(let(f, fun(x, y, +(x, y))), print(f(2, 3)))",
		"if(<(i, 3), [](1, 2), #([]()))",
		"1e999",
		"  spaced ( out , ~ comment\n args )  ",
	}

	for _, source := range sources {
		t.Run(source, func(t *testing.T) {
			first, err := Parse(source)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", source, err)
			}

			text := FormatNode(first)

			second, err := Parse(text)
			if err != nil {
				t.Fatalf("Parse(FormatNode) = Parse(%q) error: %v", text, err)
			}

			if !Equal(first, second) {
				t.Errorf("round trip changed tree: %q → %q", source, text)
			}
		})
	}
}

func TestPrintTree(t *testing.T) {
	node, err := Parse(`f(x, "s", g())`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	var buf bytes.Buffer

	PrintTree(&buf, node)

	want := strings.Join([]string{
		"Apply",
		"  Operator",
		"    Variable: f",
		"  Args",
		"    Variable: x",
		`    Literal: String: "s"`,
		"    Apply",
		"      Operator",
		"        Variable: g",
		"      Args: (empty)",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("PrintTree =\n%s\nwant\n%s", got, want)
	}
}

func TestNodeToMap_JSON(t *testing.T) {
	node, err := Parse(`+(1, x)`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	want := `{"args":[{"type":"literal","value":1},{"name":"x","type":"variable"}],` +
		`"operator":{"name":"+","type":"variable"},"type":"apply"}`

	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}
}

func TestToNative(t *testing.T) {
	v := NewArray(
		Number(2),
		Number(0.5),
		Number(math.Inf(1)),
		String("s"),
		Boolean(false),
		&Func{Params: []string{"n"}},
	)

	got, ok := ToNative(v).([]any)
	if !ok || len(got) != 6 {
		t.Fatalf("ToNative = %#v", ToNative(v))
	}

	want := []any{int64(2), 0.5, "Infinity", "s", false, "fun(n)"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestFormatJSON_YAML(t *testing.T) {
	ctx := t.Context()
	value := ToNative(NewArray(Number(1), String("a")))

	var js bytes.Buffer
	if err := FormatJSON(ctx, &js, value, 0); err != nil {
		t.Fatalf("FormatJSON error: %v", err)
	}

	if got := js.String(); got != "[1,\"a\"]\n" {
		t.Errorf("FormatJSON = %q", got)
	}

	var ym bytes.Buffer
	if err := FormatYAML(ctx, &ym, map[string]any{"kind": "TypeError"}, 2); err != nil {
		t.Fatalf("FormatYAML error: %v", err)
	}

	if got := ym.String(); got != "kind: TypeError\n" {
		t.Errorf("FormatYAML = %q", got)
	}
}
