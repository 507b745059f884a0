package repl

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/egg/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   functionCall
	}{
		{"first_arg", "f(", 2, functionCall{name: "f", inCall: true}},
		{"second_arg", "f(1, ", 5, functionCall{name: "f", argIndex: 1, inCall: true}},
		{"nested", "f(g(1), ", 8, functionCall{name: "f", argIndex: 1, inCall: true}},
		{"inner", "f(1, g(", 7, functionCall{name: "g", inCall: true}},
		{"closed", "f(1)", 4, functionCall{}},
		{"space_before_paren", "while (x, ", 10, functionCall{name: "while", argIndex: 1, inCall: true}},
		{"computed_operator", "f(1)(", 5, functionCall{inCall: true}},
		{"comma_in_string", `f(",", `, 7, functionCall{name: "f", argIndex: 1, inCall: true}},
		{"paren_in_comment", "f(~ (\n", 6, functionCall{name: "f", inCall: true}},
		{"symbolic", "+(1, ", 5, functionCall{name: "+", argIndex: 1, inCall: true}},
		{"top_level", "x", 1, functionCall{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectFunctionCall(tt.input, tt.cursor); got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	in := lang.New()

	_, err := in.EvalIn(t.Context(),
		"do(let(sq, fun(x, *(x, x))), let(n, 1))", in.Session())
	if err != nil {
		t.Fatalf("EvalIn: %v", err)
	}

	tests := []struct {
		name   string
		want   []string
		wantOK bool
	}{
		{"if", []string{"test", "then", "else"}, true},
		{"::", []string{"...params", "body"}, true},
		{"sq", []string{"x"}, true},
		{"+", []string{"a", "b"}, true},
		{"print", []string{"a"}, true},
		{"array", []string{"...values"}, true},
		{"n", nil, false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := signature(in.Session(), tt.name)
			if ok != tt.wantOK || !slices.Equal(got, tt.want) {
				t.Errorf("signature(%q) = (%v, %v), want (%v, %v)",
					tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRenderSignatureHint(t *testing.T) {
	got := plainText(renderSignatureHint("if", formParams["if"], 1))
	if got != "if(test, then, else)" {
		t.Errorf("renderSignatureHint = %q", got)
	}

	got = plainText(renderSignatureHint("do", formParams["do"], 4))
	if !strings.HasPrefix(got, "do(") {
		t.Errorf("renderSignatureHint = %q", got)
	}
}

func BenchmarkDetectFunctionCall(b *testing.B) {
	input := strings.Repeat(`f("a", g(1, ~ c`+"\n", 32) + "h(x, "

	for b.Loop() {
		detectFunctionCall(input, len(input))
	}
}
