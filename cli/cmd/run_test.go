package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/egg/lang"
)

func runCommand(t *testing.T, r Run) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer

	ctx := WithStdio(t.Context(), Stdio{
		In:  strings.NewReader(""),
		Out: &out,
		Err: &errOut,
	})

	if r.Output == "" {
		r.Output = formatText
	}

	err = r.Run(ctx)

	return out.String(), errOut.String(), err
}

func TestRunText(t *testing.T) {
	tests := []struct {
		name string
		run  Run
		want string
	}{
		{"result", Run{Expr: "*(6, 7)", Print: true}, "42\n"},
		{"prints_echoed", Run{Expr: `do(print("hi"), print(1), +(1, 2))`, Print: true}, "hi\n1\n3\n"},
		{"prints_suppressed", Run{Expr: `do(print("hi"), 3)`}, "3\n"},
		{"string_quoted", Run{Expr: `"a"`, Print: true}, "\"a\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errOut, err := runCommand(t, tt.run)
			if err != nil {
				t.Fatalf("Run: %v (stderr %q)", err, errOut)
			}

			if out != tt.want {
				t.Errorf("stdout = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRunFailure(t *testing.T) {
	out, errOut, err := runCommand(t, Run{Expr: `do(print("before"), +(1, x))`, Print: true})

	if !errors.Is(err, ErrProgram) || !errors.Is(err, lang.ErrReference) {
		t.Errorf("error = %v, want ErrProgram wrapping ErrReference", err)
	}

	if out != "before\n" {
		t.Errorf("stdout = %q, want the print before the failure", out)
	}

	if want := "ReferenceError: undefined binding: x (1:26)\n"; errOut != want {
		t.Errorf("stderr = %q, want %q", errOut, want)
	}
}

func TestRunJSON(t *testing.T) {
	out, _, err := runCommand(t, Run{
		Expr:   `do(print(1), print("two"), array(true, 2.5))`,
		Output: formatJSON,
		Print:  true,
		Indent: 2,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output %q is not JSON: %v", out, err)
	}

	want := map[string]any{
		"result": []any{true, 2.5},
		"logs":   []any{1.0, "two"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("report = %v, want %v", got, want)
	}
}

func TestRunYAMLFailure(t *testing.T) {
	out, errOut, err := runCommand(t, Run{
		Expr:   "f(1",
		Output: formatYAML,
		Indent: 2,
	})
	if !errors.Is(err, ErrProgram) || !errors.Is(err, lang.ErrSyntax) {
		t.Errorf("error = %v, want ErrProgram wrapping ErrSyntax", err)
	}

	if errOut != "" {
		t.Errorf("stderr = %q, want empty", errOut)
	}

	var got struct {
		Failure lang.Failure `yaml:"failure"`
		Result  any          `yaml:"result"`
	}

	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output %q is not YAML: %v", out, err)
	}

	if got.Failure.Kind != "SyntaxError" || got.Result != nil {
		t.Errorf("report = %+v, want a SyntaxError failure only", got)
	}
}

func TestRunStdin(t *testing.T) {
	var out bytes.Buffer

	ctx := WithStdio(t.Context(), Stdio{
		In:  strings.NewReader("do(let(x, 20),\n  +(x, 1))\n"),
		Out: &out,
		Err: &out,
	})

	r := Run{Output: formatText, Files: []string{"-"}}
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if out.String() != "21\n" {
		t.Errorf("stdout = %q, want 21", out.String())
	}
}

func TestRenderStructuredInvalid(t *testing.T) {
	var out bytes.Buffer

	if err := renderStructured(t.Context(), &out, "toml", nil, 2); err == nil {
		t.Error("renderStructured accepted an unknown format")
	}
}
