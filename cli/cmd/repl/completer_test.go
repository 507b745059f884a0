package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/egg/lang"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "+(a, fo", 7, "fo", 5, 7},
		{"operator_word", "+(a", 1, "+", 0, 1},
		{"empty_at_boundary", "f(a, ", 5, "", 5, 5},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"symbolic", "::(x", 2, "::", 0, 2},
		{"negative_word", "f(-1", 4, "-1", 2, 4},
		{"before_close", "f(ab)", 4, "ab", 2, 4},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
		{"multibyte", "f(λx", 5, "λx", 2, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInLiteral(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		offset int
		want   bool
	}{
		{"plain", "f(ab", 2, false},
		{"open_string", `print("ab`, 7, true},
		{"closed_string", `f("a", ab`, 7, false},
		{"escaped_quote", `f("a\"b`, 7, true},
		{"comment", "f(1) ~ ab", 7, true},
		{"after_comment", "f(1) ~ ab\nx", 10, false},
		{"marker_in_string", `f("~", ab`, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inLiteral(tt.input, tt.offset); got != tt.want {
				t.Errorf("inLiteral(%q, %d) = %v, want %v",
					tt.input, tt.offset, got, tt.want)
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	in := lang.New()

	if _, err := in.EvalIn(t.Context(), "let(counter, 0)", in.Session()); err != nil {
		t.Fatalf("EvalIn: %v", err)
	}

	names := candidates(in.Session())

	if !slices.IsSorted(names) {
		t.Errorf("candidates not sorted: %v", names)
	}

	if len(slices.Compact(slices.Clone(names))) != len(names) {
		t.Errorf("candidates contain duplicates: %v", names)
	}

	for _, want := range []string{"counter", "print", "+", "while", "::", "true"} {
		if !slices.Contains(names, want) {
			t.Errorf("candidates missing %q", want)
		}
	}
}

func TestComputeMatches(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("whi")
	m.input.SetCursor(3)

	matches, _, start, end := m.computeMatches()
	if start != 0 || end != 3 {
		t.Errorf("bounds = (%d, %d), want (0, 3)", start, end)
	}

	if len(matches) == 0 || matches[0].Str != "while" {
		t.Errorf("best match = %v, want while", matchNames(matches))
	}

	m.input.SetValue(`print("whi`)
	m.input.SetCursor(10)

	if matches, _, _, _ := m.computeMatches(); len(matches) != 0 {
		t.Errorf("matches inside string = %v, want none", matchNames(matches))
	}

	m = m.switchToMode(modeCtrl)
	m.input.SetValue("ed")
	m.input.SetCursor(2)

	matches, _, _, _ = m.computeMatches()
	if len(matches) != 1 || matches[0].Str != "edit" {
		t.Errorf("ctrl matches = %v, want [edit]", matchNames(matches))
	}
}

func TestRenderCandidateBar(t *testing.T) {
	matches := fuzzy.Find("e", []string{"else", "edit", "env", "exit", "eval"})

	if got := renderCandidateBar(nil, -1, false, 80); got != "" {
		t.Errorf("empty bar = %q, want empty", got)
	}

	full := plainText(renderCandidateBar(matches, -1, false, 80))
	for _, m := range matches {
		if !containsWord(full, m.Str) {
			t.Errorf("bar %q missing %q", full, m.Str)
		}
	}

	narrow := plainText(renderCandidateBar(matches, -1, false, 12))
	if !containsWord(narrow, "...") {
		t.Errorf("narrow bar %q not ellipsized", narrow)
	}
}

func matchNames(matches fuzzy.Matches) []string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Str
	}

	return names
}
