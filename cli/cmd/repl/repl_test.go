package repl

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/egg/lang"
	"github.com/ardnew/egg/log"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	return newModel(t.Context(), lang.New(), NewHistory(""), log.Logger{})
}

func plainText(s string) string { return ansi.Strip(s) }

func containsWord(s, word string) bool { return strings.Contains(s, word) }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"result", "+(2, 3)", []string{"⇒ 5"}},
		{"prints_then_result", `do(print("hi"), print(1), 7)`, []string{"hi", "1", "⇒ 7"}},
		{"string_result", `"a\"b"`, []string{`⇒ "a\"b"`}},
		{"reference_error", "+(1, x)", []string{"ReferenceError: undefined binding: x (1:6)"}},
		{"syntax_error", "f(1", []string{"SyntaxError"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)

			lines := strings.Split(plainText(m.evaluate(t.Context(), tt.input)), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("evaluate(%q) = %q, want %d lines", tt.input, lines, len(tt.want))
			}

			for i, want := range tt.want {
				if !strings.HasPrefix(lines[i], want) {
					t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
				}
			}
		})
	}
}

func TestEvaluateSharesSession(t *testing.T) {
	m := newTestModel(t)

	m.evaluate(t.Context(), "let(x, 4)")
	m.evaluate(t.Context(), "set(x, *(x, x))")

	if got := plainText(m.evaluate(t.Context(), "x")); got != "⇒ 16" {
		t.Errorf("evaluate(x) = %q, want ⇒ 16", got)
	}

	env := plainText(m.listBindings())
	if !strings.Contains(env, "x 16") {
		t.Errorf("listBindings = %q, want x 16", env)
	}

	if strings.Contains(env, "print") {
		t.Errorf("listBindings = %q, includes globals", env)
	}
}

func TestListLogs(t *testing.T) {
	m := newTestModel(t)

	if got := plainText(m.listLogs()); !strings.Contains(got, "nothing printed") {
		t.Errorf("listLogs = %q", got)
	}

	m.evaluate(t.Context(), `do(print("a"), print(2))`)

	if got, want := plainText(m.listLogs()), "  1 \"a\"\n  2 2"; got != want {
		t.Errorf("listLogs = %q, want %q", got, want)
	}
}

func TestCtrlCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{":help", "help", true},
		{":q", "q", true},
		{":env extra", "env extra", true},
		{"::(x, x)", "", false},
		{":unknown", "unknown", false},
		{":", "", false},
		{"help", "", false},
	}

	for _, tt := range tests {
		got, ok := ctrlCommand(tt.input)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ctrlCommand(%q) = (%q, %v), want (%q, %v)",
				tt.input, got, ok, tt.want, tt.ok)
		}
	}
}

func TestExecuteInput(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("let(y, 2)")

	m, cmd := m.executeInput()
	if cmd == nil {
		t.Fatal("executeInput returned no command")
	}

	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	if m.interrupt == nil {
		t.Fatal("executeInput did not start an evaluation")
	}

	// Keys other than Ctrl+C are ignored until the result arrives.
	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	if m.input.Value() != "" {
		t.Errorf("input during evaluation = %q, want empty", m.input.Value())
	}

	next, _ := m.Update(evalDoneMsg{output: "⇒ 2"})
	if m = next.(model); m.interrupt != nil {
		t.Error("evaluation still running after its result")
	}

	m.input.SetValue(":quit")

	m, _ = m.executeInput()
	if !m.quitting {
		t.Error("':quit' did not quit")
	}

	last, err := m.history.Entry(m.history.Len() - 1)
	if err != nil || last != (HistoryEntry{Line: "quit", Mode: modeCtrl}) {
		t.Errorf("last history entry = %+v, %v", last, err)
	}
}

func TestStartEval(t *testing.T) {
	m := newTestModel(t)

	m, cmd := m.startEval("let(y, 2)")

	raw := cmd()

	msg, ok := raw.(evalDoneMsg)
	if !ok {
		t.Fatalf("startEval command returned %T, want evalDoneMsg", raw)
	}

	if got := plainText(msg.output); got != "⇒ 2" {
		t.Errorf("output = %q, want ⇒ 2", got)
	}

	if v, ok := m.interp.Session().Lookup("y"); !ok || lang.FormatValue(v) != "2" {
		t.Errorf("y = %v, %v; want 2", v, ok)
	}
}

func TestStartEvalInterrupt(t *testing.T) {
	m := newTestModel(t)

	m, cmd := m.startEval("while(true, 1)")

	done := make(chan tea.Msg, 1)

	go func() { done <- cmd() }()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	if m.quitting {
		t.Error("Ctrl+C during evaluation quit the session")
	}

	select {
	case msg := <-done:
		out, _ := msg.(evalDoneMsg)
		if got := plainText(out.output); !strings.HasPrefix(got, "Canceled: ") {
			t.Errorf("output = %q, want a Canceled failure", got)
		}

	case <-time.After(10 * time.Second):
		t.Fatal("evaluation did not stop after Ctrl+C")
	}
}

func TestSwitchToModePreservesInput(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("f(1")

	m = m.switchToMode(modeCtrl)
	if m.input.Value() != "" || m.mode != modeCtrl {
		t.Fatalf("ctrl mode input = %q, mode = %v", m.input.Value(), m.mode)
	}

	m.input.SetValue("he")

	m = m.switchToMode(modeEval)
	if m.input.Value() != "f(1" {
		t.Errorf("eval input = %q, want f(1", m.input.Value())
	}

	m = m.switchToMode(modeCtrl)
	if m.input.Value() != "he" {
		t.Errorf("ctrl input = %q, want he", m.input.Value())
	}
}

func TestHistoryStep(t *testing.T) {
	m := newTestModel(t)

	for _, e := range []HistoryEntry{
		{Line: "1", Mode: modeEval},
		{Line: "env", Mode: modeCtrl},
		{Line: "2", Mode: modeEval},
	} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	m = m.historyStep(-1, false)

	if m.input.Value() != "env" || m.mode != modeCtrl {
		t.Errorf("two steps back = %q in mode %v, want env in ctrl", m.input.Value(), m.mode)
	}

	m = m.switchToMode(modeEval)
	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, true)
	m = m.historyStep(-1, true)

	if m.input.Value() != "1" || m.mode != modeEval {
		t.Errorf("same-mode steps back = %q in mode %v, want 1 in eval", m.input.Value(), m.mode)
	}

	m = m.historyStep(1, true)
	m = m.historyStep(1, true)

	if m.input.Value() != "" || m.historyIdx != m.history.Len() {
		t.Errorf("stepping past newest = %q at %d", m.input.Value(), m.historyIdx)
	}
}

func TestTabCycle(t *testing.T) {
	m := newTestModel(t)

	m.evaluate(t.Context(), "do(let(alpha, 1), let(alpine, 2))")

	m.input.SetValue("alp")
	m.input.SetCursor(3)
	refreshMatches(&m, false)

	if len(m.matches) != 2 {
		t.Fatalf("matches = %v, want 2", matchNames(m.matches))
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	first := m.input.Value()

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyTab})
	second := m.input.Value()

	if first == second || !m.tabActive {
		t.Errorf("tab cycle stayed on %q", first)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.input.Value() != "alp" || m.tabActive {
		t.Errorf("esc restored %q, tabActive %v", m.input.Value(), m.tabActive)
	}
}

func TestHintShowsSignature(t *testing.T) {
	m := newTestModel(t)

	m.input.SetValue("if(true, ")
	m.input.SetCursor(9)

	if got := plainText(m.hint()); got != "if(test, then, else)" {
		t.Errorf("hint = %q", got)
	}
}
