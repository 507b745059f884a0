package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestHistoryAddDedupes(t *testing.T) {
	h := NewHistory("")

	for _, line := range []string{"a", "b", "a", "a", "  "} {
		if err := h.Add(line, modeEval); err != nil {
			t.Fatalf("Add(%q): %v", line, err)
		}
	}

	if err := h.Add("help", modeCtrl); err != nil {
		t.Fatalf("Add: %v", err)
	}

	want := []HistoryEntry{
		{Line: "b", Mode: modeEval},
		{Line: "a", Mode: modeEval},
		{Line: "help", Mode: modeCtrl},
	}

	if h.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", h.Len(), len(want))
	}

	for i, w := range want {
		got, err := h.Entry(i)
		if err != nil || got != w {
			t.Errorf("Entry(%d) = (%+v, %v), want %+v", i, got, err, w)
		}
	}

	if _, err := h.Entry(len(want)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry past end error = %v, want ErrOutOfBounds", err)
	}
}

func TestHistoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.utf8")

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{Line: "+(1, 2)", Mode: modeEval},
		{Line: "env", Mode: modeCtrl},
		{Line: "+(1, 2)", Mode: modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if got, want := string(data), "C:env\nE:+(1, 2)\n"; got != want {
		t.Errorf("history file = %q, want %q", got, want)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if reloaded.Len() != 2 {
		t.Fatalf("reloaded Len = %d, want 2", reloaded.Len())
	}

	first, _ := reloaded.Entry(0)
	if first != (HistoryEntry{Line: "env", Mode: modeCtrl}) {
		t.Errorf("reloaded Entry(0) = %+v", first)
	}
}

func TestDecodeEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:f(1)", HistoryEntry{Line: "f(1)", Mode: modeEval}},
		{"C:quit", HistoryEntry{Line: "quit", Mode: modeCtrl}},
		{"legacy", HistoryEntry{Line: "legacy", Mode: modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %+v, want %+v", tt.line, got, tt.want)
		}

		if got := decodeEntry(tt.want.encode()[:len(tt.want.encode())-1]); got != tt.want {
			t.Errorf("decode(encode(%+v)) = %+v", tt.want, got)
		}
	}
}
