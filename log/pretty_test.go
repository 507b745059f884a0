package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

type secret string

func (secret) LogValue() slog.Value { return slog.StringValue("***") }

func TestPretty_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf, WithPretty(true)).With(slog.String("component", "parse"))
	logger.Info("parsed",
		slog.Int("nodes", 19),
		slog.Bool("cached", false),
		slog.Any("token", secret("hunter2")),
		slog.Group("at", slog.Int("line", 1), slog.Int("column", 6)))

	want := "level=INFO msg=parsed component=parse nodes=19 cached=false " +
		"token=*** at.line=1 at.column=6\n"

	if got := buf.String(); got != want {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}
}

func TestPretty_JSONLayout(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithPretty(true), WithFormat(FormatJSON)).Warn("slow", slog.String("op", "while"))

	want := "{\n  level: WARN,\n  msg: slow,\n  op: while\n}\n"

	if got := buf.String(); got != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestPretty_WithGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := plain(&buf, WithPretty(true))
	grouped := slog.New(logger.Handler().WithGroup("run").WithAttrs([]slog.Attr{slog.Int("depth", 3)}))
	grouped.Info("step", slog.String("form", "if"))

	out := buf.String()
	for _, want := range []string{"run.depth=3", "run.form=if"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q lacks %q", out, want)
		}
	}
}

func TestPretty_ErrorValue(t *testing.T) {
	var buf bytes.Buffer

	plain(&buf, WithPretty(true)).Error("failed", slog.Any("error", errTest("boom")))

	if !strings.Contains(buf.String(), "error=boom") {
		t.Errorf("output %q lacks error text", buf.String())
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
