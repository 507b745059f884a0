package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles used by the pretty handlers. Styles are bound to a
// renderer for the output writer, so color is dropped automatically when the
// writer is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, stamp lipgloss.Style

	trace, debug, info, warn, fail lipgloss.Style
}

func makePalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		stamp: fg("4"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3"),
		fail:  fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.fail

	case l >= slog.LevelWarn:
		return p.warn

	case l >= slog.LevelInfo:
		return p.info

	case l >= slog.LevelDebug:
		return p.debug

	default:
		return p.trace
	}
}

// layout selects how the pretty handler arranges a record.
type layout int

const (
	layoutText layout = iota // key=value pairs on one line
	layoutJSON               // one field per line inside braces
)

// prettyHandler implements a colorized handler for log messages. Attributes
// added with WithAttrs and groups opened with WithGroup are kept, and
// [slog.LogValuer] values are resolved before rendering.
type prettyHandler struct {
	opts   slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	style  palette
	layout layout
	attrs  []slog.Attr
	groups []string
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return newPrettyHandler(w, opts, layoutText)
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
) *prettyHandler {
	return newPrettyHandler(w, opts, layoutJSON)
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	l layout,
) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		mu:     &sync.Mutex{},
		w:      w,
		style:  makePalette(w),
		layout: l,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, r.NumAttrs()+len(h.attrs)+4)

	if !r.Time.IsZero() {
		fields = h.appendBuiltin(fields, slog.Time(slog.TimeKey, r.Time), h.style.stamp)
	}

	// The level is never replaced so that it keeps its color.
	fields = append(fields, field{
		key:   slog.LevelKey,
		value: h.style.level(r.Level).Render(strings.ToUpper(Level(r.Level).String())),
	})

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			fields = h.appendBuiltin(fields,
				slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)),
				h.style.key)
		}
	}

	fields = h.appendBuiltin(fields, slog.String(slog.MessageKey, r.Message), h.style.str)

	prefix := strings.Join(h.groups, ".")
	for _, a := range h.attrs {
		fields = h.appendAttr(fields, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, prefix, a)

		return true
	})

	var buf bytes.Buffer

	switch h.layout {
	case layoutJSON:
		buf.WriteString("{\n")

		for i, f := range fields {
			if i > 0 {
				buf.WriteString(",\n")
			}

			buf.WriteString("  " + h.style.key.Render(f.key) + ": " + f.value)
		}

		buf.WriteString("\n}\n")

	default:
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(' ')
			}

			buf.WriteString(h.style.key.Render(f.key) + "=" + f.value)
		}

		buf.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := h.clone()

	prefix := strings.Join(h.groups, ".")
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}

		n.attrs = append(n.attrs, a)
	}

	return n
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	n := h.clone()
	n.groups = append(n.groups, name)

	return n
}

func (h *prettyHandler) clone() *prettyHandler {
	n := *h
	n.attrs = slices.Clip(h.attrs)
	n.groups = slices.Clip(h.groups)

	return &n
}

// field is one rendered key/value pair.
type field struct {
	key, value string
}

// appendBuiltin renders one of the record's built-in attributes in style
// after applying the configured ReplaceAttr.
func (h *prettyHandler) appendBuiltin(
	fields []field,
	a slog.Attr,
	style lipgloss.Style,
) []field {
	if h.opts.ReplaceAttr != nil {
		a = h.opts.ReplaceAttr(nil, a)
		if a.Key == "" {
			return fields
		}
	}

	if a.Value.Kind() == slog.KindString {
		return append(fields, field{key: a.Key, value: style.Render(a.Value.String())})
	}

	return append(fields, field{key: a.Key, value: h.render(a.Value)})
}

// appendAttr flattens a (possibly grouped) attribute into dotted keys.
func (h *prettyHandler) appendAttr(fields []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			fields = h.appendAttr(fields, key, ga)
		}

		return fields
	}

	return append(fields, field{key: key, value: h.render(a.Value)})
}

func (h *prettyHandler) render(v slog.Value) string {
	s := h.style

	switch v.Kind() {
	case slog.KindString:
		return s.str.Render(v.String())

	case slog.KindInt64:
		return s.num.Render(strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		return s.num.Render(strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		return s.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))

	case slog.KindBool:
		if v.Bool() {
			return s.yes.Render("true")
		}

		return s.no.Render("false")

	case slog.KindDuration:
		return s.dur.Render(v.Duration().String())

	case slog.KindTime:
		return s.stamp.Render(v.Time().Format(time.RFC3339))

	case slog.KindAny:
		if level, ok := v.Any().(slog.Level); ok {
			return s.level(level).Render(strings.ToUpper(Level(level).String()))
		}

		if err, ok := v.Any().(error); ok {
			return s.no.Render(err.Error())
		}

		return s.str.Render(v.String())

	default:
		return s.str.Render(v.String())
	}
}
