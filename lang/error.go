package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every error produced by the interpreter is derived from exactly one of these
// and can be classified with [errors.Is].
var (
	ErrSyntax    = newKindError("SyntaxError", "syntax error")
	ErrReference = newKindError("ReferenceError", "reference error")
	ErrType      = newKindError("TypeError", "type error")
	ErrDepth     = newKindError("RangeError", "maximum call depth exceeded")
	ErrCanceled  = newKindError("Canceled", "evaluation canceled")
)

// Error represents an interpreter failure with optional structured logging
// attributes. It implements both error and slog.LogValuer interfaces.
type Error struct {
	kind  string
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	base  *Error      // Sentinel this error was derived from
	pos   *Position   // Source position, if known
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message and no kind.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func newKindError(kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t == e || (e.base != nil && t == e.base)
}

// Kind returns the error-kind tag, e.g. "SyntaxError" or "TypeError".
func (e *Error) Kind() string {
	if e.kind == "" {
		return "Error"
	}

	return e.kind
}

// Message returns the detail message without the kind prefix.
func (e *Error) Message() string {
	if e.err != nil {
		return e.err.Error()
	}

	return e.msg
}

// Position returns the source position attached to the error, if any.
func (e *Error) Position() (Position, bool) {
	if e.pos == nil {
		return Position{}, false
	}

	return *e.pos, true
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.kind != "" {
		attrs = append(attrs, slog.String("kind", e.kind))
	}

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos != nil {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	n := e.derive()
	n.err = err

	return n
}

// Errorf creates a new Error wrapping a message built from a plain string.
func (e *Error) Errorf(msg string) *Error {
	return e.Wrap(errors.New(msg))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	n := e.derive()
	n.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(n.attrs, e.attrs)
	copy(n.attrs[len(e.attrs):], attrs)

	return n
}

// WithPosition attaches a source position to the error.
func (e *Error) WithPosition(pos Position) *Error {
	n := e.derive()
	n.pos = &pos

	return n
}

func (e *Error) derive() *Error {
	base := e.base
	if base == nil {
		base = e
	}

	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		base:  base,
		pos:   e.pos,
		attrs: e.attrs, // Share attrs
	}
}

// Failure is the structured, host-facing form of a failed run.
type Failure struct {
	Kind    string `json:"kind"             yaml:"kind"`
	Message string `json:"message"          yaml:"message"`
	Line    int    `json:"line,omitempty"   yaml:"line,omitempty"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// String renders f as "Kind: message (line:column)", omitting the position
// when f has none.
func (f Failure) String() string {
	if f.Line == 0 {
		return f.Kind + ": " + f.Message
	}

	return fmt.Sprintf("%s: %s (%d:%d)", f.Kind, f.Message, f.Line, f.Column)
}

// FailureOf converts any error into a [Failure].
// Errors that did not originate in this package are tagged "Error".
func FailureOf(err error) Failure {
	if err == nil {
		return Failure{}
	}

	var e *Error
	if !errors.As(err, &e) {
		return Failure{Kind: "Error", Message: err.Error()}
	}

	f := Failure{Kind: e.Kind(), Message: e.Message()}

	if pos, ok := e.Position(); ok {
		f.Line, f.Column = pos.Line, pos.Column
	}

	return f
}
