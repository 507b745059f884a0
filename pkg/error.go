package pkg

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Error is a chain of errors, innermost first. Sentinels declared with
// [MakeErrorf] are matched with [errors.Is] against any link of the chain.
type Error []error

var (
	// ErrReadInput is returned when a program source cannot be read.
	ErrReadInput = MakeErrorf("failed to read input")

	// ErrParse is returned when a program source is not a valid expression.
	ErrParse = MakeErrorf("parse error")

	// ErrEval is returned when a program fails at run time.
	ErrEval = MakeErrorf("evaluation error")

	// ErrNoSource is returned when a command that needs a program has none.
	ErrNoSource = MakeErrorf("no program source (use -e, a file, or '-' for stdin)")

	// ErrInvalidFormat is returned for an unknown output format.
	ErrInvalidFormat = MakeErrorf("invalid format")

	// ErrJSONMarshal is returned when JSON rendering fails.
	ErrJSONMarshal = MakeErrorf("JSON marshal error")

	// ErrYAMLMarshal is returned when YAML rendering fails.
	ErrYAMLMarshal = MakeErrorf("YAML marshal error")
)

// MakeError constructs an Error from the given errors, flattening any chains
// they wrap. The first argument is the innermost error. Nil errors are
// skipped.
func MakeError(errs ...error) Error {
	var e Error

	for _, err := range errs {
		if err != nil {
			e = append(e, UnwrapErrors(err)...)
		}
	}

	return e
}

// MakeErrorf constructs an Error from a formatted error message.
func MakeErrorf(format string, args ...any) Error {
	return MakeError(fmt.Errorf(format, args...))
}

// Error joins the messages of the chain, innermost first, with ": ".
func (e Error) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}

	return strings.Join(parts, ": ")
}

// Wrap returns a copy of the chain with err appended as the outermost links.
func (e Error) Wrap(err ...error) Error {
	return append(e[:len(e):len(e)], err...)
}

// Wrapf returns a copy of the chain with a formatted error appended.
func (e Error) Wrapf(format string, args ...any) Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// Unwrap returns the links of the chain.
func (e Error) Unwrap() []error {
	return e
}

// Is reports whether every link of target appears in the chain, so that a
// sentinel matches any chain built from it with [Error.Wrap].
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok || len(t) == 0 {
		return false
	}

	for _, want := range t {
		if !slices.ContainsFunc(e, func(link error) bool {
			return errors.Is(link, want)
		}) {
			return false
		}
	}

	return true
}

// UnwrapErrors recursively unwraps err and returns every error in its chain,
// innermost first.
func UnwrapErrors(err error) Error {
	if err == nil {
		return nil
	}

	var chain Error

	switch e := err.(type) {
	case interface{ Unwrap() []error }:
		for _, wrapped := range e.Unwrap() {
			chain = append(chain, UnwrapErrors(wrapped)...)
		}

	case interface{ Unwrap() error }:
		chain = append(chain, UnwrapErrors(e.Unwrap())...)
	}

	return append(chain, err)
}
