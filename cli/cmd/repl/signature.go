package repl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/egg/lang"
)

// formParams lists the operand names shown for each special form.
var formParams = map[string][]string{
	"if":    {"test", "then", "else"},
	"while": {"test", "body"},
	"do":    {"...exprs"},
	"let":   {"name", "value"},
	"set":   {"name", "value"},
	"fun":   {"...params", "body"},
	"::":    {"...params", "body"},
}

// functionCall describes the innermost application enclosing the cursor.
type functionCall struct {
	name     string // operator word, empty for computed operators
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside an argument list
}

// detectFunctionCall scans input up to cursor and reports the innermost
// argument list left open at the cursor. Parentheses and commas inside string
// literals and comments are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(cursor, len(input))

	var open []functionCall

	var inString, inComment, escaped bool

	for i := 0; i < cursor; {
		r, size := utf8.DecodeRuneInString(input[i:])

		switch {
		case inComment:
			inComment = r != '\n'

		case inString:
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"', r == '\n':
				inString = false
			}

		case r == '"':
			inString = true

		case r == lang.CommentMarker:
			inComment = true

		case r == '(':
			open = append(open, functionCall{
				name:   operatorBefore(input[:i]),
				inCall: true,
			})

		case r == ')':
			if len(open) > 0 {
				open = open[:len(open)-1]
			}

		case r == ',':
			if len(open) > 0 {
				open[len(open)-1].argIndex++
			}
		}

		i += size
	}

	if len(open) == 0 {
		return functionCall{}
	}

	return open[len(open)-1]
}

// operatorBefore returns the word ending at the end of prefix, ignoring
// trailing whitespace, or "" when the operator is not a word.
func operatorBefore(prefix string) string {
	prefix = strings.TrimRightFunc(prefix, unicode.IsSpace)

	word, _, _ := wordBounds(prefix, len(prefix))

	return word
}

// signature returns the parameter names of the operator name as seen from
// env. It reports false when name is not a special form or a function.
func signature(env *lang.Env, name string) ([]string, bool) {
	if params, ok := formParams[name]; ok {
		return params, true
	}

	v, ok := env.Lookup(name)
	if !ok {
		return nil, false
	}

	fn, ok := v.(*lang.Func)
	if !ok {
		return nil, false
	}

	if !fn.IsNative() {
		return fn.Params, true
	}

	if fn.Arity < 0 {
		return []string{"...values"}, true
	}

	params := make([]string, fn.Arity)
	for i := range params {
		params[i] = string(rune('a' + i))
	}

	return params, true
}

// renderSignatureHint renders name(params) with the parameter at argIndex
// highlighted. A variadic parameter stays highlighted for every later
// argument.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasPrefix(param, "...")
		current := argIndex == i || (variadic && argIndex > i && i == len(params)-1)

		if current {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
