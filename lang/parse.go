package lang

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CommentMarker introduces a comment that runs to the end of the line.
const CommentMarker = '~'

// snippetLen bounds the remaining-text excerpt attached to syntax errors.
const snippetLen = 24

// Parse parses exactly one expression from text. Trailing text other than
// whitespace and comments is a syntax error.
func Parse(text string) (Node, error) {
	p := newParser(text)

	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipWhitespaceAndComments()

	if !p.eof() {
		return nil, p.fail("unexpected text after program")
	}

	return node, nil
}

// parser holds the parser state.
type parser struct {
	input []byte
	pos   int
	line  int
	col   int
}

func newParser(s string) *parser {
	return &parser{
		input: []byte(s),
		pos:   0,
		line:  1,
		col:   1,
	}
}

// parseExpression parses an atom and any applications that follow it.
func (p *parser) parseExpression() (Node, error) {
	p.skipWhitespaceAndComments()

	if p.eof() {
		return nil, p.fail("unexpected end of input")
	}

	var (
		atom Node
		err  error
	)

	switch ch := p.peek(); {
	case ch == '"':
		atom, err = p.parseString()

	case isDigit(ch) && p.numberAhead():
		atom, err = p.parseNumber()

	case p.invalid():
		return nil, p.fail("invalid UTF-8 encoding")

	case IsWordRune(ch):
		atom = p.parseWord()

	default:
		return nil, p.fail("unexpected syntax")
	}

	if err != nil {
		return nil, err
	}

	return p.parseApply(atom)
}

// parseApply parses zero or more argument lists following expr. Each list
// applies the expression built so far, so f(a)(b) is legal.
func (p *parser) parseApply(expr Node) (Node, error) {
	for {
		p.skipWhitespaceAndComments()

		if p.peek() != '(' || p.eof() {
			return expr, nil
		}

		p.advance() // skip '('

		app := &Apply{Operator: expr, Args: []Node{}, At: expr.Pos()}

		p.skipWhitespaceAndComments()

		for p.peek() != ')' || p.eof() {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}

			app.Args = append(app.Args, arg)

			p.skipWhitespaceAndComments()

			switch {
			case p.eof():
				return nil, p.fail("expected ',' or ')' but reached end of input")

			case p.peek() == ',':
				p.advance()
				p.skipWhitespaceAndComments()

			case p.peek() != ')':
				return nil, p.fail(
					fmt.Sprintf("expected ',' or ')' but got %q", p.peek()),
				)
			}
		}

		p.advance() // skip ')'

		expr = app
	}
}

// parseString parses a double-quoted string. Only \" and \\ are recognized
// escapes, and the string may not contain an unescaped newline.
func (p *parser) parseString() (Node, error) {
	pos := p.position()

	p.advance() // skip opening quote

	var sb strings.Builder

	for {
		if p.eof() {
			return nil, p.failAt(pos, "unterminated string")
		}

		ch := p.peek()

		switch ch {
		case '"':
			p.advance()

			return &Literal{Value: String(sb.String()), At: pos}, nil

		case '\n':
			return nil, p.failAt(pos, "newline in string")

		case '\\':
			p.advance()

			esc := p.peek()
			if p.eof() || (esc != '"' && esc != '\\') {
				return nil, p.fail(
					fmt.Sprintf("invalid escape sequence %q", "\\"+string(esc)),
				)
			}

			sb.WriteRune(esc)
			p.advance()

		default:
			sb.WriteRune(ch)
			p.advance()
		}
	}
}

// numberAhead reports whether a numeric literal starts at the current
// position and ends at a word boundary. Otherwise the text is a word, for
// example 2x or 1_000.
func (p *parser) numberAhead() bool {
	n := scanNumber(p.input[p.pos:])

	return n > 0 && (p.pos+n >= len(p.input) || !isASCIIWord(p.input[p.pos+n]))
}

func (p *parser) parseNumber() (Node, error) {
	pos := p.position()
	n := scanNumber(p.input[p.pos:])
	text := string(p.input[p.pos : p.pos+n])

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Out-of-range literals still parse to ±Inf; anything else is a bug in
		// scanNumber.
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return nil, p.fail("invalid number " + strconv.Quote(text))
		}
	}

	for range n {
		p.advance()
	}

	return &Literal{Value: Number(f), At: pos}, nil
}

// parseWord parses a maximal run of word characters. The words true and false
// are Boolean literals; every other word is a variable.
func (p *parser) parseWord() Node {
	pos := p.position()
	start := p.pos

	for !p.eof() && !p.invalid() && IsWordRune(p.peek()) {
		p.advance()
	}

	word := string(p.input[start:p.pos])

	switch word {
	case "true":
		return &Literal{Value: Boolean(true), At: pos}

	case "false":
		return &Literal{Value: Boolean(false), At: pos}

	default:
		return &Variable{Name: word, At: pos}
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

// invalid reports whether the next byte does not begin a valid UTF-8 sequence.
// An encoded U+FFFD is valid.
func (p *parser) invalid() bool {
	r, size := utf8.DecodeRune(p.input[p.pos:])

	return r == utf8.RuneError && size == 1
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRune(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) skipWhitespaceAndComments() {
	for !p.eof() {
		switch ch := p.peek(); {
		case unicode.IsSpace(ch):
			p.advance()

		case ch == CommentMarker:
			for !p.eof() && p.peek() != '\n' {
				p.advance()
			}

		default:
			return
		}
	}
}

// snippet returns a bounded excerpt of the unparsed input.
func (p *parser) snippet() string {
	rest := p.input[p.pos:]

	if utf8.RuneCount(rest) <= snippetLen {
		return string(rest)
	}

	i, n := 0, 0
	for n < snippetLen {
		_, size := utf8.DecodeRune(rest[i:])
		i += size
		n++
	}

	return string(rest[:i]) + "…"
}

func (p *parser) fail(msg string) *Error {
	return p.failAt(p.position(), msg)
}

func (p *parser) failAt(pos Position, msg string) *Error {
	return ErrSyntax.Errorf(msg).
		WithPosition(pos).
		With(slog.String("rest", p.snippet()))
}

// Character classification

// IsWordRune reports whether r may appear in a word: anything except
// whitespace, the comment marker, comma, parentheses, and double quote.
func IsWordRune(r rune) bool {
	switch r {
	case CommentMarker, ',', '(', ')', '"':
		return false
	}

	return !unicode.IsSpace(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIIWord(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// scanNumber returns the length of the numeric literal at the start of b, or
// 0 if there is none. A literal is digits, an optional fraction, and an
// optional exponent.
func scanNumber(b []byte) int {
	digits := func(i int) int {
		for i < len(b) && b[i] >= '0' && b[i] <= '9' {
			i++
		}

		return i
	}

	n := digits(0)
	if n == 0 {
		return 0
	}

	if n+1 < len(b) && b[n] == '.' && isDigit(rune(b[n+1])) {
		n = digits(n + 1)
	}

	if n < len(b) && (b[n] == 'e' || b[n] == 'E') {
		i := n + 1
		if i < len(b) && (b[i] == '+' || b[i] == '-') {
			i++
		}

		if j := digits(i); j > i {
			n = j
		}
	}

	return n
}
