package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/egg/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "env", "logs", "edit", "clear", "quit"}

// wordBounds returns the word at the cursor position and its byte boundaries
// within input. Returns an empty word when the cursor sits on a delimiter.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(cursor, len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !lang.IsWordRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !lang.IsWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the names visible from env together with the special
// form names, each once, in sorted order.
func candidates(env *lang.Env) []string {
	names := append(env.Names(), lang.SpecialForms()...)

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. An empty word, or a word inside a string or comment, has no
// matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	names []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := m.input.Position()

	word, wordStart, wordEnd := wordBounds(input, cursor)
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	if m.mode == modeCtrl {
		names = ctrlCommands
	} else {
		if inLiteral(input, wordStart) {
			return nil, nil, wordStart, wordEnd
		}

		names = candidates(m.interp.Session())
	}

	return fuzzy.Find(word, names), names, wordStart, wordEnd
}

// inLiteral reports whether offset lies inside a string literal or comment.
func inLiteral(input string, offset int) bool {
	var inString, inComment, escaped bool

	for _, r := range input[:offset] {
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
		}
	}

	return inString || inComment
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		last := i == len(matches)-1
		if i > 0 && used+entryWidth+ellipsisWidth > width && !last {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Special forms are rendered in the form style.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if lang.IsSpecialForm(match.Str) {
		base = formStyle
	}

	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	var b strings.Builder

	for i, r := range match.Str {
		if slices.Contains(match.MatchedIndexes, i) {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
