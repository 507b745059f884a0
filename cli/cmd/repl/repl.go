package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/egg/lang"
	"github.com/ardnew/egg/log"
)

// editDoneMsg is sent when the editor produced a program that parses.
type editDoneMsg struct{ text string }

// editCancelledMsg is sent when the user emptied the editor buffer.
type editCancelledMsg struct{}

// editErrorMsg is sent when the edit loop fails or is declined.
type editErrorMsg struct{ err error }

// evalDoneMsg carries the rendered output of a finished evaluation.
type evalDoneMsg struct{ output string }

const (
	evalPrompt = "egg> "
	ctrlPrompt = "   : "
)

func helpMessage() string {
	return `
Commands (press Esc to toggle command mode, or prefix with ':'):

  help     Print this message
  env      List bindings made in this session
  logs     List every value printed so far
  edit     Write a program in $EDITOR and evaluate it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type an expression to evaluate it; let bindings persist across lines
  Completions of bindings and special forms appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Inside an argument list, the operator's parameters are shown
  Use Up/Down for history, Shift+Up/Shift+Down for history of this mode
  Press Ctrl+C to interrupt a running evaluation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	printStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	formStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// Config holds the settings of a REPL session.
type Config struct {
	// History is the path of the history file. Empty keeps history in memory.
	History string
	// Input and Output are the terminal streams. Nil uses the process's
	// standard streams.
	Input  io.Reader
	Output io.Writer
	Logger log.Logger
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	interp       *lang.Interpreter
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	names        []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	evalText     string
	evalCursor   int
	ctrlText     string
	ctrlCursor   int
	draft        string             // program text of the last edit
	interrupt    context.CancelFunc // cancels the running evaluation, if any
}

// Run starts an interactive session evaluating lines in the session frame of
// in, until the user quits or ctx is done.
func Run(ctx context.Context, in *lang.Interpreter, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.History),
		slog.Int("bindings", len(in.Session().Names())),
	)

	history := NewHistory(cfg.History)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.History),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}

	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}

	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	_, err = tea.NewProgram(newModel(ctx, in, history, cfg.Logger), opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	in *lang.Interpreter,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		interp:     in,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		m.draft = msg.text

		return m.startEval(msg.text)

	case evalDoneMsg:
		m.interrupt = nil

		return m, tea.Println(msg.output)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("edit: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.hint())
	b.WriteString("\n")

	return b.String()
}

// hint returns the line shown below the prompt: the history position, usage
// help, the enclosing operator's signature, or the completion candidates.
func (m model) hint() string {
	if m.interrupt != nil {
		return hintStyle.Render("Evaluating... press Ctrl+C to interrupt")
	}

	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if len(m.matches) > 0 {
		return renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width)
	}

	if m.mode == modeEval {
		call := detectFunctionCall(input, m.input.Position())
		if call.inCall && call.name != "" {
			if params, ok := signature(m.interp.Session(), call.name); ok {
				return renderSignatureHint(call.name, params, call.argIndex)
			}
		}
	}

	return ""
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	// The interpreter belongs to the evaluation until it finishes.
	if m.interrupt != nil {
		if msg.Type == tea.KeyCtrlC {
			m.interrupt()
		}

		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1, false), nil

	case tea.KeyDown:
		return m.historyStep(1, false), nil

	case tea.KeyShiftUp:
		return m.historyStep(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyStep(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeEval), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space breaks out of tab-cycling, keeping the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step (1 forward, -1 backward) and writes
// the selected candidate into the input.
func (m model) cycle(step int) model {
	switch len(m.matches) {
	case 0:
		return m

	case 1:
		// Single candidate: complete and confirm immediately.
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also confirms the completion when exactly one
// candidate remains and the typed word already equals it. autoConfirm should
// be false for deletions and cursor navigation so that the user can freely
// edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.names, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.evalText, m.evalCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	mode := m.mode
	if command, ok := ctrlCommand(input); ok && mode == modeEval {
		mode, input = modeCtrl, command
	}

	if err := m.history.Add(input, mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history",
			slog.Any("error", err),
		)
	}

	m.historyIdx = m.history.Len()

	if mode == modeCtrl {
		return m.executeCommand(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	m, eval := m.startEval(input)

	return m, tea.Sequence(echo, eval)
}

// startEval returns a command evaluating text off the update loop. Until its
// evalDoneMsg arrives, Ctrl+C cancels the evaluation instead of the line.
func (m model) startEval(text string) (model, tea.Cmd) {
	ctx, cancel := context.WithCancel(m.ctxFunc())

	m.interrupt = cancel

	return m, func() tea.Msg {
		defer cancel()

		return evalDoneMsg{output: m.evaluate(ctx, text)}
	}
}

// ctrlCommand reports whether an eval-mode line is a ':'-prefixed control
// command and returns the command without the prefix. Lines such as
// "::(x, x)" that merely start with ':' are programs.
func ctrlCommand(input string) (string, bool) {
	rest, ok := strings.CutPrefix(input, ":")
	if !ok {
		return "", false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", false
	}

	_, known := commandAliases[fields[0]]

	return rest, known
}

// evaluate runs text in the session frame and returns the values it printed
// followed by its result or failure, one per line.
func (m model) evaluate(ctx context.Context, text string) string {
	before := len(m.interp.Logs())

	value, err := m.interp.EvalIn(ctx, text, m.interp.Session())

	var lines []string

	for _, v := range m.interp.Logs()[before:] {
		lines = append(lines, printStyle.Render(lang.Display(v)))
	}

	if err != nil {
		m.logger.TraceContext(ctx, "repl eval result",
			slog.String("result_type", "error"),
			slog.Any("error", err),
		)

		return strings.Join(append(lines, errorStyle.Render(lang.FailureOf(err).String())), "\n")
	}

	m.logger.TraceContext(ctx, "repl eval result",
		slog.String("result_type", value.Kind().String()),
	)

	return strings.Join(append(lines, resultStyle.Render("⇒ "+lang.FormatValue(value))), "\n")
}

// commandAliases maps every accepted control command spelling to its name.
var commandAliases = map[string]string{
	"h": "help", "help": "help", "?": "help",
	"e": "env", "env": "env",
	"l": "logs", "logs": "logs",
	"edit": "edit",
	"c":    "clear", "clear": "clear",
	"q": "quit", "quit": "quit", "exit": "quit",
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return m, nil
	}

	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	m.logger.TraceContext(m.ctxFunc(), "repl exec command",
		slog.String("command", fields[0]),
	)

	switch commandAliases[fields[0]] {
	case "quit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "env":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "logs":
		return m, tea.Sequence(echo, tea.Println(m.listLogs()))

	case "clear":
		return m, tea.ClearScreen

	case "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + fields[0] + " (try 'help')"),
		)
	}
}

// edit suspends the program to run the editor on the last draft.
func (m model) edit() tea.Cmd {
	cmd := &editCommand{
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		draft:   m.draft,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case err != nil:
			return editErrorMsg{err: err}

		case !cmd.parsed:
			return editCancelledMsg{}

		default:
			return editDoneMsg{text: cmd.draft}
		}
	})
}

// listBindings renders the bindings owned by the session frame.
func (m model) listBindings() string {
	session := m.interp.Session()

	var b strings.Builder

	for _, name := range session.Names() {
		if !session.Owns(name) {
			continue
		}

		v, _ := session.Lookup(name)
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(preview(lang.FormatValue(v))))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// listLogs renders every printed value, oldest first.
func (m model) listLogs() string {
	logs := m.interp.Logs()
	if len(logs) == 0 {
		return hintStyle.Render("  (nothing printed)")
	}

	width := len(strconv.Itoa(len(logs)))

	lines := make([]string, len(logs))
	for i, v := range logs {
		lines[i] = fmt.Sprintf("  %*d %s", width, i+1, lang.FormatValue(v))
	}

	return strings.Join(lines, "\n")
}

// preview shortens s to a single line of at most 40 runes.
func preview(s string) string {
	const limit = 40

	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-3]) + "..."
	}

	return s
}

// historyStep moves through history by step (-1 older, 1 newer). With
// sameMode, entries from the other mode are skipped; otherwise the input
// mode follows the entry. Stepping past the newest entry clears the input.
func (m model) historyStep(step int, sameMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (sameMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to the specified mode, preserving the input of each
// mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeEval {
		m.evalText, m.evalCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
		m.input.SetValue(m.evalText)
		m.input.SetCursor(m.evalCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	refreshMatches(&m, false)

	return m
}
