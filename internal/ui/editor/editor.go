package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/theme"
)

// Placeholder is shown while the buffer is empty.
const Placeholder = "Write SQL here, or ask the assistant to generate it..."

// Options configure a new editor.
type Options struct {
	TabSize         int
	ShowLineNumbers bool
}

// Model is the query buffer. When focused, the underlying textarea handles
// editing. When blurred, the content is rendered with syntax highlighting
// and line numbers. Lint problems for the current text are shown on the
// last line inside the border.
type Model struct {
	textarea    textarea.Model
	highlighter *Highlighter
	dialect     connection.DBType
	tabSize     int
	lineNumbers bool
	problems    []string
	width       int
	height      int
	focused     bool
	modified    bool // content changed since the last ResetModified
}

// New creates an empty editor.
func New(opts Options) Model {
	if opts.TabSize <= 0 {
		opts.TabSize = 4
	}

	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = opts.ShowLineNumbers
	ta.CharLimit = 0 // unlimited

	th := theme.Current
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Prompt = th.EditorLineNumber
	ta.FocusedStyle.Text = lipgloss.NewStyle()
	ta.BlurredStyle.Prompt = th.EditorLineNumber
	ta.BlurredStyle.Text = lipgloss.NewStyle()

	ta.Blur()

	return Model{
		textarea:    ta,
		highlighter: NewHighlighter(""),
		tabSize:     opts.TabSize,
		lineNumbers: opts.ShowLineNumbers,
	}
}

// Init returns the textarea blink command so the cursor blinks when focused.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update processes messages while focused. Tab inserts spaces up to the
// configured tab size.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyTab {
		m.textarea.InsertString(strings.Repeat(" ", m.tabSize))
		m.changed()
		return m, nil
	}

	prevValue := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if m.textarea.Value() != prevValue {
		m.changed()
	}
	return m, cmd
}

func (m *Model) changed() {
	m.modified = true
	m.problems = Lint(m.textarea.Value())
}

// View renders the editor.
func (m Model) View() string {
	th := theme.Current

	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}

	innerW, innerH := m.inner()
	textH := innerH
	if len(m.problems) > 0 && innerH > 1 {
		textH--
	}

	var content string
	if m.focused {
		m.textarea.SetWidth(innerW)
		m.textarea.SetHeight(textH)
		content = m.textarea.View()
	} else {
		content = m.renderHighlighted(th, textH)
	}
	if textH < innerH {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderLint(th, innerW))
	}

	return border.
		Width(innerW).
		Height(innerH).
		Render(content)
}

func (m Model) renderLint(th *theme.Theme, width int) string {
	line := "⚠ " + strings.Join(m.problems, "; ")
	return th.LintWarning.MaxWidth(width).Render(line)
}

// renderHighlighted produces a syntax-highlighted view of the buffer for the
// blurred state.
func (m Model) renderHighlighted(th *theme.Theme, height int) string {
	raw := m.textarea.Value()
	if raw == "" {
		return th.MutedText.Render(m.textarea.Placeholder)
	}

	lines := strings.Split(m.highlighter.Highlight(raw, th), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	if !m.lineNumbers {
		return strings.Join(lines, "\n")
	}

	totalLines := strings.Count(raw, "\n") + 1
	gutterWidth := len(fmt.Sprintf("%d", totalLines))
	if gutterWidth < 2 {
		gutterWidth = 2
	}

	var b strings.Builder
	for i, line := range lines {
		b.WriteString(th.EditorLineNumber.Render(fmt.Sprintf("%*d ", gutterWidth, i+1)))
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) inner() (int, int) {
	w, h := m.width-2, m.height-2
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Value returns the raw text of the buffer.
func (m Model) Value() string {
	return m.textarea.Value()
}

// SetValue replaces the buffer. Generated SQL and "Use This Query" both
// overwrite whatever the user had typed.
func (m *Model) SetValue(s string) {
	m.textarea.SetValue(s)
	m.changed()
}

// Format rewrites the buffer with Format. It reports whether the text
// changed.
func (m *Model) Format() bool {
	raw := m.textarea.Value()
	if strings.TrimSpace(raw) == "" {
		return false
	}
	out := Format(raw)
	if out == raw {
		return false
	}
	m.SetValue(out)
	return true
}

// Clear empties the buffer.
func (m *Model) Clear() {
	m.textarea.Reset()
	m.problems = nil
	m.modified = false
}

// SetDialect switches highlighting to the SQL dialect of the active
// connection.
func (m *Model) SetDialect(t connection.DBType) {
	if t == m.dialect && m.highlighter != nil {
		return
	}
	m.dialect = t
	m.highlighter = NewHighlighter(t)
}

// Dialect returns the engine used for highlighting.
func (m Model) Dialect() connection.DBType {
	return m.dialect
}

// Problems returns the lint problems of the current buffer.
func (m Model) Problems() []string {
	return m.problems
}

// SetSize updates the editor dimensions, border included.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	innerW, innerH := m.inner()
	m.textarea.SetWidth(innerW)
	m.textarea.SetHeight(innerH)
}

// Focus gives input focus to the editor.
func (m *Model) Focus() {
	m.focused = true
	m.textarea.Focus()
}

// Blur removes input focus from the editor.
func (m *Model) Blur() {
	m.focused = false
	m.textarea.Blur()
}

// Focused reports whether the editor currently has input focus.
func (m Model) Focused() bool {
	return m.focused
}

// Modified reports whether the content has changed since the last call to
// ResetModified.
func (m Model) Modified() bool {
	return m.modified
}

// ResetModified clears the modification flag, called after the query is
// executed.
func (m *Model) ResetModified() {
	m.modified = false
}

// Cursor returns the 1-based line and column of the cursor.
func (m Model) Cursor() (line, col int) {
	return m.textarea.Line() + 1, m.cursorColumn() + 1
}

// CursorOffset returns the byte offset of the cursor in Value.
func (m Model) CursorOffset() int {
	lines := strings.Split(m.textarea.Value(), "\n")
	row := m.textarea.Line()
	if row >= len(lines) {
		row = len(lines) - 1
	}
	off := 0
	for _, l := range lines[:row] {
		off += len(l) + 1
	}
	line := []rune(lines[row])
	col := m.cursorColumn()
	if col > len(line) {
		col = len(line)
	}
	return off + len(string(line[:col]))
}

func (m Model) currentLine() string {
	lines := strings.Split(m.textarea.Value(), "\n")
	row := m.textarea.Line()
	if row < 0 || row >= len(lines) {
		return ""
	}
	return lines[row]
}

// cursorColumn returns the cursor position within its logical line.
func (m Model) cursorColumn() int {
	li := m.textarea.LineInfo()
	return li.StartColumn + li.ColumnOffset
}

// ReplaceBeforeCursor deletes the n runes before the cursor and inserts
// text, leaving the cursor after it. Used to accept a completion.
func (m *Model) ReplaceBeforeCursor(n int, text string) {
	focused := m.textarea.Focused()
	if !focused {
		m.textarea.Focus()
	}
	for i := 0; i < n; i++ {
		m.textarea, _ = m.textarea.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	if !focused {
		m.textarea.Blur()
	}
	m.textarea.InsertString(text)
	m.changed()
}

// InsertText inserts text at the cursor, separated by a space from a
// preceding word. Used for schema names picked in the explorer.
func (m *Model) InsertText(text string) {
	line := []rune(m.currentLine())
	col := m.cursorColumn()
	if col > len(line) {
		col = len(line)
	}
	if col > 0 {
		switch line[col-1] {
		case ' ', '\t', '(', ',':
		default:
			text = " " + text
		}
	}
	m.textarea.InsertString(text)
	m.changed()
}
