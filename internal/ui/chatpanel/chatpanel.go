// Package chatpanel renders the assistant conversation and its prompt
// input.
package chatpanel

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/querydesk/internal/chat"
	"github.com/sadopc/querydesk/internal/connection"
	appmsg "github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/theme"
	"github.com/sadopc/querydesk/internal/ui/editor"
)

// Placeholder is the prompt hint.
const Placeholder = "Ask a question about your data..."

// Model is the chat panel.
type Model struct {
	transcript  chat.Transcript
	viewport    viewport.Model
	input       textinput.Model
	highlighter *editor.Highlighter
	selected    int // index into transcript of the selected code message, -1 for none
	width       int
	height      int
	focused     bool
}

// New creates an empty chat panel.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = Placeholder
	ti.Prompt = "› "
	ti.CharLimit = 0

	return Model{
		viewport:    viewport.New(0, 0),
		input:       ti,
		highlighter: editor.NewHighlighter(""),
		selected:    -1,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles keys while focused. Enter asks the root model to generate
// SQL for the prompt; the input is only cleared once the request is
// accepted through BeginGenerate.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	switch k.String() {
	case "enter":
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return m, nil
		}
		return m, func() tea.Msg { return appmsg.GenerateRequestMsg{Prompt: prompt} }
	case "ctrl+p":
		m.moveSelection(-1)
		return m, nil
	case "ctrl+n":
		m.moveSelection(1)
		return m, nil
	case "ctrl+u":
		if sql, ok := m.SelectedSQL(); ok {
			return m, func() tea.Msg { return appmsg.UseQueryMsg{SQL: sql} }
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// BeginGenerate clears the input and appends the prompt followed by the
// loading placeholder.
func (m *Model) BeginGenerate(prompt string) {
	m.input.SetValue("")
	m.transcript.AddUser(prompt)
	m.transcript.AddLoading()
	m.refresh()
}

// AddAI appends an assistant reply, replacing the loading placeholder. Code
// replies become the selected "Use This Query" target.
func (m *Model) AddAI(text string, isCode bool) {
	m.transcript.AddAI(text, isCode)
	if isCode {
		m.selected = m.transcript.Len() - 1
	} else {
		m.fixSelection()
	}
	m.refresh()
}

// CancelGenerate drops the loading placeholder of a generation whose reply
// will be ignored.
func (m *Model) CancelGenerate() {
	if m.transcript.DropLoading() {
		m.refresh()
	}
}

// AddSystem appends a system notice.
func (m *Model) AddSystem(text string) {
	m.transcript.AddSystem(text)
	m.refresh()
}

// Transcript returns the conversation.
func (m Model) Transcript() []chat.Message {
	return m.transcript.Messages()
}

// Loading reports whether a generation is pending.
func (m Model) Loading() bool {
	return m.transcript.HasLoading()
}

// SelectedSQL returns the SQL of the selected code message.
func (m Model) SelectedSQL() (string, bool) {
	msgs := m.transcript.Messages()
	if m.selected < 0 || m.selected >= len(msgs) {
		return "", false
	}
	return msgs[m.selected].Text, true
}

// SetDialect switches code highlighting to the engine of the active
// connection.
func (m *Model) SetDialect(t connection.DBType) {
	m.highlighter = editor.NewHighlighter(t)
	m.refresh()
}

// Input returns the current prompt text.
func (m Model) Input() string {
	return m.input.Value()
}

// SetInput replaces the prompt text.
func (m *Model) SetInput(s string) {
	m.input.SetValue(s)
}

func (m *Model) moveSelection(dir int) {
	msgs := m.transcript.Messages()
	for i := m.selected + dir; i >= 0 && i < len(msgs); i += dir {
		if msgs[i].Kind == chat.AI && msgs[i].Code {
			m.selected = i
			m.refresh()
			return
		}
	}
}

// fixSelection keeps the selection on a code message after the loading
// placeholder was removed and indexes shifted.
func (m *Model) fixSelection() {
	msgs := m.transcript.Messages()
	if m.selected >= 0 && m.selected < len(msgs) && msgs[m.selected].Code {
		return
	}
	m.selected = -1
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == chat.AI && msgs[i].Code {
			m.selected = i
			return
		}
	}
}

// refresh re-renders the transcript and scrolls to its end.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// SetSize sets the panel dimensions, border included.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	innerW := w - 2
	if innerW < 10 {
		innerW = 10
	}
	innerH := h - 2 - 1
	if innerH < 1 {
		innerH = 1
	}
	m.viewport.Width = innerW
	m.viewport.Height = innerH
	m.input.Width = innerW - lipgloss.Width(m.input.Prompt) - 1
	m.refresh()
}

// Focus gives the prompt input focus.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur removes focus.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the panel has focus.
func (m Model) Focused() bool {
	return m.focused
}

// View renders the chat panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	th := theme.Current
	border := th.UnfocusedBorder
	if m.focused {
		border = th.FocusedBorder
	}
	content := lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), m.input.View())
	return border.Width(m.width - 2).Height(m.height - 2).Render(content)
}

func (m Model) renderTranscript() string {
	th := theme.Current
	w := m.viewport.Width
	if w <= 0 {
		w = 40
	}
	wrap := lipgloss.NewStyle().Width(w)

	var blocks []string
	for i, msg := range m.transcript.Messages() {
		switch msg.Kind {
		case chat.User:
			blocks = append(blocks, wrap.Render(th.ChatUser.Render("You: ")+msg.Text))
		case chat.System:
			blocks = append(blocks, wrap.Render(th.ChatSystem.Render(msg.Text)))
		case chat.Loading:
			blocks = append(blocks, th.ChatLoading.Render(msg.Text))
		case chat.AI:
			if !msg.Code {
				blocks = append(blocks, wrap.Render(th.ChatAI.Render("AI: ")+msg.Text))
				continue
			}
			blocks = append(blocks, m.renderCode(th, msg.Text, i == m.selected, w))
		}
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderCode(th *theme.Theme, sql string, selected bool, width int) string {
	header := th.ChatAI.Render(chat.CodeHeader)
	code := th.ChatCode.Width(width - 2).Render(m.highlighter.Highlight(sql, th))

	action := "[ " + chat.UseQueryAction + " ]"
	if selected {
		action = th.DialogButtonActive.Render(action) + th.MutedText.Render("  ctrl+u")
	} else {
		action = th.DialogButton.Render(action)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, code, action)
}
