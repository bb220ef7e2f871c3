// Package toast renders transient notifications stacked in a corner of the
// screen. Each toast dismisses itself after a fixed delay.
package toast

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/querydesk/internal/theme"
)

// DefaultDuration is how long a toast stays up when none is configured.
const DefaultDuration = 3 * time.Second

// Kind selects the toast's color.
type Kind int

const (
	Info Kind = iota
	Success
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

// ShowMsg asks the toast stack to display a notification. Components return
// it through Show instead of holding the stack themselves.
type ShowMsg struct {
	Kind Kind
	Text string
}

// Show returns a command emitting ShowMsg.
func Show(kind Kind, text string) tea.Cmd {
	return func() tea.Msg { return ShowMsg{Kind: kind, Text: text} }
}

// DismissMsg removes the toast with the given id.
type DismissMsg struct {
	ID int
}

// Toast is one visible notification.
type Toast struct {
	ID   int
	Kind Kind
	Text string
}

// Model is the toast stack, oldest first.
type Model struct {
	toasts   []Toast
	nextID   int
	duration time.Duration
	maxWidth int
}

// New creates a toast stack that dismisses each toast after d. A
// non-positive d uses DefaultDuration.
func New(d time.Duration) Model {
	if d <= 0 {
		d = DefaultDuration
	}
	return Model{duration: d, maxWidth: 48, nextID: 1}
}

// Push appends a toast and returns the command that dismisses it.
func (m *Model) Push(kind Kind, text string) tea.Cmd {
	id := m.nextID
	m.nextID++
	m.toasts = append(m.toasts, Toast{ID: id, Kind: kind, Text: text})
	return tea.Tick(m.duration, func(time.Time) tea.Msg {
		return DismissMsg{ID: id}
	})
}

// Dismiss removes the toast with the given id. Unknown ids are ignored.
func (m *Model) Dismiss(id int) {
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Clear removes every toast.
func (m *Model) Clear() {
	m.toasts = nil
}

// Toasts returns the visible toasts, oldest first.
func (m Model) Toasts() []Toast { return m.toasts }

// Len returns the number of visible toasts.
func (m Model) Len() int { return len(m.toasts) }

// Duration returns the dismissal delay.
func (m Model) Duration() time.Duration { return m.duration }

// Update handles ShowMsg and DismissMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ShowMsg:
		return m, m.Push(msg.Kind, msg.Text)
	case DismissMsg:
		m.Dismiss(msg.ID)
	}
	return m, nil
}

// SetMaxWidth bounds the width of a single toast.
func (m *Model) SetMaxWidth(w int) {
	if w > 10 {
		m.maxWidth = w
	}
}

// View renders the stack, newest at the bottom. It is empty when no toast
// is visible.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}
	th := theme.Current
	parts := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := th.ToastInfo
		switch t.Kind {
		case Success:
			style = th.ToastSuccess
		case Warning:
			style = th.ToastWarning
		case Error:
			style = th.ToastError
		}
		parts = append(parts, style.MaxWidth(m.maxWidth).Render(icon(t.Kind)+" "+t.Text))
	}
	return lipgloss.JoinVertical(lipgloss.Right, parts...)
}

// Overlay draws the stack over the bottom-right corner of base, which must
// be width columns wide.
func (m Model) Overlay(base string, width int) string {
	stack := m.View()
	if stack == "" {
		return base
	}
	baseLines := strings.Split(base, "\n")
	stackLines := strings.Split(stack, "\n")
	// Leave the status bar line visible.
	start := len(baseLines) - 1 - len(stackLines)
	if start < 0 {
		start = 0
	}
	for i, line := range stackLines {
		row := start + i
		if row >= len(baseLines) {
			break
		}
		pad := width - lipgloss.Width(line)
		if pad < 0 {
			pad = 0
		}
		left := ansi.Truncate(baseLines[row], pad, "")
		if fill := pad - ansi.StringWidth(left); fill > 0 {
			left += strings.Repeat(" ", fill)
		}
		baseLines[row] = left + line
	}
	return strings.Join(baseLines, "\n")
}

func icon(k Kind) string {
	switch k {
	case Success:
		return "✓"
	case Warning:
		return "!"
	case Error:
		return "✗"
	}
	return "i"
}
