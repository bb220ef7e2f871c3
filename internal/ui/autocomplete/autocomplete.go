// Package autocomplete is the suggestion popup shown over the editor on
// Ctrl+Space.
package autocomplete

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/querydesk/internal/completion"
	"github.com/sadopc/querydesk/internal/theme"
)

const maxVisible = 5

// SelectedMsg is sent when a suggestion is accepted. Replace is the typed
// prefix the suggestion takes the place of.
type SelectedMsg struct {
	Text    string
	Replace string
}

// DismissMsg is sent when the popup is closed without a choice.
type DismissMsg struct{}

// Model is the autocomplete dropdown overlay.
type Model struct {
	items    []completion.Item
	selected int
	visible  bool
	prefix   string
	engine   *completion.Engine
	width    int
}

// New creates a popup backed by engine.
func New(engine *completion.Engine) Model {
	return Model{
		engine: engine,
		width:  40,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles navigation while the popup is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "ctrl+n":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "enter", "tab":
		if m.selected < len(m.items) {
			sel := SelectedMsg{Text: m.items[m.selected].Label, Replace: m.prefix}
			m.visible = false
			return m, func() tea.Msg { return sel }
		}
	case "esc", "ctrl+c":
		m.visible = false
		return m, func() tea.Msg { return DismissMsg{} }
	}
	return m, nil
}

// View renders the dropdown.
func (m Model) View() string {
	if !m.visible || len(m.items) == 0 {
		return ""
	}
	th := theme.Current

	offset := 0
	if m.selected >= maxVisible {
		offset = m.selected - maxVisible + 1
	}
	end := offset + maxVisible
	if end > len(m.items) {
		end = len(m.items)
	}

	inner := m.width - 2
	lines := make([]string, 0, end-offset)
	for idx := offset; idx < end; idx++ {
		item := m.items[idx]
		label := kindIcon(item.Kind) + " " + item.Label
		if item.Detail != "" {
			label += "  " + item.Detail
		}
		label = ansi.Truncate(label, inner, "…")
		if pad := inner - ansi.StringWidth(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}

		if idx == m.selected {
			lines = append(lines, th.AutocompleteSelected.Render(label))
		} else {
			lines = append(lines, th.AutocompleteItem.Render(label))
		}
	}
	return th.AutocompleteBorder.Render(strings.Join(lines, "\n"))
}

// Trigger computes suggestions for text with the cursor at byte offset
// cursorPos and shows the popup when there are any.
func (m *Model) Trigger(text string, cursorPos int) {
	if m.engine == nil {
		return
	}
	items := m.engine.Complete(text, cursorPos)
	if len(items) == 0 {
		m.visible = false
		return
	}

	if cursorPos > len(text) {
		cursorPos = len(text)
	}
	m.items = items
	m.selected = 0
	m.visible = true
	m.prefix = completion.Prefix(text[:cursorPos])
}

// Dismiss hides the popup.
func (m *Model) Dismiss() {
	m.visible = false
}

// Visible reports whether the popup is shown.
func (m Model) Visible() bool {
	return m.visible
}

// Items returns the current suggestions.
func (m Model) Items() []completion.Item {
	return m.items
}

// SetWidth sets the popup width.
func (m *Model) SetWidth(w int) {
	if w > 10 {
		m.width = w
	}
}

func kindIcon(k completion.Kind) string {
	switch k {
	case completion.KindTable:
		return "T"
	case completion.KindColumn:
		return "C"
	case completion.KindKeyword:
		return "K"
	case completion.KindFunction:
		return "F"
	}
	return " "
}
