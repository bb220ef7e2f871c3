package tabs

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/querydesk/internal/theme"
)

// View identifies one presentation of a query result.
type View int

const (
	ViewTable View = iota
	ViewVisualization
	ViewInsights
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewTable:
		return "Table"
	case ViewVisualization:
		return "Visualization"
	case ViewInsights:
		return "Data Insights"
	}
	return "unknown"
}

// Tab represents a single result view tab.
type Tab struct {
	View     View
	Title    string
	Disabled bool
}

// SwitchMsg requests switching to a view.
type SwitchMsg struct {
	View View
}

// Model is the result view tab strip. The table tab is always enabled; the
// other two are enabled only when the result carries their payload.
type Model struct {
	tabs   []Tab
	active int
	width  int
}

// New creates a tab strip showing the table view.
func New() Model {
	m := Model{}
	for v := ViewTable; v < viewCount; v++ {
		m.tabs = append(m.tabs, Tab{View: v, Title: v.String()})
	}
	m.Reset()
	return m
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles tab strip messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(SwitchMsg); ok {
		m.Select(msg.View)
	}
	return m, nil
}

// View renders the tab strip.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	th := theme.Current

	var tabs []string
	for i, tab := range m.tabs {
		title := fmt.Sprintf("%d %s", i+1, tab.Title)

		var style lipgloss.Style
		switch {
		case tab.Disabled:
			style = th.TabDisabled
		case i == m.active:
			style = th.TabActive
		default:
			style = th.TabInactive
		}
		tabs = append(tabs, style.Render(title))
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	return th.TabBar.Width(m.width).Render(bar)
}

// SetSize sets the tab strip width.
func (m *Model) SetSize(width int) {
	m.width = width
}

// Reset shows the table view and disables the other two.
func (m *Model) Reset() {
	m.SetAvailable(false, false)
	m.active = 0
}

// SetAvailable enables the visualization and insights tabs according to
// the payload of the current result. A disabled active tab falls back to the
// table.
func (m *Model) SetAvailable(visualization, insights bool) {
	m.tabs[ViewVisualization].Disabled = !visualization
	m.tabs[ViewInsights].Disabled = !insights
	if m.tabs[m.active].Disabled {
		m.active = 0
	}
}

// Select switches to v. It reports false, leaving the active tab alone, when
// v is disabled or unknown.
func (m *Model) Select(v View) bool {
	if v < 0 || v >= viewCount || m.tabs[v].Disabled {
		return false
	}
	m.active = int(v)
	return true
}

// Next switches to the next enabled tab.
func (m *Model) Next() {
	m.step(1)
}

// Prev switches to the previous enabled tab.
func (m *Model) Prev() {
	m.step(-1)
}

func (m *Model) step(dir int) {
	n := len(m.tabs)
	for i := 1; i < n; i++ {
		idx := (m.active + dir*i + n) % n
		if !m.tabs[idx].Disabled {
			m.active = idx
			return
		}
	}
}

// Active returns the active view.
func (m Model) Active() View {
	return m.tabs[m.active].View
}

// Enabled reports whether v can be selected.
func (m Model) Enabled(v View) bool {
	return v >= 0 && v < viewCount && !m.tabs[v].Disabled
}

// Tabs returns all tabs.
func (m Model) Tabs() []Tab {
	return m.tabs
}
