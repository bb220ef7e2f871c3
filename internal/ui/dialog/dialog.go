package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sadopc/querydesk/internal/form"
	"github.com/sadopc/querydesk/internal/theme"
)

// Button represents a dialog button. A button with a BusyLabel keeps the
// dialog open while the owner runs the requested action; one without closes
// the dialog when chosen.
type Button struct {
	Label     string
	BusyLabel string
}

// ChoiceMsg is emitted when a button is chosen. Target is the value the
// dialog was shown for.
type ChoiceMsg struct {
	Dialog string
	Button int
	Label  string
	Target string
}

// Model is a reusable modal dialog component with two states, hidden and
// visible.
type Model struct {
	id        string
	title     string
	body      string
	buttons   []Button
	controls  []form.Control
	target    string
	active    int
	visible   bool
	width     int
	maxWidth  int
	maxHeight int
}

// New creates a new dialog. id is echoed in every ChoiceMsg so owners with
// several dialogs can tell them apart.
func New(id, title, body string, buttons ...Button) Model {
	controls := make([]form.Control, len(buttons))
	for i, b := range buttons {
		controls[i] = form.NewControl(b.Label, b.BusyLabel)
	}
	return Model{
		id:       id,
		title:    title,
		body:     body,
		buttons:  buttons,
		controls: controls,
		maxWidth: 60,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles dialog messages. Keys are ignored while a button is busy.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible || m.Busy() {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "shift+tab":
			if m.active > 0 {
				m.active--
			}
		case "right", "tab":
			if m.active < len(m.buttons)-1 {
				m.active++
			}
		case "enter":
			return m.choose(m.active)
		case "esc":
			m.Hide()
		}
	}

	return m, nil
}

func (m Model) choose(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.buttons) {
		return m, nil
	}
	choice := ChoiceMsg{Dialog: m.id, Button: i, Label: m.buttons[i].Label, Target: m.target}
	if m.buttons[i].BusyLabel == "" {
		m.Hide()
	} else if !m.controls[i].Begin() {
		return m, nil
	}
	return m, func() tea.Msg { return choice }
}

// View renders the dialog box.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	th := theme.Current

	title := th.DialogTitle.Render(m.title)
	body := lipgloss.NewStyle().
		Width(m.maxWidth - 4).
		Render(m.body)

	var btns []string
	for i, c := range m.controls {
		style := th.DialogButton
		switch {
		case c.Disabled():
			style = th.DialogButtonDisabled
		case i == m.active:
			style = th.DialogButtonActive
		}
		btns = append(btns, style.Render(" "+c.Text()+" "))
	}
	buttonRow := lipgloss.JoinHorizontal(lipgloss.Center, btns...)
	buttonRow = lipgloss.NewStyle().Width(m.maxWidth - 4).Align(lipgloss.Center).Render(buttonRow)

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		buttonRow,
	)

	return th.DialogBorder.Render(content)
}

// Show makes the dialog visible with no target.
func (m *Model) Show() {
	m.ShowFor("")
}

// ShowFor makes the dialog visible and remembers target until it is hidden.
func (m *Model) ShowFor(target string) {
	m.visible = true
	m.active = 0
	m.target = target
	m.restore()
}

// Hide makes the dialog invisible and forgets its target.
func (m *Model) Hide() {
	m.visible = false
	m.target = ""
	m.restore()
}

// Finish ends a busy action: a successful one closes the dialog, a failed
// one re-enables the buttons.
func (m *Model) Finish(success bool) {
	if success {
		m.Hide()
		return
	}
	m.restore()
}

func (m *Model) restore() {
	for i := range m.controls {
		m.controls[i].Restore()
	}
}

// SetBody replaces the dialog text.
func (m *Model) SetBody(body string) {
	m.body = body
}

// Visible returns whether the dialog is shown.
func (m Model) Visible() bool {
	return m.visible
}

// Busy reports whether a button action is in flight.
func (m Model) Busy() bool {
	for _, c := range m.controls {
		if c.Busy() {
			return true
		}
	}
	return false
}

// Target returns the value the dialog was shown for.
func (m Model) Target() string {
	return m.target
}

// SetSize sets the available space for centering.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.maxHeight = height
	if m.maxWidth > width-4 {
		m.maxWidth = width - 4
	}
}

// Overlay renders the dialog centered over the given background content.
func (m Model) Overlay(background string) string {
	if !m.visible {
		return background
	}
	return Center(background, m.View(), m.width)
}

// Center draws box over the middle of background, which is width cells
// wide. Styled background text on either side of the box is preserved.
func Center(background, box string, width int) string {
	bgLines := strings.Split(background, "\n")
	boxLines := strings.Split(box, "\n")

	startY := (len(bgLines) - len(boxLines)) / 2
	startX := (width - lipgloss.Width(box)) / 2
	if startY < 0 {
		startY = 0
	}
	if startX < 0 {
		startX = 0
	}

	for i, boxLine := range boxLines {
		y := startY + i
		if y >= len(bgLines) {
			break
		}
		line := bgLines[y]
		prefix := ansi.Truncate(line, startX, "")
		if pad := startX - ansi.StringWidth(prefix); pad > 0 {
			prefix += strings.Repeat(" ", pad)
		}
		suffix := ""
		if endX := startX + ansi.StringWidth(boxLine); endX < ansi.StringWidth(line) {
			suffix = ansi.TruncateLeft(line, endX, "")
		}
		bgLines[y] = prefix + boxLine + suffix
	}

	return strings.Join(bgLines, "\n")
}
