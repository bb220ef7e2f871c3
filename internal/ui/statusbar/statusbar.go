// Package statusbar renders the bottom line of the workbench: server and
// user, active connection, in-flight work and key mode.
package statusbar

import (
	"fmt"
	"net/url"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	appmsg "github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/theme"
)

// MsgNoConnection is shown while no connection is active.
const MsgNoConnection = "no connection"

// Model is the status bar component.
type Model struct {
	width      int
	server     string
	user       string
	connection string
	dbType     string
	keyMode    appmsg.KeyMode
	pane       appmsg.Pane
	busy       string
	spinner    spinner.Model
	cursorLine int
	cursorCol  int
}

// New creates a status bar for the given service URL.
func New(serverURL string) Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return Model{
		server:  serverHost(serverURL),
		keyMode: appmsg.KeyModeStandard,
		pane:    appmsg.PaneEditor,
		spinner: s,
	}
}

// serverHost reduces a URL to host[:port] for display.
func serverHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appmsg.AuthenticatedMsg:
		m.user = msg.Email

	case appmsg.SelectConnectionMsg:
		m.connection = msg.Name

	case appmsg.FocusMsg:
		m.pane = msg.Pane

	case appmsg.ToggleKeyModeMsg:
		if m.keyMode == appmsg.KeyModeStandard {
			m.keyMode = appmsg.KeyModeVim
		} else {
			m.keyMode = appmsg.KeyModeStandard
		}

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	th := theme.Current

	left := th.StatusBarKey.Render(" " + m.server + " ")
	if m.user != "" {
		left += th.StatusBarValue.Render(" " + m.user + " ")
	}

	var center string
	switch {
	case m.busy != "":
		center = th.StatusBarSuccess.Render(" " + m.spinner.View() + " " + m.busy + " ")
	case m.connection != "":
		conn := m.connection
		if m.dbType != "" {
			conn = fmt.Sprintf("%s (%s)", conn, m.dbType)
		}
		center = th.StatusBarValue.Render(" ● " + ansi.Truncate(conn, m.width/3, "…") + " ")
	default:
		center = th.StatusBarError.Render(" " + MsgNoConnection + " ")
	}
	if m.busy == "" {
		hintKey, hintSep := th.StatusBarValue, th.StatusBar
		center += hintSep.Render("  ") +
			hintKey.Render("F5") + hintSep.Render(" Run ") +
			hintKey.Render("Ctrl+O") + hintSep.Render(" Connections ") +
			hintKey.Render("F1") + hintSep.Render(" Help ")
	}

	right := th.StatusBarKey.Render(fmt.Sprintf(" %s │ %s ", m.pane, m.keyMode))
	if m.cursorLine > 0 {
		right += th.StatusBarValue.Render(fmt.Sprintf(" %d:%d ", m.cursorLine, m.cursorCol))
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right)
	if gap < 0 {
		// Drop the hints before anything else.
		limit := lipgloss.Width(center) + gap
		if limit < 0 {
			limit = 0
		}
		center = ansi.Truncate(center, limit, "")
		gap = 0
	}
	leftGap := gap / 2
	bar := left +
		th.StatusBar.Render(spaces(leftGap)) +
		center +
		th.StatusBar.Render(spaces(gap-leftGap)) +
		right

	return th.StatusBar.Width(m.width).Render(bar)
}

// SetSize sets the status bar width.
func (m *Model) SetSize(width int) {
	m.width = width
}

// SetConnection shows the active connection, or MsgNoConnection when name
// is empty.
func (m *Model) SetConnection(name, dbType string) {
	m.connection = name
	m.dbType = dbType
}

// SetBusy shows text with a spinner while work is in flight. An empty text
// clears it. The returned command starts the spinner.
func (m *Model) SetBusy(text string) tea.Cmd {
	wasIdle := m.busy == ""
	m.busy = text
	if text != "" && wasIdle {
		return m.spinner.Tick
	}
	return nil
}

// Busy returns the in-flight text.
func (m Model) Busy() string {
	return m.busy
}

// SetCursor updates the cursor position display.
func (m *Model) SetCursor(line, col int) {
	m.cursorLine = line
	m.cursorCol = col
}

// KeyMode returns the current key mode.
func (m Model) KeyMode() appmsg.KeyMode {
	return m.keyMode
}

// SetKeyMode sets the key mode.
func (m *Model) SetKeyMode(mode appmsg.KeyMode) {
	m.keyMode = mode
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
