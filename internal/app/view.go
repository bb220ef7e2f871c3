package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/querydesk/internal/theme"
)

// View renders the entire application.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.screen == screenAuth {
		return m.toasts.Overlay(m.login.View(), m.width)
	}

	th := theme.Current

	editorView := m.editor.View()
	if m.autocomp.Visible() {
		editorView = overlayBottom(editorView, m.autocomp.View())
	}
	middle := lipgloss.JoinVertical(lipgloss.Left, editorView, m.results.View())

	columns := []string{middle, m.chat.View()}
	if m.showSidebar {
		columns = append([]string{m.sidebar.View()}, columns...)
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	view := lipgloss.JoinVertical(lipgloss.Left, content, m.statusbar.View())

	switch {
	case m.connMgr.Visible():
		view = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.connMgr.View())
	case m.showHelp:
		view = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.renderHelpScreen(th))
	}
	return m.toasts.Overlay(view, m.width)
}

// overlayBottom replaces the last lines of base with popup, keeping the
// height of base.
func overlayBottom(base, popup string) string {
	lines := strings.Split(base, "\n")
	h := lipgloss.Height(popup)
	if h < len(lines) {
		return strings.Join(lines[:len(lines)-h], "\n") + "\n" + popup
	}
	if len(lines) > 1 {
		return lines[0] + "\n" + popup
	}
	return base
}

func (m Model) renderHelpScreen(th *theme.Theme) string {
	title := th.DialogTitle.Render("  querydesk - Keyboard Shortcuts")
	body := m.help.FullHelpView(m.keyMap.FullHelp())

	extra := []string{
		"",
		th.DialogTitle.Render("  Panes"),
		"  schema     enter:expand/insert  s:select table  r:reload",
		"  results    1/2/3 or [ ]:tabs  s:save image",
		"  assistant  enter:generate  ctrl+p/ctrl+n:pick query  ctrl+u:use query",
		"",
		th.MutedText.Render("  Press ? / F1 / Esc to close"),
	}
	return th.DialogBorder.Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", body, strings.Join(extra, "\n")))
}

// dimensions returns the widths of the three columns and the height above
// the status bar.
func (m Model) dimensions() (sidebarW, middleW, chatW, mainH int) {
	mainH = m.height - 1
	if mainH < 6 {
		mainH = 6
	}

	chatW = m.chatWidth
	if chatW > m.width/3 {
		chatW = m.width / 3
	}
	if m.showSidebar {
		sidebarW = m.sidebarWidth
		if sidebarW > m.width/3 {
			sidebarW = m.width / 3
		}
	}
	middleW = m.width - sidebarW - chatW
	if middleW < 20 {
		middleW = 20
	}
	return sidebarW, middleW, chatW, mainH
}

func (m Model) splitMiddle(mainH int) (editorH, resultsH int) {
	editorH = mainH * m.editorHeight / 100
	if editorH < 3 {
		editorH = 3
	}
	resultsH = mainH - editorH
	if resultsH < 3 {
		resultsH = 3
	}
	return editorH, resultsH
}

func (m *Model) updateLayout() {
	m.login.SetSize(m.width, m.height)
	m.statusbar.SetSize(m.width)
	m.connMgr.SetSize(m.width, m.height)
	m.toasts.SetMaxWidth(m.width / 3)
	m.help.Width = m.width - 8

	sidebarW, middleW, chatW, mainH := m.dimensions()
	editorH, resultsH := m.splitMiddle(mainH)

	m.sidebar.SetSize(sidebarW, mainH)
	m.editor.SetSize(middleW, editorH)
	m.results.SetSize(middleW, resultsH)
	m.chat.SetSize(chatW, mainH)
	m.autocomp.SetWidth(middleW / 2)
}
