package sidebar

import (
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	appmsg "github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/schema"
	"github.com/sadopc/querydesk/internal/theme"
)

// useSimpleIcons returns true when running inside Neovim's terminal emulator,
// which has emoji width rendering issues in libvterm.
var useSimpleIcons = os.Getenv("NVIM") != ""

// Panel texts.
const (
	MsgNoConnection = "No database connection selected"
	MsgLoading      = "Loading schema..."
	MsgEmpty        = "No tables found."
)

// NodeKind represents the type of tree node.
type NodeKind int

const (
	NodeDatabase NodeKind = iota
	NodeTable
	NodeColumn
)

// TreeNode represents a node in the schema tree.
type TreeNode struct {
	Label    string
	Kind     NodeKind
	Children []*TreeNode
	Expanded bool
	Depth    int

	Database string
	Table    string
	Column   schema.Column
}

type panelState int

const (
	stateNoConnection panelState = iota
	stateLoading
	stateError
	stateReady
)

// Model is the schema explorer panel.
type Model struct {
	state      panelState
	errTitle   string
	errDetail  string
	connection string
	nodes      []*TreeNode
	flat       []*TreeNode // flattened visible nodes
	cursor     int
	offset     int
	width      int
	height     int
	focused    bool
}

// New creates a schema explorer with no connection selected.
func New() Model {
	return Model{}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key input while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || m.state != stateReady {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.ensureVisible()
		}
	case "down", "j":
		if m.cursor < len(m.flat)-1 {
			m.cursor++
			m.ensureVisible()
		}
	case "enter", "right", "l":
		return m, m.toggleOrInsert()
	case "left", "h":
		if m.cursor < len(m.flat) {
			node := m.flat[m.cursor]
			if node.Expanded {
				node.Expanded = false
				m.flatten()
			}
		}
	case "s":
		return m, m.selectQuery()
	case "r":
		return m, func() tea.Msg { return appmsg.RefreshSchemaMsg{} }
	case "home", "g":
		m.cursor = 0
		m.offset = 0
	case "end", "G":
		m.cursor = len(m.flat) - 1
		m.ensureVisible()
	}

	return m, nil
}

// View renders the panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	th := theme.Current

	// Account for border (left + right = 2, top + bottom = 2).
	innerW := m.width - 2
	innerH := m.height - 2
	if innerW < 1 {
		innerW = 1
	}
	if innerH < 1 {
		innerH = 1
	}

	title := " Database Schema "
	if m.connection != "" {
		title = " Schema: " + m.connection + " "
	}
	titleStyle := th.SidebarTitle
	if m.focused {
		titleStyle = titleStyle.Reverse(true)
	}
	titleLine := titleStyle.Width(innerW).Render(runewidth.Truncate(title, innerW, "…"))

	var content string
	switch m.state {
	case stateNoConnection:
		content = titleLine + "\n\n  " + th.MutedText.Render(MsgNoConnection)
	case stateLoading:
		content = titleLine + "\n\n  " + th.MutedText.Render(MsgLoading)
	case stateError:
		panel := th.ErrorPanel.Width(innerW - 4).Render(
			th.ErrorText.Render(m.errTitle) + "\n" + m.errDetail)
		content = titleLine + "\n\n" + lipgloss.NewStyle().PaddingLeft(1).Render(panel)
	default:
		if len(m.flat) == 0 {
			content = titleLine + "\n\n  " + th.MutedText.Render(MsgEmpty)
			break
		}
		contentHeight := innerH - 1
		if contentHeight < 1 {
			contentHeight = 1
		}
		end := m.offset + contentHeight
		if end > len(m.flat) {
			end = len(m.flat)
		}
		var lines []string
		for i := m.offset; i < end; i++ {
			lines = append(lines, m.renderNode(m.flat[i], i == m.cursor, th))
		}
		content = titleLine + "\n" + strings.Join(lines, "\n")
	}

	return m.borderStyle().Width(innerW).Height(innerH).Render(content)
}

func (m Model) renderNode(node *TreeNode, selected bool, th *theme.Theme) string {
	indent := strings.Repeat("  ", node.Depth)

	var icon string
	switch node.Kind {
	case NodeDatabase:
		icon = "🗄 "
		if useSimpleIcons {
			icon = "■ "
		}
	case NodeTable:
		icon = "📊 "
		if useSimpleIcons {
			icon = "◆ "
		}
	default:
		icon = "  "
	}

	expandIcon := "  "
	if len(node.Children) > 0 {
		if node.Expanded {
			expandIcon = "▼ "
		} else {
			expandIcon = "▶ "
		}
	}

	maxW := m.width - 4
	if maxW < 4 {
		maxW = 4
	}
	plain := indent + expandIcon + icon + node.Label

	if node.Kind != NodeColumn {
		line := runewidth.FillRight(runewidth.Truncate(plain, maxW, "…"), maxW)
		switch {
		case selected:
			return th.SidebarSelected.Render(line)
		case node.Kind == NodeDatabase:
			return th.SidebarDatabase.Render(line)
		default:
			return th.SidebarTable.Render(line)
		}
	}

	c := node.Column
	detail := " " + c.Type + " " + c.NullLabel()
	var badges []string
	if c.PrimaryKey {
		badges = append(badges, "PK")
	}
	if c.IsFK() {
		badges = append(badges, "FK")
	}
	badgeW := 0
	for _, b := range badges {
		badgeW += len(b) + 3
	}

	text := runewidth.Truncate(plain+detail, maxW-badgeW, "…")
	if selected {
		for _, b := range badges {
			text += " [" + b + "]"
		}
		return th.SidebarSelected.Render(runewidth.FillRight(text, maxW))
	}

	// Style the name and the detail differently when both fit.
	var styled string
	if runewidth.StringWidth(plain) < runewidth.StringWidth(text) {
		styled = th.SidebarColumn.Render(plain) + th.SidebarColumnType.Render(text[len(plain):])
	} else {
		styled = th.SidebarColumn.Render(text)
	}
	for _, b := range badges {
		style := th.BadgePK
		if b == "FK" {
			style = th.BadgeFK
		}
		styled += " " + style.Render(b)
	}
	if pad := maxW - lipgloss.Width(styled); pad > 0 {
		styled += strings.Repeat(" ", pad)
	}
	return styled
}

func (m Model) borderStyle() lipgloss.Style {
	th := theme.Current
	if m.focused {
		return th.FocusedBorder
	}
	return th.UnfocusedBorder
}

func (m *Model) toggleOrInsert() tea.Cmd {
	if m.cursor >= len(m.flat) {
		return nil
	}
	node := m.flat[m.cursor]

	if len(node.Children) > 0 {
		node.Expanded = !node.Expanded
		m.flatten()
		return nil
	}

	var text string
	switch node.Kind {
	case NodeColumn:
		text = node.Column.Name
	case NodeTable:
		text = node.Table
	default:
		return nil
	}
	return func() tea.Msg { return appmsg.InsertTextMsg{Text: text} }
}

// selectQuery puts a SELECT of the table under the cursor into the editor.
func (m *Model) selectQuery() tea.Cmd {
	if m.cursor >= len(m.flat) {
		return nil
	}
	node := m.flat[m.cursor]
	if node.Table == "" {
		return nil
	}
	query := "SELECT * FROM " + quoteIdentifier(node.Table) + " LIMIT 100;"
	return func() tea.Msg { return appmsg.UseQueryMsg{SQL: query} }
}

func (m *Model) flatten() {
	m.flat = nil
	for _, node := range m.nodes {
		m.flattenNode(node)
	}
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) flattenNode(node *TreeNode) {
	m.flat = append(m.flat, node)
	if node.Expanded {
		for _, child := range node.Children {
			m.flattenNode(child)
		}
	}
}

func (m *Model) ensureVisible() {
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+contentHeight {
		m.offset = m.cursor - contentHeight + 1
	}
}

// SetSnapshot renders a loaded schema for the named connection.
func (m *Model) SetSnapshot(connection string, s schema.Snapshot) {
	m.state = stateReady
	m.connection = connection
	m.nodes = buildTree(s)
	m.cursor = 0
	m.offset = 0
	m.flatten()
}

// SetLoading shows the loading text for the named connection.
func (m *Model) SetLoading(connection string) {
	m.state = stateLoading
	m.connection = connection
}

// SetError shows an inline error panel in place of the tree.
func (m *Model) SetError(title, detail string) {
	m.state = stateError
	m.errTitle = title
	m.errDetail = detail
	m.nodes = nil
	m.flat = nil
}

// ClearConnection shows the no-connection text.
func (m *Model) ClearConnection() {
	m.state = stateNoConnection
	m.connection = ""
	m.nodes = nil
	m.flat = nil
	m.cursor = 0
	m.offset = 0
}

// Loading reports whether the panel waits for a schema.
func (m Model) Loading() bool { return m.state == stateLoading }

// SetSize sets the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Focus focuses the panel.
func (m *Model) Focus() { m.focused = true }

// Blur unfocuses the panel.
func (m *Model) Blur() { m.focused = false }

// Focused returns whether the panel is focused.
func (m Model) Focused() bool { return m.focused }

// quoteIdentifier wraps a SQL identifier in double-quotes (ANSI style),
// escaping any embedded double-quotes by doubling them.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func buildTree(s schema.Snapshot) []*TreeNode {
	var nodes []*TreeNode

	for _, db := range s {
		dbNode := &TreeNode{
			Label:    db.Name,
			Kind:     NodeDatabase,
			Database: db.Name,
			Expanded: len(s) == 1, // auto-expand if single database
		}

		for _, t := range db.Tables {
			tableNode := &TreeNode{
				Label:    t.Name,
				Kind:     NodeTable,
				Database: db.Name,
				Table:    t.Name,
				Depth:    1,
			}
			for _, c := range t.Columns {
				label := c.Name
				if c.IsFK() {
					label += " → " + c.ForeignKey
				}
				tableNode.Children = append(tableNode.Children, &TreeNode{
					Label:    label,
					Kind:     NodeColumn,
					Database: db.Name,
					Table:    t.Name,
					Column:   c,
					Depth:    2,
				})
			}
			dbNode.Children = append(dbNode.Children, tableNode)
		}

		nodes = append(nodes, dbNode)
	}

	return nodes
}
