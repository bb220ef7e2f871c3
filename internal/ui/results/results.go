// Package results renders the reply of a run-query call as three views: a
// scrollable table, the server's visualization image and its data insights.
package results

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/querydesk/internal/api"
	appmsg "github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/theme"
	"github.com/sadopc/querydesk/internal/ui/tabs"
	"github.com/sadopc/querydesk/internal/workbench"
)

// Panel texts.
const (
	MsgPlaceholder = "No results yet. Write a query and press F5 to execute."
	MsgNullMarker  = "NULL"
)

// DefaultMaxColumnWidth caps a column when no width is configured.
const DefaultMaxColumnWidth = 50

type panelState int

const (
	stateIdle panelState = iota
	stateLoading
	stateError
	stateEmpty
	stateReady
)

// cell is a rendered result value. null cells show MsgNullMarker in the
// null style, which keeps them apart from the string "null" and from "".
type cell struct {
	text string
	null bool
}

// Model is the result panel.
type Model struct {
	tabs      tabs.Model
	table     table.Model
	insights  viewport.Model
	result    *api.QueryResult
	columns   []string
	rows      [][]cell
	tableCols []table.Column
	image     *Image
	state     panelState
	errTitle  string
	errDetail string
	viewTop   int
	maxColW   int
	exportDir string
	width     int
	height    int
	focused   bool
	now       func() time.Time
}

// New creates an empty result panel. maxColumnWidth <= 0 uses
// DefaultMaxColumnWidth.
func New(maxColumnWidth int) Model {
	if maxColumnWidth <= 0 {
		maxColumnWidth = DefaultMaxColumnWidth
	}
	t := table.New(
		table.WithFocused(false),
		table.WithHeight(10),
	)
	return Model{
		tabs:      tabs.New(),
		table:     t,
		insights:  viewport.New(0, 0),
		maxColW:   maxColumnWidth,
		exportDir: ".",
		now:       time.Now,
	}
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the result panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tabs.SwitchMsg:
		m.tabs.Select(msg.View)
		return m, nil

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "1":
		m.tabs.Select(tabs.ViewTable)
		return m, nil
	case "2":
		m.tabs.Select(tabs.ViewVisualization)
		return m, nil
	case "3":
		m.tabs.Select(tabs.ViewInsights)
		return m, nil
	case "]":
		m.tabs.Next()
		return m, nil
	case "[":
		m.tabs.Prev()
		return m, nil
	case "ctrl+e":
		return m, m.ExportCSV()
	case "ctrl+s":
		return m, m.ExportJSON()
	}

	if m.state != stateReady {
		return m, nil
	}

	switch m.tabs.Active() {
	case tabs.ViewTable:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		m.updateViewTop()
		return m, cmd
	case tabs.ViewVisualization:
		if msg.String() == "s" {
			return m, m.SaveImage()
		}
	case tabs.ViewInsights:
		var cmd tea.Cmd
		m.insights, cmd = m.insights.Update(msg)
		return m, cmd
	}
	return m, nil
}

// SetLoading shows the executing indicator and drops the previous result.
func (m *Model) SetLoading() {
	m.clear()
	m.state = stateLoading
}

// SetError shows the inline error block.
func (m *Model) SetError(title, detail string) {
	m.clear()
	m.state = stateError
	m.errTitle = title
	m.errDetail = detail
}

// Reset returns the panel to its placeholder.
func (m *Model) Reset() {
	m.clear()
	m.state = stateIdle
}

// SetResult loads a successful run-query reply. Results without rows or
// columns show workbench.MsgNoResults instead of a table.
func (m *Model) SetResult(r *api.QueryResult) {
	m.clear()
	m.result = r
	if r.Empty() {
		m.state = stateEmpty
		return
	}
	m.state = stateReady

	m.columns = r.Columns
	m.rows = make([][]cell, len(r.Data))
	for i, row := range r.Data {
		cells := make([]cell, len(r.Columns))
		for j := range cells {
			if j >= len(row) {
				cells[j] = cell{null: true}
				continue
			}
			s, ok := api.CellString(row[j])
			cells[j] = cell{text: s, null: !ok}
		}
		m.rows[i] = cells
	}
	m.rebuildTable()

	if r.Visualization != "" {
		if img, err := DecodeImage(r.Visualization); err == nil {
			m.image = &img
		}
	}
	m.insights.SetContent(m.wrapInsights(r.Explanation))
	m.insights.GotoTop()
	m.tabs.SetAvailable(r.Visualization != "", strings.TrimSpace(r.Explanation) != "")
}

func (m *Model) clear() {
	m.result = nil
	m.columns = nil
	m.rows = nil
	m.tableCols = nil
	m.image = nil
	m.errTitle = ""
	m.errDetail = ""
	m.viewTop = 0
	m.table.SetRows(nil)
	m.table.SetColumns(nil)
	m.table.SetCursor(0)
	m.insights.SetContent("")
	m.tabs.Reset()
}

// SetSize updates the panel dimensions and recalculates the table layout.
func (m *Model) SetSize(w, h int) {
	if m.width == w && m.height == h {
		return
	}
	m.width = w
	m.height = h

	m.tabs.SetSize(m.contentWidth())
	m.table.SetWidth(m.contentWidth())
	m.table.SetHeight(m.visibleDataHeight())
	m.insights.Width = m.contentWidth()
	m.insights.Height = m.bodyHeight()

	if len(m.columns) > 0 {
		m.rebuildTable()
	}
	if m.result != nil {
		m.insights.SetContent(m.wrapInsights(m.result.Explanation))
	}
}

// SetExportDir sets where exports and images are written.
func (m *Model) SetExportDir(dir string) {
	m.exportDir = dir
}

// Focus gives the result panel keyboard focus.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes keyboard focus from the result panel.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused reports whether the result panel has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Loading reports whether a query is executing.
func (m Model) Loading() bool {
	return m.state == stateLoading
}

// ActiveView returns the selected view tab.
func (m Model) ActiveView() tabs.View {
	return m.tabs.Active()
}

// Tabs returns the view tab strip.
func (m Model) Tabs() tabs.Model {
	return m.tabs
}

// Result returns the loaded reply, or nil.
func (m Model) Result() *api.QueryResult {
	return m.result
}

// Cursor returns the selected table row.
func (m Model) Cursor() int {
	return m.table.Cursor()
}

// RowCount returns the number of rows in the loaded result.
func (m Model) RowCount() int {
	return len(m.rows)
}

// Image returns the decoded visualization, or nil.
func (m Model) Image() *Image {
	return m.image
}

// ExportCSV writes the table to query_results_<ts>.csv in the export
// directory.
func (m Model) ExportCSV() tea.Cmd {
	return m.export(".csv", ExportCSV)
}

// ExportJSON writes the table to query_results_<ts>.json in the export
// directory.
func (m Model) ExportJSON() tea.Cmd {
	return m.export(".json", ExportJSON)
}

func (m Model) export(ext string, write func(string, []string, [][]any) error) tea.Cmd {
	if m.state != stateReady {
		return nil
	}
	r := m.result
	path := filepath.Join(m.exportDir, ExportName("query_results", ext, m.now()))
	return func() tea.Msg {
		if err := write(path, r.Columns, r.Data); err != nil {
			return appmsg.ExportErrMsg{Err: fmt.Errorf("export %s: %w", path, err)}
		}
		return appmsg.ExportCompleteMsg{Path: path, RowCount: len(r.Data)}
	}
}

// SaveImage writes the visualization to the export directory.
func (m Model) SaveImage() tea.Cmd {
	if m.result == nil || m.result.Visualization == "" {
		return nil
	}
	payload, dir, now := m.result.Visualization, m.exportDir, m.now()
	return func() tea.Msg {
		path, err := SaveImage(dir, payload, now)
		if err != nil {
			return appmsg.ExportErrMsg{Err: fmt.Errorf("save visualization: %w", err)}
		}
		return appmsg.ExportCompleteMsg{Path: path}
	}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// View renders the result panel.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	th := theme.Current

	var body string
	switch m.state {
	case stateIdle:
		body = th.MutedText.Render("  " + MsgPlaceholder)
	case stateLoading:
		body = th.MutedText.Render("  " + workbench.MsgExecuting)
	case stateError:
		box := th.ErrorText.Render(m.errTitle)
		if m.errDetail != "" {
			box += "\n" + m.errDetail
		}
		body = th.ErrorPanel.Width(m.contentWidth() - 2).Render(box)
	case stateEmpty:
		body = th.MutedText.Render("  " + workbench.MsgNoResults)
	case stateReady:
		body = m.viewResult(th)
	}
	return m.wrapBorder(body)
}

func (m Model) viewResult(th *theme.Theme) string {
	header := th.MutedText.Render(workbench.ExecutedIn(m.result.ExecutionTime))

	var content string
	switch m.tabs.Active() {
	case tabs.ViewVisualization:
		content = m.viewVisualization(th)
	case tabs.ViewInsights:
		content = m.insights.View()
	default:
		content = m.renderTable(th)
	}

	footer := th.MutedText.Render(workbench.RowsReturned(len(m.rows)))
	return lipgloss.JoinVertical(lipgloss.Left, m.tabs.View(), header, content, footer)
}

func (m Model) viewVisualization(th *theme.Theme) string {
	if m.image == nil {
		// Anything that is not an inline image is shown as its address.
		return th.MutedText.Render("  Visualization: ") + m.result.Visualization
	}
	lines := []string{
		fmt.Sprintf("  Visualization image (%s, %s)", m.image.MIME, humanize.Bytes(uint64(len(m.image.Data)))),
		th.MutedText.Render("  Press s to save it to " + m.exportDir),
	}
	return strings.Join(lines, "\n")
}

func (m Model) wrapInsights(text string) string {
	w := m.contentWidth()
	return lipgloss.NewStyle().Width(w).Render(strings.TrimSpace(text))
}

// contentWidth returns the usable width inside the border.
func (m Model) contentWidth() int {
	w := m.width - 2
	if w < 10 {
		w = 10
	}
	return w
}

// bodyHeight is the height left for a view below the tab strip and header
// and above the footer.
func (m Model) bodyHeight() int {
	h := m.height - 2 - 3
	if h < 1 {
		h = 1
	}
	return h
}

// visibleDataHeight returns the number of data rows that can be displayed,
// accounting for the column header and its bottom rule.
func (m Model) visibleDataHeight() int {
	h := m.bodyHeight() - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) rebuildTable() {
	m.tableCols = autoSizeColumns(m.columns, m.rows, m.contentWidth(), m.maxColW)
	m.table.SetColumns(m.tableCols)

	tableRows := make([]table.Row, len(m.rows))
	for i, row := range m.rows {
		r := make(table.Row, len(row))
		for j, c := range row {
			r[j] = c.text
		}
		tableRows[i] = r
	}
	m.table.SetRows(tableRows)
	// An emptied table parks the cursor at -1.
	if m.table.Cursor() < 0 && len(tableRows) > 0 {
		m.table.SetCursor(0)
	}
	m.updateViewTop()
}

// updateViewTop adjusts the scroll offset so the cursor remains visible.
func (m *Model) updateViewTop() {
	cursor := m.table.Cursor()
	visH := m.visibleDataHeight()
	if cursor < m.viewTop {
		m.viewTop = cursor
	}
	if cursor >= m.viewTop+visH {
		m.viewTop = cursor - visH + 1
	}
	if m.viewTop < 0 {
		m.viewTop = 0
	}
}

// renderTable produces the table view with zebra-striped rows.
func (m Model) renderTable(th *theme.Theme) string {
	contentW := m.contentWidth()
	visH := m.visibleDataHeight()

	var sb strings.Builder
	sb.WriteString(m.renderHeader(th, contentW))
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("─", contentW))
	sb.WriteByte('\n')

	cursor := m.table.Cursor()
	for i := 0; i < visH; i++ {
		rowIdx := m.viewTop + i
		if rowIdx >= len(m.rows) {
			sb.WriteString(strings.Repeat(" ", contentW))
		} else {
			sb.WriteString(m.renderDataRow(th, rowIdx, rowIdx == cursor, contentW))
		}
		if i < visH-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (m Model) renderHeader(th *theme.Theme, totalWidth int) string {
	var sb strings.Builder
	used := 0
	for _, col := range m.tableCols {
		text := padRight(runewidth.Truncate(col.Title, col.Width, "…"), col.Width)
		sb.WriteString(th.ResultsHeader.Render(text))
		used += col.Width + 2
	}
	if used < totalWidth {
		sb.WriteString(th.ResultsHeader.Padding(0).Render(strings.Repeat(" ", totalWidth-used)))
	}
	return sb.String()
}

func (m Model) renderDataRow(th *theme.Theme, rowIdx int, selected bool, totalWidth int) string {
	var style lipgloss.Style
	switch {
	case selected && m.focused:
		style = th.ResultsSelected
	case rowIdx%2 == 1:
		style = th.ResultsAltRow
	default:
		style = th.ResultsCell
	}

	var sb strings.Builder
	used := 0
	for j, col := range m.tableCols {
		c := m.rows[rowIdx][j]
		text := c.text
		if c.null {
			text = MsgNullMarker
		}
		text = padRight(runewidth.Truncate(text, col.Width, "…"), col.Width)
		if c.null {
			text = style.Foreground(th.ResultsNull.GetForeground()).Italic(true).Render(text)
		} else {
			text = style.Render(text)
		}
		sb.WriteString(text)
		used += col.Width + 2
	}
	if used < totalWidth {
		sb.WriteString(style.Padding(0).Render(strings.Repeat(" ", totalWidth-used)))
	}
	return sb.String()
}

// padRight pads s with spaces on the right so its display width equals w.
func padRight(s string, w int) string {
	sw := runewidth.StringWidth(s)
	if sw >= w {
		return s
	}
	return s + strings.Repeat(" ", w-sw)
}

// wrapBorder renders the content inside a themed border frame.
func (m Model) wrapBorder(content string) string {
	th := theme.Current
	style := th.UnfocusedBorder
	if m.focused {
		style = th.FocusedBorder
	}
	innerH := m.height - 2
	if innerH < 1 {
		innerH = 1
	}
	return style.Width(m.contentWidth()).Height(innerH).Render(content)
}

// autoSizeColumns calculates column widths from header names and sampled
// content, capping each column at colCap and scaling all of them down when
// they do not fit maxWidth.
func autoSizeColumns(cols []string, rows [][]cell, maxWidth, colCap int) []table.Column {
	if len(cols) == 0 {
		return nil
	}
	numCols := len(cols)

	widths := make([]int, numCols)
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c)
		if widths[i] < 4 {
			widths[i] = 4
		}
	}

	sampleSize := len(rows)
	if sampleSize > 100 {
		sampleSize = 100
	}
	for i := 0; i < sampleSize; i++ {
		for j := 0; j < numCols && j < len(rows[i]); j++ {
			text := rows[i][j].text
			if rows[i][j].null {
				text = MsgNullMarker
			}
			if w := runewidth.StringWidth(text); w > widths[j] {
				widths[j] = w
			}
		}
	}

	for i := range widths {
		if widths[i] > colCap {
			widths[i] = colCap
		}
	}

	// Cell styles pad one space on each side.
	paddingWidth := numCols * 2
	totalDesired := paddingWidth
	for _, w := range widths {
		totalDesired += w
	}

	available := maxWidth - paddingWidth
	if available < numCols {
		available = numCols
	}
	if totalDesired > maxWidth {
		totalColWidth := totalDesired - paddingWidth
		for i := range widths {
			widths[i] = (widths[i] * available) / totalColWidth
			if widths[i] < 2 {
				widths[i] = 2
			}
		}
	}

	tableCols := make([]table.Column, numCols)
	for i, c := range cols {
		tableCols[i] = table.Column{Title: c, Width: widths[i]}
	}
	return tableCols
}
