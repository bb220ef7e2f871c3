package connmgr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/sadopc/querydesk/internal/api"
	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/form"
	"github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/theme"
	"github.com/sadopc/querydesk/internal/ui/dialog"
	"github.com/sadopc/querydesk/internal/ui/toast"
	"github.com/sadopc/querydesk/internal/workbench"
)

// ReloadDelay is how long after a successful save the list is fetched again.
const ReloadDelay = time.Second

// Toast texts.
const (
	MsgTestOK        = "Connection successful!"
	MsgTestFailed    = "Connection failed: "
	MsgTestError     = "Error testing connection. Please try again."
	MsgSaveOK        = "Connection saved successfully!"
	MsgSaveFailed    = "Save failed: "
	MsgSaveError     = "Error saving connection. Please try again."
	MsgDeleteOK      = "Connection deleted successfully!"
	MsgDeleteFailed  = "Delete failed: "
	MsgDeleteError   = "Error deleting connection. Please try again."
	MsgEmptyTitle    = "No database connections found."
	MsgEmptyHint     = "Add your first database connection to get started."
	msgLoading       = "Loading connections..."
	msgListFailed    = "Error loading connections: "
	deleteDialogID   = "delete-connection"
	selectTypePrompt = "Select database type"
)

// Backend is the part of the service the connection manager talks to.
type Backend interface {
	Connections(ctx context.Context) (*api.ConnectionList, error)
	TestConnection(ctx context.Context, d connection.Draft) (*api.Reply, error)
	SaveConnection(ctx context.Context, d connection.Draft) (*api.Reply, error)
	DeleteConnection(ctx context.Context, id string) (*api.Reply, error)
}

// State tracks the connection manager screen.
type State int

const (
	StateList State = iota
	StateForm
)

// Mode is the add/edit form mode.
type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
)

type listedMsg struct {
	seq   uint64
	reply *api.ConnectionList
	err   error
}

type testedMsg struct {
	seq   uint64
	reply *api.Reply
	err   error
}

type savedMsg struct {
	seq   uint64
	reply *api.Reply
	err   error
}

type deletedMsg struct {
	seq   uint64
	id    string
	reply *api.Reply
	err   error
}

type reloadMsg struct{}

// Model is the connection manager modal.
type Model struct {
	backend  Backend
	session  *workbench.Session
	validate *form.Validator

	state   State
	visible bool
	width   int
	height  int

	entries []connection.Entry
	loaded  bool
	listErr string
	cursor  int

	filter    textinput.Model
	filtering bool

	// Form state
	mode      Mode
	editID    string
	inputs    [connection.FieldCount]textinput.Model
	typeIdx   int // 0 is the unselected prompt, i maps to connection.Types[i-1]
	formFocus connection.Field
	errs      form.Errors
	testCtl   form.Control
	saveCtl   form.Control

	confirm dialog.Model
}

// New creates a connection manager backed by b.
func New(b Backend, session *workbench.Session) Model {
	m := Model{
		backend:  b,
		session:  session,
		validate: form.New(),
		testCtl:  form.NewControl("Test Connection", "Testing..."),
		saveCtl:  form.NewControl("Save", "Saving..."),
		confirm: dialog.New(deleteDialogID, "Confirm Delete",
			"Are you sure you want to delete this connection? This action cannot be undone.",
			dialog.Button{Label: "Delete", BusyLabel: "Deleting..."},
			dialog.Button{Label: "Cancel"},
		),
	}

	m.filter = textinput.New()
	m.filter.Prompt = "/ "
	m.filter.Placeholder = "filter connections"
	m.filter.Width = 40

	placeholders := [connection.FieldCount]string{
		connection.FieldName:      "my-database",
		connection.FieldHost:      "localhost",
		connection.FieldPort:      "5432",
		connection.FieldDatabase:  "database name or file path",
		connection.FieldWarehouse: "COMPUTE_WH",
		connection.FieldSchema:    "PUBLIC",
		connection.FieldDriver:    "ODBC Driver 17 for SQL Server",
	}
	for i := range m.inputs {
		t := textinput.New()
		t.Prompt = fmt.Sprintf("%-10s ", connection.Field(i).String()+":")
		t.Placeholder = placeholders[i]
		if connection.Field(i) == connection.FieldPassword {
			t.EchoMode = textinput.EchoPassword
		}
		t.Width = 40
		m.inputs[i] = t
	}
	return m
}

// Init returns no initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Load fetches the connection list.
func (m *Model) Load() tea.Cmd {
	seq := m.session.Begin(workbench.OpList)
	b := m.backend
	return func() tea.Msg {
		reply, err := b.Connections(context.Background())
		return listedMsg{seq: seq, reply: reply, err: err}
	}
}

// Update handles connection manager messages. Replies are processed even
// while the modal is hidden.
func (m Model) Update(message tea.Msg) (Model, tea.Cmd) {
	switch message := message.(type) {
	case listedMsg:
		return m.handleListed(message)
	case testedMsg:
		return m.handleTested(message)
	case savedMsg:
		return m.handleSaved(message)
	case deletedMsg:
		return m.handleDeleted(message)
	case reloadMsg:
		return m, m.Load()
	case dialog.ChoiceMsg:
		if message.Dialog == deleteDialogID && message.Button == 0 {
			return m, m.deleteCmd(message.Target)
		}
		return m, nil
	}

	if !m.visible {
		return m, nil
	}
	if m.confirm.Visible() {
		var cmd tea.Cmd
		m.confirm, cmd = m.confirm.Update(message)
		return m, cmd
	}

	switch m.state {
	case StateList:
		return m.updateList(message)
	case StateForm:
		return m.updateForm(message)
	}
	return m, nil
}

func (m Model) updateList(message tea.Msg) (Model, tea.Cmd) {
	key, ok := message.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		switch key.String() {
		case "esc":
			m.filtering = false
			m.filter.SetValue("")
			m.filter.Blur()
			m.cursor = 0
			return m, nil
		case "enter", "down", "up":
			m.filtering = false
			m.filter.Blur()
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(message)
			m.cursor = 0
			return m, cmd
		}
	}

	visible := m.VisibleEntries()
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case "/":
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink
	case "enter":
		if m.cursor < len(visible) {
			e := visible[m.cursor]
			m.visible = false
			return m, func() tea.Msg { return msg.SelectConnectionMsg{ID: e.ID, Name: e.Name} }
		}
	case "n", "a":
		return m, m.OpenAdd()
	case "e":
		if m.cursor < len(visible) {
			return m, m.OpenEdit(visible[m.cursor].ID)
		}
	case "d":
		if m.cursor < len(visible) {
			m.confirm.SetSize(m.width, m.height)
			m.confirm.ShowFor(visible[m.cursor].ID)
		}
	case "r":
		return m, m.Load()
	case "esc", "q":
		m.visible = false
	}
	return m, nil
}

func (m Model) updateForm(message tea.Msg) (Model, tea.Cmd) {
	if key, ok := message.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.closeForm()
			return m, nil
		case "tab", "down":
			m.moveFocus(1)
			return m, textinput.Blink
		case "shift+tab", "up":
			m.moveFocus(-1)
			return m, textinput.Blink
		case "ctrl+t":
			return m.submitTest()
		case "ctrl+s", "enter":
			return m.submitSave()
		case "left", "right":
			if m.formFocus == connection.FieldDBType {
				step := 1
				if key.String() == "left" {
					step = -1
				}
				m.typeIdx = (m.typeIdx + step + len(connection.Types) + 1) % (len(connection.Types) + 1)
				return m, nil
			}
		}
	}

	if m.formFocus == connection.FieldDBType {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.formFocus], cmd = m.inputs[m.formFocus].Update(message)
	return m, cmd
}

// OpenAdd shows the form in add mode: every field is cleared and the
// database type is unselected.
func (m *Model) OpenAdd() tea.Cmd {
	m.visible = true
	m.state = StateForm
	m.mode = ModeAdd
	m.editID = ""
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.typeIdx = 0
	m.resetForm()
	return textinput.Blink
}

// OpenEdit shows the form in edit mode, populated from the list entry with
// the given id. No request is made; fields the list does not carry stay
// blank.
func (m *Model) OpenEdit(id string) tea.Cmd {
	e, ok := connection.Find(m.entries, id)
	if !ok {
		return nil
	}
	d := connection.DraftFromEntry(e)
	f := d.Fields()

	m.visible = true
	m.state = StateForm
	m.mode = ModeEdit
	m.editID = d.ID
	values := [connection.FieldCount]string{
		connection.FieldName:      f.Name,
		connection.FieldHost:      f.Host,
		connection.FieldPort:      f.Port,
		connection.FieldUsername:  f.Username,
		connection.FieldPassword:  f.Password,
		connection.FieldDatabase:  f.Database,
		connection.FieldWarehouse: f.Warehouse,
		connection.FieldSchema:    f.Schema,
		connection.FieldDriver:    f.Driver,
	}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
	}
	m.typeIdx = 0
	for i, t := range connection.Types {
		if t == d.DBType {
			m.typeIdx = i + 1
		}
	}
	m.resetForm()
	return textinput.Blink
}

func (m *Model) resetForm() {
	m.errs = nil
	m.testCtl.Restore()
	m.saveCtl.Restore()
	m.focus(connection.FieldName)
}

func (m *Model) closeForm() {
	m.state = StateList
	m.inputs[m.formFocus].Blur()
}

func (m *Model) focus(f connection.Field) {
	m.inputs[m.formFocus].Blur()
	m.formFocus = f
	if f != connection.FieldDBType {
		m.inputs[f].Focus()
	}
}

// moveFocus steps through the fields visible for the selected type.
func (m *Model) moveFocus(step int) {
	fields := m.VisibleFields()
	cur := 0
	for i, f := range fields {
		if f == m.formFocus {
			cur = i
		}
	}
	next := (cur + step + len(fields)) % len(fields)
	m.focus(fields[next])
}

// DBType returns the type selected in the form, or "" when none is.
func (m Model) DBType() connection.DBType {
	if m.typeIdx <= 0 || m.typeIdx > len(connection.Types) {
		return ""
	}
	return connection.Types[m.typeIdx-1]
}

// VisibleFields lists the form fields shown for the selected type.
func (m Model) VisibleFields() []connection.Field {
	var out []connection.Field
	t := m.DBType()
	for f := connection.Field(0); f < connection.FieldCount; f++ {
		if connection.Visible(t, f) {
			out = append(out, f)
		}
	}
	return out
}

// Draft builds a connection draft from the form.
func (m Model) Draft() connection.Draft {
	v := func(f connection.Field) string { return m.inputs[f].Value() }
	return connection.NewDraft(connection.Fields{
		ID:        m.editID,
		Name:      strings.TrimSpace(v(connection.FieldName)),
		DBType:    string(m.DBType()),
		Host:      strings.TrimSpace(v(connection.FieldHost)),
		Port:      strings.TrimSpace(v(connection.FieldPort)),
		Username:  v(connection.FieldUsername),
		Password:  v(connection.FieldPassword),
		Database:  strings.TrimSpace(v(connection.FieldDatabase)),
		Warehouse: strings.TrimSpace(v(connection.FieldWarehouse)),
		Schema:    strings.TrimSpace(v(connection.FieldSchema)),
		Driver:    strings.TrimSpace(v(connection.FieldDriver)),
	})
}

func (m Model) check(d connection.Draft) form.Errors {
	return m.validate.Check(form.ConnectionForm{
		Name:   d.Name,
		DBType: string(d.DBType),
		Port:   d.Port,
	})
}

func (m Model) submitTest() (Model, tea.Cmd) {
	d := m.Draft()
	errs := m.check(d)
	delete(errs, "name")
	if len(errs) > 0 {
		m.errs = errs
		return m, nil
	}
	m.errs = nil
	if !m.testCtl.Begin() {
		return m, nil
	}
	seq := m.session.Begin(workbench.OpTest)
	b := m.backend
	return m, func() tea.Msg {
		reply, err := b.TestConnection(context.Background(), d)
		return testedMsg{seq: seq, reply: reply, err: err}
	}
}

func (m Model) submitSave() (Model, tea.Cmd) {
	d := m.Draft()
	if errs := m.check(d); errs != nil {
		m.errs = errs
		return m, nil
	}
	m.errs = nil
	if !m.saveCtl.Begin() {
		return m, nil
	}
	seq := m.session.Begin(workbench.OpSave)
	b := m.backend
	return m, func() tea.Msg {
		reply, err := b.SaveConnection(context.Background(), d)
		return savedMsg{seq: seq, reply: reply, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	seq := m.session.Begin(workbench.OpDelete)
	b := m.backend
	return func() tea.Msg {
		reply, err := b.DeleteConnection(context.Background(), id)
		return deletedMsg{seq: seq, id: id, reply: reply, err: err}
	}
}

func (m Model) handleListed(r listedMsg) (Model, tea.Cmd) {
	if !m.session.Current(workbench.OpList, r.seq) {
		return m, nil
	}
	switch {
	case r.err != nil:
		m.listErr = msgListFailed + "server unavailable"
	case !r.reply.Success:
		m.listErr = msgListFailed + r.reply.Message
	default:
		m.listErr = ""
		m.entries = r.reply.Connections
		m.loaded = true
		m.clampCursor()
	}
	return m, nil
}

func (m Model) handleTested(r testedMsg) (Model, tea.Cmd) {
	if !m.session.Current(workbench.OpTest, r.seq) {
		return m, nil
	}
	m.testCtl.Restore()
	switch {
	case r.err != nil:
		return m, toast.Show(toast.Error, MsgTestError)
	case r.reply.Success:
		return m, toast.Show(toast.Success, MsgTestOK)
	default:
		return m, toast.Show(toast.Error, MsgTestFailed+r.reply.Message)
	}
}

func (m Model) handleSaved(r savedMsg) (Model, tea.Cmd) {
	if !m.session.Current(workbench.OpSave, r.seq) {
		return m, nil
	}
	m.saveCtl.Restore()
	switch {
	case r.err != nil:
		return m, toast.Show(toast.Error, MsgSaveError)
	case !r.reply.Success:
		return m, toast.Show(toast.Error, MsgSaveFailed+r.reply.Message)
	}
	m.closeForm()
	reload := tea.Tick(ReloadDelay, func(time.Time) tea.Msg { return reloadMsg{} })
	return m, tea.Batch(toast.Show(toast.Success, MsgSaveOK), reload)
}

func (m Model) handleDeleted(r deletedMsg) (Model, tea.Cmd) {
	if !m.session.Current(workbench.OpDelete, r.seq) {
		return m, nil
	}
	switch {
	case r.err != nil:
		m.confirm.Finish(false)
		return m, toast.Show(toast.Error, MsgDeleteError)
	case !r.reply.Success:
		m.confirm.Finish(false)
		return m, toast.Show(toast.Error, MsgDeleteFailed+r.reply.Message)
	}
	m.confirm.Finish(true)
	m.entries, _ = connection.Remove(m.entries, r.id)
	m.clampCursor()
	id := r.id
	return m, tea.Batch(
		toast.Show(toast.Success, MsgDeleteOK),
		func() tea.Msg { return msg.ConnectionRemovedMsg{ID: id} },
	)
}

func (m *Model) clampCursor() {
	if n := len(m.VisibleEntries()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// VisibleEntries returns the entries matching the filter, best match first.
func (m Model) VisibleEntries() []connection.Entry {
	pattern := strings.TrimSpace(m.filter.Value())
	if pattern == "" {
		return m.entries
	}
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.Name + " " + e.DBType
	}
	matches := fuzzy.Find(pattern, names)
	out := make([]connection.Entry, len(matches))
	for i, match := range matches {
		out[i] = m.entries[match.Index]
	}
	return out
}

// View renders the connection manager.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	th := theme.Current
	var view string
	switch m.state {
	case StateForm:
		view = m.viewForm(th)
	default:
		view = m.viewList(th)
	}
	if m.confirm.Visible() {
		return dialog.Center(view, m.confirm.View(), lipgloss.Width(view))
	}
	return view
}

func (m Model) viewList(th *theme.Theme) string {
	title := th.DialogTitle.Render("  Database Connections  ")

	var body string
	entries := m.VisibleEntries()
	switch {
	case m.listErr != "" && !m.loaded:
		body = th.ErrorText.Render("  " + m.listErr)
	case !m.loaded:
		body = th.MutedText.Render("  " + msgLoading)
	case len(m.entries) == 0:
		body = lipgloss.JoinVertical(lipgloss.Left,
			"  "+th.WarningText.Render(MsgEmptyTitle),
			"  "+th.MutedText.Render(MsgEmptyHint),
		)
	default:
		var lines []string
		for i, e := range entries {
			line := fmt.Sprintf("%-20s %-10s %s", e.Name, e.DBType, th.MutedText.Render(e.Summary))
			if i == m.cursor {
				lines = append(lines, th.SidebarSelected.Render("> "+line))
			} else {
				lines = append(lines, "  "+line)
			}
		}
		if len(entries) == 0 {
			lines = append(lines, th.MutedText.Render("  no match"))
		}
		body = strings.Join(lines, "\n")
	}

	parts := []string{title, ""}
	if m.filtering || m.filter.Value() != "" {
		parts = append(parts, "  "+m.filter.View(), "")
	}
	parts = append(parts, body)
	if m.listErr != "" && m.loaded {
		parts = append(parts, "", th.ErrorText.Render("  "+m.listErr))
	}
	parts = append(parts, "", th.MutedText.Render("  enter:use  n:new  e:edit  d:delete  /:filter  r:reload  esc:close"))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	return th.DialogBorder.Width(m.dialogWidth()).Render(content)
}

func (m Model) viewForm(th *theme.Theme) string {
	title := "  Add Database Connection  "
	if m.mode == ModeEdit {
		title = "  Edit Database Connection  "
	}

	lines := []string{th.DialogTitle.Render(title), ""}
	for _, f := range m.VisibleFields() {
		var line string
		if f == connection.FieldDBType {
			choice := selectTypePrompt
			if t := m.DBType(); t != "" {
				choice = string(t)
			}
			line = fmt.Sprintf("%-10s < %s >", f.String()+":", choice)
			if m.formFocus == f {
				line = th.SidebarSelected.Render(line)
			}
		} else {
			line = m.inputs[f].View()
		}
		lines = append(lines, "  "+line)
		if e := m.errs.Get(jsonName(f)); e != "" {
			lines = append(lines, "  "+th.FormError.Render("  "+e))
		}
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		m.button(th, m.testCtl), " ", m.button(th, m.saveCtl))
	lines = append(lines, "", "  "+buttons, "",
		th.MutedText.Render("  ctrl+t:test  ctrl+s:save  ←/→:type  esc:back"))

	return th.DialogBorder.Width(m.dialogWidth()).Render(strings.Join(lines, "\n"))
}

func (m Model) button(th *theme.Theme, c form.Control) string {
	if c.Disabled() {
		return th.DialogButtonDisabled.Render(c.Text())
	}
	return th.DialogButton.Render(c.Text())
}

func jsonName(f connection.Field) string {
	switch f {
	case connection.FieldName:
		return "name"
	case connection.FieldDBType:
		return "db_type"
	case connection.FieldPort:
		return "port"
	}
	return ""
}

func (m Model) dialogWidth() int {
	w := 72
	if m.width > 0 && w > m.width-4 {
		w = m.width - 4
	}
	return w
}

// Show makes the connection manager visible on its list.
func (m *Model) Show() {
	m.visible = true
	m.state = StateList
	m.cursor = 0
}

// Hide hides the connection manager.
func (m *Model) Hide() {
	m.visible = false
	m.confirm.Hide()
}

// Visible returns whether the connection manager is shown.
func (m Model) Visible() bool { return m.visible }

// State returns the current screen.
func (m Model) State() State { return m.state }

// Mode returns the form mode.
func (m Model) Mode() Mode { return m.mode }

// ConfirmVisible reports whether the delete confirmation is open.
func (m Model) ConfirmVisible() bool { return m.confirm.Visible() }

// SetSize sets the available space.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.confirm.SetSize(m.dialogWidth(), height)
}

// Entries returns the loaded connection list.
func (m Model) Entries() []connection.Entry {
	return m.entries
}

// SetEntries replaces the connection list.
func (m *Model) SetEntries(entries []connection.Entry) {
	m.entries = entries
	m.loaded = true
	m.clampCursor()
}

// Name returns the display name of the connection with the given id.
func (m Model) Name(id string) (string, bool) {
	e, ok := connection.Find(m.entries, id)
	return e.Name, ok
}

// Loaded reports whether the connection list was fetched at least once.
func (m Model) Loaded() bool { return m.loaded }
