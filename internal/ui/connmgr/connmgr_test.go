package connmgr

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/querydesk/internal/api"
	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/msg"
	"github.com/sadopc/querydesk/internal/theme"
	"github.com/sadopc/querydesk/internal/ui/dialog"
	"github.com/sadopc/querydesk/internal/ui/toast"
	"github.com/sadopc/querydesk/internal/workbench"
)

func init() {
	theme.Current = theme.Default()
}

type fakeBackend struct {
	list    *api.ConnectionList
	reply   *api.Reply
	err     error
	lists   int
	tested  []connection.Draft
	saved   []connection.Draft
	deleted []string
}

func (f *fakeBackend) Connections(context.Context) (*api.ConnectionList, error) {
	f.lists++
	return f.list, f.err
}

func (f *fakeBackend) TestConnection(_ context.Context, d connection.Draft) (*api.Reply, error) {
	f.tested = append(f.tested, d)
	return f.reply, f.err
}

func (f *fakeBackend) SaveConnection(_ context.Context, d connection.Draft) (*api.Reply, error) {
	f.saved = append(f.saved, d)
	return f.reply, f.err
}

func (f *fakeBackend) DeleteConnection(_ context.Context, id string) (*api.Reply, error) {
	f.deleted = append(f.deleted, id)
	return f.reply, f.err
}

var sampleEntries = []connection.Entry{
	{ID: "1", Name: "Sales", DBType: "postgres", Summary: "db.example.com:5432/sales"},
	{ID: "2", Name: "Local", DBType: "sqlite", Summary: "/app.db"},
}

func newLoaded(b *fakeBackend) Model {
	m := New(b, workbench.NewSession())
	m.SetSize(100, 40)
	m.SetEntries(append([]connection.Entry(nil), sampleEntries...))
	m.Show()
	return m
}

// drain runs cmd and every command of a batch, collecting their messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	m := cmd()
	if batch, ok := m.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{m}
}

func toasts(msgs []tea.Msg) []toast.ShowMsg {
	var out []toast.ShowMsg
	for _, m := range msgs {
		if s, ok := m.(toast.ShowMsg); ok {
			out = append(out, s)
		}
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew(t *testing.T) {
	m := New(&fakeBackend{}, workbench.NewSession())
	if m.Visible() {
		t.Fatal("expected not visible initially")
	}
	if m.State() != StateList {
		t.Fatalf("expected StateList, got %d", m.State())
	}
	if m.Init() != nil {
		t.Fatal("expected nil cmd from Init")
	}
}

func TestLoad(t *testing.T) {
	b := &fakeBackend{list: &api.ConnectionList{Reply: api.Reply{Success: true}, Connections: sampleEntries}}
	m := New(b, workbench.NewSession())
	m.Show()

	if !strings.Contains(m.View(), "Loading connections...") {
		t.Fatal("expected loading text before the list arrives")
	}

	for _, r := range drain(m.Load()) {
		m, _ = m.Update(r)
	}
	if b.lists != 1 {
		t.Fatalf("expected 1 list call, got %d", b.lists)
	}
	if len(m.Entries()) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries()))
	}
	if !strings.Contains(m.View(), "db.example.com:5432/sales") {
		t.Fatal("expected summary in list view")
	}
}

func TestLoadEmptyShowsEmptyStateOnce(t *testing.T) {
	b := &fakeBackend{list: &api.ConnectionList{Reply: api.Reply{Success: true}}}
	m := New(b, workbench.NewSession())
	m.Show()
	for _, r := range drain(m.Load()) {
		m, _ = m.Update(r)
	}

	view := m.View()
	if n := strings.Count(view, MsgEmptyTitle); n != 1 {
		t.Fatalf("expected empty state once, found %d", n)
	}
	if !strings.Contains(view, MsgEmptyHint) {
		t.Fatal("expected empty-state hint")
	}
}

func TestStaleListReplyDiscarded(t *testing.T) {
	b := &fakeBackend{list: &api.ConnectionList{Reply: api.Reply{Success: true}, Connections: sampleEntries}}
	m := New(b, workbench.NewSession())

	old := m.Load()
	fresh := m.Load()
	staleMsg := old().(listedMsg)
	staleMsg.reply = &api.ConnectionList{Reply: api.Reply{Success: true}}

	m, _ = m.Update(fresh())
	m, _ = m.Update(staleMsg)
	if len(m.Entries()) != 2 {
		t.Fatalf("stale reply overwrote the list: %d entries", len(m.Entries()))
	}
}

func TestSelect(t *testing.T) {
	m := newLoaded(&fakeBackend{})

	m, _ = m.Update(key("j"))
	m, cmd := m.Update(key("enter"))
	if m.Visible() {
		t.Fatal("expected manager hidden after selection")
	}
	sel, ok := cmd().(msg.SelectConnectionMsg)
	if !ok {
		t.Fatal("expected SelectConnectionMsg")
	}
	if sel.ID != "2" || sel.Name != "Local" {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestFilter(t *testing.T) {
	m := newLoaded(&fakeBackend{})

	m, _ = m.Update(key("/"))
	for _, r := range "loc" {
		m, _ = m.Update(key(string(r)))
	}
	got := m.VisibleEntries()
	if len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("expected only Local to match, got %+v", got)
	}

	m, _ = m.Update(key("esc"))
	if len(m.VisibleEntries()) != 2 {
		t.Fatal("escape must clear the filter")
	}
}

func TestOpenAddClearsFields(t *testing.T) {
	m := newLoaded(&fakeBackend{})

	m.OpenEdit("1")
	if m.Mode() != ModeEdit || m.DBType() != connection.Postgres {
		t.Fatalf("expected edit mode for postgres, got mode=%d type=%q", m.Mode(), m.DBType())
	}

	m.OpenAdd()
	if m.Mode() != ModeAdd {
		t.Fatal("expected add mode")
	}
	if m.DBType() != "" {
		t.Fatalf("add mode must reset the type, got %q", m.DBType())
	}
	for i, in := range m.inputs {
		if in.Value() != "" {
			t.Fatalf("field %s not cleared: %q", connection.Field(i), in.Value())
		}
	}
	if d := m.Draft(); !d.IsNew() {
		t.Fatal("add mode draft must have no id")
	}
	if !strings.Contains(m.View(), "Add Database Connection") {
		t.Fatal("expected add title")
	}
}

func TestOpenEditFromSummary(t *testing.T) {
	m := newLoaded(&fakeBackend{})
	m.OpenEdit("1")

	d := m.Draft()
	if d.ID != "1" || d.Name != "Sales" {
		t.Fatalf("unexpected identity %+v", d)
	}
	if d.Host != "db.example.com" || d.Port != "5432" || d.Database != "sales" {
		t.Fatalf("summary not split: %+v", d)
	}
	if d.Username != "" || d.Password != "" {
		t.Fatal("credentials cannot be recovered from the list")
	}
	if !strings.Contains(m.View(), "Edit Database Connection") {
		t.Fatal("expected edit title")
	}
}

func TestTypeChangesVisibleFields(t *testing.T) {
	m := newLoaded(&fakeBackend{})
	m.OpenAdd()
	m.focus(connection.FieldDBType)

	has := func(f connection.Field) bool {
		for _, v := range m.VisibleFields() {
			if v == f {
				return true
			}
		}
		return false
	}

	// Types cycle in display order after the unselected prompt.
	steps := map[connection.DBType]func(){
		connection.SQLite: func() {
			if has(connection.FieldHost) || has(connection.FieldPassword) {
				t.Error("sqlite must hide host and password")
			}
		},
		connection.Snowflake: func() {
			if !has(connection.FieldWarehouse) || !has(connection.FieldSchema) || has(connection.FieldDriver) {
				t.Error("snowflake shows warehouse and schema only")
			}
		},
		connection.MSSQL: func() {
			if !has(connection.FieldDriver) || has(connection.FieldWarehouse) {
				t.Error("mssql shows driver only")
			}
		},
	}
	for range connection.Types {
		m, _ = m.Update(key("right"))
		if check, ok := steps[m.DBType()]; ok {
			check()
		}
	}
	m, _ = m.Update(key("right"))
	if m.DBType() != "" {
		t.Fatalf("expected wrap to unselected, got %q", m.DBType())
	}
	m, _ = m.Update(key("left"))
	if m.DBType() != connection.MSSQL {
		t.Fatalf("expected left to wrap to mssql, got %q", m.DBType())
	}
}

func TestTabSkipsHiddenFields(t *testing.T) {
	m := newLoaded(&fakeBackend{})
	m.OpenAdd()
	m.typeIdx = 3 // sqlite

	var order []connection.Field
	for i := 0; i < 3; i++ {
		m, _ = m.Update(key("tab"))
		order = append(order, m.formFocus)
	}
	want := []connection.Field{connection.FieldDBType, connection.FieldDatabase, connection.FieldName}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("focus order = %v, want %v", order, want)
		}
	}
}

func TestSaveInvalidMakesNoCall(t *testing.T) {
	b := &fakeBackend{}
	m := newLoaded(b)
	m.OpenAdd()
	m.inputs[connection.FieldPort].SetValue("abc")

	m, cmd := m.Update(key("ctrl+s"))
	if cmd != nil {
		t.Fatal("invalid form must not dispatch")
	}
	if len(b.saved) != 0 {
		t.Fatal("no save call expected")
	}
	for _, f := range []string{"name", "db_type", "port"} {
		if !m.errs.Has(f) {
			t.Errorf("expected error for %s", f)
		}
	}
	view := m.View()
	if !strings.Contains(view, "Name is required") || !strings.Contains(view, "Port must be a number") {
		t.Fatal("expected inline field errors")
	}
}

func TestTestConnection(t *testing.T) {
	b := &fakeBackend{reply: &api.Reply{Success: true, Message: "ok"}}
	m := newLoaded(b)
	m.OpenAdd()
	m.typeIdx = 4 // snowflake
	m.inputs[connection.FieldHost].SetValue("acct")
	m.inputs[connection.FieldWarehouse].SetValue("WH")

	// Name is not required for a test.
	m, cmd := m.Update(key("ctrl+t"))
	if cmd == nil {
		t.Fatal("expected test dispatch")
	}
	if !m.testCtl.Busy() || !strings.Contains(m.View(), "Testing...") {
		t.Fatal("expected busy test control")
	}
	if _, again := m.Update(key("ctrl+t")); again != nil {
		t.Fatal("busy control must block a second test")
	}

	var shown []toast.ShowMsg
	for _, r := range drain(cmd) {
		var next tea.Cmd
		m, next = m.Update(r)
		shown = append(shown, toasts(drain(next))...)
	}
	if len(b.tested) != 1 {
		t.Fatalf("expected 1 test call, got %d", len(b.tested))
	}
	if b.tested[0].AdditionalParams["warehouse"] != "WH" {
		t.Fatalf("expected snowflake params, got %v", b.tested[0].AdditionalParams)
	}
	if len(shown) != 1 || shown[0].Kind != toast.Success || shown[0].Text != MsgTestOK {
		t.Fatalf("unexpected toasts %+v", shown)
	}
	if m.testCtl.Busy() {
		t.Fatal("control must be restored")
	}
}

func TestTestConnectionFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply *api.Reply
		err   error
		want  string
	}{
		{"business", &api.Reply{Message: "bad password"}, nil, "Connection failed: bad password"},
		{"transport", nil, &api.TransportError{Err: errors.New("refused")}, MsgTestError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newLoaded(&fakeBackend{reply: tt.reply, err: tt.err})
			m.OpenAdd()
			m.typeIdx = 1

			m, cmd := m.Update(key("ctrl+t"))
			m, next := m.Update(cmd())
			shown := toasts(drain(next))
			if len(shown) != 1 || shown[0].Kind != toast.Error || shown[0].Text != tt.want {
				t.Fatalf("unexpected toasts %+v", shown)
			}
			if m.testCtl.Disabled() {
				t.Fatal("control must be restored after failure")
			}
		})
	}
}

func TestSaveSuccessReloads(t *testing.T) {
	b := &fakeBackend{reply: &api.Reply{Success: true, Message: "saved"}}
	m := newLoaded(b)
	m.OpenAdd()
	m.typeIdx = 2 // mysql
	m.inputs[connection.FieldName].SetValue("Shop")

	m, cmd := m.Update(key("ctrl+s"))
	m, next := m.Update(cmd())
	if m.State() != StateList {
		t.Fatal("form must close after a successful save")
	}
	if d := b.saved[0]; !d.IsNew() || d.DBType != connection.MySQL || len(d.AdditionalParams) != 0 {
		t.Fatalf("unexpected saved draft %+v", d)
	}

	// The batch carries the toast and, after ReloadDelay, the reload tick.
	msgs := drain(next)
	shown := toasts(msgs)
	if len(shown) != 1 || shown[0].Text != MsgSaveOK {
		t.Fatalf("unexpected toasts %+v", shown)
	}
	var reload tea.Cmd
	for _, r := range msgs {
		if _, ok := r.(reloadMsg); ok {
			m, reload = m.Update(r)
		}
	}
	if reload == nil {
		t.Fatal("expected a reload after saving")
	}
	reload()
	if b.lists != 1 {
		t.Fatalf("expected list reload, got %d calls", b.lists)
	}
}

func TestSaveEditKeepsID(t *testing.T) {
	b := &fakeBackend{reply: &api.Reply{Message: "duplicate name"}}
	m := newLoaded(b)
	m.OpenEdit("1")

	m, cmd := m.Update(key("ctrl+s"))
	m, next := m.Update(cmd())
	if b.saved[0].ID != "1" {
		t.Fatalf("edit must send the id, got %q", b.saved[0].ID)
	}
	shown := toasts(drain(next))
	if len(shown) != 1 || shown[0].Text != "Save failed: duplicate name" {
		t.Fatalf("unexpected toasts %+v", shown)
	}
	if m.State() != StateForm || m.saveCtl.Disabled() {
		t.Fatal("failed save keeps the form open with the control restored")
	}
}

func deleteFlow(t *testing.T, m Model, id string) (Model, []tea.Msg) {
	t.Helper()
	for i, e := range m.VisibleEntries() {
		if e.ID == id {
			m.cursor = i
		}
	}
	m, _ = m.Update(key("d"))
	if !m.ConfirmVisible() || m.confirm.Target() != id {
		t.Fatalf("expected confirm for %s", id)
	}
	m, choose := m.Update(key("enter"))
	choice := choose().(dialog.ChoiceMsg)
	m, send := m.Update(choice)
	m, next := m.Update(send())
	return m, drain(next)
}

func TestDeleteToEmpty(t *testing.T) {
	b := &fakeBackend{reply: &api.Reply{Success: true}}
	m := newLoaded(b)

	m, msgs := deleteFlow(t, m, "1")
	if !contains(msgs, msg.ConnectionRemovedMsg{ID: "1"}) {
		t.Fatalf("expected removal message, got %+v", msgs)
	}
	if shown := toasts(msgs); len(shown) != 1 || shown[0].Text != MsgDeleteOK {
		t.Fatalf("unexpected toasts %+v", shown)
	}
	if m.ConfirmVisible() {
		t.Fatal("confirm must close after delete")
	}
	if strings.Contains(m.View(), MsgEmptyTitle) {
		t.Fatal("list still has an entry")
	}

	m, _ = deleteFlow(t, m, "2")
	if len(m.Entries()) != 0 {
		t.Fatalf("expected local removal, %d left", len(m.Entries()))
	}
	if b.lists != 0 {
		t.Fatal("delete must not reload the list")
	}
	if n := strings.Count(m.View(), MsgEmptyTitle); n != 1 {
		t.Fatalf("expected empty state exactly once, got %d", n)
	}
	if b.deleted[0] != "1" || b.deleted[1] != "2" {
		t.Fatalf("unexpected delete ids %v", b.deleted)
	}
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	m := newLoaded(&fakeBackend{reply: &api.Reply{Message: "in use"}})

	m, msgs := deleteFlow(t, m, "2")
	if shown := toasts(msgs); len(shown) != 1 || shown[0].Text != "Delete failed: in use" {
		t.Fatalf("unexpected toasts %+v", shown)
	}
	if len(m.Entries()) != 2 {
		t.Fatal("entry must stay after a failed delete")
	}
	if !m.ConfirmVisible() || m.confirm.Busy() {
		t.Fatal("confirm stays open and usable after failure")
	}
}

func TestDeleteCancel(t *testing.T) {
	b := &fakeBackend{}
	m := newLoaded(b)

	m, _ = m.Update(key("d"))
	m, _ = m.Update(key("right"))
	m, cmd := m.Update(key("enter"))
	m, send := m.Update(cmd())
	if send != nil || len(b.deleted) != 0 {
		t.Fatal("cancel must not delete")
	}
	if m.ConfirmVisible() {
		t.Fatal("cancel closes the confirm")
	}
}

func TestEscClosesForm(t *testing.T) {
	m := newLoaded(&fakeBackend{})
	m.OpenAdd()
	m, _ = m.Update(key("esc"))
	if m.State() != StateList || !m.Visible() {
		t.Fatal("esc from the form returns to the list")
	}
	m, _ = m.Update(key("esc"))
	if m.Visible() {
		t.Fatal("esc from the list closes the manager")
	}
}

func contains(msgs []tea.Msg, want tea.Msg) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}
