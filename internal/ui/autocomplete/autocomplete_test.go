package autocomplete

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/querydesk/internal/completion"
	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/schema"
	"github.com/sadopc/querydesk/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

func testEngine() *completion.Engine {
	eng := completion.NewEngine(connection.SQLite)
	eng.UpdateSchema(schema.Snapshot{
		{
			Name: "main",
			Tables: []schema.Table{
				{Name: "users", Columns: []schema.Column{
					{Name: "id", Type: "integer", PrimaryKey: true},
					{Name: "name", Type: "text"},
				}},
				{Name: "orders", Columns: []schema.Column{
					{Name: "total", Type: "numeric"},
				}},
			},
		},
	})
	return eng
}

func visibleModel(t *testing.T) Model {
	t.Helper()
	m := New(testEngine())
	m.Trigger("SELECT * FROM ", 14)
	if !m.Visible() {
		t.Fatal("expected popup after trigger")
	}
	return m
}

func TestNew(t *testing.T) {
	m := New(nil)
	if m.Visible() {
		t.Fatal("expected not visible initially")
	}
	if m.width != 40 {
		t.Fatalf("expected default width=40, got %d", m.width)
	}
}

func TestTrigger_NoEngine(t *testing.T) {
	m := New(nil)
	m.Trigger("SELECT ", 7)
	if m.Visible() {
		t.Fatal("expected not visible when engine is nil")
	}
}

func TestTrigger_WithEngine(t *testing.T) {
	m := visibleModel(t)
	if len(m.Items()) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(m.Items()))
	}
	if m.selected != 0 {
		t.Fatal("selection starts at the top")
	}
}

func TestTrigger_NoMatches(t *testing.T) {
	m := New(testEngine())
	m.Trigger("SELECT * FROM zzzzqqq", 21)
	if m.Visible() {
		t.Fatal("expected not visible without matches")
	}
}

func TestTrigger_CursorPastEnd(t *testing.T) {
	m := New(testEngine())
	m.Trigger("sel", 50)
	if !m.Visible() || m.prefix != "sel" {
		t.Fatalf("visible=%v prefix=%q", m.Visible(), m.prefix)
	}
}

func TestUpdate_Navigation(t *testing.T) {
	m := visibleModel(t)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 1 {
		t.Fatalf("selected = %d, want 1", m.selected)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.selected != 1 {
		t.Fatal("down stops at the last item")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected != 0 {
		t.Fatal("up stops at the first item")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.selected != 1 {
		t.Fatal("ctrl+n moves down")
	}
}

func TestUpdate_Accept(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEnter, tea.KeyTab} {
		m := New(testEngine())
		text := "SELECT users.na"
		m.Trigger(text, len(text))

		m, cmd := m.Update(tea.KeyMsg{Type: k})
		if m.Visible() {
			t.Fatal("accepting hides the popup")
		}
		if cmd == nil {
			t.Fatal("expected SelectedMsg command")
		}
		sel, ok := cmd().(SelectedMsg)
		if !ok {
			t.Fatal("expected SelectedMsg")
		}
		if sel.Text != "name" || sel.Replace != "na" {
			t.Errorf("SelectedMsg = %+v, want name replacing na", sel)
		}
	}
}

func TestUpdate_Escape(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEscape, tea.KeyCtrlC} {
		m := visibleModel(t)
		m, cmd := m.Update(tea.KeyMsg{Type: k})
		if m.Visible() {
			t.Fatal("expected hidden")
		}
		if _, ok := cmd().(DismissMsg); !ok {
			t.Fatal("expected DismissMsg")
		}
	}
}

func TestUpdate_NotVisible(t *testing.T) {
	m := New(testEngine())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("hidden popup ignores keys")
	}
}

func TestDismiss(t *testing.T) {
	m := visibleModel(t)
	m.Dismiss()
	if m.Visible() {
		t.Fatal("expected hidden after Dismiss")
	}
	if m.View() != "" {
		t.Fatal("hidden popup renders nothing")
	}
}

func TestView_WithItems(t *testing.T) {
	m := visibleModel(t)
	view := m.View()
	if !strings.Contains(view, "T users") || !strings.Contains(view, "T orders") {
		t.Fatalf("view missing tables:\n%s", view)
	}
}

func TestView_Scrolls(t *testing.T) {
	m := New(testEngine())
	m.Trigger("", 0)
	for i := 0; i < maxVisible+2; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	selected := m.Items()[m.selected].Label
	if !strings.Contains(m.View(), selected) {
		t.Errorf("selected item %q must stay visible", selected)
	}
	if lines := strings.Count(m.View(), "\n"); lines > maxVisible+2 {
		t.Errorf("view has %d lines, want at most %d rows", lines, maxVisible)
	}
}

func TestSetWidth(t *testing.T) {
	m := New(nil)
	m.SetWidth(5)
	if m.width != 40 {
		t.Fatal("tiny widths are ignored")
	}
	m.SetWidth(60)
	if m.width != 60 {
		t.Fatalf("width = %d, want 60", m.width)
	}
}

func TestKindIcon(t *testing.T) {
	tests := map[completion.Kind]string{
		completion.KindTable:    "T",
		completion.KindColumn:   "C",
		completion.KindKeyword:  "K",
		completion.KindFunction: "F",
		completion.Kind(99):     " ",
	}
	for k, want := range tests {
		if got := kindIcon(k); got != want {
			t.Errorf("kindIcon(%v) = %q, want %q", k, got, want)
		}
	}
}
