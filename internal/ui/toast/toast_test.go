package toast

import (
	"strings"
	"testing"
	"time"

	"github.com/sadopc/querydesk/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

func TestNewDefaultsDuration(t *testing.T) {
	if d := New(0).Duration(); d != DefaultDuration {
		t.Errorf("Duration() = %v, want %v", d, DefaultDuration)
	}
	if d := New(time.Second).Duration(); d != time.Second {
		t.Errorf("Duration() = %v, want 1s", d)
	}
}

func TestPushAssignsIncreasingIDs(t *testing.T) {
	m := New(0)
	cmd1 := m.Push(Info, "one")
	cmd2 := m.Push(Error, "two")
	if cmd1 == nil || cmd2 == nil {
		t.Fatal("Push must return a dismissal command")
	}
	ts := m.Toasts()
	if len(ts) != 2 {
		t.Fatalf("len = %d, want 2", len(ts))
	}
	if ts[0].ID >= ts[1].ID {
		t.Errorf("ids not increasing: %d then %d", ts[0].ID, ts[1].ID)
	}
}

func TestDismissByIDOnly(t *testing.T) {
	m := New(0)
	m.Push(Info, "first")
	m.Push(Success, "second")
	m.Push(Warning, "third")

	second := m.Toasts()[1].ID
	m, _ = m.Update(DismissMsg{ID: second})

	if m.Len() != 2 {
		t.Fatalf("len = %d, want 2", m.Len())
	}
	for _, ts := range m.Toasts() {
		if ts.Text == "second" {
			t.Error("dismissed toast still visible")
		}
	}

	// Unknown and repeated ids are no-ops.
	m.Dismiss(second)
	m.Dismiss(999)
	if m.Len() != 2 {
		t.Errorf("len = %d after no-op dismiss, want 2", m.Len())
	}
}

func TestShowMsg(t *testing.T) {
	msg := Show(Warning, "Please select a database connection first")()
	show, ok := msg.(ShowMsg)
	if !ok {
		t.Fatalf("Show() produced %T, want ShowMsg", msg)
	}

	m := New(0)
	m, cmd := m.Update(show)
	if cmd == nil {
		t.Error("ShowMsg must schedule dismissal")
	}
	if m.Len() != 1 || m.Toasts()[0].Kind != Warning {
		t.Errorf("toasts = %+v", m.Toasts())
	}
}

func TestClear(t *testing.T) {
	m := New(0)
	m.Push(Info, "a")
	m.Push(Info, "b")
	m.Clear()
	if m.Len() != 0 {
		t.Errorf("len = %d after Clear, want 0", m.Len())
	}
	if m.View() != "" {
		t.Error("View() should be empty with no toasts")
	}
}

func TestViewNewestAtBottom(t *testing.T) {
	m := New(0)
	m.Push(Info, "older")
	m.Push(Error, "newer")
	view := m.View()
	if strings.Index(view, "older") > strings.Index(view, "newer") {
		t.Error("newest toast should render below older ones")
	}
}

func TestOverlayKeepsLineCount(t *testing.T) {
	m := New(0)
	m.Push(Success, "Connection saved successfully!")

	base := strings.Repeat(strings.Repeat(".", 80)+"\n", 9) + strings.Repeat(".", 80)
	out := m.Overlay(base, 80)
	if got, want := strings.Count(out, "\n"), strings.Count(base, "\n"); got != want {
		t.Errorf("line count = %d, want %d", got, want)
	}
	if !strings.Contains(out, "Connection saved successfully!") {
		t.Error("toast text missing from overlay")
	}
	lines := strings.Split(out, "\n")
	if lines[len(lines)-1] != strings.Repeat(".", 80) {
		t.Error("last line must stay untouched")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{Info: "info", Success: "success", Warning: "warning", Error: "error"}
	for k, want := range tests {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
