package dialog

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/querydesk/internal/theme"
)

func init() {
	theme.Current = theme.Default()
}

func newConfirm() Model {
	return New("delete", "Confirm Delete", "Are you sure you want to delete this connection?",
		Button{Label: "Delete", BusyLabel: "Deleting..."},
		Button{Label: "Cancel"},
	)
}

func TestNew(t *testing.T) {
	d := newConfirm()

	if d.Visible() {
		t.Fatal("expected dialog to be not visible initially")
	}
	if d.title != "Confirm Delete" {
		t.Fatalf("expected title 'Confirm Delete', got %q", d.title)
	}
	if len(d.buttons) != 2 || len(d.controls) != 2 {
		t.Fatalf("expected 2 buttons, got %d", len(d.buttons))
	}
	if d.maxWidth != 60 {
		t.Fatalf("expected maxWidth=60, got %d", d.maxWidth)
	}
}

func TestShowForCarriesTarget(t *testing.T) {
	d := newConfirm()

	d.ShowFor("42")
	if !d.Visible() {
		t.Fatal("expected visible after ShowFor()")
	}
	if d.Target() != "42" {
		t.Fatalf("expected target 42, got %q", d.Target())
	}

	d.Hide()
	if d.Visible() {
		t.Fatal("expected not visible after Hide()")
	}
	if d.Target() != "" {
		t.Fatalf("expected target cleared on Hide(), got %q", d.Target())
	}
}

func TestUpdate_NotVisible(t *testing.T) {
	d := newConfirm()

	d, cmd := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected nil cmd when dialog not visible")
	}
}

func TestUpdate_Navigation(t *testing.T) {
	d := New("x", "Test", "body",
		Button{Label: "Yes"},
		Button{Label: "No"},
		Button{Label: "Cancel"},
	)
	d.Show()

	steps := []struct {
		key  tea.KeyType
		want int
	}{
		{tea.KeyRight, 1},
		{tea.KeyRight, 2},
		{tea.KeyRight, 2}, // boundary
		{tea.KeyLeft, 1},
		{tea.KeyTab, 2},
		{tea.KeyShiftTab, 1},
		{tea.KeyLeft, 0},
		{tea.KeyLeft, 0}, // boundary
	}
	for i, s := range steps {
		d, _ = d.Update(tea.KeyMsg{Type: s.key})
		if d.active != s.want {
			t.Fatalf("step %d: expected active=%d, got %d", i, s.want, d.active)
		}
	}
}

func TestEnterOnBusyButtonKeepsDialogOpen(t *testing.T) {
	d := newConfirm()
	d.ShowFor("7")

	d, cmd := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected cmd from enter")
	}
	choice, ok := cmd().(ChoiceMsg)
	if !ok {
		t.Fatal("expected ChoiceMsg")
	}
	if choice.Dialog != "delete" || choice.Button != 0 || choice.Target != "7" {
		t.Fatalf("unexpected choice %+v", choice)
	}
	if !d.Visible() {
		t.Fatal("dialog must stay open while the action runs")
	}
	if !d.Busy() {
		t.Fatal("expected dialog busy")
	}
	if !strings.Contains(d.View(), "Deleting...") {
		t.Fatal("expected busy label in view")
	}

	// Keys, including a second enter, are ignored while busy.
	d, cmd = d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatal("expected no second dispatch while busy")
	}
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if !d.Visible() {
		t.Fatal("escape must not close a busy dialog")
	}
}

func TestFinish(t *testing.T) {
	d := newConfirm()
	d.ShowFor("7")
	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyEnter})

	d.Finish(false)
	if !d.Visible() || d.Busy() {
		t.Fatal("failed action must restore the buttons and keep the dialog open")
	}
	if d.Target() != "7" {
		t.Fatal("target must survive a failed action")
	}
	if !strings.Contains(d.View(), "Delete") || strings.Contains(d.View(), "Deleting...") {
		t.Fatal("expected original label restored")
	}

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	d.Finish(true)
	if d.Visible() || d.Busy() {
		t.Fatal("successful action must close the dialog")
	}
}

func TestEnterOnPlainButtonCloses(t *testing.T) {
	d := newConfirm()
	d.ShowFor("7")

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyRight})
	d, cmd := d.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if d.Visible() {
		t.Fatal("expected dialog hidden after cancel")
	}
	choice := cmd().(ChoiceMsg)
	if choice.Label != "Cancel" || choice.Target != "7" {
		t.Fatalf("unexpected choice %+v", choice)
	}
}

func TestUpdate_Escape(t *testing.T) {
	d := newConfirm()
	d.Show()

	d, _ = d.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if d.Visible() {
		t.Fatal("expected dialog hidden after escape")
	}
}

func TestView_Hidden(t *testing.T) {
	d := newConfirm()
	if view := d.View(); view != "" {
		t.Fatalf("expected empty view when hidden, got %q", view)
	}
}

func TestOverlay(t *testing.T) {
	d := newConfirm()

	background := "line1\nline2\nline3"
	if got := d.Overlay(background); got != background {
		t.Fatal("expected overlay to return background unchanged when hidden")
	}

	d.SetSize(80, 24)
	d.Show()
	lines := make([]string, 24)
	for i := range lines {
		lines[i] = strings.Repeat(".", 80)
	}
	bg := strings.Join(lines, "\n")

	result := d.Overlay(bg)
	if result == bg {
		t.Fatal("expected overlay to modify background content")
	}
	if got := strings.Count(result, "\n"); got != 23 {
		t.Fatalf("expected 24 lines, got %d", got+1)
	}
	first := strings.Split(result, "\n")[0]
	if first != lines[0] {
		t.Fatal("rows above the dialog must be untouched")
	}
}

func TestCenterKeepsSides(t *testing.T) {
	bg := "aaaaaaaaaa\nbbbbbbbbbb\ncccccccccc"
	out := Center(bg, "XX", 10)
	mid := strings.Split(out, "\n")[1]
	if mid != "bbbbXXbbbb" {
		t.Fatalf("Center() middle row = %q, want %q", mid, "bbbbXXbbbb")
	}
}

func TestSetSize(t *testing.T) {
	d := newConfirm()
	d.SetSize(40, 20)

	if d.width != 40 || d.maxHeight != 20 {
		t.Fatalf("expected 40x20, got %dx%d", d.width, d.maxHeight)
	}
	if d.maxWidth > 36 {
		t.Fatalf("expected maxWidth <= 36, got %d", d.maxWidth)
	}

	d = newConfirm()
	d.SetSize(200, 50)
	if d.maxWidth != 60 {
		t.Fatalf("expected maxWidth=60 (unchanged), got %d", d.maxWidth)
	}
}
