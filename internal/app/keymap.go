package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the workbench keybindings.
type KeyMap struct {
	// Navigation
	FocusNext    key.Binding
	FocusPrev    key.Binding
	FocusSidebar key.Binding
	FocusEditor  key.Binding
	FocusResults key.Binding
	FocusChat    key.Binding

	// Editor
	ExecuteQuery key.Binding
	CancelQuery  key.Binding
	Complete     key.Binding
	FormatQuery  key.Binding

	// Results
	ExportCSV  key.Binding
	ExportJSON key.Binding

	// App
	Quit          key.Binding
	Help          key.Binding
	ToggleKeyMode key.Binding
	ToggleSidebar key.Binding
	RefreshSchema key.Binding
	OpenConnMgr   key.Binding

	// Pane resizing
	ResizeLeft  key.Binding
	ResizeRight key.Binding
	ResizeUp    key.Binding
	ResizeDown  key.Binding

	// Vim normal mode
	VimLeft   key.Binding
	VimRight  key.Binding
	VimInsert key.Binding
	VimEscape key.Binding
}

// StandardKeyMap returns keybindings for standard mode.
func StandardKeyMap() KeyMap {
	return KeyMap{
		FocusNext: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		FocusPrev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev pane"),
		),
		FocusSidebar: key.NewBinding(
			key.WithKeys("alt+1"),
			key.WithHelp("alt+1", "schema"),
		),
		FocusEditor: key.NewBinding(
			key.WithKeys("alt+2"),
			key.WithHelp("alt+2", "editor"),
		),
		FocusResults: key.NewBinding(
			key.WithKeys("alt+3"),
			key.WithHelp("alt+3", "results"),
		),
		FocusChat: key.NewBinding(
			key.WithKeys("alt+4"),
			key.WithHelp("alt+4", "assistant"),
		),
		ExecuteQuery: key.NewBinding(
			key.WithKeys("f5", "ctrl+g"),
			key.WithHelp("f5", "run query"),
		),
		CancelQuery: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "cancel query"),
		),
		Complete: key.NewBinding(
			key.WithKeys("ctrl+@", "ctrl+ "),
			key.WithHelp("ctrl+space", "autocomplete"),
		),
		FormatQuery: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "format sql"),
		),
		ExportCSV: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export csv"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "export json"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		ToggleKeyMode: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "vim/standard"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "toggle schema"),
		),
		RefreshSchema: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh schema"),
		),
		OpenConnMgr: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "connections"),
		),
		ResizeLeft: key.NewBinding(
			key.WithKeys("ctrl+left"),
			key.WithHelp("ctrl+←", "shrink schema"),
		),
		ResizeRight: key.NewBinding(
			key.WithKeys("ctrl+right"),
			key.WithHelp("ctrl+→", "grow schema"),
		),
		ResizeUp: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("ctrl+↑", "shrink editor"),
		),
		ResizeDown: key.NewBinding(
			key.WithKeys("ctrl+down"),
			key.WithHelp("ctrl+↓", "grow editor"),
		),
	}
}

// VimKeyMap returns keybindings for vim mode. In normal mode the editor and
// the prompt input are blurred and h/l move between panes.
func VimKeyMap() KeyMap {
	km := StandardKeyMap()

	km.VimLeft = key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("h", "prev pane"),
	)
	km.VimRight = key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "next pane"),
	)
	km.VimInsert = key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "insert"),
	)
	km.VimEscape = key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "normal mode"),
	)

	return km
}

// ShortHelp returns a subset of keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.ExecuteQuery, k.FocusNext, k.OpenConnMgr, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{k.ExecuteQuery, k.CancelQuery, k.Complete, k.FormatQuery},
		{k.ExportCSV, k.ExportJSON},
		{k.FocusNext, k.FocusPrev, k.FocusSidebar, k.FocusEditor, k.FocusResults, k.FocusChat},
		{k.ToggleKeyMode, k.ToggleSidebar, k.RefreshSchema, k.OpenConnMgr},
		{k.ResizeLeft, k.ResizeRight, k.ResizeUp, k.ResizeDown},
		{k.Quit, k.Help},
	}
	if len(k.VimInsert.Keys()) > 0 {
		groups = append(groups, []key.Binding{k.VimEscape, k.VimInsert, k.VimLeft, k.VimRight})
	}
	return groups
}
