// Package msg holds the bubbletea messages exchanged between the querydesk
// components and the root model.
package msg

import (
	"github.com/sadopc/querydesk/internal/api"
)

// Pane focus targets.
type Pane int

const (
	PaneSidebar Pane = iota
	PaneEditor
	PaneResults
	PaneChat
)

func (p Pane) String() string {
	switch p {
	case PaneSidebar:
		return "schema"
	case PaneEditor:
		return "editor"
	case PaneResults:
		return "results"
	case PaneChat:
		return "chat"
	default:
		return "unknown"
	}
}

// KeyMode represents the active keybinding mode.
type KeyMode int

const (
	KeyModeStandard KeyMode = iota
	KeyModeVim
)

func (m KeyMode) String() string {
	if m == KeyModeVim {
		return "vim"
	}
	return "standard"
}

// ParseKeyMode parses a string into a KeyMode.
func ParseKeyMode(s string) KeyMode {
	if s == "vim" {
		return KeyModeVim
	}
	return KeyModeStandard
}

// FocusMsg requests a pane focus change.
type FocusMsg struct {
	Pane Pane
}

// AuthenticatedMsg is sent once login or registration succeeded.
type AuthenticatedMsg struct {
	Email    string
	Redirect string
}

// OpenConnectionsMsg opens the connection manager.
type OpenConnectionsMsg struct{}

// SelectConnectionMsg makes a saved connection the active one.
type SelectConnectionMsg struct {
	ID   string
	Name string
}

// ConnectionRemovedMsg is sent after a connection was deleted on the server.
type ConnectionRemovedMsg struct {
	ID string
}

// SchemaLoadedMsg carries the reply of a schema-info call.
type SchemaLoadedMsg struct {
	Seq          uint64
	ConnectionID string
	Info         *api.SchemaInfo
	Err          error
}

// GenerateRequestMsg asks for SQL generated from a prompt.
type GenerateRequestMsg struct {
	Prompt string
}

// SQLGeneratedMsg carries the reply of a generate-sql call.
type SQLGeneratedMsg struct {
	Seq   uint64
	Reply *api.Generated
	Err   error
}

// ExecuteQueryMsg requests execution of the editor buffer.
type ExecuteQueryMsg struct {
	Query string
}

// QueryResultMsg carries the reply of a run-query call.
type QueryResultMsg struct {
	Seq   uint64
	Reply *api.QueryResult
	Err   error
}

// UseQueryMsg replaces the editor buffer with generated SQL.
type UseQueryMsg struct {
	SQL string
}

// InsertTextMsg inserts text into the editor at the cursor.
type InsertTextMsg struct {
	Text string
}

// ExportCompleteMsg is sent when an export finishes.
type ExportCompleteMsg struct {
	Path     string
	RowCount int
}

// ExportErrMsg is sent when an export fails.
type ExportErrMsg struct {
	Err error
}

// ToggleSchemaMsg shows or hides the schema explorer.
type ToggleSchemaMsg struct{}

// RefreshSchemaMsg reloads the active connection's schema.
type RefreshSchemaMsg struct{}

// ToggleKeyModeMsg switches between vim and standard keybindings.
type ToggleKeyModeMsg struct{}
