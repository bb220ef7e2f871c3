package workbench

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sadopc/querydesk/internal/api"
)

// User-facing workbench texts.
const (
	MsgNoConnection   = "Please select a database connection first"
	MsgEmptyQuery     = "Please enter a SQL query first"
	MsgExecuting      = "Executing query..."
	MsgServerDown     = "Error connecting to server"
	MsgTryLater       = "Please try again later"
	MsgExecuteFailed  = "Error executing query"
	MsgGenerateFailed = "An error occurred while generating SQL. Please try again."
	MsgNoResults      = "Query executed successfully, but no results were returned."
	MsgNoVisual       = "No visualization available for this query result."
	MsgNoInsights     = "No data insights available for this query result."
	MsgSchemaFailed   = "Error loading schema"
	MsgNoSelection    = "No database connection selected"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// Notice is a toast to show.
type Notice struct {
	Level Level
	Text  string
}

// FormatSeconds renders a duration in seconds with two decimals.
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 2, 64)
}

// ConnectedMessage is the system message appended when a connection is
// selected.
func ConnectedMessage(name string) string {
	return "Connected to database: " + name
}

// RowsReturned renders the result footer.
func RowsReturned(n int) string {
	if n == 1 {
		return "1 row returned"
	}
	return fmt.Sprintf("%d rows returned", n)
}

// ExecutedIn renders the result header.
func ExecutedIn(seconds float64) string {
	return "Executed in " + FormatSeconds(seconds) + " seconds"
}

// PreconditionNotice maps a Prepare error to the warning shown instead of a
// request. Errors without a notice, such as an empty prompt, are dropped
// silently.
func PreconditionNotice(err error) (Notice, bool) {
	switch {
	case errors.Is(err, ErrNoConnection):
		return Notice{Level: LevelWarning, Text: MsgNoConnection}, true
	case errors.Is(err, ErrEmptyQuery):
		return Notice{Level: LevelWarning, Text: MsgEmptyQuery}, true
	}
	return Notice{}, false
}

// GenerateOutcome is what a finished generate call changes.
type GenerateOutcome struct {
	// AIText is appended to the transcript, as code when IsCode is set.
	AIText string
	IsCode bool
	// SQL replaces the editor buffer when non-empty.
	SQL    string
	Notice *Notice
}

// ResolveGenerate maps a generate reply, or its transport error, to the
// transcript, buffer and toast effects.
func ResolveGenerate(reply *api.Generated, err error) GenerateOutcome {
	if err != nil || reply == nil {
		return GenerateOutcome{
			AIText: MsgGenerateFailed,
			Notice: &Notice{Level: LevelError, Text: MsgServerDown},
		}
	}
	if !reply.Success {
		return GenerateOutcome{
			AIText: "Error generating SQL: " + reply.Message,
			Notice: &Notice{Level: LevelError, Text: "Error: " + reply.Message},
		}
	}
	return GenerateOutcome{AIText: reply.SQL, IsCode: true, SQL: reply.SQL}
}

// ExecuteOutcome is what a finished execute call changes.
type ExecuteOutcome struct {
	// Result is set on success.
	Result *api.QueryResult
	// ErrTitle and ErrDetail fill the inline error block on failure.
	ErrTitle  string
	ErrDetail string
	// System is appended to the transcript when non-empty.
	System string
	Notice Notice
}

// Failed reports whether the outcome is an error block.
func (o ExecuteOutcome) Failed() bool { return o.Result == nil }

// ResolveExecute maps an execute reply, or its transport error, to the
// result panel, transcript and toast effects.
func ResolveExecute(reply *api.QueryResult, err error) ExecuteOutcome {
	if err != nil || reply == nil {
		return ExecuteOutcome{
			ErrTitle:  MsgServerDown,
			ErrDetail: MsgTryLater,
			Notice:    Notice{Level: LevelError, Text: MsgServerDown},
		}
	}
	if !reply.Success {
		return ExecuteOutcome{
			ErrTitle:  MsgExecuteFailed,
			ErrDetail: reply.Message,
			Notice:    Notice{Level: LevelError, Text: "Error: " + reply.Message},
		}
	}
	t := FormatSeconds(reply.ExecutionTime)
	return ExecuteOutcome{
		Result: reply,
		System: "Query executed in " + t + " seconds",
		Notice: Notice{Level: LevelSuccess, Text: "Query executed successfully in " + t + "s"},
	}
}

// SchemaFailure returns the title and detail of the schema error panel.
func SchemaFailure(reply *api.SchemaInfo, err error) (title, detail string) {
	if err != nil || reply == nil {
		return MsgServerDown, MsgTryLater
	}
	return MsgSchemaFailed, reply.Message
}
