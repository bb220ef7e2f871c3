package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/schema"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Reply is the common {success, message, redirect} envelope.
type Reply struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// ConnectionList is the reply of GET /connection.
type ConnectionList struct {
	Reply
	Connections []connection.Entry `json:"connections"`
}

// TestRequest is the body of POST /connection/test. It carries no id or
// name since testing never persists anything.
type TestRequest struct {
	DBType           connection.DBType `json:"db_type"`
	Host             string            `json:"host"`
	Port             string            `json:"port"`
	Username         string            `json:"username"`
	Password         string            `json:"password"`
	Database         string            `json:"database"`
	AdditionalParams map[string]string `json:"additional_params"`
}

// NewTestRequest strips identity fields from d.
func NewTestRequest(d connection.Draft) TestRequest {
	params := d.AdditionalParams
	if params == nil {
		params = map[string]string{}
	}
	return TestRequest{
		DBType:           d.DBType,
		Host:             d.Host,
		Port:             d.Port,
		Username:         d.Username,
		Password:         d.Password,
		Database:         d.Database,
		AdditionalParams: params,
	}
}

type generateRequest struct {
	ConnectionID string `json:"connection_id"`
	Prompt       string `json:"prompt"`
}

// Generated is the reply of POST /api/generate-sql.
type Generated struct {
	Reply
	SQL string `json:"sql"`
}

type runRequest struct {
	ConnectionID string `json:"connection_id"`
	Query        string `json:"query"`
}

// QueryResult is the reply of POST /api/run-query. Cells keep their JSON
// kind: nil for null, json.Number for numbers, string, bool, or a nested
// value.
type QueryResult struct {
	Reply
	Columns       []string `json:"columns"`
	Data          [][]any  `json:"data"`
	ExecutionTime float64  `json:"execution_time"`
	Visualization string   `json:"visualization,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Empty reports whether the result has no rows or no columns.
func (r *QueryResult) Empty() bool {
	return len(r.Columns) == 0 || len(r.Data) == 0
}

// SchemaInfo is the reply of GET /api/schema-info/{id}.
type SchemaInfo struct {
	Reply
	Schema schema.Snapshot `json:"schema"`
}

// CellString renders a decoded cell. ok is false for null, which callers
// show as a distinct marker.
func CellString(v any) (s string, ok bool) {
	switch c := v.(type) {
	case nil:
		return "", false
	case string:
		return c, true
	case json.Number:
		return c.String(), true
	case bool:
		return strconv.FormatBool(c), true
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64), true
	default:
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c), true
		}
		return string(data), true
	}
}
