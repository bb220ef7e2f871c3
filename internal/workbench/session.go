// Package workbench holds the state shared by the query workbench for one run
// of the program: the active connection, its schema cache and the request
// sequence tokens used to drop stale replies.
package workbench

import (
	"errors"
	"strings"
	"sync"

	"github.com/sadopc/querydesk/internal/schema"
)

var (
	// ErrNoConnection is returned when an operation needs an active
	// connection and none is selected.
	ErrNoConnection = errors.New("no database connection selected")
	// ErrEmptyQuery is returned when execute is asked to run a blank buffer.
	ErrEmptyQuery = errors.New("empty query")
	// ErrEmptyPrompt is returned when generate is asked for a blank prompt.
	ErrEmptyPrompt = errors.New("empty prompt")
)

// Op is a class of request. Each class has its own sequence counter, so a
// newer generate only invalidates older generates.
type Op int

const (
	OpGenerate Op = iota
	OpExecute
	OpSchema
	OpList
	OpTest
	OpSave
	OpDelete
	OpAuth
	opCount
)

func (o Op) String() string {
	switch o {
	case OpGenerate:
		return "generate"
	case OpExecute:
		return "execute"
	case OpSchema:
		return "schema"
	case OpList:
		return "list"
	case OpTest:
		return "test"
	case OpSave:
		return "save"
	case OpDelete:
		return "delete"
	case OpAuth:
		return "auth"
	}
	return "unknown"
}

// Session is created once per run and shared by reference.
type Session struct {
	mu         sync.Mutex
	activeID   string
	activeName string
	seq        [opCount]uint64

	Schemas *schema.Cache
}

// NewSession returns a session with no active connection.
func NewSession() *Session {
	return &Session{Schemas: schema.NewCache()}
}

// Select makes id the active connection.
func (s *Session) Select(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = id
	s.activeName = name
}

// Clear drops the active connection. Outstanding generate, execute and
// schema replies become stale.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	s.activeName = ""
	s.seq[OpGenerate]++
	s.seq[OpExecute]++
	s.seq[OpSchema]++
}

// Active returns the active connection.
func (s *Session) Active() (id, name string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID, s.activeName, s.activeID != ""
}

// HasConnection reports whether connection-dependent controls are enabled.
func (s *Session) HasConnection() bool {
	_, _, ok := s.Active()
	return ok
}

// Begin takes a new sequence token for op. Only the reply carrying the
// latest token is applied.
func (s *Session) Begin(op Op) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[op]++
	return s.seq[op]
}

// Current reports whether seq is still the latest token for op.
func (s *Session) Current(op Op, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[op] == seq
}

// PrepareGenerate checks the preconditions of a generate call and returns
// the connection id and trimmed prompt to send.
func (s *Session) PrepareGenerate(prompt string) (connectionID, trimmed string, err error) {
	trimmed = strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", "", ErrEmptyPrompt
	}
	id, _, ok := s.Active()
	if !ok {
		return "", "", ErrNoConnection
	}
	return id, trimmed, nil
}

// PrepareExecute checks the preconditions of an execute call and returns
// the connection id and trimmed query to send.
func (s *Session) PrepareExecute(buffer string) (connectionID, query string, err error) {
	id, _, ok := s.Active()
	if !ok {
		return "", "", ErrNoConnection
	}
	query = strings.TrimSpace(buffer)
	if query == "" {
		return "", "", ErrEmptyQuery
	}
	return id, query, nil
}
