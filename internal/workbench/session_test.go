package workbench

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/querydesk/internal/api"
)

func TestSessionSelectAndClear(t *testing.T) {
	s := NewSession()
	assert.False(t, s.HasConnection())

	s.Select("3", "Sales DB")
	id, name, ok := s.Active()
	require.True(t, ok)
	assert.Equal(t, "3", id)
	assert.Equal(t, "Sales DB", name)

	seq := s.Begin(OpExecute)
	s.Clear()
	assert.False(t, s.HasConnection())
	assert.False(t, s.Current(OpExecute, seq), "clearing the connection must invalidate in-flight execute")
}

func TestSequenceTokens(t *testing.T) {
	s := NewSession()

	first := s.Begin(OpGenerate)
	second := s.Begin(OpGenerate)
	assert.False(t, s.Current(OpGenerate, first))
	assert.True(t, s.Current(OpGenerate, second))

	exec := s.Begin(OpExecute)
	s.Begin(OpGenerate)
	assert.True(t, s.Current(OpExecute, exec), "ops must not share counters")
}

func TestPrepareGenerate(t *testing.T) {
	s := NewSession()

	_, _, err := s.PrepareGenerate("   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
	_, ok := PreconditionNotice(err)
	assert.False(t, ok, "empty prompt is ignored silently")

	_, _, err = s.PrepareGenerate("top customers")
	assert.ErrorIs(t, err, ErrNoConnection)
	n, ok := PreconditionNotice(err)
	require.True(t, ok)
	assert.Equal(t, Notice{Level: LevelWarning, Text: MsgNoConnection}, n)

	s.Select("1", "shop")
	id, prompt, err := s.PrepareGenerate("  top customers ")
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	assert.Equal(t, "top customers", prompt)
}

func TestPrepareExecute(t *testing.T) {
	s := NewSession()

	_, _, err := s.PrepareExecute("SELECT 1")
	assert.ErrorIs(t, err, ErrNoConnection)

	s.Select("1", "shop")
	_, _, err = s.PrepareExecute(" \n\t ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
	n, _ := PreconditionNotice(err)
	assert.Equal(t, "Please enter a SQL query first", n.Text)

	id, q, err := s.PrepareExecute("\nSELECT * FROM t\n")
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	assert.Equal(t, "SELECT * FROM t", q)
}

func TestResolveGenerate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		out := ResolveGenerate(&api.Generated{Reply: api.Reply{Success: true}, SQL: "SELECT 1"}, nil)
		assert.True(t, out.IsCode)
		assert.Equal(t, "SELECT 1", out.SQL)
		assert.Equal(t, "SELECT 1", out.AIText)
		assert.Nil(t, out.Notice)
	})

	t.Run("business failure", func(t *testing.T) {
		out := ResolveGenerate(&api.Generated{Reply: api.Reply{Message: "Unknown table"}}, nil)
		assert.False(t, out.IsCode)
		assert.Empty(t, out.SQL)
		assert.Equal(t, "Error generating SQL: Unknown table", out.AIText)
		require.NotNil(t, out.Notice)
		assert.Equal(t, Notice{Level: LevelError, Text: "Error: Unknown table"}, *out.Notice)
	})

	t.Run("transport failure", func(t *testing.T) {
		out := ResolveGenerate(nil, &api.TransportError{Err: errors.New("refused")})
		assert.Equal(t, MsgGenerateFailed, out.AIText)
		require.NotNil(t, out.Notice)
		assert.Equal(t, "Error connecting to server", out.Notice.Text)
	})
}

func TestResolveExecute(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		reply := &api.QueryResult{Reply: api.Reply{Success: true}, Columns: []string{"a"}, Data: [][]any{{1}}, ExecutionTime: 1.234}
		out := ResolveExecute(reply, nil)
		assert.False(t, out.Failed())
		assert.Equal(t, "Query executed in 1.23 seconds", out.System)
		assert.Equal(t, Notice{Level: LevelSuccess, Text: "Query executed successfully in 1.23s"}, out.Notice)
	})

	t.Run("business failure", func(t *testing.T) {
		out := ResolveExecute(&api.QueryResult{Reply: api.Reply{Message: "syntax error"}}, nil)
		assert.True(t, out.Failed())
		assert.Equal(t, MsgExecuteFailed, out.ErrTitle)
		assert.Equal(t, "syntax error", out.ErrDetail)
		assert.Equal(t, "Error: syntax error", out.Notice.Text)
		assert.Empty(t, out.System)
	})

	t.Run("transport failure", func(t *testing.T) {
		out := ResolveExecute(nil, errors.New("eof"))
		assert.True(t, out.Failed())
		assert.Equal(t, MsgServerDown, out.ErrTitle)
		assert.Equal(t, MsgTryLater, out.ErrDetail)
		assert.Equal(t, LevelError, out.Notice.Level)
	})
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "0.00", FormatSeconds(0))
	assert.Equal(t, "0.13", FormatSeconds(0.125001))
	assert.Equal(t, "Executed in 2.50 seconds", ExecutedIn(2.5))
	assert.Equal(t, "1 row returned", RowsReturned(1))
	assert.Equal(t, "0 rows returned", RowsReturned(0))
	assert.Equal(t, "12 rows returned", RowsReturned(12))
	assert.Equal(t, "Connected to database: shop", ConnectedMessage("shop"))
}

func TestSchemaFailure(t *testing.T) {
	title, detail := SchemaFailure(&api.SchemaInfo{Reply: api.Reply{Message: "denied"}}, nil)
	assert.Equal(t, "Error loading schema", title)
	assert.Equal(t, "denied", detail)

	title, detail = SchemaFailure(nil, errors.New("x"))
	assert.Equal(t, MsgServerDown, title)
	assert.Equal(t, MsgTryLater, detail)
}
