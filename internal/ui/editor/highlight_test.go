package editor

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"

	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/theme"
)

// lipgloss renders styles as no-ops without a TTY, so these tests check that
// content and structure survive highlighting rather than ANSI codes.

func TestNewHighlighter(t *testing.T) {
	for _, dt := range append([]connection.DBType{""}, connection.Types...) {
		h := NewHighlighter(dt)
		if h == nil || h.lexer == nil {
			t.Fatalf("NewHighlighter(%q) has no lexer", dt)
		}
	}
}

func TestLexerFor(t *testing.T) {
	tests := []struct {
		dt   connection.DBType
		want string
	}{
		{connection.Postgres, "postgresql"},
		{connection.MySQL, "mysql"},
		{connection.MSSQL, "tsql"},
		{connection.SQLite, "sql"},
		{connection.Snowflake, "sql"},
		{"", "sql"},
	}
	for _, tt := range tests {
		if got := lexerFor(tt.dt); got != tt.want {
			t.Errorf("lexerFor(%q) = %q, want %q", tt.dt, got, tt.want)
		}
	}
}

func TestHighlight(t *testing.T) {
	h := NewHighlighter(connection.Postgres)
	sql := "SELECT id, name FROM users WHERE id = 1"
	result := h.Highlight(sql, theme.Default())

	for _, want := range []string{"SELECT", "FROM", "users", "id", "1"} {
		if !strings.Contains(result, want) {
			t.Errorf("highlighted output missing %q", want)
		}
	}
}

func TestHighlight_NilTheme(t *testing.T) {
	h := NewHighlighter("")
	sql := "SELECT 1"
	if got := h.Highlight(sql, nil); got != sql {
		t.Errorf("Highlight(sql, nil) = %q, want %q", got, sql)
	}
}

func TestHighlight_EmptyString(t *testing.T) {
	h := NewHighlighter("")
	if got := h.Highlight("", theme.Default()); got != "" {
		t.Errorf("Highlight(\"\") = %q, want empty", got)
	}
}

func TestHighlight_MultiLine(t *testing.T) {
	h := NewHighlighter(connection.MySQL)
	sql := "SELECT *\nFROM orders\n-- recent first\nORDER BY created_at DESC"
	result := h.Highlight(sql, theme.Default())

	if got, want := strings.Count(result, "\n"), strings.Count(sql, "\n"); got != want {
		t.Errorf("newline count = %d, want %d", got, want)
	}
	if !strings.Contains(result, "recent first") {
		t.Error("comment text lost")
	}
}

func TestHighlight_ContentPreservation(t *testing.T) {
	h := NewHighlighter(connection.Postgres)
	th := theme.Default()

	tests := []struct {
		name     string
		sql      string
		contains []string
	}{
		{"string literal", "SELECT * FROM users WHERE name = 'Alice'", []string{"Alice", "users", "name"}},
		{"numbers", "INSERT INTO t (a, b) VALUES (1, 2.5)", []string{"INSERT", "2.5", "a", "b"}},
		{"quoted identifier", `SELECT count(*) FROM "Order Items"`, []string{"count", "Order Items"}},
		{"block comment", "/* block\ncomment */ SELECT 1", []string{"block", "comment", "SELECT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := h.Highlight(tt.sql, th)
			for _, want := range tt.contains {
				if !strings.Contains(result, want) {
					t.Errorf("output missing %q", want)
				}
			}
		})
	}
}

func TestStyleFor(t *testing.T) {
	th := theme.Default()
	styled := []chroma.TokenType{
		chroma.Keyword, chroma.KeywordType, chroma.NameFunction, chroma.Name,
		chroma.LiteralStringSingle, chroma.LiteralNumberInteger, chroma.CommentSingle,
		chroma.Operator,
	}
	for _, tt := range styled {
		if _, ok := styleFor(tt, th); !ok {
			t.Errorf("styleFor(%v) should be styled", tt)
		}
	}
	if _, ok := styleFor(chroma.Punctuation, th); ok {
		t.Error("punctuation passes through unstyled")
	}
}

func TestStyleFor_Subcategories(t *testing.T) {
	th := theme.Default()
	for _, tt := range []chroma.TokenType{
		chroma.KeywordReserved, chroma.LiteralStringDouble, chroma.LiteralNumberFloat, chroma.CommentMultiline,
	} {
		if _, ok := styleFor(tt, th); !ok {
			t.Errorf("styleFor(%v) should be styled", tt)
		}
	}
	if _, ok := styleFor(chroma.Text, th); ok {
		t.Error("plain text passes through unstyled")
	}
}

func TestHighlight_KeepsLineCount(t *testing.T) {
	h := NewHighlighter("")
	sql := "/* first\nsecond */\nSELECT 1\n\nFROM t"
	got := h.Highlight(sql, theme.Default())
	if strings.Count(got, "\n") != strings.Count(sql, "\n") {
		t.Fatalf("line breaks changed:\n%q", got)
	}
}
