// Package editor provides the SQL query buffer of the workbench and the SQL
// highlighter shared with the chat panel.
package editor

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/theme"
)

// Highlighter tokenises SQL text using chroma and renders it with lipgloss
// styles from the active theme.
type Highlighter struct {
	lexer chroma.Lexer
}

// lexerFor returns the chroma lexer alias for a connection's engine.
func lexerFor(t connection.DBType) string {
	switch t {
	case connection.Postgres:
		return "postgresql"
	case connection.MySQL:
		return "mysql"
	case connection.MSSQL:
		return "tsql"
	}
	return "sql"
}

// NewHighlighter creates a Highlighter for the SQL dialect of t. Unknown or
// empty types use the generic SQL lexer.
func NewHighlighter(t connection.DBType) *Highlighter {
	l := lexers.Get(lexerFor(t))
	if l == nil {
		l = lexers.Get("sql")
	}
	if l == nil {
		l = lexers.Fallback
	}
	return &Highlighter{lexer: chroma.Coalesce(l)}
}

// Highlight renders sql with the theme's token styles. Line breaks are
// written unstyled so every output line can be measured and clipped on its
// own.
func (h *Highlighter) Highlight(sql string, th *theme.Theme) string {
	if th == nil {
		return sql
	}

	iter, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) * 2)
	for _, tok := range iter.Tokens() {
		style, ok := styleFor(tok.Type, th)
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			switch {
			case part == "":
			case ok:
				b.WriteString(style.Render(part))
			default:
				b.WriteString(part)
			}
		}
	}
	return b.String()
}

// styleFor maps a chroma token type to a theme style. ok is false for
// tokens rendered as plain text.
func styleFor(tt chroma.TokenType, th *theme.Theme) (style lipgloss.Style, ok bool) {
	switch {
	// KeywordType sits inside the keyword category; SQL types get their own
	// colour.
	case tt == chroma.KeywordType:
		return th.SQLType, true
	case tt == chroma.NameFunction || tt == chroma.NameBuiltin:
		return th.SQLFunction, true
	case tt == chroma.Name:
		return th.SQLIdentifier, true
	case tt.InCategory(chroma.Keyword):
		return th.SQLKeyword, true
	case tt.InSubCategory(chroma.LiteralString):
		return th.SQLString, true
	case tt.InSubCategory(chroma.LiteralNumber):
		return th.SQLNumber, true
	case tt.InCategory(chroma.Comment):
		return th.SQLComment, true
	case tt == chroma.Operator || tt == chroma.OperatorWord:
		return th.SQLOperator, true
	}
	return lipgloss.Style{}, false
}
