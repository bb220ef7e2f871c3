package editor

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

const indent = "  "

// clause words start a new line; joinWords and the boolean connectives start
// an indented one.
var (
	clauseWords = map[string]bool{
		"SELECT": true, "FROM": true, "WHERE": true, "GROUP": true,
		"ORDER": true, "HAVING": true, "LIMIT": true, "UNION": true,
	}
	joinWords = map[string]bool{
		"JOIN": true, "LEFT": true, "RIGHT": true, "INNER": true,
		"OUTER": true, "FULL": true, "CROSS": true,
	}
	connectives = map[string]bool{"AND": true, "OR": true}
)

// Format uppercases SQL keywords and breaks the statement at its clauses,
// joins, AND/OR and top-level commas. String literals, quoted names and
// comments are kept as written. Text the lexer cannot read is returned
// unchanged.
func Format(sql string) string {
	l := lexers.Get("sql")
	if l == nil {
		return sql
	}
	iter, err := l.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var (
		b         strings.Builder
		depth     int
		space     bool   // input had whitespace before the next token
		brk       string // line break owed to the next token
		prev      string // previous keyword, uppercased
		inBetween bool
	)
	write := func(lineBreak, text string) {
		if lineBreak == "" {
			lineBreak = brk
		}
		switch {
		case b.Len() == 0:
		case lineBreak != "":
			b.WriteString(lineBreak)
		case space:
			b.WriteByte(' ')
		}
		b.WriteString(text)
		space, brk = false, ""
	}

	for _, tok := range iter.Tokens() {
		text := tok.Value
		if isBlank(tok) {
			space = space || text != ""
			continue
		}

		if tok.Type.InCategory(chroma.Comment) {
			write("", strings.TrimRight(text, "\n"))
			if strings.HasSuffix(text, "\n") {
				brk = "\n"
			}
			continue
		}

		upper := strings.ToUpper(text)
		word := tok.Type.InCategory(chroma.Keyword) ||
			(tok.Type.InCategory(chroma.Name) && (clauseWords[upper] || joinWords[upper] || connectives[upper]))
		if !word {
			write("", text)
			switch text {
			case "(":
				depth++
			case ")":
				if depth > 0 {
					depth--
				}
			case ",":
				if depth == 0 {
					brk = "\n" + indent
				}
			case ";":
				brk = "\n"
			}
			prev = ""
			continue
		}

		var lineBreak string
		switch {
		case clauseWords[upper]:
			lineBreak = "\n"
		case joinWords[upper] && !joinWords[prev]:
			lineBreak = "\n" + indent
		case connectives[upper]:
			if upper == "AND" && inBetween {
				inBetween = false
			} else {
				lineBreak = "\n" + indent
			}
		case upper == "BETWEEN":
			inBetween = true
		}
		write(lineBreak, upper)
		prev = upper
	}
	return strings.TrimSpace(b.String())
}

func isBlank(tok chroma.Token) bool {
	return (tok.Type == chroma.Text || tok.Type == chroma.TextWhitespace) && strings.TrimSpace(tok.Value) == ""
}
