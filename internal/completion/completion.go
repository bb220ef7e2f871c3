// Package completion ranks SQL keywords and schema objects for the editor's
// autocomplete popup.
package completion

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/schema"
)

// MaxItems caps the number of suggestions returned.
const MaxItems = 50

// Kind classifies a suggestion.
type Kind int

const (
	KindKeyword Kind = iota
	KindTable
	KindColumn
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindTable:
		return "table"
	case KindColumn:
		return "column"
	case KindFunction:
		return "function"
	}
	return "unknown"
}

// Item is a single suggestion.
type Item struct {
	Label  string
	Kind   Kind
	Detail string
}

// Engine provides suggestions based on the schema snapshot and the SQL
// dialect of the active connection.
type Engine struct {
	mu        sync.RWMutex
	tables    map[string][]schema.Column // "table" and "database.table" -> columns
	order     []string                   // unqualified table names in server order
	databases []string
	keywords  []string
	functions []string
}

// NewEngine creates a completion engine with the keyword and function lists
// of the given engine.
func NewEngine(t connection.DBType) *Engine {
	e := &Engine{tables: make(map[string][]schema.Column)}
	e.SetDialect(t)
	return e
}

// SetDialect swaps the keyword and function lists.
func (e *Engine) SetDialect(t connection.DBType) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.keywords = KeywordsFor(t)
	e.functions = FunctionsFor(t)
}

// UpdateSchema replaces the schema objects offered for completion.
func (e *Engine) UpdateSchema(snap schema.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tables = make(map[string][]schema.Column)
	e.order = nil
	e.databases = nil

	for _, db := range snap {
		e.databases = append(e.databases, db.Name)
		for _, t := range db.Tables {
			e.tables[db.Name+"."+t.Name] = t.Columns
			if _, dup := e.tables[t.Name]; !dup {
				e.tables[t.Name] = t.Columns
				e.order = append(e.order, t.Name)
			}
		}
	}
}

// Complete returns suggestions for text with the cursor at byte offset
// cursorPos.
func (e *Engine) Complete(text string, cursorPos int) []Item {
	if cursorPos > len(text) {
		cursorPos = len(text)
	}
	if cursorPos < 0 {
		cursorPos = 0
	}
	before := text[:cursorPos]

	if insideStringLiteral(before) {
		return nil
	}

	prefix, dotContext := extractPrefix(before)
	if dotContext != "" {
		table := dotContext
		if name, ok := parseAliases(text)[strings.ToLower(dotContext)]; ok {
			table = name
		}
		return rank(prefix, e.columnsForTable(table))
	}

	var items []Item
	switch detectContext(before, prefix) {
	case contextFrom:
		items = e.tableCompletions()
	case contextColumn:
		items = append(items, e.columnsFromTables(parseFromTables(text))...)
		items = append(items, e.tableCompletions()...)
		items = append(items, e.functionCompletions()...)
	default:
		items = append(items, e.keywordCompletions()...)
		items = append(items, e.tableCompletions()...)
		items = append(items, e.functionCompletions()...)
	}
	return rank(prefix, items)
}

// contextKind indicates the kind of SQL context before the cursor.
type contextKind int

const (
	contextGeneral contextKind = iota
	contextFrom
	contextColumn
)

// fromKeywords trigger table name completions.
var fromKeywords = map[string]bool{
	"FROM": true, "JOIN": true, "INTO": true, "UPDATE": true, "TABLE": true,
}

// columnKeywords trigger column name completions.
var columnKeywords = map[string]bool{
	"SELECT": true, "WHERE": true, "SET": true, "ON": true,
	"AND": true, "OR": true, "HAVING": true, "BY": true,
}

// detectContext looks at the token before the prefix.
func detectContext(before, prefix string) contextKind {
	ctxText := strings.TrimSpace(before[:len(before)-len(prefix)])
	tokens := strings.Fields(ctxText)
	if len(tokens) == 0 {
		return contextGeneral
	}

	last := strings.ToUpper(tokens[len(tokens)-1])
	switch {
	case fromKeywords[last]:
		return contextFrom
	case columnKeywords[last]:
		return contextColumn
	}

	// Inside a comma separated list the clause keyword decides.
	if strings.HasSuffix(last, ",") {
		for i := len(tokens) - 1; i >= 0; i-- {
			tok := strings.ToUpper(strings.TrimRight(tokens[i], ","))
			if fromKeywords[tok] {
				return contextFrom
			}
			if columnKeywords[tok] {
				return contextColumn
			}
		}
	}
	return contextGeneral
}

// extractPrefix returns the current word being typed and any dot-context.
// For "users.na", it returns prefix="na", dotContext="users".
func extractPrefix(before string) (prefix, dotContext string) {
	runes := []rune(before)
	i := len(runes) - 1
	for i >= 0 && !isWordBreak(runes[i]) {
		i--
	}
	word := string(runes[i+1:])

	if dotIdx := strings.LastIndex(word, "."); dotIdx >= 0 {
		return word[dotIdx+1:], word[:dotIdx]
	}
	return word, ""
}

// Prefix returns the part of the word before the cursor that a suggestion
// replaces: the text after the last dot.
func Prefix(before string) string {
	p, _ := extractPrefix(before)
	return p
}

// isWordBreak reports whether r ends an SQL identifier.
func isWordBreak(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.')
}

// insideStringLiteral reports whether before ends inside a '...' literal.
func insideStringLiteral(before string) bool {
	return strings.Count(before, "'")%2 != 0
}

var (
	fromClauseRe = regexp.MustCompile(`(?i)\bFROM\s+([\w."]+(?:\s+(?:AS\s+)?\w+)?(?:\s*,\s*[\w."]+(?:\s+(?:AS\s+)?\w+)?)*)`)
	joinClauseRe = regexp.MustCompile(`(?i)\bJOIN\s+([\w."]+)(?:\s+(?:AS\s+)?(\w+))?`)
)

// reserved words that may follow a table name and must not be taken for an
// alias.
var notAlias = map[string]bool{
	"WHERE": true, "JOIN": true, "LEFT": true, "RIGHT": true, "INNER": true,
	"OUTER": true, "FULL": true, "CROSS": true, "ON": true, "USING": true,
	"GROUP": true, "ORDER": true, "LIMIT": true, "HAVING": true, "UNION": true,
}

// tableRef is a table named in a FROM or JOIN clause.
type tableRef struct {
	name  string
	alias string
}

func parseTableRefs(text string) []tableRef {
	var refs []tableRef
	add := func(name, alias string) {
		name = strings.Trim(name, `"`)
		if notAlias[strings.ToUpper(alias)] {
			alias = ""
		}
		refs = append(refs, tableRef{name: name, alias: alias})
	}

	for _, match := range fromClauseRe.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(match[1], ",") {
			tokens := strings.Fields(part)
			switch {
			case len(tokens) == 0:
			case len(tokens) >= 3 && strings.EqualFold(tokens[1], "AS"):
				add(tokens[0], tokens[2])
			case len(tokens) >= 2:
				add(tokens[0], tokens[1])
			default:
				add(tokens[0], "")
			}
		}
	}
	for _, match := range joinClauseRe.FindAllStringSubmatch(text, -1) {
		add(match[1], match[2])
	}
	return refs
}

// parseFromTables extracts the distinct table names of FROM and JOIN
// clauses.
func parseFromTables(text string) []string {
	seen := map[string]bool{}
	var tables []string
	for _, r := range parseTableRefs(text) {
		if !seen[r.name] {
			seen[r.name] = true
			tables = append(tables, r.name)
		}
	}
	return tables
}

// parseAliases maps lowercased aliases to their table names.
func parseAliases(text string) map[string]string {
	out := map[string]string{}
	for _, r := range parseTableRefs(text) {
		if r.alias != "" {
			out[strings.ToLower(r.alias)] = r.name
		}
	}
	return out
}

// columnsForTable looks up columns for a table name, qualified or not.
func (e *Engine) columnsForTable(name string) []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if cols, ok := e.tables[name]; ok {
		return columnsToItems(name, cols)
	}
	for _, db := range e.databases {
		if cols, ok := e.tables[db+"."+name]; ok {
			return columnsToItems(name, cols)
		}
	}
	return nil
}

func (e *Engine) columnsFromTables(names []string) []Item {
	var items []Item
	for _, t := range names {
		items = append(items, e.columnsForTable(t)...)
	}
	return items
}

func columnsToItems(table string, cols []schema.Column) []Item {
	items := make([]Item, 0, len(cols))
	for _, c := range cols {
		detail := c.Type
		if c.PrimaryKey {
			detail += " PK"
		}
		if c.IsFK() {
			detail += " FK"
		}
		if !c.Nullable {
			detail += " NOT NULL"
		}
		items = append(items, Item{Label: c.Name, Kind: KindColumn, Detail: table + " - " + strings.TrimSpace(detail)})
	}
	return items
}

func (e *Engine) tableCompletions() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]Item, 0, len(e.order))
	for _, name := range e.order {
		items = append(items, Item{Label: name, Kind: KindTable, Detail: "table"})
	}
	return items
}

func (e *Engine) keywordCompletions() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]Item, 0, len(e.keywords))
	for _, kw := range e.keywords {
		items = append(items, Item{Label: kw, Kind: KindKeyword, Detail: "keyword"})
	}
	return items
}

func (e *Engine) functionCompletions() []Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]Item, 0, len(e.functions))
	for _, fn := range e.functions {
		items = append(items, Item{Label: fn, Kind: KindFunction, Detail: "function"})
	}
	return items
}

// lowerLabels implements fuzzy.Source over lowercased item labels.
type lowerLabels []string

func (l lowerLabels) String(i int) string { return l[i] }
func (l lowerLabels) Len() int            { return len(l) }

// rank filters items by case-insensitive fuzzy match against prefix, best
// first, and caps the result at MaxItems. An empty prefix keeps the input
// order.
func rank(prefix string, items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	if prefix == "" {
		if len(items) > MaxItems {
			items = items[:MaxItems]
		}
		return items
	}

	labels := make(lowerLabels, len(items))
	for i, item := range items {
		labels[i] = strings.ToLower(item.Label)
	}
	matches := fuzzy.FindFrom(strings.ToLower(prefix), labels)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	result := make([]Item, 0, len(matches))
	for _, m := range matches {
		result = append(result, items[m.Index])
	}
	if len(result) > MaxItems {
		result = result[:MaxItems]
	}
	return result
}
