package editor

import (
	"regexp"
	"strings"
)

// Lint messages.
const (
	LintParens       = "Unbalanced parentheses"
	LintSingleQuotes = "Unclosed single quotes"
	LintDoubleQuotes = "Unclosed double quotes"
	LintSelectFrom   = "SELECT statement missing FROM clause"
	LintJoinOn       = "JOIN statement missing ON or USING clause"
)

var (
	reSelect  = regexp.MustCompile(`(?i)\bSELECT\b`)
	reFrom    = regexp.MustCompile(`(?i)\bFROM\b`)
	reSelect1 = regexp.MustCompile(`(?i)\bSELECT\s+1\b`)
	reJoin    = regexp.MustCompile(`(?i)\bJOIN\b`)
	reOnUsing = regexp.MustCompile(`(?i)\b(ON|USING)\b`)
)

// Lint runs a few textual checks over sql and returns the problems found in
// a fixed order.
func Lint(sql string) []string {
	if strings.TrimSpace(sql) == "" {
		return nil
	}

	var problems []string
	if strings.Count(sql, "(") != strings.Count(sql, ")") {
		problems = append(problems, LintParens)
	}
	if strings.Count(sql, "'")%2 != 0 {
		problems = append(problems, LintSingleQuotes)
	}
	if strings.Count(sql, `"`)%2 != 0 {
		problems = append(problems, LintDoubleQuotes)
	}
	if reSelect.MatchString(sql) && !reFrom.MatchString(sql) && !reSelect1.MatchString(sql) {
		problems = append(problems, LintSelectFrom)
	}
	if reJoin.MatchString(sql) && !reOnUsing.MatchString(sql) {
		problems = append(problems, LintJoinOn)
	}
	return problems
}
