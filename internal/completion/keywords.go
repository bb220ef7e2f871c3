package completion

import "github.com/sadopc/querydesk/internal/connection"

// CommonKeywords are offered for every engine. Multi-word entries complete
// as a unit.
var CommonKeywords = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER",
	"FULL", "CROSS", "ON", "USING", "GROUP BY", "ORDER BY", "HAVING",
	"LIMIT", "OFFSET", "UNION", "UNION ALL", "INSERT INTO", "VALUES",
	"UPDATE", "SET", "DELETE FROM", "CREATE TABLE", "ALTER TABLE",
	"DROP TABLE", "TRUNCATE TABLE", "CREATE INDEX", "DROP INDEX",
	"CREATE VIEW", "DROP VIEW", "AND", "OR", "NOT", "IN", "EXISTS",
	"BETWEEN", "LIKE", "IS NULL", "IS NOT NULL", "ASC", "DESC", "DISTINCT",
	"WITH", "AS", "CASE", "WHEN", "THEN", "ELSE", "END", "NULL", "ALL",
	"ANY", "INTERSECT", "EXCEPT", "EXPLAIN", "PRIMARY KEY", "FOREIGN KEY",
	"REFERENCES", "DEFAULT",
}

// CommonFunctions are SQL functions offered for every engine.
var CommonFunctions = []string{
	"COUNT", "SUM", "AVG", "MIN", "MAX", "UPPER", "LOWER", "TRIM", "SUBSTR",
	"COALESCE", "NULLIF", "CAST", "LENGTH", "REPLACE", "CONCAT", "ABS",
	"ROUND", "FLOOR", "CEIL", "CURRENT_DATE", "CURRENT_TIMESTAMP",
	"ROW_NUMBER", "RANK", "DENSE_RANK", "LAG", "LEAD",
}

var dialectKeywords = map[connection.DBType][]string{
	connection.Postgres: {
		"ILIKE", "RETURNING", "LATERAL", "SERIAL", "BIGSERIAL", "MATERIALIZED",
		"SCHEMA", "SIMILAR TO", "DISTINCT ON",
	},
	connection.MySQL: {
		"AUTO_INCREMENT", "ENGINE", "SHOW TABLES", "DESCRIBE", "USE",
		"UNSIGNED", "REGEXP", "STRAIGHT_JOIN",
	},
	connection.SQLite: {
		"PRAGMA", "AUTOINCREMENT", "GLOB", "ATTACH", "WITHOUT ROWID",
	},
	connection.Snowflake: {
		"QUALIFY", "ILIKE", "FLATTEN", "LATERAL", "WAREHOUSE", "SAMPLE",
		"VARIANT",
	},
	connection.MSSQL: {
		"TOP", "NOLOCK", "OUTPUT", "IDENTITY", "NVARCHAR", "CROSS APPLY",
		"OUTER APPLY",
	},
}

var dialectFunctions = map[connection.DBType][]string{
	connection.Postgres:  {"NOW", "DATE_TRUNC", "TO_CHAR", "STRING_AGG", "ARRAY_AGG", "JSON_AGG"},
	connection.MySQL:     {"NOW", "DATE_FORMAT", "GROUP_CONCAT", "IFNULL", "STR_TO_DATE"},
	connection.SQLite:    {"DATETIME", "STRFTIME", "IFNULL", "GROUP_CONCAT"},
	connection.Snowflake: {"DATE_TRUNC", "TO_CHAR", "LISTAGG", "IFF", "PARSE_JSON"},
	connection.MSSQL:     {"GETDATE", "ISNULL", "DATEADD", "DATEDIFF", "STRING_AGG", "LEN"},
}

// KeywordsFor returns CommonKeywords combined with the engine's own keywords.
func KeywordsFor(t connection.DBType) []string {
	return merge(CommonKeywords, dialectKeywords[t])
}

// FunctionsFor returns CommonFunctions combined with the engine's own
// functions.
func FunctionsFor(t connection.DBType) []string {
	return merge(CommonFunctions, dialectFunctions[t])
}

func merge(common, extra []string) []string {
	seen := make(map[string]bool, len(common)+len(extra))
	out := make([]string, 0, len(common)+len(extra))
	for _, list := range [][]string{common, extra} {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
