package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is the schema of one connection as reported by the service:
// databases, their tables and each table's columns, in server order.
type Snapshot []Database

// Database is a named group of tables.
type Database struct {
	Name   string
	Tables []Table
}

// Table represents a database table.
type Table struct {
	Name    string
	Columns []Column
}

// Column represents a table column. ForeignKey holds the referenced
// "table.column" target, or "" when the column references nothing.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
	ForeignKey string
	Nullable   bool
	Default    string
}

// IsFK reports whether the column references another table.
func (c Column) IsFK() bool { return c.ForeignKey != "" }

// NullLabel is the nullability badge text.
func (c Column) NullLabel() string {
	if c.Nullable {
		return "NULL"
	}
	return "NOT NULL"
}

// TableNames returns every table name across all databases.
func (s Snapshot) TableNames() []string {
	var out []string
	for _, db := range s {
		for _, t := range db.Tables {
			out = append(out, t.Name)
		}
	}
	return out
}

// ColumnNames returns every distinct column name across all tables, in first
// seen order.
func (s Snapshot) ColumnNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, db := range s {
		for _, t := range db.Tables {
			for _, c := range t.Columns {
				if !seen[c.Name] {
					seen[c.Name] = true
					out = append(out, c.Name)
				}
			}
		}
	}
	return out
}

// FindTable returns the first table with the given name.
func (s Snapshot) FindTable(name string) (Table, bool) {
	for _, db := range s {
		for _, t := range db.Tables {
			if t.Name == name {
				return t, true
			}
		}
	}
	return Table{}, false
}

// UnmarshalJSON decodes {db: {table: {columns: {col: {...}}}}} keeping the
// key order of every level.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	var out Snapshot
	err := eachKey(dec, func(dbName string) error {
		db := Database{Name: dbName}
		err := eachKey(dec, func(tableName string) error {
			t, err := decodeTable(dec, tableName)
			if err != nil {
				return err
			}
			db.Tables = append(db.Tables, t)
			return nil
		})
		if err != nil {
			return fmt.Errorf("database %q: %w", dbName, err)
		}
		out = append(out, db)
		return nil
	})
	if err != nil {
		return fmt.Errorf("decoding schema: %w", err)
	}
	*s = out
	return nil
}

func decodeTable(dec *json.Decoder, name string) (Table, error) {
	t := Table{Name: name}
	err := eachKey(dec, func(key string) error {
		if key != "columns" {
			var skip json.RawMessage
			return dec.Decode(&skip)
		}
		return eachKey(dec, func(colName string) error {
			var raw struct {
				Type       string  `json:"type"`
				PrimaryKey bool    `json:"primary_key"`
				Nullable   bool    `json:"nullable"`
				Default    *string `json:"default"`
				ForeignKey any     `json:"foreign_key"`
			}
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("column %q: %w", colName, err)
			}
			c := Column{
				Name:       colName,
				Type:       raw.Type,
				PrimaryKey: raw.PrimaryKey,
				Nullable:   raw.Nullable,
				ForeignKey: foreignKeyTarget(raw.ForeignKey),
			}
			if raw.Default != nil {
				c.Default = *raw.Default
			}
			t.Columns = append(t.Columns, c)
			return nil
		})
	})
	if err != nil {
		return Table{}, fmt.Errorf("table %q: %w", name, err)
	}
	return t, nil
}

// foreignKeyTarget accepts the target string, or a bare true for services
// that only flag the column.
func foreignKeyTarget(v any) string {
	switch fk := v.(type) {
	case string:
		return fk
	case bool:
		if fk {
			return "?"
		}
	}
	return ""
}

// eachKey reads one JSON object from dec and calls fn for each key; fn must
// consume the key's value. A null value is treated as an empty object.
func eachKey(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
