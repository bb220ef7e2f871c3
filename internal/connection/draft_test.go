package connection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft_AdditionalParams(t *testing.T) {
	full := Fields{
		Name:      "wh",
		Warehouse: "COMPUTE_WH",
		Schema:    "PUBLIC",
		Driver:    "ODBC Driver 18 for SQL Server",
	}

	tests := []struct {
		dbType string
		want   map[string]string
	}{
		{"postgres", map[string]string{}},
		{"mysql", map[string]string{}},
		{"sqlite", map[string]string{}},
		{"", map[string]string{}},
		{"oracle", map[string]string{}},
		{"snowflake", map[string]string{"warehouse": "COMPUTE_WH", "schema": "PUBLIC"}},
		{"mssql", map[string]string{"driver": "ODBC Driver 18 for SQL Server"}},
	}

	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			f := full
			f.DBType = tt.dbType
			d := NewDraft(f)
			require.NotNil(t, d.AdditionalParams)
			assert.Equal(t, tt.want, d.AdditionalParams)
		})
	}
}

func TestNewDraft_MarshalsEmptyParamsAsObject(t *testing.T) {
	d := NewDraft(Fields{Name: "local", DBType: "sqlite", Database: "app.db"})
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"additional_params":{}`)
	assert.Contains(t, string(data), `"id":""`)
}

func TestDraftIsNew(t *testing.T) {
	assert.True(t, Draft{}.IsNew())
	assert.True(t, Draft{ID: "  "}.IsNew())
	assert.False(t, Draft{ID: "7"}.IsNew())
}

func TestVisible(t *testing.T) {
	assert.False(t, Visible(SQLite, FieldHost))
	assert.False(t, Visible(SQLite, FieldPassword))
	assert.True(t, Visible(SQLite, FieldDatabase))
	assert.True(t, Visible(Postgres, FieldHost))
	assert.False(t, Visible(Postgres, FieldWarehouse))
	assert.True(t, Visible(Snowflake, FieldWarehouse))
	assert.True(t, Visible(Snowflake, FieldSchema))
	assert.False(t, Visible(Snowflake, FieldDriver))
	assert.True(t, Visible(MSSQL, FieldDriver))
}

func TestDBTypeKnown(t *testing.T) {
	assert.True(t, Postgres.Known())
	assert.True(t, MSSQL.Known())
	assert.False(t, DBType("oracle").Known())
}

func TestDraftFromEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		host    string
		port    string
		db      string
		dbType  DBType
		wantNam string
	}{
		{
			name:    "host port database",
			entry:   Entry{ID: "3", Name: " Sales ", DBType: "postgres", Summary: "db.internal:5432/sales"},
			host:    "db.internal",
			port:    "5432",
			db:      "sales",
			dbType:  Postgres,
			wantNam: "Sales",
		},
		{
			name:    "host without port",
			entry:   Entry{ID: "4", Name: "wh", DBType: "mysql", Summary: "mysql.local/shop"},
			host:    "mysql.local",
			db:      "shop",
			dbType:  MySQL,
			wantNam: "wh",
		},
		{
			name:    "no slash leaves location blank",
			entry:   Entry{ID: "5", Name: "file", DBType: "sqlite", Summary: "ecommerce.db"},
			dbType:  SQLite,
			wantNam: "file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DraftFromEntry(tt.entry)
			assert.Equal(t, tt.entry.ID, d.ID)
			assert.Equal(t, tt.wantNam, d.Name)
			assert.Equal(t, tt.dbType, d.DBType)
			assert.Equal(t, tt.host, d.Host)
			assert.Equal(t, tt.port, d.Port)
			assert.Equal(t, tt.db, d.Database)
			assert.Empty(t, d.Username)
			assert.Empty(t, d.Password)
		})
	}
}

func TestRemoveAndFind(t *testing.T) {
	entries := []Entry{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	out, ok := Remove(entries, "2")
	require.True(t, ok)
	assert.Equal(t, []Entry{{ID: "1"}, {ID: "3"}}, out)
	assert.Len(t, entries, 3, "input slice must not be modified")

	_, ok = Remove(entries, "9")
	assert.False(t, ok)

	e, ok := Find(entries, "3")
	require.True(t, ok)
	assert.Equal(t, "3", e.ID)
}
