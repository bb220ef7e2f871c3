// Package connection holds the connection draft model shared by the
// connection manager and the API client.
package connection

import "strings"

// DBType identifies the database engine a connection points at.
type DBType string

const (
	Postgres  DBType = "postgres"
	MySQL     DBType = "mysql"
	SQLite    DBType = "sqlite"
	Snowflake DBType = "snowflake"
	MSSQL     DBType = "mssql"
)

// Types lists the db_type values offered by the connection form, in display
// order.
var Types = []DBType{Postgres, MySQL, SQLite, Snowflake, MSSQL}

// Known reports whether t is one of Types.
func (t DBType) Known() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Draft is an in-memory connection record built from form fields. An empty
// ID means the draft has not been persisted yet.
type Draft struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	DBType           DBType            `json:"db_type"`
	Host             string            `json:"host"`
	Port             string            `json:"port"`
	Username         string            `json:"username"`
	Password         string            `json:"password"`
	Database         string            `json:"database"`
	AdditionalParams map[string]string `json:"additional_params"`
}

// IsNew reports whether saving the draft creates a connection.
func (d Draft) IsNew() bool { return strings.TrimSpace(d.ID) == "" }

// Fields is the raw form state. Warehouse, Schema and Driver only reach the
// draft for the db_type that defines them.
type Fields struct {
	ID        string
	Name      string
	DBType    string
	Host      string
	Port      string
	Username  string
	Password  string
	Database  string
	Warehouse string
	Schema    string
	Driver    string
}

// NewDraft builds a draft from form fields. AdditionalParams is never nil and
// is empty for every db_type other than snowflake and mssql.
func NewDraft(f Fields) Draft {
	d := Draft{
		ID:               f.ID,
		Name:             f.Name,
		DBType:           DBType(strings.ToLower(strings.TrimSpace(f.DBType))),
		Host:             f.Host,
		Port:             f.Port,
		Username:         f.Username,
		Password:         f.Password,
		Database:         f.Database,
		AdditionalParams: map[string]string{},
	}
	switch d.DBType {
	case Snowflake:
		d.AdditionalParams["warehouse"] = f.Warehouse
		d.AdditionalParams["schema"] = f.Schema
	case MSSQL:
		d.AdditionalParams["driver"] = f.Driver
	}
	return d
}

// Fields converts the draft back to form state.
func (d Draft) Fields() Fields {
	return Fields{
		ID:        d.ID,
		Name:      d.Name,
		DBType:    string(d.DBType),
		Host:      d.Host,
		Port:      d.Port,
		Username:  d.Username,
		Password:  d.Password,
		Database:  d.Database,
		Warehouse: d.AdditionalParams["warehouse"],
		Schema:    d.AdditionalParams["schema"],
		Driver:    d.AdditionalParams["driver"],
	}
}

// Field names a connection form input.
type Field int

const (
	FieldName Field = iota
	FieldDBType
	FieldHost
	FieldPort
	FieldUsername
	FieldPassword
	FieldDatabase
	FieldWarehouse
	FieldSchema
	FieldDriver
	FieldCount
)

var fieldLabels = [...]string{
	FieldName:      "Name",
	FieldDBType:    "Type",
	FieldHost:      "Host",
	FieldPort:      "Port",
	FieldUsername:  "Username",
	FieldPassword:  "Password",
	FieldDatabase:  "Database",
	FieldWarehouse: "Warehouse",
	FieldSchema:    "Schema",
	FieldDriver:    "Driver",
}

func (f Field) String() string {
	if f < 0 || f >= FieldCount {
		return ""
	}
	return fieldLabels[f]
}

// Visible reports whether a form field is shown for the given db_type.
// SQLite only needs a database file path; snowflake adds warehouse and
// schema; mssql adds driver.
func Visible(t DBType, f Field) bool {
	switch f {
	case FieldHost, FieldPort, FieldUsername, FieldPassword:
		return t != SQLite
	case FieldWarehouse, FieldSchema:
		return t == Snowflake
	case FieldDriver:
		return t == MSSQL
	}
	return true
}
