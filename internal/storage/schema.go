package storage

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"surveydash/internal/survey"
)

// ColumnType is a portable column type each dialect maps to its own DDL.
type ColumnType int

const (
	// TypeInt is a 32-bit integer.
	TypeInt ColumnType = iota
	// TypeKey is short text: identifiers and category names.
	TypeKey
	// TypeText is free text up to 255 characters.
	TypeText
)

// Column describes one destination column.
type Column struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// Schema is the snapshot table layout. Every export carries a load_id so
// several snapshots can share one table; row_num is the 1-based position of
// the respondent in the loaded dataset.
var Schema = []Column{
	{Name: "load_id", Type: TypeKey},
	{Name: "row_num", Type: TypeInt},
	{Name: survey.FieldAge, Type: TypeInt, Nullable: true},
	{Name: survey.FieldGender, Type: TypeKey},
	{Name: survey.FieldCountry, Type: TypeText},
	{Name: survey.FieldTreatment, Type: TypeText},
	{Name: survey.FieldRemoteWork, Type: TypeText},
	{Name: survey.FieldTechCompany, Type: TypeText},
	{Name: survey.FieldWorkInterfere, Type: TypeText},
}

// Columns returns the Schema column names in order.
func Columns() []string {
	out := make([]string, len(Schema))
	for i, c := range Schema {
		out[i] = c.Name
	}
	return out
}

// Row maps one response to Schema order. Absent age becomes NULL.
func Row(loadID string, rowNum int, r survey.Response) []any {
	var age any
	if a, ok := r.AgeValue(); ok {
		age = a
	}
	return []any{
		loadID,
		rowNum,
		age,
		string(r.Gender),
		r.Country,
		r.Treatment,
		r.RemoteWork,
		r.TechCompany,
		r.WorkInterfere,
	}
}

// Rows maps every response with Row, numbering from 1.
func Rows(loadID string, responses []survey.Response) [][]any {
	out := make([][]any, len(responses))
	for i, r := range responses {
		out[i] = Row(loadID, i+1, r)
	}
	return out
}

// DDLFunc renders a CREATE TABLE statement for table in one dialect. It
// must be idempotent (IF NOT EXISTS or an equivalent guard).
type DDLFunc func(table string, cols []Column) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLFunc{}
)

// RegisterDDL registers (or replaces) the DDL builder for kind.
func RegisterDDL(kind string, fn DDLFunc) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTable reports whether name is a plain or schema-qualified identifier.
func ValidTable(name string) bool { return tableName.MatchString(name) }

// CreateTableSQL renders the snapshot table DDL for kind.
func CreateTableSQL(kind, table string) (string, error) {
	if !ValidTable(table) {
		return "", fmt.Errorf("storage: invalid table name %q", table)
	}
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no DDL registered for storage.kind=%q", kind)
	}
	return fn(table, Schema)
}

// EnsureTable creates the snapshot table through repo if it does not exist.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string) error {
	ddl, err := CreateTableSQL(kind, table)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}
