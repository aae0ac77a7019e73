package mssql

import (
	"fmt"
	"strings"

	"surveydash/internal/storage"
)

func msType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt:
		return "INT"
	case storage.TypeKey:
		return "NVARCHAR(64)"
	default:
		return "NVARCHAR(255)"
	}
}

// createTableSQL guards CREATE TABLE with OBJECT_ID since SQL Server has no
// CREATE TABLE IF NOT EXISTS. The table name is validated by the caller.
func createTableSQL(table string, cols []storage.Column) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("mssql ddl: at least one column is required")
	}
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		null := " NOT NULL"
		if c.Nullable {
			null = " NULL"
		}
		defs = append(defs, msIdent(c.Name)+" "+msType(c.Type)+null)
	}
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);",
		table, msFQN(table), strings.Join(defs, ",\n  "),
	), nil
}
