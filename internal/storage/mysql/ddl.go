package mysql

import (
	"fmt"
	"strings"

	"surveydash/internal/storage"
)

func myType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt:
		return "INT"
	case storage.TypeKey:
		return "VARCHAR(64)"
	default:
		return "VARCHAR(255)"
	}
}

func createTableSQL(table string, cols []storage.Column) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("mysql ddl: at least one column is required")
	}
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		null := " NOT NULL"
		if c.Nullable {
			null = " NULL"
		}
		defs = append(defs, myIdent(c.Name)+" "+myType(c.Type)+null)
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n) DEFAULT CHARSET=utf8mb4;",
		myFQN(table), strings.Join(defs, ",\n  "),
	), nil
}
