package sqlite

import (
	"fmt"
	"strings"

	"surveydash/internal/storage"
)

func sqlType(t storage.ColumnType) string {
	if t == storage.TypeInt {
		return "INTEGER"
	}
	return "TEXT"
}

// createTableSQL renders CREATE TABLE IF NOT EXISTS with SQLite affinities.
func createTableSQL(table string, cols []storage.Column) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		def := quoteIdent(c.Name) + " " + sqlType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoteFQN(table), strings.Join(defs, ",\n  ")), nil
}
