package postgres

import (
	"fmt"
	"strings"

	"surveydash/internal/storage"
)

func pgType(t storage.ColumnType) string {
	switch t {
	case storage.TypeInt:
		return "integer"
	case storage.TypeKey:
		return "varchar(64)"
	default:
		return "text"
	}
}

// createTableSQL renders a deterministic CREATE TABLE IF NOT EXISTS.
func createTableSQL(table string, cols []storage.Column) (string, error) {
	if len(cols) == 0 {
		return "", fmt.Errorf("postgres ddl: at least one column is required")
	}
	defs := make([]string, 0, len(cols))
	for _, c := range cols {
		var sb strings.Builder
		sb.WriteString(pgIdent(c.Name))
		sb.WriteByte(' ')
		sb.WriteString(pgType(c.Type))
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		defs = append(defs, sb.String())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", pgFQN(table), strings.Join(defs, ",\n  ")), nil
}
