// Package all registers every built-in storage backend. Import it for side
// effects from the binary's wiring layer:
//
//	import _ "surveydash/internal/storage/all"
//
// Kinds made available: "sqlite", "postgres", "mssql", "mysql".
package all

import (
	_ "surveydash/internal/storage/mssql"
	_ "surveydash/internal/storage/mysql"
	_ "surveydash/internal/storage/postgres"
	_ "surveydash/internal/storage/sqlite"
)
