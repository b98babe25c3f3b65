package dialect

import "strings"

// Dialect names.
const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Normalize folds common aliases into a dialect constant.
// Unknown names are returned lower-cased and trimmed.
func Normalize(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "mysql", "mariadb":
		return MySQL
	case "postgres", "postgresql", "pg", "pgx":
		return Postgres
	case "sqlite", "sqlite3":
		return SQLite
	default:
		return n
	}
}

// Introspectable reports whether the dialect can be used as a generation source.
func Introspectable(name string) bool {
	switch Normalize(name) {
	case MySQL, Postgres:
		return true
	}
	return false
}
