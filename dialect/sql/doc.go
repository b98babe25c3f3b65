// Package sql opens database connections for the supported dialects and
// classifies driver failures into tablegen's error taxonomy.
//
// The MySQL (github.com/go-sql-driver/mysql), PostgreSQL (github.com/lib/pq)
// and SQLite (modernc.org/sqlite) drivers are registered by this package.
//
// # Opening
//
//	db, err := sql.Open(ctx, dialect.Postgres, "postgres://...", 5*time.Second)
//	if err != nil {
//	    // *tablegen.ConnectionError or *tablegen.UnsupportedDialectError
//	}
//	defer db.Close()
//
// # Placeholders
//
// Queries in this module are written with "?" placeholders and rebound for
// PostgreSQL:
//
//	sql.Rebind(dialect.Postgres, "SELECT a FROM t WHERE b = ? AND c = ?")
//	// SELECT a FROM t WHERE b = $1 AND c = $2
package sql
