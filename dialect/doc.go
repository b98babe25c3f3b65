// Package dialect names the database dialects tablegen understands.
//
// Two dialects can be introspected for code generation:
//
//   - MySQL: MySQL/MariaDB, catalog read from information_schema
//   - Postgres: PostgreSQL, catalog read from information_schema and pg_catalog
//
// SQLite is accepted only as a backend for the configuration store.
//
// # Dialect Constants
//
//	dialect.MySQL    = "mysql"
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite"
//
// Aliases such as "postgresql" or "pg" are folded by Normalize.
//
// # Sub-packages
//
//   - dialect/sql: opening connections with bounded pings, placeholder rebinding
package dialect
