package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/dialect"
)

// DefaultTimeout bounds connection pings and catalog queries when the caller gives none.
const DefaultTimeout = 10 * time.Second

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// IsValidIdentifier checks if the string is a valid SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// DriverName returns the database/sql driver name registered for the dialect.
func DriverName(name string) (string, error) {
	switch d := dialect.Normalize(name); d {
	case dialect.MySQL:
		return "mysql", nil
	case dialect.Postgres:
		return "postgres", nil
	case dialect.SQLite:
		return "sqlite", nil
	default:
		return "", tablegen.NewUnsupportedDialectError(name)
	}
}

// Open opens a database handle for the dialect and verifies it with a ping
// bounded by timeout. A zero timeout uses DefaultTimeout.
func Open(ctx context.Context, name, dsn string, timeout time.Duration) (*sql.DB, error) {
	drv, err := DriverName(name)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(drv, dsn)
	if err != nil {
		return nil, tablegen.NewConnectionError(dialect.Normalize(name), "", "open", err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, tablegen.NewConnectionError(dialect.Normalize(name), "", "ping", err)
	}
	return db, nil
}

// Rebind rewrites "?" placeholders into the dialect's bind syntax.
// Question marks inside single-quoted literals are left untouched.
func Rebind(name, query string) string {
	if dialect.Normalize(name) != dialect.Postgres || !strings.Contains(query, "?") {
		return query
	}
	var (
		b      strings.Builder
		n      int
		quoted bool
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		switch {
		case r == '\'':
			quoted = !quoted
			b.WriteRune(r)
		case r == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsTransient reports whether err is a transport-level failure: timeouts,
// broken connections, authentication and unknown-database errors.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1040, // too many connections
			1044, // access denied for database
			1045, // access denied for user
			1049, // unknown database
			1053, // server shutdown in progress
			1205, // lock wait timeout
			2006, // server has gone away
			2013, // lost connection during query
			3024: // max_execution_time exceeded
			return true
		}
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", // connection exception
			"28", // invalid authorization
			"53", // insufficient resources
			"57": // operator intervention (query_canceled, admin_shutdown)
			return true
		}
		return pqErr.Code == "3D000" // invalid_catalog_name
	}
	return false
}

// Classify wraps a failed catalog operation. Transport failures become
// *tablegen.ConnectionError; everything else is wrapped with context.
func Classify(name, table, op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return tablegen.NewConnectionError(dialect.Normalize(name), table, op, err)
	}
	if table != "" {
		return &queryError{op: op, table: table, err: err}
	}
	return &queryError{op: op, err: err}
}

type queryError struct {
	op    string
	table string
	err   error
}

func (e *queryError) Error() string {
	if e.table != "" {
		return "tablegen: " + e.op + " " + e.table + ": " + e.err.Error()
	}
	return "tablegen: " + e.op + ": " + e.err.Error()
}

func (e *queryError) Unwrap() error { return e.err }
