package introspect

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/dialect"
	dsql "github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/schema"
)

// TableInfo is an entry of the table listing.
type TableInfo struct {
	Name    string
	Comment string
}

// Inspector reads catalog metadata of one database.
type Inspector interface {
	// Dialect returns the normalized dialect tag.
	Dialect() string
	// InspectTable returns the metadata of the named table in the current schema.
	InspectTable(ctx context.Context, name string) (*schema.Table, error)
	// Tables lists the base tables of the current schema ordered by name.
	Tables(ctx context.Context) ([]TableInfo, error)
}

// Option configures an Inspector.
type Option func(*options)

type options struct {
	schema  string
	timeout time.Duration
	log     logrus.FieldLogger
}

// WithSchema inspects the given schema (MySQL database) instead of the connection's current one.
func WithSchema(name string) Option {
	return func(o *options) { o.schema = name }
}

// WithTimeout bounds every catalog query.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns the Inspector for the dialect.
func New(name string, db *sql.DB, opts ...Option) (Inspector, error) {
	o := options{timeout: dsql.DefaultTimeout, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	base := inspector{db: db, opts: o}
	switch d := dialect.Normalize(name); d {
	case dialect.MySQL:
		base.dialect = d
		return &MySQL{inspector: base}, nil
	case dialect.Postgres:
		base.dialect = d
		return &Postgres{inspector: base}, nil
	default:
		return nil, tablegen.NewUnsupportedDialectError(name)
	}
}

// Introspect opens a connection, inspects one table and closes the connection.
func Introspect(ctx context.Context, name, dsn, table string, opts ...Option) (*schema.Table, error) {
	if !dialect.Introspectable(name) {
		return nil, tablegen.NewUnsupportedDialectError(name)
	}
	o := options{timeout: dsql.DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	db, err := dsql.Open(ctx, name, dsn, o.timeout)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	insp, err := New(name, db, opts...)
	if err != nil {
		return nil, err
	}
	return insp.InspectTable(ctx, table)
}

// inspector holds the state shared by the dialect implementations.
type inspector struct {
	dialect string
	db      *sql.DB
	opts    options
}

// Dialect implements Inspector.
func (i *inspector) Dialect() string { return i.dialect }

// query runs a catalog query under the configured timeout and hands the rows to scan.
func (i *inspector) query(ctx context.Context, table, op, query string, scan func(*sql.Rows) error, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, i.opts.timeout)
	defer cancel()
	fail := func(err error) error {
		if cerr := ctx.Err(); cerr != nil && !errors.Is(err, cerr) {
			err = errors.Join(cerr, err)
		}
		return dsql.Classify(i.dialect, table, op, err)
	}
	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fail(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fail(err)
		}
	}
	if err := rows.Err(); err != nil {
		return fail(err)
	}
	return nil
}

// finish fills the derived parts of a freshly scanned table.
func (i *inspector) finish(t *schema.Table) *schema.Table {
	t.Dialect = i.dialect
	for _, c := range t.Columns {
		c.Policy = schema.DefaultPolicy(c)
	}
	i.opts.log.WithFields(logrus.Fields{
		"dialect": i.dialect,
		"table":   t.Name,
		"columns": len(t.Columns),
	}).Debug("inspected table")
	return t
}
