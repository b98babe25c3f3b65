// Package store persists table generation configs. A config is keyed by
// table name and written as a whole: concurrent saves of the same table are
// last-write-wins, and Locked serializes read-modify-write cycles per table.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/dialect"
	dsql "github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/schema"
)

// Store persists table configs. Get returns an error matching
// tablegen.ErrConfigNotFound for tables without a stored config.
type Store interface {
	Get(ctx context.Context, table string) (*schema.TableConfig, error)
	Save(ctx context.Context, cfg *schema.TableConfig) error
	Delete(ctx context.Context, table string) error
	// List returns the stored table names in order.
	List(ctx context.Context) ([]string, error)
}

// File is the store kind of the YAML directory store.
const File = "file"

// Option configures the stores of this package.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Open opens a store of the given kind: "file" for a YAML directory at
// dsn, or a SQL dialect whose tables are created when missing.
func Open(ctx context.Context, kind, dsn string, opts ...Option) (Store, error) {
	if kind == File {
		return NewFileStore(dsn, opts...)
	}
	db, err := dsql.Open(ctx, kind, dsn, 0)
	if err != nil {
		return nil, err
	}
	if dialect.Normalize(kind) == dialect.SQLite {
		db.SetMaxOpenConns(1)
	}
	s := NewSQLStore(db, kind, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NotFound returns the error reported for a table without a stored config.
func NotFound(table string) error {
	return fmt.Errorf("%w: %s", tablegen.ErrConfigNotFound, table)
}

func validate(cfg *schema.TableConfig) error {
	if cfg == nil {
		return fmt.Errorf("tablegen: nil table config")
	}
	return validTable(cfg.Table)
}

func validTable(table string) error {
	if !dsql.IsValidIdentifier(table) {
		return tablegen.NewTableError(table, "", "invalid table name")
	}
	return nil
}

// Memory is an in-memory Store.
type Memory struct {
	mu      sync.RWMutex
	configs map[string]*schema.TableConfig
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{configs: make(map[string]*schema.TableConfig)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, table string) (*schema.TableConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[table]
	if !ok {
		return nil, NotFound(table)
	}
	return cfg.Clone(), nil
}

// Save implements Store.
func (m *Memory) Save(_ context.Context, cfg *schema.TableConfig) error {
	if err := validate(cfg); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[cfg.Table] = cfg.Clone()
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, table string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.configs, table)
	return nil
}

// List implements Store.
func (m *Memory) List(context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.configs))
	for name := range m.configs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Locked wraps a Store with per-table mutual exclusion. Different tables
// are read and written concurrently.
type Locked struct {
	Store
	mu     sync.Mutex
	tables map[string]*sync.Mutex
}

// NewLocked wraps s.
func NewLocked(s Store) *Locked {
	return &Locked{Store: s, tables: make(map[string]*sync.Mutex)}
}

func (l *Locked) lock(table string) func() {
	l.mu.Lock()
	m, ok := l.tables[table]
	if !ok {
		m = &sync.Mutex{}
		l.tables[table] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// Get implements Store.
func (l *Locked) Get(ctx context.Context, table string) (*schema.TableConfig, error) {
	defer l.lock(table)()
	return l.Store.Get(ctx, table)
}

// Save implements Store.
func (l *Locked) Save(ctx context.Context, cfg *schema.TableConfig) error {
	if err := validate(cfg); err != nil {
		return err
	}
	defer l.lock(cfg.Table)()
	return l.Store.Save(ctx, cfg)
}

// Delete implements Store.
func (l *Locked) Delete(ctx context.Context, table string) error {
	defer l.lock(table)()
	return l.Store.Delete(ctx, table)
}

// Update runs a read-modify-write cycle on the config of table while
// holding its lock. fn receives nil when nothing is stored; returning a
// nil config leaves the store unchanged.
func (l *Locked) Update(ctx context.Context, table string, fn func(*schema.TableConfig) (*schema.TableConfig, error)) (*schema.TableConfig, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	defer l.lock(table)()
	cur, err := l.Store.Get(ctx, table)
	switch {
	case tablegen.IsConfigNotFound(err):
		cur = nil
	case err != nil:
		return nil, err
	}
	next, err := fn(cur)
	if err != nil || next == nil {
		return cur, err
	}
	if next.Table != table {
		return nil, tablegen.NewTableError(table, "", "updated config names table "+next.Table)
	}
	if err := l.Store.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}
