package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/syssam/tablegen/dialect"
	dsql "github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/schema"
)

// Tables of the SQL store. DDL sticks to types shared by MySQL, PostgreSQL
// and SQLite; flags are stored as 0/1 integers.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS gen_table (
	table_name VARCHAR(128) NOT NULL PRIMARY KEY,
	table_comment VARCHAR(500) NOT NULL DEFAULT '',
	package_name VARCHAR(255) NOT NULL DEFAULT '',
	module_name VARCHAR(64) NOT NULL DEFAULT '',
	business_name VARCHAR(64) NOT NULL DEFAULT '',
	function_name VARCHAR(255) NOT NULL DEFAULT '',
	class_name VARCHAR(128) NOT NULL DEFAULT '',
	function_author VARCHAR(64) NOT NULL DEFAULT '',
	gen_type VARCHAR(16) NOT NULL DEFAULT '',
	tree_code VARCHAR(128) NOT NULL DEFAULT '',
	tree_parent_code VARCHAR(128) NOT NULL DEFAULT '',
	tree_name VARCHAR(128) NOT NULL DEFAULT '',
	sub_table_name VARCHAR(128) NOT NULL DEFAULT '',
	sub_table_fk_name VARCHAR(128) NOT NULL DEFAULT '',
	sub_table_references VARCHAR(128) NOT NULL DEFAULT '',
	parent_menu_id VARCHAR(64) NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS gen_table_column (
	table_name VARCHAR(128) NOT NULL,
	column_name VARCHAR(128) NOT NULL,
	ordinal INTEGER NOT NULL DEFAULT 0,
	sort INTEGER NOT NULL DEFAULT 0,
	is_insert SMALLINT NOT NULL DEFAULT 0,
	is_edit SMALLINT NOT NULL DEFAULT 0,
	is_list SMALLINT NOT NULL DEFAULT 0,
	is_query SMALLINT NOT NULL DEFAULT 0,
	query_type VARCHAR(16) NOT NULL DEFAULT '',
	is_required SMALLINT NOT NULL DEFAULT 0,
	html_type VARCHAR(32) NOT NULL DEFAULT '',
	dict_type VARCHAR(128) NOT NULL DEFAULT '',
	PRIMARY KEY (table_name, column_name)
)`,
}

const (
	tableColumns = `table_name, table_comment, package_name, module_name, business_name, function_name,
	class_name, function_author, gen_type, tree_code, tree_parent_code, tree_name,
	sub_table_name, sub_table_fk_name, sub_table_references, parent_menu_id`
	columnColumns = `table_name, column_name, ordinal, sort, is_insert, is_edit, is_list, is_query,
	query_type, is_required, html_type, dict_type`
)

// SQLStore keeps configs in the gen_table and gen_table_column tables.
type SQLStore struct {
	db      *sql.DB
	dialect string
	log     logrus.FieldLogger
}

// NewSQLStore returns a store on db. Call Migrate to create its tables.
func NewSQLStore(db *sql.DB, dialectName string, opts ...Option) *SQLStore {
	o := newOptions(opts)
	return &SQLStore{db: db, dialect: dialect.Normalize(dialectName), log: o.log}
}

// DB returns the underlying handle.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close closes the underlying handle.
func (s *SQLStore) Close() error { return s.db.Close() }

// Migrate creates the store tables when missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, ddl := range migrations {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return dsql.Classify(s.dialect, "", "migrate config store", err)
		}
	}
	return nil
}

func (s *SQLStore) rebind(query string) string { return dsql.Rebind(s.dialect, query) }

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, table string) (*schema.TableConfig, error) {
	cfg := &schema.TableConfig{}
	o := &cfg.Options
	var genType string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+tableColumns+` FROM gen_table WHERE table_name = ?`), table).Scan(
		&cfg.Table, &cfg.Comment, &o.PackageName, &o.ModuleName, &o.BusinessName, &o.FunctionName,
		&o.ClassName, &o.FunctionAuthor, &genType, &o.TreeCode, &o.TreeParentCode, &o.TreeName,
		&o.SubTableName, &o.SubTableFKName, &o.SubTableReferences, &o.ParentMenuID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound(table)
	}
	if err != nil {
		return nil, dsql.Classify(s.dialect, table, "load config", err)
	}
	o.GenType = schema.GenType(genType)
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+columnColumns+` FROM gen_table_column WHERE table_name = ? ORDER BY ordinal`), table)
	if err != nil {
		return nil, dsql.Classify(s.dialect, table, "load column config", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c                                                 schema.ColumnConfig
			tableName, queryOp, htmlType                      string
			ordinal                                           int
			insertable, editable, listable, queryable, needed int
		)
		if err := rows.Scan(&tableName, &c.Name, &ordinal, &c.Sort, &insertable, &editable, &listable, &queryable,
			&queryOp, &needed, &htmlType, &c.DictType); err != nil {
			return nil, dsql.Classify(s.dialect, table, "scan column config", err)
		}
		c.Insertable, c.Editable, c.Listable, c.Queryable, c.Required =
			insertable != 0, editable != 0, listable != 0, queryable != 0, needed != 0
		c.QueryOp, c.HTMLType = schema.QueryOp(queryOp), schema.HTMLType(htmlType)
		cfg.Columns = append(cfg.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dsql.Classify(s.dialect, table, "load column config", err)
	}
	return cfg, nil
}

// Save implements Store. The table row and its column rows are replaced in
// one transaction.
func (s *SQLStore) Save(ctx context.Context, cfg *schema.TableConfig) error {
	if err := validate(cfg); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dsql.Classify(s.dialect, cfg.Table, "save config", err)
	}
	if err := s.save(ctx, tx, cfg); err != nil {
		_ = tx.Rollback()
		return dsql.Classify(s.dialect, cfg.Table, "save config", err)
	}
	if err := tx.Commit(); err != nil {
		return dsql.Classify(s.dialect, cfg.Table, "commit config", err)
	}
	s.log.WithFields(logrus.Fields{"table": cfg.Table, "columns": len(cfg.Columns)}).Debug("saved table config")
	return nil
}

func (s *SQLStore) save(ctx context.Context, tx *sql.Tx, cfg *schema.TableConfig) error {
	if err := s.delete(ctx, tx, cfg.Table); err != nil {
		return err
	}
	o := cfg.Options
	if _, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO gen_table (`+tableColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		cfg.Table, cfg.Comment, o.PackageName, o.ModuleName, o.BusinessName, o.FunctionName,
		o.ClassName, o.FunctionAuthor, string(o.GenType), o.TreeCode, o.TreeParentCode, o.TreeName,
		o.SubTableName, o.SubTableFKName, o.SubTableReferences, o.ParentMenuID,
	); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, s.rebind(`INSERT INTO gen_table_column (`+columnColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, c := range cfg.Columns {
		if _, err := stmt.ExecContext(ctx, cfg.Table, c.Name, i, c.Sort,
			flag(c.Insertable), flag(c.Editable), flag(c.Listable), flag(c.Queryable),
			string(c.QueryOp), flag(c.Required), string(c.HTMLType), c.DictType,
		); err != nil {
			return err
		}
	}
	return nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, table string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dsql.Classify(s.dialect, table, "delete config", err)
	}
	if err := s.delete(ctx, tx, table); err != nil {
		_ = tx.Rollback()
		return dsql.Classify(s.dialect, table, "delete config", err)
	}
	if err := tx.Commit(); err != nil {
		return dsql.Classify(s.dialect, table, "commit config", err)
	}
	return nil
}

func (s *SQLStore) delete(ctx context.Context, tx *sql.Tx, table string) error {
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM gen_table_column WHERE table_name = ?`), table); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM gen_table WHERE table_name = ?`), table)
	return err
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT table_name FROM gen_table ORDER BY table_name`)
	if err != nil {
		return nil, dsql.Classify(s.dialect, "", "list configs", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, dsql.Classify(s.dialect, "", "list configs", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, dsql.Classify(s.dialect, "", "list configs", err)
	}
	return names, nil
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
