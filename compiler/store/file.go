package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/syssam/tablegen/schema"
)

// ext is the file extension of stored configs.
const ext = ".yaml"

// FileStore keeps one YAML file per table in a directory. Files are
// replaced atomically, so a reader never observes a partial write.
type FileStore struct {
	dir string
	log logrus.FieldLogger
}

// NewFileStore returns a store in dir, creating it when missing.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, log: newOptions(opts).log}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file holding the config of table.
func (s *FileStore) Path(table string) string {
	return filepath.Join(s.dir, table+ext)
}

// Table returns the table of a config file path, and false for other files.
func (s *FileStore) Table(path string) (string, bool) {
	if filepath.Dir(path) != filepath.Clean(s.dir) || filepath.Ext(path) != ext {
		return "", false
	}
	table := strings.TrimSuffix(filepath.Base(path), ext)
	return table, validTable(table) == nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, table string) (*schema.TableConfig, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.Path(table))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NotFound(table)
	}
	if err != nil {
		return nil, err
	}
	cfg := &schema.TableConfig{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, &DecodeError{Path: s.Path(table), Cause: err}
	}
	if cfg.Table == "" {
		cfg.Table = table
	}
	return cfg, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, cfg *schema.TableConfig) error {
	if err := validate(cfg); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+cfg.Table+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.Path(cfg.Table)); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"table": cfg.Table, "path": s.Path(cfg.Table)}).Debug("saved table config")
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, table string) error {
	if err := validTable(table); err != nil {
		return err
	}
	if err := os.Remove(s.Path(table)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// List implements Store.
func (s *FileStore) List(context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if table, ok := s.Table(filepath.Join(s.dir, e.Name())); ok {
			names = append(names, table)
		}
	}
	slices.Sort(names)
	return names, nil
}

// DecodeError reports a stored config file that is not valid YAML.
type DecodeError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return "tablegen: decode config " + e.Path + ": " + e.Cause.Error()
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error { return e.Cause }
