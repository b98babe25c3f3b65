package gen

import (
	"errors"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Default option values.
const (
	DefaultHeader  = "Code generated by tablegen. DO NOT EDIT."
	DefaultPackage = "example.com/admin"
	DefaultModule  = "system"
	DefaultAuthor  = "tablegen"
	DateLayout     = "2006-01-02"
)

// Config holds the global generation options shared by every table of a request.
type Config struct {
	// Header is the first comment line of every generated file.
	Header string
	// Author is the default function author.
	Author string
	// Package is the import path root of generated Go code.
	Package string
	// Module is the default module name of new table configs.
	Module string
	// Date is the generation date written into file headers, as YYYY-MM-DD.
	Date string
	// Prefixes are stripped from table names before deriving class and business names.
	Prefixes []string
	// Workers bounds parallel template rendering.
	Workers int
	// Kinds restricts rendering to the listed artifact kinds. Empty renders all.
	Kinds []Kind
	// Log receives debug and warning output.
	Log logrus.FieldLogger

	namer *Namer
}

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		if strings.TrimSpace(header) == "" {
			return NewConfigError("Header", nil, "header cannot be empty")
		}
		c.Header = header
		return nil
	}
}

// WithAuthor sets the default function author.
func WithAuthor(author string) Option {
	return func(c *Config) error {
		c.Author = author
		return nil
	}
}

// WithPackage sets the import path root of generated code.
// For example: "github.com/org/admin".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = strings.TrimSuffix(pkg, "/")
		return nil
	}
}

// WithModule sets the default module name.
func WithModule(module string) Option {
	return func(c *Config) error {
		if module == "" {
			return NewConfigError("Module", nil, "module cannot be empty")
		}
		c.Module = module
		return nil
	}
}

// WithDate sets the generation date.
func WithDate(t time.Time) Option {
	return func(c *Config) error {
		if t.IsZero() {
			return NewConfigError("Date", nil, "date cannot be zero")
		}
		c.Date = t.Format(DateLayout)
		return nil
	}
}

// WithDateString sets the generation date from a YYYY-MM-DD string.
func WithDateString(s string) Option {
	return func(c *Config) error {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return NewConfigError("Date", s, "date must be formatted as YYYY-MM-DD")
		}
		c.Date = t.Format(DateLayout)
		return nil
	}
}

// WithPrefixes sets the table prefixes to strip, e.g. "sys_", "t_".
func WithPrefixes(prefixes ...string) Option {
	return func(c *Config) error {
		c.Prefixes = append(c.Prefixes, prefixes...)
		return nil
	}
}

// WithWorkers sets the number of parallel render workers.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 1 {
			return NewConfigError("Workers", n, "workers must be positive")
		}
		c.Workers = n
		return nil
	}
}

// WithKinds restricts rendering to the given artifact kinds.
func WithKinds(kinds ...Kind) Option {
	return func(c *Config) error {
		for _, k := range kinds {
			if !k.Valid() {
				return NewConfigError("Kinds", k, "unknown artifact kind")
			}
		}
		c.Kinds = append(c.Kinds, kinds...)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Log", nil, "logger cannot be nil")
		}
		c.Log = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	c.namer = NewNamer(c.Prefixes...)
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	c.namer = NewNamer(c.Prefixes...)
	return errors.Join(errs...)
}

// Namer returns the namer built from the configured prefixes.
func (c *Config) Namer() *Namer {
	if c.namer == nil {
		return NewNamer(c.Prefixes...)
	}
	return c.namer
}

// Renders reports whether the artifact kind is enabled.
func (c *Config) Renders(k Kind) bool {
	if len(c.Kinds) == 0 {
		return true
	}
	for _, kk := range c.Kinds {
		if kk == k {
			return true
		}
	}
	return false
}

// NewConfig creates a new Config with defaults and the given options.
// The date defaults to today.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Header:  DefaultHeader,
		Author:  DefaultAuthor,
		Package: DefaultPackage,
		Module:  DefaultModule,
		Date:    time.Now().Format(DateLayout),
		Workers: runtime.GOMAXPROCS(0),
		Log:     logrus.StandardLogger(),
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
