// Package cli implements the tablegen command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Lyrics-you/sail-logrus-formatter/sailor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler"
	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/store"
	"github.com/syssam/tablegen/dialect"
	dsql "github.com/syssam/tablegen/dialect/sql"
	"github.com/syssam/tablegen/introspect"
)

// EnvPrefix prefixes the environment variables read by the CLI, e.g. TABLEGEN_DSN.
const EnvPrefix = "TABLEGEN"

// ConnectFunc opens the inspector of the configured source database. The
// returned closer releases the connection.
type ConnectFunc func(ctx context.Context, s Settings, log logrus.FieldLogger) (introspect.Inspector, io.Closer, error)

// App holds the dependencies of the commands.
type App struct {
	Out     io.Writer
	Log     *logrus.Logger
	Connect ConnectFunc

	v          *viper.Viper
	configFile string
}

// New returns an App writing to stdout and logging to stderr.
func New() *App {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&sailor.Formatter{
		TimeStampFormat: "2006-01-02 15:04:05",
		Colors:          true,
		FieldsColors:    true,
		FieldsSpace:     true,
		LowerCaseLevel:  true,
		TrimMessages:    true,
	})
	return &App{Out: os.Stdout, Log: log, Connect: Connect}
}

// Connect opens a MySQL or PostgreSQL connection and its inspector.
func Connect(ctx context.Context, s Settings, log logrus.FieldLogger) (introspect.Inspector, io.Closer, error) {
	if !dialect.Introspectable(s.Dialect) {
		return nil, nil, tablegen.NewUnsupportedDialectError(s.Dialect)
	}
	if s.DSN == "" {
		return nil, nil, fmt.Errorf("tablegen: --dsn is required")
	}
	db, err := dsql.Open(ctx, s.Dialect, s.DSN, s.Timeout)
	if err != nil {
		return nil, nil, err
	}
	opts := []introspect.Option{introspect.WithTimeout(s.Timeout), introspect.WithLogger(log)}
	if s.Schema != "" {
		opts = append(opts, introspect.WithSchema(s.Schema))
	}
	insp, err := introspect.New(s.Dialect, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return insp, db, nil
}

// Command returns the root command.
func (a *App) Command() *cobra.Command {
	a.v = viper.New()
	root := &cobra.Command{
		Use:   "tablegen",
		Short: "Generate CRUD code from database tables",
		Long: `tablegen reads the live schema of MySQL or PostgreSQL tables, merges it with
the stored per-table generation config and renders Go model, DAO, service and
controller sources plus Vue views, API modules and menu SQL into one zip archive.

Every flag can also be set in the YAML file given by --config or through an
environment variable such as TABLEGEN_DSN. Flags win over the environment,
which wins over the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "YAML config file")
	f.String("log-level", "info", "log level (debug, info, warn, error)")
	f.String("dialect", dialect.MySQL, "source database dialect (mysql, postgres)")
	f.String("dsn", "", "source database DSN")
	f.String("schema", "", "inspected schema, defaults to the connection's current one")
	f.Duration("timeout", dsql.DefaultTimeout, "connection and catalog query timeout")
	f.String("store", store.File, "config store kind (file, sqlite, mysql, postgres)")
	f.String("store-dsn", ".tablegen", "config store directory or DSN")
	f.StringSlice("prefix", nil, "table name prefixes to strip, e.g. sys_")
	f.String("author", gen.DefaultAuthor, "default function author")
	f.String("package", gen.DefaultPackage, "import path root of generated Go code")
	f.String("module", gen.DefaultModule, "default module name")
	f.String("date", "", "generation date as YYYY-MM-DD, defaults to today")
	f.Int("workers", 0, "parallel workers, defaults to the number of CPUs")
	f.StringSlice("kinds", nil, "artifact kinds to render, defaults to all")
	f.String("template-dir", "", "directory of additional *.tmpl templates")
	_ = a.v.BindPFlags(f)

	root.AddCommand(a.tablesCmd(), a.genCmd(), a.configCmd())
	return root
}

func (a *App) init() error {
	a.v.SetEnvPrefix(EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("tablegen: read config %s: %w", a.configFile, err)
		}
	}
	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.Log.SetLevel(level)
	return nil
}

// Settings are the resolved CLI settings.
type Settings struct {
	Dialect     string
	DSN         string
	Schema      string
	Timeout     time.Duration
	Store       string
	StoreDSN    string
	Prefixes    []string
	Author      string
	Package     string
	Module      string
	Date        string
	Workers     int
	Kinds       []string
	TemplateDir string
}

// Settings returns the settings resolved from flags, environment and config file.
func (a *App) Settings() Settings {
	return Settings{
		Dialect:     a.v.GetString("dialect"),
		DSN:         a.v.GetString("dsn"),
		Schema:      a.v.GetString("schema"),
		Timeout:     a.v.GetDuration("timeout"),
		Store:       a.v.GetString("store"),
		StoreDSN:    a.v.GetString("store-dsn"),
		Prefixes:    a.v.GetStringSlice("prefix"),
		Author:      a.v.GetString("author"),
		Package:     a.v.GetString("package"),
		Module:      a.v.GetString("module"),
		Date:        a.v.GetString("date"),
		Workers:     a.v.GetInt("workers"),
		Kinds:       a.v.GetStringSlice("kinds"),
		TemplateDir: a.v.GetString("template-dir"),
	}
}

// genOptions maps the settings to generation options.
func (s Settings) genOptions(log logrus.FieldLogger) []gen.Option {
	opts := []gen.Option{
		gen.WithAuthor(s.Author),
		gen.WithPackage(s.Package),
		gen.WithModule(s.Module),
		gen.WithLogger(log),
	}
	if len(s.Prefixes) > 0 {
		opts = append(opts, gen.WithPrefixes(s.Prefixes...))
	}
	if s.Date != "" {
		opts = append(opts, gen.WithDateString(s.Date))
	}
	if s.Workers > 0 {
		opts = append(opts, gen.WithWorkers(s.Workers))
	}
	if len(s.Kinds) > 0 {
		kinds := make([]gen.Kind, len(s.Kinds))
		for i, k := range s.Kinds {
			kinds[i] = gen.Kind(k)
		}
		opts = append(opts, gen.WithKinds(kinds...))
	}
	return opts
}

// env is the per-command wiring of a service to its store and connection.
type env struct {
	svc     *compiler.Service
	store   store.Store
	closers []io.Closer
}

func (e *env) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// open connects to the source database and the config store.
func (a *App) open(ctx context.Context) (*env, error) {
	s := a.Settings()
	cfg, err := gen.NewConfig(s.genOptions(a.Log)...)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, s.Store, s.StoreDSN, store.WithLogger(a.Log))
	if err != nil {
		return nil, err
	}
	e := &env{store: st}
	if c, ok := st.(io.Closer); ok {
		e.closers = append(e.closers, c)
	}
	insp, closer, err := a.Connect(ctx, s, a.Log)
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	if closer != nil {
		e.closers = append(e.closers, closer)
	}
	var opts []compiler.Option
	if s.TemplateDir != "" {
		opts = append(opts, compiler.WithTemplateDir(s.TemplateDir))
	}
	opts = append(opts, compiler.WithLogger(a.Log))
	if e.svc, err = compiler.New(insp, st, cfg, opts...); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}
