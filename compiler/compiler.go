// Package compiler runs generation requests end to end: it inspects live
// tables, merges them with their stored configs, renders every artifact
// and packages the result into one archive.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/archive"
	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/gen/golang"
	"github.com/syssam/tablegen/compiler/store"
	"github.com/syssam/tablegen/introspect"
	"github.com/syssam/tablegen/schema"
)

// TracerName is the instrumentation name of the service spans.
const TracerName = "github.com/syssam/tablegen/compiler"

// Service generates code for the tables of one database.
type Service struct {
	inspector introspect.Inspector
	store     *store.Locked
	cfg       *gen.Config
	templates gen.TemplateSet
	batch     int
	log       logrus.FieldLogger
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service) error

// WithTemplates replaces the template set. The default set is the Go
// templates followed by the view, api and menu SQL templates.
func WithTemplates(set gen.TemplateSet) Option {
	return func(s *Service) error {
		if len(set) == 0 {
			return gen.NewConfigError("Templates", nil, "template set cannot be empty")
		}
		s.templates = set
		return nil
	}
}

// WithTemplateDir appends the custom templates of dir to the template set.
func WithTemplateDir(dir string) Option {
	return func(s *Service) error {
		set, err := gen.LoadDir(dir)
		if err != nil {
			return err
		}
		s.templates = append(s.templates, set...)
		return nil
	}
}

// WithBatchWorkers bounds the number of tables generated in parallel.
func WithBatchWorkers(n int) Option {
	return func(s *Service) error {
		if n < 1 {
			return gen.NewConfigError("BatchWorkers", n, "must be at least 1")
		}
		s.batch = n
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) error {
		if l == nil {
			return gen.NewConfigError("Log", nil, "logger cannot be nil")
		}
		s.log = l
		return nil
	}
}

// WithTracer sets the tracer. The default is the global tracer provider's.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) error {
		if t == nil {
			return gen.NewConfigError("Tracer", nil, "tracer cannot be nil")
		}
		s.tracer = t
		return nil
	}
}

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() gen.TemplateSet {
	return append(golang.Templates(), gen.TextTemplates()...)
}

// New returns a service reading live metadata from insp and configs from st.
func New(insp introspect.Inspector, st store.Store, cfg *gen.Config, opts ...Option) (*Service, error) {
	switch {
	case insp == nil:
		return nil, gen.NewConfigError("Inspector", nil, "inspector is required")
	case st == nil:
		return nil, gen.NewConfigError("Store", nil, "store is required")
	case cfg == nil:
		return nil, gen.NewConfigError("Config", nil, "generation config is required")
	}
	locked, ok := st.(*store.Locked)
	if !ok {
		locked = store.NewLocked(st)
	}
	s := &Service{
		inspector: insp,
		store:     locked,
		cfg:       cfg,
		templates: DefaultTemplates(),
		batch:     cfg.Workers,
		log:       cfg.Log,
		tracer:    otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.batch < 1 {
		s.batch = 1
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s, nil
}

// Config returns the generation config.
func (s *Service) Config() *gen.Config { return s.cfg }

// Store returns the config store.
func (s *Service) Store() *store.Locked { return s.store }

// Result is the outcome of a generation request.
type Result struct {
	// RequestID identifies the request in logs and traces.
	RequestID string
	// Tables are the generated tables in request order.
	Tables []string
	// Files are the rendered artifacts ordered by path.
	Files gen.Files
	// Warnings are identifier renames made while mapping columns.
	Warnings []gen.Collision
	// Archive is the zip bundle of Files.
	Archive []byte
}

// Tables lists the tables of the inspected schema.
func (s *Service) Tables(ctx context.Context) ([]introspect.TableInfo, error) {
	ctx, span := s.tracer.Start(ctx, "tablegen.Tables", trace.WithAttributes(
		attribute.String("db.system", s.inspector.Dialect()),
	))
	defer span.End()
	tables, err := s.inspector.Tables(ctx)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("tablegen.tables", len(tables)))
	return tables, nil
}

// Inspect returns the live metadata of table.
func (s *Service) Inspect(ctx context.Context, table string) (*schema.Table, error) {
	ctx, span := s.tracer.Start(ctx, "tablegen.Inspect", trace.WithAttributes(
		attribute.String("db.system", s.inspector.Dialect()),
		attribute.String("tablegen.table", table),
	))
	defer span.End()
	t, err := s.inspector.InspectTable(ctx, table)
	if err != nil {
		return nil, fail(span, err)
	}
	return t, nil
}

// stored returns the stored config of table, or nil when there is none.
func (s *Service) stored(ctx context.Context, table string) (*schema.TableConfig, error) {
	cfg, err := s.store.Get(ctx, table)
	if tablegen.IsConfigNotFound(err) {
		return nil, nil
	}
	return cfg, err
}

// LoadConfig returns the stored config of table. When none is stored it
// returns the default derived from the live table without saving it.
func (s *Service) LoadConfig(ctx context.Context, table string) (*schema.TableConfig, error) {
	cfg, err := s.stored(ctx, table)
	if err != nil || cfg != nil {
		return cfg, err
	}
	live, err := s.Inspect(ctx, table)
	if err != nil {
		return nil, err
	}
	return gen.DefaultConfig(s.cfg, live), nil
}

// SaveConfig stores cfg, replacing the previous config of its table.
func (s *Service) SaveConfig(ctx context.Context, cfg *schema.TableConfig) error {
	return s.store.Save(ctx, cfg)
}

// InitConfig stores the default config of table unless one is stored already.
func (s *Service) InitConfig(ctx context.Context, table string) (*schema.TableConfig, error) {
	live, err := s.Inspect(ctx, table)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, live.Name, func(cur *schema.TableConfig) (*schema.TableConfig, error) {
		if cur != nil {
			return nil, nil
		}
		return gen.DefaultConfig(s.cfg, live), nil
	})
}

// SyncConfig re-merges the stored config of table with its live columns
// and saves the result. Vanished columns are dropped and new columns get
// defaults.
func (s *Service) SyncConfig(ctx context.Context, table string) (*schema.TableConfig, error) {
	live, err := s.Inspect(ctx, table)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, live.Name, func(cur *schema.TableConfig) (*schema.TableConfig, error) {
		for _, c := range schema.DiffConfig(cur, live).Changes {
			s.log.WithFields(logrus.Fields{"table": c.Table, "column": c.Column}).Info(c.Message)
		}
		return gen.SyncConfig(s.cfg, live, cur), nil
	})
}

// Drift compares the stored config of table with its live columns.
func (s *Service) Drift(ctx context.Context, table string) (*schema.Drift, error) {
	live, err := s.Inspect(ctx, table)
	if err != nil {
		return nil, err
	}
	cur, err := s.store.Get(ctx, live.Name)
	if err != nil {
		return nil, err
	}
	return schema.DiffConfig(cur, live), nil
}

// Context builds the generation context of table. Master-sub tables also
// load their sub table.
func (s *Service) Context(ctx context.Context, table string) (*gen.Context, error) {
	master, err := s.input(ctx, table)
	if err != nil {
		return nil, err
	}
	var sub *gen.Input
	opts := gen.Merge(s.cfg, master.Table, master.Stored).Options
	if opts.GenType == schema.GenSub && opts.SubTableName != "" {
		in, err := s.input(ctx, opts.SubTableName)
		switch {
		case tablegen.IsNotFound(err):
			return nil, tablegen.NewDanglingReferenceError(table, opts.SubTableName, opts.SubTableFKName, "sub table does not exist")
		case err != nil:
			return nil, err
		}
		sub = &in
	}
	return gen.NewContext(s.cfg, master, sub)
}

func (s *Service) input(ctx context.Context, table string) (gen.Input, error) {
	live, err := s.Inspect(ctx, table)
	if err != nil {
		return gen.Input{}, err
	}
	stored, err := s.stored(ctx, table)
	if err != nil {
		return gen.Input{}, err
	}
	return gen.Input{Table: live, Stored: stored}, nil
}

// Render builds the context of table and renders the template set. It
// returns no files when any step fails.
func (s *Service) Render(ctx context.Context, table string) (gen.Files, []gen.Collision, error) {
	gc, err := s.Context(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	ctx, span := s.tracer.Start(ctx, "tablegen.Render", trace.WithAttributes(
		attribute.String("tablegen.table", table),
	))
	defer span.End()
	files, err := gen.NewGenerator(s.cfg).Render(ctx, gc, s.templates)
	if err != nil {
		return nil, nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("tablegen.files", len(files)))
	return files, gc.Warnings, nil
}

// Generate renders one table and packages its artifacts.
func (s *Service) Generate(ctx context.Context, table string) (*Result, error) {
	return s.GenerateBatch(ctx, table)
}

// GenerateBatch renders the tables in parallel and packages all artifacts
// into one archive. Every failed table is reported in the joined error and
// no archive is produced.
func (s *Service) GenerateBatch(ctx context.Context, tables ...string) (*Result, error) {
	if ctx == nil {
		return nil, gen.NewConfigError("Context", nil, "context is required")
	}
	if len(tables) == 0 {
		return nil, gen.NewConfigError("Tables", nil, "at least one table is required")
	}
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if seen[t] {
			return nil, tablegen.NewTableError(t, "", "listed more than once")
		}
		seen[t] = true
	}
	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{
		"request_id": id,
		"dialect":    s.inspector.Dialect(),
	})
	ctx, span := s.tracer.Start(ctx, "tablegen.Generate", trace.WithAttributes(
		attribute.String("tablegen.request_id", id),
		attribute.StringSlice("tablegen.tables", tables),
	))
	defer span.End()

	var (
		files    = make([]gen.Files, len(tables))
		warnings = make([][]gen.Collision, len(tables))
		errs     = make([]error, len(tables))
		eg       errgroup.Group
	)
	eg.SetLimit(s.batch)
	for i, table := range tables {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			files[i], warnings[i], errs[i] = s.Render(ctx, table)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("generate %s: %w", table, errs[i])
			}
			return nil
		})
	}
	_ = eg.Wait()
	if err := errors.Join(errs...); err != nil {
		log.WithError(err).Error("generation failed")
		return nil, fail(span, err)
	}

	res := &Result{RequestID: id, Tables: tables}
	for i, table := range tables {
		for _, w := range warnings[i] {
			log.WithField("table", table).Warn(w.String())
		}
		res.Warnings = append(res.Warnings, warnings[i]...)
	}
	_, pspan := s.tracer.Start(ctx, "tablegen.Package")
	all := archive.Merge(files...)
	b, err := archive.Package(all)
	if err != nil {
		pspan.End()
		log.WithError(err).Error("packaging failed")
		return nil, fail(span, err)
	}
	pspan.SetAttributes(attribute.Int("tablegen.bytes", len(b)))
	pspan.End()
	res.Files, res.Archive = sorted(all), b
	log.WithFields(logrus.Fields{
		"tables": len(tables),
		"files":  len(all),
	}).Info("generated archive")
	return res, nil
}

func sorted(files gen.Files) gen.Files {
	out := slices.Clone(files)
	slices.SortStableFunc(out, func(a, b gen.File) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
