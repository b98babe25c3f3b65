package gen

import (
	"context"
	"path"
	"slices"

	"github.com/dave/jennifer/jen"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/tablegen"
)

// File is one rendered artifact.
type File struct {
	Path    string
	Kind    Kind
	Content []byte
}

// Files are rendered artifacts in template order.
type Files []File

// Map returns the files keyed by output path.
func (fs Files) Map() map[string][]byte {
	m := make(map[string][]byte, len(fs))
	for _, f := range fs {
		m[f.Path] = f.Content
	}
	return m
}

// Paths returns the sorted output paths.
func (fs Files) Paths() []string {
	ps := make([]string, len(fs))
	for i, f := range fs {
		ps[i] = f.Path
	}
	slices.Sort(ps)
	return ps
}

// Generator renders template sets in parallel.
type Generator struct {
	cfg *Config
}

// NewGenerator creates a generator for the config.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{cfg: cfg}
}

// Render renders every applicable template of set against gc. It is
// all-or-nothing: when any template fails no files are returned.
func (g *Generator) Render(ctx context.Context, gc *Context, set TemplateSet) (Files, error) {
	if gc == nil || gc.Table == nil {
		return nil, NewConfigError("Context", nil, "generation context is required")
	}
	var (
		tasks []Template
		files Files
		seen  = make(map[string]Kind)
	)
	for _, t := range set {
		if !g.cfg.Renders(t.Kind()) || t.Skip(gc) {
			continue
		}
		p := t.Path(gc)
		if !validPath(p) {
			return nil, NewGenerationError(t.Kind(), p, "invalid output path", nil)
		}
		if k, ok := seen[p]; ok {
			return nil, tablegen.NewPackagingError(p, "artifacts "+string(k)+" and "+string(t.Kind())+" resolve to the same path", nil)
		}
		seen[p] = t.Kind()
		tasks = append(tasks, t)
		files = append(files, File{Path: p, Kind: t.Kind()})
	}
	eg, ctx := errgroup.WithContext(ctx)
	if g.cfg.Workers > 0 {
		eg.SetLimit(g.cfg.Workers)
	}
	for i, t := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := t.Render(gc)
			if err != nil {
				return NewGenerationError(t.Kind(), files[i].Path, "render", err)
			}
			files[i].Content = b
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if g.cfg.Log != nil {
		g.cfg.Log.WithFields(logrus.Fields{
			"table": gc.Table.Table.Name,
			"files": len(files),
		}).Debug("rendered templates")
	}
	return files, nil
}

// NewFile creates a jennifer file with the generated-code header and the generation date.
func NewFile(c *Context, pkg string) *jen.File {
	f := jen.NewFilePath(c.ImportPath(pkg))
	f.HeaderComment(c.Header())
	f.HeaderComment("Generation date: " + c.Date())
	return f
}

// BaseType returns the jennifer code of the field's base type.
func BaseType(f *Field) *jen.Statement {
	t := f.Type
	switch {
	case t.PkgPath != "":
		return jen.Qual(t.PkgPath, t.Ident)
	case t.Ident == "[]byte":
		return jen.Index().Byte()
	default:
		return jen.Id(t.Ident)
	}
}

// GoType returns the jennifer code of the entity field type.
func GoType(f *Field) *jen.Statement {
	if f.Type.Pointer() {
		return jen.Op("*").Add(BaseType(f))
	}
	return BaseType(f)
}

// OutputPath joins the module directory of a generated Go package with a file name.
func OutputPath(c *Context, pkg, file string) string {
	return path.Join("go", c.Table.Module, pkg, file)
}
