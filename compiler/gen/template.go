package gen

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/syssam/tablegen/schema"
)

// Kind is an artifact kind. Each template renders exactly one kind.
type Kind string

// Artifact kinds.
const (
	KindEntity     Kind = "entity"
	KindSubEntity  Kind = "sub-entity"
	KindDAO        Kind = "dao"
	KindService    Kind = "service"
	KindController Kind = "controller"
	KindView       Kind = "view"
	KindAPI        Kind = "api"
	KindMenuSQL    Kind = "menu-sql"
)

// customPrefix marks kinds of templates loaded from a directory.
const customPrefix = "custom:"

// Kinds lists the built-in artifact kinds in render order.
var Kinds = []Kind{KindEntity, KindSubEntity, KindDAO, KindService, KindController, KindView, KindAPI, KindMenuSQL}

// Valid reports whether k is a built-in or custom kind.
func (k Kind) Valid() bool {
	for _, kk := range Kinds {
		if k == kk {
			return true
		}
	}
	return strings.HasPrefix(string(k), customPrefix) && len(k) > len(customPrefix)
}

// Template renders one artifact from a Context.
type Template interface {
	// Kind returns the artifact kind.
	Kind() Kind
	// Skip reports whether the template does not apply to the context.
	Skip(*Context) bool
	// Path returns the slash-separated output path.
	Path(*Context) string
	// Render returns the file content.
	Render(*Context) ([]byte, error)
}

// TemplateSet is an ordered set of templates.
type TemplateSet []Template

// Kinds returns the kinds of the set in order.
func (s TemplateSet) Kinds() []Kind {
	kinds := make([]Kind, len(s))
	for i, t := range s {
		kinds[i] = t.Kind()
	}
	return kinds
}

// JenTemplate renders Go source built with jennifer.
type JenTemplate struct {
	K    Kind
	Cond func(*Context) bool
	File func(*Context) string
	Gen  func(*Context) (*jen.File, error)
}

// Kind implements Template.
func (t *JenTemplate) Kind() Kind { return t.K }

// Skip implements Template.
func (t *JenTemplate) Skip(c *Context) bool { return t.Cond != nil && !t.Cond(c) }

// Path implements Template.
func (t *JenTemplate) Path(c *Context) string { return t.File(c) }

// Render implements Template.
func (t *JenTemplate) Render(c *Context) ([]byte, error) {
	f, err := t.Gen(c)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TextTemplate renders a text/template. Outputs ending in ".go" are
// formatted and have their imports fixed.
type TextTemplate struct {
	K    Kind
	Cond func(*Context) bool
	tmpl *template.Template
	path *template.Template
}

// Kind implements Template.
func (t *TextTemplate) Kind() Kind { return t.K }

// Skip implements Template.
func (t *TextTemplate) Skip(c *Context) bool { return t.Cond != nil && !t.Cond(c) }

// Path implements Template. Path templates are validated at parse time.
func (t *TextTemplate) Path(c *Context) string {
	var b strings.Builder
	if err := t.path.Execute(&b, c); err != nil {
		return ""
	}
	return strings.TrimSpace(b.String())
}

// Render implements Template.
func (t *TextTemplate) Render(c *Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, c); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if p := t.Path(c); strings.HasSuffix(p, ".go") {
		formatted, err := imports.Process(p, out, nil)
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", p, err)
		}
		out = formatted
	}
	return out, nil
}

// NewTextTemplate parses a template and its output path template.
func NewTextTemplate(kind Kind, name, text, pathText string) (*TextTemplate, error) {
	tmpl, err := template.New(name).Funcs(Funcs).Parse(text)
	if err != nil {
		return nil, NewConfigError("Template", name, err.Error())
	}
	pt, err := template.New(name + ":path").Funcs(Funcs).Option("missingkey=error").Parse(pathText)
	if err != nil {
		return nil, NewConfigError("Template", name, "invalid path: "+err.Error())
	}
	return &TextTemplate{K: kind, tmpl: tmpl, path: pt}, nil
}

//go:embed template/*.tmpl
var templateFS embed.FS

// TextTemplates returns the built-in view, api and menu SQL templates.
func TextTemplates() TemplateSet {
	return TemplateSet{
		mustText(KindView, "view.vue.tmpl", "vue/views/{{.Table.Module}}/{{.Table.Business}}/index.vue"),
		mustText(KindAPI, "api.js.tmpl", "vue/api/{{.Table.Module}}/{{.Table.Business}}.js"),
		mustText(KindMenuSQL, "menu.sql.tmpl", "sql/{{.Table.Business}}_menu.sql"),
	}
}

func mustText(kind Kind, name, pathText string) *TextTemplate {
	b, err := templateFS.ReadFile("template/" + name)
	if err != nil {
		panic(err)
	}
	t, err := NewTextTemplate(kind, name, string(b), pathText)
	if err != nil {
		panic(err)
	}
	return t
}

// pathHeader matches the output path declaration on the first line of a custom template.
var pathHeader = regexp.MustCompile(`^\{\{/\*\s*path:\s*(.+?)\s*\*/\}\}`)

// LoadDir parses every *.tmpl file of dir into a template set ordered by
// file name. The first line of each file declares its output path:
//
//	{{/* path: go/{{.Table.Module}}/router/{{.Table.Business}}.go */}}
func LoadDir(dir string) (TemplateSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, NewConfigError("TemplateDir", dir, err.Error())
	}
	var set TemplateSet
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".tmpl" {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, NewConfigError("TemplateDir", dir, err.Error())
		}
		m := pathHeader.FindSubmatch(b)
		if m == nil {
			return nil, NewConfigError("Template", e.Name(), "missing {{/* path: ... */}} header")
		}
		name := strings.TrimSuffix(e.Name(), ".tmpl")
		t, err := NewTextTemplate(Kind(customPrefix+name), e.Name(), string(b), string(m[1]))
		if err != nil {
			return nil, err
		}
		set = append(set, t)
	}
	return set, nil
}

// Funcs are the functions available to text templates.
var Funcs = template.FuncMap{
	"snake":     snake,
	"pascal":    pascal,
	"camel":     camel,
	"kebab":     func(s string) string { return ToIdentifier(s, Kebab) },
	"plural":    plural,
	"lower":     strings.ToLower,
	"upper":     strings.ToUpper,
	"join":      strings.Join,
	"quote":     func(s string) string { return fmt.Sprintf("%q", s) },
	"sqlstr":    sqlString,
	"jsstr":     jsString,
	"oneLine":   oneLine,
	"hasTime":   hasTemporal,
	"last":      func(i int, fs []*Field) bool { return i == len(fs)-1 },
	"isOp":      func(f *Field, op string) bool { return string(f.Policy.QueryOp) == op },
	"isHTML":    func(f *Field, h string) bool { return string(f.Policy.HTMLType) == h },
	"list":      func(s ...string) []string { return s },
	"inc":       func(i int) int { return i + 1 },
	"sqlnum":    sqlNumber,
	"dictTypes": dictTypes,
}

// oneLine collapses the white space of s, for text written into line comments.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sqlString quotes s as an SQL string literal.
func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// jsString quotes s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// sqlNumber returns s unquoted when it is a decimal integer, else as a string literal.
func sqlNumber(s string) string {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	return sqlString(s)
}

// dictTypes returns the distinct dictionary types of fs in field order.
func dictTypes(fs []*Field) []string {
	var out []string
	for _, f := range fs {
		if d := f.Policy.DictType; d != "" && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out
}

func hasTemporal(fs []*Field) bool {
	for _, f := range fs {
		if f.Type.Category == schema.CategoryTemporal {
			return true
		}
	}
	return false
}

// validPath reports whether p is a clean relative slash-separated path.
func validPath(p string) bool {
	return p != "" && fs.ValidPath(p) && path.Clean(p) == p
}
