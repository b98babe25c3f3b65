package gen

import (
	"errors"
	"go/token"
	"strconv"
	"strings"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

// Type is the generation view of one table. Every identifier and Go type
// used by the templates is computed here once.
type Type struct {
	// Table is the merged metadata; it must not be modified.
	Table *schema.Table
	// Name is the Go type name, e.g. "DictData".
	Name string
	// Names are the forms of the table name without its prefix.
	Names Names
	// Package is the import path root of the generated Go code.
	Package string
	// Module and Business name the generated package directory and routes.
	Module   string
	Business string
	// Function is the human readable name.
	Function string
	Author   string
	GenType  schema.GenType
	Fields   []*Field
	// ID is the primary-key field.
	ID *Field
	// Tree is set for tree generation.
	Tree *Tree
}

// Field is the generation view of one column.
type Field struct {
	Column *schema.Column
	// Names are the forms of the column name.
	Names Names
	// Name is the exported Go field name, e.g. "DictLabel".
	Name string
	// Var is the Go parameter name, e.g. "dictLabel".
	Var string
	// JSON is the JSON and form field name.
	JSON string
	// Const is the entity constant holding the column name, e.g. "DictDataColumnDictLabel".
	Const string
	// Label is the column comment or a humanized name.
	Label  string
	Type   TypeInfo
	Rule   Rule
	Policy schema.ColumnPolicy
}

// Tree holds the fields of a tree table.
type Tree struct {
	ID     *Field
	Parent *Field
	Name   *Field
}

// Relation links a sub table to its master.
type Relation struct {
	// FK is the sub table field referencing the master.
	FK *Field
	// References is the referenced master field.
	References *Field
	// Field is the Go name of the master's sub list field, e.g. "OrderItems".
	Field string
}

// Collision records an identifier renamed to avoid a reserved word or a duplicate.
type Collision struct {
	Table       string
	Column      string
	Form        Form
	Original    string
	Replacement string
}

// String implements fmt.Stringer.
func (c Collision) String() string {
	return c.Table + "." + c.Column + ": " + c.Form.String() + " identifier " +
		strconv.Quote(c.Original) + " renamed to " + strconv.Quote(c.Replacement)
}

// Insertable returns the fields written on create.
func (t *Type) Insertable() []*Field {
	return t.filter(func(p schema.ColumnPolicy) bool { return p.Insertable })
}

// Editable returns the fields written on update.
func (t *Type) Editable() []*Field {
	return t.filter(func(p schema.ColumnPolicy) bool { return p.Editable })
}

// Listable returns the fields shown in lists.
func (t *Type) Listable() []*Field {
	return t.filter(func(p schema.ColumnPolicy) bool { return p.Listable })
}

// Queryable returns the fields usable as list filters.
func (t *Type) Queryable() []*Field {
	return t.filter(func(p schema.ColumnPolicy) bool { return p.Queryable })
}

// Required returns the fields validated as required.
func (t *Type) Required() []*Field {
	return t.filter(func(p schema.ColumnPolicy) bool { return p.Required })
}

func (t *Type) filter(keep func(schema.ColumnPolicy) bool) []*Field {
	var fs []*Field
	for _, f := range t.Fields {
		if keep(f.Policy) {
			fs = append(fs, f)
		}
	}
	return fs
}

// Field returns the field of the named column.
func (t *Type) Field(column string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Column.Name == column {
			return f, true
		}
	}
	return nil, false
}

// TableConst is the entity constant holding the table name.
func (t *Type) TableConst() string { return t.Name + "Table" }

// QueryName is the name of the generated list filter type.
func (t *Type) QueryName() string { return t.Name + "Query" }

// Receiver returns the receiver name used for the given generated type name.
func (t *Type) Receiver(typeName string) string { return receiver(typeName) }

// Plural returns the plural of the Go type name, e.g. "DictDataList".
func (t *Type) Plural() string { return plural(t.Name) }

// Perm returns the permission prefix, e.g. "system:data".
func (t *Type) Perm() string { return t.Module + ":" + t.Business }

// Route returns the URL path prefix, e.g. "/system/data".
func (t *Type) Route() string { return "/" + t.Module + "/" + t.Business }

// Bound reports whether the field is a BETWEEN filter.
func (f *Field) Bound() bool { return f.Policy.QueryOp == schema.QueryBetween }

// BeginName and EndName are the filter field names of a BETWEEN filter.
func (f *Field) BeginName() string { return "Begin" + f.Name }

// EndName see BeginName.
func (f *Field) EndName() string { return "End" + f.Name }

// Tag returns the validate tag value.
func (f *Field) Tag() string { return f.Rule.Tag() }

// newType builds the generation view of a merged table.
func newType(cfg *Config, t *schema.Table) (*Type, []Collision, error) {
	opts := t.Options
	typ := &Type{
		Table:    t,
		Name:     className(opts.ClassName),
		Names:    cfg.Namer().Names(t.Name),
		Package:  strings.TrimSuffix(opts.PackageName, "/"),
		Module:   snake(opts.ModuleName),
		Business: snake(opts.BusinessName),
		Function: opts.FunctionName,
		Author:   opts.FunctionAuthor,
		GenType:  opts.GenType,
	}
	if typ.Name == "" {
		typ.Name = typ.Names.Pascal
	}
	if typ.Package == "" {
		typ.Package = cfg.Package
	}
	if typ.Module == "" || typ.Business == "" {
		return nil, nil, tablegen.NewTableError(t.Name, "", "module and business names are required")
	}
	if len(t.Columns) == 0 {
		return nil, nil, tablegen.NewTableError(t.Name, "", "table has no columns")
	}
	var (
		collisions []Collision
		methods    = map[string]bool{"TableName": true, "PageNum": true, "PageSize": true}
		taken      = map[string]bool{}
		vars       = map[string]bool{}
		jsons      = map[string]bool{}
	)
	if typ.GenType == schema.GenTree {
		methods["Children"] = true
	}
	for _, c := range t.Columns {
		info, rule, err := MapType(c.Type, c.Nullable)
		if err != nil {
			var ute *tablegen.UnknownTypeError
			if errors.As(err, &ute) {
				ute.Table, ute.Column = t.Name, c.Name
			}
			return nil, nil, err
		}
		rule.Required = c.Policy.Required
		f := &Field{
			Column: c,
			Names:  NamesOf(c.Name),
			Type:   info,
			Rule:   rule,
			Policy: c.Policy,
			Label:  strings.TrimSpace(c.Comment),
		}
		if f.Names.Pascal == "" {
			return nil, nil, tablegen.NewTableError(t.Name, c.Name, "column name has no identifier characters")
		}
		if f.Label == "" {
			f.Label = humanize(c.Name)
		}
		f.JSON = f.Names.Camel
		if jsons[f.JSON] {
			n := unique(f.JSON, jsons)
			collisions = append(collisions, collision(t.Name, c.Name, Camel, f.JSON, n))
			f.JSON = n
		}
		jsons[f.JSON] = true
		f.Name = f.Names.Pascal
		if methods[f.Name] {
			collisions = append(collisions, collision(t.Name, c.Name, Pascal, f.Name, f.Name+"_"))
			f.Name += "_"
		}
		if taken[f.Name] {
			n := unique(f.Name, taken)
			collisions = append(collisions, collision(t.Name, c.Name, Pascal, f.Name, n))
			f.Name = n
		}
		taken[f.Name] = true
		f.Var = f.Names.Camel
		if reserved(f.Var) || locals[f.Var] {
			collisions = append(collisions, collision(t.Name, c.Name, Camel, f.Var, f.Var+"_"))
			f.Var += "_"
		}
		if vars[f.Var] {
			n := unique(f.Var, vars)
			if n != f.JSON {
				collisions = append(collisions, collision(t.Name, c.Name, Camel, f.Var, n))
			}
			f.Var = n
		}
		vars[f.Var] = true
		f.Const = typ.Name + "Column" + f.Name
		typ.Fields = append(typ.Fields, f)
	}
	pks := t.PrimaryKeys()
	switch {
	case len(pks) == 0:
		return nil, nil, tablegen.NewTableError(t.Name, "", "table has no primary key")
	case len(pks) > 1:
		return nil, nil, tablegen.NewTableError(t.Name, pks[1].Name, "composite primary keys are not supported")
	}
	typ.ID, _ = typ.Field(pks[0].Name)
	return typ, collisions, nil
}

// className returns the configured class name unchanged when it is already
// an exported Go identifier.
func className(name string) string {
	if token.IsIdentifier(name) && token.IsExported(name) {
		return name
	}
	return pascal(name)
}

// locals are the local names used by generated Go code next to field parameters.
var locals = map[string]bool{"ctx": true, "d": true, "e": true, "err": true, "ids": true, "q": true, "s": true, "tx": true}

func collision(table, column string, form Form, from, to string) Collision {
	return Collision{Table: table, Column: column, Form: form, Original: from, Replacement: to}
}

// unique returns name with the smallest numeric suffix not yet taken.
func unique(name string, taken map[string]bool) string {
	for i := 2; ; i++ {
		if n := name + strconv.Itoa(i); !taken[n] {
			return n
		}
	}
}
