package gen

import (
	"strings"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

// Input is one table of a generation request.
type Input struct {
	// Table is the live metadata from introspection.
	Table *schema.Table
	// Stored is the persisted config, nil when none exists.
	Stored *schema.TableConfig
}

// Context is passed to every template of one generation request. It is
// built once by NewContext and must be treated as read-only afterwards.
type Context struct {
	Config *Config
	// Table is the generated (master) table.
	Table *Type
	// Sub is the sub table of master-sub generation.
	Sub *Type
	// Relation links Sub to Table.
	Relation *Relation
	// Warnings are identifier renames the caller should surface.
	Warnings []Collision
}

// Date returns the generation date.
func (c *Context) Date() string { return c.Config.Date }

// Header returns the generated-code marker line.
func (c *Context) Header() string { return c.Config.Header }

// Types returns the master type followed by the sub type, if any.
func (c *Context) Types() []*Type {
	if c.Sub != nil {
		return []*Type{c.Table, c.Sub}
	}
	return []*Type{c.Table}
}

// ImportPath returns the import path of a generated Go package, e.g. "example.com/admin/system/model".
func (c *Context) ImportPath(pkg string) string {
	return c.Table.Package + "/" + c.Table.Module + "/" + pkg
}

// NewContext merges live metadata with stored configs, maps every column
// and validates tree and master-sub options. Nothing is rendered when it fails.
func NewContext(cfg *Config, master Input, sub *Input) (*Context, error) {
	if master.Table == nil {
		return nil, NewConfigError("Table", nil, "table metadata is required")
	}
	mt := Merge(cfg, master.Table, master.Stored)
	if !mt.Options.GenType.Valid() {
		return nil, tablegen.NewTableError(mt.Name, "", "unknown generation type "+string(mt.Options.GenType))
	}
	typ, warnings, err := newType(cfg, mt)
	if err != nil {
		return nil, err
	}
	ctx := &Context{Config: cfg, Table: typ, Warnings: warnings}
	switch typ.GenType {
	case schema.GenTree:
		if typ.Tree, err = resolveTree(typ); err != nil {
			return nil, err
		}
	case schema.GenSub:
		if err := ctx.resolveSub(cfg, sub); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// resolveTree resolves the tree options to fields of t.
func resolveTree(t *Type) (*Tree, error) {
	opts := t.Table.Options
	code, parent, name := opts.TreeCode, opts.TreeParentCode, opts.TreeName
	if code == "" {
		code = t.ID.Column.Name
	}
	if parent == "" {
		parent = "parent_id"
	}
	if name == "" {
		for _, f := range t.Fields {
			if n := f.Names.Snake; n == "name" || strings.HasSuffix(n, "_name") {
				name = f.Column.Name
				break
			}
		}
	}
	tree := &Tree{}
	for _, o := range []struct {
		option, column string
		field          **Field
	}{
		{"TreeCode", code, &tree.ID},
		{"TreeParentCode", parent, &tree.Parent},
		{"TreeName", name, &tree.Name},
	} {
		if o.column == "" {
			return nil, tablegen.NewInvalidTreeConfigError(t.Table.Name, o.option, "", "no column configured")
		}
		f, ok := t.Field(o.column)
		if !ok {
			return nil, tablegen.NewInvalidTreeConfigError(t.Table.Name, o.option, o.column, "column does not exist")
		}
		*o.field = f
	}
	if !tree.ID.Type.Comparable() || tree.ID.Type.Slice() {
		return nil, tablegen.NewInvalidTreeConfigError(t.Table.Name, "TreeCode", tree.ID.Column.Name,
			"tree id must be an integer or string column")
	}
	if tree.ID.Type.String() != tree.Parent.Type.String() {
		return nil, tablegen.NewInvalidTreeConfigError(t.Table.Name, "TreeParentCode", tree.Parent.Column.Name,
			"parent column type "+tree.Parent.Type.String()+" does not match id type "+tree.ID.Type.String())
	}
	return tree, nil
}

// resolveSub builds the sub type and checks that the relation resolves on both sides.
func (c *Context) resolveSub(cfg *Config, sub *Input) error {
	master := c.Table
	opts := master.Table.Options
	if sub == nil || sub.Table == nil {
		return tablegen.NewDanglingReferenceError(master.Table.Name, opts.SubTableName, "", "sub table metadata is missing")
	}
	if opts.SubTableName != "" && opts.SubTableName != sub.Table.Name {
		return tablegen.NewDanglingReferenceError(master.Table.Name, sub.Table.Name, "",
			"configured sub table is "+opts.SubTableName)
	}
	st := Merge(cfg, sub.Table, sub.Stored)
	st.Options.ModuleName = opts.ModuleName
	st.Options.PackageName = opts.PackageName
	st.Options.GenType = schema.GenCRUD
	typ, warnings, err := newType(cfg, st)
	if err != nil {
		return err
	}
	if typ.Name == master.Name || typ.Business == master.Business {
		return tablegen.NewTableError(sub.Table.Name, "", "sub table derives the same names as its master "+master.Table.Name)
	}
	if opts.SubTableFKName == "" {
		return tablegen.NewDanglingReferenceError(master.Table.Name, sub.Table.Name, "", "no foreign key column configured")
	}
	fk, ok := typ.Field(opts.SubTableFKName)
	if !ok {
		return tablegen.NewDanglingReferenceError(master.Table.Name, sub.Table.Name, opts.SubTableFKName,
			"foreign key column does not exist in the sub table")
	}
	refName := opts.SubTableReferences
	if refName == "" {
		refName = master.ID.Column.Name
	}
	ref, ok := master.Field(refName)
	if !ok {
		return tablegen.NewDanglingReferenceError(master.Table.Name, sub.Table.Name, refName,
			"referenced column does not exist in the master table")
	}
	if fk.Type.String() != ref.Type.String() {
		return tablegen.NewDanglingReferenceError(master.Table.Name, sub.Table.Name, fk.Column.Name,
			"foreign key type "+fk.Type.String()+" does not match referenced type "+ref.Type.String())
	}
	field := plural(typ.Name)
	if _, clash := fieldNamed(master, field); clash {
		field += "Items"
	}
	c.Sub = typ
	c.Relation = &Relation{FK: fk, References: ref, Field: field}
	c.Warnings = append(c.Warnings, warnings...)
	return nil
}

func fieldNamed(t *Type, name string) (*Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Merge returns a copy of the live table with options and column policies
// resolved. Stored column records replace derived defaults wholesale;
// stored columns missing from the live table are dropped; new columns get
// derived defaults. The live column order wins.
func Merge(cfg *Config, live *schema.Table, stored *schema.TableConfig) *schema.Table {
	t := live.Clone()
	t.Options = mergeOptions(DefaultOptions(cfg, live), stored)
	for _, c := range t.Columns {
		if stored != nil {
			if sc, ok := stored.Column(c.Name); ok {
				c.Policy = sc.ColumnPolicy
				continue
			}
		}
		c.Policy = schema.DefaultPolicy(c)
	}
	return t
}

// mergeOptions overlays the non-empty stored options on the defaults.
func mergeOptions(o schema.Options, stored *schema.TableConfig) schema.Options {
	if stored == nil {
		return o
	}
	s := stored.Options
	for _, p := range []struct{ dst, src *string }{
		{&o.PackageName, &s.PackageName},
		{&o.ModuleName, &s.ModuleName},
		{&o.BusinessName, &s.BusinessName},
		{&o.FunctionName, &s.FunctionName},
		{&o.ClassName, &s.ClassName},
		{&o.FunctionAuthor, &s.FunctionAuthor},
		{&o.TreeCode, &s.TreeCode},
		{&o.TreeParentCode, &s.TreeParentCode},
		{&o.TreeName, &s.TreeName},
		{&o.SubTableName, &s.SubTableName},
		{&o.SubTableFKName, &s.SubTableFKName},
		{&o.SubTableReferences, &s.SubTableReferences},
		{&o.ParentMenuID, &s.ParentMenuID},
	} {
		if *p.src != "" {
			*p.dst = *p.src
		}
	}
	if s.GenType != "" {
		o.GenType = s.GenType
	}
	return o
}

// DefaultOptions derives the table options used when nothing is stored.
func DefaultOptions(cfg *Config, t *schema.Table) schema.Options {
	names := cfg.Namer().Names(t.Name)
	business := names.Snake
	if i := strings.LastIndexByte(business, '_'); i >= 0 {
		business = business[i+1:]
	}
	function := strings.TrimSpace(t.Comment)
	function = strings.TrimSpace(strings.TrimSuffix(function, "表"))
	if function == "" {
		function = humanize(names.Snake)
	}
	return schema.Options{
		PackageName:    cfg.Package,
		ModuleName:     cfg.Module,
		BusinessName:   business,
		FunctionName:   function,
		ClassName:      names.Pascal,
		FunctionAuthor: cfg.Author,
		GenType:        schema.GenCRUD,
		ParentMenuID:   "0",
	}
}

// DefaultConfig returns the config derived from live metadata alone.
func DefaultConfig(cfg *Config, t *schema.Table) *schema.TableConfig {
	return schema.ConfigOf(Merge(cfg, t, nil))
}

// SyncConfig re-merges a stored config with the live table, dropping
// vanished columns and adding new ones with defaults.
func SyncConfig(cfg *Config, t *schema.Table, stored *schema.TableConfig) *schema.TableConfig {
	return schema.ConfigOf(Merge(cfg, t, stored))
}
