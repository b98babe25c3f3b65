package schema

// GenType selects the generation template family for a table.
type GenType string

// Generation types.
const (
	GenCRUD GenType = "crud"
	GenTree GenType = "tree"
	GenSub  GenType = "sub"
)

// Valid reports whether g is a known generation type.
func (g GenType) Valid() bool {
	switch g {
	case GenCRUD, GenTree, GenSub:
		return true
	}
	return false
}

// Options holds the table-level generation options.
type Options struct {
	// PackageName is the import path root of the generated Go code, e.g. "example.com/admin".
	PackageName string `yaml:"package_name" json:"package_name"`
	// ModuleName groups business objects, e.g. "system".
	ModuleName string `yaml:"module_name" json:"module_name"`
	// BusinessName names the business object inside its module, e.g. "data".
	BusinessName string `yaml:"business_name" json:"business_name"`
	// FunctionName is the human readable name used in comments and menus.
	FunctionName string `yaml:"function_name" json:"function_name"`
	// ClassName is the generated type name. Empty derives it from the table name.
	ClassName string `yaml:"class_name,omitempty" json:"class_name,omitempty"`
	// FunctionAuthor is written into generated doc comments.
	FunctionAuthor string `yaml:"function_author,omitempty" json:"function_author,omitempty"`
	// GenType is crud, tree or sub.
	GenType GenType `yaml:"gen_type" json:"gen_type"`

	// TreeCode, TreeParentCode and TreeName name the id, parent id and label columns of a tree table.
	TreeCode       string `yaml:"tree_code,omitempty" json:"tree_code,omitempty"`
	TreeParentCode string `yaml:"tree_parent_code,omitempty" json:"tree_parent_code,omitempty"`
	TreeName       string `yaml:"tree_name,omitempty" json:"tree_name,omitempty"`

	// SubTableName is the sub table of a master-sub pair.
	SubTableName string `yaml:"sub_table_name,omitempty" json:"sub_table_name,omitempty"`
	// SubTableFKName is the sub table column referencing the master.
	SubTableFKName string `yaml:"sub_table_fk_name,omitempty" json:"sub_table_fk_name,omitempty"`
	// SubTableReferences is the referenced master column. Empty means the master primary key.
	SubTableReferences string `yaml:"sub_table_references,omitempty" json:"sub_table_references,omitempty"`

	// ParentMenuID is used by the menu SQL artifact.
	ParentMenuID string `yaml:"parent_menu_id,omitempty" json:"parent_menu_id,omitempty"`
}

// Column is the metadata of one table column.
type Column struct {
	Name          string
	Type          NativeType
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
	// Default is nil when the column has no default.
	Default  *string
	Comment  string
	Position int
	Policy   ColumnPolicy
}

// Table is the metadata of one table.
type Table struct {
	Name    string
	Dialect string
	Comment string
	// Columns in ordinal order.
	Columns []*Column
	Options Options
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// PrimaryKeys returns the primary-key columns in ordinal order.
func (t *Table) PrimaryKeys() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	c := *t
	c.Columns = make([]*Column, len(t.Columns))
	for i, col := range t.Columns {
		cc := *col
		if col.Default != nil {
			d := *col.Default
			cc.Default = &d
		}
		if col.Type.EnumValues != nil {
			cc.Type.EnumValues = append([]string(nil), col.Type.EnumValues...)
		}
		c.Columns[i] = &cc
	}
	return &c
}
