package schema

// TableConfig is the persisted, user-editable generation policy of a table.
// It is keyed by table name and is the only state that outlives a generation call.
type TableConfig struct {
	Table   string         `yaml:"table" json:"table"`
	Comment string         `yaml:"comment,omitempty" json:"comment,omitempty"`
	Options Options        `yaml:"options" json:"options"`
	Columns []ColumnConfig `yaml:"columns" json:"columns"`
}

// ColumnConfig is the stored policy of one column.
type ColumnConfig struct {
	Name         string `yaml:"name" json:"name"`
	Sort         int    `yaml:"sort" json:"sort"`
	ColumnPolicy `yaml:",inline" json:",inline"`
}

// Column returns the stored config of the named column.
func (c *TableConfig) Column(name string) (ColumnConfig, bool) {
	for _, col := range c.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnConfig{}, false
}

// Clone returns a deep copy of c.
func (c *TableConfig) Clone() *TableConfig {
	if c == nil {
		return nil
	}
	cc := *c
	cc.Columns = append([]ColumnConfig(nil), c.Columns...)
	return &cc
}

// ConfigOf captures the current options and column policies of t.
func ConfigOf(t *Table) *TableConfig {
	cfg := &TableConfig{
		Table:   t.Name,
		Comment: t.Comment,
		Options: t.Options,
		Columns: make([]ColumnConfig, 0, len(t.Columns)),
	}
	for i, c := range t.Columns {
		cfg.Columns = append(cfg.Columns, ColumnConfig{
			Name:         c.Name,
			Sort:         i + 1,
			ColumnPolicy: c.Policy,
		})
	}
	return cfg
}
