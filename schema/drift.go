package schema

import "strings"

// Change is one difference between a stored config and the live table.
type Change struct {
	Table   string
	Column  string
	Message string
	// Breaking marks changes that invalidate the stored table options.
	Breaking bool
}

// String returns the change as "table.column: message".
func (c *Change) String() string {
	return c.Table + "." + c.Column + ": " + c.Message
}

// Drift lists the differences between a stored config and the live columns
// of its table.
type Drift struct {
	Changes []*Change
}

// Empty reports whether the stored config matches the live columns.
func (d *Drift) Empty() bool { return len(d.Changes) == 0 }

// HasBreaking reports whether any change invalidates the stored options.
func (d *Drift) HasBreaking() bool {
	for _, c := range d.Changes {
		if c.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the drift.
func (d *Drift) String() string {
	if d.Empty() {
		return "No changes"
	}
	var sb strings.Builder
	for _, c := range d.Changes {
		sb.WriteString("  - ")
		sb.WriteString(c.String())
		if c.Breaking {
			sb.WriteString(" [BREAKING]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// DiffConfig compares a stored config with the live table. Dropped columns
// come first in stored order, then added columns in live order. Dropping a
// column named by the tree or sub-table options is breaking.
func DiffConfig(stored *TableConfig, live *Table) *Drift {
	d := &Drift{}
	if stored == nil || live == nil {
		return d
	}
	referenced := map[string]string{}
	o := stored.Options
	for _, ref := range []struct{ opt, col string }{
		{"TreeCode", o.TreeCode},
		{"TreeParentCode", o.TreeParentCode},
		{"TreeName", o.TreeName},
		{"SubTableReferences", o.SubTableReferences},
	} {
		if _, ok := referenced[ref.col]; !ok && ref.col != "" {
			referenced[ref.col] = ref.opt
		}
	}
	for _, c := range stored.Columns {
		if _, ok := live.Column(c.Name); ok {
			continue
		}
		ch := &Change{Table: live.Name, Column: c.Name, Message: "column dropped"}
		if opt, ok := referenced[c.Name]; ok {
			ch.Message += ", still named by " + opt
			ch.Breaking = true
		}
		d.Changes = append(d.Changes, ch)
	}
	for _, c := range live.Columns {
		if _, ok := stored.Column(c.Name); !ok {
			d.Changes = append(d.Changes, &Change{Table: live.Name, Column: c.Name, Message: "column added"})
		}
	}
	return d
}
