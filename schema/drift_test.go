package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen/schema"
	"github.com/syssam/tablegen/schema/schematest"
)

func TestDiffConfig(t *testing.T) {
	live := schematest.Dept()
	stored := &schema.TableConfig{
		Table:   "sys_dept",
		Options: schema.Options{GenType: schema.GenTree, TreeName: "dept_title"},
		Columns: []schema.ColumnConfig{
			{Name: "dept_id"},
			{Name: "dept_title"},
			{Name: "legacy"},
			{Name: "parent_id"},
			{Name: "dept_name"},
		},
	}
	d := schema.DiffConfig(stored, live)
	require.Len(t, d.Changes, 5)
	assert.Equal(t, "sys_dept.dept_title: column dropped, still named by TreeName", d.Changes[0].String())
	assert.True(t, d.Changes[0].Breaking)
	assert.Equal(t, "legacy", d.Changes[1].Column)
	assert.False(t, d.Changes[1].Breaking)
	for i, col := range []string{"order_num", "status", "create_time"} {
		assert.Equal(t, col, d.Changes[2+i].Column)
		assert.Equal(t, "column added", d.Changes[2+i].Message)
	}
	assert.True(t, d.HasBreaking())
	assert.Contains(t, d.String(), "[BREAKING]")
}

func TestDiffConfig_Empty(t *testing.T) {
	live := schematest.Order()
	stored := schema.ConfigOf(live)
	d := schema.DiffConfig(stored, live)
	assert.True(t, d.Empty())
	assert.False(t, d.HasBreaking())
	assert.Equal(t, "No changes", d.String())
	assert.True(t, schema.DiffConfig(nil, live).Empty())
}
