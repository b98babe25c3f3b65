package compiler

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/archive"
	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/compiler/store"
	"github.com/syssam/tablegen/introspect"
	"github.com/syssam/tablegen/schema"
	"github.com/syssam/tablegen/schema/schematest"
)

// fakeInspector serves fixture tables.
type fakeInspector struct {
	tables map[string]*schema.Table
	err    error
}

func newFake(tables ...*schema.Table) *fakeInspector {
	f := &fakeInspector{tables: make(map[string]*schema.Table)}
	for _, t := range tables {
		f.tables[t.Name] = t
	}
	return f
}

func (f *fakeInspector) Dialect() string { return "mysql" }

func (f *fakeInspector) InspectTable(_ context.Context, name string) (*schema.Table, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tables[name]
	if !ok {
		return nil, tablegen.NewNotFoundError(name, "")
	}
	t = t.Clone()
	for _, c := range t.Columns {
		c.Policy = schema.DefaultPolicy(c)
	}
	return t, nil
}

func (f *fakeInspector) Tables(context.Context) ([]introspect.TableInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	var infos []introspect.TableInfo
	for _, t := range f.tables {
		infos = append(infos, introspect.TableInfo{Name: t.Name, Comment: t.Comment})
	}
	slices.SortFunc(infos, func(a, b introspect.TableInfo) int { return strings.Compare(a.Name, b.Name) })
	return infos, nil
}

func newService(t *testing.T, insp introspect.Inspector, st store.Store, opts ...Option) *Service {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	cfg, err := gen.NewConfig(
		gen.WithPrefixes("sys_"),
		gen.WithDateString("2024-05-01"),
		gen.WithAuthor("ruoyi"),
		gen.WithLogger(logger),
	)
	require.NoError(t, err)
	if st == nil {
		st = store.NewMemory()
	}
	s, err := New(insp, st, cfg, opts...)
	require.NoError(t, err)
	return s
}

// blanks matches the alignment padding of formatted code.
var blanks = regexp.MustCompile(`[ \t]+`)

func unpack(t *testing.T, res *Result) map[string]string {
	t.Helper()
	files, err := archive.Read(res.Archive)
	require.NoError(t, err)
	out := make(map[string]string, len(files))
	for p, b := range files {
		out[p] = blanks.ReplaceAllString(string(b), " ")
	}
	return out
}

func TestNew_Invalid(t *testing.T) {
	cfg := gen.MustNewConfig()
	_, err := New(nil, store.NewMemory(), cfg)
	assert.Error(t, err)
	_, err = New(newFake(), nil, cfg)
	assert.Error(t, err)
	_, err = New(newFake(), store.NewMemory(), nil)
	assert.Error(t, err)
	_, err = New(newFake(), store.NewMemory(), cfg, WithBatchWorkers(0))
	assert.Error(t, err)
	_, err = New(newFake(), store.NewMemory(), cfg, WithTemplates(nil))
	assert.Error(t, err)
	_, err = New(newFake(), store.NewMemory(), cfg, WithTemplateDir(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, err)
}

func TestService_Generate(t *testing.T) {
	s := newService(t, newFake(schematest.DictData()), nil)
	res, err := s.Generate(context.Background(), "sys_dict_data")
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, []string{"sys_dict_data"}, res.Tables)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, []string{
		"go/system/controller/data_controller.go",
		"go/system/dao/data_dao.go",
		"go/system/model/data.go",
		"go/system/service/data_service.go",
		"sql/data_menu.sql",
		"vue/api/system/data.js",
		"vue/views/system/data/index.vue",
	}, res.Files.Paths())
	for i := 1; i < len(res.Files); i++ {
		assert.Less(t, res.Files[i-1].Path, res.Files[i].Path)
	}

	out := unpack(t, res)
	require.Len(t, out, 7)
	entity := out["go/system/model/data.go"]
	assert.Contains(t, entity, "DictCode int64")
	assert.Contains(t, entity, `validate:"required,max=100"`)
	for _, p := range []string{
		"go/system/dao/data_dao.go",
		"go/system/service/data_service.go",
		"go/system/controller/data_controller.go",
	} {
		assert.NotContains(t, out[p], "dict_label", p)
	}
	assert.Contains(t, out["go/system/controller/data_controller.go"], "DictLabel")
	assert.NotContains(t, entity, res.RequestID)
}

func TestService_Deterministic(t *testing.T) {
	s := newService(t, newFake(schematest.DictData(), schematest.Dept()), nil)
	a, err := s.GenerateBatch(context.Background(), "sys_dict_data", "sys_dept")
	require.NoError(t, err)
	b, err := s.GenerateBatch(context.Background(), "sys_dict_data", "sys_dept")
	require.NoError(t, err)
	assert.Equal(t, a.Archive, b.Archive)
	assert.NotEqual(t, a.RequestID, b.RequestID)

	// Request order does not change the archive.
	c, err := s.GenerateBatch(context.Background(), "sys_dept", "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, a.Archive, c.Archive)
}

func TestService_GenerateBatch(t *testing.T) {
	s := newService(t, newFake(schematest.DictData(), schematest.Dept()), nil, WithBatchWorkers(2))
	res, err := s.GenerateBatch(context.Background(), "sys_dict_data", "sys_dept")
	require.NoError(t, err)
	assert.Len(t, res.Files, 14)
	out := unpack(t, res)
	assert.Contains(t, out, "go/system/model/dept.go")
	assert.Contains(t, out, "go/system/model/data.go")
}

func TestService_GenerateBatch_Errors(t *testing.T) {
	s := newService(t, newFake(schematest.DictData(), schematest.Area()), nil)
	ctx := context.Background()

	t.Run("unknown type", func(t *testing.T) {
		res, err := s.Generate(ctx, "sys_area")
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, tablegen.IsUnknownType(err))
		assert.Contains(t, err.Error(), "shape")
	})

	t.Run("one failure fails the batch", func(t *testing.T) {
		res, err := s.GenerateBatch(ctx, "sys_dict_data", "sys_area", "sys_missing")
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, tablegen.IsUnknownType(err))
		assert.True(t, tablegen.IsNotFound(err))
		assert.NotContains(t, err.Error(), "sys_dict_data")
	})

	t.Run("duplicate table", func(t *testing.T) {
		_, err := s.GenerateBatch(ctx, "sys_dict_data", "sys_dict_data")
		assert.True(t, tablegen.IsTableError(err))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := s.GenerateBatch(ctx)
		assert.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.Generate(cctx, "sys_dict_data")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestService_ConnectionError(t *testing.T) {
	insp := newFake()
	insp.err = tablegen.NewConnectionError("mysql", "", "ping", context.DeadlineExceeded)
	s := newService(t, insp, nil)
	_, err := s.Generate(context.Background(), "sys_user")
	assert.True(t, tablegen.Retryable(err))
	_, err = s.Tables(context.Background())
	assert.True(t, tablegen.Retryable(err))
}

func TestService_Tables(t *testing.T) {
	s := newService(t, newFake(schematest.DictData(), schematest.Dept()), nil)
	tables, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []introspect.TableInfo{
		{Name: "sys_dept", Comment: "部门表"},
		{Name: "sys_dict_data", Comment: "字典数据表"},
	}, tables)
}

func TestService_Config(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	s := newService(t, newFake(schematest.DictData()), st)

	cfg, err := s.LoadConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, "data", cfg.Options.BusinessName)
	assert.Equal(t, "字典数据", cfg.Options.FunctionName)
	names, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names, "LoadConfig does not persist defaults")

	cfg, err = s.InitConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Len(t, cfg.Columns, 9)

	cfg.Options.FunctionName = "数据字典"
	require.NoError(t, s.SaveConfig(ctx, cfg))
	again, err := s.InitConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, "数据字典", again.Options.FunctionName, "InitConfig keeps a stored config")

	loaded, err := s.LoadConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = s.LoadConfig(ctx, "sys_missing")
	assert.True(t, tablegen.IsNotFound(err))
}

func TestService_SyncConfig(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newFake(schematest.DictData()), nil)

	stored := &schema.TableConfig{
		Table:   "sys_dict_data",
		Options: schema.Options{ModuleName: "tool", GenType: schema.GenCRUD},
		Columns: []schema.ColumnConfig{
			{Name: "dict_label", Sort: 1, ColumnPolicy: schema.ColumnPolicy{
				Insertable: true, Listable: true, QueryOp: schema.QueryEQ, HTMLType: schema.HTMLTextarea,
			}},
			{Name: "legacy", Sort: 2, ColumnPolicy: schema.ColumnPolicy{QueryOp: schema.QueryEQ, HTMLType: schema.HTMLInput}},
		},
	}
	require.NoError(t, s.SaveConfig(ctx, stored))

	drift, err := s.Drift(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Len(t, drift.Changes, 9)
	assert.Equal(t, "legacy", drift.Changes[0].Column)

	synced, err := s.SyncConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, "tool", synced.Options.ModuleName)
	require.Len(t, synced.Columns, 9)
	_, ok := synced.Column("legacy")
	assert.False(t, ok)
	label, ok := synced.Column("dict_label")
	require.True(t, ok)
	assert.Equal(t, schema.HTMLTextarea, label.HTMLType)
	assert.False(t, label.Editable)
	remark, ok := synced.Column("remark")
	require.True(t, ok)
	assert.False(t, remark.Queryable)

	loaded, err := s.LoadConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, synced, loaded)
	drift, err = s.Drift(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.True(t, drift.Empty())

	_, err = s.Drift(ctx, "sys_dept")
	assert.Error(t, err)

	res, err := s.Generate(ctx, "sys_dict_data")
	require.NoError(t, err)
	assert.Contains(t, res.Files.Paths(), "go/tool/model/data.go")
}

func TestService_StoredOverride(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newFake(schematest.DictData()), nil)
	cfg, err := s.InitConfig(ctx, "sys_dict_data")
	require.NoError(t, err)
	for i := range cfg.Columns {
		if cfg.Columns[i].Name == "dict_label" {
			cfg.Columns[i].Required = false
		}
	}
	require.NoError(t, s.SaveConfig(ctx, cfg))

	res, err := s.Generate(ctx, "sys_dict_data")
	require.NoError(t, err)
	entity := unpack(t, res)["go/system/model/data.go"]
	assert.Contains(t, entity, "DictLabel string `gorm:\"column:dict_label\" json:\"dictLabel\" validate:\"omitempty,max=100\"`")
}

func TestService_MasterSub(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newFake(schematest.Order(), schematest.OrderItem()), nil)
	require.NoError(t, s.SaveConfig(ctx, &schema.TableConfig{Table: "sys_order", Options: schema.Options{
		GenType:        schema.GenSub,
		SubTableName:   "sys_order_item",
		SubTableFKName: "order_id",
	}}))

	res, err := s.Generate(ctx, "sys_order")
	require.NoError(t, err)
	out := unpack(t, res)
	assert.Len(t, out, 8)
	assert.Contains(t, out["go/system/model/item.go"], "type OrderItem struct")
	assert.Contains(t, out["go/system/dao/order_dao.go"], `Preload("OrderItems")`)

	t.Run("missing sub table", func(t *testing.T) {
		s := newService(t, newFake(schematest.Order()), nil)
		require.NoError(t, s.SaveConfig(ctx, &schema.TableConfig{Table: "sys_order", Options: schema.Options{
			GenType:        schema.GenSub,
			SubTableName:   "sys_order_item",
			SubTableFKName: "order_id",
		}}))
		_, err := s.Generate(ctx, "sys_order")
		assert.True(t, tablegen.IsDanglingReference(err))
	})

	t.Run("dangling foreign key", func(t *testing.T) {
		s := newService(t, newFake(schematest.Order(), schematest.OrderItem()), nil)
		require.NoError(t, s.SaveConfig(ctx, &schema.TableConfig{Table: "sys_order", Options: schema.Options{
			GenType:        schema.GenSub,
			SubTableName:   "sys_order_item",
			SubTableFKName: "order_ref",
		}}))
		res, err := s.Generate(ctx, "sys_order")
		assert.Nil(t, res)
		assert.True(t, tablegen.IsDanglingReference(err))
	})
}

func TestService_InvalidTree(t *testing.T) {
	ctx := context.Background()
	s := newService(t, newFake(schematest.DictData()), nil)
	require.NoError(t, s.SaveConfig(ctx, &schema.TableConfig{Table: "sys_dict_data", Options: schema.Options{
		GenType:        schema.GenTree,
		TreeParentCode: "parent_code",
	}}))
	res, err := s.Generate(ctx, "sys_dict_data")
	assert.Nil(t, res)
	assert.True(t, tablegen.IsInvalidTreeConfig(err))
}

func TestService_Warnings(t *testing.T) {
	notice := schematest.Table("sys_notice", "通知公告表",
		schematest.Column("notice_id", schema.TypeBigInt, schematest.PK),
		schematest.Column("type", schema.TypeChar, schematest.Len(1)),
	)
	logger, hook := logtest.NewNullLogger()
	s := newService(t, newFake(notice), nil, WithLogger(logger))

	res, err := s.Generate(context.Background(), "sys_notice")
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, "type", res.Warnings[0].Column)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			assert.Equal(t, res.RequestID, e.Data["request_id"])
			assert.Equal(t, "sys_notice", e.Data["table"])
			assert.Contains(t, e.Message, `"type"`)
		}
	}
	assert.True(t, warned)
}

func TestService_TemplateDir(t *testing.T) {
	dir := t.TempDir()
	tmpl := "{{/* path: docs/{{.Table.Business}}.md */}}\n# {{.Table.Function}}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.tmpl"), []byte(tmpl), 0o644))
	s := newService(t, newFake(schematest.DictData()), nil, WithTemplateDir(dir))
	res, err := s.Generate(context.Background(), "sys_dict_data")
	require.NoError(t, err)
	assert.Contains(t, unpack(t, res)["docs/data.md"], "# 字典数据")
}

func TestService_Kinds(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg, err := gen.NewConfig(gen.WithPrefixes("sys_"), gen.WithKinds(gen.KindEntity, gen.KindMenuSQL), gen.WithLogger(logger))
	require.NoError(t, err)
	s, err := New(newFake(schematest.DictData()), store.NewMemory(), cfg)
	require.NoError(t, err)
	res, err := s.Generate(context.Background(), "sys_dict_data")
	require.NoError(t, err)
	assert.Equal(t, []string{"go/system/model/data.go", "sql/data_menu.sql"}, res.Files.Paths())
}
