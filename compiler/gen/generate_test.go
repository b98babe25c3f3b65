package gen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema/schematest"
)

type stubTemplate struct {
	kind Kind
	path string
	out  string
	err  error
	skip bool
}

func (s *stubTemplate) Kind() Kind           { return s.kind }
func (s *stubTemplate) Skip(*Context) bool   { return s.skip }
func (s *stubTemplate) Path(*Context) string { return s.path }
func (s *stubTemplate) Render(*Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.out), nil
}

func dictContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	ctx, err := NewContext(testConfig(t, opts...), Input{Table: schematest.DictData()}, nil)
	require.NoError(t, err)
	return ctx
}

func TestGenerator_Render(t *testing.T) {
	gc := dictContext(t)
	set := TemplateSet{
		&stubTemplate{kind: KindEntity, path: "go/system/model/data.go", out: "a"},
		&stubTemplate{kind: KindDAO, path: "go/system/dao/data_dao.go", out: "b"},
		&stubTemplate{kind: KindSubEntity, path: "go/system/model/item.go", skip: true},
	}
	files, err := NewGenerator(gc.Config).Render(context.Background(), gc, set)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, KindEntity, files[0].Kind)
	assert.Equal(t, "a", string(files[0].Content))
	assert.Equal(t, []string{"go/system/dao/data_dao.go", "go/system/model/data.go"}, files.Paths())
	assert.Equal(t, []byte("b"), files.Map()["go/system/dao/data_dao.go"])
}

func TestGenerator_AllOrNothing(t *testing.T) {
	gc := dictContext(t)
	cause := errors.New("boom")
	set := TemplateSet{
		&stubTemplate{kind: KindEntity, path: "go/system/model/data.go", out: "a"},
		&stubTemplate{kind: KindDAO, path: "go/system/dao/data_dao.go", err: cause},
		&stubTemplate{kind: KindView, path: "vue/views/system/data/index.vue", out: "c"},
	}
	files, err := NewGenerator(gc.Config).Render(context.Background(), gc, set)
	require.Error(t, err)
	assert.Nil(t, files)
	assert.True(t, IsGenerationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "data_dao.go")
}

func TestGenerator_DuplicatePath(t *testing.T) {
	gc := dictContext(t)
	set := TemplateSet{
		&stubTemplate{kind: KindEntity, path: "go/system/model/data.go"},
		&stubTemplate{kind: KindSubEntity, path: "go/system/model/data.go"},
	}
	_, err := NewGenerator(gc.Config).Render(context.Background(), gc, set)
	require.Error(t, err)
	assert.True(t, tablegen.IsPackaging(err))
}

func TestGenerator_InvalidPath(t *testing.T) {
	gc := dictContext(t)
	for _, p := range []string{"", "../escape.go", "/abs.go", "go//double.go"} {
		set := TemplateSet{&stubTemplate{kind: KindEntity, path: p}}
		_, err := NewGenerator(gc.Config).Render(context.Background(), gc, set)
		assert.True(t, IsGenerationError(err), "path %q", p)
	}
}

func TestGenerator_Kinds(t *testing.T) {
	gc := dictContext(t, WithKinds(KindAPI))
	files, err := NewGenerator(gc.Config).Render(context.Background(), gc, TextTemplates())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "vue/api/system/data.js", files[0].Path)
}

func TestGenerator_Canceled(t *testing.T) {
	gc := dictContext(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := TemplateSet{&stubTemplate{kind: KindEntity, path: "go/system/model/data.go"}}
	_, err := NewGenerator(gc.Config).Render(ctx, gc, set)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerator_NilContext(t *testing.T) {
	_, err := NewGenerator(testConfig(t)).Render(context.Background(), nil, nil)
	assert.True(t, IsConfigError(err))
}

func TestNewFile(t *testing.T) {
	gc := dictContext(t)
	f := NewFile(gc, "model")
	f.Type().Id("Empty").Struct()
	var buf bytes.Buffer
	require.NoError(t, f.Render(&buf))
	out := buf.String()
	assert.Contains(t, out, "// Code generated by tablegen. DO NOT EDIT.")
	assert.Contains(t, out, "// Generation date: 2024-05-01")
	assert.Contains(t, out, "package model")
}

func TestGoType(t *testing.T) {
	gc := dictContext(t)
	render := func(s *jen.Statement) string { return jen.Var().Id("v").Add(s).GoString() }

	status, _ := gc.Table.Field("status")
	assert.Equal(t, "var v *string", render(GoType(status)))
	assert.Equal(t, "var v string", render(BaseType(status)))

	created, _ := gc.Table.Field("create_time")
	assert.Equal(t, "var v *time.Time", render(GoType(created)))

	assert.Equal(t, "go/system/model/data.go", OutputPath(gc, "model", "data.go"))
}
