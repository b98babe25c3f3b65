package archive

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/compiler/gen"
)

func TestPackage(t *testing.T) {
	files := gen.Files{
		{Path: "vue/api/system/data.js", Kind: gen.KindAPI, Content: []byte("api")},
		{Path: "go/system/model/data.go", Kind: gen.KindEntity, Content: []byte("package model\n")},
		{Path: "sql/data_menu.sql", Kind: gen.KindMenuSQL, Content: []byte("INSERT")},
	}
	b, err := Package(files)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.True(t, f.Modified.Equal(ModTime), f.Name)
	}
	assert.Equal(t, []string{"go/system/model/data.go", "sql/data_menu.sql", "vue/api/system/data.js"}, names)

	entries, err := Read(b)
	require.NoError(t, err)
	assert.Equal(t, files.Map(), entries)
}

func TestPackage_Deterministic(t *testing.T) {
	a := gen.Files{
		{Path: "b.go", Content: []byte("b")},
		{Path: "a.go", Content: []byte("a")},
	}
	b := gen.Files{a[1], a[0]}
	first, err := Package(a)
	require.NoError(t, err)
	second, err := Package(b)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPackage_DuplicatePath(t *testing.T) {
	_, err := Package(Merge(
		gen.Files{{Path: "go/system/model/data.go", Kind: gen.KindEntity}},
		gen.Files{{Path: "go/system/model/data.go", Kind: gen.KindSubEntity}},
	))
	require.Error(t, err)
	assert.True(t, tablegen.IsPackaging(err))
	assert.Contains(t, err.Error(), "entity and sub-entity")
}

func TestPackage_InvalidPath(t *testing.T) {
	for _, p := range []string{"", "../x.go", "/etc/passwd", "a/./b.go"} {
		_, err := Package(gen.Files{{Path: p}})
		assert.True(t, tablegen.IsPackaging(err), "path %q", p)
	}
}

func TestPackage_Empty(t *testing.T) {
	b, err := Package(nil)
	require.NoError(t, err)
	entries, err := Read(b)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read([]byte("not a zip"))
	assert.Error(t, err)
}
