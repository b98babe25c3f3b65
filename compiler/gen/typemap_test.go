package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

func TestMapType(t *testing.T) {
	tests := []struct {
		native   schema.NativeType
		nullable bool
		want     string
		goType   string
		tag      string
	}{
		{schema.NativeType{Name: schema.TypeTinyInt}, false, "int8", "int8", ""},
		{schema.NativeType{Name: schema.TypeTinyInt, Unsigned: true}, false, "uint8", "uint8", ""},
		{schema.NativeType{Name: schema.TypeSmallInt}, true, "int16", "*int16", ""},
		{schema.NativeType{Name: schema.TypeMediumInt}, false, "int32", "int32", ""},
		{schema.NativeType{Name: schema.TypeInt, Unsigned: true}, false, "uint32", "uint32", ""},
		{schema.NativeType{Name: schema.TypeBigInt}, false, "int64", "int64", ""},
		{schema.NativeType{Name: schema.TypeDecimal, Precision: 10, Scale: 2}, false, "decimal.Decimal", "decimal.Decimal", ""},
		{schema.NativeType{Name: schema.TypeFloat}, false, "float32", "float32", ""},
		{schema.NativeType{Name: schema.TypeDouble}, true, "float64", "*float64", ""},
		{schema.NativeType{Name: schema.TypeVarchar, Length: 100}, false, "string", "string", "omitempty,max=100"},
		{schema.NativeType{Name: schema.TypeChar, Length: 1}, true, "string", "*string", "omitempty,max=1"},
		{schema.NativeType{Name: schema.TypeText}, false, "string", "string", ""},
		{schema.NativeType{Name: schema.TypeEnum, EnumValues: []string{"M", "F", "not set"}}, false, "string", "string", "omitempty,oneof=M F 'not set'"},
		{schema.NativeType{Name: schema.TypeDate}, false, "time.Time", "time.Time", ""},
		{schema.NativeType{Name: schema.TypeDateTime}, true, "time.Time", "*time.Time", ""},
		{schema.NativeType{Name: schema.TypeBool}, false, "bool", "bool", ""},
		{schema.NativeType{Name: schema.TypeJSON}, true, "json.RawMessage", "json.RawMessage", ""},
		{schema.NativeType{Name: schema.TypeBlob}, true, "[]byte", "[]byte", ""},
		{schema.NativeType{Name: schema.TypeUUID}, false, "string", "string", "omitempty,uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.native.String(), func(t *testing.T) {
			info, rule, err := MapType(tt.native, tt.nullable)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.String())
			assert.Equal(t, tt.goType, info.GoType())
			assert.Equal(t, tt.tag, rule.Tag())
			assert.Equal(t, tt.native.Category(), info.Category)
		})
	}
}

func TestMapType_Unknown(t *testing.T) {
	for _, native := range []schema.NativeType{
		{Name: "geometry", Raw: "geometry"},
		{Name: "point"},
		{},
	} {
		_, _, err := MapType(native, false)
		require.Error(t, err)
		assert.True(t, tablegen.IsUnknownType(err))
	}
}

func TestRuleTag(t *testing.T) {
	assert.Equal(t, "", Rule{}.Tag())
	assert.Equal(t, "required", Rule{Required: true}.Tag())
	assert.Equal(t, "required,max=100", Rule{Required: true, MaxLen: 100}.Tag())
	assert.Equal(t, "required,oneof=a b", Rule{Required: true, OneOf: []string{"a", "b"}}.Tag())
}

func TestTypeInfo(t *testing.T) {
	blob := TypeInfo{Ident: "[]byte", Nillable: true, Category: schema.CategoryBinary}
	assert.True(t, blob.Slice())
	assert.False(t, blob.Pointer())
	assert.False(t, blob.Comparable())

	id := TypeInfo{Ident: "int64", Category: schema.CategoryInteger}
	assert.True(t, id.Numeric())
	assert.True(t, id.Comparable())
	assert.Equal(t, "number", id.JSType())

	flag := TypeInfo{Ident: "bool", Category: schema.CategoryBool}
	assert.Equal(t, "boolean", flag.JSType())
	assert.Equal(t, "string", TypeInfo{Ident: "Time", PkgName: "time", Category: schema.CategoryTemporal}.JSType())
}
