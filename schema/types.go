package schema

import (
	"strconv"
	"strings"
)

// Canonical native type names produced by introspection.
const (
	TypeTinyInt   = "tinyint"
	TypeSmallInt  = "smallint"
	TypeMediumInt = "mediumint"
	TypeInt       = "int"
	TypeBigInt    = "bigint"
	TypeDecimal   = "decimal"
	TypeFloat     = "float"
	TypeDouble    = "double"
	TypeChar      = "char"
	TypeVarchar   = "varchar"
	TypeText      = "text"
	TypeEnum      = "enum"
	TypeDate      = "date"
	TypeTime      = "time"
	TypeDateTime  = "datetime"
	TypeBool      = "bool"
	TypeJSON      = "json"
	TypeBlob      = "blob"
	TypeUUID      = "uuid"
)

// Category groups canonical type names by the shape of their values.
type Category uint8

// Type categories.
const (
	CategoryUnknown Category = iota
	CategoryInteger
	CategoryDecimal
	CategoryFloat
	CategoryString
	CategoryText
	CategoryEnum
	CategoryTemporal
	CategoryBool
	CategoryJSON
	CategoryBinary
	CategoryUUID
)

var categoryNames = [...]string{
	CategoryUnknown:  "unknown",
	CategoryInteger:  "integer",
	CategoryDecimal:  "decimal",
	CategoryFloat:    "float",
	CategoryString:   "string",
	CategoryText:     "text",
	CategoryEnum:     "enum",
	CategoryTemporal: "temporal",
	CategoryBool:     "bool",
	CategoryJSON:     "json",
	CategoryBinary:   "binary",
	CategoryUUID:     "uuid",
}

// String implements fmt.Stringer.
func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "category(" + strconv.Itoa(int(c)) + ")"
}

// NativeType is a normalized native SQL type.
type NativeType struct {
	// Name is the canonical lower-case type name.
	Name string `yaml:"name" json:"name"`
	// Raw is the type as reported by the catalog, e.g. "bigint(20) unsigned".
	Raw string `yaml:"raw,omitempty" json:"raw,omitempty"`
	// Length is the declared character length, 0 when unknown or unbounded.
	Length int64 `yaml:"length,omitempty" json:"length,omitempty"`
	// Precision and Scale of fixed-point types.
	Precision int64 `yaml:"precision,omitempty" json:"precision,omitempty"`
	Scale     int64 `yaml:"scale,omitempty" json:"scale,omitempty"`
	// Unsigned integer types (MySQL only).
	Unsigned bool `yaml:"unsigned,omitempty" json:"unsigned,omitempty"`
	// EnumValues of an enum(...) column, in declaration order.
	EnumValues []string `yaml:"enum_values,omitempty" json:"enum_values,omitempty"`
}

// Category returns the category of the canonical name.
func (t NativeType) Category() Category {
	switch t.Name {
	case TypeTinyInt, TypeSmallInt, TypeMediumInt, TypeInt, TypeBigInt:
		return CategoryInteger
	case TypeDecimal:
		return CategoryDecimal
	case TypeFloat, TypeDouble:
		return CategoryFloat
	case TypeChar, TypeVarchar:
		return CategoryString
	case TypeText:
		return CategoryText
	case TypeEnum:
		return CategoryEnum
	case TypeDate, TypeTime, TypeDateTime:
		return CategoryTemporal
	case TypeBool:
		return CategoryBool
	case TypeJSON:
		return CategoryJSON
	case TypeBlob:
		return CategoryBinary
	case TypeUUID:
		return CategoryUUID
	default:
		return CategoryUnknown
	}
}

// String returns the raw catalog type when known, else a rendering of the canonical form.
func (t NativeType) String() string {
	if t.Raw != "" {
		return t.Raw
	}
	var b strings.Builder
	b.WriteString(t.Name)
	switch {
	case t.Precision > 0:
		b.WriteString("(" + strconv.FormatInt(t.Precision, 10) + "," + strconv.FormatInt(t.Scale, 10) + ")")
	case t.Length > 0:
		b.WriteString("(" + strconv.FormatInt(t.Length, 10) + ")")
	}
	if t.Unsigned {
		b.WriteString(" unsigned")
	}
	return b.String()
}
