package gen

import (
	"strconv"
	"strings"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

// DecimalPkg is the import path used for fixed-point columns in generated code.
const DecimalPkg = "github.com/shopspring/decimal"

// TypeInfo is the Go type of a column.
type TypeInfo struct {
	// Ident is the type name without package, e.g. "int64", "Time", "[]byte".
	Ident string
	// PkgPath is the import path of a named type, e.g. "time".
	PkgPath string
	// PkgName is the package qualifier used in Go source, e.g. "time".
	PkgName string
	// Nillable marks a nullable column; the entity field is a pointer.
	Nillable bool
	// Category of the source native type.
	Category schema.Category
}

// String returns the base type as written in Go source, e.g. "time.Time".
func (t TypeInfo) String() string {
	if t.PkgName != "" {
		return t.PkgName + "." + t.Ident
	}
	return t.Ident
}

// GoType returns the field type, a pointer for nillable scalars.
func (t TypeInfo) GoType() string {
	if t.Pointer() {
		return "*" + t.String()
	}
	return t.String()
}

// Pointer reports whether the entity field is a pointer.
func (t TypeInfo) Pointer() bool {
	return t.Nillable && !t.Slice()
}

// Slice reports whether the base type is a slice, which is nillable on its own.
func (t TypeInfo) Slice() bool {
	return strings.HasPrefix(t.Ident, "[]") || t.String() == "json.RawMessage"
}

// Numeric reports whether the type is an integer or float.
func (t TypeInfo) Numeric() bool {
	return t.Category == schema.CategoryInteger || t.Category == schema.CategoryFloat
}

// Comparable reports whether values can be compared with == in generated code.
func (t TypeInfo) Comparable() bool {
	switch t.Category {
	case schema.CategoryInteger, schema.CategoryString, schema.CategoryText,
		schema.CategoryEnum, schema.CategoryUUID, schema.CategoryBool:
		return true
	}
	return false
}

// Rule is the validation rule of a field.
type Rule struct {
	Required bool
	// MaxLen is the maximum character length, 0 when unbounded.
	MaxLen int64
	// OneOf lists the allowed values of an enum.
	OneOf []string
	UUID  bool
}

// Tag renders the rule in the go-playground/validator tag syntax.
// Optional fields are prefixed with omitempty.
func (r Rule) Tag() string {
	var parts []string
	if r.Required {
		parts = append(parts, "required")
	}
	if r.MaxLen > 0 {
		parts = append(parts, "max="+strconv.FormatInt(r.MaxLen, 10))
	}
	if len(r.OneOf) > 0 {
		parts = append(parts, "oneof="+strings.Join(quoteOneOf(r.OneOf), " "))
	}
	if r.UUID {
		parts = append(parts, "uuid")
	}
	if len(parts) > 0 && !r.Required {
		parts = append([]string{"omitempty"}, parts...)
	}
	return strings.Join(parts, ",")
}

// quoteOneOf quotes enum values containing spaces, as validator expects.
func quoteOneOf(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if strings.ContainsAny(v, " ,") {
			v = "'" + v + "'"
		}
		out[i] = v
	}
	return out
}

// MapType maps a canonical native type to its Go type and validation rule.
// Unmapped types fail with *tablegen.UnknownTypeError instead of falling back
// to a default.
func MapType(native schema.NativeType, nullable bool) (TypeInfo, Rule, error) {
	var (
		info = TypeInfo{Nillable: nullable, Category: native.Category()}
		rule Rule
	)
	switch native.Name {
	case schema.TypeTinyInt:
		info.Ident = intType(8, native.Unsigned)
	case schema.TypeSmallInt:
		info.Ident = intType(16, native.Unsigned)
	case schema.TypeMediumInt, schema.TypeInt:
		info.Ident = intType(32, native.Unsigned)
	case schema.TypeBigInt:
		info.Ident = intType(64, native.Unsigned)
	case schema.TypeDecimal:
		info.Ident, info.PkgPath, info.PkgName = "Decimal", DecimalPkg, "decimal"
	case schema.TypeFloat:
		info.Ident = "float32"
	case schema.TypeDouble:
		info.Ident = "float64"
	case schema.TypeChar, schema.TypeVarchar:
		info.Ident = "string"
		rule.MaxLen = native.Length
	case schema.TypeText:
		info.Ident = "string"
	case schema.TypeEnum:
		info.Ident = "string"
		rule.OneOf = append([]string(nil), native.EnumValues...)
	case schema.TypeDate, schema.TypeTime, schema.TypeDateTime:
		info.Ident, info.PkgPath, info.PkgName = "Time", "time", "time"
	case schema.TypeBool:
		info.Ident = "bool"
	case schema.TypeJSON:
		info.Ident, info.PkgPath, info.PkgName = "RawMessage", "encoding/json", "json"
	case schema.TypeBlob:
		info.Ident = "[]byte"
	case schema.TypeUUID:
		info.Ident = "string"
		rule.UUID = true
	default:
		return TypeInfo{}, Rule{}, tablegen.NewUnknownTypeError("", "", native.String())
	}
	return info, rule, nil
}

func intType(bits int, unsigned bool) string {
	if unsigned {
		return "uint" + strconv.Itoa(bits)
	}
	return "int" + strconv.Itoa(bits)
}

// JSType returns the JavaScript type name used in generated view code.
func (t TypeInfo) JSType() string {
	switch t.Category {
	case schema.CategoryInteger, schema.CategoryFloat:
		return "number"
	case schema.CategoryBool:
		return "boolean"
	case schema.CategoryJSON:
		return "object"
	default:
		return "string"
	}
}
