package schema

import "strings"

// HTMLType is the form control used for a column in generated views.
type HTMLType string

// Form controls.
const (
	HTMLInput       HTMLType = "input"
	HTMLTextarea    HTMLType = "textarea"
	HTMLSelect      HTMLType = "select"
	HTMLRadio       HTMLType = "radio"
	HTMLCheckbox    HTMLType = "checkbox"
	HTMLDatetime    HTMLType = "datetime"
	HTMLImageUpload HTMLType = "imageUpload"
	HTMLFileUpload  HTMLType = "fileUpload"
	HTMLEditor      HTMLType = "editor"
)

// QueryOp is the filter operator of a queryable column.
type QueryOp string

// Query operators.
const (
	QueryEQ      QueryOp = "EQ"
	QueryNE      QueryOp = "NE"
	QueryGT      QueryOp = "GT"
	QueryGTE     QueryOp = "GTE"
	QueryLT      QueryOp = "LT"
	QueryLTE     QueryOp = "LTE"
	QueryLike    QueryOp = "LIKE"
	QueryBetween QueryOp = "BETWEEN"
)

// Valid reports whether op is a known operator.
func (op QueryOp) Valid() bool {
	switch op {
	case QueryEQ, QueryNE, QueryGT, QueryGTE, QueryLT, QueryLTE, QueryLike, QueryBetween:
		return true
	}
	return false
}

// SQL returns the SQL comparison operator. BETWEEN returns an empty string,
// it is rendered as a pair of >= and <= conditions.
func (op QueryOp) SQL() string {
	switch op {
	case QueryNE:
		return "<>"
	case QueryGT:
		return ">"
	case QueryGTE:
		return ">="
	case QueryLT:
		return "<"
	case QueryLTE:
		return "<="
	case QueryLike:
		return "LIKE"
	case QueryBetween:
		return ""
	default:
		return "="
	}
}

// ColumnPolicy holds the generation flags of a column.
type ColumnPolicy struct {
	Insertable bool     `yaml:"insertable" json:"insertable"`
	Editable   bool     `yaml:"editable" json:"editable"`
	Listable   bool     `yaml:"listable" json:"listable"`
	Queryable  bool     `yaml:"queryable" json:"queryable"`
	QueryOp    QueryOp  `yaml:"query_op" json:"query_op"`
	Required   bool     `yaml:"required" json:"required"`
	HTMLType   HTMLType `yaml:"html_type" json:"html_type"`
	DictType   string   `yaml:"dict_type,omitempty" json:"dict_type,omitempty"`
}

// Audit columns excluded from default edit, list and query policies.
var (
	notEditable  = names("id", "create_by", "create_time", "del_flag")
	notListable  = names("id", "create_by", "create_time", "del_flag", "update_by", "update_time")
	notQueryable = names("id", "create_by", "create_time", "del_flag", "update_by", "update_time", "remark")
)

// textareaLength is the declared length from which string columns get a textarea.
const textareaLength = 500

// DefaultPolicy derives the policy of a column from its SQL constraints and name.
func DefaultPolicy(c *Column) ColumnPolicy {
	name := strings.ToLower(c.Name)
	cat := c.Type.Category()
	p := ColumnPolicy{
		Insertable: !c.AutoIncrement,
		Editable:   !c.PrimaryKey && !notEditable[name],
		Listable:   !c.PrimaryKey && !notListable[name],
		Queryable:  !c.PrimaryKey && !notQueryable[name] && cat != CategoryJSON && cat != CategoryBinary,
		Required:   !c.Nullable && !c.PrimaryKey,
		QueryOp:    QueryEQ,
		HTMLType:   HTMLInput,
	}
	switch {
	case strings.HasSuffix(name, "name") && (cat == CategoryString || cat == CategoryText):
		p.QueryOp = QueryLike
	case cat == CategoryTemporal:
		p.QueryOp = QueryBetween
	}
	switch {
	case strings.HasSuffix(name, "status"):
		p.HTMLType = HTMLRadio
	case strings.HasSuffix(name, "type"), strings.HasSuffix(name, "sex"), cat == CategoryEnum:
		p.HTMLType = HTMLSelect
	case strings.HasSuffix(name, "image"):
		p.HTMLType = HTMLImageUpload
	case strings.HasSuffix(name, "file"):
		p.HTMLType = HTMLFileUpload
	case strings.HasSuffix(name, "content"):
		p.HTMLType = HTMLEditor
	case cat == CategoryTemporal:
		p.HTMLType = HTMLDatetime
	case cat == CategoryText, cat == CategoryString && c.Type.Length >= textareaLength:
		p.HTMLType = HTMLTextarea
	}
	return p
}

func names(ids ...string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
