package introspect

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"ariga.io/atlas/sql/mysql"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

// MySQL inspects MySQL and MariaDB databases through information_schema.
type MySQL struct {
	inspector
}

// schemaExpr returns the table_schema predicate value and its argument, if any.
func (m *MySQL) schemaExpr() (string, []any) {
	if m.opts.schema != "" {
		return "?", []any{m.opts.schema}
	}
	return "DATABASE()", nil
}

// Tables implements Inspector.
func (m *MySQL) Tables(ctx context.Context) ([]TableInfo, error) {
	expr, args := m.schemaExpr()
	query := "SELECT table_name, IFNULL(table_comment, '') FROM information_schema.tables " +
		"WHERE table_schema = " + expr + " AND table_type = 'BASE TABLE' ORDER BY table_name"
	var tables []TableInfo
	err := m.query(ctx, "", "list tables", query, func(rows *sql.Rows) error {
		var t TableInfo
		if err := rows.Scan(&t.Name, &t.Comment); err != nil {
			return err
		}
		tables = append(tables, t)
		return nil
	}, args...)
	if err != nil {
		return nil, err
	}
	return tables, nil
}

// InspectTable implements Inspector.
func (m *MySQL) InspectTable(ctx context.Context, name string) (*schema.Table, error) {
	expr, args := m.schemaExpr()
	var (
		found bool
		t     = &schema.Table{Name: name}
	)
	query := "SELECT IFNULL(table_comment, '') FROM information_schema.tables " +
		"WHERE table_schema = " + expr + " AND table_name = ?"
	err := m.query(ctx, name, "inspect table", query, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(&t.Comment)
	}, append(args, name)...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, tablegen.NewNotFoundError(name, m.opts.schema)
	}
	query = "SELECT column_name, column_type, data_type, is_nullable, column_key, extra, column_default, " +
		"IFNULL(column_comment, ''), ordinal_position, IFNULL(character_maximum_length, 0), " +
		"IFNULL(numeric_precision, 0), IFNULL(numeric_scale, 0) FROM information_schema.columns " +
		"WHERE table_schema = " + expr + " AND table_name = ? ORDER BY ordinal_position"
	err = m.query(ctx, name, "inspect columns", query, func(rows *sql.Rows) error {
		var (
			c                                   schema.Column
			columnType, dataType, null, key, ex string
			def                                 sql.NullString
			length, precision, scale            int64
		)
		if err := rows.Scan(&c.Name, &columnType, &dataType, &null, &key, &ex, &def,
			&c.Comment, &c.Position, &length, &precision, &scale); err != nil {
			return err
		}
		c.Type = mysqlType(dataType, columnType, length, precision, scale)
		c.Nullable = strings.EqualFold(null, "YES")
		c.PrimaryKey = key == "PRI"
		c.AutoIncrement = strings.Contains(strings.ToLower(ex), "auto_increment")
		if def.Valid && !strings.EqualFold(def.String, "NULL") {
			c.Default = &def.String
		}
		t.Columns = append(t.Columns, &c)
		return nil
	}, append(args, name)...)
	if err != nil {
		return nil, err
	}
	return m.finish(t), nil
}

// mysqlType normalizes an information_schema data_type/column_type pair.
func mysqlType(dataType, columnType string, length, precision, scale int64) schema.NativeType {
	dataType = strings.ToLower(strings.TrimSpace(dataType))
	raw := strings.ToLower(strings.TrimSpace(columnType))
	t := schema.NativeType{Raw: raw, Unsigned: strings.Contains(raw, "unsigned")}
	switch dataType {
	case mysql.TypeTinyInt:
		if strings.HasPrefix(raw, "tinyint(1)") && !t.Unsigned {
			t.Name = schema.TypeBool
		} else {
			t.Name = schema.TypeTinyInt
		}
	case mysql.TypeBit:
		if raw == "bit(1)" {
			t.Name = schema.TypeBool
		} else {
			t.Name = schema.TypeBlob
		}
	case mysql.TypeBool, mysql.TypeBoolean:
		t.Name = schema.TypeBool
	case mysql.TypeSmallInt, mysql.TypeYear:
		t.Name = schema.TypeSmallInt
	case mysql.TypeMediumInt:
		t.Name = schema.TypeMediumInt
	case mysql.TypeInt, "integer":
		t.Name = schema.TypeInt
	case mysql.TypeBigInt:
		t.Name = schema.TypeBigInt
	case mysql.TypeDecimal, mysql.TypeNumeric:
		t.Name = schema.TypeDecimal
		t.Precision, t.Scale = precision, scale
	case mysql.TypeFloat:
		t.Name = schema.TypeFloat
	case mysql.TypeDouble, mysql.TypeReal:
		t.Name = schema.TypeDouble
	case mysql.TypeChar:
		t.Name, t.Length = schema.TypeChar, length
	case mysql.TypeVarchar, mysql.TypeSet:
		t.Name, t.Length = schema.TypeVarchar, length
	case mysql.TypeTinyText, mysql.TypeText, mysql.TypeMediumText, mysql.TypeLongText:
		t.Name = schema.TypeText
	case mysql.TypeEnum:
		t.Name = schema.TypeEnum
		t.EnumValues = enumValues(columnType)
	case mysql.TypeDate:
		t.Name = schema.TypeDate
	case mysql.TypeTime:
		t.Name = schema.TypeTime
	case mysql.TypeDateTime, mysql.TypeTimestamp:
		t.Name = schema.TypeDateTime
	case mysql.TypeJSON:
		t.Name = schema.TypeJSON
	case mysql.TypeBinary, mysql.TypeVarBinary, mysql.TypeTinyBlob, mysql.TypeBlob, mysql.TypeMediumBlob, mysql.TypeLongBlob:
		t.Name = schema.TypeBlob
	default:
		t.Name = dataType
	}
	if t.Length == 0 && t.Category() == schema.CategoryString {
		t.Length = parseLength(raw)
	}
	return t
}

// enumValues parses the values of "enum('a','b')". Quotes inside values are doubled.
func enumValues(columnType string) []string {
	open, end := strings.IndexByte(columnType, '('), strings.LastIndexByte(columnType, ')')
	if open < 0 || end <= open {
		return nil
	}
	var (
		values []string
		b      strings.Builder
		quoted bool
		body   = columnType[open+1 : end]
	)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\'' && quoted && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case ch == '\'':
			if quoted {
				values = append(values, b.String())
				b.Reset()
			}
			quoted = !quoted
		case quoted:
			b.WriteByte(ch)
		}
	}
	return values
}

// parseLength extracts n from "name(n)" or returns 0.
func parseLength(raw string) int64 {
	open, end := strings.IndexByte(raw, '('), strings.IndexByte(raw, ')')
	if open < 0 || end <= open {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(strings.Split(raw[open+1:end], ",")[0]), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
