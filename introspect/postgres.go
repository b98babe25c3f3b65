package introspect

import (
	"context"
	"database/sql"
	"strings"

	"ariga.io/atlas/sql/postgres"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

// Postgres inspects PostgreSQL databases through pg_catalog and information_schema.
type Postgres struct {
	inspector
}

// schemaExpr returns the namespace predicate value for placeholder n, and its argument if any.
func (p *Postgres) schemaExpr(n string) (string, []any) {
	if p.opts.schema != "" {
		return n, []any{p.opts.schema}
	}
	return "current_schema()", nil
}

// Tables implements Inspector.
func (p *Postgres) Tables(ctx context.Context) ([]TableInfo, error) {
	expr, args := p.schemaExpr("$1")
	query := "SELECT c.relname, COALESCE(obj_description(c.oid, 'pg_class'), '') FROM pg_catalog.pg_class c " +
		"JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace " +
		"WHERE c.relkind IN ('r', 'p') AND n.nspname = " + expr + " ORDER BY c.relname"
	var tables []TableInfo
	err := p.query(ctx, "", "list tables", query, func(rows *sql.Rows) error {
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
func (p *Postgres) InspectTable(ctx context.Context, name string) (*schema.Table, error) {
	expr, args := p.schemaExpr("$2")
	var (
		found bool
		t     = &schema.Table{Name: name}
	)
	query := "SELECT COALESCE(obj_description(c.oid, 'pg_class'), '') FROM pg_catalog.pg_class c " +
		"JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace " +
		"WHERE c.relkind IN ('r', 'p') AND c.relname = $1 AND n.nspname = " + expr
	err := p.query(ctx, name, "inspect table", query, func(rows *sql.Rows) error {
		found = true
		return rows.Scan(&t.Comment)
	}, append([]any{name}, args...)...)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, tablegen.NewNotFoundError(name, p.opts.schema)
	}
	query = "SELECT a.column_name, a.data_type, a.udt_name, a.is_nullable, a.column_default, " +
		"COALESCE(a.is_identity, 'NO'), " +
		"COALESCE(col_description(format('%I.%I', a.table_schema, a.table_name)::regclass::oid, a.ordinal_position), ''), " +
		"a.ordinal_position, COALESCE(a.character_maximum_length, 0), " +
		"COALESCE(a.numeric_precision, 0), COALESCE(a.numeric_scale, 0), " +
		"EXISTS (SELECT 1 FROM information_schema.table_constraints tc " +
		"JOIN information_schema.key_column_usage k ON k.constraint_name = tc.constraint_name " +
		"AND k.table_schema = tc.table_schema AND k.table_name = tc.table_name " +
		"WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = a.table_schema " +
		"AND tc.table_name = a.table_name AND k.column_name = a.column_name) " +
		"FROM information_schema.columns a WHERE a.table_name = $1 AND a.table_schema = " + expr +
		" ORDER BY a.ordinal_position"
	var udts []*schema.Column
	err = p.query(ctx, name, "inspect columns", query, func(rows *sql.Rows) error {
		var (
			c                          schema.Column
			dataType, udt, null, ident string
			def                        sql.NullString
			length, precision, scale   int64
			pk                         bool
		)
		if err := rows.Scan(&c.Name, &dataType, &udt, &null, &def, &ident, &c.Comment,
			&c.Position, &length, &precision, &scale, &pk); err != nil {
			return err
		}
		c.Type = postgresType(dataType, udt, length, precision, scale)
		c.Nullable = strings.EqualFold(null, "YES")
		c.PrimaryKey = pk
		c.AutoIncrement = strings.EqualFold(ident, "YES") ||
			(def.Valid && strings.HasPrefix(def.String, "nextval("))
		if def.Valid && !c.AutoIncrement {
			d := postgresDefault(def.String)
			c.Default = &d
		}
		if strings.EqualFold(dataType, "USER-DEFINED") {
			udts = append(udts, &c)
		}
		t.Columns = append(t.Columns, &c)
		return nil
	}, append([]any{name}, args...)...)
	if err != nil {
		return nil, err
	}
	for _, c := range udts {
		if err := p.enumLabels(ctx, name, c); err != nil {
			return nil, err
		}
	}
	return p.finish(t), nil
}

// enumLabels turns a user-defined column into an enum when its type is a pg enum.
// Other user-defined types keep their name and are rejected by the type mapper.
func (p *Postgres) enumLabels(ctx context.Context, table string, c *schema.Column) error {
	query := "SELECT e.enumlabel FROM pg_catalog.pg_type t " +
		"JOIN pg_catalog.pg_enum e ON e.enumtypid = t.oid WHERE t.typname = $1 ORDER BY e.enumsortorder"
	var labels []string
	err := p.query(ctx, table, "inspect enum", query, func(rows *sql.Rows) error {
		var l string
		if err := rows.Scan(&l); err != nil {
			return err
		}
		labels = append(labels, l)
		return nil
	}, c.Type.Name)
	if err != nil {
		return err
	}
	if len(labels) > 0 {
		c.Type.Name = schema.TypeEnum
		c.Type.EnumValues = labels
	}
	return nil
}

// postgresType normalizes an information_schema data_type/udt_name pair.
func postgresType(dataType, udt string, length, precision, scale int64) schema.NativeType {
	dataType = strings.ToLower(strings.TrimSpace(dataType))
	udt = strings.ToLower(strings.TrimSpace(udt))
	t := schema.NativeType{Raw: dataType}
	switch dataType {
	case postgres.TypeSmallInt, postgres.TypeInt2, postgres.TypeSmallSerial:
		t.Name = schema.TypeSmallInt
	case postgres.TypeInteger, postgres.TypeInt, postgres.TypeInt4, postgres.TypeSerial:
		t.Name = schema.TypeInt
	case postgres.TypeBigInt, postgres.TypeInt8, postgres.TypeBigSerial:
		t.Name = schema.TypeBigInt
	case postgres.TypeNumeric, postgres.TypeDecimal:
		t.Name = schema.TypeDecimal
		t.Precision, t.Scale = precision, scale
	case postgres.TypeReal, postgres.TypeFloat4:
		t.Name = schema.TypeFloat
	case postgres.TypeDouble, postgres.TypeFloat8:
		t.Name = schema.TypeDouble
	case postgres.TypeCharVar, postgres.TypeVarChar:
		t.Name, t.Length = schema.TypeVarchar, length
	case postgres.TypeCharacter, postgres.TypeChar, "bpchar":
		t.Name, t.Length = schema.TypeChar, length
	case postgres.TypeText, "citext":
		t.Name = schema.TypeText
	case postgres.TypeBoolean, postgres.TypeBool:
		t.Name = schema.TypeBool
	case postgres.TypeDate:
		t.Name = schema.TypeDate
	case postgres.TypeTime, postgres.TypeTimeTZ, "time without time zone", "time with time zone":
		t.Name = schema.TypeTime
	case postgres.TypeTimestamp, postgres.TypeTimestampTZ, "timestamp without time zone", "timestamp with time zone":
		t.Name = schema.TypeDateTime
	case postgres.TypeJSON, postgres.TypeJSONB:
		t.Name = schema.TypeJSON
	case postgres.TypeBytea:
		t.Name = schema.TypeBlob
	case postgres.TypeUUID:
		t.Name = schema.TypeUUID
	case "user-defined", "array":
		t.Name, t.Raw = udt, udt
	default:
		t.Name = dataType
	}
	return t
}

// postgresDefault strips the type cast of a literal default: 'x'::character varying => x.
func postgresDefault(def string) string {
	if i := strings.Index(def, "::"); i > 0 {
		def = def[:i]
	}
	def = strings.TrimSpace(def)
	if len(def) >= 2 && def[0] == '\'' && def[len(def)-1] == '\'' {
		def = strings.ReplaceAll(def[1:len(def)-1], "''", "'")
	}
	return def
}
