package introspect

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/tablegen"
	"github.com/syssam/tablegen/schema"
)

var mysqlColumns = []string{
	"column_name", "column_type", "data_type", "is_nullable", "column_key", "extra", "column_default",
	"column_comment", "ordinal_position", "character_maximum_length", "numeric_precision", "numeric_scale",
}

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	insp, err := New("mariadb", db)
	require.NoError(t, err)
	assert.Equal(t, "mysql", insp.Dialect())
	assert.IsType(t, &MySQL{}, insp)

	insp, err = New("postgresql", db)
	require.NoError(t, err)
	assert.IsType(t, &Postgres{}, insp)

	_, err = New("oracle", db)
	assert.True(t, tablegen.IsUnsupportedDialect(err))
	_, err = New("sqlite", db)
	assert.True(t, tablegen.IsUnsupportedDialect(err))
}

func TestIntrospectUnsupportedDialect(t *testing.T) {
	_, err := Introspect(context.Background(), "mssql", "dsn", "sys_user")
	assert.True(t, tablegen.IsUnsupportedDialect(err))
}

func TestMySQLInspectTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	mock.ExpectQuery(`SELECT IFNULL\(table_comment, ''\) FROM information_schema.tables WHERE table_schema = DATABASE\(\) AND table_name = \?`).
		WithArgs("sys_dict_data").
		WillReturnRows(sqlmock.NewRows([]string{"table_comment"}).AddRow("字典数据表"))
	mock.ExpectQuery(`SELECT column_name, column_type, data_type, .+ FROM information_schema.columns WHERE table_schema = DATABASE\(\) AND table_name = \? ORDER BY ordinal_position`).
		WithArgs("sys_dict_data").
		WillReturnRows(sqlmock.NewRows(mysqlColumns).
			AddRow("dict_code", "bigint(20)", "bigint", "NO", "PRI", "auto_increment", nil, "字典编码", 1, 0, 19, 0).
			AddRow("dict_label", "varchar(100)", "varchar", "NO", "", "", "", "字典标签", 2, 100, 0, 0).
			AddRow("status", "char(1)", "char", "YES", "", "", "0", "状态", 3, 1, 0, 0).
			AddRow("is_default", "tinyint(1)", "tinyint", "YES", "", "", nil, "", 4, 0, 3, 0).
			AddRow("list_class", "enum('default','primary','it''s')", "enum", "YES", "", "", nil, "", 5, 7, 0, 0).
			AddRow("price", "decimal(10,2) unsigned", "decimal", "YES", "", "", nil, "", 6, 0, 10, 2).
			AddRow("update_time", "datetime", "datetime", "YES", "", "", nil, "", 7, 0, 0, 0))

	insp, err := New("mysql", db, WithLogger(logger))
	require.NoError(t, err)
	table, err := insp.InspectTable(context.Background(), "sys_dict_data")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "sys_dict_data", table.Name)
	assert.Equal(t, "mysql", table.Dialect)
	assert.Equal(t, "字典数据表", table.Comment)
	require.Len(t, table.Columns, 7)

	code := table.Columns[0]
	assert.Equal(t, schema.TypeBigInt, code.Type.Name)
	assert.True(t, code.PrimaryKey)
	assert.True(t, code.AutoIncrement)
	assert.False(t, code.Nullable)
	assert.Nil(t, code.Default)
	assert.False(t, code.Policy.Insertable)

	label := table.Columns[1]
	assert.Equal(t, schema.TypeVarchar, label.Type.Name)
	assert.Equal(t, int64(100), label.Type.Length)
	assert.True(t, label.Policy.Required)
	require.NotNil(t, label.Default)
	assert.Equal(t, "", *label.Default)

	status := table.Columns[2]
	assert.Equal(t, schema.TypeChar, status.Type.Name)
	assert.True(t, status.Nullable)
	require.NotNil(t, status.Default)
	assert.Equal(t, "0", *status.Default)
	assert.Equal(t, schema.HTMLRadio, status.Policy.HTMLType)

	assert.Equal(t, schema.TypeBool, table.Columns[3].Type.Name)
	assert.Equal(t, []string{"default", "primary", "it's"}, table.Columns[4].Type.EnumValues)

	price := table.Columns[5].Type
	assert.Equal(t, schema.TypeDecimal, price.Name)
	assert.Equal(t, int64(10), price.Precision)
	assert.Equal(t, int64(2), price.Scale)
	assert.True(t, price.Unsigned)

	assert.Equal(t, schema.TypeDateTime, table.Columns[6].Type.Name)
	assert.Equal(t, 7, table.Columns[6].Position)

	require.NotEmpty(t, hook.Entries)
	assert.Equal(t, "sys_dict_data", hook.LastEntry().Data["table"])
}

func TestMySQLInspectTableNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT IFNULL\(table_comment, ''\) FROM information_schema.tables WHERE table_schema = \? AND table_name = \?`).
		WithArgs("ry", "sys_missing").
		WillReturnRows(sqlmock.NewRows([]string{"table_comment"}))

	insp, err := New("mysql", db, WithSchema("ry"))
	require.NoError(t, err)
	_, err = insp.InspectTable(context.Background(), "sys_missing")
	require.Error(t, err)
	assert.True(t, tablegen.IsNotFound(err))
	assert.False(t, tablegen.Retryable(err))
	assert.Contains(t, err.Error(), `"ry"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInspectTableConnectionError(t *testing.T) {
	t.Run("lost connection", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT IFNULL\(table_comment, ''\)`).
			WillReturnError(&mysql.MySQLError{Number: 2013, Message: "Lost connection to MySQL server during query"})

		insp, err := New("mysql", db)
		require.NoError(t, err)
		_, err = insp.InspectTable(context.Background(), "sys_user")
		require.Error(t, err)
		assert.True(t, tablegen.IsConnection(err))
		assert.True(t, tablegen.Retryable(err))
	})

	t.Run("timeout", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT IFNULL\(table_comment, ''\)`).
			WillDelayFor(time.Second).
			WillReturnRows(sqlmock.NewRows([]string{"table_comment"}).AddRow(""))

		insp, err := New("mysql", db, WithTimeout(20*time.Millisecond))
		require.NoError(t, err)
		_, err = insp.InspectTable(context.Background(), "sys_user")
		require.Error(t, err)
		assert.True(t, tablegen.IsConnection(err))
	})

	t.Run("syntax error is not retryable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT IFNULL\(table_comment, ''\)`).
			WillReturnError(&mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"})

		insp, err := New("mysql", db)
		require.NoError(t, err)
		_, err = insp.InspectTable(context.Background(), "sys_user")
		require.Error(t, err)
		assert.False(t, tablegen.Retryable(err))
		assert.Contains(t, err.Error(), "sys_user")
	})
}

func TestMySQLTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT table_name, IFNULL\(table_comment, ''\) FROM information_schema.tables WHERE table_schema = DATABASE\(\) AND table_type = 'BASE TABLE' ORDER BY table_name`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "table_comment"}).
			AddRow("sys_dict_data", "字典数据表").
			AddRow("sys_user", "用户信息表"))

	insp, err := New("mysql", db)
	require.NoError(t, err)
	tables, err := insp.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []TableInfo{
		{Name: "sys_dict_data", Comment: "字典数据表"},
		{Name: "sys_user", Comment: "用户信息表"},
	}, tables)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLType(t *testing.T) {
	tests := []struct {
		dataType, columnType string
		length               int64
		want                 string
		unsigned             bool
	}{
		{"tinyint", "tinyint(4)", 0, schema.TypeTinyInt, false},
		{"tinyint", "tinyint(1)", 0, schema.TypeBool, false},
		{"tinyint", "tinyint(1) unsigned", 0, schema.TypeTinyInt, true},
		{"bit", "bit(1)", 0, schema.TypeBool, false},
		{"bit", "bit(8)", 0, schema.TypeBlob, false},
		{"year", "year", 0, schema.TypeSmallInt, false},
		{"boolean", "boolean", 0, schema.TypeBool, false},
		{"set", "set('a','b')", 0, schema.TypeVarchar, false},
		{"int", "int(11) unsigned", 0, schema.TypeInt, true},
		{"mediumint", "mediumint(9)", 0, schema.TypeMediumInt, false},
		{"double", "double", 0, schema.TypeDouble, false},
		{"float", "float", 0, schema.TypeFloat, false},
		{"longtext", "longtext", 4294967295, schema.TypeText, false},
		{"timestamp", "timestamp", 0, schema.TypeDateTime, false},
		{"date", "date", 0, schema.TypeDate, false},
		{"time", "time", 0, schema.TypeTime, false},
		{"json", "json", 0, schema.TypeJSON, false},
		{"varbinary", "varbinary(16)", 16, schema.TypeBlob, false},
		{"geometry", "geometry", 0, "geometry", false},
	}
	for _, tt := range tests {
		t.Run(tt.columnType, func(t *testing.T) {
			got := mysqlType(tt.dataType, tt.columnType, tt.length, 0, 0)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, tt.unsigned, got.Unsigned)
			assert.Equal(t, tt.columnType, got.Raw)
		})
	}

	assert.Equal(t, int64(64), mysqlType("varchar", "varchar(64)", 0, 0, 0).Length)
}
