// Package schematest provides table metadata fixtures for tests.
package schematest

import "github.com/syssam/tablegen/schema"

// Column returns a column of the given canonical type.
func Column(name, typ string, opts ...func(*schema.Column)) *schema.Column {
	c := &schema.Column{Name: name, Type: schema.NativeType{Name: typ}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PK marks an auto-increment primary key.
func PK(c *schema.Column) {
	c.PrimaryKey = true
	c.AutoIncrement = true
}

// Null marks a nullable column.
func Null(c *schema.Column) { c.Nullable = true }

// Len sets the character length.
func Len(n int64) func(*schema.Column) {
	return func(c *schema.Column) { c.Type.Length = n }
}

// Comment sets the column comment.
func Comment(s string) func(*schema.Column) {
	return func(c *schema.Column) { c.Comment = s }
}

// Raw sets the catalog type.
func Raw(s string) func(*schema.Column) {
	return func(c *schema.Column) { c.Type.Raw = s }
}

// Table returns a MySQL table with positions assigned in order.
func Table(name, comment string, columns ...*schema.Column) *schema.Table {
	for i, c := range columns {
		c.Position = i + 1
	}
	return &schema.Table{Name: name, Dialect: "mysql", Comment: comment, Columns: columns}
}

// DictData returns sys_dict_data.
func DictData() *schema.Table {
	return Table("sys_dict_data", "字典数据表",
		Column("dict_code", schema.TypeBigInt, PK, Comment("字典编码")),
		Column("dict_sort", schema.TypeInt, Null, Comment("字典排序")),
		Column("dict_label", schema.TypeVarchar, Len(100), Comment("字典标签")),
		Column("dict_value", schema.TypeVarchar, Len(100), Comment("字典键值")),
		Column("dict_type", schema.TypeVarchar, Len(100), Null, Comment("字典类型")),
		Column("status", schema.TypeChar, Len(1), Null, Comment("状态")),
		Column("create_by", schema.TypeVarchar, Len(64), Null, Comment("创建者")),
		Column("create_time", schema.TypeDateTime, Null, Comment("创建时间")),
		Column("remark", schema.TypeVarchar, Len(500), Null, Comment("备注")),
	)
}

// Dept returns sys_dept, a tree table without tree options.
func Dept() *schema.Table {
	return Table("sys_dept", "部门表",
		Column("dept_id", schema.TypeBigInt, PK, Comment("部门id")),
		Column("parent_id", schema.TypeBigInt, Null, Comment("父部门id")),
		Column("dept_name", schema.TypeVarchar, Len(30), Comment("部门名称")),
		Column("order_num", schema.TypeInt, Null, Comment("显示顺序")),
		Column("status", schema.TypeChar, Len(1), Null, Comment("部门状态")),
		Column("create_time", schema.TypeDateTime, Null, Comment("创建时间")),
	)
}

// Order returns sys_order, the master of OrderItem.
func Order() *schema.Table {
	return Table("sys_order", "订单表",
		Column("order_id", schema.TypeBigInt, PK, Comment("订单id")),
		Column("order_no", schema.TypeVarchar, Len(64), Comment("订单号")),
		Column("amount", schema.TypeDecimal, func(c *schema.Column) { c.Type.Precision, c.Type.Scale = 10, 2 }),
		Column("create_time", schema.TypeDateTime, Null),
	)
}

// OrderItem returns sys_order_item, the sub table of Order.
func OrderItem() *schema.Table {
	return Table("sys_order_item", "订单明细表",
		Column("item_id", schema.TypeBigInt, PK),
		Column("order_id", schema.TypeBigInt),
		Column("product_name", schema.TypeVarchar, Len(100)),
		Column("quantity", schema.TypeInt),
	)
}

// Area returns sys_area with an unmappable geometry column.
func Area() *schema.Table {
	return Table("sys_area", "区域表",
		Column("area_id", schema.TypeBigInt, PK),
		Column("area_name", schema.TypeVarchar, Len(50)),
		Column("shape", "geometry", Raw("geometry")),
	)
}
