package golang

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// Entity generates the model file of t: the column constants, the entity
// struct and the list filter.
func Entity(c *gen.Context, t *gen.Type) (*jen.File, error) {
	f := gen.NewFile(c, PkgModel)
	f.Const().DefsFunc(func(g *jen.Group) {
		g.Comment(t.TableConst() + " is the table name.")
		g.Id(t.TableConst()).Op("=").Lit(t.Table.Name)
		for _, fd := range t.Fields {
			g.Id(fd.Const).Op("=").Lit(fd.Column.Name)
		}
	})
	typeDoc(f, t, fmt.Sprintf("%s is the entity of table %s (%s).", t.Name, t.Table.Name, oneLine(t.Function)))
	f.Type().Id(t.Name).StructFunc(func(g *jen.Group) {
		for _, fd := range t.Fields {
			g.Comment(oneLine(fd.Label))
			g.Id(fd.Name).Add(gen.GoType(fd)).Tag(entityTag(fd))
		}
		if t == c.Table && t.Tree != nil {
			g.Id("Children").Index().Op("*").Id(t.Name).Tag(map[string]string{
				"gorm": "-",
				"json": "children,omitempty",
			})
		}
		if r := c.Relation; t == c.Table && r != nil {
			g.Id(r.Field).Index().Op("*").Id(c.Sub.Name).Tag(map[string]string{
				"gorm": "foreignKey:" + r.FK.Name + ";references:" + r.References.Name,
				"json": gen.ToIdentifier(r.Field, gen.Camel) + ",omitempty",
			})
		}
	})
	f.Comment("TableName returns the table name of " + t.Name + ".")
	f.Func().Params(jen.Id(t.Name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Id(t.TableConst())),
	)
	query(f, t)
	return f, nil
}

// query generates the list filter of t.
func query(f *jen.File, t *gen.Type) {
	name := t.QueryName()
	f.Comment(name + " filters the " + t.Name + " list. Nil filters are ignored.")
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, fd := range t.Queryable() {
			if fd.Bound() {
				g.Id(fd.BeginName()).Add(filterType(fd)).Tag(map[string]string{"json": "begin" + fd.Name + ",omitempty"})
				g.Id(fd.EndName()).Add(filterType(fd)).Tag(map[string]string{"json": "end" + fd.Name + ",omitempty"})
				continue
			}
			g.Id(fd.Name).Add(filterType(fd)).Tag(map[string]string{"json": fd.JSON + ",omitempty"})
		}
		g.Id("PageNum").Int().Tag(map[string]string{"json": "pageNum"})
		g.Id("PageSize").Int().Tag(map[string]string{"json": "pageSize"})
	})
	f.Comment("Offset returns the row offset of the requested page.")
	f.Func().Params(jen.Id("q").Op("*").Id(name)).Id("Offset").Params().Int().Block(
		jen.If(jen.Id("q").Dot("PageNum").Op("<").Lit(1)).Block(jen.Return(jen.Lit(0))),
		jen.Return(jen.Parens(jen.Id("q").Dot("PageNum").Op("-").Lit(1)).Op("*").Id("q").Dot("PageSize")),
	)
}

func entityTag(f *gen.Field) map[string]string {
	gorm := "column:" + f.Column.Name
	if f.Column.PrimaryKey {
		gorm += ";primaryKey"
	}
	if f.Column.AutoIncrement {
		gorm += ";autoIncrement"
	}
	json := f.JSON
	if f.Type.Nillable {
		json += ",omitempty"
	}
	tags := map[string]string{"gorm": gorm, "json": json}
	if v := f.Tag(); v != "" {
		tags["validate"] = v
	}
	return tags
}

// filterType is the type of a list filter field: a pointer so that an
// absent filter differs from a zero value.
func filterType(f *gen.Field) *jen.Statement {
	if f.Type.Slice() {
		return gen.BaseType(f)
	}
	return jen.Op("*").Add(gen.BaseType(f))
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
