package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/schema"
)

// DAO generates the data access object of the master table. Column names
// are referenced through the entity constants only.
func DAO(c *gen.Context) (*jen.File, error) {
	var (
		t    = c.Table
		m    = model(c)
		f    = gen.NewFile(c, PkgDAO)
		name = t.Name + "DAO"
		recv = jen.Id("d").Op("*").Id(name)
		db   = func() *jen.Statement { return jen.Id("d").Dot("db").Dot("WithContext").Call(jen.Id("ctx")) }
		r    = c.Relation
	)
	typeDoc(f, t, name+" reads and writes "+t.Name+" rows.")
	f.Type().Id(name).Struct(jen.Id("db").Op("*").Qual(gormPkg, "DB"))

	f.Comment("New" + name + " returns a " + name + " using db.")
	f.Func().Id("New" + name).Params(jen.Id("db").Op("*").Qual(gormPkg, "DB")).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("db"): jen.Id("db")})),
	)

	// Get
	get := db()
	if r != nil {
		get = get.Dot("Preload").Call(jen.Lit(r.Field))
	}
	f.Comment("Get returns the " + t.Name + " with the given primary key.")
	f.Func().Params(recv).Id("Get").Params(
		jen.Id("ctx").Qual("context", "Context"), jen.Id(t.ID.Var).Add(gen.BaseType(t.ID)),
	).Params(jen.Op("*").Add(m(t.Name)), jen.Error()).Block(
		jen.Var().Id("e").Add(m(t.Name)),
		jen.If(jen.Err().Op(":=").Add(get).Dot("Where").Call(where(m, t.ID, "= ?"), jen.Id(t.ID.Var)).
			Dot("First").Call(jen.Op("&").Id("e")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		),
		jen.Return(jen.Op("&").Id("e"), jen.Nil()),
	)

	// List
	f.Comment("List returns one page of " + t.Name + " rows matching q and the total count.")
	f.Comment("A nil q or a zero page size returns every matching row.")
	f.Func().Params(recv).Id("List").Params(
		jen.Id("ctx").Qual("context", "Context"), jen.Id("q").Op("*").Add(m(t.QueryName())),
	).Params(jen.Index().Op("*").Add(m(t.Name)), jen.Int64(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("tx").Op(":=").Add(db()).Dot("Model").Call(jen.Op("&").Add(m(t.Name)).Values())
		if filters := t.Queryable(); len(filters) > 0 {
			g.If(jen.Id("q").Op("!=").Nil()).BlockFunc(func(g *jen.Group) {
				for _, fd := range filters {
					filter(g, m, fd)
				}
			})
		}
		g.Var().Id("total").Int64()
		g.If(jen.Err().Op(":=").Id("tx").Dot("Count").Call(jen.Op("&").Id("total")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Lit(0), jen.Err()),
		)
		g.If(jen.Id("q").Op("!=").Nil().Op("&&").Id("q").Dot("PageSize").Op(">").Lit(0)).Block(
			jen.Id("tx").Op("=").Id("tx").Dot("Offset").Call(jen.Id("q").Dot("Offset").Call()).Dot("Limit").Call(jen.Id("q").Dot("PageSize")),
		)
		if r != nil {
			g.Id("tx").Op("=").Id("tx").Dot("Preload").Call(jen.Lit(r.Field))
		}
		g.Var().Id("list").Index().Op("*").Add(m(t.Name))
		g.If(jen.Err().Op(":=").Id("tx").Dot("Order").Call(m(t.ID.Const)).Dot("Find").Call(jen.Op("&").Id("list")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Lit(0), jen.Err()),
		)
		g.Return(jen.Id("list"), jen.Id("total"), jen.Nil())
	})

	// Create
	f.Comment("Create inserts e and its generated keys back into e.")
	if r != nil {
		f.Comment("The " + r.Field + " of e are inserted in the same transaction.")
	}
	f.Func().Params(recv).Id("Create").Params(
		jen.Id("ctx").Qual("context", "Context"), jen.Id("e").Op("*").Add(m(t.Name)),
	).Error().BlockFunc(func(g *jen.Group) {
		if r == nil {
			g.Return(selectCols(db(), m, t.Insertable()).Dot("Create").Call(jen.Id("e")).Dot("Error"))
			return
		}
		g.Return(db().Dot("Transaction").Call(jen.Func().Params(jen.Id("tx").Op("*").Qual(gormPkg, "DB")).Error().Block(
			jen.If(jen.Err().Op(":=").Add(selectCols(jen.Id("tx"), m, t.Insertable())).Dot("Create").Call(jen.Id("e")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			),
			jen.Return(jen.Id("d").Dot("createItems").Call(jen.Id("tx"), jen.Id("e"))),
		)))
	})

	// Update
	f.Comment("Update writes the editable columns of e.")
	if r != nil {
		f.Comment("The " + r.Field + " of e replace the stored ones.")
	}
	f.Func().Params(recv).Id("Update").Params(
		jen.Id("ctx").Qual("context", "Context"), jen.Id("e").Op("*").Add(m(t.Name)),
	).Error().BlockFunc(func(g *jen.Group) {
		update := func(tx *jen.Statement) *jen.Statement {
			return selectCols(tx.Dot("Model").Call(jen.Id("e")), m, t.Editable()).Dot("Updates").Call(jen.Id("e")).Dot("Error")
		}
		if r == nil {
			g.Return(update(db()))
			return
		}
		g.Return(db().Dot("Transaction").Call(jen.Func().Params(jen.Id("tx").Op("*").Qual(gormPkg, "DB")).Error().Block(
			jen.If(jen.Err().Op(":=").Add(update(jen.Id("tx"))), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			),
			jen.If(jen.Err().Op(":=").Id("tx").Dot("Where").Call(where(m, r.FK, "= ?"), jen.Id("e").Dot(r.References.Name)).
				Dot("Delete").Call(jen.Op("&").Add(m(c.Sub.Name)).Values()).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			),
			jen.Return(jen.Id("d").Dot("createItems").Call(jen.Id("tx"), jen.Id("e"))),
		)))
	})

	// Delete
	f.Comment("Delete removes the " + t.Name + " rows with the given primary keys.")
	if r != nil {
		f.Comment("Their " + r.Field + " are removed in the same transaction.")
	}
	f.Func().Params(recv).Id("Delete").Params(
		jen.Id("ctx").Qual("context", "Context"), jen.Id("ids").Op("...").Add(gen.BaseType(t.ID)),
	).Error().BlockFunc(func(g *jen.Group) {
		g.If(jen.Len(jen.Id("ids")).Op("==").Lit(0)).Block(jen.Return(jen.Nil()))
		remove := func(tx *jen.Statement) *jen.Statement {
			return tx.Dot("Where").Call(where(m, t.ID, "IN ?"), jen.Id("ids")).
				Dot("Delete").Call(jen.Op("&").Add(m(t.Name)).Values()).Dot("Error")
		}
		if r == nil {
			g.Return(remove(db()))
			return
		}
		g.Return(db().Dot("Transaction").Call(jen.Func().Params(jen.Id("tx").Op("*").Qual(gormPkg, "DB")).Error().BlockFunc(func(g *jen.Group) {
			keys := jen.Id("ids")
			if r.References != t.ID {
				g.Var().Id("refs").Index().Add(gen.BaseType(r.References))
				g.If(jen.Err().Op(":=").Id("tx").Dot("Model").Call(jen.Op("&").Add(m(t.Name)).Values()).
					Dot("Where").Call(where(m, t.ID, "IN ?"), jen.Id("ids")).
					Dot("Pluck").Call(m(r.References.Const), jen.Op("&").Id("refs")).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
					jen.Return(jen.Err()),
				)
				keys = jen.Id("refs")
			}
			g.If(jen.Err().Op(":=").Id("tx").Dot("Where").Call(where(m, r.FK, "IN ?"), keys).
				Dot("Delete").Call(jen.Op("&").Add(m(c.Sub.Name)).Values()).Dot("Error"), jen.Err().Op("!=").Nil()).Block(
				jen.Return(jen.Err()),
			)
			g.Return(remove(jen.Id("tx")))
		})))
	})

	if r != nil {
		createItems(f, c, recv)
	}
	return f, nil
}

// createItems generates the helper inserting the sub rows of a master entity
// after pointing their foreign key at it.
func createItems(f *jen.File, c *gen.Context, recv *jen.Statement) {
	var (
		m   = model(c)
		r   = c.Relation
		src = jen.Id("e").Dot(r.References.Name)
	)
	assign := jen.Id("item").Dot(r.FK.Name).Op("=").Add(src)
	switch fk, ref := r.FK.Type.Pointer(), r.References.Type.Pointer(); {
	case fk && !ref:
		assign = jen.Id("item").Dot(r.FK.Name).Op("=").Op("&").Id("e").Dot(r.References.Name)
	case !fk && ref:
		assign = jen.If(src.Clone().Op("!=").Nil()).Block(
			jen.Id("item").Dot(r.FK.Name).Op("=").Op("*").Add(src.Clone()),
		)
	}
	f.Func().Params(recv).Id("createItems").Params(
		jen.Id("tx").Op("*").Qual(gormPkg, "DB"), jen.Id("e").Op("*").Add(m(c.Table.Name)),
	).Error().Block(
		jen.If(jen.Len(jen.Id("e").Dot(r.Field)).Op("==").Lit(0)).Block(jen.Return(jen.Nil())),
		jen.For(jen.List(jen.Id("_"), jen.Id("item")).Op(":=").Range().Id("e").Dot(r.Field)).Block(assign),
		jen.Return(selectCols(jen.Id("tx"), m, c.Sub.Insertable()).
			Dot("Create").Call(jen.Id("e").Dot(r.Field)).Dot("Error")),
	)
}

// filter generates the where clause of one list filter.
func filter(g *jen.Group, m func(string) *jen.Statement, f *gen.Field) {
	q := func(name string) *jen.Statement { return jen.Id("q").Dot(name) }
	// Slice filters are not pointers; an empty slice is an absent filter.
	set := func(name string) (cond, val *jen.Statement) {
		if f.Type.Slice() {
			return jen.Len(q(name)).Op(">").Lit(0), q(name)
		}
		return q(name).Op("!=").Nil(), jen.Op("*").Add(q(name))
	}
	if f.Bound() {
		for _, b := range []struct{ name, op string }{{f.BeginName(), ">= ?"}, {f.EndName(), "<= ?"}} {
			cond, val := set(b.name)
			g.If(cond).Block(
				jen.Id("tx").Op("=").Id("tx").Dot("Where").Call(where(m, f, b.op), val),
			)
		}
		return
	}
	cond, val := set(f.Name)
	op := f.Policy.QueryOp
	if !op.Valid() {
		op = schema.QueryEQ
	}
	if op == schema.QueryLike {
		if f.Type.Ident != "string" || f.Type.PkgPath != "" {
			val = jen.Qual("fmt", "Sprint").Call(val)
		}
		val = jen.Lit("%").Op("+").Add(val).Op("+").Lit("%")
	}
	g.If(cond).Block(
		jen.Id("tx").Op("=").Id("tx").Dot("Where").Call(where(m, f, op.SQL()+" ?"), val),
	)
}

// where returns the condition "<column const> + \" <op>\"".
func where(m func(string) *jen.Statement, f *gen.Field, op string) *jen.Statement {
	return m(f.Const).Op("+").Lit(" " + op)
}

// selectCols restricts tx to the columns of fs. An empty fs leaves tx unrestricted.
func selectCols(tx *jen.Statement, m func(string) *jen.Statement, fs []*gen.Field) *jen.Statement {
	if len(fs) == 0 {
		return tx
	}
	cs := make([]jen.Code, len(fs))
	for i, f := range fs {
		cs[i] = m(f.Const)
	}
	return tx.Dot("Select").Call(cs...)
}
