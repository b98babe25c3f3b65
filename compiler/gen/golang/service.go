package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// Service generates the service of the master table. It delegates to the
// DAO and, for tree tables, assembles the rows into a forest.
func Service(c *gen.Context) (*jen.File, error) {
	var (
		t    = c.Table
		m    = model(c)
		f    = gen.NewFile(c, PkgService)
		name = t.Name + "Service"
		dao  = t.Name + "DAO"
		recv = jen.Id("s").Op("*").Id(name)
		call = func(method string, args ...jen.Code) *jen.Statement {
			return jen.Id("s").Dot("dao").Dot(method).Call(args...)
		}
		ctx = jen.Id("ctx").Qual("context", "Context")
	)
	daoPkg := c.ImportPath(PkgDAO)
	typeDoc(f, t, name+" implements the "+t.Function+" use cases.")
	f.Type().Id(name).Struct(jen.Id("dao").Op("*").Qual(daoPkg, dao))

	f.Comment("New" + name + " returns a " + name + " backed by d.")
	f.Func().Id("New" + name).Params(jen.Id("d").Op("*").Qual(daoPkg, dao)).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("dao"): jen.Id("d")})),
	)

	f.Comment("Get returns the " + t.Name + " with the given primary key.")
	f.Func().Params(recv).Id("Get").Params(ctx.Clone(), jen.Id(t.ID.Var).Add(gen.BaseType(t.ID))).
		Params(jen.Op("*").Add(m(t.Name)), jen.Error()).Block(
		jen.Return(call("Get", jen.Id("ctx"), jen.Id(t.ID.Var))),
	)

	f.Comment("List returns one page of " + t.Name + " rows matching q and the total count.")
	f.Func().Params(recv).Id("List").Params(ctx.Clone(), jen.Id("q").Op("*").Add(m(t.QueryName()))).
		Params(jen.Index().Op("*").Add(m(t.Name)), jen.Int64(), jen.Error()).Block(
		jen.Return(call("List", jen.Id("ctx"), jen.Id("q"))),
	)

	f.Comment("Create stores a new " + t.Name + ".")
	f.Func().Params(recv).Id("Create").Params(ctx.Clone(), jen.Id("e").Op("*").Add(m(t.Name))).Error().Block(
		jen.Return(call("Create", jen.Id("ctx"), jen.Id("e"))),
	)

	f.Comment("Update stores the changes of e.")
	f.Func().Params(recv).Id("Update").Params(ctx.Clone(), jen.Id("e").Op("*").Add(m(t.Name))).Error().Block(
		jen.Return(call("Update", jen.Id("ctx"), jen.Id("e"))),
	)

	f.Comment("Delete removes the " + t.Name + " rows with the given primary keys.")
	f.Func().Params(recv).Id("Delete").Params(ctx.Clone(), jen.Id("ids").Op("...").Add(gen.BaseType(t.ID))).Error().Block(
		jen.Return(call("Delete", jen.Id("ctx"), jen.Id("ids").Op("..."))),
	)

	if t.Tree != nil {
		tree(f, c, recv)
	}
	return f, nil
}

// tree generates the Tree method and the forest builder of a tree table.
func tree(f *jen.File, c *gen.Context, recv *jen.Statement) {
	var (
		t     = c.Table
		m     = model(c)
		build = "build" + t.Name + "Tree"
		id    = t.Tree.ID
		pid   = t.Tree.Parent
	)
	f.Comment("Tree returns every " + t.Name + " matching q arranged by " + pid.Column.Name + ".")
	f.Comment("Rows whose parent is not in the result are roots. Paging in q is ignored.")
	f.Func().Params(recv).Id("Tree").Params(
		jen.Id("ctx").Qual("context", "Context"), jen.Id("q").Op("*").Add(m(t.QueryName())),
	).Params(jen.Index().Op("*").Add(m(t.Name)), jen.Error()).Block(
		jen.Var().Id("all").Add(m(t.QueryName())),
		jen.If(jen.Id("q").Op("!=").Nil()).Block(jen.Id("all").Op("=").Op("*").Id("q")),
		jen.List(jen.Id("all").Dot("PageNum"), jen.Id("all").Dot("PageSize")).Op("=").List(jen.Lit(0), jen.Lit(0)),
		jen.List(jen.Id("list"), jen.Id("_"), jen.Err()).Op(":=").Id("s").Dot("dao").Dot("List").Call(jen.Id("ctx"), jen.Op("&").Id("all")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id(build).Call(jen.Id("list")), jen.Nil()),
	)

	// Node keys are dereferenced for nullable id and parent columns.
	key := func(fd *gen.Field) *jen.Statement {
		if fd.Type.Pointer() {
			return jen.Op("*").Id("e").Dot(fd.Name)
		}
		return jen.Id("e").Dot(fd.Name)
	}
	guard := func(fd *gen.Field, body ...jen.Code) jen.Code {
		if fd.Type.Pointer() {
			return jen.If(jen.Id("e").Dot(fd.Name).Op("!=").Nil()).Block(body...)
		}
		return jen.Block(body...)
	}
	attach := jen.If(
		jen.List(jen.Id("p"), jen.Id("ok")).Op(":=").Id("nodes").Index(key(pid)),
		jen.Id("ok").Op("&&").Id("p").Op("!=").Id("e"),
	).Block(
		jen.Id("p").Dot("Children").Op("=").Append(jen.Id("p").Dot("Children"), jen.Id("e")),
		jen.Continue(),
	)
	f.Func().Id(build).Params(jen.Id("list").Index().Op("*").Add(m(t.Name))).Index().Op("*").Add(m(t.Name)).BlockFunc(func(g *jen.Group) {
		g.Id("nodes").Op(":=").Make(jen.Map(gen.BaseType(id)).Op("*").Add(m(t.Name)), jen.Len(jen.Id("list")))
		g.For(jen.List(jen.Id("_"), jen.Id("e")).Op(":=").Range().Id("list")).BlockFunc(func(g *jen.Group) {
			set := jen.Id("nodes").Index(key(id)).Op("=").Id("e")
			if id.Type.Pointer() {
				g.Add(guard(id, set))
				return
			}
			g.Add(set)
		})
		g.Var().Id("roots").Index().Op("*").Add(m(t.Name))
		g.For(jen.List(jen.Id("_"), jen.Id("e")).Op(":=").Range().Id("list")).BlockFunc(func(g *jen.Group) {
			if pid.Type.Pointer() {
				g.Add(guard(pid, attach))
			} else {
				g.Add(attach)
			}
			g.Id("roots").Op("=").Append(jen.Id("roots"), jen.Id("e"))
		})
		g.Return(jen.Id("roots"))
	})
}
