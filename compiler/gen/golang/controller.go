package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
	"github.com/syssam/tablegen/schema"
)

// Controller generates the net/http controller of the master table. Request
// and response field names are the JSON names of the entity.
func Controller(c *gen.Context) (*jen.File, error) {
	var (
		t     = c.Table
		m     = model(c)
		f     = gen.NewFile(c, PkgController)
		name  = t.Name + "Controller"
		svc   = t.Name + "Service"
		recv  = func() *jen.Statement { return jen.Id("c").Op("*").Id(name) }
		route = t.Route()
		w     = func() *jen.Statement { return jen.Id("w").Qual(httpPkg, "ResponseWriter") }
		r     = func() *jen.Statement { return jen.Id("r").Op("*").Qual(httpPkg, "Request") }
		fail  = func(status string) []jen.Code {
			return []jen.Code{
				jen.Id("c").Dot("fail").Call(jen.Id("w"), jen.Qual(httpPkg, status), jen.Err()),
				jen.Return(),
			}
		}
		reply = func(kv jen.Dict) *jen.Statement {
			kv[jen.Lit("code")] = jen.Qual(httpPkg, "StatusOK")
			return jen.Id("c").Dot("reply").Call(jen.Id("w"), jen.Qual(httpPkg, "StatusOK"),
				jen.Map(jen.String()).Id("any").Values(kv))
		}
	)
	svcPkg := c.ImportPath(PkgService)
	typeDoc(f, t, name+" serves the "+t.Function+" endpoints under "+route+".")
	f.Type().Id(name).Struct(jen.Id("svc").Op("*").Qual(svcPkg, svc))

	f.Comment("New" + name + " returns a " + name + " using svc.")
	f.Func().Id("New" + name).Params(jen.Id("svc").Op("*").Qual(svcPkg, svc)).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(jen.Dict{jen.Id("svc"): jen.Id("svc")})),
	)

	f.Comment("Register mounts the " + t.Name + " routes on mux.")
	f.Func().Params(recv()).Id("Register").Params(jen.Id("mux").Op("*").Qual(httpPkg, "ServeMux")).BlockFunc(func(g *jen.Group) {
		handle := func(pattern, handler string) {
			g.Id("mux").Dot("HandleFunc").Call(jen.Lit(pattern), jen.Id("c").Dot(handler))
		}
		handle("GET "+route+"/list", "list")
		if t.Tree != nil {
			handle("GET "+route+"/tree", "tree")
		}
		handle("GET "+route+"/{id}", "get")
		handle("POST "+route, "create")
		handle("PUT "+route, "update")
		handle("DELETE "+route+"/{ids}", "remove")
	})

	f.Func().Params(recv()).Id("list").Params(w(), r()).Block(
		jen.List(jen.Id("q"), jen.Err()).Op(":=").Id("c").Dot("query").Call(jen.Id("r")),
		jen.If(jen.Err().Op("!=").Nil()).Block(fail("StatusBadRequest")...),
		jen.List(jen.Id("list"), jen.Id("total"), jen.Err()).Op(":=").Id("c").Dot("svc").Dot("List").Call(jen.Id("r").Dot("Context").Call(), jen.Id("q")),
		jen.If(jen.Err().Op("!=").Nil()).Block(fail("StatusInternalServerError")...),
		reply(jen.Dict{jen.Lit("rows"): jen.Id("list"), jen.Lit("total"): jen.Id("total")}),
	)

	if t.Tree != nil {
		f.Func().Params(recv()).Id("tree").Params(w(), r()).Block(
			jen.List(jen.Id("q"), jen.Err()).Op(":=").Id("c").Dot("query").Call(jen.Id("r")),
			jen.If(jen.Err().Op("!=").Nil()).Block(fail("StatusBadRequest")...),
			jen.List(jen.Id("roots"), jen.Err()).Op(":=").Id("c").Dot("svc").Dot("Tree").Call(jen.Id("r").Dot("Context").Call(), jen.Id("q")),
			jen.If(jen.Err().Op("!=").Nil()).Block(fail("StatusInternalServerError")...),
			reply(jen.Dict{jen.Lit("data"): jen.Id("roots")}),
		)
	}

	f.Func().Params(recv()).Id("get").Params(w(), r()).BlockFunc(func(g *jen.Group) {
		g.Id("s").Op(":=").Id("r").Dot("PathValue").Call(jen.Lit("id"))
		parse(g, t.ID, fail("StatusBadRequest"))
		g.List(jen.Id("e"), jen.Err()).Op(":=").Id("c").Dot("svc").Dot("Get").Call(jen.Id("r").Dot("Context").Call(), jen.Id("v"))
		g.If(jen.Qual("errors", "Is").Call(jen.Err(), jen.Qual(gormPkg, "ErrRecordNotFound"))).Block(fail("StatusNotFound")...)
		g.If(jen.Err().Op("!=").Nil()).Block(fail("StatusInternalServerError")...)
		g.Add(reply(jen.Dict{jen.Lit("data"): jen.Id("e")}))
	})

	for _, op := range []string{"create", "update"} {
		f.Func().Params(recv()).Id(op).Params(w(), r()).Block(
			jen.Var().Id("e").Add(m(t.Name)),
			jen.If(
				jen.Err().Op(":=").Qual(jsonPkg, "NewDecoder").Call(jen.Id("r").Dot("Body")).Dot("Decode").Call(jen.Op("&").Id("e")),
				jen.Err().Op("!=").Nil(),
			).Block(fail("StatusBadRequest")...),
			jen.If(
				jen.Err().Op(":=").Id("c").Dot("svc").Dot(strings.ToUpper(op[:1])+op[1:]).Call(jen.Id("r").Dot("Context").Call(), jen.Op("&").Id("e")),
				jen.Err().Op("!=").Nil(),
			).Block(fail("StatusInternalServerError")...),
			reply(jen.Dict{jen.Lit("data"): jen.Op("&").Id("e")}),
		)
	}

	f.Func().Params(recv()).Id("remove").Params(w(), r()).BlockFunc(func(g *jen.Group) {
		g.Var().Id("ids").Index().Add(gen.BaseType(t.ID))
		g.For(jen.List(jen.Id("_"), jen.Id("s")).Op(":=").Range().Qual("strings", "Split").Call(
			jen.Id("r").Dot("PathValue").Call(jen.Lit("ids")), jen.Lit(","),
		)).BlockFunc(func(g *jen.Group) {
			parse(g, t.ID, fail("StatusBadRequest"))
			g.Id("ids").Op("=").Append(jen.Id("ids"), jen.Id("v"))
		})
		g.If(
			jen.Err().Op(":=").Id("c").Dot("svc").Dot("Delete").Call(jen.Id("r").Dot("Context").Call(), jen.Id("ids").Op("...")),
			jen.Err().Op("!=").Nil(),
		).Block(fail("StatusInternalServerError")...)
		g.Add(reply(jen.Dict{}))
	})

	queryParser(f, c, recv())

	f.Func().Params(recv()).Id("reply").Params(w(), jen.Id("status").Int(), jen.Id("v").Id("any")).Block(
		jen.Id("w").Dot("Header").Call().Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit("application/json")),
		jen.Id("w").Dot("WriteHeader").Call(jen.Id("status")),
		jen.Id("_").Op("=").Qual(jsonPkg, "NewEncoder").Call(jen.Id("w")).Dot("Encode").Call(jen.Id("v")),
	)
	f.Func().Params(recv()).Id("fail").Params(w(), jen.Id("status").Int(), jen.Err().Error()).Block(
		jen.Id("c").Dot("reply").Call(jen.Id("w"), jen.Id("status"), jen.Map(jen.String()).Id("any").Values(jen.Dict{
			jen.Lit("code"): jen.Id("status"),
			jen.Lit("msg"):  jen.Err().Dot("Error").Call(),
		})),
	)
	return f, nil
}

// queryParser generates the method reading the list filters from the URL query.
func queryParser(f *jen.File, c *gen.Context, recv *jen.Statement) {
	var (
		t = c.Table
		m = model(c)
	)
	field := func(g *jen.Group, fd *gen.Field, key, name string) {
		fail := []jen.Code{jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(key+": %w"), jen.Err()))}
		g.If(jen.Id("s").Op(":=").Id("vals").Dot("Get").Call(jen.Lit(key)), jen.Id("s").Op("!=").Lit("")).BlockFunc(func(g *jen.Group) {
			parse(g, fd, fail)
			if fd.Type.Slice() {
				g.Id("q").Dot(name).Op("=").Id("v")
				return
			}
			g.Id("q").Dot(name).Op("=").Op("&").Id("v")
		})
	}
	f.Func().Params(recv).Id("query").Params(jen.Id("r").Op("*").Qual(httpPkg, "Request")).
		Params(jen.Op("*").Add(m(t.QueryName())), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("vals").Op(":=").Id("r").Dot("URL").Dot("Query").Call()
		g.Id("q").Op(":=").Op("&").Add(m(t.QueryName())).Values()
		for _, fd := range t.Queryable() {
			if fd.Bound() {
				field(g, fd, "begin"+fd.Name, fd.BeginName())
				field(g, fd, "end"+fd.Name, fd.EndName())
				continue
			}
			field(g, fd, fd.JSON, fd.Name)
		}
		for _, page := range []struct{ key, name string }{{"pageNum", "PageNum"}, {"pageSize", "PageSize"}} {
			g.If(jen.Id("s").Op(":=").Id("vals").Dot("Get").Call(jen.Lit(page.key)), jen.Id("s").Op("!=").Lit("")).Block(
				jen.List(jen.Id("n"), jen.Err()).Op(":=").Qual("strconv", "Atoi").Call(jen.Id("s")),
				jen.If(jen.Err().Op("!=").Nil()).Block(
					jen.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit(page.key+": %w"), jen.Err())),
				),
				jen.Id("q").Dot(page.name).Op("=").Id("n"),
			)
		}
		g.Return(jen.Id("q"), jen.Nil())
	})
}

// parse appends statements declaring v, the string s parsed as the base
// type of f. The fail statements run when s is malformed.
func parse(g *jen.Group, f *gen.Field, fail []jen.Code) {
	s := jen.Id("s")
	check := func() { g.If(jen.Err().Op("!=").Nil()).Block(fail...) }
	typ := f.Type
	switch {
	case typ.PkgPath == "time":
		layout := "DateTime"
		switch f.Column.Type.Name {
		case schema.TypeDate:
			layout = "DateOnly"
		case schema.TypeTime:
			layout = "TimeOnly"
		}
		g.List(jen.Id("v"), jen.Err()).Op(":=").Qual("time", "Parse").Call(jen.Qual("time", layout), s)
		check()
	case typ.PkgPath == gen.DecimalPkg:
		g.List(jen.Id("v"), jen.Err()).Op(":=").Qual(gen.DecimalPkg, "NewFromString").Call(s)
		check()
	case typ.PkgPath != "":
		g.Id("v").Op(":=").Qual(typ.PkgPath, typ.Ident).Call(s)
	case typ.Ident == "[]byte":
		g.Id("v").Op(":=").Index().Byte().Call(s)
	case typ.Ident == "bool":
		g.List(jen.Id("v"), jen.Err()).Op(":=").Qual("strconv", "ParseBool").Call(s)
		check()
	case strings.HasPrefix(typ.Ident, "float"):
		bits := strings.TrimPrefix(typ.Ident, "float")
		g.List(jen.Id("n"), jen.Err()).Op(":=").Qual("strconv", "ParseFloat").Call(s, jen.Id(bits))
		check()
		convert(g, typ.Ident, "float64")
	case strings.HasPrefix(typ.Ident, "uint"):
		bits := strings.TrimPrefix(typ.Ident, "uint")
		g.List(jen.Id("n"), jen.Err()).Op(":=").Qual("strconv", "ParseUint").Call(s, jen.Lit(10), jen.Id(bits))
		check()
		convert(g, typ.Ident, "uint64")
	case strings.HasPrefix(typ.Ident, "int"):
		bits := strings.TrimPrefix(typ.Ident, "int")
		g.List(jen.Id("n"), jen.Err()).Op(":=").Qual("strconv", "ParseInt").Call(s, jen.Lit(10), jen.Id(bits))
		check()
		convert(g, typ.Ident, "int64")
	default:
		g.Id("v").Op(":=").Add(s)
	}
}

// convert declares v from n, converting when the parsed width differs.
func convert(g *jen.Group, ident, parsed string) {
	if ident == parsed {
		g.Id("v").Op(":=").Id("n")
		return
	}
	g.Id("v").Op(":=").Id(ident).Call(jen.Id("n"))
}
