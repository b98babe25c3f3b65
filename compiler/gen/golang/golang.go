// Package golang renders the Go backend artifacts of a table: the entity,
// the data access object, the service and the HTTP controller. Each artifact
// is built with jennifer so the output is always syntactically valid and
// formatted.
package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/tablegen/compiler/gen"
)

// Packages of the generated code, relative to the module directory.
const (
	PkgModel      = "model"
	PkgDAO        = "dao"
	PkgService    = "service"
	PkgController = "controller"
)

// Import paths used by the generated code.
const (
	gormPkg = "gorm.io/gorm"
	httpPkg = "net/http"
	jsonPkg = "encoding/json"
)

// Templates returns the Go templates in render order.
func Templates() gen.TemplateSet {
	return gen.TemplateSet{
		&gen.JenTemplate{
			K:    gen.KindEntity,
			File: func(c *gen.Context) string { return gen.OutputPath(c, PkgModel, c.Table.Business+".go") },
			Gen:  func(c *gen.Context) (*jen.File, error) { return Entity(c, c.Table) },
		},
		&gen.JenTemplate{
			K:    gen.KindSubEntity,
			Cond: func(c *gen.Context) bool { return c.Sub != nil },
			File: func(c *gen.Context) string { return gen.OutputPath(c, PkgModel, c.Sub.Business+".go") },
			Gen:  func(c *gen.Context) (*jen.File, error) { return Entity(c, c.Sub) },
		},
		&gen.JenTemplate{
			K:    gen.KindDAO,
			File: func(c *gen.Context) string { return gen.OutputPath(c, PkgDAO, c.Table.Business+"_dao.go") },
			Gen:  DAO,
		},
		&gen.JenTemplate{
			K:    gen.KindService,
			File: func(c *gen.Context) string { return gen.OutputPath(c, PkgService, c.Table.Business+"_service.go") },
			Gen:  Service,
		},
		&gen.JenTemplate{
			K: gen.KindController,
			File: func(c *gen.Context) string {
				return gen.OutputPath(c, PkgController, c.Table.Business+"_controller.go")
			},
			Gen: Controller,
		},
	}
}

// model returns a qualifier for identifiers of the generated model package.
func model(c *gen.Context) func(string) *jen.Statement {
	path := c.ImportPath(PkgModel)
	return func(name string) *jen.Statement { return jen.Qual(path, name) }
}

// typeDoc writes the author line shared by the generated type comments.
func typeDoc(f *jen.File, t *gen.Type, doc string) {
	f.Comment(doc)
	if t.Author != "" {
		f.Comment("")
		f.Comment("Author: " + t.Author)
	}
}
