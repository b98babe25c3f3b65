// Package gen turns table metadata into generated artifacts.
//
// It covers three steps of the pipeline:
//
//	Merge          live metadata + stored config  => merged schema.Table
//	NewContext     merged tables                  => Context (names, Go types, relations)
//	Generator      Context + TemplateSet          => Files
//
// # Naming
//
// ToIdentifier converts raw names into snake_case, PascalCase, camelCase and
// kebab-case. Conversions are idempotent and acronym aware:
//
//	ToIdentifier("sys_user_id", Pascal) // SysUserID
//	ToIdentifier("SysUserID", Snake)    // sys_user_id
//
// A Namer strips configured table prefixes first. Identifiers colliding with
// Go keywords, predeclared names or generated methods get a "_" suffix and
// are reported as Collision warnings.
//
// # Types
//
// MapType maps canonical native types to Go types and validation rules.
// There is no fallback: an unmapped type fails the whole table with
// *tablegen.UnknownTypeError.
//
// # Rendering
//
// Every template of a set receives the same Context, so all artifacts share
// one source of truth for identifiers and types. Go artifacts are built with
// jennifer (see the golang subpackage); view, api and menu SQL artifacts are
// text templates. Custom *.tmpl directories can be loaded with LoadDir.
//
//	cfg, _ := gen.NewConfig(gen.WithPrefixes("sys_"), gen.WithAuthor("ruoyi"))
//	ctx, err := gen.NewContext(cfg, gen.Input{Table: table, Stored: stored}, nil)
//	if err != nil {
//		return err
//	}
//	files, err := gen.NewGenerator(cfg).Render(context.Background(), ctx, set)
//
// Rendering is all-or-nothing: a failing template discards every file.
package gen
