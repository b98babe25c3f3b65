// Package introspect reads table metadata from database catalog views.
//
// One Inspector exists per dialect. Each normalizes native type names into
// the canonical vocabulary of the schema package before returning, so the
// rest of the pipeline never sees dialect spellings such as
// "character varying" or "int4". Inspection is read-only and bounded by a
// per-query timeout; a timeout or broken connection is reported as a
// *tablegen.ConnectionError.
//
//	insp, err := introspect.New(dialect.MySQL, db, introspect.WithTimeout(5*time.Second))
//	if err != nil {
//		return err
//	}
//	table, err := insp.InspectTable(ctx, "sys_dict_data")
package introspect
