// Package schema holds the dialect-independent metadata model used by the
// generator: a Table with its ordered Columns, the per-column generation
// policy, and the persisted TableConfig.
//
// Tables are produced by the introspect package, which normalizes native
// type names into the canonical vocabulary of NativeType before they leave
// the dialect boundary:
//
//	tinyint smallint mediumint int bigint      integers
//	decimal float double                       numerics
//	char varchar text enum                     strings
//	date time datetime                         temporal
//	bool json blob uuid                        others
//
// Any other name (e.g. "geometry") is kept as reported and rejected later by
// the type mapper.
//
// # Policy
//
// Every column carries an explicit ColumnPolicy. DefaultPolicy derives it
// from SQL constraints; a stored ColumnConfig replaces it wholesale:
//
//	p := schema.DefaultPolicy(col)     // NOT NULL => Required
//	p.Required = false                  // explicitly relaxed and persisted
//
// Column order is significant: it drives struct field order and form layout.
package schema
