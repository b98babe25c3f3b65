// Package tablegen generates CRUD scaffolding from live database tables.
//
// A generation request names a connection and one or more tables. The
// tables are introspected, merged with their stored generation config,
// mapped to Go, Vue, JavaScript and SQL artifacts, and returned
// as a single zip archive. Either every artifact renders or none does.
//
// This package holds the error vocabulary shared by all subpackages.
// Use the Is helpers or errors.Is with the sentinels to classify failures:
//
//	if tablegen.IsUnknownType(err) {
//		// report the column, do not retry
//	}
//	if tablegen.Retryable(err) {
//		// connection or timeout, safe to retry
//	}
package tablegen
