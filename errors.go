package tablegen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of a generation request.
var (
	// ErrConnection is returned when the database is unreachable or a catalog query timed out.
	ErrConnection = errors.New("tablegen: connection failed")

	// ErrNotFound is returned when a named table does not exist.
	ErrNotFound = errors.New("tablegen: table not found")

	// ErrUnsupportedDialect is returned for an unknown dialect tag.
	ErrUnsupportedDialect = errors.New("tablegen: unsupported dialect")

	// ErrUnknownType is returned when a native column type has no mapping.
	ErrUnknownType = errors.New("tablegen: unknown column type")

	// ErrInvalidTreeConfig is returned when tree generation lacks its id/parent/name columns.
	ErrInvalidTreeConfig = errors.New("tablegen: invalid tree configuration")

	// ErrDanglingReference is returned when a master-sub relation does not resolve.
	ErrDanglingReference = errors.New("tablegen: dangling reference")

	// ErrPackaging is returned when the packager detects an internal invariant violation.
	ErrPackaging = errors.New("tablegen: packaging failed")

	// ErrInvalidTable is returned when table metadata breaks a structural invariant,
	// such as a missing or composite primary key.
	ErrInvalidTable = errors.New("tablegen: invalid table")

	// ErrConfigNotFound is returned by configuration stores for tables without a stored config.
	ErrConfigNotFound = errors.New("tablegen: configuration not found")
)

// ConnectionError represents a transport failure talking to the database.
// It is the only retryable error class.
type ConnectionError struct {
	Dialect string
	Table   string
	Op      string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: connection error")
	if e.Dialect != "" {
		b.WriteString(" (")
		b.WriteString(e.Dialect)
		b.WriteString(")")
	}
	if e.Op != "" {
		b.WriteString(" during ")
		b.WriteString(e.Op)
	}
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrConnection.
func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(dialect, table, op string, cause error) *ConnectionError {
	return &ConnectionError{Dialect: dialect, Table: table, Op: op, Cause: cause}
}

// NotFoundError is returned when the named table is absent from the inspected schema.
type NotFoundError struct {
	Table  string
	Schema string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Schema != "" {
		return fmt.Sprintf("tablegen: table %q not found in schema %q", e.Table, e.Schema)
	}
	return fmt.Sprintf("tablegen: table %q not found", e.Table)
}

// Is reports whether the target matches ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(table, schema string) *NotFoundError {
	return &NotFoundError{Table: table, Schema: schema}
}

// UnsupportedDialectError is returned for dialect tags with no implementation.
type UnsupportedDialectError struct {
	Dialect string
}

// Error implements the error interface.
func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("tablegen: unsupported dialect %q", e.Dialect)
}

// Is reports whether the target matches ErrUnsupportedDialect.
func (e *UnsupportedDialectError) Is(target error) bool { return target == ErrUnsupportedDialect }

// NewUnsupportedDialectError creates a new UnsupportedDialectError.
func NewUnsupportedDialectError(dialect string) *UnsupportedDialectError {
	return &UnsupportedDialectError{Dialect: dialect}
}

// UnknownTypeError names the table and column whose native type could not be mapped.
type UnknownTypeError struct {
	Table      string
	Column     string
	NativeType string
}

// Error implements the error interface.
func (e *UnknownTypeError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: unknown column type")
	if e.NativeType != "" {
		fmt.Fprintf(&b, " %q", e.NativeType)
	}
	if e.Table != "" || e.Column != "" {
		fmt.Fprintf(&b, " on %s", qualified(e.Table, e.Column))
	}
	return b.String()
}

// Is reports whether the target matches ErrUnknownType.
func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }

// NewUnknownTypeError creates a new UnknownTypeError.
func NewUnknownTypeError(table, column, nativeType string) *UnknownTypeError {
	return &UnknownTypeError{Table: table, Column: column, NativeType: nativeType}
}

// InvalidTreeConfigError is returned when the tree options do not resolve to columns.
type InvalidTreeConfigError struct {
	Table   string
	Option  string // TreeCode, TreeParentCode or TreeName
	Column  string
	Message string
}

// Error implements the error interface.
func (e *InvalidTreeConfigError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: invalid tree configuration")
	if e.Table != "" {
		b.WriteString(" for table ")
		b.WriteString(e.Table)
	}
	if e.Option != "" {
		fmt.Fprintf(&b, " (%s", e.Option)
		if e.Column != "" {
			fmt.Fprintf(&b, "=%q", e.Column)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrInvalidTreeConfig.
func (e *InvalidTreeConfigError) Is(target error) bool { return target == ErrInvalidTreeConfig }

// NewInvalidTreeConfigError creates a new InvalidTreeConfigError.
func NewInvalidTreeConfigError(table, option, column, message string) *InvalidTreeConfigError {
	return &InvalidTreeConfigError{Table: table, Option: option, Column: column, Message: message}
}

// DanglingReferenceError is returned when a master-sub relation points at a missing column.
type DanglingReferenceError struct {
	Master  string
	Sub     string
	Column  string
	Message string
}

// Error implements the error interface.
func (e *DanglingReferenceError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: dangling reference")
	if e.Master != "" || e.Sub != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.Sub, e.Master)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrDanglingReference.
func (e *DanglingReferenceError) Is(target error) bool { return target == ErrDanglingReference }

// NewDanglingReferenceError creates a new DanglingReferenceError.
func NewDanglingReferenceError(master, sub, column, message string) *DanglingReferenceError {
	return &DanglingReferenceError{Master: master, Sub: sub, Column: column, Message: message}
}

// PackagingError reports an internal invariant violation while building the archive.
// It indicates a bug, not a user error.
type PackagingError struct {
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *PackagingError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: packaging error")
	if e.Path != "" {
		b.WriteString(" (path: ")
		b.WriteString(e.Path)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *PackagingError) Unwrap() error { return e.Cause }

// Is reports whether the target matches ErrPackaging.
func (e *PackagingError) Is(target error) bool { return target == ErrPackaging }

// NewPackagingError creates a new PackagingError.
func NewPackagingError(path, message string, cause error) *PackagingError {
	return &PackagingError{Path: path, Message: message, Cause: cause}
}

// TableError represents a structural problem with table metadata.
type TableError struct {
	Table   string
	Column  string
	Message string
}

// Error implements the error interface.
func (e *TableError) Error() string {
	var b strings.Builder
	b.WriteString("tablegen: invalid table")
	if e.Table != "" || e.Column != "" {
		b.WriteString(" ")
		b.WriteString(qualified(e.Table, e.Column))
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrInvalidTable.
func (e *TableError) Is(target error) bool { return target == ErrInvalidTable }

// NewTableError creates a new TableError.
func NewTableError(table, column, message string) *TableError {
	return &TableError{Table: table, Column: column, Message: message}
}

// IsConnection reports whether the error is a ConnectionError.
func IsConnection(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

// IsNotFound reports whether the error is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsUnsupportedDialect reports whether the error is an UnsupportedDialectError.
func IsUnsupportedDialect(err error) bool {
	var e *UnsupportedDialectError
	return errors.As(err, &e)
}

// IsUnknownType reports whether the error is an UnknownTypeError.
func IsUnknownType(err error) bool {
	var e *UnknownTypeError
	return errors.As(err, &e)
}

// IsInvalidTreeConfig reports whether the error is an InvalidTreeConfigError.
func IsInvalidTreeConfig(err error) bool {
	var e *InvalidTreeConfigError
	return errors.As(err, &e)
}

// IsDanglingReference reports whether the error is a DanglingReferenceError.
func IsDanglingReference(err error) bool {
	var e *DanglingReferenceError
	return errors.As(err, &e)
}

// IsPackaging reports whether the error is a PackagingError.
func IsPackaging(err error) bool {
	var e *PackagingError
	return errors.As(err, &e)
}

// IsTableError reports whether the error is a TableError.
func IsTableError(err error) bool {
	var e *TableError
	return errors.As(err, &e)
}

// IsConfigNotFound reports whether the error marks a table without a stored config.
func IsConfigNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}

// Retryable reports whether the caller may retry the failed request unchanged.
func Retryable(err error) bool {
	return errors.Is(err, ErrConnection)
}

func qualified(table, column string) string {
	switch {
	case table == "":
		return "column " + column
	case column == "":
		return "table " + table
	default:
		return "column " + table + "." + column
	}
}
