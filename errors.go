package entable

import (
	"errors"
	"fmt"
	"reflect"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a query that expects a row returns none.
	ErrNotFound = errors.New("entable: entity not found")

	// ErrMissingColumn is returned when a result row lacks a mapped column.
	ErrMissingColumn = errors.New("entable: column missing from result")

	// ErrEmptyUpdate is returned when an update has nothing to SET.
	ErrEmptyUpdate = errors.New("entable: update has no values to set")

	// ErrUnqualifiedUpdate is returned when an update has no WHERE terms
	// and would rewrite every row of the table.
	ErrUnqualifiedUpdate = errors.New("entable: update has no predicate")

	// ErrUnqualifiedDelete is returned when a delete has no WHERE terms
	// and would remove every row of the table.
	ErrUnqualifiedDelete = errors.New("entable: delete has no predicate")

	// ErrUnsupported is returned when a statement shape is not supported
	// by the connection's dialect.
	ErrUnsupported = errors.New("entable: not supported by dialect")
)

// MetadataError reports an entity type that cannot be described: it is
// missing its table binding or carries a malformed column tag. It is raised
// with panic since it is a programming error, not a runtime condition.
type MetadataError struct {
	Type  reflect.Type
	Field string // Optional: offending struct field
	Msg   string
}

// Error returns the error string.
func (e *MetadataError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("entable: invalid metadata for %v.%s: %s", e.Type, e.Field, e.Msg)
	}
	return fmt.Sprintf("entable: invalid metadata for %v: %s", e.Type, e.Msg)
}

// NewMetadataError returns a new MetadataError.
func NewMetadataError(typ reflect.Type, field, msg string) *MetadataError {
	return &MetadataError{Type: typ, Field: field, Msg: msg}
}

// IsMetadataError returns true if the error is a MetadataError.
func IsMetadataError(err error) bool {
	if err == nil {
		return false
	}
	var e *MetadataError
	return errors.As(err, &e)
}

// CoercionError reports a stored value that cannot be converted into the
// type of the attribute it is mapped to.
type CoercionError struct {
	Attribute string // Struct field name
	Kind      string // Target attribute kind
	Raw       any    // Offending raw value
	Err       error  // Optional: parse error
}

// Error returns the error string.
func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("entable: cannot coerce %T(%v) into %s attribute %q", e.Raw, e.Raw, e.Kind, e.Attribute)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *CoercionError) Unwrap() error {
	return e.Err
}

// NewCoercionError returns a new CoercionError.
func NewCoercionError(attribute, kind string, raw any, err error) *CoercionError {
	return &CoercionError{Attribute: attribute, Kind: kind, Raw: raw, Err: err}
}

// IsCoercionError returns true if the error is a CoercionError.
func IsCoercionError(err error) bool {
	if err == nil {
		return false
	}
	var e *CoercionError
	return errors.As(err, &e)
}

// MappingError reports a result row that could not be mapped onto an
// entity. Err is either ErrMissingColumn or a *CoercionError.
type MappingError struct {
	Table  string
	Row    int // Zero-based index of the row within the result set
	Column string
	Err    error
}

// Error returns the error string.
func (e *MappingError) Error() string {
	return fmt.Sprintf("entable: mapping %s row %d column %q: %v", e.Table, e.Row, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Err
}

// NewMappingError returns a new MappingError.
func NewMappingError(table string, row int, column string, err error) *MappingError {
	return &MappingError{Table: table, Row: row, Column: column, Err: err}
}

// IsMappingError returns true if the error is a MappingError.
func IsMappingError(err error) bool {
	if err == nil {
		return false
	}
	var e *MappingError
	return errors.As(err, &e)
}

// StatementError wraps a failed statement together with the SQL text and
// arguments that were sent to the driver.
type StatementError struct {
	Op    string // Operation (e.g., "select", "insert", "create")
	Query string
	Args  []any
	Err   error
}

// Error returns the error string.
func (e *StatementError) Error() string {
	if len(e.Args) > 0 {
		return fmt.Sprintf("entable: %s: %v [query=%q args=%v]", e.Op, e.Err, e.Query, e.Args)
	}
	return fmt.Sprintf("entable: %s: %v [query=%q]", e.Op, e.Err, e.Query)
}

// Unwrap returns the underlying error.
func (e *StatementError) Unwrap() error {
	return e.Err
}

// NewStatementError returns a new StatementError.
func NewStatementError(op, query string, args []any, err error) *StatementError {
	return &StatementError{Op: op, Query: query, Args: args, Err: err}
}

// IsStatementError returns true if the error is a StatementError.
func IsStatementError(err error) bool {
	if err == nil {
		return false
	}
	var e *StatementError
	return errors.As(err, &e)
}

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entable: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a database constraint violation error.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("entable: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}
