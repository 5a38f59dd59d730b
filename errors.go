package relgen

import (
	"errors"
	"fmt"

	"github.com/syssam/relgen/dialect/sql/sqlgraph"
)

// Standard sentinel errors.
var (
	// ErrNotFound is returned when a required row does not exist.
	ErrNotFound = errors.New("relgen: entity not found")

	// ErrUsage is matched by every UsageError.
	ErrUsage = errors.New("relgen: usage error")

	// ErrValidation is matched by every ValidationError.
	ErrValidation = errors.New("relgen: validation error")
)

// UsageError reports a misuse of the query API: primary key operations on
// a keyless table, key arity mismatches, unsupported comparisons and the
// like. Usage errors are raised before any statement is executed.
type UsageError struct {
	Op  string
	Msg string
}

// Error returns the error string.
func (e *UsageError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("relgen: %s: %s", e.Op, e.Msg)
	}
	return "relgen: " + e.Msg
}

// Is reports whether the target matches ErrUsage.
func (e *UsageError) Is(err error) bool {
	return err == ErrUsage
}

// NewUsageError returns a new UsageError for the given operation.
func NewUsageError(op, format string, args ...any) *UsageError {
	return &UsageError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsUsageError returns true if the error is a UsageError.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrUsage)
}

// ValidationError reports a value outside the declared value set of an
// enum or set column.
type ValidationError struct {
	Table  string
	Column string
	Value  any
	Err    error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("relgen: invalid value %v for column %s.%s: %v", e.Value, e.Table, e.Column, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrValidation.
func (e *ValidationError) Is(err error) bool {
	return err == ErrValidation
}

// NewValidationError returns a new ValidationError.
func NewValidationError(table, column string, value any, err error) *ValidationError {
	return &ValidationError{Table: table, Column: column, Value: value, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// ExecError wraps a driver failure with the statement that caused it.
type ExecError struct {
	Op        string // SELECT, DELETE, UPDATE or COUNT
	Statement string
	Err       error
}

// Error returns the error string.
func (e *ExecError) Error() string {
	return fmt.Sprintf("relgen: unable to execute %s statement [%s]: %v", e.Op, e.Statement, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// NewExecError returns a new ExecError.
func NewExecError(op, statement string, err error) *ExecError {
	return &ExecError{Op: op, Statement: statement, Err: err}
}

// IsExecError returns true if the error is an ExecError.
func IsExecError(err error) bool {
	var e *ExecError
	return errors.As(err, &e)
}

// IsConstraintError returns true if the error resulted from a database
// constraint violation.
func IsConstraintError(err error) bool {
	return sqlgraph.IsConstraintError(err)
}

// RollbackError is returned when rolling back a failed transaction failed
// too. It wraps both the original failure and the rollback failure.
type RollbackError struct {
	Err      error // Original error that triggered rollback
	Rollback error
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("relgen: %v: rollback failed: %v", e.Err, e.Rollback)
}

// Unwrap returns the original and the rollback errors.
func (e *RollbackError) Unwrap() []error {
	return []error{e.Err, e.Rollback}
}

// NotFoundError represents an error when a required row is not found.
type NotFoundError struct {
	table string
	key   any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.key != nil {
		return fmt.Sprintf("relgen: %s not found (key=%v)", e.table, e.key)
	}
	return fmt.Sprintf("relgen: %s not found", e.table)
}

// Is reports whether the target error matches NotFoundError.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// NewNotFoundError returns a new NotFoundError for the given table.
func NewNotFoundError(table string, key any) *NotFoundError {
	return &NotFoundError{table: table, key: key}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
