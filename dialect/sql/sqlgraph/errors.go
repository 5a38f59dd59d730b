// Package sqlgraph classifies database driver errors.
package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// ConstraintKind is the kind of a violated constraint.
type ConstraintKind uint8

// Constraint kinds.
const (
	NoConstraint ConstraintKind = iota
	UniqueConstraint
	ForeignKeyConstraint
	CheckConstraint
)

func (k ConstraintKind) String() string {
	switch k {
	case UniqueConstraint:
		return "unique"
	case ForeignKeyConstraint:
		return "foreign key"
	case CheckConstraint:
		return "check"
	}
	return "none"
}

// PostgreSQL SQLSTATE codes for constraint violations (Class 23).
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// MySQL error numbers for constraint violations.
const (
	mysqlDuplicateEntry         = 1062
	mysqlForeignKeyParent       = 1451 // Cannot delete or update a parent row
	mysqlForeignKeyChild        = 1452 // Cannot add or update a child row
	mysqlCheckConstraintViolate = 3819
)

// sqlStateError is implemented by drivers exposing SQLSTATE codes (pgx).
type sqlStateError interface {
	SQLState() string
}

// Classify reports the kind of constraint violation behind err.
func Classify(err error) ConstraintKind {
	if err == nil {
		return NoConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromSQLState(pqErr.SQLState())
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return UniqueConstraint
		case mysqlForeignKeyParent, mysqlForeignKeyChild:
			return ForeignKeyConstraint
		case mysqlCheckConstraintViolate:
			return CheckConstraint
		}
		return NoConstraint
	}
	var e sqlStateError
	if errors.As(err, &e) {
		if k := fromSQLState(e.SQLState()); k != NoConstraint {
			return k
		}
	}
	// SQLite drivers only expose the message.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return UniqueConstraint
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ForeignKeyConstraint
	case strings.Contains(msg, "CHECK constraint failed"):
		return CheckConstraint
	}
	return NoConstraint
}

func fromSQLState(code string) ConstraintKind {
	switch code {
	case pgUniqueViolation:
		return UniqueConstraint
	case pgForeignKeyViolation:
		return ForeignKeyConstraint
	case pgCheckViolation:
		return CheckConstraint
	}
	return NoConstraint
}

// IsConstraintError reports whether err resulted from a constraint violation.
func IsConstraintError(err error) bool { return Classify(err) != NoConstraint }

// IsUniqueConstraintError reports whether err resulted from a uniqueness violation.
func IsUniqueConstraintError(err error) bool { return Classify(err) == UniqueConstraint }

// IsForeignKeyConstraintError reports whether err resulted from a foreign key violation,
// e.g. deleting a parent row that is still referenced.
func IsForeignKeyConstraintError(err error) bool { return Classify(err) == ForeignKeyConstraint }

// IsCheckConstraintError reports whether err resulted from a check constraint violation.
func IsCheckConstraintError(err error) bool { return Classify(err) == CheckConstraint }
