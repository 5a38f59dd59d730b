package dialect

import (
	"context"
	"fmt"
	"strings"
)

// Database dialects.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the two database operations.
type ExecQuerier interface {
	// Exec executes a statement that does not return rows. v, when not nil,
	// receives the driver result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement that returns rows, scanned into v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for relgen clients.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Platform describes the capabilities of a database platform.
type Platform struct {
	Name string
	// NativeDeleteTrigger reports whether ON DELETE CASCADE and SET NULL
	// are enforced by the database.
	NativeDeleteTrigger bool
	// UUIDSwap stores binary UUIDs with swapped time fields, the layout
	// produced by MySQL's UUID_TO_BIN(uuid, 1).
	UUIDSwap bool
}

// PlatformFor returns the default platform of a dialect. Unknown dialects
// get a platform without native delete triggers.
func PlatformFor(name string) Platform {
	switch Normalize(name) {
	case Postgres:
		return Platform{Name: Postgres, NativeDeleteTrigger: true}
	case MySQL:
		return Platform{Name: MySQL, NativeDeleteTrigger: true}
	case SQLite:
		return Platform{Name: SQLite}
	}
	return Platform{Name: name}
}

// SupportsNativeDeleteTrigger reports whether referential delete actions
// are enforced by the database.
func (p Platform) SupportsNativeDeleteTrigger() bool { return p.NativeDeleteTrigger }

// Quote quotes an identifier for the platform. MySQL uses backticks,
// the other platforms use double quotes.
func (p Platform) Quote(ident string) string {
	if Normalize(p.Name) == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Normalize maps driver names ("sqlite3", "pgx", "postgresql") to a dialect constant.
func Normalize(name string) string {
	switch n := strings.ToLower(name); {
	case strings.HasPrefix(n, "postgres"), n == "pgx", n == "pq":
		return Postgres
	case strings.HasPrefix(n, "mysql"), n == "mariadb":
		return MySQL
	case strings.HasPrefix(n, "sqlite"):
		return SQLite
	default:
		return n
	}
}

// Valid reports an error when name is not a supported dialect.
func Valid(name string) error {
	switch Normalize(name) {
	case Postgres, MySQL, SQLite:
		return nil
	}
	return fmt.Errorf("dialect: unsupported dialect %q", name)
}
