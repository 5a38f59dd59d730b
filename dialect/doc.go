// Package dialect defines the execution contracts and platform capabilities
// relgen relies on.
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// Statements are executed through a Driver. A Tx is a Driver bound to a
// transaction, and ExecQuerier is the subset both share:
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Platform
//
// Platform reports what the database enforces on its own. Platforms without
// native ON DELETE triggers (SQLite with foreign keys off, for instance) get
// cascade and set-null behavior emulated by the delete orchestrator.
//
//	p := dialect.PlatformFor(dialect.SQLite)
//	p.SupportsNativeDeleteTrigger() // false
//
// The dialect/sql sub-package implements Driver on top of database/sql.
package dialect
