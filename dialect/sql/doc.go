// Package sql implements dialect.Driver over database/sql and renders
// query criteria into SQL statements.
//
// # Criteria
//
// A Criteria collects the filters of a query on one table together with its
// joins, aliases and modifiers. Filters are squirrel predicates on qualified
// columns and are ANDed in insertion order:
//
//	c := sql.NewCriteria("orders")
//	pred, _ := sql.Compare("orders.status", sql.In, []int{0, 1})
//	c.Add("orders", "status", pred)
//
// # Statements
//
// Builder renders criteria for a dialect, picking the bind parameter style
// ("$1" for PostgreSQL, "?" elsewhere):
//
//	s, args, err := sql.Dialect(dialect.Postgres).Select(c, "orders.id").ToSql()
//	// SELECT orders.id FROM orders WHERE orders.status IN ($1,$2)
//
// Set columns are filtered with the bitwise comparisons BinaryAll
// ("(col & v) = v"), BinaryAnd ("(col & v) <> 0") and BinaryNone
// ("(col & v) = 0").
//
// # Drivers
//
//	drv, err := sql.Open("postgres", dsn)
//	stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(200*time.Millisecond))
package sql
