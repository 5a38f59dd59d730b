package query

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
)

// Formatter materializes the rows of an executed query. Implementations
// must close rows.
type Formatter interface {
	Format(ctx context.Context, q *Query, rows sql.ColumnScanner) (relgen.Collection, error)
	FormatOne(ctx context.Context, q *Query, rows sql.ColumnScanner) (relgen.Entity, error)
}

// ObjectFormatter materializes rows as records. Pooled instances are
// reused and new ones are added to the session pool.
type ObjectFormatter struct{}

// Format implements Formatter.
func (ObjectFormatter) Format(_ context.Context, q *Query, rows sql.ColumnScanner) (relgen.Collection, error) {
	_, values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, err
	}
	_, names := q.columns()
	coll := make(relgen.Collection, 0, len(values))
	for _, row := range values {
		coll = append(coll, q.pooled(names, row))
	}
	return coll, nil
}

// FormatOne implements Formatter.
func (f ObjectFormatter) FormatOne(ctx context.Context, q *Query, rows sql.ColumnScanner) (relgen.Entity, error) {
	coll, err := f.Format(ctx, q, rows)
	if err != nil || len(coll) == 0 {
		return nil, err
	}
	return coll[0], nil
}

// hydrate builds a record from a row and resolves its concrete class.
func (q *Query) hydrate(names []string, row []any) *relgen.Record {
	t := q.typ.Table
	r := relgen.NewRecord(t.Name, names, row)
	if inh := t.Inheritance; inh != nil {
		if v, ok := r.Value(inh.Column); ok {
			if class, ok := inh.ClassFor(v); ok {
				r.SetClass(class)
			}
		}
	}
	return r
}

// pooled returns the pooled instance of a row, or hydrates and pools it.
func (q *Query) pooled(names []string, row []any) relgen.Entity {
	t := q.typ.Table
	pool := q.client.pool
	r := q.hydrate(names, row)
	key, ok := relgen.EntityKey(t, r)
	if !ok {
		return r
	}
	if e, ok := pool.Get(t, key); ok {
		return e
	}
	pool.Put(t, r, key)
	return r
}

// Iterate executes the query and streams its rows as records. Instance
// pooling is suspended while iterating and restored when the iteration
// ends, whether it completes, breaks early or fails. The returned sequence
// can be ranged over once.
func (q *Query) Iterate(ctx context.Context) iter.Seq2[*relgen.Record, error] {
	var used atomic.Bool
	return func(yield func(*relgen.Record, error) bool) {
		if used.Swap(true) {
			yield(nil, relgen.NewUsageError("Iterate", "query results can be iterated only once"))
			return
		}
		restore := q.client.pool.Suspend()
		defer restore()
		cc, err := q.prepare(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		selects, names := q.columns()
		rows, err := q.client.rows(ctx, q.client.driver, "SELECT", q.client.builder.Select(cc, selects...))
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			row, err := sql.ScanRow(rows, len(names))
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(q.hydrate(names, row), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("relgen: iterating %s: %w", q.typ.Table.Name, err))
		}
	}
}

// All collects a streamed iteration.
func All(seq iter.Seq2[*relgen.Record, error]) ([]*relgen.Record, error) {
	var out []*relgen.Record
	for r, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, r)
	}
	return out, nil
}
