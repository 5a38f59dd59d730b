package query

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
)

// FindPk returns the entity with the given primary key, or nil when no row
// matches. Composite keys are passed as a list in primary key order.
//
// Queries without filters or joins are answered from the instance pool
// when possible, and otherwise with a direct single row SELECT. Bulk load
// tables are loaded and pooled completely on the first lookup.
func (q *Query) FindPk(ctx context.Context, key any) (relgen.Entity, error) {
	if q.err != nil {
		return nil, q.err
	}
	if key == nil {
		return nil, nil
	}
	cc, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	t := q.typ.Table
	if !cc.IsEmpty() || t.Abstract || len(q.withs) > 0 {
		return q.Clone().FilterByPrimaryKey(key).FindOne(ctx)
	}
	poolKey, err := q.typ.PK.PoolKey(key)
	if err != nil {
		return nil, err
	}
	pool := q.client.pool
	if e, ok := pool.Get(t, poolKey); ok {
		return e, nil
	}
	if t.BulkLoad {
		return q.bulkLoad(ctx, poolKey)
	}
	pred, err := q.typ.PK.Predicate("", key)
	if err != nil {
		return nil, err
	}
	cols := q.typ.SelectColumns()
	stmt := sq.Select(sql.Qualified("", cols...)...).
		From(sql.Ident(t.Name)).
		Where(pred).
		PlaceholderFormat(q.client.builder.Placeholder())
	rows, err := q.client.rows(ctx, q.client.driver, "SELECT", stmt)
	if err != nil {
		return nil, err
	}
	_, values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	r := q.hydrate(cols, values[0])
	pool.Put(t, r, poolKey)
	return r, nil
}

// bulkLoad selects every row of the table, pools them and returns the one
// with the given pool key.
func (q *Query) bulkLoad(ctx context.Context, poolKey string) (relgen.Entity, error) {
	t := q.typ.Table
	cols := q.typ.SelectColumns()
	stmt := sq.Select(sql.Qualified("", cols...)...).From(sql.Ident(t.Name)).PlaceholderFormat(q.client.builder.Placeholder())
	rows, err := q.client.rows(ctx, q.client.driver, "SELECT", stmt)
	if err != nil {
		return nil, err
	}
	_, values, err := sql.ScanValues(rows)
	if err != nil {
		return nil, err
	}
	var found relgen.Entity
	for _, row := range values {
		r := q.hydrate(cols, row)
		key, ok := relgen.EntityKey(t, r)
		if !ok {
			continue
		}
		q.client.pool.Put(t, r, key)
		if key == poolKey {
			found = r
		}
	}
	q.client.log.DebugContext(ctx, "relgen: bulk loaded table", "table", t.Name, "rows", len(values))
	return found, nil
}

// FindPks returns the entities with the given primary keys. An empty key
// list returns an empty collection.
func (q *Query) FindPks(ctx context.Context, keys any) (relgen.Collection, error) {
	if q.err != nil {
		return nil, q.err
	}
	if !q.typ.PK.Exists() {
		return nil, relgen.NewUsageError("FindPks", "table %q has no primary key", q.typ.Table.Name)
	}
	cq := q.Clone().FilterByPrimaryKeys(keys)
	coll, err := cq.Find(ctx)
	if err != nil {
		return nil, fmt.Errorf("relgen: find %s by primary keys: %w", q.typ.Table.Name, err)
	}
	return coll, nil
}
