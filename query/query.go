package query

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect/sql"
)

// useMode tells how a secondary query is merged back into its parent.
type useMode uint8

const (
	useJoin useMode = iota
	useExists
	useNotExists
	useIn
	useNotIn
)

// with is a relation whose columns are selected along the query table.
type with struct {
	name    string
	qual    string
	columns []string
}

// Query builds and executes statements over a single table. Builder methods
// record the first error, which is then returned by the terminal operation.
type Query struct {
	client *Client
	typ    *gen.Type
	c      *sql.Criteria
	withs  []with
	err    error

	// set on secondary queries.
	parent   *Query
	relation *gen.Relation
	mode     useMode
}

// Type returns the compiled table the query runs over.
func (q *Query) Type() *gen.Type { return q.typ }

// Criteria returns the criteria of the query.
func (q *Query) Criteria() *sql.Criteria { return q.c }

// Err returns the first error recorded by a builder method.
func (q *Query) Err() error { return q.err }

// Clone returns a copy of the query with its own criteria.
func (q *Query) Clone() *Query {
	if q == nil {
		return nil
	}
	cq := *q
	if q.c != nil {
		cq.c = q.c.Clone()
	}
	cq.withs = append([]with(nil), q.withs...)
	return &cq
}

func (q *Query) fail(err error) *Query {
	if q.err == nil {
		q.err = err
	}
	return q
}

func comparison(cmp []sql.Comparison) sql.Comparison {
	if len(cmp) > 0 {
		return cmp[0]
	}
	return ""
}

// FilterBy adds a filter on a column. The comparison defaults to equality,
// or IN for lists.
func (q *Query) FilterBy(column string, v any, cmp ...sql.Comparison) *Query {
	if q.err != nil {
		return q
	}
	f, err := q.typ.Filter(column)
	if err != nil {
		return q.fail(err)
	}
	if err := f.Apply(q.c, v, comparison(cmp)); err != nil {
		return q.fail(err)
	}
	return q
}

// FilterBySingular adds a filter matching a single element of a plural
// column, by its singular name.
func (q *Query) FilterBySingular(name string, v any, cmp ...sql.Comparison) *Query {
	if q.err != nil {
		return q
	}
	f, err := q.typ.SingularFilter(name)
	if err != nil {
		return q.fail(err)
	}
	if err := f.ApplySingular(q.c, v, comparison(cmp)); err != nil {
		return q.fail(err)
	}
	return q
}

// FilterByRelation filters by a related entity or collection.
func (q *Query) FilterByRelation(name string, v any, cmp ...sql.Comparison) *Query {
	if q.err != nil {
		return q
	}
	r, err := q.typ.Relation(name)
	if err != nil {
		return q.fail(err)
	}
	if err := r.FilterBy(q.c, q.c.Qualifier(), v, comparison(cmp)); err != nil {
		return q.fail(err)
	}
	return q
}

// FilterByPrimaryKey filters by a single primary key value. Composite keys
// are passed as a list in primary key order.
func (q *Query) FilterByPrimaryKey(key any) *Query {
	if q.err != nil {
		return q
	}
	pred, err := q.typ.PK.Predicate(q.c.Qualifier(), key)
	if err != nil {
		return q.fail(err)
	}
	q.c.Add(q.c.Qualifier(), "", pred)
	return q
}

// FilterByPrimaryKeys filters by a list of primary keys. An empty list
// matches no rows.
func (q *Query) FilterByPrimaryKeys(keys any) *Query {
	if q.err != nil {
		return q
	}
	var list []any
	if keys != nil {
		list = sql.AsList(keys)
	}
	pred, err := q.typ.PK.KeysPredicate(q.c.Qualifier(), list)
	if err != nil {
		return q.fail(err)
	}
	q.c.Add(q.c.Qualifier(), "", pred)
	return q
}

// Prune excludes the given entity from the results. A nil entity is
// ignored.
func (q *Query) Prune(e relgen.Entity) *Query {
	if q.err != nil || e == nil {
		return q
	}
	pred, err := q.typ.PK.PrunePredicate(q.c.Qualifier(), e)
	if err != nil {
		return q.fail(err)
	}
	q.c.Add(q.c.Qualifier(), "", pred)
	return q
}

// Where adds a raw predicate.
func (q *Query) Where(pred sq.Sqlizer) *Query {
	if q.err == nil && pred != nil {
		q.c.Add(q.c.Qualifier(), "", pred)
	}
	return q
}

// OrderBy adds ORDER BY terms.
func (q *Query) OrderBy(terms ...string) *Query {
	if q.err == nil {
		q.c.OrderBy(terms...)
	}
	return q
}

// Limit limits the number of returned rows.
func (q *Query) Limit(n uint64) *Query {
	if q.err == nil {
		q.c.Limit(n)
	}
	return q
}

// Offset skips the first n rows.
func (q *Query) Offset(n uint64) *Query {
	if q.err == nil {
		q.c.Offset(n)
	}
	return q
}

// Join joins a relation. An empty alias uses the relation name and an
// empty join type the relation default.
func (q *Query) Join(relation, alias string, joinType sql.JoinType) *Query {
	if q.err != nil {
		return q
	}
	r, err := q.typ.Relation(relation)
	if err != nil {
		return q.fail(err)
	}
	if _, err := r.Join(q.c, q.c.Qualifier(), alias, joinType); err != nil {
		return q.fail(err)
	}
	return q
}

// With joins a relation and selects its columns along the query table.
// Related values are loaded under "<Relation>.<column>".
func (q *Query) With(relation string) *Query {
	if q.err != nil {
		return q
	}
	r, err := q.typ.Relation(relation)
	if err != nil {
		return q.fail(err)
	}
	j, err := r.Join(q.c, q.c.Qualifier(), "", "")
	if err != nil {
		return q.fail(err)
	}
	related, err := q.client.graph.Type(r.Related.Name)
	if err != nil {
		return q.fail(err)
	}
	q.withs = append(q.withs, with{name: r.Name, qual: j.Qualifier(), columns: related.SelectColumns()})
	return q
}

// Use joins a relation and returns a secondary query over the related
// table. Filters of the secondary query apply to the joined rows once
// EndUse merges it back.
func (q *Query) Use(relation, alias string, joinType sql.JoinType) *Query {
	sub, r := q.secondary(relation, useJoin)
	if sub.err != nil {
		return sub
	}
	if _, err := r.Join(q.c, q.c.Qualifier(), alias, joinType); err != nil {
		return sub.fail(err)
	}
	sub.c = r.Subcriteria(alias)
	return sub
}

// UseExists returns a secondary query merged back as a correlated EXISTS.
func (q *Query) UseExists(relation string) *Query {
	return q.useSubquery(relation, useExists)
}

// UseNotExists returns a secondary query merged back as NOT EXISTS.
func (q *Query) UseNotExists(relation string) *Query {
	return q.useSubquery(relation, useNotExists)
}

// UseIn returns a secondary query merged back as an IN subquery. Composite
// relations are not supported.
func (q *Query) UseIn(relation string) *Query {
	return q.useSubquery(relation, useIn)
}

// UseNotIn returns a secondary query merged back as a NOT IN subquery.
func (q *Query) UseNotIn(relation string) *Query {
	return q.useSubquery(relation, useNotIn)
}

func (q *Query) useSubquery(relation string, mode useMode) *Query {
	sub, r := q.secondary(relation, mode)
	if sub.err != nil {
		return sub
	}
	if (mode == useIn || mode == useNotIn) && (r.Kind == gen.ManyToMany || r.IsComposite()) {
		return sub.fail(relgen.NewUsageError("UseIn", "relation %s cannot be matched with IN", r.Name))
	}
	sub.c = r.Subcriteria("")
	return sub
}

func (q *Query) secondary(relation string, mode useMode) (*Query, *gen.Relation) {
	sub := &Query{client: q.client, parent: q, mode: mode, err: q.err}
	if sub.err != nil {
		return sub, nil
	}
	r, err := q.typ.Relation(relation)
	if err != nil {
		return sub.fail(err), nil
	}
	related, err := q.client.graph.Type(r.Related.Name)
	if err != nil {
		return sub.fail(err), nil
	}
	sub.typ, sub.relation = related, r
	return sub, r
}

// EndUse merges a secondary query back into its parent and returns the
// parent. Errors of the secondary query are carried over.
func (q *Query) EndUse() *Query {
	p := q.parent
	if p == nil {
		return q.fail(relgen.NewUsageError("EndUse", "query is not a secondary query"))
	}
	if q.err != nil {
		return p.fail(q.err)
	}
	if p.err != nil {
		return p
	}
	var (
		pred sq.Sqlizer
		err  error
	)
	switch q.mode {
	case useJoin:
		p.c.Merge(q.c)
		return p
	case useExists, useNotExists:
		pred, err = q.relation.ExistsPredicate(p.c.Qualifier(), q.c, q.mode == useNotExists)
	case useIn, useNotIn:
		pred, err = q.relation.InPredicate(p.c.Qualifier(), q.c, q.mode == useNotIn)
	}
	if err != nil {
		return p.fail(err)
	}
	p.c.Add(p.c.Qualifier(), "", pred)
	return p
}

// columns returns the selected columns, qualified, and the record columns
// they are loaded into.
func (q *Query) columns() (selects, names []string) {
	qual := q.c.Qualifier()
	for _, col := range q.typ.SelectColumns() {
		selects = append(selects, sql.Qualify(qual, col))
		names = append(names, col)
	}
	for _, w := range q.withs {
		for _, col := range w.columns {
			selects = append(selects, sql.Qualify(w.qual, col))
			names = append(names, w.name+"."+col)
		}
	}
	return selects, names
}

// prepare returns the criteria to execute, with the pre-select hook
// applied to a copy.
func (q *Query) prepare(ctx context.Context) (*sql.Criteria, error) {
	if q.err != nil {
		return nil, q.err
	}
	if q.parent != nil {
		return nil, relgen.NewUsageError("Find", "secondary queries run through their parent, call EndUse first")
	}
	cc := q.c.Clone()
	if err := q.typ.Extension.RunPreSelect(ctx, cc); err != nil {
		return nil, fmt.Errorf("relgen: pre-select hook of %s: %w", q.typ.Table.Name, err)
	}
	return cc, nil
}

// Find executes the query and returns the matching entities.
func (q *Query) Find(ctx context.Context) (relgen.Collection, error) {
	cc, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	selects, _ := q.columns()
	rows, err := q.client.rows(ctx, q.client.driver, "SELECT", q.client.builder.Select(cc, selects...))
	if err != nil {
		return nil, err
	}
	return q.client.formatter.Format(ctx, q, rows)
}

// FindOne executes the query limited to one row and returns the first
// entity, or nil when nothing matched.
func (q *Query) FindOne(ctx context.Context) (relgen.Entity, error) {
	cc, err := q.prepare(ctx)
	if err != nil {
		return nil, err
	}
	cc.Limit(1)
	selects, _ := q.columns()
	rows, err := q.client.rows(ctx, q.client.driver, "SELECT", q.client.builder.Select(cc, selects...))
	if err != nil {
		return nil, err
	}
	return q.client.formatter.FormatOne(ctx, q, rows)
}

// RequireOne is like FindOne but returns a NotFoundError when nothing
// matched.
func (q *Query) RequireOne(ctx context.Context) (relgen.Entity, error) {
	e, err := q.FindOne(ctx)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, relgen.NewNotFoundError(q.typ.Table.Name, nil)
	}
	return e, nil
}

// Count returns the number of matching rows.
func (q *Query) Count(ctx context.Context) (int64, error) {
	cc, err := q.prepare(ctx)
	if err != nil {
		return 0, err
	}
	rows, err := q.client.rows(ctx, q.client.driver, "COUNT", q.client.builder.Count(cc))
	if err != nil {
		return 0, err
	}
	_, values, err := sql.ScanValues(rows)
	if err != nil {
		return 0, err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return 0, nil
	}
	return toInt64(values[0][0])
}

// Exists reports whether at least one row matches.
func (q *Query) Exists(ctx context.Context) (bool, error) {
	n, err := q.Count(ctx)
	return n > 0, err
}

func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		var n int64
		_, err := fmt.Sscan(string(v), &n)
		return n, err
	case string:
		var n int64
		_, err := fmt.Sscan(v, &n)
		return n, err
	default:
		return 0, fmt.Errorf("relgen: unexpected count type %T", v)
	}
}
