package query

import (
	"context"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/sql"
)

// Delete deletes the rows matched by the query and returns the number of
// deleted rows. The query must have at least one filter and no joins.
//
// When the platform does not enforce ON DELETE actions, or emulation is
// forced by configuration, cascading and nulling referrer rows is done
// first. Everything runs in a single transaction, or in the transaction of
// the client when it is bound to one.
func (q *Query) Delete(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if err := q.typ.Delete.Validate(q.c); err != nil {
		return 0, err
	}
	return q.delete(ctx, q.c.Clone(), false)
}

// DeleteAll deletes every row of the table, ignoring the query filters.
func (q *Query) DeleteAll(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	if err := q.typ.Delete.Allowed(); err != nil {
		return 0, err
	}
	return q.delete(ctx, sql.NewCriteria(q.typ.Table.Name), true)
}

func (q *Query) delete(ctx context.Context, cc *sql.Criteria, all bool) (int64, error) {
	affected, handled, err := q.typ.Extension.RunPreDelete(ctx, cc)
	switch {
	case err != nil:
		return 0, err
	case handled:
		return affected, nil
	}
	err = q.client.withTx(ctx, func(tx dialect.ExecQuerier) error {
		var err error
		affected, err = q.client.deleteRows(ctx, tx, q.typ, cc, all, 0)
		return err
	})
	if err != nil {
		return 0, err
	}
	if err := q.typ.Extension.RunPostDelete(ctx, affected); err != nil {
		return affected, err
	}
	return affected, nil
}

// deleteRows runs the delete of the rows of typ matched by cc, emulating
// referential actions of its referrers first.
func (c *Client) deleteRows(ctx context.Context, tx dialect.ExecQuerier, typ *gen.Type, cc *sql.Criteria, all bool, depth int) (int64, error) {
	t := typ.Table
	if depth > gen.MaxCascadeDepth {
		return 0, relgen.NewUsageError("Delete", "cascade from table %q exceeds %d levels", t.Name, gen.MaxCascadeDepth)
	}
	if typ.EmulatesDelete() {
		if err := c.emulate(ctx, tx, typ, cc, depth); err != nil {
			return 0, err
		}
	}
	if all {
		c.pool.ClearTable(t)
	} else {
		c.pool.Remove(t, cc)
	}
	stmt, err := c.builder.Delete(cc)
	if err != nil {
		return 0, relgen.NewUsageError("Delete", "%v", err)
	}
	n, err := c.exec(ctx, tx, "DELETE", stmt)
	if err != nil {
		return 0, err
	}
	c.pool.ClearRelated(t)
	c.log.DebugContext(ctx, "relgen: deleted rows", "table", t.Name, "rows", n, "depth", depth)
	return n, nil
}

// emulate deletes the cascading children and nulls the referencing
// columns of the rows matched by cc.
func (c *Client) emulate(ctx context.Context, tx dialect.ExecQuerier, typ *gen.Type, cc *sql.Criteria, depth int) error {
	plan := typ.Delete
	rows, err := c.rows(ctx, tx, "SELECT", c.builder.Select(cc, sql.Qualified("", plan.ParentColumns()...)...))
	if err != nil {
		return err
	}
	_, values, err := sql.ScanValues(rows)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	parents := make([]relgen.Entity, len(values))
	for i, row := range values {
		parents[i] = relgen.NewRecord(typ.Table.Name, plan.ParentColumns(), row)
	}
	for _, fk := range plan.Cascade {
		child, err := c.graph.Type(fk.Table().Name)
		if err != nil {
			return err
		}
		criteria := plan.ChildCriteria(fk, parents)
		if criteria == nil {
			continue
		}
		c.log.DebugContext(ctx, "relgen: cascading delete", "table", typ.Table.Name, "child", child.Table.Name, "fk", fk.String())
		if _, err := c.deleteRows(ctx, tx, child, criteria, false, depth+1); err != nil {
			return err
		}
	}
	for _, fk := range plan.SetNull {
		criteria := plan.ChildCriteria(fk, parents)
		if criteria == nil {
			continue
		}
		cols, nulls := plan.NullColumns(fk)
		stmt, err := c.builder.Update(criteria, cols, nulls)
		if err != nil {
			return relgen.NewUsageError("Delete", "%v", err)
		}
		c.log.DebugContext(ctx, "relgen: nulling referrers", "table", typ.Table.Name, "child", fk.Table().Name, "fk", fk.String())
		if _, err := c.exec(ctx, tx, "UPDATE", stmt); err != nil {
			return err
		}
		c.pool.ClearTable(fk.Table())
	}
	return nil
}
