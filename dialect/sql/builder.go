package sql

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen/dialect"
)

// Builder renders Criteria into dialect specific statements.
type Builder struct {
	dialect string
	format  sq.PlaceholderFormat
}

// Dialect returns a Builder for the given dialect.
func Dialect(name string) Builder {
	b := Builder{dialect: dialect.Normalize(name)}
	var inner sq.PlaceholderFormat = sq.Question
	if b.dialect == dialect.Postgres {
		inner = sq.Dollar
	}
	b.format = quoteFormat{platform: dialect.PlatformFor(name), inner: inner}
	return b
}

// Placeholder returns the statement format of the dialect. It quotes the
// identifiers marked by Ident and rewrites bind parameters.
func (b Builder) Placeholder() sq.PlaceholderFormat { return b.format }

// From returns the FROM target of the criteria table.
func From(c *Criteria) string {
	if c.alias != "" && c.alias != c.table {
		return Ident(c.table) + " " + Ident(c.alias)
	}
	return Ident(c.table)
}

// Select builds a SELECT over the criteria. Without explicit columns the
// selected criteria columns are used, falling back to cols.
func (b Builder) Select(c *Criteria, cols ...string) sq.SelectBuilder {
	if len(c.selects) > 0 {
		cols = c.selects
	}
	s := sq.Select(cols...).From(From(c)).PlaceholderFormat(b.format)
	if c.distinct {
		s = s.Distinct()
	}
	return Scope(s, c)
}

// Scope applies joins, filters and modifiers of c to s.
func Scope(s sq.SelectBuilder, c *Criteria) sq.SelectBuilder {
	for _, j := range c.joins {
		s = s.JoinClause(j.Clause())
	}
	if w := c.Where(); w != nil {
		s = s.Where(w)
	}
	if len(c.orderBy) > 0 {
		s = s.OrderBy(c.orderBy...)
	}
	if c.limit > 0 {
		s = s.Limit(c.limit)
	}
	if c.offset > 0 {
		s = s.Offset(c.offset)
	}
	return s
}

// Subquery builds a nested SELECT. Nested statements keep the "?" format;
// the outer statement rewrites them.
func Subquery(c *Criteria, cols ...string) sq.SelectBuilder {
	s := sq.Select(cols...).From(From(c))
	for _, j := range c.joins {
		s = s.JoinClause(j.Clause())
	}
	if w := c.Where(); w != nil {
		s = s.Where(w)
	}
	return s
}

// Count builds a SELECT COUNT(*) over the criteria.
func (b Builder) Count(c *Criteria) sq.SelectBuilder {
	cc := c.Clone()
	cc.selects, cc.orderBy, cc.limit, cc.offset = nil, nil, 0, 0
	if c.distinct && len(c.selects) > 0 {
		return sq.Select("COUNT(*)").FromSelect(Subquery(cc, c.selects...).Distinct(), "t").PlaceholderFormat(b.format)
	}
	return Scope(sq.Select("COUNT(*)").From(From(cc)).PlaceholderFormat(b.format), cc)
}

// Delete builds a DELETE over the criteria. Joins are not supported.
func (b Builder) Delete(c *Criteria) (sq.DeleteBuilder, error) {
	if c.HasJoins() {
		return sq.DeleteBuilder{}, fmt.Errorf("dialect/sql: delete does not support joins")
	}
	d := sq.Delete(From(c)).PlaceholderFormat(b.format)
	if w := c.Where(); w != nil {
		d = d.Where(w)
	}
	return d, nil
}

// Update builds an UPDATE setting the given columns, in order, over the
// criteria.
func (b Builder) Update(c *Criteria, cols []string, values []any) (sq.UpdateBuilder, error) {
	if c.HasJoins() {
		return sq.UpdateBuilder{}, fmt.Errorf("dialect/sql: update does not support joins")
	}
	if len(cols) == 0 || len(cols) != len(values) {
		return sq.UpdateBuilder{}, fmt.Errorf("dialect/sql: update needs matching columns and values, got %d and %d", len(cols), len(values))
	}
	u := sq.Update(From(c)).PlaceholderFormat(b.format)
	for i, col := range cols {
		u = u.Set(Ident(col), values[i])
	}
	if w := c.Where(); w != nil {
		u = u.Where(w)
	}
	return u, nil
}

// Qualify returns "qualifier.column", each part passed through Ident.
func Qualify(qualifier, column string) string {
	if qualifier == "" {
		return Ident(column)
	}
	return Ident(qualifier) + "." + Ident(column)
}

// Qualified returns cols qualified with qualifier. An empty qualifier
// leaves the columns unqualified.
func Qualified(qualifier string, cols ...string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = Qualify(qualifier, c)
	}
	return out
}
