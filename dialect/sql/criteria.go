package sql

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Criterion is a single filter of a Criteria. Table is the table name or
// alias qualifying the column.
type Criterion struct {
	Table  string
	Column string
	Pred   sq.Sqlizer
}

// ToSql implements squirrel.Sqlizer.
func (c *Criterion) ToSql() (string, []any, error) { return c.Pred.ToSql() }

// JoinType is the kind of a join clause.
type JoinType string

// Join types.
const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
	RightJoin JoinType = "RIGHT JOIN"
)

// JoinCondition is an equality between two qualified columns.
type JoinCondition struct {
	Left  string
	Right string
}

// Join is a join clause registered on a Criteria.
type Join struct {
	// Name is the registration key: an alias or a relation name.
	Name string
	// Table is the joined table, Alias its optional alias.
	Table      string
	Alias      string
	Type       JoinType
	Conditions []JoinCondition
}

// Qualifier returns the name columns of the joined table are qualified with.
func (j *Join) Qualifier() string {
	if j.Alias != "" {
		return j.Alias
	}
	return j.Table
}

// Clause renders the join clause.
func (j *Join) Clause() string {
	var b strings.Builder
	b.WriteString(string(j.Type))
	b.WriteByte(' ')
	b.WriteString(Ident(j.Table))
	if j.Alias != "" && j.Alias != j.Table {
		b.WriteByte(' ')
		b.WriteString(Ident(j.Alias))
	}
	b.WriteString(" ON ")
	if len(j.Conditions) > 1 {
		b.WriteByte('(')
	}
	for i, c := range j.Conditions {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(c.Left)
		b.WriteString(" = ")
		b.WriteString(c.Right)
	}
	if len(j.Conditions) > 1 {
		b.WriteByte(')')
	}
	return b.String()
}

// Criteria collects the filters, joins and modifiers of a query on a table.
// Filters are ANDed in insertion order.
type Criteria struct {
	table    string
	alias    string
	filters  []*Criterion
	joins    []*Join
	aliases  map[string]string
	selects  []string
	orderBy  []string
	limit    uint64
	offset   uint64
	distinct bool
}

// NewCriteria returns an empty criteria on the given table.
func NewCriteria(table string) *Criteria {
	return &Criteria{table: table}
}

// Table returns the declared table of the criteria.
func (c *Criteria) Table() string { return c.table }

// Alias returns the alias of the declared table, if any.
func (c *Criteria) Alias() string { return c.alias }

// SetAlias sets the alias of the declared table.
func (c *Criteria) SetAlias(alias string) *Criteria {
	c.alias = alias
	if alias != "" {
		c.AddAlias(alias, c.table)
	}
	return c
}

// Qualifier returns the name the declared table columns are qualified with.
func (c *Criteria) Qualifier() string {
	if c.alias != "" {
		return c.alias
	}
	return c.table
}

// Add appends a filter on a qualified column.
func (c *Criteria) Add(table, column string, pred sq.Sqlizer) *Criteria {
	c.filters = append(c.filters, &Criterion{Table: table, Column: column, Pred: pred})
	return c
}

// Filters returns the filters of the criteria.
func (c *Criteria) Filters() []*Criterion { return c.filters }

// HasFilters reports whether at least one filter was added.
func (c *Criteria) HasFilters() bool { return len(c.filters) > 0 }

// AddJoin registers a join. A join registered under an existing name
// replaces it in place.
func (c *Criteria) AddJoin(j *Join) *Criteria {
	if i := slices.IndexFunc(c.joins, func(o *Join) bool { return o.Name == j.Name }); i >= 0 {
		c.joins[i] = j
		return c
	}
	c.joins = append(c.joins, j)
	return c
}

// Join returns the join registered under name.
func (c *Criteria) Join(name string) (*Join, bool) {
	i := slices.IndexFunc(c.joins, func(o *Join) bool { return o.Name == name })
	if i < 0 {
		return nil, false
	}
	return c.joins[i], true
}

// Joins returns the registered joins in order.
func (c *Criteria) Joins() []*Join { return c.joins }

// HasJoins reports whether any join is registered.
func (c *Criteria) HasJoins() bool { return len(c.joins) > 0 }

// AddAlias registers alias as a name for table.
func (c *Criteria) AddAlias(alias, table string) *Criteria {
	if c.aliases == nil {
		c.aliases = make(map[string]string)
	}
	c.aliases[alias] = table
	return c
}

// RealTable resolves an alias to its table name. Unknown names are
// returned as is.
func (c *Criteria) RealTable(name string) string {
	if t, ok := c.aliases[name]; ok {
		return t
	}
	return name
}

// EffectiveTable returns the declared table, or the table behind the
// first filter carrying a table qualifier.
func (c *Criteria) EffectiveTable() string {
	if c.table != "" {
		return c.table
	}
	for _, f := range c.filters {
		if f.Table != "" {
			return c.RealTable(f.Table)
		}
	}
	return ""
}

// Select sets the selected columns. Empty means all columns.
func (c *Criteria) Select(cols ...string) *Criteria {
	c.selects = cols
	return c
}

// Selects returns the selected columns.
func (c *Criteria) Selects() []string { return c.selects }

// OrderBy appends ordering terms.
func (c *Criteria) OrderBy(terms ...string) *Criteria {
	c.orderBy = append(c.orderBy, terms...)
	return c
}

// Limit sets the row limit. Zero means no limit.
func (c *Criteria) Limit(n uint64) *Criteria {
	c.limit = n
	return c
}

// Offset sets the row offset.
func (c *Criteria) Offset(n uint64) *Criteria {
	c.offset = n
	return c
}

// Distinct makes the select distinct.
func (c *Criteria) Distinct() *Criteria {
	c.distinct = true
	return c
}

// IsEmpty reports whether the criteria has neither filters nor joins.
func (c *Criteria) IsEmpty() bool { return !c.HasFilters() && !c.HasJoins() }

// Where returns the conjunction of all filters, or nil without filters.
func (c *Criteria) Where() sq.Sqlizer {
	switch len(c.filters) {
	case 0:
		return nil
	case 1:
		return c.filters[0]
	}
	and := make(sq.And, len(c.filters))
	for i, f := range c.filters {
		and[i] = f
	}
	return and
}

// Merge appends the filters, joins and aliases of o to c.
func (c *Criteria) Merge(o *Criteria) *Criteria {
	c.filters = append(c.filters, o.filters...)
	for _, j := range o.joins {
		c.AddJoin(j)
	}
	for a, t := range o.aliases {
		c.AddAlias(a, t)
	}
	return c
}

// Clone returns a deep copy of the criteria structure. Predicates are
// shared since they are immutable.
func (c *Criteria) Clone() *Criteria {
	clone := *c
	clone.filters = slices.Clone(c.filters)
	clone.joins = slices.Clone(c.joins)
	clone.aliases = maps.Clone(c.aliases)
	clone.selects = slices.Clone(c.selects)
	clone.orderBy = slices.Clone(c.orderBy)
	return &clone
}

func (c *Criteria) String() string {
	where := "<none>"
	if w := c.Where(); w != nil {
		s, args, err := w.ToSql()
		if err != nil {
			where = err.Error()
		} else {
			where = fmt.Sprintf("%s %v", Unmark(s, ansiQuote), args)
		}
	}
	return fmt.Sprintf("Criteria(%s, joins=%d, where=%s)", c.table, len(c.joins), where)
}
