package gen

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// MaxCascadeDepth bounds cascade emulation recursion. Cyclic cascade
// chains deeper than this fail with a usage error.
const MaxCascadeDepth = 32

// DeletePlan is the compiled delete operation of a table: the referrer
// keys whose ON DELETE action must be emulated.
type DeletePlan struct {
	Table *schema.Table
	// Cascade are the referrer keys deleting child rows.
	Cascade []*schema.ForeignKey
	// SetNull are the referrer keys nulling child columns.
	SetNull []*schema.ForeignKey
}

// NewDeletePlan compiles the delete plan of t.
func NewDeletePlan(t *schema.Table) *DeletePlan {
	p := &DeletePlan{Table: t}
	for _, fk := range t.Referrers() {
		switch fk.OnDelete {
		case schema.ActionCascade:
			p.Cascade = append(p.Cascade, fk)
		case schema.ActionSetNull:
			p.SetNull = append(p.SetNull, fk)
		}
	}
	return p
}

// Allowed reports, as an error, whether the table supports deletion.
func (p *DeletePlan) Allowed() error {
	switch {
	case p.Table.IsAlias():
		return relgen.NewUsageError("Delete", "table %q is an alias of %q and cannot be deleted from", p.Table.Name, p.Table.AliasOf)
	case p.Table.ReadOnly:
		return relgen.NewUsageError("Delete", "table %q is read only", p.Table.Name)
	}
	return nil
}

// HasEmulation reports whether the table has referrers to emulate.
func (p *DeletePlan) HasEmulation() bool { return len(p.Cascade) > 0 || len(p.SetNull) > 0 }

// Emulate reports whether deletes on the table emulate referential
// actions under cfg.
func (p *DeletePlan) Emulate(cfg *Config) bool {
	return p.HasEmulation() && cfg.EmulatesForeignKeys()
}

// Validate checks c before any statement runs. Joins, empty criteria and
// criteria on another table are rejected.
func (p *DeletePlan) Validate(c *sql.Criteria) error {
	if err := p.Allowed(); err != nil {
		return err
	}
	if c.HasJoins() {
		return relgen.NewUsageError("Delete", "delete does not support join clauses")
	}
	if !c.HasFilters() {
		return relgen.NewUsageError("Delete", "delete needs at least one filter; use DeleteAll to delete every row")
	}
	if table := c.EffectiveTable(); table != "" && table != p.Table.Name {
		return relgen.NewUsageError("Delete", "criteria on table %q cannot delete from table %q", table, p.Table.Name)
	}
	return nil
}

// ParentColumns returns the columns to select from deleted rows: the
// primary key followed by every column referenced by an emulated key.
func (p *DeletePlan) ParentColumns() []string {
	var cols []string
	seen := make(map[string]struct{})
	add := func(names ...string) {
		for _, n := range names {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				cols = append(cols, n)
			}
		}
	}
	for _, c := range p.Table.PrimaryKey() {
		add(c.Name)
	}
	for _, fk := range p.Cascade {
		add(fk.ForeignColumnNames()...)
	}
	for _, fk := range p.SetNull {
		add(fk.ForeignColumnNames()...)
	}
	return cols
}

// ChildCriteria returns the criteria on the child table of fk matching the
// rows referencing any of parents. It returns nil when no parent carries a
// complete non NULL key.
func (p *DeletePlan) ChildCriteria(fk *schema.ForeignKey, parents []relgen.Entity) *sql.Criteria {
	local, foreign := fk.LocalColumnNames(), fk.ForeignColumnNames()
	c := sql.NewCriteria(fk.Table().Name)
	if !fk.IsComposite() {
		var values []any
		for _, e := range parents {
			if v, ok := e.Value(foreign[0]); ok && v != nil {
				values = append(values, v)
			}
		}
		switch len(values) {
		case 0:
			return nil
		case 1:
			c.Add(c.Qualifier(), local[0], sq.Eq{sql.Ident(local[0]): values[0]})
		default:
			c.Add(c.Qualifier(), local[0], sq.Eq{sql.Ident(local[0]): values})
		}
		return c
	}
	var or sq.Or
	for _, e := range parents {
		and := make(sq.And, 0, len(local))
		for i := range local {
			v, ok := e.Value(foreign[i])
			if !ok || v == nil {
				and = nil
				break
			}
			and = append(and, sq.Eq{sql.Ident(local[i]): v})
		}
		if and != nil {
			or = append(or, and)
		}
	}
	switch len(or) {
	case 0:
		return nil
	case 1:
		c.Add(c.Qualifier(), "", or[0])
	default:
		c.Add(c.Qualifier(), "", or)
	}
	return c
}

// NullColumns returns the child columns of fk set to NULL on delete.
func (p *DeletePlan) NullColumns(fk *schema.ForeignKey) ([]string, []any) {
	cols := fk.LocalColumnNames()
	return cols, make([]any, len(cols))
}
