package gen

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// RelationKind is the cardinality of a relation seen from its owning table.
type RelationKind uint8

// Relation kinds.
const (
	// ManyToOne follows a foreign key of the owning table.
	ManyToOne RelationKind = iota + 1
	// OneToMany follows a foreign key pointing at the owning table.
	OneToMany
	// ManyToMany goes through a cross-ref table.
	ManyToMany
)

func (k RelationKind) String() string {
	switch k {
	case ManyToOne:
		return "M2O"
	case OneToMany:
		return "O2M"
	case ManyToMany:
		return "M2M"
	}
	return fmt.Sprintf("RelationKind(%d)", k)
}

// Relation is the compiled relation operation set between the owning
// table and a related table.
type Relation struct {
	// Name is the relation name used in generated method names.
	Name string
	Kind RelationKind
	// FK is the foreign key backing the relation. For ManyToMany relations
	// it is the cross-ref table key pointing at the owning table.
	FK *schema.ForeignKey
	// Outgoing is the cross-ref table key pointing at the related table.
	// Set for ManyToMany relations only.
	Outgoing *schema.ForeignKey
	Local    *schema.Table
	Related  *schema.Table
}

// NewRelations synthesizes the relations of t: one per foreign key, one
// per referrer and one per cross relation outgoing key.
func NewRelations(t *schema.Table) []*Relation {
	var rels []*Relation
	for _, fk := range t.ForeignKeys {
		if fk.ForeignTable() == nil {
			continue
		}
		rels = append(rels, &Relation{
			Name:    forwardName(fk),
			Kind:    ManyToOne,
			FK:      fk,
			Local:   t,
			Related: fk.ForeignTable(),
		})
	}
	for _, fk := range t.Referrers() {
		rels = append(rels, &Relation{
			Name:    reverseName(fk),
			Kind:    OneToMany,
			FK:      fk,
			Local:   t,
			Related: fk.Table(),
		})
	}
	for _, cr := range t.CrossRelations() {
		for _, out := range cr.Outgoing {
			name := plural(TypeName(out.ForeignTable()))
			for _, r := range rels {
				if r.Name == name {
					name += "Via" + TypeName(cr.Middle())
					break
				}
			}
			rels = append(rels, &Relation{
				Name:     name,
				Kind:     ManyToMany,
				FK:       cr.Incoming,
				Outgoing: out,
				Local:    t,
				Related:  out.ForeignTable(),
			})
		}
	}
	return rels
}

// TypeName returns the Go entity name of t.
func TypeName(t *schema.Table) string {
	if t.Model != "" {
		return t.Model
	}
	return ModelName(t.Name)
}

func forwardName(fk *schema.ForeignKey) string {
	if fk.Name != "" {
		return fk.Name
	}
	name := TypeName(fk.ForeignTable())
	if len(fk.Table().ForeignKeysTo(fk.ForeignTableName)) > 1 {
		name += relatedBy(fk)
	}
	return name
}

func reverseName(fk *schema.ForeignKey) string {
	if fk.RefName != "" {
		return fk.RefName
	}
	name := plural(TypeName(fk.Table()))
	if len(fk.Table().ForeignKeysTo(fk.ForeignTableName)) > 1 {
		name += relatedBy(fk)
	}
	return name
}

func relatedBy(fk *schema.ForeignKey) string {
	return "RelatedBy" + pascal(strings.Join(fk.LocalColumnNames(), "_"))
}

// IsComposite reports whether the backing foreign key maps several columns.
func (r *Relation) IsComposite() bool { return r.FK.IsComposite() }

// Columns returns the joined columns of the owning table and of the
// related table, position aligned.
func (r *Relation) Columns() (local, related []string) {
	switch r.Kind {
	case ManyToOne:
		return r.FK.LocalColumnNames(), r.FK.ForeignColumnNames()
	case OneToMany:
		return r.FK.ForeignColumnNames(), r.FK.LocalColumnNames()
	}
	return nil, nil
}

// DefaultJoinType returns INNER JOIN when every local column of the key is
// required and LEFT JOIN otherwise.
func (r *Relation) DefaultJoinType() sql.JoinType {
	if r.FK.IsLocalColumnsRequired() {
		return sql.InnerJoin
	}
	return sql.LeftJoin
}

// Through returns the relation from the owning table to the cross-ref
// table of a ManyToMany relation.
func (r *Relation) Through() *Relation {
	if r.Kind != ManyToMany {
		return nil
	}
	return &Relation{
		Name:    reverseName(r.FK),
		Kind:    OneToMany,
		FK:      r.FK,
		Local:   r.Local,
		Related: r.FK.Table(),
	}
}

// Target returns the relation from the cross-ref table to the related
// table of a ManyToMany relation.
func (r *Relation) Target() *Relation {
	if r.Kind != ManyToMany {
		return nil
	}
	return &Relation{
		Name:    forwardName(r.Outgoing),
		Kind:    ManyToOne,
		FK:      r.Outgoing,
		Local:   r.Outgoing.Table(),
		Related: r.Related,
	}
}

// Qualifier returns the name the related table is qualified with when
// joined under alias. Self references without alias use the relation name.
func (r *Relation) Qualifier(alias string) string {
	switch {
	case alias != "":
		return alias
	case r.Related == r.Local:
		return r.Name
	}
	return r.Related.Name
}

// Join registers the join of the relation on c, from the columns qualified
// with leftQual. An empty joinType uses DefaultJoinType. A join registered
// under the same name is replaced.
func (r *Relation) Join(c *sql.Criteria, leftQual, alias string, joinType sql.JoinType) (*sql.Join, error) {
	if r.Kind == ManyToMany {
		return nil, relgen.NewUsageError("Join"+r.Name, "cross relation %q cannot be joined directly", r.Name)
	}
	if joinType == "" {
		joinType = r.DefaultJoinType()
	}
	qual := r.Qualifier(alias)
	j := &sql.Join{
		Name:  r.Name,
		Table: r.Related.Name,
		Type:  joinType,
	}
	if alias != "" {
		j.Name = alias
	}
	if qual != r.Related.Name {
		j.Alias = qual
		c.AddAlias(qual, r.Related.Name)
	}
	local, related := r.Columns()
	for i := range local {
		j.Conditions = append(j.Conditions, sql.JoinCondition{
			Left:  sql.Qualify(leftQual, local[i]),
			Right: sql.Qualify(qual, related[i]),
		})
	}
	c.AddJoin(j)
	return j, nil
}

// Subcriteria returns a criteria on the related table qualified the way
// Join would qualify it.
func (r *Relation) Subcriteria(alias string) *sql.Criteria {
	c := sql.NewCriteria(r.Related.Name)
	if qual := r.Qualifier(alias); qual != r.Related.Name {
		c.SetAlias(qual)
	}
	return c
}

// FilterBy adds to c the filter matching rows related to v: a single
// entity, or a collection of entities for non composite keys.
func (r *Relation) FilterBy(c *sql.Criteria, leftQual string, v any, cmp sql.Comparison) error {
	op := "FilterBy" + r.Name
	if err := r.checkRelated(op, v); err != nil {
		return err
	}
	if r.Kind == ManyToMany {
		j, err := r.Through().Join(c, leftQual, "", "")
		if err != nil {
			return err
		}
		return r.Target().FilterBy(c, j.Qualifier(), v, cmp)
	}
	local, related := r.Columns()
	if e, ok := v.(relgen.Entity); ok {
		for i := range local {
			value, ok := e.Value(related[i])
			if !ok {
				return relgen.NewUsageError(op, "entity of table %q has no value for column %q", e.Table(), related[i])
			}
			pred, err := sql.Compare(sql.Qualify(leftQual, local[i]), cmp, value)
			if err != nil {
				return relgen.NewUsageError(op, "%v", err)
			}
			c.Add(leftQual, local[i], pred)
		}
		return nil
	}
	coll, ok := relgen.AsCollection(v)
	if !ok {
		return relgen.NewUsageError(op, "argument must be a %s entity or collection, got %T", TypeName(r.Related), v)
	}
	if r.IsComposite() {
		return relgen.NewUsageError(op, "composite foreign key %s does not accept a collection", r.FK)
	}
	if cmp == "" {
		cmp = sql.In
	}
	if r.Kind == ManyToOne {
		pred, err := sql.Compare(sql.Qualify(leftQual, local[0]), cmp, coll.ColumnValues(related[0]))
		if err != nil {
			return relgen.NewUsageError(op, "%v", err)
		}
		c.Add(leftQual, local[0], pred)
		return nil
	}
	j, err := r.Join(c, leftQual, "", "")
	if err != nil {
		return err
	}
	pk := NewPrimaryKey(r.Related)
	pred, err := pk.KeysPredicate(j.Qualifier(), coll.PrimaryKeys(r.Related))
	if err != nil {
		return err
	}
	c.Add(j.Qualifier(), "", pred)
	return nil
}

// checkRelated rejects entities that do not belong to the related table.
// Non entity arguments are left to FilterBy.
func (r *Relation) checkRelated(op string, v any) error {
	if e, ok := v.(relgen.Entity); ok {
		return r.checkEntity(op, e)
	}
	coll, ok := relgen.AsCollection(v)
	if !ok {
		return nil
	}
	for _, e := range coll {
		if err := r.checkEntity(op, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *Relation) checkEntity(op string, e relgen.Entity) error {
	if e == nil {
		return relgen.NewUsageError(op, "nil %s entity", TypeName(r.Related))
	}
	if e.Table() != r.Related.Name {
		return relgen.NewUsageError(op, "expected a %s entity of table %q, got table %q", TypeName(r.Related), r.Related.Name, e.Table())
	}
	return nil
}

// Correlate adds to sub the conditions tying it to the owning table
// columns qualified with leftQual.
func (r *Relation) Correlate(sub *sql.Criteria, leftQual string) error {
	if r.Kind == ManyToMany {
		return relgen.NewUsageError("Use"+r.Name+"Query", "cross relation %q cannot be used as a sub query", r.Name)
	}
	local, related := r.Columns()
	for i := range local {
		sub.Add(sub.Qualifier(), related[i], sq.Expr(sql.Qualify(sub.Qualifier(), related[i])+" = "+sql.Qualify(leftQual, local[i])))
	}
	return nil
}

// ExistsPredicate returns EXISTS (or NOT EXISTS) over the related rows
// matched by sub, correlated with the owning table.
func (r *Relation) ExistsPredicate(leftQual string, sub *sql.Criteria, not bool) (sq.Sqlizer, error) {
	cc := sql.NewCriteria(sub.Table())
	if sub.Alias() != "" {
		cc.SetAlias(sub.Alias())
	}
	if err := r.Correlate(cc, leftQual); err != nil {
		return nil, err
	}
	cc.Merge(sub)
	op := "EXISTS"
	if not {
		op = "NOT EXISTS"
	}
	return sq.Expr(op+" (?)", sql.Subquery(cc, "1")), nil
}

// InPredicate returns "local IN (SELECT related FROM ...)" over the
// related rows matched by sub. Composite keys are not supported.
func (r *Relation) InPredicate(leftQual string, sub *sql.Criteria, not bool) (sq.Sqlizer, error) {
	op := "Use" + r.Name + "InQuery"
	if r.Kind == ManyToMany {
		return nil, relgen.NewUsageError(op, "cross relation %q cannot be used as a sub query", r.Name)
	}
	if r.IsComposite() {
		return nil, relgen.NewUsageError(op, "composite foreign key %s cannot be used with IN", r.FK)
	}
	local, related := r.Columns()
	in := " IN (?)"
	if not {
		in = " NOT IN (?)"
	}
	return sq.Expr(sql.Qualify(leftQual, local[0])+in, sql.Subquery(sub, sql.Qualify(sub.Qualifier(), related[0]))), nil
}
