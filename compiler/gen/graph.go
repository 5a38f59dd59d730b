package gen

import (
	"errors"
	"fmt"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/schema"
)

type (
	// Graph is the compiled operation set of a database: one Type per table.
	Graph struct {
		*Config
		// DB is the schema the graph was compiled from.
		DB *schema.Database
		// Nodes are the types of the graph, in table declaration order.
		Nodes []*Type
		nodes map[string]*Type
	}

	// Type is the compiled operation set of a single table.
	Type struct {
		cfg *Config
		// Table is the schema table of the type.
		Table *schema.Table
		// Name is the Go entity name of the type.
		Name string
		// PK resolves key values of the table.
		PK *PrimaryKey
		// Filters are the column filters, in column order.
		Filters []*Filter
		filters map[string]*Filter
		// Relations are the synthesized relations: forward keys first, then
		// referrers, then cross relations.
		Relations []*Relation
		relations map[string]*Relation
		// Delete is the delete plan of the table.
		Delete *DeletePlan
		// Extension holds the hooks registered for the table, or nil.
		Extension *Extension
	}
)

// NewGraph compiles db under cfg. A nil cfg uses the zero Config.
func NewGraph(cfg *Config, db *schema.Database) (*Graph, error) {
	if db == nil {
		return nil, NewConfigError("Database", nil, "database cannot be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	g := &Graph{Config: cfg, DB: db, nodes: make(map[string]*Type, len(db.Tables))}
	var errs []error
	for _, t := range db.Tables {
		typ, err := newType(cfg, t)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.Nodes = append(g.Nodes, typ)
		g.nodes[t.Name] = typ
	}
	for name := range cfg.Extensions {
		if db.Table(name) == nil {
			errs = append(errs, NewConfigError("Extension", name, "extension registered for unknown table"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNewGraph is like NewGraph but panics on error.
func MustNewGraph(cfg *Config, db *schema.Database) *Graph {
	g, err := NewGraph(cfg, db)
	if err != nil {
		panic(err)
	}
	return g
}

func newType(cfg *Config, t *schema.Table) (*Type, error) {
	typ := &Type{
		cfg:       cfg,
		Table:     t,
		Name:      TypeName(t),
		PK:        NewPrimaryKey(t),
		filters:   make(map[string]*Filter, len(t.Columns)),
		relations: make(map[string]*Relation),
		Delete:    NewDeletePlan(t),
		Extension: cfg.Extensions[t.Name],
	}
	for _, c := range t.Columns {
		f := NewFilter(c, cfg.Platform)
		typ.Filters = append(typ.Filters, f)
		typ.filters[c.Name] = f
	}
	for _, r := range NewRelations(t) {
		if _, ok := typ.relations[r.Name]; ok {
			return nil, NewConfigError("Relation", r.Name, fmt.Sprintf("duplicate relation name on table %q; set an explicit foreign key name", t.Name))
		}
		typ.Relations = append(typ.Relations, r)
		typ.relations[r.Name] = r
	}
	return typ, nil
}

// Type returns the type of the named table.
func (g *Graph) Type(table string) (*Type, error) {
	t, ok := g.nodes[table]
	if !ok {
		return nil, relgen.NewUsageError("Type", "unknown table %q", table)
	}
	return t, nil
}

// Config returns the configuration the type was compiled with.
func (t *Type) Config() *Config { return t.cfg }

// Filter returns the filter of the named column.
func (t *Type) Filter(column string) (*Filter, error) {
	f, ok := t.filters[column]
	if !ok {
		return nil, relgen.NewUsageError("FilterBy", "unknown column %q on table %q", column, t.Table.Name)
	}
	return f, nil
}

// SingularFilter returns the filter owning the given singular name.
func (t *Type) SingularFilter(name string) (*Filter, error) {
	for _, f := range t.Filters {
		if f.HasSingular() && f.Column.Singular == name {
			return f, nil
		}
	}
	return nil, relgen.NewUsageError("FilterBy", "unknown singular filter %q on table %q", name, t.Table.Name)
}

// Relation returns the named relation.
func (t *Type) Relation(name string) (*Relation, error) {
	r, ok := t.relations[name]
	if !ok {
		return nil, relgen.NewUsageError("Relation", "unknown relation %q on table %q", name, t.Table.Name)
	}
	return r, nil
}

// Package returns the package name of the generated table constants.
func (t *Type) Package() string { return PackageName(t.Table.Name) }

// QueryName returns the name of the generated query wrapper.
func (t *Type) QueryName() string { return t.Name + "Query" }

// Receiver returns the receiver name of generated query methods.
func (t *Type) Receiver() string { return receiver(t.QueryName()) }

// SelectColumns returns the columns loaded by default.
func (t *Type) SelectColumns() []string {
	cols := t.Table.NonLazyColumns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns every column name of the table.
func (t *Type) Columns() []string {
	names := make([]string, len(t.Table.Columns))
	for i, c := range t.Table.Columns {
		names[i] = c.Name
	}
	return names
}

// CanDelete reports whether Delete and DeleteAll are exposed.
func (t *Type) CanDelete() bool { return t.Delete.Allowed() == nil }

// EmulatesDelete reports whether deletes emulate referential actions.
func (t *Type) EmulatesDelete() bool { return t.Delete.Emulate(t.cfg) }

// ColumnConst returns the Go constant name of a column in the generated
// table package.
func (t *Type) ColumnConst(column string) string { return "Column" + pascal(column) }

// RelationConst returns the Go constant name of a relation in the
// generated table package.
func (t *Type) RelationConst(r *Relation) string { return "Relation" + r.Name }

// ValuesConst returns the Go variable name holding the declared values of
// an enum or set column in the generated table package.
func (t *Type) ValuesConst(column string) string { return pascal(column) + "Values" }

// AccessorName returns the name of the generated client method returning
// a query over the table.
//
//	order_lines => OrderLines
func (t *Type) AccessorName() string { return pascal(t.Table.Name) }
