package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// MaxSetValues is the maximum number of values a set column may declare.
// Set values are encoded as bits of a 64-bit integer.
const MaxSetValues = 64

// Column describes a single table column.
type Column struct {
	Name string
	Type Type
	// Nullable reports whether the column accepts NULL.
	Nullable bool
	// PrimaryKey marks the column as part of the table primary key.
	// Composite keys follow column declaration order.
	PrimaryKey bool
	// LazyLoad columns are left out of primary key fast-path selects.
	LazyLoad bool
	// Values is the declared value set of enum and set columns.
	Values []string
	// Singular is the name used by singular filters of array and set
	// columns (e.g. "tag" for a "tags" column).
	Singular string

	table *Table
	fks   []*ForeignKey
}

// Table returns the table owning the column.
func (c *Column) Table() *Table { return c.table }

// Plural reports whether the column is collection valued.
func (c *Column) Plural() bool { return c.Type == TypeArray || c.Type == TypeSet }

// IsForeignKey reports whether the column is a local column of a foreign key.
func (c *Column) IsForeignKey() bool { return len(c.fks) > 0 }

// ForeignKeys returns the foreign keys the column takes part in.
func (c *Column) ForeignKeys() []*ForeignKey { return c.fks }

// ValueIndex returns the position of v in the declared value set.
func (c *Column) ValueIndex(v string) (int, bool) {
	i := slices.Index(c.Values, v)
	return i, i >= 0
}

// Reference is a single (local, foreign) column mapping of a foreign key.
type Reference struct {
	Local   string
	Foreign string
}

// ForeignKey describes a relationship from a referencing table to a
// referenced table.
type ForeignKey struct {
	// Name is the relation name seen from the referencing table.
	Name string
	// RefName is the relation name seen from the referenced table.
	RefName          string
	ForeignTableName string
	References       []Reference
	OnDelete         Action
	OnUpdate         Action

	table        *Table
	foreignTable *Table
}

// Table returns the referencing table.
func (fk *ForeignKey) Table() *Table { return fk.table }

// ForeignTable returns the referenced table.
func (fk *ForeignKey) ForeignTable() *Table { return fk.foreignTable }

// IsComposite reports whether the foreign key maps more than one column.
func (fk *ForeignKey) IsComposite() bool { return len(fk.References) > 1 }

// LocalColumnNames returns the referencing columns in mapping order.
func (fk *ForeignKey) LocalColumnNames() []string {
	names := make([]string, len(fk.References))
	for i, r := range fk.References {
		names[i] = r.Local
	}
	return names
}

// ForeignColumnNames returns the referenced columns in mapping order.
func (fk *ForeignKey) ForeignColumnNames() []string {
	names := make([]string, len(fk.References))
	for i, r := range fk.References {
		names[i] = r.Foreign
	}
	return names
}

// LocalColumns returns the referencing columns in mapping order.
func (fk *ForeignKey) LocalColumns() []*Column {
	cols := make([]*Column, len(fk.References))
	for i, r := range fk.References {
		cols[i] = fk.table.Column(r.Local)
	}
	return cols
}

// IsLocalColumnsRequired reports whether every referencing column is NOT NULL.
func (fk *ForeignKey) IsLocalColumnsRequired() bool {
	for _, c := range fk.LocalColumns() {
		if c.Nullable {
			return false
		}
	}
	return true
}

// IsSelfReferencing reports whether the key points at its own table.
func (fk *ForeignKey) IsSelfReferencing() bool { return fk.table == fk.foreignTable }

func (fk *ForeignKey) String() string {
	return fmt.Sprintf("%s(%s) -> %s(%s)",
		fk.table.Name, strings.Join(fk.LocalColumnNames(), ", "),
		fk.ForeignTableName, strings.Join(fk.ForeignColumnNames(), ", "))
}

// CrossRelation is a many-to-many relation reached through a cross-ref
// table. Incoming is the cross-ref table key pointing at the owning table,
// Outgoing are the other keys of the cross-ref table.
type CrossRelation struct {
	Incoming *ForeignKey
	Outgoing []*ForeignKey
}

// Middle returns the cross-ref table.
func (cr *CrossRelation) Middle() *Table { return cr.Incoming.table }

// Inheritance describes single-table inheritance: the discriminator column
// value selects the class a row materializes as.
type Inheritance struct {
	Column  string
	Classes map[string]string
}

// ClassFor returns the class registered for the discriminator value.
func (i *Inheritance) ClassFor(v any) (string, bool) {
	if i == nil || v == nil {
		return "", false
	}
	var key string
	switch v := v.(type) {
	case []byte:
		key = string(v)
	default:
		key = fmt.Sprint(v)
	}
	class, ok := i.Classes[key]
	return class, ok
}

// Table describes a database table.
type Table struct {
	Name string
	// Model is the entity name. Defaults to a camelized singular form of
	// Name when empty.
	Model       string
	Description string
	Columns     []*Column
	ForeignKeys []*ForeignKey
	// Abstract tables are never materialized directly.
	Abstract bool
	// ReadOnly tables do not expose deletion.
	ReadOnly bool
	// AliasOf names the table this table is an alias of.
	AliasOf string
	// BulkLoad tables are loaded completely on the first primary key
	// lookup and answered from the instance pool afterwards.
	BulkLoad bool
	// CrossRef marks a many-to-many join table.
	CrossRef    bool
	Inheritance *Inheritance

	db        *Database
	columns   map[string]*Column
	pk        []*Column
	referrers []*ForeignKey
	crosses   []*CrossRelation
}

// Database returns the database owning the table.
func (t *Table) Database() *Database { return t.db }

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	if t.columns != nil {
		return t.columns[name]
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// PrimaryKey returns the primary key columns in declaration order.
func (t *Table) PrimaryKey() []*Column { return t.pk }

// HasPrimaryKey reports whether the table declares a primary key.
func (t *Table) HasPrimaryKey() bool { return len(t.pk) > 0 }

// HasCompositePrimaryKey reports whether the primary key spans more than one column.
func (t *Table) HasCompositePrimaryKey() bool { return len(t.pk) > 1 }

// Referrers returns the foreign keys of other tables pointing at this table.
func (t *Table) Referrers() []*ForeignKey { return t.referrers }

// HasReferrers reports whether any foreign key points at this table.
func (t *Table) HasReferrers() bool { return len(t.referrers) > 0 }

// CrossRelations returns the many-to-many relations of the table.
func (t *Table) CrossRelations() []*CrossRelation { return t.crosses }

// IsAlias reports whether the table is an alias of another table.
func (t *Table) IsAlias() bool { return t.AliasOf != "" }

// NonLazyColumns returns the columns loaded by default.
func (t *Table) NonLazyColumns() []*Column {
	cols := make([]*Column, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !c.LazyLoad {
			cols = append(cols, c)
		}
	}
	return cols
}

// ForeignKeysTo returns the foreign keys of t pointing at the named table.
func (t *Table) ForeignKeysTo(table string) []*ForeignKey {
	var fks []*ForeignKey
	for _, fk := range t.ForeignKeys {
		if fk.ForeignTableName == table {
			fks = append(fks, fk)
		}
	}
	return fks
}

// Database is a resolved set of tables.
type Database struct {
	Name   string
	Tables []*Table

	tables map[string]*Table
}

// NewDatabase links the given tables together and validates the result.
// All problems found are reported, joined into a single error.
func NewDatabase(name string, tables ...*Table) (*Database, error) {
	db := &Database{Name: name, Tables: tables, tables: make(map[string]*Table, len(tables))}
	var errs []error
	for _, t := range tables {
		if t.Name == "" {
			errs = append(errs, &Error{Message: "table without name"})
			continue
		}
		if _, ok := db.tables[t.Name]; ok {
			errs = append(errs, &Error{Table: t.Name, Message: "duplicate table"})
			continue
		}
		db.tables[t.Name] = t
		t.db = db
		errs = append(errs, t.resolveColumns()...)
	}
	for _, t := range tables {
		if t.db != db {
			continue
		}
		errs = append(errs, t.resolveForeignKeys()...)
	}
	for _, t := range tables {
		if t.db == db && t.CrossRef {
			t.resolveCrossRelations()
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return db, nil
}

// Table returns the table with the given name, or nil.
func (db *Database) Table(name string) *Table { return db.tables[name] }

func (t *Table) resolveColumns() []error {
	var errs []error
	t.columns = make(map[string]*Column, len(t.Columns))
	t.pk = t.pk[:0]
	for _, c := range t.Columns {
		if _, ok := t.columns[c.Name]; ok {
			errs = append(errs, &Error{Table: t.Name, Column: c.Name, Message: "duplicate column"})
			continue
		}
		c.table = t
		c.fks = nil
		t.columns[c.Name] = c
		if c.PrimaryKey {
			t.pk = append(t.pk, c)
		}
		switch c.Type {
		case TypeEnum, TypeSet:
			if len(c.Values) == 0 {
				errs = append(errs, &Error{Table: t.Name, Column: c.Name, Message: c.Type.String() + " column without values"})
			}
			if c.Type == TypeSet && len(c.Values) > MaxSetValues {
				errs = append(errs, &Error{Table: t.Name, Column: c.Name, Message: fmt.Sprintf("set column declares %d values, at most %d supported", len(c.Values), MaxSetValues)})
			}
		}
	}
	if t.Inheritance != nil && t.columns[t.Inheritance.Column] == nil {
		errs = append(errs, &Error{Table: t.Name, Column: t.Inheritance.Column, Message: "unknown inheritance column"})
	}
	return errs
}

func (t *Table) resolveForeignKeys() []error {
	var errs []error
	for _, fk := range t.ForeignKeys {
		fk.table = t
		ft := t.db.tables[fk.ForeignTableName]
		if ft == nil {
			errs = append(errs, &Error{Table: t.Name, Message: fmt.Sprintf("foreign key references unknown table %q", fk.ForeignTableName)})
			continue
		}
		fk.foreignTable = ft
		if len(fk.References) == 0 {
			errs = append(errs, &Error{Table: t.Name, Message: fmt.Sprintf("foreign key to %q without column mapping", ft.Name)})
			continue
		}
		valid := true
		for _, r := range fk.References {
			local, foreign := t.columns[r.Local], ft.columns[r.Foreign]
			if local == nil {
				errs = append(errs, &Error{Table: t.Name, Column: r.Local, Message: "foreign key references unknown local column"})
				valid = false
			}
			if foreign == nil {
				errs = append(errs, &Error{Table: ft.Name, Column: r.Foreign, Message: "foreign key references unknown foreign column"})
				valid = false
			}
		}
		if !valid {
			continue
		}
		for _, r := range fk.References {
			local := t.columns[r.Local]
			local.fks = append(local.fks, fk)
		}
		ft.referrers = append(ft.referrers, fk)
	}
	return errs
}

func (t *Table) resolveCrossRelations() {
	for _, in := range t.ForeignKeys {
		if in.foreignTable == nil {
			continue
		}
		cr := &CrossRelation{Incoming: in}
		for _, out := range t.ForeignKeys {
			if out != in && out.foreignTable != nil {
				cr.Outgoing = append(cr.Outgoing, out)
			}
		}
		if len(cr.Outgoing) > 0 {
			in.foreignTable.crosses = append(in.foreignTable.crosses, cr)
		}
	}
}

// ErrInvalidSchema is matched by every schema validation error.
var ErrInvalidSchema = errors.New("relgen: invalid schema")

// Error describes a problem found while resolving a Database.
type Error struct {
	Table   string
	Column  string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("relgen: schema error")
	if e.Table != "" {
		b.WriteString(" on table ")
		b.WriteString(e.Table)
	}
	if e.Column != "" {
		b.WriteString(" column ")
		b.WriteString(e.Column)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Is reports whether the target matches ErrInvalidSchema.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidSchema
}
