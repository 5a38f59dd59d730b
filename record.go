package relgen

import (
	"maps"
	"reflect"
	"slices"

	"github.com/syssam/relgen/schema"
)

// Entity is a materialized row of a table.
type Entity interface {
	// Table returns the name of the table the entity belongs to.
	Table() string
	// Value returns the value of the named column and whether it was loaded.
	Value(column string) (any, bool)
}

// Record is the default Entity: a row of column values.
type Record struct {
	table   string
	class   string
	columns []string
	values  map[string]any
}

// NewRecord returns a record of table with the given column values. The
// columns and values slices are position aligned.
func NewRecord(table string, columns []string, values []any) *Record {
	r := &Record{
		table:   table,
		columns: slices.Clone(columns),
		values:  make(map[string]any, len(columns)),
	}
	for i, c := range columns {
		if i < len(values) {
			r.values[c] = values[i]
		}
	}
	return r
}

// Table implements Entity.
func (r *Record) Table() string { return r.table }

// Value implements Entity.
func (r *Record) Value(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Columns returns the loaded columns in select order.
func (r *Record) Columns() []string { return r.columns }

// Set sets the value of a column, adding the column when missing.
func (r *Record) Set(column string, v any) {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = v
}

// Class returns the concrete class of an inherited row, or the empty string.
func (r *Record) Class() string { return r.class }

// SetClass sets the concrete class of the record.
func (r *Record) SetClass(class string) { r.class = class }

// Map returns a copy of the column values.
func (r *Record) Map() map[string]any {
	return maps.Clone(r.values)
}

var entityType = reflect.TypeFor[Entity]()

// Collection is an ordered list of entities.
type Collection []Entity

// ColumnValues returns the values of a column, in collection order.
// Entities missing the column are skipped.
func (c Collection) ColumnValues(column string) []any {
	values := make([]any, 0, len(c))
	for _, e := range c {
		if v, ok := e.Value(column); ok {
			values = append(values, v)
		}
	}
	return values
}

// PrimaryKeys returns the primary key of every entity of table t: scalars
// for simple keys and []any for composite keys.
func (c Collection) PrimaryKeys(t *schema.Table) []any {
	pk := t.PrimaryKey()
	keys := make([]any, 0, len(c))
	for _, e := range c {
		if len(pk) == 1 {
			v, _ := e.Value(pk[0].Name)
			keys = append(keys, v)
			continue
		}
		key := make([]any, len(pk))
		for i, col := range pk {
			key[i], _ = e.Value(col.Name)
		}
		keys = append(keys, key)
	}
	return keys
}

// AsCollection converts v to a Collection. It accepts a Collection, or any
// slice whose elements implement Entity.
func AsCollection(v any) (Collection, bool) {
	switch v := v.(type) {
	case Collection:
		return v, true
	case []Entity:
		return Collection(v), true
	case []*Record:
		c := make(Collection, len(v))
		for i, r := range v {
			c[i] = r
		}
		return c, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	if et := rv.Type().Elem(); et.Kind() != reflect.Interface && !et.Implements(entityType) {
		return nil, false
	}
	c := make(Collection, 0, rv.Len())
	for i := range rv.Len() {
		e, ok := rv.Index(i).Interface().(Entity)
		if !ok {
			return nil, false
		}
		c = append(c, e)
	}
	return c, true
}
