package gen

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// PrimaryKey resolves key values of a table into predicates and pool keys.
// Every operation fails with a usage error when the table has no primary
// key.
type PrimaryKey struct {
	Table   *schema.Table
	Columns []*schema.Column
}

// NewPrimaryKey returns the primary key resolver of t.
func NewPrimaryKey(t *schema.Table) *PrimaryKey {
	return &PrimaryKey{Table: t, Columns: t.PrimaryKey()}
}

// Exists reports whether the table has a primary key.
func (pk *PrimaryKey) Exists() bool { return len(pk.Columns) > 0 }

// IsComposite reports whether the key spans more than one column.
func (pk *PrimaryKey) IsComposite() bool { return len(pk.Columns) > 1 }

// ColumnNames returns the key columns in key order.
func (pk *PrimaryKey) ColumnNames() []string {
	names := make([]string, len(pk.Columns))
	for i, c := range pk.Columns {
		names[i] = c.Name
	}
	return names
}

func (pk *PrimaryKey) check(op string) error {
	if !pk.Exists() {
		return relgen.NewUsageError(op, "table %q has no primary key", pk.Table.Name)
	}
	return nil
}

// Values returns the column values of key. Simple keys accept a scalar or
// a one element list, composite keys a list of one value per key column.
// Binary identifiers (uuid.UUID, [16]byte) are scalars.
func (pk *PrimaryKey) Values(key any) ([]any, error) {
	if err := pk.check("PrimaryKey"); err != nil {
		return nil, err
	}
	if !pk.IsComposite() {
		if !isKeyList(key) {
			return []any{key}, nil
		}
		values := sql.AsList(key)
		if len(values) != 1 {
			return nil, relgen.NewUsageError("PrimaryKey", "table %q primary key has 1 column, got %d values", pk.Table.Name, len(values))
		}
		return values, nil
	}
	if !isKeyList(key) {
		return nil, relgen.NewUsageError("PrimaryKey", "table %q has a composite primary key, got scalar %v", pk.Table.Name, key)
	}
	values := sql.AsList(key)
	if len(values) != len(pk.Columns) {
		return nil, relgen.NewUsageError("PrimaryKey", "table %q primary key has %d columns, got %d values", pk.Table.Name, len(pk.Columns), len(values))
	}
	return values, nil
}

// Predicate returns the predicate matching the row with the given key.
func (pk *PrimaryKey) Predicate(qual string, key any) (sq.Sqlizer, error) {
	values, err := pk.Values(key)
	if err != nil {
		return nil, err
	}
	return pk.match(qual, values), nil
}

func (pk *PrimaryKey) match(qual string, values []any) sq.Sqlizer {
	if len(values) == 1 {
		return sq.Eq{sql.Qualify(qual, pk.Columns[0].Name): values[0]}
	}
	and := make(sq.And, len(values))
	for i, c := range pk.Columns {
		and[i] = sq.Eq{sql.Qualify(qual, c.Name): values[i]}
	}
	return and
}

// KeysPredicate returns the predicate matching the rows with the given
// keys. An empty key list matches no row.
func (pk *PrimaryKey) KeysPredicate(qual string, keys []any) (sq.Sqlizer, error) {
	if err := pk.check("PrimaryKeys"); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return sq.Expr("1<>1"), nil
	}
	if !pk.IsComposite() {
		values := make([]any, len(keys))
		for i, key := range keys {
			v, err := pk.Values(key)
			if err != nil {
				return nil, err
			}
			values[i] = v[0]
		}
		if len(values) == 1 {
			return sq.Eq{sql.Qualify(qual, pk.Columns[0].Name): values[0]}, nil
		}
		return sq.Eq{sql.Qualify(qual, pk.Columns[0].Name): values}, nil
	}
	or := make(sq.Or, len(keys))
	for i, key := range keys {
		values, err := pk.Values(key)
		if err != nil {
			return nil, err
		}
		or[i] = pk.match(qual, values)
	}
	if len(or) == 1 {
		return or[0], nil
	}
	return or, nil
}

// PrunePredicate returns the predicate excluding entity e.
func (pk *PrimaryKey) PrunePredicate(qual string, e relgen.Entity) (sq.Sqlizer, error) {
	if err := pk.check("Prune"); err != nil {
		return nil, err
	}
	values, err := pk.EntityValues(e)
	if err != nil {
		return nil, err
	}
	if len(values) == 1 {
		return sq.NotEq{sql.Qualify(qual, pk.Columns[0].Name): values[0]}, nil
	}
	or := make(sq.Or, len(values))
	for i, c := range pk.Columns {
		or[i] = sq.NotEq{sql.Qualify(qual, c.Name): values[i]}
	}
	return or, nil
}

// EntityValues returns the key column values of e.
func (pk *PrimaryKey) EntityValues(e relgen.Entity) ([]any, error) {
	if err := pk.check("PrimaryKey"); err != nil {
		return nil, err
	}
	values := make([]any, len(pk.Columns))
	for i, c := range pk.Columns {
		v, ok := e.Value(c.Name)
		if !ok {
			return nil, relgen.NewUsageError("PrimaryKey", "entity of table %q has no value for key column %q", e.Table(), c.Name)
		}
		values[i] = v
	}
	return values, nil
}

// Key returns the key of e: a scalar for simple keys, a []any for
// composite keys.
func (pk *PrimaryKey) Key(e relgen.Entity) (any, error) {
	values, err := pk.EntityValues(e)
	if err != nil {
		return nil, err
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

// PoolKey returns the instance pool key of key.
func (pk *PrimaryKey) PoolKey(key any) (string, error) {
	values, err := pk.Values(key)
	if err != nil {
		return "", err
	}
	return relgen.PoolKey(values...), nil
}

// PoolKeyOf returns the instance pool key of entity e. It encodes the same
// way as PoolKey.
func (pk *PrimaryKey) PoolKeyOf(e relgen.Entity) (string, error) {
	values, err := pk.EntityValues(e)
	if err != nil {
		return "", err
	}
	return relgen.PoolKey(values...), nil
}

func isKeyList(key any) bool {
	switch key.(type) {
	case uuid.UUID, [16]byte:
		return false
	}
	return sql.IsList(key)
}
