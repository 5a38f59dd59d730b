package gen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	pgen "github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/internal/fixture"
)

func shopPK(t *testing.T, table string) *PrimaryKey {
	t.Helper()
	tbl := fixture.Shop().Table(table)
	require.NotNil(t, tbl)
	return NewPrimaryKey(tbl)
}

func TestPrimaryKeySimple(t *testing.T) {
	pk := shopPK(t, fixture.Customers)
	assert.True(t, pk.Exists())
	assert.False(t, pk.IsComposite())
	assert.Equal(t, []string{"id"}, pk.ColumnNames())

	pred, err := pk.Predicate(fixture.Customers, 3)
	require.NoError(t, err)
	query, args := render(t, pred)
	assert.Equal(t, "customers.id = ?", query)
	assert.Equal(t, []any{3}, args)

	pred, err = pk.KeysPredicate(fixture.Customers, []any{1, 2, 3})
	require.NoError(t, err)
	query, args = render(t, pred)
	assert.Equal(t, "customers.id IN (?,?,?)", query)
	assert.Equal(t, []any{1, 2, 3}, args)

	pred, err = pk.KeysPredicate(fixture.Customers, []any{4})
	require.NoError(t, err)
	query, _ = render(t, pred)
	assert.Equal(t, "customers.id = ?", query)

	pred, err = pk.PrunePredicate(fixture.Customers, relgen.NewRecord(fixture.Customers, []string{"id", "name"}, []any{3, "ann"}))
	require.NoError(t, err)
	query, args = render(t, pred)
	assert.Equal(t, "customers.id <> ?", query)
	assert.Equal(t, []any{3}, args)
}

func TestPrimaryKeySimpleArity(t *testing.T) {
	pk := shopPK(t, fixture.Customers)

	for _, key := range []any{[]any{1, 2}, []int{1, 2, 3}, []any{}} {
		_, err := pk.Predicate(fixture.Customers, key)
		require.Error(t, err, "%v", key)
		assert.True(t, relgen.IsUsageError(err))
		_, err = pk.PoolKey(key)
		assert.True(t, relgen.IsUsageError(err))
	}
	_, err := pk.KeysPredicate(fixture.Customers, []any{1, []int{2, 3}})
	assert.True(t, relgen.IsUsageError(err))

	pred, err := pk.Predicate(fixture.Customers, []int{5})
	require.NoError(t, err)
	query, args := render(t, pred)
	assert.Equal(t, "customers.id = ?", query)
	assert.Equal(t, []any{5}, args)

	key, err := pk.PoolKey([]any{5})
	require.NoError(t, err)
	assert.Equal(t, "5", key)

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	values, err := pk.Values(id)
	require.NoError(t, err)
	assert.Equal(t, []any{id}, values)
	raw := [16]byte(id)
	values, err = pk.Values(raw)
	require.NoError(t, err)
	assert.Equal(t, []any{raw}, values)
}

func TestPrimaryKeyComposite(t *testing.T) {
	pk := shopPK(t, fixture.Orders)
	assert.True(t, pk.IsComposite())

	pred, err := pk.Predicate(fixture.Orders, []int{1, 2})
	require.NoError(t, err)
	query, args := render(t, pred)
	assert.Equal(t, "(orders.customer_id = ? AND orders.order_seq = ?)", query)
	assert.Equal(t, []any{1, 2}, args)

	t.Run("keys", func(t *testing.T) {
		pred, err := pk.KeysPredicate(fixture.Orders, []any{[]any{1, 1}, []any{1, 2}})
		require.NoError(t, err)
		query, args := render(t, pred)
		assert.Equal(t, "((orders.customer_id = ? AND orders.order_seq = ?) OR (orders.customer_id = ? AND orders.order_seq = ?))", query)
		assert.Equal(t, []any{1, 1, 1, 2}, args)
	})

	t.Run("prune", func(t *testing.T) {
		pred, err := pk.PrunePredicate(fixture.Orders, order(1, 2))
		require.NoError(t, err)
		query, args := render(t, pred)
		assert.Equal(t, "(orders.customer_id <> ? OR orders.order_seq <> ?)", query)
		assert.Equal(t, []any{1, 2}, args)
	})

	t.Run("arity mismatch", func(t *testing.T) {
		for _, key := range []any{1, []int{1}, []int{1, 2, 3}} {
			_, err := pk.Predicate(fixture.Orders, key)
			require.Error(t, err)
			assert.True(t, relgen.IsUsageError(err))
		}
		_, err := pk.KeysPredicate(fixture.Orders, []any{[]int{1, 1}, 2})
		assert.True(t, relgen.IsUsageError(err))
	})

	t.Run("pool keys", func(t *testing.T) {
		key, err := pk.PoolKey([]any{1, 2})
		require.NoError(t, err)
		fromEntity, err := pk.PoolKeyOf(order(1, 2))
		require.NoError(t, err)
		assert.Equal(t, key, fromEntity)
		assert.Equal(t, `"1","2"`, key)

		k, err := pk.Key(order(1, 2))
		require.NoError(t, err)
		assert.Equal(t, []any{1, 2}, k)
	})
}

func TestPrimaryKeyMissing(t *testing.T) {
	pk := shopPK(t, fixture.Settings)
	assert.False(t, pk.Exists())

	_, err := pk.Predicate(fixture.Settings, 1)
	assert.True(t, relgen.IsUsageError(err))
	_, err = pk.KeysPredicate(fixture.Settings, nil)
	assert.True(t, relgen.IsUsageError(err))
	_, err = pk.PrunePredicate(fixture.Settings, relgen.NewRecord(fixture.Settings, []string{"name"}, []any{"x"}))
	assert.True(t, relgen.IsUsageError(err))
	_, err = pk.PoolKey(1)
	assert.True(t, relgen.IsUsageError(err))
}

func TestPrimaryKeyMissingEntityValue(t *testing.T) {
	pk := shopPK(t, fixture.Orders)
	_, err := pk.PoolKeyOf(relgen.NewRecord(fixture.Orders, []string{"customer_id"}, []any{1}))
	require.Error(t, err)
	assert.True(t, relgen.IsUsageError(err))
}

func TestPrimaryKeyProperties(t *testing.T) {
	pk := shopPK(t, fixture.Orders)
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("keys predicate has one conjunction per key", prop.ForAll(
		func(seqs []int64) bool {
			keys := make([]any, len(seqs))
			for i, s := range seqs {
				keys[i] = []any{int64(1), s}
			}
			pred, err := pk.KeysPredicate(fixture.Orders, keys)
			if err != nil {
				return false
			}
			query, args, err := pred.ToSql()
			if err != nil {
				return false
			}
			switch len(seqs) {
			case 0:
				return query == "1<>1" && len(args) == 0
			default:
				return strings.Count(query, "orders.customer_id = ?") == len(seqs) && len(args) == 2*len(seqs)
			}
		},
		pgen.SliceOf(pgen.Int64()),
	))

	properties.Property("pool key of a key equals pool key of its entity", prop.ForAll(
		func(customer, seq int64) bool {
			key, err := pk.PoolKey([]int64{customer, seq})
			if err != nil {
				return false
			}
			fromEntity, err := pk.PoolKeyOf(order(customer, seq))
			return err == nil && key == fromEntity
		},
		pgen.Int64(),
		pgen.Int64(),
	))

	properties.TestingRun(t)
}

func order(customerID, seq any) *relgen.Record {
	return relgen.NewRecord(fixture.Orders, []string{"customer_id", "order_seq", "status"}, []any{customerID, seq, 0})
}
