package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/schema"
)

func ordersAndInvoices() []*schema.Table {
	orders := &schema.Table{
		Name: "orders",
		Columns: []*schema.Column{
			{Name: "customer_id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "order_seq", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "note", Type: schema.TypeText, LazyLoad: true},
		},
	}
	invoices := &schema.Table{
		Name: "invoices",
		Columns: []*schema.Column{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "customer_id", Type: schema.TypeInteger, Nullable: true},
			{Name: "order_seq", Type: schema.TypeInteger},
		},
		ForeignKeys: []*schema.ForeignKey{{
			ForeignTableName: "orders",
			OnDelete:         schema.ActionSetNull,
			References: []schema.Reference{
				{Local: "customer_id", Foreign: "customer_id"},
				{Local: "order_seq", Foreign: "order_seq"},
			},
		}},
	}
	return []*schema.Table{orders, invoices}
}

// =============================================================================
// NewDatabase Tests
// =============================================================================

func TestNewDatabase(t *testing.T) {
	db, err := schema.NewDatabase("shop", ordersAndInvoices()...)
	require.NoError(t, err)

	orders := db.Table("orders")
	require.NotNil(t, orders)
	assert.Same(t, db, orders.Database())
	assert.True(t, orders.HasPrimaryKey())
	assert.True(t, orders.HasCompositePrimaryKey())
	assert.Len(t, orders.PrimaryKey(), 2)
	assert.Equal(t, "customer_id", orders.PrimaryKey()[0].Name)
	assert.Len(t, orders.NonLazyColumns(), 2)

	require.Len(t, orders.Referrers(), 1)
	fk := orders.Referrers()[0]
	assert.Same(t, db.Table("invoices"), fk.Table())
	assert.Same(t, orders, fk.ForeignTable())
	assert.True(t, fk.IsComposite())
	assert.False(t, fk.IsLocalColumnsRequired())
	assert.Equal(t, []string{"customer_id", "order_seq"}, fk.LocalColumnNames())
	assert.Equal(t, "invoices(customer_id, order_seq) -> orders(customer_id, order_seq)", fk.String())

	col := db.Table("invoices").Column("order_seq")
	require.NotNil(t, col)
	assert.True(t, col.IsForeignKey())
	assert.Same(t, db.Table("invoices"), col.Table())
	assert.Nil(t, db.Table("invoices").Column("missing"))
}

func TestNewDatabase_Errors(t *testing.T) {
	t.Run("UnknownTable", func(t *testing.T) {
		tables := ordersAndInvoices()
		tables[1].ForeignKeys[0].ForeignTableName = "order"
		_, err := schema.NewDatabase("shop", tables...)
		require.Error(t, err)
		assert.True(t, errors.Is(err, schema.ErrInvalidSchema))
		assert.Contains(t, err.Error(), `unknown table "order"`)
	})

	t.Run("UnknownColumn", func(t *testing.T) {
		tables := ordersAndInvoices()
		tables[1].ForeignKeys[0].References[0].Foreign = "customer"
		_, err := schema.NewDatabase("shop", tables...)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column customer: foreign key references unknown foreign column")
	})

	t.Run("DuplicateTable", func(t *testing.T) {
		tables := ordersAndInvoices()
		_, err := schema.NewDatabase("shop", tables[0], tables[0])
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate table")
	})

	t.Run("SetWithoutValues", func(t *testing.T) {
		tbl := &schema.Table{Name: "t", Columns: []*schema.Column{{Name: "flags", Type: schema.TypeSet}}}
		_, err := schema.NewDatabase("db", tbl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set column without values")
	})

	t.Run("SetTooLarge", func(t *testing.T) {
		values := make([]string, schema.MaxSetValues+1)
		for i := range values {
			values[i] = string(rune('a'+i%26)) + string(rune('a'+i/26))
		}
		tbl := &schema.Table{Name: "t", Columns: []*schema.Column{{Name: "flags", Type: schema.TypeSet, Values: values}}}
		_, err := schema.NewDatabase("db", tbl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at most 64 supported")
	})
}

func TestCrossRelations(t *testing.T) {
	books := &schema.Table{Name: "books", Columns: []*schema.Column{{Name: "id", Type: schema.TypeInteger, PrimaryKey: true}}}
	authors := &schema.Table{Name: "authors", Columns: []*schema.Column{{Name: "id", Type: schema.TypeInteger, PrimaryKey: true}}}
	bookAuthors := &schema.Table{
		Name:     "book_authors",
		CrossRef: true,
		Columns: []*schema.Column{
			{Name: "book_id", Type: schema.TypeInteger, PrimaryKey: true},
			{Name: "author_id", Type: schema.TypeInteger, PrimaryKey: true},
		},
		ForeignKeys: []*schema.ForeignKey{
			{ForeignTableName: "books", References: []schema.Reference{{Local: "book_id", Foreign: "id"}}},
			{ForeignTableName: "authors", References: []schema.Reference{{Local: "author_id", Foreign: "id"}}},
		},
	}
	db, err := schema.NewDatabase("library", books, authors, bookAuthors)
	require.NoError(t, err)

	crosses := db.Table("books").CrossRelations()
	require.Len(t, crosses, 1)
	assert.Same(t, db.Table("book_authors"), crosses[0].Middle())
	require.Len(t, crosses[0].Outgoing, 1)
	assert.Same(t, db.Table("authors"), crosses[0].Outgoing[0].ForeignTable())
	assert.Len(t, db.Table("authors").CrossRelations(), 1)
}

func TestInheritance_ClassFor(t *testing.T) {
	inh := &schema.Inheritance{Column: "kind", Classes: map[string]string{"1": "Car", "truck": "Truck"}}
	class, ok := inh.ClassFor(int64(1))
	assert.True(t, ok)
	assert.Equal(t, "Car", class)
	class, ok = inh.ClassFor([]byte("truck"))
	assert.True(t, ok)
	assert.Equal(t, "Truck", class)
	_, ok = inh.ClassFor(nil)
	assert.False(t, ok)
	var nilInh *schema.Inheritance
	_, ok = nilInh.ClassFor("x")
	assert.False(t, ok)
}

// =============================================================================
// Type Tests
// =============================================================================

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want schema.Type
	}{
		{"integer", schema.TypeInteger},
		{"BIGINT", schema.TypeInteger},
		{"varchar", schema.TypeString},
		{"datetime", schema.TypeTimestamp},
		{"uuid_binary", schema.TypeUUIDBinary},
		{"set", schema.TypeSet},
		{" enum ", schema.TypeEnum},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := schema.ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := schema.ParseType("geometry")
	assert.Error(t, err)
	assert.True(t, schema.TypeDate.Temporal())
	assert.True(t, schema.TypeDecimal.Numeric())
	assert.Equal(t, "uuid_binary", schema.TypeUUIDBinary.String())
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]schema.Action{
		"":          schema.ActionNone,
		"no action": schema.ActionNone,
		"CASCADE":   schema.ActionCascade,
		"set null":  schema.ActionSetNull,
		"SETNULL":   schema.ActionSetNull,
		"restrict":  schema.ActionRestrict,
	} {
		got, err := schema.ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := schema.ParseAction("explode")
	assert.Error(t, err)
	assert.Equal(t, "SETNULL", schema.ActionSetNull.String())
}
