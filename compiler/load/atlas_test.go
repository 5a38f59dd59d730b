package load

import (
	"testing"

	"ariga.io/atlas/sql/mysql"
	atlas "ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/schema"
)

func inspectedShop() *atlas.Schema {
	customerID := &atlas.Column{Name: "id", Type: &atlas.ColumnType{Type: &atlas.IntegerType{T: "bigint"}}}
	customers := &atlas.Table{
		Name: "customers",
		Columns: []*atlas.Column{
			customerID,
			{Name: "name", Type: &atlas.ColumnType{Type: &atlas.StringType{T: "varchar", Size: 255}}},
			{Name: "bio", Type: &atlas.ColumnType{Type: &atlas.StringType{T: "longtext"}, Null: true}},
		},
		Attrs: []atlas.Attr{&atlas.Comment{Text: "People placing orders."}},
	}
	customers.PrimaryKey = &atlas.Index{Parts: []*atlas.IndexPart{{C: customerID}}}

	orderID := &atlas.Column{Name: "id", Type: &atlas.ColumnType{Type: &atlas.IntegerType{T: "bigint"}}}
	orderCustomer := &atlas.Column{Name: "customer_id", Type: &atlas.ColumnType{Type: &atlas.IntegerType{T: "bigint"}, Null: true}}
	orders := &atlas.Table{
		Name: "orders",
		Columns: []*atlas.Column{
			orderID,
			orderCustomer,
			{Name: "status", Type: &atlas.ColumnType{Type: &atlas.EnumType{T: "enum", Values: []string{"new", "paid"}}}},
			{Name: "flags", Type: &atlas.ColumnType{Type: &mysql.SetType{Values: []string{"gift", "rush"}}}},
			{Name: "placed_on", Type: &atlas.ColumnType{Type: &atlas.TimeType{T: "date"}}},
			{Name: "placed_at", Type: &atlas.ColumnType{Type: &atlas.TimeType{T: "datetime"}}},
			{Name: "cutoff", Type: &atlas.ColumnType{Type: &atlas.TimeType{T: "time"}}},
			{Name: "total", Type: &atlas.ColumnType{Type: &atlas.DecimalType{T: "decimal", Precision: 10, Scale: 2}}},
			{Name: "paid", Type: &atlas.ColumnType{Type: &atlas.BoolType{T: "boolean"}}},
			{Name: "meta", Type: &atlas.ColumnType{Type: &atlas.JSONType{T: "json"}}},
			{Name: "token", Type: &atlas.ColumnType{Type: &atlas.BinaryType{T: "binary"}}},
			{Name: "digest", Type: &atlas.ColumnType{Type: &atlas.BinaryType{T: "varbinary"}}},
			{Name: "geo", Type: &atlas.ColumnType{Type: &atlas.UnsupportedType{T: "point"}}},
		},
	}
	orders.PrimaryKey = &atlas.Index{Parts: []*atlas.IndexPart{{C: orderID}}}
	orders.ForeignKeys = []*atlas.ForeignKey{{
		Symbol:     "orders_customer_fk",
		Table:      orders,
		Columns:    []*atlas.Column{orderCustomer},
		RefTable:   customers,
		RefColumns: []*atlas.Column{customerID},
		OnDelete:   atlas.SetNull,
		OnUpdate:   atlas.NoAction,
	}}
	return &atlas.Schema{Name: "shop", Tables: []*atlas.Table{customers, orders}}
}

func TestFromAtlas(t *testing.T) {
	db, err := FromAtlas(inspectedShop(), WithBinaryUUID("orders.token"), WithReadOnly("customers"))
	require.NoError(t, err)
	assert.Equal(t, "shop", db.Name)

	customers := db.Table("customers")
	require.NotNil(t, customers)
	assert.True(t, customers.ReadOnly)
	assert.Equal(t, "People placing orders.", customers.Description)
	assert.Equal(t, schema.TypeText, customers.Column("bio").Type)
	assert.True(t, customers.Column("bio").Nullable)
	require.Len(t, customers.PrimaryKey(), 1)

	orders := db.Table("orders")
	require.NotNil(t, orders)
	for col, want := range map[string]schema.Type{
		"id":        schema.TypeInteger,
		"status":    schema.TypeEnum,
		"flags":     schema.TypeSet,
		"placed_on": schema.TypeDate,
		"placed_at": schema.TypeTimestamp,
		"cutoff":    schema.TypeTime,
		"total":     schema.TypeDecimal,
		"paid":      schema.TypeBoolean,
		"meta":      schema.TypeJSON,
		"token":     schema.TypeUUIDBinary,
		"digest":    schema.TypeBinary,
		"geo":       schema.TypeOther,
	} {
		assert.Equal(t, want, orders.Column(col).Type, col)
	}
	assert.Equal(t, []string{"gift", "rush"}, orders.Column("flags").Values)

	require.Len(t, orders.ForeignKeys, 1)
	fk := orders.ForeignKeys[0]
	assert.Equal(t, schema.ActionSetNull, fk.OnDelete)
	assert.Equal(t, schema.ActionNone, fk.OnUpdate)
	assert.Equal(t, []string{"customer_id"}, fk.LocalColumnNames())
	assert.Same(t, customers, fk.ForeignTable())
}

func TestFromAtlasOptions(t *testing.T) {
	db, err := FromAtlas(inspectedShop(), WithDatabaseName("store"), WithCrossRef("orders"))
	require.NoError(t, err)
	assert.Equal(t, "store", db.Name)
	assert.True(t, db.Table("orders").CrossRef)
	assert.False(t, db.Table("customers").ReadOnly)
}

func TestFromAtlasErrors(t *testing.T) {
	_, err := FromAtlas(nil)
	require.Error(t, err)

	s := inspectedShop()
	s.Tables[1].ForeignKeys[0].RefColumns = nil
	_, err = FromAtlas(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `foreign key "orders_customer_fk": 1 columns reference 0 columns`)

	s = inspectedShop()
	s.Tables[1].ForeignKeys[0].RefTable = nil
	_, err = FromAtlas(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing referenced table")
}
