// Package fixture provides the shop schema used by tests across packages.
package fixture

import (
	"github.com/syssam/relgen/schema"
)

// Table names of the shop schema.
const (
	Customers      = "customers"
	Orders         = "orders"
	Invoices       = "invoices"
	OrderLines     = "order_lines"
	LineNotes      = "line_notes"
	Products       = "products"
	OrderProducts  = "order_products"
	Settings       = "settings"
	Currencies     = "currencies"
	Vehicles       = "vehicles"
	Employees      = "employees"
	Clients        = "clients"
	CustomerTotals = "customer_totals"
)

// OrderStatuses is the value set of orders.status.
var OrderStatuses = []string{"new", "paid", "shipped", "cancelled"}

// OrderFlags is the value set of orders.flags.
var OrderFlags = []string{"gift", "express", "fragile"}

// Shop returns a freshly resolved shop schema. It panics if the schema
// does not validate.
func Shop() *schema.Database {
	db, err := schema.NewDatabase("shop", ShopTables()...)
	if err != nil {
		panic(err)
	}
	return db
}

// ShopTables returns the unresolved tables of the shop schema.
func ShopTables() []*schema.Table {
	return []*schema.Table{
		{
			Name: Customers,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "name", Type: schema.TypeString},
				{Name: "active", Type: schema.TypeBoolean},
			},
		},
		{
			Name: Orders,
			Columns: []*schema.Column{
				{Name: "customer_id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "order_seq", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "status", Type: schema.TypeEnum, Values: OrderStatuses},
				{Name: "flags", Type: schema.TypeSet, Values: OrderFlags, Nullable: true, Singular: "flag"},
				{Name: "tags", Type: schema.TypeArray, Nullable: true, Singular: "tag"},
				{Name: "note", Type: schema.TypeText, Nullable: true, LazyLoad: true},
				{Name: "created_at", Type: schema.TypeTimestamp},
			},
			ForeignKeys: []*schema.ForeignKey{
				{
					ForeignTableName: Customers,
					References:       []schema.Reference{{Local: "customer_id", Foreign: "id"}},
					OnDelete:         schema.ActionCascade,
				},
			},
		},
		{
			Name: Invoices,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "customer_id", Type: schema.TypeInteger, Nullable: true},
				{Name: "order_seq", Type: schema.TypeInteger, Nullable: true},
				{Name: "amount", Type: schema.TypeDecimal},
			},
			ForeignKeys: []*schema.ForeignKey{
				{
					ForeignTableName: Orders,
					References: []schema.Reference{
						{Local: "customer_id", Foreign: "customer_id"},
						{Local: "order_seq", Foreign: "order_seq"},
					},
					OnDelete: schema.ActionSetNull,
				},
			},
		},
		{
			Name: OrderLines,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "customer_id", Type: schema.TypeInteger},
				{Name: "order_seq", Type: schema.TypeInteger},
				{Name: "product_id", Type: schema.TypeUUIDBinary, Nullable: true},
				{Name: "qty", Type: schema.TypeInteger},
			},
			ForeignKeys: []*schema.ForeignKey{
				{
					Name:             "Order",
					RefName:          "Lines",
					ForeignTableName: Orders,
					References: []schema.Reference{
						{Local: "customer_id", Foreign: "customer_id"},
						{Local: "order_seq", Foreign: "order_seq"},
					},
					OnDelete: schema.ActionCascade,
				},
				{
					ForeignTableName: Products,
					References:       []schema.Reference{{Local: "product_id", Foreign: "id"}},
				},
			},
		},
		{
			Name: LineNotes,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "line_id", Type: schema.TypeInteger},
				{Name: "body", Type: schema.TypeText},
			},
			ForeignKeys: []*schema.ForeignKey{
				{
					Name:             "Line",
					RefName:          "Notes",
					ForeignTableName: OrderLines,
					References:       []schema.Reference{{Local: "line_id", Foreign: "id"}},
					OnDelete:         schema.ActionCascade,
				},
			},
		},
		{
			Name: Products,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeUUIDBinary, PrimaryKey: true},
				{Name: "name", Type: schema.TypeString},
				{Name: "attributes", Type: schema.TypeObject, Nullable: true},
			},
		},
		{
			Name:     OrderProducts,
			CrossRef: true,
			Columns: []*schema.Column{
				{Name: "customer_id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "order_seq", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "product_id", Type: schema.TypeUUIDBinary, PrimaryKey: true},
			},
			ForeignKeys: []*schema.ForeignKey{
				{
					ForeignTableName: Orders,
					References: []schema.Reference{
						{Local: "customer_id", Foreign: "customer_id"},
						{Local: "order_seq", Foreign: "order_seq"},
					},
					OnDelete: schema.ActionCascade,
				},
				{
					ForeignTableName: Products,
					References:       []schema.Reference{{Local: "product_id", Foreign: "id"}},
					OnDelete:         schema.ActionCascade,
				},
			},
		},
		{
			Name: Settings,
			Columns: []*schema.Column{
				{Name: "name", Type: schema.TypeString},
				{Name: "value", Type: schema.TypeText, Nullable: true},
			},
		},
		{
			Name:     Currencies,
			BulkLoad: true,
			Columns: []*schema.Column{
				{Name: "code", Type: schema.TypeString, PrimaryKey: true},
				{Name: "symbol", Type: schema.TypeString},
			},
		},
		{
			Name: Vehicles,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "kind", Type: schema.TypeString},
				{Name: "wheels", Type: schema.TypeInteger},
			},
			Inheritance: &schema.Inheritance{
				Column:  "kind",
				Classes: map[string]string{"car": "Car", "truck": "Truck"},
			},
		},
		{
			Name: Employees,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "manager_id", Type: schema.TypeInteger, Nullable: true},
				{Name: "mentor_id", Type: schema.TypeInteger, Nullable: true},
			},
			ForeignKeys: []*schema.ForeignKey{
				{
					ForeignTableName: Employees,
					References:       []schema.Reference{{Local: "manager_id", Foreign: "id"}},
					OnDelete:         schema.ActionSetNull,
				},
				{
					ForeignTableName: Employees,
					References:       []schema.Reference{{Local: "mentor_id", Foreign: "id"}},
					OnDelete:         schema.ActionSetNull,
				},
			},
		},
		{
			Name:    Clients,
			AliasOf: Customers,
			Columns: []*schema.Column{
				{Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "name", Type: schema.TypeString},
			},
		},
		{
			Name:     CustomerTotals,
			ReadOnly: true,
			Columns: []*schema.Column{
				{Name: "customer_id", Type: schema.TypeInteger, PrimaryKey: true},
				{Name: "total", Type: schema.TypeDecimal},
			},
		},
	}
}
