// Package schema describes the relational model that relgen compiles into
// query operations.
//
// A Database holds Tables. Each Table owns ordered Columns, an optional
// primary key (simple or composite), outgoing ForeignKeys and the incoming
// foreign keys of other tables (referrers). Tables flagged as cross-ref
// tables produce CrossRelations on the tables they point to, which model
// many-to-many traversal without exposing the join table in the filter API.
//
// # Quick Start
//
//	orders := &schema.Table{
//	    Name: "orders",
//	    Columns: []*schema.Column{
//	        {Name: "customer_id", Type: schema.TypeInteger, PrimaryKey: true},
//	        {Name: "order_seq", Type: schema.TypeInteger, PrimaryKey: true},
//	    },
//	}
//	invoices := &schema.Table{
//	    Name: "invoices",
//	    Columns: []*schema.Column{
//	        {Name: "id", Type: schema.TypeInteger, PrimaryKey: true},
//	        {Name: "customer_id", Type: schema.TypeInteger, Nullable: true},
//	        {Name: "order_seq", Type: schema.TypeInteger, Nullable: true},
//	    },
//	    ForeignKeys: []*schema.ForeignKey{{
//	        ForeignTableName: "orders",
//	        OnDelete:         schema.ActionSetNull,
//	        References: []schema.Reference{
//	            {Local: "customer_id", Foreign: "customer_id"},
//	            {Local: "order_seq", Foreign: "order_seq"},
//	        },
//	    }},
//	}
//	db, err := schema.NewDatabase("shop", orders, invoices)
//
// NewDatabase resolves every reference and validates the model. Once built,
// a Database is read-only and safe for concurrent use.
package schema
