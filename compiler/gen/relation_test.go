package gen

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/internal/fixture"
	"github.com/syssam/relgen/schema"
)

func shopRelation(t *testing.T, table, name string) *Relation {
	t.Helper()
	tbl := fixture.Shop().Table(table)
	require.NotNil(t, tbl)
	for _, r := range NewRelations(tbl) {
		if r.Name == name {
			return r
		}
	}
	require.FailNow(t, "relation not found", "%s.%s", table, name)
	return nil
}

func relationNames(t *schema.Table) []string {
	var names []string
	for _, r := range NewRelations(t) {
		names = append(names, r.Name)
	}
	return names
}

func TestNewRelations(t *testing.T) {
	db := fixture.Shop()
	tests := []struct {
		table    string
		expected []string
	}{
		{fixture.Customers, []string{"Orders"}},
		{fixture.Orders, []string{"Customer", "Invoices", "Lines", "OrderProducts", "Products"}},
		{fixture.OrderLines, []string{"Order", "Product", "Notes"}},
		{fixture.Products, []string{"OrderLines", "OrderProducts", "Orders"}},
		{fixture.Employees, []string{
			"EmployeeRelatedByManagerID",
			"EmployeeRelatedByMentorID",
			"EmployeesRelatedByManagerID",
			"EmployeesRelatedByMentorID",
		}},
		{fixture.Settings, nil},
	}
	for _, tt := range tests {
		t.Run(tt.table, func(t *testing.T) {
			assert.Equal(t, tt.expected, relationNames(db.Table(tt.table)))
		})
	}

	t.Run("kinds", func(t *testing.T) {
		assert.Equal(t, ManyToOne, shopRelation(t, fixture.Orders, "Customer").Kind)
		assert.Equal(t, OneToMany, shopRelation(t, fixture.Orders, "Lines").Kind)
		r := shopRelation(t, fixture.Orders, "Products")
		assert.Equal(t, ManyToMany, r.Kind)
		assert.Equal(t, fixture.Products, r.Related.Name)
		assert.Equal(t, "M2M", r.Kind.String())
	})
}

func TestRelationJoin(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		relation string
		alias    string
		joinType sql.JoinType
		clause   string
	}{
		{"many to one", fixture.Orders, "Customer", "", "", "INNER JOIN customers ON orders.customer_id = customers.id"},
		{"one to many", fixture.Customers, "Orders", "", "", "INNER JOIN orders ON customers.id = orders.customer_id"},
		{"composite", fixture.Orders, "Lines", "", "", "INNER JOIN order_lines ON (orders.customer_id = order_lines.customer_id AND orders.order_seq = order_lines.order_seq)"},
		{"aliased", fixture.Orders, "Lines", "l", "", "INNER JOIN order_lines l ON (orders.customer_id = l.customer_id AND orders.order_seq = l.order_seq)"},
		{"nullable key", fixture.Orders, "Invoices", "", "", "LEFT JOIN invoices ON (orders.customer_id = invoices.customer_id AND orders.order_seq = invoices.order_seq)"},
		{"nullable forward key", fixture.OrderLines, "Product", "", "", "LEFT JOIN products ON order_lines.product_id = products.id"},
		{"explicit type", fixture.Orders, "Customer", "", sql.RightJoin, "RIGHT JOIN customers ON orders.customer_id = customers.id"},
		{"self reference", fixture.Employees, "EmployeeRelatedByManagerID", "", "", "LEFT JOIN employees EmployeeRelatedByManagerID ON employees.manager_id = EmployeeRelatedByManagerID.id"},
		{"self reference aliased", fixture.Employees, "EmployeesRelatedByMentorID", "m", "", "LEFT JOIN employees m ON employees.id = m.mentor_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := shopRelation(t, tt.table, tt.relation)
			c := sql.NewCriteria(tt.table)
			j, err := r.Join(c, tt.table, tt.alias, tt.joinType)
			require.NoError(t, err)
			assert.Equal(t, tt.clause, j.Clause())
			got, ok := c.Join(j.Name)
			require.True(t, ok)
			assert.Same(t, j, got)
			assert.Equal(t, r.Related.Name, c.RealTable(j.Qualifier()))
		})
	}

	t.Run("rejoin replaces", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		_, err := r.Join(c, fixture.Orders, "", "")
		require.NoError(t, err)
		_, err = r.Join(c, fixture.Orders, "", sql.LeftJoin)
		require.NoError(t, err)
		require.Len(t, c.Joins(), 1)
		assert.Equal(t, sql.LeftJoin, c.Joins()[0].Type)
		assert.Equal(t, "Customer", c.Joins()[0].Name)
	})

	t.Run("cross relation", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Products")
		_, err := r.Join(sql.NewCriteria(fixture.Orders), fixture.Orders, "", "")
		require.Error(t, err)
		assert.True(t, relgen.IsUsageError(err))
	})
}

func TestRelationFilterByEntity(t *testing.T) {
	t.Run("many to one", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		customer := relgen.NewRecord(fixture.Customers, []string{"id", "name"}, []any{7, "ann"})
		require.NoError(t, r.FilterBy(c, c.Qualifier(), customer, ""))
		query, args := render(t, c.Where())
		assert.Equal(t, "orders.customer_id = ?", query)
		assert.Equal(t, []any{7}, args)
	})

	t.Run("one to many", func(t *testing.T) {
		r := shopRelation(t, fixture.Customers, "Orders")
		c := sql.NewCriteria(fixture.Customers)
		require.NoError(t, r.FilterBy(c, c.Qualifier(), order(7, 1), ""))
		query, args := render(t, c.Where())
		assert.Equal(t, "customers.id = ?", query)
		assert.Equal(t, []any{7}, args)
	})

	t.Run("composite", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Lines")
		c := sql.NewCriteria(fixture.Orders)
		line := relgen.NewRecord(fixture.OrderLines, []string{"id", "customer_id", "order_seq"}, []any{10, 1, 2})
		require.NoError(t, r.FilterBy(c, c.Qualifier(), line, ""))
		query, args := render(t, c.Where())
		assert.Equal(t, "(orders.customer_id = ? AND orders.order_seq = ?)", query)
		assert.Equal(t, []any{1, 2}, args)
	})

	t.Run("comparison", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		customer := relgen.NewRecord(fixture.Customers, []string{"id"}, []any{7})
		require.NoError(t, r.FilterBy(c, c.Qualifier(), customer, sql.NotEqual))
		query, _ := render(t, c.Where())
		assert.Equal(t, "orders.customer_id <> ?", query)
	})

	t.Run("missing value", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		err := r.FilterBy(sql.NewCriteria(fixture.Orders), fixture.Orders, relgen.NewRecord(fixture.Customers, []string{"name"}, []any{"ann"}), "")
		require.Error(t, err)
		assert.True(t, relgen.IsUsageError(err))
	})
}

func TestRelationFilterByCollection(t *testing.T) {
	customers := relgen.Collection{
		relgen.NewRecord(fixture.Customers, []string{"id"}, []any{1}),
		relgen.NewRecord(fixture.Customers, []string{"id"}, []any{2}),
	}

	t.Run("many to one", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		require.NoError(t, r.FilterBy(c, c.Qualifier(), customers, ""))
		query, args := render(t, c.Where())
		assert.Equal(t, "orders.customer_id IN (?,?)", query)
		assert.Equal(t, []any{1, 2}, args)
	})

	t.Run("record slice", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		records := []*relgen.Record{customers[0].(*relgen.Record)}
		require.NoError(t, r.FilterBy(c, c.Qualifier(), records, sql.NotIn))
		query, _ := render(t, c.Where())
		assert.Equal(t, "orders.customer_id NOT IN (?)", query)
	})

	t.Run("one to many", func(t *testing.T) {
		r := shopRelation(t, fixture.Customers, "Orders")
		c := sql.NewCriteria(fixture.Customers)
		require.NoError(t, r.FilterBy(c, c.Qualifier(), relgen.Collection{order(1, 1), order(1, 2)}, ""))
		require.Len(t, c.Joins(), 1)
		assert.Equal(t, "INNER JOIN orders ON customers.id = orders.customer_id", c.Joins()[0].Clause())
		query, args := render(t, c.Where())
		assert.Equal(t, "((orders.customer_id = ? AND orders.order_seq = ?) OR (orders.customer_id = ? AND orders.order_seq = ?))", query)
		assert.Equal(t, []any{1, 1, 1, 2}, args)
	})

	t.Run("composite key", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Lines")
		c := sql.NewCriteria(fixture.Orders)
		err := r.FilterBy(c, c.Qualifier(), relgen.Collection{}, "")
		require.Error(t, err)
		assert.True(t, relgen.IsUsageError(err))
		assert.True(t, c.IsEmpty())
	})

	t.Run("invalid argument", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		for _, v := range []any{42, "x", []int{1}} {
			err := r.FilterBy(sql.NewCriteria(fixture.Orders), fixture.Orders, v, "")
			require.Error(t, err)
			assert.True(t, relgen.IsUsageError(err), "%T", v)
		}
	})
}

func TestRelationFilterByCross(t *testing.T) {
	r := shopRelation(t, fixture.Orders, "Products")
	id := []byte("0123456789abcdef")
	product := relgen.NewRecord(fixture.Products, []string{"id", "name"}, []any{id, "lamp"})

	c := sql.NewCriteria(fixture.Orders)
	require.NoError(t, r.FilterBy(c, c.Qualifier(), product, ""))
	require.Len(t, c.Joins(), 1)
	assert.Equal(t, "OrderProducts", c.Joins()[0].Name)
	assert.Equal(t, "INNER JOIN order_products ON (orders.customer_id = order_products.customer_id AND orders.order_seq = order_products.order_seq)", c.Joins()[0].Clause())
	query, args := render(t, c.Where())
	assert.Equal(t, "order_products.product_id = ?", query)
	assert.Equal(t, []any{id}, args)
}

func TestRelationFilterByWrongTable(t *testing.T) {
	invoice := relgen.NewRecord(fixture.Invoices, []string{"id"}, []any{7})

	t.Run("entity", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		err := r.FilterBy(c, c.Qualifier(), invoice, "")
		require.Error(t, err)
		assert.True(t, relgen.IsUsageError(err))
		assert.Contains(t, err.Error(), `"invoices"`)
		assert.True(t, c.IsEmpty())
	})

	t.Run("collection element", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Customer")
		c := sql.NewCriteria(fixture.Orders)
		coll := relgen.Collection{
			relgen.NewRecord(fixture.Customers, []string{"id"}, []any{1}),
			invoice,
		}
		err := r.FilterBy(c, c.Qualifier(), coll, "")
		assert.True(t, relgen.IsUsageError(err))
		assert.True(t, c.IsEmpty())
	})

	t.Run("one to many", func(t *testing.T) {
		r := shopRelation(t, fixture.Customers, "Orders")
		c := sql.NewCriteria(fixture.Customers)
		err := r.FilterBy(c, c.Qualifier(), relgen.Collection{order(1, 1), invoice}, "")
		assert.True(t, relgen.IsUsageError(err))
		assert.Empty(t, c.Joins())
	})

	t.Run("cross relation", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Products")
		c := sql.NewCriteria(fixture.Orders)
		err := r.FilterBy(c, c.Qualifier(), order(1, 1), "")
		assert.True(t, relgen.IsUsageError(err))
		assert.Empty(t, c.Joins())
	})
}

func TestRelationExists(t *testing.T) {
	r := shopRelation(t, fixture.Customers, "Orders")
	sub := r.Subcriteria("")
	sub.Add(sub.Qualifier(), "status", sq.Eq{"orders.status": 1})

	pred, err := r.ExistsPredicate(fixture.Customers, sub, false)
	require.NoError(t, err)
	query, args := render(t, pred)
	assert.Equal(t, "EXISTS (SELECT 1 FROM orders WHERE (orders.customer_id = customers.id AND orders.status = ?))", query)
	assert.Equal(t, []any{1}, args)

	pred, err = r.ExistsPredicate(fixture.Customers, sub, true)
	require.NoError(t, err)
	query, _ = render(t, pred)
	assert.Equal(t, "NOT EXISTS (SELECT 1 FROM orders WHERE (orders.customer_id = customers.id AND orders.status = ?))", query)

	t.Run("composite", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Lines")
		pred, err := r.ExistsPredicate(fixture.Orders, r.Subcriteria(""), false)
		require.NoError(t, err)
		query, _ := render(t, pred)
		assert.Equal(t, "EXISTS (SELECT 1 FROM order_lines WHERE (order_lines.customer_id = orders.customer_id AND order_lines.order_seq = orders.order_seq))", query)
	})

	t.Run("self reference", func(t *testing.T) {
		r := shopRelation(t, fixture.Employees, "EmployeesRelatedByManagerID")
		pred, err := r.ExistsPredicate(fixture.Employees, r.Subcriteria(""), false)
		require.NoError(t, err)
		query, _ := render(t, pred)
		assert.Equal(t, "EXISTS (SELECT 1 FROM employees EmployeesRelatedByManagerID WHERE EmployeesRelatedByManagerID.manager_id = employees.id)", query)
	})

	t.Run("cross relation", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Products")
		_, err := r.ExistsPredicate(fixture.Orders, r.Subcriteria(""), false)
		assert.True(t, relgen.IsUsageError(err))
	})
}

func TestRelationIn(t *testing.T) {
	r := shopRelation(t, fixture.Customers, "Orders")
	sub := r.Subcriteria("")
	sub.Add(sub.Qualifier(), "status", sq.Eq{"orders.status": 1})

	pred, err := r.InPredicate(fixture.Customers, sub, false)
	require.NoError(t, err)
	query, args := render(t, pred)
	assert.Equal(t, "customers.id IN (SELECT orders.customer_id FROM orders WHERE orders.status = ?)", query)
	assert.Equal(t, []any{1}, args)

	pred, err = r.InPredicate(fixture.Customers, sub, true)
	require.NoError(t, err)
	query, _ = render(t, pred)
	assert.Equal(t, "customers.id NOT IN (SELECT orders.customer_id FROM orders WHERE orders.status = ?)", query)

	t.Run("composite", func(t *testing.T) {
		r := shopRelation(t, fixture.Orders, "Lines")
		_, err := r.InPredicate(fixture.Orders, r.Subcriteria(""), false)
		require.Error(t, err)
		assert.True(t, relgen.IsUsageError(err))
	})

	t.Run("placeholders rewritten by the outer statement", func(t *testing.T) {
		outer := sq.Select("*").From("customers").Where(pred).PlaceholderFormat(sq.Dollar)
		query, _, err := outer.ToSql()
		require.NoError(t, err)
		assert.Equal(t, "SELECT * FROM customers WHERE customers.id NOT IN (SELECT orders.customer_id FROM orders WHERE orders.status = $1)", query)
	})
}
