package privacy

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/internal/fixture"
	"github.com/syssam/relgen/query"
)

func TestViewerRules(t *testing.T) {
	ctx := context.Background()
	admin := WithViewer(ctx, &SimpleViewer{UserID: "1", Roles: []string{"admin"}})
	staff := WithViewer(ctx, &SimpleViewer{UserID: "2", Roles: []string{"staff"}})

	assert.Nil(t, ViewerFromContext(ctx))
	assert.Equal(t, "1", ViewerFromContext(admin).GetID())

	p := Policy{DenyIfNoViewer(), HasRole("admin"), AlwaysDenyRule()}
	assert.ErrorIs(t, p.Eval(ctx, request(OpSelect)), Deny)
	assert.NoError(t, p.Eval(admin, request(OpSelect)))
	assert.ErrorIs(t, p.Eval(staff, request(OpSelect)), Deny)

	p = Policy{HasAnyRole("admin", "staff"), AlwaysDenyRule()}
	assert.NoError(t, p.Eval(staff, request(OpDelete)))
	assert.ErrorIs(t, p.Eval(ctx, request(OpDelete)), Deny)
}

func TestScopingRules(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		r := request(OpSelect)
		assert.ErrorIs(t, OwnerRule("owner_id").Eval(ctx, r), Deny)
		assert.False(t, r.Criteria.HasFilters())

		err := OwnerRule("owner_id").Eval(WithViewer(ctx, &SimpleViewer{UserID: "7"}), r)
		assert.ErrorIs(t, err, Skip)
		require.Len(t, r.Criteria.Filters(), 1)
		s, args, err := r.Criteria.Filters()[0].ToSql()
		require.NoError(t, err)
		assert.Equal(t, "orders.owner_id = ?", s)
		assert.Equal(t, []any{"7"}, args)
	})

	t.Run("tenant", func(t *testing.T) {
		r := request(OpDelete)
		r.Criteria.SetAlias("o")
		assert.ErrorIs(t, TenantRule("tenant_id").Eval(WithViewer(ctx, &SimpleViewer{UserID: "7"}), r), Deny)

		err := TenantRule("tenant_id").Eval(WithViewer(ctx, &SimpleViewer{UserID: "7", TenantID: "acme"}), r)
		assert.ErrorIs(t, err, Skip)
		s, args, err := r.Criteria.Filters()[0].ToSql()
		require.NoError(t, err)
		assert.Equal(t, "o.tenant_id = ?", s)
		assert.Equal(t, []any{"acme"}, args)
	})
}

func TestPolicyOnClient(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	cfg, err := gen.NewConfig(
		gen.WithDialect(dialect.SQLite),
		WithPolicy(fixture.Customers, Policy{
			HasRole("admin"),
			DenyOperationRule(OpDelete),
			OwnerRule("id"),
		}),
	)
	require.NoError(t, err)
	g, err := gen.NewGraph(cfg, fixture.Shop())
	require.NoError(t, err)
	client := query.NewClient(sql.OpenDB(dialect.SQLite, db), g)

	mock.ExpectQuery("SELECT customers.id, customers.name, customers.active FROM customers WHERE customers.id = ?").
		WithArgs("7").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active"}).AddRow(7, "ann", true))
	ctx := WithViewer(context.Background(), &SimpleViewer{UserID: "7"})
	coll, err := client.Query(fixture.Customers).Find(ctx)
	require.NoError(t, err)
	assert.Len(t, coll, 1)

	_, err = client.Query(fixture.Customers).FilterBy("id", 7).Delete(ctx)
	assert.ErrorIs(t, err, Deny)

	_, err = client.Query(fixture.Customers).Find(context.Background())
	assert.ErrorIs(t, err, Deny)
	require.NoError(t, mock.ExpectationsWereMet())
}
