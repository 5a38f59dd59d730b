package privacy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/dialect/sql"
)

func request(op Op) *Request {
	return &Request{Op: op, Table: "orders", Criteria: sql.NewCriteria("orders")}
}

func TestDecisions(t *testing.T) {
	assert.ErrorIs(t, Allowf("admin %s", "ann"), Allow)
	assert.ErrorIs(t, Denyf("blocked"), Deny)
	assert.ErrorIs(t, Skipf("abstain"), Skip)
	assert.Equal(t, "admin ann: relgen/privacy: allow rule", Allowf("admin %s", "ann").Error())
}

func TestPolicyEval(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		policy  Policy
		wantErr error
	}{
		{name: "empty", policy: nil},
		{name: "all skip", policy: Policy{ContextRule(func(context.Context) error { return nil }), ContextRule(func(context.Context) error { return Skip })}},
		{name: "allow stops", policy: Policy{AlwaysAllowRule(), AlwaysDenyRule()}},
		{name: "deny stops", policy: Policy{AlwaysDenyRule(), AlwaysAllowRule()}, wantErr: Deny},
		{name: "custom error", policy: Policy{ContextRule(func(context.Context) error { return assert.AnError })}, wantErr: assert.AnError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Eval(ctx, request(OpSelect))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDecisionContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, DecisionContext(ctx, nil))
	assert.Equal(t, ctx, DecisionContext(ctx, Skip))

	_, ok := DecisionFromContext(ctx)
	assert.False(t, ok)

	allowed := DecisionContext(ctx, Allow)
	decision, ok := DecisionFromContext(allowed)
	assert.True(t, ok)
	assert.NoError(t, decision)
	assert.NoError(t, Policy{AlwaysDenyRule()}.Eval(allowed, request(OpSelect)))

	denied := DecisionContext(ctx, Denyf("maintenance"))
	assert.ErrorIs(t, Policy{AlwaysAllowRule()}.Eval(denied, request(OpDelete)), Deny)
}

func TestOperations(t *testing.T) {
	ctx := context.Background()
	assert.True(t, OpDelete.Is(OpSelect|OpDelete))
	assert.False(t, OpSelect.Is(OpDelete))
	assert.Equal(t, "select", OpSelect.String())
	assert.Equal(t, "delete", OpDelete.String())
	assert.Equal(t, "Op(3)", (OpSelect | OpDelete).String())

	p := Policy{DenyOperationRule(OpDelete)}
	assert.NoError(t, p.Eval(ctx, request(OpSelect)))
	err := p.Eval(ctx, request(OpDelete))
	assert.ErrorIs(t, err, Deny)
	assert.Contains(t, err.Error(), "delete on orders is not allowed")

	p = Policy{AllowOperationRule(OpSelect), AlwaysDenyRule()}
	assert.NoError(t, p.Eval(ctx, request(OpSelect)))
	assert.ErrorIs(t, p.Eval(ctx, request(OpDelete)), Deny)
}

func TestExtension(t *testing.T) {
	var seen []Op
	p := Policy{RuleFunc(func(_ context.Context, r *Request) error {
		seen = append(seen, r.Op)
		assert.Equal(t, "orders", r.Table)
		if r.Op == OpDelete {
			return errors.New("read only")
		}
		return Skip
	})}
	ext := p.Extension("orders")
	ctx := context.Background()
	require.NoError(t, ext.RunPreSelect(ctx, sql.NewCriteria("orders")))
	affected, handled, err := ext.RunPreDelete(ctx, sql.NewCriteria("orders"))
	assert.EqualError(t, err, "read only")
	assert.False(t, handled)
	assert.Zero(t, affected)
	assert.Equal(t, []Op{OpSelect, OpDelete}, seen)
	assert.NoError(t, ext.RunPostDelete(ctx, 1))
}
