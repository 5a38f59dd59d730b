package privacy

import (
	"context"
	"slices"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen/dialect/sql"
)

// Viewer represents the authenticated user making a request.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's roles.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier, or the empty
	// string when not applicable.
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context, or nil.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string { return v.UserID }

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string { return v.Roles }

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string { return v.TenantID }

// DenyIfNoViewer returns a rule denying requests without a viewer.
//
//	privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasRole("admin"),
//	    privacy.AlwaysDenyRule(),
//	}
func DenyIfNoViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("relgen/privacy: viewer required")
		}
		return Skip
	})
}

// HasRole returns a rule allowing viewers with the given role.
func HasRole(role string) Rule {
	return HasAnyRole(role)
}

// HasAnyRole returns a rule allowing viewers with any of the given roles.
func HasAnyRole(roles ...string) Rule {
	return ContextRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		for _, role := range roles {
			if slices.Contains(viewer.GetRoles(), role) {
				return Allow
			}
		}
		return Skip
	})
}

// OwnerRule returns a rule restricting requests to the rows whose column
// holds the viewer ID. Requests without a viewer are denied.
func OwnerRule(column string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("relgen/privacy: viewer required for owner-filtered %s", r.Table)
		}
		scope(r, column, viewer.GetID())
		return Skip
	})
}

// TenantRule returns a rule restricting requests to the rows of the
// viewer's tenant. Requests without a viewer or tenant are denied.
func TenantRule(column string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Denyf("relgen/privacy: viewer required for tenant-filtered %s", r.Table)
		}
		tenant := viewer.GetTenantID()
		if tenant == "" {
			return Denyf("relgen/privacy: tenant required for %s", r.Table)
		}
		scope(r, column, tenant)
		return Skip
	})
}

// scope adds an equality filter on a column of the request table.
func scope(r *Request, column string, v any) {
	q := r.Criteria.Qualifier()
	r.Criteria.Add(q, column, sq.Eq{sql.Qualify(q, column): v})
}
