// Package privacy guards table operations with ordered rule policies.
//
// A Policy is evaluated before every read and delete of the table it is
// registered on. Rules return one of three decisions:
//
//   - Allow: permits the operation and stops evaluation
//   - Deny: rejects the operation and stops evaluation
//   - Skip: continues with the next rule
//
// When every rule skips, the operation is permitted. Rules may also scope
// the operation by adding filters to its criteria, as TenantRule and
// OwnerRule do.
//
// # Registering Policies
//
//	cfg, err := gen.NewConfig(
//	    gen.WithDialect(dialect.Postgres),
//	    privacy.WithPolicy("orders", privacy.Policy{
//	        privacy.DenyIfNoViewer(),
//	        privacy.HasRole("admin"),
//	        privacy.DenyOperationRule(privacy.OpDelete),
//	        privacy.TenantRule("tenant_id"),
//	    }),
//	)
//
// # Viewer
//
// The viewer of the request travels in the context:
//
//	ctx = privacy.WithViewer(ctx, &privacy.SimpleViewer{UserID: "7", TenantID: "acme"})
//
// A decision attached with DecisionContext bypasses every policy:
//
//	ctx = privacy.DecisionContext(ctx, privacy.Allow)
package privacy
