package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect/sql"
)

// Policy decision sentinel errors. Use errors.Is to check for them.
var (
	// Allow terminates the evaluation and permits the operation.
	Allow = errors.New("relgen/privacy: allow rule")

	// Deny terminates the evaluation and rejects the operation.
	Deny = errors.New("relgen/privacy: deny rule")

	// Skip continues the evaluation with the next rule.
	Skip = errors.New("relgen/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Op is a guarded table operation.
type Op uint8

// Guarded operations.
const (
	OpSelect Op = 1 << iota
	OpDelete
)

// Is reports whether o matches any of the operations in op.
func (o Op) Is(op Op) bool { return o&op != 0 }

// String returns the name of the operation.
func (o Op) String() string {
	switch o {
	case OpSelect:
		return "select"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Request is an operation under evaluation. Rules may add filters to its
// criteria to scope the operation.
type Request struct {
	Op       Op
	Table    string
	Criteria *sql.Criteria
}

// Rule decides whether a request is permitted.
type Rule interface {
	Eval(context.Context, *Request) error
}

// RuleFunc is an adapter to use ordinary functions as rules.
type RuleFunc func(context.Context, *Request) error

// Eval returns f(ctx, r).
func (f RuleFunc) Eval(ctx context.Context, r *Request) error {
	return f(ctx, r)
}

// Policy is an ordered list of rules.
type Policy []Rule

// Eval evaluates the rules in order. A decision attached to ctx with
// DecisionContext is returned without evaluating the rules. An Allow
// decision returns nil.
func (p Policy) Eval(ctx context.Context, r *Request) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		return decision
	}
	for _, rule := range p {
		switch decision := rule.Eval(ctx, r); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Extension returns the extension hooks evaluating p before the reads
// and deletes of table.
func (p Policy) Extension(table string) *gen.Extension {
	return &gen.Extension{
		PreSelect: func(ctx context.Context, c *sql.Criteria) error {
			return p.Eval(ctx, &Request{Op: OpSelect, Table: table, Criteria: c})
		},
		PreDelete: func(ctx context.Context, c *sql.Criteria) (int64, bool, error) {
			return 0, false, p.Eval(ctx, &Request{Op: OpDelete, Table: table, Criteria: c})
		},
	}
}

// WithPolicy registers p as the extension of table.
func WithPolicy(table string, p Policy) gen.Option {
	return gen.WithExtension(table, p.Extension(table))
}

// AlwaysAllowRule returns a rule that always returns an Allow decision.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always returns a Deny decision.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function. Returning
// nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *Request) error {
		return eval(ctx)
	})
}

// OnOperation evaluates rule only on the given operations.
func OnOperation(rule Rule, op Op) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		if r.Op.Is(op) {
			return rule.Eval(ctx, r)
		}
		return Skip
	})
}

// DenyOperationRule returns a rule denying the given operations.
func DenyOperationRule(op Op) Rule {
	rule := RuleFunc(func(_ context.Context, r *Request) error {
		return Denyf("relgen/privacy: %s on %s is not allowed", r.Op, r.Table)
	})
	return OnOperation(rule, op)
}

// AllowOperationRule returns a rule allowing the given operations.
func AllowOperationRule(op Op) Rule {
	return OnOperation(fixedDecision{Allow}, op)
}

type decisionCtxKey struct{}

// DecisionContext returns a copy of parent carrying a policy decision.
// Skip and nil decisions return parent unchanged.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context. An
// Allow decision is reported as nil.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) Eval(context.Context, *Request) error {
	return f.decision
}
