package gen

import (
	"context"

	"github.com/syssam/relgen/dialect/sql"
)

// Extension holds optional per table hooks run by query operations.
// Nil hooks are skipped.
type Extension struct {
	// PreSelect runs before every read and may add filters to c.
	PreSelect func(ctx context.Context, c *sql.Criteria) error
	// PreDelete runs before a delete. Returning handled=true skips the
	// delete and reports affected as its result.
	PreDelete func(ctx context.Context, c *sql.Criteria) (affected int64, handled bool, err error)
	// PostDelete runs after a successful delete with the affected row count.
	PostDelete func(ctx context.Context, affected int64) error
}

// RunPreSelect runs the PreSelect hook, if any.
func (e *Extension) RunPreSelect(ctx context.Context, c *sql.Criteria) error {
	if e == nil || e.PreSelect == nil {
		return nil
	}
	return e.PreSelect(ctx, c)
}

// RunPreDelete runs the PreDelete hook, if any.
func (e *Extension) RunPreDelete(ctx context.Context, c *sql.Criteria) (int64, bool, error) {
	if e == nil || e.PreDelete == nil {
		return 0, false, nil
	}
	return e.PreDelete(ctx, c)
}

// RunPostDelete runs the PostDelete hook, if any.
func (e *Extension) RunPostDelete(ctx context.Context, affected int64) error {
	if e == nil || e.PostDelete == nil {
		return nil
	}
	return e.PostDelete(ctx, affected)
}
