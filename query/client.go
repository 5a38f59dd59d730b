package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/sql"
)

// Client is a session executing compiled table operations against a driver.
// It owns the instance pool shared by every query it creates.
type Client struct {
	driver    dialect.Driver
	graph     *gen.Graph
	builder   sql.Builder
	pool      *relgen.InstancePool
	log       *slog.Logger
	formatter Formatter
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for failed statements and delete steps.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithFormatter sets the formatter materializing query results.
func WithFormatter(f Formatter) Option {
	return func(c *Client) {
		if f != nil {
			c.formatter = f
		}
	}
}

// WithPool makes the client share an existing instance pool.
func WithPool(p *relgen.InstancePool) Option {
	return func(c *Client) {
		if p != nil {
			c.pool = p
		}
	}
}

// NewClient returns a client executing the operations of g over drv.
func NewClient(drv dialect.Driver, g *gen.Graph, opts ...Option) *Client {
	c := &Client{
		driver:    drv,
		graph:     g,
		builder:   sql.Dialect(drv.Dialect()),
		pool:      relgen.NewInstancePool(),
		log:       slog.Default(),
		formatter: ObjectFormatter{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pool returns the instance pool of the session.
func (c *Client) Pool() *relgen.InstancePool { return c.pool }

// Graph returns the compiled operation set.
func (c *Client) Graph() *gen.Graph { return c.graph }

// Driver returns the underlying driver.
func (c *Client) Driver() dialect.Driver { return c.driver }

// Query returns a new query over the given table. An unknown table is
// reported by the first terminal operation.
func (c *Client) Query(table string) *Query {
	typ, err := c.graph.Type(table)
	q := &Query{client: c, typ: typ, err: err}
	if typ != nil {
		q.c = sql.NewCriteria(typ.Table.Name)
	}
	return q
}

// Tx is a client bound to a transaction.
type Tx struct {
	*Client
	tx dialect.Tx
}

// Tx starts a transaction and returns a client bound to it. Operations of
// the returned client, deletes included, run inside the transaction and
// leave commit and rollback to the caller.
func (c *Client) Tx(ctx context.Context) (*Tx, error) {
	if _, ok := c.driver.(*txDriver); ok {
		return nil, errors.New("relgen: cannot start a transaction within a transaction")
	}
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("relgen: starting a transaction: %w", err)
	}
	cc := *c
	cc.driver = &txDriver{drv: c.driver, tx: tx}
	return &Tx{Client: &cc, tx: tx}, nil
}

// Commit commits the transaction.
func (tx *Tx) Commit() error { return tx.tx.Commit() }

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error { return tx.tx.Rollback() }

// txDriver wraps a transaction as a driver. Nested transactions are no-ops
// so the owner of the transaction keeps control of commit and rollback.
type txDriver struct {
	drv dialect.Driver
	tx  dialect.Tx
}

func (d *txDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.tx.Exec(ctx, query, args, v)
}

func (d *txDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.tx.Query(ctx, query, args, v)
}

func (d *txDriver) Tx(context.Context) (dialect.Tx, error) { return nopTx{d.tx}, nil }

func (d *txDriver) Close() error { return nil }

func (d *txDriver) Dialect() string { return d.drv.Dialect() }

type nopTx struct{ dialect.Tx }

func (nopTx) Commit() error { return nil }

func (nopTx) Rollback() error { return nil }

// withTx runs fn inside a transaction of the client driver.
func (c *Client) withTx(ctx context.Context, fn func(dialect.ExecQuerier) error) error {
	tx, err := c.driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("relgen: starting a transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			c.log.ErrorContext(ctx, "relgen: rollback failed", "err", rerr)
			return &relgen.RollbackError{Err: err, Rollback: rerr}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("relgen: committing transaction: %w", err)
	}
	return nil
}

// rows runs a query statement and returns its rows.
func (c *Client) rows(ctx context.Context, drv dialect.ExecQuerier, op string, s sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return nil, fmt.Errorf("relgen: %s: building statement: %w", op, err)
	}
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		c.log.ErrorContext(ctx, "relgen: statement failed", "op", op, "statement", query, "err", err)
		return nil, relgen.NewExecError(op, query, err)
	}
	return rows, nil
}

// exec runs a statement and returns the number of affected rows.
func (c *Client) exec(ctx context.Context, drv dialect.ExecQuerier, op string, s sq.Sqlizer) (int64, error) {
	query, args, err := s.ToSql()
	if err != nil {
		return 0, fmt.Errorf("relgen: %s: building statement: %w", op, err)
	}
	var res sql.Result
	if err := drv.Exec(ctx, query, args, &res); err != nil {
		c.log.ErrorContext(ctx, "relgen: statement failed", "op", op, "statement", query, "err", err)
		return 0, relgen.NewExecError(op, query, err)
	}
	return sql.AffectedRows(res), nil
}
