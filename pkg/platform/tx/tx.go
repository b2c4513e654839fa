// Package tx provides the unit-of-work seam shared by the ledger and the
// token registry. A donation is only valid when the ledger record, the
// registry donation state, and the mint all land together, so the
// orchestrator runs that sequence through a Runner.
package tx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Runner executes fn as a single unit of work: every store write issued inside
// fn becomes visible together, or not at all when fn returns an error.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a pgx transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a pgx transaction from context if present.
func From(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey).(pgx.Tx)
	return tx, ok
}

// PgxRunner wraps each unit of work in a database transaction. Postgres-backed
// stores pick the transaction up via From and issue their writes through it.
type PgxRunner struct {
	pool *pgxpool.Pool
}

func NewPgxRunner(pool *pgxpool.Pool) *PgxRunner {
	return &PgxRunner{pool: pool}
}

func (r *PgxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// NoopRunner is the unit of work for memory-backed stores. Memory stores
// mutate under their own locks and the orchestrator serializes per donor, so
// the runner only has to preserve the call shape.
type NoopRunner struct{}

func (NoopRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
