package db

import (
	"context"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txKey struct{}

// TxFromContext retrieves the active transaction from context, if any.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey{}).(pgx.Tx)
	return tx
}

// WithTx runs fn inside a transaction. The transaction is made available to
// repositories via the context, so nested repository calls share it. If a
// transaction is already in flight on the context, fn joins it.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(ctx context.Context) error) error {
	if TxFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Executor is the subset of a connection needed to run a statement.
type Executor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// AdvisoryLock takes a transaction-scoped advisory lock derived from key.
// The lock is released automatically when the surrounding transaction ends,
// serializing writers that contend on the same logical resource.
func AdvisoryLock(ctx context.Context, q Executor, key string) error {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(h.Sum64()))
	return err
}
