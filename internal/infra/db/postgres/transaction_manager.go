package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/bekimbicaku/scan-perks/internal/domain/ports/repository"
	"github.com/bekimbicaku/scan-perks/internal/infra/metrics"
)

// Ensure compile-time conformance
var _ repository.TransactionManager = (*TxManager)(nil)

const maxTxAttempts = 3

// TxManager implements repository.TransactionManager for Postgres (pgx).
// It begins a transaction, invokes the callback, and commits or rolls back.
// The tx handle reaches the callback via the opaque repository.Tx argument
// (as pgx.Tx).
//
// Serialization conflicts (SQLSTATE 40001/40P01) re-run the callback from the
// top, up to maxTxAttempts. That gives callers the read-then-write contract
// the scan accounting path needs: a racing transaction over the same rows is
// detected by the store and retried, never silently interleaved.
type TxManager struct {
	db txBeginner
}

// txBeginner is the slice of pgxpool.Pool the manager needs.
type txBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{db: pool}
}

func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	var lastErr error
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := m.runOnce(ctx, txOpt, fn)
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return err
		}
		lastErr = err
		// Count only conflicts that are actually followed by a re-run; the
		// final attempt's conflict is reported as a failure below.
		if attempt < maxTxAttempts-1 {
			metrics.IncTxRetry()
		}
	}
	metrics.IncTxFailure()
	return lastErr
}

func (m *TxManager) runOnce(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, txOpt)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, tx); err != nil {
		return err // rollback in defer
	}
	return tx.Commit(ctx)
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
