package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a storage transaction,
// passing the underlying transaction handle via `tx`.
//
// Repositories accept the opaque `tx` and detect the concrete handle
// implementation-side (e.g. pgx.Tx for Postgres); they MUST gracefully accept
// a nil tx (non-transactional path).
//
// The scan accounting path relies on two guarantees from implementations:
// the callback's reads and writes are all-or-nothing, and a write conflict
// between two concurrent transactions over the same rows aborts one of them
// and re-runs its callback from the top rather than committing a lost update.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
