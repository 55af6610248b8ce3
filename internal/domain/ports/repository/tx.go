package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via the Tx argument.
//
// Repository methods that accept a Tx must gracefully accept nil (the
// non-transactional path). The concrete type of the handle is
// infra-defined (pgx.Tx for Postgres).
//
// The webhook reconciliation path depends on this: resolve attempt,
// append ledger row, bump balance and mark the attempt completed either
// all commit or none do.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
