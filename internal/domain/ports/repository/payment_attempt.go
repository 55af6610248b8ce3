package repository

import (
	"context"
	"time"

	"clientcard-platform/internal/domain/model"
)

type PaymentAttemptRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentAttempt) error

	// FindLatestByReference returns the most recent attempt carrying the
	// reference. References are unique in practice but the lookup is
	// ordered-by-created-at defensively, matching how the gateway
	// resolves them.
	FindLatestByReference(ctx context.Context, tx Tx, reference string) (*model.PaymentAttempt, error)

	// ResolveIfPending atomically moves a pending attempt to the given
	// terminal status. Returns false when the attempt was already
	// resolved, which is how replayed webhook deliveries become no-ops.
	ResolveIfPending(ctx context.Context, tx Tx, id string, status model.AttemptStatus) (bool, error)

	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.PaymentAttempt, error)

	// SumCompletedByPeriod totals completed attempts since the start of
	// the current week/month/year ("week"|"month"|"year").
	SumCompletedByPeriod(ctx context.Context, period string) (int64, error)
}
