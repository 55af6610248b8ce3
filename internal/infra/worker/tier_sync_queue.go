package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
	"clientcard-platform/internal/infra/metrics"
)

// TierSyncQueue retries failed membership-tier writes off the request
// path. A dropped task is not lost for good: the periodic tier-sync
// worker repairs any remaining drift from the subscriptions table.
type TierSyncQueue struct {
	pool  *Pool
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewTierSyncQueue(pool *Pool, users repository.UserRepository, logger *zerolog.Logger) *TierSyncQueue {
	return &TierSyncQueue{pool: pool, users: users, log: logger}
}

func (q *TierSyncQueue) Enqueue(userID string, tier model.MembershipTier) {
	err := q.pool.Submit(func(ctx context.Context) error {
		var lastErr error
		for i := 0; i < 3; i++ {
			if lastErr = q.users.UpdateTier(ctx, nil, userID, tier); lastErr == nil {
				metrics.IncTierSync("ok")
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * time.Second):
			}
		}
		metrics.IncTierSync("failed")
		return lastErr
	})
	if err != nil {
		q.log.Warn().Err(err).Str("user_id", userID).Msg("tier sync task dropped; periodic repair will catch it")
	}
}
