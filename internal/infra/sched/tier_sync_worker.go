package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain/ports/repository"
	"clientcard-platform/internal/infra/metrics"
)

// TierSyncWorker periodically repairs users whose membership tier
// drifted from their active subscription. This is the reconciliation
// half of the best-effort tier write on the activation paths.
type TierSyncWorker struct {
	users    repository.UserRepository
	interval time.Duration
	log      *zerolog.Logger
}

func NewTierSyncWorker(users repository.UserRepository, interval time.Duration, logger *zerolog.Logger) *TierSyncWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &TierSyncWorker{users: users, interval: interval, log: logger}
}

func (w *TierSyncWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *TierSyncWorker) tick(ctx context.Context) {
	fixed, err := w.users.SyncTiersFromSubscriptions(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("tier-sync: repair query failed")
		return
	}
	if fixed > 0 {
		metrics.IncTierSync("ok")
		w.log.Info().Int("fixed", fixed).Msg("tier-sync: repaired drifted tiers")
	}
}
