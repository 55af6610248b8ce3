package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
	"clientcard-platform/internal/infra/metrics"
)

// AttemptReconciler periodically fails payment attempts that stayed
// pending past the gateway's settlement horizon. This covers dropped
// webhook deliveries: the attempt is settled (as failed) rather than
// dangling forever, and the user can retry the purchase.
type AttemptReconciler struct {
	attempts   repository.PaymentAttemptRepository
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	log        *zerolog.Logger
}

func NewAttemptReconciler(attempts repository.PaymentAttemptRepository, interval, staleAfter time.Duration, batchSize int, logger *zerolog.Logger) *AttemptReconciler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if staleAfter <= 0 {
		staleAfter = 30 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &AttemptReconciler{attempts: attempts, interval: interval, staleAfter: staleAfter, batchSize: batchSize, log: logger}
}

func (w *AttemptReconciler) Start(ctx context.Context) {
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

func (w *AttemptReconciler) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.staleAfter)
	pending, err := w.attempts.ListPendingOlderThan(ctx, nil, cutoff, w.batchSize)
	if err != nil {
		w.log.Error().Err(err).Msg("attempt-reconciler: list pending failed")
		return
	}
	for _, p := range pending {
		resolved, err := w.attempts.ResolveIfPending(ctx, nil, p.ID, model.AttemptStatusFailed)
		if err != nil {
			w.log.Error().Err(err).Str("attempt_id", p.ID).Msg("attempt-reconciler: resolve failed")
			continue
		}
		if resolved {
			metrics.IncPayment(string(model.AttemptStatusFailed))
			w.log.Info().Str("attempt_id", p.ID).Str("reference", p.Reference).Msg("attempt-reconciler: stale attempt failed")
		}
	}
}
