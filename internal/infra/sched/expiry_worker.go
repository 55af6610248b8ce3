package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain/ports/repository"
)

// ExpiryWorker marks active subscriptions past their end date as
// expired.
type ExpiryWorker struct {
	subs     repository.SubscriptionRepository
	interval time.Duration
	log      *zerolog.Logger
}

func NewExpiryWorker(subs repository.SubscriptionRepository, interval time.Duration, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ExpiryWorker{subs: subs, interval: interval, log: logger}
}

func (w *ExpiryWorker) Start(ctx context.Context) {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := w.subs.ExpireOverdue(ctx, nil)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry: scan failed")
				continue
			}
			if n > 0 {
				w.log.Info().Int("expired", n).Msg("expiry: subscriptions expired")
			}
		}
	}
}
