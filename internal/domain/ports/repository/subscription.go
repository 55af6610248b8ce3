package repository

import (
	"context"

	"clientcard-platform/internal/domain/model"
)

// SubscriptionRepository is the port for membership subscriptions.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)

	// ActivateIfPending flips the row to active and stamps the term
	// window only when the current status is pending. Returns whether a
	// row was actually updated, which gates tier sync on replays.
	ActivateIfPending(ctx context.Context, tx Tx, id string, durationDays int) (bool, error)

	// ExpireOverdue marks active subscriptions past their end date as
	// expired, returning how many rows changed.
	ExpireOverdue(ctx context.Context, tx Tx) (int, error)

	// CountActiveByTier powers the admin stats screen.
	CountActiveByTier(ctx context.Context) (map[string]int, error)
}
