package repository

import (
	"context"

	"clientcard-platform/internal/domain/model"
)

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByPhone(ctx context.Context, tx Tx, phone string) (*model.User, error)
	UpdateTier(ctx context.Context, tx Tx, userID string, tier model.MembershipTier) error
	CountUsers(ctx context.Context) (int, error)

	// SyncTiersFromSubscriptions repairs users whose membership tier
	// drifted from their active subscription (the tier write is best
	// effort on the hot path). Returns how many rows were fixed.
	SyncTiersFromSubscriptions(ctx context.Context) (int, error)
}
