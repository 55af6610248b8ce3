package postgres

import (
	"context"

	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepoCacheInvalidator)(nil)

// profileInvalidator is the slice of the profile cache the decorator
// needs. Satisfied by the redis profile cache.
type profileInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// userRepoCacheInvalidator drops the cached profile on every write that
// could change what the profile endpoint serves, so a member who just
// paid sees the new tier immediately. The bulk repair query cannot name
// the users it touched; those entries age out at the cache TTL.
type userRepoCacheInvalidator struct {
	inner repository.UserRepository
	cache profileInvalidator
}

func NewUserRepoCacheInvalidator(inner repository.UserRepository, cache profileInvalidator) repository.UserRepository {
	return &userRepoCacheInvalidator{inner: inner, cache: cache}
}

func (d *userRepoCacheInvalidator) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if err := d.inner.Save(ctx, tx, u); err != nil {
		return err
	}
	d.cache.Invalidate(ctx, u.ID)
	return nil
}

func (d *userRepoCacheInvalidator) UpdateTier(ctx context.Context, tx repository.Tx, userID string, tier model.MembershipTier) error {
	if err := d.inner.UpdateTier(ctx, tx, userID, tier); err != nil {
		return err
	}
	d.cache.Invalidate(ctx, userID)
	return nil
}

func (d *userRepoCacheInvalidator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return d.inner.FindByID(ctx, tx, id)
}

func (d *userRepoCacheInvalidator) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	return d.inner.FindByPhone(ctx, tx, phone)
}

func (d *userRepoCacheInvalidator) CountUsers(ctx context.Context) (int, error) {
	return d.inner.CountUsers(ctx)
}

func (d *userRepoCacheInvalidator) SyncTiersFromSubscriptions(ctx context.Context) (int, error) {
	return d.inner.SyncTiersFromSubscriptions(ctx)
}
