//go:build !integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

type fakeUserRepo struct {
	updateTierErr error
}

func (f *fakeUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return &model.User{ID: id, RegisteredAt: time.Now()}, nil
}

func (f *fakeUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) UpdateTier(ctx context.Context, tx repository.Tx, userID string, tier model.MembershipTier) error {
	return f.updateTierErr
}

func (f *fakeUserRepo) CountUsers(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeUserRepo) SyncTiersFromSubscriptions(ctx context.Context) (int, error) { return 0, nil }

type recordingInvalidator struct {
	invalidated []string
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, userID string) {
	r.invalidated = append(r.invalidated, userID)
}

func TestUserRepoCacheInvalidator(t *testing.T) {
	ctx := context.Background()

	t.Run("tier update drops the cached profile", func(t *testing.T) {
		cache := &recordingInvalidator{}
		repo := NewUserRepoCacheInvalidator(&fakeUserRepo{}, cache)

		if err := repo.UpdateTier(ctx, nil, "user-1", model.TierPremium); err != nil {
			t.Fatalf("UpdateTier: %v", err)
		}
		if len(cache.invalidated) != 1 || cache.invalidated[0] != "user-1" {
			t.Errorf("invalidated = %v, want [user-1]", cache.invalidated)
		}
	})

	t.Run("failed tier update leaves the cache alone", func(t *testing.T) {
		cache := &recordingInvalidator{}
		repo := NewUserRepoCacheInvalidator(&fakeUserRepo{updateTierErr: errors.New("connection reset")}, cache)

		if err := repo.UpdateTier(ctx, nil, "user-1", model.TierPremium); err == nil {
			t.Fatal("expected error")
		}
		if len(cache.invalidated) != 0 {
			t.Errorf("invalidated = %v, want none", cache.invalidated)
		}
	})

	t.Run("save drops the cached profile", func(t *testing.T) {
		cache := &recordingInvalidator{}
		repo := NewUserRepoCacheInvalidator(&fakeUserRepo{}, cache)

		if err := repo.Save(ctx, nil, &model.User{ID: "user-2", Phone: "+221770000002"}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if len(cache.invalidated) != 1 || cache.invalidated[0] != "user-2" {
			t.Errorf("invalidated = %v, want [user-2]", cache.invalidated)
		}
	})

	t.Run("reads and bulk repair do not invalidate", func(t *testing.T) {
		cache := &recordingInvalidator{}
		repo := NewUserRepoCacheInvalidator(&fakeUserRepo{}, cache)

		if _, err := repo.FindByID(ctx, nil, "user-1"); err != nil {
			t.Fatalf("FindByID: %v", err)
		}
		if _, err := repo.SyncTiersFromSubscriptions(ctx); err != nil {
			t.Fatalf("SyncTiersFromSubscriptions: %v", err)
		}
		if len(cache.invalidated) != 0 {
			t.Errorf("invalidated = %v, want none", cache.invalidated)
		}
	})
}
