// File: internal/usecase/user_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// ProfileCache memoizes profile reads. Satisfied by the redis cache.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*model.User, bool)
	Put(ctx context.Context, u *model.User)
	Invalidate(ctx context.Context, userID string)
}

type UserUseCase interface {
	// Register creates the card holder; when referrerID is set a pending
	// referral row is recorded for the affiliate program.
	Register(ctx context.Context, fullName, email, phone string, referrerID *string) (*model.User, error)
	Profile(ctx context.Context, userID string) (*model.User, error)
}

type userUC struct {
	users     repository.UserRepository
	referrals repository.ReferralRepository
	cache     ProfileCache
	log       *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, referrals repository.ReferralRepository, cache ProfileCache, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, referrals: referrals, cache: cache, log: logger}
}

func (u *userUC) Register(ctx context.Context, fullName, email, phone string, referrerID *string) (*model.User, error) {
	if existing, err := u.users.FindByPhone(ctx, nil, phone); err == nil && existing != nil {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user, err := model.NewUser(uuid.NewString(), fullName, email, phone)
	if err != nil {
		return nil, err
	}
	user.ReferrerID = referrerID
	if err := u.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}

	if referrerID != nil && *referrerID != "" {
		ref := &model.Referral{
			ID:             uuid.NewString(),
			ReferrerID:     *referrerID,
			ReferredUserID: user.ID,
			Status:         model.ReferralStatusPending,
			CreatedAt:      time.Now(),
		}
		if err := u.referrals.SaveReferral(ctx, nil, ref); err != nil {
			// Registration stands; the referral row is derived data.
			u.log.Error().Err(err).Str("user_id", user.ID).Msg("referral record failed")
		}
	}

	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (u *userUC) Profile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if u.cache != nil {
		if cached, ok := u.cache.Get(ctx, userID); ok {
			return cached, nil
		}
	}
	user, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if u.cache != nil {
		u.cache.Put(ctx, user)
	}
	return user, nil
}
