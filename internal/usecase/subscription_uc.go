// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/adapter"
	"clientcard-platform/internal/domain/ports/repository"
	"clientcard-platform/internal/infra/metrics"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// Checkout creates a pending subscription plus its payment attempt
	// and returns the gateway redirect URL.
	Checkout(ctx context.Context, userID string, tier model.MembershipTier, callbackURL string) (*model.Subscription, string, error)
	// Activate flips a subscription to active and syncs the owner's
	// membership tier (best effort).
	Activate(ctx context.Context, subscriptionID, userID string, tier model.MembershipTier) (*model.Subscription, error)
	// Plans lists purchasable membership plans.
	Plans(ctx context.Context) ([]*model.MembershipPlan, error)
}

type subscriptionUC struct {
	subs     repository.SubscriptionRepository
	plans    repository.PlanRepository
	users    repository.UserRepository
	attempts repository.PaymentAttemptRepository
	gateway  adapter.PaymentGateway
	tierSync TierSyncEnqueuer
	log      *zerolog.Logger
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	users repository.UserRepository,
	attempts repository.PaymentAttemptRepository,
	gateway adapter.PaymentGateway,
	tierSync TierSyncEnqueuer,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		subs:     subs,
		plans:    plans,
		users:    users,
		attempts: attempts,
		gateway:  gateway,
		tierSync: tierSync,
		log:      logger,
	}
}

// NewPaymentReference builds a gateway reference: prefix + ULID. ULIDs
// sort by creation time, which is what FindLatestByReference leans on.
func NewPaymentReference(prefix string) string {
	return prefix + ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func (u *subscriptionUC) Checkout(ctx context.Context, userID string, tier model.MembershipTier, callbackURL string) (*model.Subscription, string, error) {
	if userID == "" || tier == model.TierNone {
		return nil, "", domain.ErrInvalidArgument
	}
	plan, err := u.plans.FindByTier(ctx, nil, tier)
	if err != nil {
		return nil, "", err
	}

	sub, err := model.NewSubscription(uuid.NewString(), userID, plan)
	if err != nil {
		return nil, "", err
	}
	if err := u.subs.Save(ctx, nil, sub); err != nil {
		return nil, "", err
	}

	reference := NewPaymentReference(model.RefPrefixSubscription)
	attempt, err := model.NewPaymentAttempt(uuid.NewString(), reference, userID, plan.PriceFcfa, u.gateway.Name())
	if err != nil {
		return nil, "", err
	}
	attempt.SubscriptionID = &sub.ID
	attempt.Meta = map[string]interface{}{"plan": string(plan.Tier)}
	if err := u.attempts.Save(ctx, nil, attempt); err != nil {
		return nil, "", err
	}

	payURL, err := u.gateway.RequestPayment(ctx, plan.PriceFcfa, reference, "Client card "+plan.Name, callbackURL)
	if err != nil {
		return nil, "", err
	}
	metrics.IncPayment(string(model.AttemptStatusPending))
	u.log.Info().Str("user_id", userID).Str("reference", reference).Msg("subscription checkout initiated")
	return sub, payURL, nil
}

func (u *subscriptionUC) Activate(ctx context.Context, subscriptionID, userID string, tier model.MembershipTier) (*model.Subscription, error) {
	if subscriptionID == "" || userID == "" || tier == model.TierNone {
		return nil, domain.ErrInvalidArgument
	}

	sub, err := u.subs.FindByID(ctx, nil, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ErrInvalidArgument
	}

	plan, err := u.plans.FindByTier(ctx, nil, tier)
	if err != nil {
		return nil, err
	}

	activated, err := u.subs.ActivateIfPending(ctx, nil, sub.ID, plan.DurationDays)
	if err != nil {
		return nil, err
	}
	if !activated && sub.Status != model.SubscriptionStatusActive {
		// cancelled or expired rows stay terminal
		return nil, errors.New("subscription is not activatable")
	}

	sub, err = u.subs.FindByID(ctx, nil, sub.ID)
	if err != nil {
		return nil, err
	}

	// Tier sync is secondary: the activation stands even when it fails.
	if err := u.users.UpdateTier(ctx, nil, userID, tier); err != nil {
		u.log.Error().Err(err).Str("user_id", userID).Msg("tier update failed; queued for retry")
		metrics.IncTierSync("retry")
		if u.tierSync != nil {
			u.tierSync.Enqueue(userID, tier)
		}
	} else {
		metrics.IncTierSync("ok")
	}

	u.log.Info().Str("subscription_id", sub.ID).Str("tier", string(tier)).Msg("subscription activated")
	return sub, nil
}

func (u *subscriptionUC) Plans(ctx context.Context) ([]*model.MembershipPlan, error) {
	return u.plans.ListActive(ctx, nil)
}
