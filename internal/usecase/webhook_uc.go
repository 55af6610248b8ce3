// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
	"clientcard-platform/internal/infra/metrics"
)

// WebhookOutcome is the provider status collapsed to what reconciliation
// cares about.
type WebhookOutcome string

const (
	OutcomeSuccess WebhookOutcome = "success"
	OutcomeFailure WebhookOutcome = "failure"
	OutcomeUnknown WebhookOutcome = "unknown"
)

// WebhookEvent is a normalized gateway callback.
type WebhookEvent struct {
	Reference  string
	Outcome    WebhookOutcome
	AmountFcfa int64
}

// Locker serializes concurrent deliveries for the same reference.
// Satisfied by the redis locker.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, key, token string) error
}

// Compile-time check
var _ WebhookUseCase = (*webhookUC)(nil)

// WebhookUseCase reconciles asynchronous payment callbacks against
// stored payment attempts. Process is idempotent per reference: the
// attempt is resolved with a conditional update inside one transaction,
// so a replayed delivery credits nothing.
type WebhookUseCase interface {
	Process(ctx context.Context, ev WebhookEvent) error
}

// affiliate commission granted to the referrer when a referred user's
// subscription payment completes
const (
	referralCommissionPct = 10
	referralCreditPoints  = 10
	webhookLockTTL        = 30 * time.Second
	webhookLockKeyPrefix  = "webhook:ref:"
)

type webhookUC struct {
	attempts  repository.PaymentAttemptRepository
	tokens    repository.TokenRepository
	subs      repository.SubscriptionRepository
	plans     repository.PlanRepository
	users     repository.UserRepository
	referrals repository.ReferralRepository
	tm        repository.TransactionManager
	locker    Locker
	tierSync  TierSyncEnqueuer
	log       *zerolog.Logger
}

// TierSyncEnqueuer schedules a retry when the best-effort tier write
// fails after activation. Satisfied by the worker pool wrapper.
type TierSyncEnqueuer interface {
	Enqueue(userID string, tier model.MembershipTier)
}

func NewWebhookUseCase(
	attempts repository.PaymentAttemptRepository,
	tokens repository.TokenRepository,
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	users repository.UserRepository,
	referrals repository.ReferralRepository,
	tm repository.TransactionManager,
	locker Locker,
	tierSync TierSyncEnqueuer,
	logger *zerolog.Logger,
) *webhookUC {
	return &webhookUC{
		attempts:  attempts,
		tokens:    tokens,
		subs:      subs,
		plans:     plans,
		users:     users,
		referrals: referrals,
		tm:        tm,
		locker:    locker,
		tierSync:  tierSync,
		log:       logger,
	}
}

// Process handles one delivery. Errors bubble up for logging and
// metrics, but the HTTP layer acknowledges the provider regardless.
func (u *webhookUC) Process(ctx context.Context, ev WebhookEvent) error {
	if ev.Reference == "" {
		u.log.Warn().Msg("webhook without reference; acknowledged as no-op")
		metrics.IncWebhook("none", "missing_reference")
		return nil
	}

	kind := model.ClassifyReference(ev.Reference)
	logger := u.log.With().Str("reference", ev.Reference).Str("kind", string(kind)).Logger()

	if u.locker != nil {
		token, err := u.locker.TryLock(ctx, webhookLockKeyPrefix+ev.Reference, webhookLockTTL)
		switch {
		case err == nil:
			defer func() { _ = u.locker.Unlock(ctx, webhookLockKeyPrefix+ev.Reference, token) }()
		case errors.Is(err, domain.ErrLockNotAcquired):
			// Another delivery for this reference is in flight; it will
			// settle the attempt, so this one is a no-op.
			logger.Info().Msg("concurrent delivery detected; skipping")
			metrics.IncWebhookReplay()
			return nil
		default:
			// Lock infrastructure is down. The conditional resolve is the
			// correctness guard, so process without the lock rather than
			// drop a paid delivery.
			logger.Warn().Err(err).Msg("reference lock unavailable; processing without it")
		}
	}

	switch ev.Outcome {
	case OutcomeFailure:
		return u.processFailure(ctx, &logger, ev)
	case OutcomeSuccess:
		switch kind {
		case model.AttemptKindTokens:
			return u.processTokenPurchase(ctx, &logger, ev)
		case model.AttemptKindSubscription:
			return u.processSubscriptionPayment(ctx, &logger, ev)
		default:
			logger.Warn().Msg("unrecognized reference prefix; acknowledged as no-op")
			metrics.IncWebhook(string(kind), "unclassified")
			return nil
		}
	default:
		// Intermediate statuses (PENDING etc.) leave the attempt alone.
		logger.Debug().Msg("non-terminal webhook status ignored")
		metrics.IncWebhook(string(kind), "ignored")
		return nil
	}
}

func (u *webhookUC) processFailure(ctx context.Context, logger *zerolog.Logger, ev WebhookEvent) error {
	attempt, err := u.attempts.FindLatestByReference(ctx, nil, ev.Reference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn().Msg("failure webhook for unknown reference")
			metrics.IncWebhook(string(model.ClassifyReference(ev.Reference)), "unknown_reference")
			return nil
		}
		return err
	}
	resolved, err := u.attempts.ResolveIfPending(ctx, nil, attempt.ID, model.AttemptStatusFailed)
	if err != nil {
		return err
	}
	if !resolved {
		metrics.IncWebhookReplay()
		logger.Info().Msg("failure webhook replayed; attempt already resolved")
		return nil
	}
	metrics.IncPayment(string(model.AttemptStatusFailed))
	metrics.IncWebhook(string(attempt.Kind()), "failed")
	logger.Info().Str("attempt_id", attempt.ID).Msg("payment attempt marked failed")
	return nil
}

// processTokenPurchase credits the emergency-token account. Lookup,
// conditional resolve, ledger append and balance bump run in a single
// transaction keyed on the reference.
func (u *webhookUC) processTokenPurchase(ctx context.Context, logger *zerolog.Logger, ev WebhookEvent) error {
	var credited, settledFcfa int64
	var plan model.ServicePlan

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		attempt, err := u.attempts.FindLatestByReference(ctx, tx, ev.Reference)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUnknownReference
			}
			return err
		}

		resolved, err := u.attempts.ResolveIfPending(ctx, tx, attempt.ID, model.AttemptStatusCompleted)
		if err != nil {
			return err
		}
		if !resolved {
			return domain.ErrAlreadyProcessed
		}

		amount := ev.AmountFcfa
		if amount <= 0 {
			amount = attempt.AmountFcfa
		}
		settledFcfa = amount
		plan = attempt.TokenPlan
		credited = model.TokensForAmount(plan, amount)
		if credited == 0 {
			logger.Warn().Str("plan", string(plan)).Int64("amount", amount).Msg("zero tokens computed for credit")
		}

		sub, err := u.tokens.FindSubscription(ctx, tx, attempt.UserID, plan)
		if errors.Is(err, domain.ErrNotFound) {
			sub, err = model.NewTokenSubscription(uuid.NewString(), attempt.UserID, plan)
			if err != nil {
				return err
			}
			if err := u.tokens.SaveSubscription(ctx, tx, sub); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		txn := &model.TokenTransaction{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			Reference:      ev.Reference,
			TokenAmount:    credited,
			ValueFcfa:      amount,
			PaymentMethod:  attempt.Provider,
			Status:         model.TransactionStatusCompleted,
			CreatedAt:      time.Now(),
		}
		if err := u.tokens.AppendTransaction(ctx, tx, txn); err != nil {
			return err
		}
		if credited > 0 {
			if err := u.tokens.AdjustBalance(ctx, tx, sub.ID, credited); err != nil {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
		metrics.IncPayment(string(model.AttemptStatusCompleted))
		metrics.AddPaymentRevenue(settledFcfa)
		metrics.AddTokensCredited(string(plan), credited)
		metrics.IncWebhook(string(model.AttemptKindTokens), "credited")
		logger.Info().Int64("tokens", credited).Str("plan", string(plan)).Msg("token purchase credited")
		return nil
	case errors.Is(err, domain.ErrAlreadyProcessed):
		metrics.IncWebhookReplay()
		logger.Info().Msg("token webhook replayed; attempt already resolved")
		return nil
	case errors.Is(err, domain.ErrUnknownReference):
		metrics.IncWebhook(string(model.AttemptKindTokens), "unknown_reference")
		logger.Warn().Msg("token webhook for unknown reference")
		return nil
	default:
		return err
	}
}

// processSubscriptionPayment activates the membership bought by the
// attempt and syncs the user's tier. Referral conversion and the
// affiliate reward ride in the same transaction; the tier write is best
// effort after commit with a queued retry.
func (u *webhookUC) processSubscriptionPayment(ctx context.Context, logger *zerolog.Logger, ev WebhookEvent) error {
	var userID string
	var tier model.MembershipTier
	var settledFcfa int64

	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		attempt, err := u.attempts.FindLatestByReference(ctx, tx, ev.Reference)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUnknownReference
			}
			return err
		}

		resolved, err := u.attempts.ResolveIfPending(ctx, tx, attempt.ID, model.AttemptStatusCompleted)
		if err != nil {
			return err
		}
		if !resolved {
			return domain.ErrAlreadyProcessed
		}

		settledFcfa = ev.AmountFcfa
		if settledFcfa <= 0 {
			settledFcfa = attempt.AmountFcfa
		}

		if attempt.SubscriptionID == nil {
			return domain.ErrInvalidArgument
		}
		sub, err := u.subs.FindByID(ctx, tx, *attempt.SubscriptionID)
		if err != nil {
			return err
		}
		plan, err := u.plans.FindByID(ctx, tx, sub.PlanID)
		if err != nil {
			return err
		}
		activated, err := u.subs.ActivateIfPending(ctx, tx, sub.ID, plan.DurationDays)
		if err != nil {
			return err
		}

		userID = attempt.UserID
		tier = model.ParseTier(attempt.MetaString("plan"))
		if tier == model.TierNone {
			tier = plan.Tier
		}

		if activated {
			if err := u.grantReferralReward(ctx, tx, attempt); err != nil {
				// The reward is derived data; losing it must not void
				// the member's paid activation.
				logger.Error().Err(err).Msg("affiliate reward grant failed")
			}
		}
		return nil
	})

	switch {
	case errors.Is(err, domain.ErrAlreadyProcessed):
		metrics.IncWebhookReplay()
		logger.Info().Msg("subscription webhook replayed; attempt already resolved")
		return nil
	case errors.Is(err, domain.ErrUnknownReference):
		metrics.IncWebhook(string(model.AttemptKindSubscription), "unknown_reference")
		logger.Warn().Msg("subscription webhook for unknown reference")
		return nil
	case err != nil:
		return err
	}

	metrics.IncPayment(string(model.AttemptStatusCompleted))
	metrics.AddPaymentRevenue(settledFcfa)
	metrics.IncWebhook(string(model.AttemptKindSubscription), "activated")

	// Tier sync after commit: activation is the primary effect.
	if err := u.users.UpdateTier(ctx, nil, userID, tier); err != nil {
		logger.Error().Err(err).Str("user_id", userID).Msg("tier update failed; queued for retry")
		metrics.IncTierSync("retry")
		if u.tierSync != nil {
			u.tierSync.Enqueue(userID, tier)
		}
	} else {
		metrics.IncTierSync("ok")
	}
	logger.Info().Str("user_id", userID).Str("tier", string(tier)).Msg("subscription activated via webhook")
	return nil
}

func (u *webhookUC) grantReferralReward(ctx context.Context, tx repository.Tx, attempt *model.PaymentAttempt) error {
	buyer, err := u.users.FindByID(ctx, tx, attempt.UserID)
	if err != nil || buyer.ReferrerID == nil {
		return err
	}
	if err := u.referrals.MarkConverted(ctx, tx, buyer.ID); err != nil {
		return err
	}
	reward := &model.AffiliateReward{
		ID:             uuid.NewString(),
		ReferrerID:     *buyer.ReferrerID,
		ReferredUserID: buyer.ID,
		CommissionFcfa: attempt.AmountFcfa * referralCommissionPct / 100,
		CreditPoints:   referralCreditPoints,
		Status:         model.RewardStatusPending,
		CreatedAt:      time.Now(),
	}
	return u.referrals.SaveReward(ctx, tx, reward)
}
