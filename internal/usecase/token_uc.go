// File: internal/usecase/token_uc.go
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
	"clientcard-platform/internal/domain/ports/adapter"
	"clientcard-platform/internal/domain/ports/repository"
	"clientcard-platform/internal/infra/metrics"
)

// Compile-time check
var _ TokenUseCase = (*tokenUC)(nil)

// TokenUseCase is the emergency-token ledger: purchases go through the
// gateway and are credited by the webhook path; withdrawals debit the
// balance and the ledger in one transaction.
type TokenUseCase interface {
	Purchase(ctx context.Context, userID string, plan model.ServicePlan, amountFcfa int64, callbackURL string) (*model.PaymentAttempt, string, error)
	Balances(ctx context.Context, userID string, plan model.ServicePlan) ([]*model.TokenSubscription, error)
	History(ctx context.Context, userID string, limit int) ([]*model.TokenTransaction, error)
	Withdraw(ctx context.Context, userID string, plan model.ServicePlan, tokenAmount int64) (*model.TokenTransaction, error)
}

type tokenUC struct {
	tokens   repository.TokenRepository
	attempts repository.PaymentAttemptRepository
	gateway  adapter.PaymentGateway
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewTokenUseCase(
	tokens repository.TokenRepository,
	attempts repository.PaymentAttemptRepository,
	gateway adapter.PaymentGateway,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *tokenUC {
	return &tokenUC{tokens: tokens, attempts: attempts, gateway: gateway, tm: tm, log: logger}
}

func (u *tokenUC) Purchase(ctx context.Context, userID string, plan model.ServicePlan, amountFcfa int64, callbackURL string) (*model.PaymentAttempt, string, error) {
	if userID == "" || plan == "" || amountFcfa <= 0 {
		return nil, "", domain.ErrInvalidArgument
	}
	if model.UnitPriceFcfa(plan) == 0 {
		return nil, "", domain.ErrInvalidArgument
	}

	reference := NewPaymentReference(model.RefPrefixTokens)
	attempt, err := model.NewPaymentAttempt(uuid.NewString(), reference, userID, amountFcfa, u.gateway.Name())
	if err != nil {
		return nil, "", err
	}
	attempt.TokenPlan = plan
	if err := u.attempts.Save(ctx, nil, attempt); err != nil {
		return nil, "", err
	}

	payURL, err := u.gateway.RequestPayment(ctx, amountFcfa, reference, "Secours tokens "+string(plan), callbackURL)
	if err != nil {
		return nil, "", err
	}
	metrics.IncPayment(string(model.AttemptStatusPending))
	u.log.Info().Str("user_id", userID).Str("plan", string(plan)).Str("reference", reference).Msg("token purchase initiated")
	return attempt, payURL, nil
}

func (u *tokenUC) Balances(ctx context.Context, userID string, plan model.ServicePlan) ([]*model.TokenSubscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if plan != "" {
		sub, err := u.tokens.FindSubscription(ctx, nil, userID, plan)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*model.TokenSubscription{sub}, nil
	}
	return u.tokens.ListSubscriptionsByUser(ctx, nil, userID)
}

func (u *tokenUC) History(ctx context.Context, userID string, limit int) ([]*model.TokenTransaction, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.tokens.ListTransactionsByUser(ctx, nil, userID, limit)
}

// Withdraw debits tokens. Balance check, ledger append and balance
// decrement share one transaction; the guarded UPDATE in AdjustBalance
// rejects a concurrent overdraw.
func (u *tokenUC) Withdraw(ctx context.Context, userID string, plan model.ServicePlan, tokenAmount int64) (*model.TokenTransaction, error) {
	if userID == "" || plan == "" || tokenAmount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if min := model.WithdrawalMinimum(plan); tokenAmount < min {
		return nil, domain.ErrBelowMinimum
	}

	var txn *model.TokenTransaction
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.tokens.FindSubscription(ctx, tx, userID, plan)
		if err != nil {
			return err
		}
		if sub.TokenBalance < tokenAmount {
			return domain.ErrInsufficientBalance
		}

		txn = &model.TokenTransaction{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			Reference:      NewPaymentReference("WD_"),
			TokenAmount:    -tokenAmount,
			ValueFcfa:      tokenAmount * model.UnitPriceFcfa(plan),
			PaymentMethod:  "withdrawal",
			Status:         model.TransactionStatusCompleted,
			CreatedAt:      time.Now(),
		}
		if err := u.tokens.AppendTransaction(ctx, tx, txn); err != nil {
			return err
		}
		return u.tokens.AdjustBalance(ctx, tx, sub.ID, -tokenAmount)
	})
	if err != nil {
		return nil, err
	}

	metrics.AddTokensWithdrawn(string(plan), tokenAmount)
	u.log.Info().Str("user_id", userID).Str("plan", string(plan)).Int64("tokens", tokenAmount).Msg("tokens withdrawn")
	return txn, nil
}
