package repository

import (
	"context"

	"clientcard-platform/internal/domain/model"
)

type TokenRepository interface {
	SaveSubscription(ctx context.Context, tx Tx, s *model.TokenSubscription) error
	FindSubscription(ctx context.Context, tx Tx, userID string, plan model.ServicePlan) (*model.TokenSubscription, error)
	ListSubscriptionsByUser(ctx context.Context, tx Tx, userID string) ([]*model.TokenSubscription, error)

	AppendTransaction(ctx context.Context, tx Tx, t *model.TokenTransaction) error
	ListTransactionsByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.TokenTransaction, error)

	// AdjustBalance adds delta (may be negative) to the account balance.
	// Called only inside the transaction that appends the matching
	// ledger row so balance and log cannot drift.
	AdjustBalance(ctx context.Context, tx Tx, subscriptionID string, delta int64) error

	// TotalTokens sums balances across all accounts, for admin stats.
	TotalTokens(ctx context.Context) (int64, error)
}
