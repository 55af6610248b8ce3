// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"clientcard-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase backs the admin back-office dashboard.
type StatsUseCase interface {
	Totals(ctx context.Context) (users int, activeByTier map[string]int, totalTokens int64, err error)
	Revenue(ctx context.Context) (week, month, year int64, err error)
}

type statsUC struct {
	users    repository.UserRepository
	subs     repository.SubscriptionRepository
	tokens   repository.TokenRepository
	attempts repository.PaymentAttemptRepository
}

func NewStatsUseCase(
	users repository.UserRepository,
	subs repository.SubscriptionRepository,
	tokens repository.TokenRepository,
	attempts repository.PaymentAttemptRepository,
) *statsUC {
	return &statsUC{users: users, subs: subs, tokens: tokens, attempts: attempts}
}

func (u *statsUC) Totals(ctx context.Context) (int, map[string]int, int64, error) {
	users, err := u.users.CountUsers(ctx)
	if err != nil {
		return 0, nil, 0, err
	}
	byTier, err := u.subs.CountActiveByTier(ctx)
	if err != nil {
		return 0, nil, 0, err
	}
	tokens, err := u.tokens.TotalTokens(ctx)
	if err != nil {
		return 0, nil, 0, err
	}
	return users, byTier, tokens, nil
}

func (u *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	week, err := u.attempts.SumCompletedByPeriod(ctx, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	month, err := u.attempts.SumCompletedByPeriod(ctx, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	year, err := u.attempts.SumCompletedByPeriod(ctx, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return week, month, year, nil
}
