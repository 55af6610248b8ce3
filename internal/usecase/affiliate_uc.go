// File: internal/usecase/affiliate_uc.go
package usecase

import (
	"context"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

// Compile-time check
var _ AffiliateUseCase = (*affiliateUC)(nil)

const leaderboardSize = 10

// AffiliateUseCase serves the referral dashboards. Read-only; the
// aggregation happens in SQL.
type AffiliateUseCase interface {
	Summary(ctx context.Context, userID string) (*model.AffiliateSummary, error)
	Leaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error)
}

type affiliateUC struct {
	referrals repository.ReferralRepository
}

func NewAffiliateUseCase(referrals repository.ReferralRepository) *affiliateUC {
	return &affiliateUC{referrals: referrals}
}

func (u *affiliateUC) Summary(ctx context.Context, userID string) (*model.AffiliateSummary, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.referrals.SummaryByUser(ctx, userID)
}

func (u *affiliateUC) Leaderboard(ctx context.Context) ([]*model.LeaderboardEntry, error) {
	return u.referrals.Leaderboard(ctx, leaderboardSize)
}
