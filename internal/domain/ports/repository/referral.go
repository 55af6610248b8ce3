package repository

import (
	"context"

	"clientcard-platform/internal/domain/model"
)

// ReferralRepository is the read-mostly port behind the affiliate
// dashboards. Summaries and the leaderboard are grouped joins done in
// SQL, not recomputed in Go.
type ReferralRepository interface {
	SaveReferral(ctx context.Context, tx Tx, r *model.Referral) error
	SaveReward(ctx context.Context, tx Tx, rw *model.AffiliateReward) error
	MarkConverted(ctx context.Context, tx Tx, referredUserID string) error

	SummaryByUser(ctx context.Context, userID string) (*model.AffiliateSummary, error)
	Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}
