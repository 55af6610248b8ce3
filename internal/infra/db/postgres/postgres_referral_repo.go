package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

var _ repository.ReferralRepository = (*referralRepo)(nil)

type referralRepo struct{ pool *pgxpool.Pool }

func NewReferralRepo(pool *pgxpool.Pool) *referralRepo {
	return &referralRepo{pool: pool}
}

func (r *referralRepo) SaveReferral(ctx context.Context, tx repository.Tx, ref *model.Referral) error {
	const q = `
INSERT INTO referrals (id, referrer_id, referred_user_id, status, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (referred_user_id) DO NOTHING;`
	_, err := execSQL(ctx, r.pool, tx, q, ref.ID, ref.ReferrerID, ref.ReferredUserID, ref.Status, ref.CreatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *referralRepo) SaveReward(ctx context.Context, tx repository.Tx, rw *model.AffiliateReward) error {
	const q = `
INSERT INTO affiliate_rewards (id, referrer_id, referred_user_id, commission_fcfa, credit_points, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, rw.ID, rw.ReferrerID, rw.ReferredUserID, rw.CommissionFcfa, rw.CreditPoints, rw.Status, rw.CreatedAt)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *referralRepo) MarkConverted(ctx context.Context, tx repository.Tx, referredUserID string) error {
	const q = `UPDATE referrals SET status='converted' WHERE referred_user_id=$1 AND status='pending';`
	_, err := execSQL(ctx, r.pool, tx, q, referredUserID)
	if err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *referralRepo) SummaryByUser(ctx context.Context, userID string) (*model.AffiliateSummary, error) {
	const q = `
SELECT COALESCE(ref.total, 0),
       COALESCE(ref.converted, 0),
       COALESCE(rw.commission, 0),
       COALESCE(rw.points, 0)
  FROM (SELECT COUNT(*) AS total,
               COUNT(*) FILTER (WHERE status='converted') AS converted
          FROM referrals WHERE referrer_id=$1) ref
  CROSS JOIN
       (SELECT COALESCE(SUM(commission_fcfa),0) AS commission,
               COALESCE(SUM(credit_points),0) AS points
          FROM affiliate_rewards WHERE referrer_id=$1) rw;`
	row, err := pickRow(ctx, r.pool, nil, q, userID)
	if err != nil {
		return nil, err
	}
	s := &model.AffiliateSummary{UserID: userID}
	if err := row.Scan(&s.ReferralCount, &s.ConvertedCount, &s.CommissionFcfa, &s.CreditPoints); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}

func (r *referralRepo) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	// LEFT JOIN so a deleted referrer still ranks; the name falls back
	// to "Anonymous" below.
	const q = `
SELECT rw.referrer_id,
       u.full_name,
       COUNT(DISTINCT rw.referred_user_id),
       COALESCE(SUM(rw.commission_fcfa),0) AS commission
  FROM affiliate_rewards rw
  LEFT JOIN users u ON u.id = rw.referrer_id
 GROUP BY rw.referrer_id, u.full_name
 ORDER BY commission DESC
 LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, nil, q, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.LeaderboardEntry
	for rows.Next() {
		e := &model.LeaderboardEntry{}
		var name sql.NullString
		if err := rows.Scan(&e.UserID, &name, &e.ReferralCount, &e.CommissionFcfa); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				break
			}
			return nil, domain.ErrReadDatabaseRow
		}
		if name.Valid && name.String != "" {
			e.DisplayName = name.String
		} else {
			e.DisplayName = "Anonymous"
		}
		out = append(out, e)
	}
	return out, nil
}
