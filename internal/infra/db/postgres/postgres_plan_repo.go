package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

var _ repository.PlanRepository = (*planRepo)(nil)

type planRepo struct{ pool *pgxpool.Pool }

func NewPlanRepo(pool *pgxpool.Pool) *planRepo {
	return &planRepo{pool: pool}
}

const planCols = `id, tier, name, duration_days, price_fcfa, created_at`

func (r *planRepo) Save(ctx context.Context, tx repository.Tx, p *model.MembershipPlan) error {
	const q = `
INSERT INTO membership_plans (id, tier, name, duration_days, price_fcfa, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  tier=$2, name=$3, duration_days=$4, price_fcfa=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Tier, p.Name, p.DurationDays, p.PriceFcfa, p.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *planRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPlan, error) {
	const q = `SELECT ` + planCols + ` FROM membership_plans WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) FindByTier(ctx context.Context, tx repository.Tx, tier model.MembershipTier) (*model.MembershipPlan, error) {
	const q = `SELECT ` + planCols + ` FROM membership_plans WHERE tier=$1 ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, tier)
	if err != nil {
		return nil, err
	}
	return scanPlan(row)
}

func (r *planRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.MembershipPlan, error) {
	const q = `SELECT ` + planCols + ` FROM membership_plans ORDER BY price_fcfa ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.MembershipPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func scanPlan(row pgx.Row) (*model.MembershipPlan, error) {
	p := &model.MembershipPlan{}
	if err := row.Scan(&p.ID, &p.Tier, &p.Name, &p.DurationDays, &p.PriceFcfa, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
