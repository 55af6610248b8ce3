package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

var _ repository.PaymentAttemptRepository = (*paymentAttemptRepo)(nil)

type paymentAttemptRepo struct{ pool *pgxpool.Pool }

func NewPaymentAttemptRepo(pool *pgxpool.Pool) *paymentAttemptRepo {
	return &paymentAttemptRepo{pool: pool}
}

const attemptCols = `id, reference, user_id, subscription_id, token_plan, amount_fcfa, provider, status, meta, created_at, updated_at, resolved_at`

func (r *paymentAttemptRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentAttempt) error {
	const q = `
INSERT INTO payment_attempts (
  id, reference, user_id, subscription_id, token_plan, amount_fcfa, provider, status, meta, created_at, updated_at, resolved_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  subscription_id=$4, token_plan=$5, amount_fcfa=$6, provider=$7, status=$8, meta=$9, updated_at=$11, resolved_at=$12;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Reference, p.UserID, p.SubscriptionID, p.TokenPlan, p.AmountFcfa, p.Provider, p.Status, p.Meta, p.CreatedAt, p.UpdatedAt, p.ResolvedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentAttemptRepo) FindLatestByReference(ctx context.Context, tx repository.Tx, reference string) (*model.PaymentAttempt, error) {
	q := `SELECT ` + attemptCols + ` FROM payment_attempts WHERE reference=$1 ORDER BY created_at DESC LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, reference)
	if err != nil {
		return nil, err
	}
	return scanAttempt(row)
}

func (r *paymentAttemptRepo) ResolveIfPending(ctx context.Context, tx repository.Tx, id string, status model.AttemptStatus) (bool, error) {
	const q = `
UPDATE payment_attempts
   SET status=$2, resolved_at=NOW(), updated_at=NOW()
 WHERE id=$1 AND status='pending';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentAttemptRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentAttempt, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + attemptCols + ` FROM payment_attempts WHERE status='pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, olderThan, limit)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PaymentAttempt
	for rows.Next() {
		p, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentAttemptRepo) SumCompletedByPeriod(ctx context.Context, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount_fcfa),0) FROM payment_attempts WHERE status='completed' AND resolved_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, nil, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanAttempt(row pgx.Row) (*model.PaymentAttempt, error) {
	p := &model.PaymentAttempt{}
	err := row.Scan(&p.ID, &p.Reference, &p.UserID, &p.SubscriptionID, &p.TokenPlan, &p.AmountFcfa, &p.Provider, &p.Status, &p.Meta, &p.CreatedAt, &p.UpdatedAt, &p.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}
