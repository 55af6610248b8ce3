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

var _ repository.TokenRepository = (*tokenRepo)(nil)

type tokenRepo struct{ pool *pgxpool.Pool }

func NewTokenRepo(pool *pgxpool.Pool) *tokenRepo {
	return &tokenRepo{pool: pool}
}

func (r *tokenRepo) SaveSubscription(ctx context.Context, tx repository.Tx, s *model.TokenSubscription) error {
	const q = `
INSERT INTO secours_subscriptions (id, user_id, plan, token_balance, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (user_id, plan) DO UPDATE SET updated_at=$6;`
	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.Plan, s.TokenBalance, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *tokenRepo) FindSubscription(ctx context.Context, tx repository.Tx, userID string, plan model.ServicePlan) (*model.TokenSubscription, error) {
	q := `SELECT id, user_id, plan, token_balance, created_at, updated_at FROM secours_subscriptions WHERE user_id=$1 AND plan=$2`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, userID, plan)
	if err != nil {
		return nil, err
	}
	return scanTokenSub(row)
}

func (r *tokenRepo) ListSubscriptionsByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.TokenSubscription, error) {
	const q = `SELECT id, user_id, plan, token_balance, created_at, updated_at FROM secours_subscriptions WHERE user_id=$1 ORDER BY plan;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.TokenSubscription
	for rows.Next() {
		s, err := scanTokenSub(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *tokenRepo) AppendTransaction(ctx context.Context, tx repository.Tx, t *model.TokenTransaction) error {
	const q = `
INSERT INTO secours_transactions (id, subscription_id, reference, token_amount, value_fcfa, payment_method, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.SubscriptionID, t.Reference, t.TokenAmount, t.ValueFcfa, t.PaymentMethod, t.Status, t.CreatedAt)
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

func (r *tokenRepo) ListTransactionsByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.TokenTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT t.id, t.subscription_id, t.reference, t.token_amount, t.value_fcfa, t.payment_method, t.status, t.created_at
  FROM secours_transactions t
  JOIN secours_subscriptions s ON s.id = t.subscription_id
 WHERE s.user_id=$1
 ORDER BY t.created_at DESC
 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.TokenTransaction
	for rows.Next() {
		t := new(model.TokenTransaction)
		if err := rows.Scan(&t.ID, &t.SubscriptionID, &t.Reference, &t.TokenAmount, &t.ValueFcfa, &t.PaymentMethod, &t.Status, &t.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *tokenRepo) AdjustBalance(ctx context.Context, tx repository.Tx, subscriptionID string, delta int64) error {
	// Negative deltas are guarded so a racing withdrawal cannot push the
	// balance below zero.
	const q = `
UPDATE secours_subscriptions
   SET token_balance = token_balance + $2, updated_at=NOW()
 WHERE id=$1 AND token_balance + $2 >= 0;`
	cmd, err := execSQL(ctx, r.pool, tx, q, subscriptionID, delta)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

func (r *tokenRepo) TotalTokens(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(SUM(token_balance),0) FROM secours_subscriptions;`
	row, err := pickRow(ctx, r.pool, nil, q)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func scanTokenSub(row pgx.Row) (*model.TokenSubscription, error) {
	s := &model.TokenSubscription{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Plan, &s.TokenBalance, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return s, nil
}
