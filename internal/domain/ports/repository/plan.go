package repository

import (
	"context"

	"clientcard-platform/internal/domain/model"
)

type PlanRepository interface {
	Save(ctx context.Context, tx Tx, p *model.MembershipPlan) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.MembershipPlan, error)
	FindByTier(ctx context.Context, tx Tx, tier model.MembershipTier) (*model.MembershipPlan, error)
	ListActive(ctx context.Context, tx Tx) ([]*model.MembershipPlan, error)
}
