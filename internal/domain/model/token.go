package model

import (
	"time"

	"clientcard-platform/internal/domain"
)

// ServicePlan is an emergency-assistance service category a token
// account can be opened for.
type ServicePlan string

const (
	PlanMotors       ServicePlan = "motors"
	PlanCatPalliatif ServicePlan = "cat_palliatif"
	PlanCatAgricole  ServicePlan = "cat_agricole"
	PlanCatEcole     ServicePlan = "cat_ecole"
	PlanCatApprenant ServicePlan = "cat_apprenant"
	PlanAviFarine    ServicePlan = "avi_farine"
	PlanAviAliment   ServicePlan = "avi_aliment"
	PlanAviculture   ServicePlan = "aviculture"
)

// tokenUnitPrices is the fixed FCFA price of one token per service plan.
var tokenUnitPrices = map[ServicePlan]int64{
	PlanMotors:       250,
	PlanCatPalliatif: 100,
	PlanCatAgricole:  100,
	PlanCatEcole:     100,
	PlanCatApprenant: 100,
	PlanAviFarine:    1000,
	PlanAviAliment:   1000,
	PlanAviculture:   1000,
}

// withdrawal floors, in tokens, per service plan
var withdrawalMinimums = map[ServicePlan]int64{
	PlanMotors:     10,
	PlanAviFarine:  5,
	PlanAviAliment: 5,
	PlanAviculture: 5,
}

// UnitPriceFcfa returns the token unit price for a plan, zero when the
// plan is unknown.
func UnitPriceFcfa(plan ServicePlan) int64 { return tokenUnitPrices[plan] }

// TokensForAmount computes floor(amount/unitPrice) for a plan. An
// unknown plan yields zero tokens.
func TokensForAmount(plan ServicePlan, amountFcfa int64) int64 {
	unit := UnitPriceFcfa(plan)
	if unit <= 0 || amountFcfa <= 0 {
		return 0
	}
	return amountFcfa / unit
}

// WithdrawalMinimum returns the smallest withdrawable token count for a
// plan (zero when the plan has no floor).
func WithdrawalMinimum(plan ServicePlan) int64 { return withdrawalMinimums[plan] }

// TokenSubscription is a per-user, per-service emergency-token account
// with a denormalized running balance. The balance is only ever mutated
// in the same transaction that appends the ledger row.
type TokenSubscription struct {
	ID           string // UUID
	UserID       string // UUID
	Plan         ServicePlan
	TokenBalance int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewTokenSubscription(id, userID string, plan ServicePlan) (*TokenSubscription, error) {
	if id == "" || userID == "" || plan == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &TokenSubscription{
		ID:        id,
		UserID:    userID,
		Plan:      plan,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// TokenTransaction is one append-only ledger entry. Purchases carry a
// positive TokenAmount, withdrawals a negative one.
type TokenTransaction struct {
	ID             string // UUID
	SubscriptionID string // UUID -> TokenSubscription
	Reference      string // payment reference for purchases, generated for withdrawals
	TokenAmount    int64
	ValueFcfa      int64
	PaymentMethod  string
	Status         TransactionStatus
	CreatedAt      time.Time
}
