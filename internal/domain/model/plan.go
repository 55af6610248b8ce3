package model

import (
	"time"

	"clientcard-platform/internal/domain"
)

// MembershipTier is the plan level controlling feature access.
type MembershipTier string

const (
	TierNone      MembershipTier = "none"
	TierEssential MembershipTier = "essential"
	TierPremium   MembershipTier = "premium"
	TierElite     MembershipTier = "elite"
)

// ParseTier maps a free-form plan string (as carried in payment attempt
// metadata) onto a known tier. Unknown values come back as TierNone so a
// bad payload never grants access.
func ParseTier(s string) MembershipTier {
	switch MembershipTier(s) {
	case TierEssential, TierPremium, TierElite:
		return MembershipTier(s)
	default:
		return TierNone
	}
}

// MembershipPlan is a purchasable membership term with a fixed duration
// and price in FCFA.
type MembershipPlan struct {
	ID           string
	Tier         MembershipTier
	Name         string
	DurationDays int
	PriceFcfa    int64
	CreatedAt    time.Time
}

func (p *MembershipPlan) IsZero() bool { return p == nil || p.ID == "" }

// NewMembershipPlan validates and constructs a plan.
func NewMembershipPlan(id string, tier MembershipTier, name string, durationDays int, priceFcfa int64) (*MembershipPlan, error) {
	if id == "" || name == "" || tier == TierNone || durationDays <= 0 || priceFcfa <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &MembershipPlan{
		ID:           id,
		Tier:         tier,
		Name:         name,
		DurationDays: durationDays,
		PriceFcfa:    priceFcfa,
		CreatedAt:    time.Now(),
	}, nil
}
