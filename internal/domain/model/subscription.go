package model

import (
	"time"

	"clientcard-platform/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription is a user's membership term. Created pending at checkout
// and flipped to active by the activation endpoint or the webhook path.
type Subscription struct {
	ID        string // UUID
	UserID    string // UUID
	PlanID    string // UUID
	Tier      MembershipTier
	Status    SubscriptionStatus
	CreatedAt time.Time
	StartAt   *time.Time // nil until activated
	ExpiresAt *time.Time // nil until activated
}

// NewSubscription creates a pending subscription for a user and plan.
func NewSubscription(id, userID string, plan *MembershipPlan) (*Subscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:        id,
		UserID:    userID,
		PlanID:    plan.ID,
		Tier:      plan.Tier,
		Status:    SubscriptionStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// Activate flips the subscription to active and stamps the term window.
// Activating twice is a no-op so replayed confirmations do not extend
// the term.
func (s *Subscription) Activate(durationDays int) {
	if s.Status == SubscriptionStatusActive {
		return
	}
	now := time.Now()
	expire := now.Add(time.Duration(durationDays) * 24 * time.Hour)
	s.Status = SubscriptionStatusActive
	s.StartAt = &now
	s.ExpiresAt = &expire
}
