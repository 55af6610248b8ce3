package model

import (
	"time"

	"clientcard-platform/internal/domain"
)

// User is a client-card holder. MembershipTier mirrors the plan of the
// user's currently active subscription and is kept in sync (best effort,
// reconciled by the tier-sync worker).
type User struct {
	ID             string // UUID
	FullName       string
	Email          string
	Phone          string
	MembershipTier MembershipTier
	ReferrerID     *string // UUID of the user who referred this one, if any
	RegisteredAt   time.Time
	LastActiveAt   time.Time
}

func NewUser(id, fullName, email, phone string) (*User, error) {
	if id == "" || phone == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:             id,
		FullName:       fullName,
		Email:          email,
		Phone:          phone,
		MembershipTier: TierNone,
		RegisteredAt:   now,
		LastActiveAt:   now,
	}, nil
}
