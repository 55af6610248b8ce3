package model

import "time"

type ReferralStatus string

const (
	ReferralStatusPending   ReferralStatus = "pending"   // referred user registered, not yet paying
	ReferralStatusConverted ReferralStatus = "converted" // referred user bought a subscription
)

// Referral tracks who referred whom. Created at registration time and
// read for aggregation only.
type Referral struct {
	ID             string // UUID
	ReferrerID     string // UUID
	ReferredUserID string // UUID
	Status         ReferralStatus
	CreatedAt      time.Time
}

type RewardStatus string

const (
	RewardStatusPending RewardStatus = "pending"
	RewardStatusPaid    RewardStatus = "paid"
)

// AffiliateReward is a commission or credit-point grant issued to a
// referrer when a referred user converts.
type AffiliateReward struct {
	ID             string // UUID
	ReferrerID     string // UUID
	ReferredUserID string // UUID
	CommissionFcfa int64
	CreditPoints   int64
	Status         RewardStatus
	CreatedAt      time.Time
}

// AffiliateSummary is the per-user aggregation served on the affiliate
// dashboard.
type AffiliateSummary struct {
	UserID         string
	ReferralCount  int
	ConvertedCount int
	CommissionFcfa int64
	CreditPoints   int64
}

// LeaderboardEntry is one row of the top-referrers board. DisplayName
// falls back to "Anonymous" when the user record is gone.
type LeaderboardEntry struct {
	UserID         string
	DisplayName    string
	ReferralCount  int
	CommissionFcfa int64
}
