package model

import (
	"strings"
	"time"

	"clientcard-platform/internal/domain"
)

type AttemptStatus string

const (
	AttemptStatusPending   AttemptStatus = "pending"
	AttemptStatusCompleted AttemptStatus = "completed"
	AttemptStatusFailed    AttemptStatus = "failed"
)

// AttemptKind classifies what a payment attempt pays for, derived from
// the reference naming convention used end-to-end with the gateway.
type AttemptKind string

const (
	AttemptKindTokens       AttemptKind = "tokens"
	AttemptKindSubscription AttemptKind = "subscription"
	AttemptKindUnknown      AttemptKind = "unknown"
)

const (
	RefPrefixTokens       = "TOKENS_"
	RefPrefixSubscription = "SUB_"
	RefPrefixElevation    = "ELV" // legacy tier-upgrade references
)

// ClassifyReference maps a gateway reference onto an attempt kind by its
// prefix. TOKENS_ references are token purchases; SUB_ and ELV
// references are subscription payments.
func ClassifyReference(ref string) AttemptKind {
	switch {
	case strings.HasPrefix(ref, RefPrefixTokens):
		return AttemptKindTokens
	case strings.HasPrefix(ref, RefPrefixSubscription), strings.HasPrefix(ref, RefPrefixElevation):
		return AttemptKindSubscription
	default:
		return AttemptKindUnknown
	}
}

// PaymentAttempt records one user-initiated request to pay through the
// mobile-money gateway. The reference is the idempotency key: the row is
// resolved exactly once when the webhook lands, never deleted.
type PaymentAttempt struct {
	ID             string // UUID
	Reference      string // gateway reference, ULID-suffixed, prefixed per kind
	UserID         string // UUID
	SubscriptionID *string
	TokenPlan      ServicePlan // set for token purchases
	AmountFcfa     int64
	Provider       string
	Status         AttemptStatus
	Meta           map[string]interface{} // plan name, phone, provider extras (JSONB)
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time // set when completed or failed
}

func NewPaymentAttempt(id, reference, userID string, amountFcfa int64, provider string) (*PaymentAttempt, error) {
	if id == "" || reference == "" || userID == "" || amountFcfa <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &PaymentAttempt{
		ID:         id,
		Reference:  reference,
		UserID:     userID,
		AmountFcfa: amountFcfa,
		Provider:   provider,
		Status:     AttemptStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Kind classifies the attempt from its reference.
func (p *PaymentAttempt) Kind() AttemptKind { return ClassifyReference(p.Reference) }

// MetaString pulls a string field out of attempt metadata.
func (p *PaymentAttempt) MetaString(key string) string {
	if p.Meta == nil {
		return ""
	}
	if v, ok := p.Meta[key].(string); ok {
		return v
	}
	return ""
}
