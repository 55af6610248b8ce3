//go:build !integration

package model

import (
	"testing"
	"time"
)

func TestClassifyReference(t *testing.T) {
	tests := []struct {
		ref  string
		want AttemptKind
	}{
		{"TOKENS_01HXYZ", AttemptKindTokens},
		{"SUB_01HXYZ", AttemptKindSubscription},
		{"ELV1699999999", AttemptKindSubscription},
		{"WD_01HXYZ", AttemptKindUnknown},
		{"tokens_lowercase", AttemptKindUnknown},
		{"", AttemptKindUnknown},
	}
	for _, tc := range tests {
		if got := ClassifyReference(tc.ref); got != tc.want {
			t.Errorf("ClassifyReference(%q) = %s, want %s", tc.ref, got, tc.want)
		}
	}
}

func TestTokensForAmount(t *testing.T) {
	tests := []struct {
		plan   ServicePlan
		amount int64
		want   int64
	}{
		{PlanMotors, 250, 1},
		{PlanMotors, 5000, 20},
		{PlanMotors, 5499, 21}, // rounds down
		{PlanCatPalliatif, 1050, 10},
		{PlanAviFarine, 999, 0},
		{PlanAviculture, 10000, 10},
		{ServicePlan("unknown"), 5000, 0},
		{PlanMotors, 0, 0},
		{PlanMotors, -250, 0},
	}
	for _, tc := range tests {
		if got := TokensForAmount(tc.plan, tc.amount); got != tc.want {
			t.Errorf("TokensForAmount(%s, %d) = %d, want %d", tc.plan, tc.amount, got, tc.want)
		}
	}
}

func TestWithdrawalMinimum(t *testing.T) {
	if got := WithdrawalMinimum(PlanMotors); got != 10 {
		t.Errorf("motors minimum = %d, want 10", got)
	}
	if got := WithdrawalMinimum(PlanAviFarine); got != 5 {
		t.Errorf("avi_farine minimum = %d, want 5", got)
	}
	if got := WithdrawalMinimum(PlanCatEcole); got != 0 {
		t.Errorf("cat_ecole minimum = %d, want 0 (no floor)", got)
	}
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want MembershipTier
	}{
		{"essential", TierEssential},
		{"premium", TierPremium},
		{"elite", TierElite},
		{"Premium", TierNone}, // case sensitive on purpose
		{"gold", TierNone},
		{"", TierNone},
	}
	for _, tc := range tests {
		if got := ParseTier(tc.in); got != tc.want {
			t.Errorf("ParseTier(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestSubscriptionActivateIsIdempotent(t *testing.T) {
	plan, err := NewMembershipPlan("plan-1", TierPremium, "Carte Premium", 30, 10000)
	if err != nil {
		t.Fatalf("NewMembershipPlan: %v", err)
	}
	sub, err := NewSubscription("sub-1", "user-1", plan)
	if err != nil {
		t.Fatalf("NewSubscription: %v", err)
	}
	if sub.Status != SubscriptionStatusPending {
		t.Fatalf("new subscription status = %s, want pending", sub.Status)
	}

	sub.Activate(30)
	if sub.Status != SubscriptionStatusActive || sub.ExpiresAt == nil {
		t.Fatalf("not activated: %+v", sub)
	}
	first := *sub.ExpiresAt

	time.Sleep(time.Millisecond)
	sub.Activate(30)
	if !sub.ExpiresAt.Equal(first) {
		t.Errorf("second Activate moved expiry: %v -> %v", first, *sub.ExpiresAt)
	}
}

func TestPaymentAttemptMetaString(t *testing.T) {
	p := &PaymentAttempt{}
	if got := p.MetaString("plan"); got != "" {
		t.Errorf("nil meta = %q, want empty", got)
	}
	p.Meta = map[string]interface{}{"plan": "premium", "count": 3}
	if got := p.MetaString("plan"); got != "premium" {
		t.Errorf("plan = %q, want premium", got)
	}
	if got := p.MetaString("count"); got != "" {
		t.Errorf("non-string meta = %q, want empty", got)
	}
}
