//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- transaction manager ----

type MockTxManager struct{}

func NewMockTxManager() *MockTxManager { return &MockTxManager{} }

func (m *MockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// ---- payment attempts ----

type MockAttemptRepo struct {
	mu       sync.Mutex
	store    map[string]*model.PaymentAttempt // by ID
	SaveFunc func(ctx context.Context, tx repository.Tx, p *model.PaymentAttempt) error
}

func NewMockAttemptRepo() *MockAttemptRepo {
	return &MockAttemptRepo{store: make(map[string]*model.PaymentAttempt)}
}

func (m *MockAttemptRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentAttempt) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, tx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockAttemptRepo) FindLatestByReference(ctx context.Context, tx repository.Tx, reference string) (*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *model.PaymentAttempt
	for _, p := range m.store {
		if p.Reference != reference {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *MockAttemptRepo) ResolveIfPending(ctx context.Context, tx repository.Tx, id string, status model.AttemptStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok || p.Status != model.AttemptStatusPending {
		return false, nil
	}
	now := time.Now()
	p.Status = status
	p.ResolvedAt = &now
	return true, nil
}

func (m *MockAttemptRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.PaymentAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PaymentAttempt
	for _, p := range m.store {
		if p.Status == model.AttemptStatusPending && p.CreatedAt.Before(olderThan) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockAttemptRepo) SumCompletedByPeriod(ctx context.Context, period string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, p := range m.store {
		if p.Status == model.AttemptStatusCompleted {
			sum += p.AmountFcfa
		}
	}
	return sum, nil
}

// Get returns the stored attempt for assertions.
func (m *MockAttemptRepo) Get(id string) *model.PaymentAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.store[id]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// ---- token accounts ----

type MockTokenRepo struct {
	mu           sync.Mutex
	subs         map[string]*model.TokenSubscription // by ID
	transactions []*model.TokenTransaction
}

func NewMockTokenRepo() *MockTokenRepo {
	return &MockTokenRepo{subs: make(map[string]*model.TokenSubscription)}
}

func (m *MockTokenRepo) SaveSubscription(ctx context.Context, tx repository.Tx, s *model.TokenSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs[s.ID] = &cp
	return nil
}

func (m *MockTokenRepo) FindSubscription(ctx context.Context, tx repository.Tx, userID string, plan model.ServicePlan) (*model.TokenSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.Plan == plan {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockTokenRepo) ListSubscriptionsByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.TokenSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.TokenSubscription
	for _, s := range m.subs {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTokenRepo) AppendTransaction(ctx context.Context, tx repository.Tx, t *model.TokenTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.transactions = append(m.transactions, &cp)
	return nil
}

func (m *MockTokenRepo) ListTransactionsByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.TokenTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subIDs := make(map[string]bool)
	for _, s := range m.subs {
		if s.UserID == userID {
			subIDs[s.ID] = true
		}
	}
	var out []*model.TokenTransaction
	for _, t := range m.transactions {
		if subIDs[t.SubscriptionID] {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockTokenRepo) AdjustBalance(ctx context.Context, tx repository.Tx, subscriptionID string, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[subscriptionID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.TokenBalance+delta < 0 {
		return domain.ErrInsufficientBalance
	}
	s.TokenBalance += delta
	return nil
}

func (m *MockTokenRepo) TotalTokens(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, s := range m.subs {
		sum += s.TokenBalance
	}
	return sum, nil
}

// Transactions returns a copy of the ledger for assertions.
func (m *MockTokenRepo) Transactions() []*model.TokenTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.TokenTransaction, len(m.transactions))
	copy(out, m.transactions)
	return out
}

// BalanceOf reads a balance directly for assertions.
func (m *MockTokenRepo) BalanceOf(userID string, plan model.ServicePlan) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.UserID == userID && s.Plan == plan {
			return s.TokenBalance
		}
	}
	return 0
}

// ---- subscriptions ----

type MockSubscriptionRepo struct {
	mu    sync.Mutex
	store map[string]*model.Subscription
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.store {
		if s.UserID == userID && s.Status == model.SubscriptionStatusActive {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) ActivateIfPending(ctx context.Context, tx repository.Tx, id string, durationDays int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || s.Status != model.SubscriptionStatusPending {
		return false, nil
	}
	s.Activate(durationDays)
	return true, nil
}

func (m *MockSubscriptionRepo) ExpireOverdue(ctx context.Context, tx repository.Tx) (int, error) {
	return 0, nil
}

func (m *MockSubscriptionRepo) CountActiveByTier(ctx context.Context) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive {
			out[string(s.Tier)]++
		}
	}
	return out, nil
}

// Get returns the stored subscription for assertions.
func (m *MockSubscriptionRepo) Get(id string) *model.Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.store[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

// ---- plans ----

type MockPlanRepo struct {
	mu    sync.Mutex
	store map[string]*model.MembershipPlan
}

func NewMockPlanRepo() *MockPlanRepo {
	return &MockPlanRepo{store: make(map[string]*model.MembershipPlan)}
}

func (m *MockPlanRepo) Save(ctx context.Context, tx repository.Tx, p *model.MembershipPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPlanRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.MembershipPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPlanRepo) FindByTier(ctx context.Context, tx repository.Tx, tier model.MembershipTier) (*model.MembershipPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.Tier == tier {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockPlanRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.MembershipPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.MembershipPlan
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// ---- users ----

type MockUserRepo struct {
	mu            sync.Mutex
	store         map[string]*model.User
	UpdateTierErr error // simulate best-effort tier failures
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*model.User)}
}

func (m *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserRepo) UpdateTier(ctx context.Context, tx repository.Tx, userID string, tier model.MembershipTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateTierErr != nil {
		return m.UpdateTierErr
	}
	u, ok := m.store[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.MembershipTier = tier
	return nil
}

func (m *MockUserRepo) CountUsers(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store), nil
}

func (m *MockUserRepo) SyncTiersFromSubscriptions(ctx context.Context) (int, error) {
	return 0, nil
}

// Get returns the stored user for assertions.
func (m *MockUserRepo) Get(id string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.store[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

// ---- referrals ----

type MockReferralRepo struct {
	mu        sync.Mutex
	referrals map[string]*model.Referral // by referred user ID
	rewards   []*model.AffiliateReward
}

func NewMockReferralRepo() *MockReferralRepo {
	return &MockReferralRepo{referrals: make(map[string]*model.Referral)}
}

func (m *MockReferralRepo) SaveReferral(ctx context.Context, tx repository.Tx, r *model.Referral) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.referrals[r.ReferredUserID] = &cp
	return nil
}

func (m *MockReferralRepo) SaveReward(ctx context.Context, tx repository.Tx, rw *model.AffiliateReward) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rw
	m.rewards = append(m.rewards, &cp)
	return nil
}

func (m *MockReferralRepo) MarkConverted(ctx context.Context, tx repository.Tx, referredUserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.referrals[referredUserID]; ok && r.Status == model.ReferralStatusPending {
		r.Status = model.ReferralStatusConverted
	}
	return nil
}

func (m *MockReferralRepo) SummaryByUser(ctx context.Context, userID string) (*model.AffiliateSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.AffiliateSummary{UserID: userID}
	for _, r := range m.referrals {
		if r.ReferrerID == userID {
			s.ReferralCount++
			if r.Status == model.ReferralStatusConverted {
				s.ConvertedCount++
			}
		}
	}
	for _, rw := range m.rewards {
		if rw.ReferrerID == userID {
			s.CommissionFcfa += rw.CommissionFcfa
			s.CreditPoints += rw.CreditPoints
		}
	}
	return s, nil
}

func (m *MockReferralRepo) Leaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	return nil, nil
}

// Rewards returns granted rewards for assertions.
func (m *MockReferralRepo) Rewards() []*model.AffiliateReward {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.AffiliateReward, len(m.rewards))
	copy(out, m.rewards)
	return out
}

// ---- gateway, locker, tier sync ----

type MockGateway struct {
	RequestErr error
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) RequestPayment(ctx context.Context, amountFcfa int64, reference, description, callbackURL string) (string, error) {
	if g.RequestErr != nil {
		return "", g.RequestErr
	}
	return "https://pay.invalid/" + reference, nil
}

type MockLocker struct {
	Held map[string]bool // keys that refuse to lock
	Err  error           // infrastructure failure returned by TryLock
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if l.Err != nil {
		return "", l.Err
	}
	if l.Held[key] {
		return "", domain.ErrLockNotAcquired
	}
	return "token", nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error { return nil }

type MockTierSync struct {
	mu       sync.Mutex
	enqueued []string
}

func (m *MockTierSync) Enqueue(userID string, tier model.MembershipTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, userID)
}

func (m *MockTierSync) Enqueued() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.enqueued))
	copy(out, m.enqueued)
	return out
}
