package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clientcard-platform/internal/domain"
	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/infra/logging"
	"clientcard-platform/internal/infra/metrics"
	"clientcard-platform/internal/infra/payment"
	"clientcard-platform/internal/usecase"
)

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiResponse{Success: false, Message: message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrBelowMinimum),
		errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ===== Webhook =====

// handleWebhook acknowledges the provider no matter what happens after
// the body parses. A provider retry storm is worse than one silently
// dropped delivery; drops are logged and counted instead.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	if s.webhookSecret != "" {
		sig := r.Header.Get("X-Signature")
		if !payment.VerifyWebhookSignature(s.webhookSecret, body, sig) {
			s.log.Warn().Msg("webhook signature mismatch")
			respondError(w, http.StatusUnauthorized, "bad signature")
			return
		}
	}

	ev, err := payment.ParsePayload(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	outcome := usecase.OutcomeUnknown
	if ev.Succeeded() {
		outcome = usecase.OutcomeSuccess
	} else if ev.Failed() {
		outcome = usecase.OutcomeFailure
	}

	ctx := logging.WithReference(r.Context(), ev.Reference)
	if err := s.webhookUC.Process(ctx, usecase.WebhookEvent{
		Reference:  ev.Reference,
		Outcome:    outcome,
		AmountFcfa: ev.AmountFcfa,
	}); err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("webhook processing failed; acknowledged anyway")
		metrics.IncWebhookError()
	}

	respondJSON(w, http.StatusOK, nil)
}

// ===== Subscriptions =====

type checkoutRequest struct {
	UserID      string `json:"userId"`
	Plan        string `json:"plan"`
	CallbackURL string `json:"callbackUrl"`
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tier := model.ParseTier(req.Plan)
	if req.UserID == "" || tier == model.TierNone {
		respondError(w, http.StatusBadRequest, "userId and a valid plan are required")
		return
	}

	sub, payURL, err := s.subUC.Checkout(r.Context(), req.UserID, tier, req.CallbackURL)
	if err != nil {
		respondError(w, statusFor(err), "checkout failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": sub,
		"paymentUrl":   payURL,
	})
}

type activateRequest struct {
	SubscriptionID string `json:"subscriptionId"`
	UserID         string `json:"userId"`
	Plan           string `json:"plan"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubscriptionID == "" || req.UserID == "" || req.Plan == "" {
		respondError(w, http.StatusBadRequest, "subscriptionId, userId and plan are required")
		return
	}
	tier := model.ParseTier(req.Plan)
	if tier == model.TierNone {
		respondError(w, http.StatusBadRequest, "unknown plan")
		return
	}

	sub, err := s.subUC.Activate(r.Context(), req.SubscriptionID, req.UserID, tier)
	if err != nil {
		respondError(w, statusFor(err), "activation failed")
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.subUC.Plans(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "failed to list plans")
		return
	}
	respondJSON(w, http.StatusOK, plans)
}

// ===== Token ledger (secours) =====

type tokenPurchaseRequest struct {
	UserID      string `json:"userId"`
	Plan        string `json:"plan"`
	AmountFcfa  int64  `json:"amount"`
	CallbackURL string `json:"callbackUrl"`
}

func (s *Server) handleTokenPurchase(w http.ResponseWriter, r *http.Request) {
	var req tokenPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	attempt, payURL, err := s.tokenUC.Purchase(r.Context(), req.UserID, model.ServicePlan(req.Plan), req.AmountFcfa, req.CallbackURL)
	if err != nil {
		respondError(w, statusFor(err), "purchase failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reference":  attempt.Reference,
		"paymentUrl": payURL,
	})
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	plan := model.ServicePlan(r.URL.Query().Get("plan"))

	subs, err := s.tokenUC.Balances(r.Context(), userID, plan)
	if err != nil {
		respondError(w, statusFor(err), "failed to read balances")
		return
	}
	respondJSON(w, http.StatusOK, subs)
}

func (s *Server) handleTokenHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txns, err := s.tokenUC.History(r.Context(), userID, limit)
	if err != nil {
		respondError(w, statusFor(err), "failed to read transactions")
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

type withdrawalRequest struct {
	UserID string `json:"userId"`
	Plan   string `json:"plan"`
	Tokens int64  `json:"tokens"`
}

func (s *Server) handleTokenWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	txn, err := s.tokenUC.Withdraw(r.Context(), req.UserID, model.ServicePlan(req.Plan), req.Tokens)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientBalance):
			respondError(w, http.StatusBadRequest, "insufficient balance")
		case errors.Is(err, domain.ErrBelowMinimum):
			respondError(w, http.StatusBadRequest, "amount below plan minimum")
		default:
			respondError(w, statusFor(err), "withdrawal failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

// ===== Users =====

type registerRequest struct {
	FullName   string  `json:"fullName"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	ReferrerID *string `json:"referrerId,omitempty"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.userUC.Register(r.Context(), req.FullName, req.Email, req.Phone, req.ReferrerID)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			respondError(w, http.StatusConflict, "phone already registered")
			return
		}
		respondError(w, statusFor(err), "registration failed")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	user, err := s.userUC.Profile(r.Context(), userID)
	if err != nil {
		respondError(w, statusFor(err), "failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ===== Affiliate =====

func (s *Server) handleAffiliateSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	summary, err := s.affiliateUC.Summary(r.Context(), userID)
	if err != nil {
		respondError(w, statusFor(err), "failed to build summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.affiliateUC.Leaderboard(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "failed to build leaderboard")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// ===== Admin =====

type adminLoginRequest struct {
	APIKey string `json:"apiKey"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.apiKey == "" || req.APIKey != s.apiKey {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to mint session")
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	users, byTier, totalTokens, err := s.statsUC.Totals(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get totals")
		return
	}
	week, month, year, err := s.statsUC.Revenue(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get revenue")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		TotalUsers       int            `json:"total_users"`
		ActiveSubsByTier map[string]int `json:"active_subs_by_tier"`
		TotalTokens      int64          `json:"total_tokens"`
		Revenue          struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue_fcfa"`
	}{
		TotalUsers:       users,
		ActiveSubsByTier: byTier,
		TotalTokens:      totalTokens,
		Revenue: struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		}{Week: week, Month: month, Year: year},
	})
}
