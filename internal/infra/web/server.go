package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"clientcard-platform/internal/usecase"
)

type Server struct {
	webhookUC     usecase.WebhookUseCase
	subUC         usecase.SubscriptionUseCase
	tokenUC       usecase.TokenUseCase
	affiliateUC   usecase.AffiliateUseCase
	statsUC       usecase.StatsUseCase
	userUC        usecase.UserUseCase
	auth          *AuthManager
	apiKey        string
	webhookSecret string
	log           *zerolog.Logger
}

func NewServer(
	webhookUC usecase.WebhookUseCase,
	subUC usecase.SubscriptionUseCase,
	tokenUC usecase.TokenUseCase,
	affiliateUC usecase.AffiliateUseCase,
	statsUC usecase.StatsUseCase,
	userUC usecase.UserUseCase,
	auth *AuthManager,
	apiKey string,
	webhookSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		webhookUC:     webhookUC,
		subUC:         subUC,
		tokenUC:       tokenUC,
		affiliateUC:   affiliateUC,
		statsUC:       statsUC,
		userUC:        userUC,
		auth:          auth,
		apiKey:        apiKey,
		webhookSecret: webhookSecret,
		log:           logger,
	}
}

// Router builds the chi router with the shared middleware chain.
func (s *Server) Router(requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()
	r.Use(TraceID(), Recover(s.log), RequestLog(s.log), Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/webhook/payment", s.handleWebhook)

	r.Route("/api/subscriptions", func(r chi.Router) {
		r.Post("/checkout", s.handleCheckout)
		r.Post("/activate", s.handleActivate)
	})
	r.Get("/api/plans", s.handlePlans)

	r.Route("/api/secours", func(r chi.Router) {
		r.Post("/purchase", s.handleTokenPurchase)
		r.Get("/balance", s.handleTokenBalance)
		r.Get("/transactions", s.handleTokenHistory)
		r.Post("/withdrawal", s.handleTokenWithdrawal)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Get("/{id}", s.handleProfile)
	})

	r.Route("/api/affiliate", func(r chi.Router) {
		r.Get("/summary", s.handleAffiliateSummary)
		r.Get("/leaderboard", s.handleLeaderboard)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", s.handleAdminLogin)
		r.With(s.adminOnly).Get("/stats", s.handleAdminStats)
	})

	return r
}

// adminOnly accepts either the static bearer key or a minted session
// cookie.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		if header := r.Header.Get("Authorization"); header != "" {
			parts := strings.Split(header, " ")
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] == s.apiKey {
				next.ServeHTTP(w, r)
				return
			}
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		if s.auth != nil && s.auth.Verify(r) == nil {
			next.ServeHTTP(w, r)
			return
		}
		respondError(w, http.StatusUnauthorized, "unauthorized")
	})
}
