package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		tokensCreditedTotal,
		tokensWithdrawnTotal,
	)
}

var (
	tokensCreditedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokens_credited_total",
			Help: "Tokens credited per service plan.",
		},
		[]string{"plan"},
	)

	tokensWithdrawnTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokens_withdrawn_total",
			Help: "Tokens withdrawn per service plan.",
		},
		[]string{"plan"},
	)
)

func AddTokensCredited(plan string, n int64) {
	tokensCreditedTotal.WithLabelValues(norm(plan)).Add(float64(n))
}

func AddTokensWithdrawn(plan string, n int64) {
	tokensWithdrawnTotal.WithLabelValues(norm(plan)).Add(float64(n))
}
