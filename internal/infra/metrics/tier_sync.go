package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(tierSyncTotal, tierSyncQueueDepth)
}

var (
	tierSyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tier_sync_total",
			Help: "Membership tier sync attempts by result (ok/retry/failed).",
		},
		[]string{"result"},
	)

	tierSyncQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tier_sync_queue_depth",
			Help: "Pending tier sync tasks awaiting retry.",
		},
	)
)

func IncTierSync(result string) { tierSyncTotal.WithLabelValues(norm(result)).Inc() }

func SetTierSyncQueueDepth(n int) { tierSyncQueueDepth.Set(float64(n)) }
