package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhooksTotal,
		webhookErrorsTotal,
		webhookReplaysTotal,
	)
}

var (
	webhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_total",
			Help: "Webhook deliveries by attempt kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	webhookErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_errors_total",
			Help: "Webhook deliveries that failed internally but were still acknowledged.",
		},
	)

	webhookReplaysTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "webhook_replays_total",
			Help: "Webhook deliveries skipped because the attempt was already resolved.",
		},
	)
)

func IncWebhook(kind, outcome string) {
	webhooksTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func IncWebhookError() { webhookErrorsTotal.Inc() }

func IncWebhookReplay() { webhookReplaysTotal.Inc() }
