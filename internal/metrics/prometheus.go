package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Counters are created up front so services can record before (or without)
// registration, e.g. in tests.
var (
	PaymentsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agendate_payments_created_total",
		Help: "Total number of payment creation attempts by kind and result.",
	}, []string{"kind", "result"})
	TokensRefreshedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agendate_tokens_refreshed_total",
		Help: "Total number of credential refresh attempts by result.",
	}, []string{"result"})
	WebhooksReceivedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agendate_webhooks_received_total",
		Help: "Total number of provider notifications by outcome.",
	}, []string{"outcome"})
	AccountsLinkedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agendate_accounts_linked_total",
		Help: "Total number of OAuth account link attempts by result.",
	}, []string{"result"})
)

// InitCustomMetrics registers the custom Prometheus metrics.
// It should be called once at application startup.
func InitCustomMetrics(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return
	}

	collectors := map[string]prometheus.Collector{
		"PaymentsCreatedTotal":  PaymentsCreatedTotal,
		"TokensRefreshedTotal":  TokensRefreshedTotal,
		"WebhooksReceivedTotal": WebhooksReceivedTotal,
		"AccountsLinkedTotal":   AccountsLinkedTotal,
	}
	for name, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Str("metric", name).Msg("Failed to register metric")
		}
	}
	log.Info().Msg("Custom Prometheus metrics registered.")
}
