package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteSelectionsTotal counts ledger selections by outcome (ok, conflict, invalid, error).
	QuoteSelectionsTotal *prometheus.CounterVec
	// QuoteConflictsTotal counts rejected selections per exclusion pair.
	QuoteConflictsTotal *prometheus.CounterVec
	// QuoteSavesTotal counts saved quote outcomes.
	QuoteSavesTotal *prometheus.CounterVec
	// QuoteTotalBRL records final totals of saved quotes in reais.
	QuoteTotalBRL prometheus.Histogram
	// AccessAttemptsTotal counts PIN gate attempts by outcome.
	AccessAttemptsTotal *prometheus.CounterVec
	// WebhookDeliveriesTotal tracks webhook dispatch outcomes.
	WebhookDeliveriesTotal *prometheus.CounterVec
	// WebhookAttemptLatency records delivery attempt latency in milliseconds.
	WebhookAttemptLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers the configurator collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteSelectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_selections_total",
			Help:      "Count of module selections by outcome.",
		}, []string{"result"})
		QuoteConflictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_conflicts_total",
			Help:      "Count of selections rejected by a mutual exclusion rule.",
		}, []string{"module", "conflicts_with"})
		QuoteSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_saves_total",
			Help:      "Count of saved quote outcomes.",
		}, []string{"result"})
		QuoteTotalBRL = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_total_brl",
			Help:      "Final total of saved quotes in BRL.",
			Buckets:   []float64{5000, 10000, 25000, 50000, 100000, 250000, 500000},
		})
		AccessAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_attempts_total",
			Help:      "Count of access PIN attempts by outcome.",
		}, []string{"result"})
		WebhookDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_deliveries_total",
			Help:      "Count of webhook delivery outcomes.",
		}, []string{"result"})
		WebhookAttemptLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webhook_attempt_duration_ms",
			Help:      "Latency for webhook delivery attempts in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"result"})

		mustRegisterCollector(reg, QuoteSelectionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteSelectionsTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteConflictsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteConflictsTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteSavesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteSavesTotal = v
			}
		})
		mustRegisterCollector(reg, QuoteTotalBRL, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteTotalBRL = v
			}
		})
		mustRegisterCollector(reg, AccessAttemptsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AccessAttemptsTotal = v
			}
		})
		mustRegisterCollector(reg, WebhookDeliveriesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				WebhookDeliveriesTotal = v
			}
		})
		mustRegisterCollector(reg, WebhookAttemptLatency, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.HistogramVec); ok {
				WebhookAttemptLatency = v
			}
		})
	})
}

// IncCounter increments vec for labels when the collector is registered.
func IncCounter(vec *prometheus.CounterVec, labels ...string) {
	if vec == nil {
		return
	}
	vec.WithLabelValues(labels...).Inc()
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
