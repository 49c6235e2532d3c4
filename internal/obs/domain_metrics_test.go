package obs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/nuvme-configurator/internal/obs"
)

func TestDomainMetricsRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs.MustRegisterDomainMetrics("nuvme", reg)
	obs.MustRegisterDomainMetrics("nuvme", reg)

	obs.IncCounter(obs.QuoteSelectionsTotal, "ok")
	obs.IncCounter(obs.QuoteSelectionsTotal, "ok")
	if got := testutil.ToFloat64(obs.QuoteSelectionsTotal.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 selections, got %v", got)
	}
}

func TestIncCounterNil(t *testing.T) {
	obs.IncCounter(nil, "ok")
}
