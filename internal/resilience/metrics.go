package resilience

import "github.com/prometheus/client_golang/prometheus"

var allStates = []State{Closed, Open, HalfOpen}

var (
	// StateGauge is 1 for the current state of each breaker and 0 otherwise.
	StateGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "nuvme",
		Subsystem: "breaker",
		Name:      "state",
		Help:      "Breaker state, one series per state.",
	}, []string{"target", "state"})
	// TransitionsTotal counts state changes; to="open" gives the trip count.
	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "nuvme",
		Subsystem: "breaker",
		Name:      "transitions_total",
		Help:      "Breaker state transitions.",
	}, []string{"target", "from", "to"})
)

func init() {
	prometheus.MustRegister(StateGauge, TransitionsTotal)
}

func observeState(target string, current State) {
	for _, s := range allStates {
		v := 0.0
		if s == current {
			v = 1
		}
		StateGauge.WithLabelValues(target, s.String()).Set(v)
	}
}

func observeTransition(target string, from, to State) {
	TransitionsTotal.WithLabelValues(target, from.String(), to.String()).Inc()
	observeState(target, to)
}
