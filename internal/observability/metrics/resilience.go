package metrics

import "github.com/prometheus/client_golang/prometheus"

// resilienceCollectors satisfies resilience.Observer for any registry owner.
type resilienceCollectors struct {
	service      string
	retriesTotal *prometheus.CounterVec
	breakerState *prometheus.CounterVec
}

func newResilienceCollectors(registry *prometheus.Registry, service string) *resilienceCollectors {
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "retries_total",
			Help:      "Total retried calls to external dependencies.",
		},
		[]string{"service", "operation"},
	)
	breakerState := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resilience",
			Name:      "breaker_transitions_total",
			Help:      "Total circuit breaker transitions by target state.",
		},
		[]string{"service", "operation", "state"},
	)
	registry.MustRegister(retriesTotal, breakerState)

	return &resilienceCollectors{
		service:      service,
		retriesTotal: retriesTotal,
		breakerState: breakerState,
	}
}

func (c *resilienceCollectors) ObserveRetry(operation string) {
	c.retriesTotal.WithLabelValues(c.service, operation).Inc()
}

func (c *resilienceCollectors) ObserveBreakerState(operation, state string) {
	c.breakerState.WithLabelValues(c.service, operation, state).Inc()
}
