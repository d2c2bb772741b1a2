package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Transitions         *prometheus.CounterVec
	RejectedTransitions prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chefpass_print_job_transitions_total",
			Help: "Applied print job transitions by action",
		}, []string{"action"}),
		RejectedTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_print_job_rejected_transitions_total",
			Help: "Print job transitions rejected by the transition table",
		}),
	}
}

// Methods are nil-safe so services can run without metrics in tests.

func (m *Metrics) IncTransition(action string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(action).Inc()
}

func (m *Metrics) IncRejected() {
	if m == nil {
		return
	}
	m.RejectedTransitions.Inc()
}
