package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	WaitlistAssigned   prometheus.Counter
	WaitlistConflicts  prometheus.Counter
	AssignmentDuration prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		WaitlistAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_waitlist_numbers_assigned_total",
			Help: "Total number of waitlist numbers assigned",
		}),
		WaitlistConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_waitlist_assignment_conflicts_total",
			Help: "Assignment transactions that exhausted the retry budget",
		}),
		AssignmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chefpass_waitlist_assignment_duration_seconds",
			Help:    "Duration of waitlist assignment transactions",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// Methods are nil-safe so services can run without metrics in tests.

func (m *Metrics) IncWaitlistAssigned() {
	if m == nil {
		return
	}
	m.WaitlistAssigned.Inc()
}

func (m *Metrics) IncWaitlistConflict() {
	if m == nil {
		return
	}
	m.WaitlistConflicts.Inc()
}

func (m *Metrics) ObserveAssignment(start time.Time) {
	if m == nil {
		return
	}
	m.AssignmentDuration.Observe(time.Since(start).Seconds())
}
