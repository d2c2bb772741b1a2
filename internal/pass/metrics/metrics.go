package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TokensMinted    prometheus.Counter
	TokenCollisions prometheus.Counter
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_pass_tokens_minted_total",
			Help: "Total number of pass tokens minted",
		}),
		TokenCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_pass_token_collisions_total",
			Help: "Freshly minted tokens that collided with an existing pass",
		}),
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_pass_publishes_total",
			Help: "Successful public pass write-throughs",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "chefpass_pass_publish_failures_total",
			Help: "Public pass write-throughs that failed and were swallowed",
		}),
	}
}

// Methods are nil-safe so services can run without metrics in tests.

func (m *Metrics) IncTokenMinted() {
	if m == nil {
		return
	}
	m.TokensMinted.Inc()
}

func (m *Metrics) IncTokenCollision() {
	if m == nil {
		return
	}
	m.TokenCollisions.Inc()
}

func (m *Metrics) IncPublished() {
	if m == nil {
		return
	}
	m.Published.Inc()
}

func (m *Metrics) IncPublishFailure() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}
