package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Throttled prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Throttled: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "delphi_ratelimit_throttled_total",
			Help: "Total number of mutating requests rejected by the per-caller limiter",
		}),
	}
}

func (m *Metrics) IncrementThrottled() {
	if m == nil {
		return
	}
	m.Throttled.Inc()
}
