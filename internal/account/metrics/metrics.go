package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks account directory activity.
type Metrics struct {
	AccountsRegistered prometheus.Counter
	LookupsTotal       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccountsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_accounts_registered_total",
			Help: "Total number of account registrations, including re-registrations",
		}),
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delphi_account_lookups_total",
			Help: "Total number of account existence lookups by result",
		}, []string{"found"}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.AccountsRegistered.Inc()
}

func (m *Metrics) IncrementLookup(found bool) {
	if found {
		m.LookupsTotal.WithLabelValues("true").Inc()
		return
	}
	m.LookupsTotal.WithLabelValues("false").Inc()
}
