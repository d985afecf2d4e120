package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks property-type catalog activity.
type Metrics struct {
	TypesRegistered prometheus.Counter
	DuplicateTypes  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TypesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_property_types_registered_total",
			Help: "Total number of property types registered",
		}),
		DuplicateTypes: factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_property_types_duplicate_total",
			Help: "Registrations that repeated a type id the authority already owned",
		}),
	}
}

func (m *Metrics) IncrementRegistered(duplicate bool) {
	m.TypesRegistered.Inc()
	if duplicate {
		m.DuplicateTypes.Inc()
	}
}
