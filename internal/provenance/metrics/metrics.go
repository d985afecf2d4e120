package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks ledger mutations.
type Metrics struct {
	ClaimsRegistered prometheus.Counter
	Transfers        *prometheus.CounterVec
	Signatures       prometheus.Counter
	NotFound         *prometheus.CounterVec
	MutationLatency  *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ClaimsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_claims_registered_total",
			Help: "Total number of property claims registered",
		}),
		Transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delphi_property_transfers_total",
			Help: "Applied property transfers by kind (whole or partial)",
		}, []string{"kind"}),
		Signatures: factory.NewCounter(prometheus.CounterOpts{
			Name: "delphi_property_signatures_total",
			Help: "Total number of attestations recorded",
		}),
		NotFound: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delphi_ledger_not_found_total",
			Help: "Mutations whose target property did not exist, by operation",
		}, []string{"operation"}),
		MutationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "delphi_ledger_mutation_duration_seconds",
			Help:    "Duration of ledger transactions by operation",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementClaims() {
	if m == nil {
		return
	}
	m.ClaimsRegistered.Inc()
}

func (m *Metrics) IncrementTransfers(partial bool) {
	if m == nil {
		return
	}
	kind := "whole"
	if partial {
		kind = "partial"
	}
	m.Transfers.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementSignatures() {
	if m == nil {
		return
	}
	m.Signatures.Inc()
}

func (m *Metrics) IncrementNotFound(operation string) {
	if m == nil {
		return
	}
	m.NotFound.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveMutation(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.MutationLatency.WithLabelValues(operation).Observe(seconds)
}
