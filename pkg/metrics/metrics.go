// Package metrics exposes Prometheus instrumentation for the import pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the import pipeline collectors.
type Metrics struct {
	ImportsTotal      *prometheus.CounterVec
	RowsImported      prometheus.Counter
	DuplicatesFlagged prometheus.Counter
}

// New creates the collectors and registers them with the given registerer.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "extrato",
			Name:      "imports_total",
			Help:      "Commit attempts by terminal status.",
		}, []string{"status"}),
		RowsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "extrato",
			Name:      "rows_imported_total",
			Help:      "Ledger rows persisted by commits.",
		}),
		DuplicatesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "extrato",
			Name:      "duplicates_flagged_total",
			Help:      "Preview rows flagged as internal or external duplicates.",
		}),
	}
	reg.MustRegister(m.ImportsTotal, m.RowsImported, m.DuplicatesFlagged)
	return m
}

// Handler serves the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
