// Package metrics exposes extraction counters on a private prometheus registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "statement_extractor"

// Document is what the processor reports after each file.
type Document struct {
	Method       string
	Confidence   string
	DocumentType string
	Transactions int
	Dropped      int
	Failed       bool
	Duration     time.Duration
}

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	documents    *prometheus.CounterVec
	transactions *prometheus.CounterVec
	dropped      *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Processed documents by processing method, confidence level and outcome.",
		}, []string{"method", "confidence", "failed"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions extracted by processing method.",
		}, []string{"method"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_lines_total",
			Help:      "Candidate lines that matched no grammar, by processing method.",
		}, []string{"method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time spent processing one document.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"document_type"}),
	}
	m.registry.MustRegister(
		m.documents,
		m.transactions,
		m.dropped,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDocument records one processed file.
func (m *Metrics) ObserveDocument(d Document) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(d.Method, d.Confidence, strconv.FormatBool(d.Failed)).Inc()
	m.transactions.WithLabelValues(d.Method).Add(float64(d.Transactions))
	m.dropped.WithLabelValues(d.Method).Add(float64(d.Dropped))
	m.duration.WithLabelValues(d.DocumentType).Observe(d.Duration.Seconds())
}

// Registry returns the private registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
