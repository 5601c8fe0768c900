// Package telemetry holds the Prometheus collectors shared by the Rally
// adapter, the resolver and the report service.
//
// Collectors live on a private registry rather than the global default so
// tests and multiple sessions never collide. A nil *Metrics is valid and
// records nothing.
package telemetry

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "reqreport"

// Metrics bundles every collector the tool exports.
type Metrics struct {
	Registry *prometheus.Registry

	// rallyRequests counts backend HTTP calls by endpoint and status code.
	rallyRequests *prometheus.CounterVec

	// rallyRequestDuration tracks backend call latency.
	rallyRequestDuration *prometheus.HistogramVec

	rallyPages  prometheus.Counter
	itemsLoaded prometheus.Counter

	// hierarchyDiagnostics counts inconsistent hierarchy findings by kind.
	hierarchyDiagnostics *prometheus.CounterVec
	cyclicHierarchies    prometheus.Counter

	// reportPasses counts report passes by outcome (ok, empty, error, stale).
	reportPasses *prometheus.CounterVec
	passDuration prometheus.Histogram
}

// New creates a Metrics bound to a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		rallyRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rally_requests_total",
			Help:      "Total Rally WSAPI requests by endpoint and HTTP status",
		}, []string{"endpoint", "status"}),
		rallyRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rally_request_duration_seconds",
			Help:      "Rally WSAPI request duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}, []string{"endpoint"}),
		rallyPages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rally_pages_total",
			Help:      "Total result pages fetched from the backend",
		}),
		itemsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_loaded_total",
			Help:      "Total work items loaded into report snapshots",
		}),
		hierarchyDiagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hierarchy_diagnostics_total",
			Help:      "Inconsistent hierarchy findings by kind",
		}, []string{"kind"}),
		cyclicHierarchies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cyclic_hierarchies_total",
			Help:      "Resolutions aborted because of a cyclic or too deep hierarchy",
		}),
		reportPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_passes_total",
			Help:      "Report passes by outcome",
		}, []string{"outcome"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_pass_duration_seconds",
			Help:      "End-to-end report pass duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

// ObserveRequest records one backend call.
func (m *Metrics) ObserveRequest(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.rallyRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.rallyRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObservePage records one aggregated result page.
func (m *Metrics) ObservePage() {
	if m == nil {
		return
	}
	m.rallyPages.Inc()
}

// ObserveItemsLoaded records the size of a loaded snapshot.
func (m *Metrics) ObserveItemsLoaded(n int) {
	if m == nil {
		return
	}
	m.itemsLoaded.Add(float64(n))
}

// ObserveDiagnostic records one inconsistent hierarchy finding.
func (m *Metrics) ObserveDiagnostic(kind string) {
	if m == nil {
		return
	}
	m.hierarchyDiagnostics.WithLabelValues(kind).Inc()
}

// ObserveCycle records an aborted resolution.
func (m *Metrics) ObserveCycle() {
	if m == nil {
		return
	}
	m.cyclicHierarchies.Inc()
}

// ObservePass records the outcome of a report pass.
func (m *Metrics) ObservePass(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.reportPasses.WithLabelValues(outcome).Inc()
	m.passDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
