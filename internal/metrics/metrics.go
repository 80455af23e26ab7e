package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records
// nothing, which keeps the catalog usable from the CLI and tests.
type Metrics struct {
	// HTTP metrics
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorCount      *prometheus.CounterVec

	// Import metrics
	ImportRowsTotal    *prometheus.CounterVec
	ImportBatchesTotal *prometheus.CounterVec

	// Catalog metrics
	LazyRegistrationsTotal prometheus.Counter
	SyncAddedTotal         prometheus.Counter

	// Stream metrics
	StreamRequestsTotal *prometheus.CounterVec
	StreamBytesTotal    prometheus.Counter

	// Health metrics
	HealthStatus       *prometheus.GaugeVec
	StorageUsedPercent prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audiotable_http_requests_total",
				Help: "Total number of API requests by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "audiotable_http_request_duration_seconds",
				Help:    "Histogram of request durations by method, route, and status",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		ErrorCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audiotable_http_errors_total",
				Help: "Total number of API errors by method, route, and status",
			},
			[]string{"method", "route", "status"},
		),

		ImportRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audiotable_import_rows_total",
				Help: "Rows created by bulk import, by audio outcome",
			},
			[]string{"outcome"},
		),
		ImportBatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audiotable_import_batches_total",
				Help: "Bulk import calls by status",
			},
			[]string{"status"},
		),

		LazyRegistrationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "audiotable_lazy_registrations_total",
				Help: "Audio assets registered on first reference",
			},
		),
		SyncAddedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "audiotable_sync_added_total",
				Help: "Audio assets registered by directory sync",
			},
		),

		StreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audiotable_stream_requests_total",
				Help: "Total number of audio stream requests",
			},
			[]string{"status"},
		),
		StreamBytesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "audiotable_stream_bytes_total",
				Help: "Total number of audio bytes served",
			},
		),

		HealthStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "audiotable_health_status",
				Help: "Health status of dependencies (1=ok, 0=down)",
			},
			[]string{"dependency"},
		),
		StorageUsedPercent: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "audiotable_storage_used_percent",
				Help: "Used space of the filesystem holding the audio directory",
			},
		),
	}
}

// InitializeMetrics sets up default values for metrics
func InitializeMetrics(reg prometheus.Registerer) *Metrics {
	m := NewMetrics(reg)

	m.HealthStatus.WithLabelValues("db").Set(0)
	m.HealthStatus.WithLabelValues("storage").Set(0)

	return m
}

// RecordImport records a committed bulk import
func (m *Metrics) RecordImport(matched, explicit, unresolved, none, registered int) {
	if m == nil {
		return
	}
	m.ImportBatchesTotal.WithLabelValues("ok").Inc()
	m.ImportRowsTotal.WithLabelValues("matched").Add(float64(matched))
	m.ImportRowsTotal.WithLabelValues("explicit").Add(float64(explicit))
	m.ImportRowsTotal.WithLabelValues("unmatched").Add(float64(unresolved))
	m.ImportRowsTotal.WithLabelValues("none").Add(float64(none))
	m.LazyRegistrationsTotal.Add(float64(registered))
}

// RecordImportFailure records a bulk import that rolled back
func (m *Metrics) RecordImportFailure() {
	if m == nil {
		return
	}
	m.ImportBatchesTotal.WithLabelValues("failed").Inc()
}

// RecordSync records assets added by a directory sync
func (m *Metrics) RecordSync(added int) {
	if m == nil {
		return
	}
	m.SyncAddedTotal.Add(float64(added))
}

// RecordStream records one audio stream response
func (m *Metrics) RecordStream(status string, bytes int64) {
	if m == nil {
		return
	}
	m.StreamRequestsTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		m.StreamBytesTotal.Add(float64(bytes))
	}
}

// SetHealth sets the health gauge of one dependency
func (m *Metrics) SetHealth(dependency string, ok bool) {
	if m == nil {
		return
	}
	value := 0.0
	if ok {
		value = 1
	}
	m.HealthStatus.WithLabelValues(dependency).Set(value)
}

// SetStorageUsage records how full the audio filesystem is
func (m *Metrics) SetStorageUsage(usedPercent float64) {
	if m == nil {
		return
	}
	m.StorageUsedPercent.Set(usedPercent)
}
