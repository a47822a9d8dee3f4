// Package metrics exposes prometheus instruments for the flat-file store.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketstore"

// Metrics groups the store's instruments.
type Metrics struct {
	RecordsRead     *prometheus.CounterVec   // labels: kind
	RecordsSkipped  *prometheus.CounterVec   // labels: kind
	FileWrites      *prometheus.CounterVec   // labels: kind
	IOErrors        *prometheus.CounterVec   // labels: kind, op
	Mutations       *prometheus.CounterVec   // labels: op
	SnapshotExports *prometheus.CounterVec   // labels: kind, format
	OpDuration      *prometheus.HistogramVec // labels: op
	HTTPRequests    *prometheus.CounterVec   // labels: route, code
}

// New registers all instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsRead: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Records decoded from text files.",
		}, []string{"kind"}),
		RecordsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Malformed records skipped while reading.",
		}, []string{"kind"}),
		FileWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "file_writes_total",
			Help:      "Whole-file rewrites and appends.",
		}, []string{"kind"}),
		IOErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "io_errors_total",
			Help:      "File I/O failures.",
		}, []string{"kind", "op"}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Applied marketplace mutations.",
		}, []string{"op"}),
		SnapshotExports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_exports_total",
			Help:      "Snapshot files written.",
		}, []string{"kind", "format"}),
		OpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "op_duration_seconds",
			Help:      "Duration of store operations.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"op"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served by the read-only API.",
		}, []string{"route", "code"}),
	}
}

// Read adds n decoded records of kind.
func (m *Metrics) Read(kind string, n int) {
	if m == nil {
		return
	}
	m.RecordsRead.WithLabelValues(kind).Add(float64(n))
}

// Skipped counts one malformed record of kind.
func (m *Metrics) Skipped(kind string) {
	if m == nil {
		return
	}
	m.RecordsSkipped.WithLabelValues(kind).Inc()
}

// Wrote counts one file write of kind.
func (m *Metrics) Wrote(kind string) {
	if m == nil {
		return
	}
	m.FileWrites.WithLabelValues(kind).Inc()
}

// IOError counts one failed op on a kind's file.
func (m *Metrics) IOError(kind, op string) {
	if m == nil {
		return
	}
	m.IOErrors.WithLabelValues(kind, op).Inc()
}

// Mutation counts one applied mutation.
func (m *Metrics) Mutation(op string) {
	if m == nil {
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
}

// Exported counts one snapshot file.
func (m *Metrics) Exported(kind, format string) {
	if m == nil {
		return
	}
	m.SnapshotExports.WithLabelValues(kind, format).Inc()
}

// Since observes the time elapsed from start under op.
func (m *Metrics) Since(op string, start time.Time) {
	if m == nil {
		return
	}
	m.OpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Request counts one served HTTP request.
func (m *Metrics) Request(route string, code int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
