package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EstimateMetrics records calculation, upload and export activity.
type EstimateMetrics struct {
	recalculations *prometheus.CounterVec
	recalcDuration prometheus.Histogram
	filesParsed    *prometheus.CounterVec
	rowsMerged     *prometheus.CounterVec
	exports        *prometheus.CounterVec
}

// NewEstimateMetrics registers the estimate metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewEstimateMetrics(reg prometheus.Registerer) *EstimateMetrics {
	if reg == nil {
		return &EstimateMetrics{}
	}
	recalculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_recalculations_total",
		Help: "Full cost recalculation passes by trigger.",
	}, []string{"trigger"})
	recalcDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "estimate_recalculation_duration_seconds",
		Help:    "Duration of cost recalculation passes in seconds.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
	})
	filesParsed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_files_parsed_total",
		Help: "Uploaded files parsed by kind and outcome.",
	}, []string{"kind", "outcome"})
	rowsMerged := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_rows_total",
		Help: "Rows produced by upload combination by parse mode.",
	}, []string{"mode"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_exports_total",
		Help: "Generated estimate documents by format.",
	}, []string{"format"})
	reg.MustRegister(recalculations, recalcDuration, filesParsed, rowsMerged, exports)
	return &EstimateMetrics{
		recalculations: recalculations,
		recalcDuration: recalcDuration,
		filesParsed:    filesParsed,
		rowsMerged:     rowsMerged,
		exports:        exports,
	}
}

// ObserveRecalculation counts one recalculation pass and its duration.
func (m *EstimateMetrics) ObserveRecalculation(trigger string, duration time.Duration) {
	if m == nil || m.recalculations == nil {
		return
	}
	m.recalculations.WithLabelValues(normalizeLabel(trigger)).Inc()
	m.recalcDuration.Observe(duration.Seconds())
}

// IncFileParsed counts one parsed upload file.
func (m *EstimateMetrics) IncFileParsed(kind string, ok bool) {
	if m == nil || m.filesParsed == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.filesParsed.WithLabelValues(normalizeLabel(kind), outcome).Inc()
}

// AddRows counts rows returned for a parse mode.
func (m *EstimateMetrics) AddRows(mode string, n int) {
	if m == nil || m.rowsMerged == nil {
		return
	}
	m.rowsMerged.WithLabelValues(normalizeLabel(mode)).Add(float64(n))
}

// IncExport counts one generated document.
func (m *EstimateMetrics) IncExport(format string) {
	if m == nil || m.exports == nil {
		return
	}
	m.exports.WithLabelValues(normalizeLabel(format)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
