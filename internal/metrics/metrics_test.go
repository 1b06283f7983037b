package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestEstimateMetricsExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEstimateMetrics(reg)

	m.ObserveRecalculation("row_update", 2*time.Millisecond)
	m.ObserveRecalculation("row_update", time.Millisecond)
	m.IncFileParsed("excel", true)
	m.IncFileParsed("pdf", false)
	m.AddRows("2-file", 7)
	m.IncExport("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	assertCounter(t, mfs, "estimate_recalculations_total", map[string]string{"trigger": "row_update"}, 2)
	assertCounter(t, mfs, "upload_files_parsed_total", map[string]string{"kind": "excel", "outcome": "success"}, 1)
	assertCounter(t, mfs, "upload_files_parsed_total", map[string]string{"kind": "pdf", "outcome": "failure"}, 1)
	assertCounter(t, mfs, "upload_rows_total", map[string]string{"mode": "2-file"}, 7)
	assertCounter(t, mfs, "estimate_exports_total", map[string]string{"format": "unknown"}, 1)
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *EstimateMetrics
	m.ObserveRecalculation("x", time.Second)
	m.IncFileParsed("excel", true)
	m.AddRows("single", 1)
	m.IncExport("pdf")

	NewEstimateMetrics(nil).IncExport("pdf")
}

func assertCounter(t *testing.T, mfs []*dto.MetricFamily, name string, labels map[string]string, want float64) {
	t.Helper()
	got, err := fetchCounterValue(mfs, name, labels)
	if err != nil {
		t.Fatalf("fetch %s: %v", name, err)
	}
	if got != want {
		t.Fatalf("%s%v = %v, want %v", name, labels, got, want)
	}
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchesLabels(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue(), nil
			}
		}
		return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
	}
	return 0, fmt.Errorf("metric %q not found", name)
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok {
			if v != p.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
