package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPostingMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPostingMetrics(reg)
	metrics.IncPosted("sales")
	metrics.IncFailure("unbalanced")
	metrics.ObserveDuration("sales", 250*time.Millisecond)
	metrics.IncNumberRetry()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "vouchers_posted_total", "type", "sales"); err != nil {
		t.Fatalf("fetch posted: %v", err)
	} else if got != 1 {
		t.Fatalf("expected posted=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "voucher_posting_failures_total", "reason", "unbalanced"); err != nil {
		t.Fatalf("fetch failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "voucher_posting_duration_seconds", "type", "sales"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	retries := findMetricFamily(mfs, "voucher_number_retries_total")
	if retries == nil {
		t.Fatal("retries metric not found")
	}
	if got := retries.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected retries=1, got %f", got)
	}
}

func TestPostingMetricsNilSafe(t *testing.T) {
	var metrics *PostingMetrics
	metrics.IncPosted("sales")
	metrics.IncFailure("unbalanced")
	metrics.ObserveDuration("sales", time.Second)
	metrics.IncNumberRetry()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
