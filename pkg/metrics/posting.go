package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PostingMetrics records voucher posting activity.
type PostingMetrics struct {
	posted     *prometheus.CounterVec
	failures   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	seqRetries prometheus.Counter
}

// NewPostingMetrics registers the posting metrics on the provided registerer.
func NewPostingMetrics(reg prometheus.Registerer) *PostingMetrics {
	if reg == nil {
		return &PostingMetrics{}
	}
	posted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vouchers_posted_total",
		Help: "Vouchers posted, by voucher type.",
	}, []string{"type"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "voucher_posting_failures_total",
		Help: "Voucher postings rejected, by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "voucher_posting_duration_seconds",
		Help:    "Duration of voucher postings in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
	seqRetries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "voucher_number_retries_total",
		Help: "Retries taken to claim a voucher number.",
	})
	reg.MustRegister(posted, failures, duration, seqRetries)
	return &PostingMetrics{
		posted:     posted,
		failures:   failures,
		duration:   duration,
		seqRetries: seqRetries,
	}
}

// IncPosted increments the posted counter for the voucher type.
func (m *PostingMetrics) IncPosted(voucherType string) {
	if m == nil || m.posted == nil {
		return
	}
	m.posted.WithLabelValues(normalizeLabel(voucherType)).Inc()
}

// IncFailure increments the failure counter for the named reason.
func (m *PostingMetrics) IncFailure(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveDuration records how long a posting took for the voucher type.
func (m *PostingMetrics) ObserveDuration(voucherType string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(voucherType)).Observe(duration.Seconds())
}

// IncNumberRetry counts one retry of the voucher number claim.
func (m *PostingMetrics) IncNumberRetry() {
	if m == nil || m.seqRetries == nil {
		return
	}
	m.seqRetries.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
