// Package metrics exposes Prometheus metrics for the audit outbox worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
	PendingEntries  prometheus.Gauge
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ekyc_audit_outbox_published_total",
			Help: "Number of audit events published to Kafka.",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ekyc_audit_outbox_publish_failures_total",
			Help: "Number of failed audit event publish attempts.",
		}),
		PendingEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ekyc_audit_outbox_pending_entries",
			Help: "Unprocessed entries remaining in the outbox table.",
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ekyc_audit_outbox_batch_size",
			Help:    "Entries fetched per outbox poll.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ekyc_audit_outbox_poll_duration_seconds",
			Help:    "Duration of one outbox poll cycle.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
