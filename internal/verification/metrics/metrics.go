// Package metrics exposes Prometheus metrics for the verification flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SessionsStarted prometheus.Counter
	PreviewsSaved   prometheus.Counter
	Completions     *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ekyc_sessions_started_total",
			Help: "Verification sessions started.",
		}),
		PreviewsSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ekyc_previews_saved_total",
			Help: "OCR preview records saved.",
		}),
		Completions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ekyc_completions_total",
			Help: "Verification completions by final status.",
		}, []string{"status"}),
		ProviderLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ekyc_provider_latency_seconds",
			Help:    "Latency of provider API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}
