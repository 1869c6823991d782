package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "hyprscribe"

// metrics are registered on a per-server registry so several servers (and
// tests) can coexist in one process.
type metrics struct {
	registry *prometheus.Registry

	transcriptionsTotal   *prometheus.CounterVec
	transcriptionDuration *prometheus.HistogramVec
	inFlight              prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		transcriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription requests by provider and outcome.",
		}, []string{"provider", "status"}),
		transcriptionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Time spent loading the model and transcribing.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s → ~4m
		}, []string{"provider"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "transcriptions_in_flight",
			Help:      "Transcriptions currently running.",
		}),
	}

	m.registry.MustRegister(
		m.transcriptionsTotal,
		m.transcriptionDuration,
		m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) observe(provider string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.transcriptionsTotal.WithLabelValues(provider, status).Inc()
	m.transcriptionDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
