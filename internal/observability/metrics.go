package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rgbclient",
			Name:      "frames_total",
			Help:      "Complete frames received and rendered.",
		},
	)
	frameBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rgbclient",
			Name:      "frame_bytes_total",
			Help:      "Frame payload bytes received.",
		},
	)
	connectAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rgbclient",
			Name:      "connect_attempts_total",
			Help:      "TCP connect attempts by result.",
		},
		[]string{"result"},
	)
	connections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rgbclient",
			Name:      "connections_total",
			Help:      "Finished connections by outcome.",
		},
		[]string{"outcome"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rgbclient",
			Name:      "protocol_errors_total",
			Help:      "Connection-ending protocol and transport errors.",
		},
		[]string{"reason"},
	)
	renderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rgbclient",
			Name:      "render_duration_seconds",
			Help:      "Time spent compositing and presenting one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesTotal, frameBytesTotal, connectAttempts, connections, protocolErrors, renderDuration)
	})
}

func RecordFrame(bytes int, render time.Duration) {
	RegisterMetrics()
	framesTotal.Inc()
	frameBytesTotal.Add(float64(bytes))
	renderDuration.Observe(render.Seconds())
}

func RecordConnectAttempt(ok bool) {
	RegisterMetrics()
	result := "failed"
	if ok {
		result = "connected"
	}
	connectAttempts.WithLabelValues(result).Inc()
}

func RecordConnection(outcome string) {
	RegisterMetrics()
	connections.WithLabelValues(outcome).Inc()
}

func RecordProtocolError(reason string) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(reason).Inc()
}
