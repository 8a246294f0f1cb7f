// Package metrics exposes tracker counters to Prometheus.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	// Frame counters
	FramesCaptured  atomic.Uint64
	FramesSubmitted atomic.Uint64
	FramesProcessed atomic.Uint64
	FramesDropped   atomic.Uint64 // admission gate busy
	FramesWithheld  atomic.Uint64 // visibility at or below the floor

	// Delivery
	DeliveriesDropped atomic.Uint64

	// Errors
	CaptureErrors atomic.Uint64
	DetectErrors  atomic.Uint64
	SinkErrors    atomic.Uint64

	HandLosses       atomic.Uint64
	ProcessLatencyUs atomic.Uint64
	LiveClients      atomic.Int64

	events   *prometheus.CounterVec
	registry *prometheus.Registry
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	FramesCaptured    uint64 `json:"frames_captured"`
	FramesSubmitted   uint64 `json:"frames_submitted"`
	FramesProcessed   uint64 `json:"frames_processed"`
	FramesDropped     uint64 `json:"frames_dropped"`
	FramesWithheld    uint64 `json:"frames_withheld"`
	DeliveriesDropped uint64 `json:"deliveries_dropped"`
	CaptureErrors     uint64 `json:"capture_errors"`
	DetectErrors      uint64 `json:"detect_errors"`
	SinkErrors        uint64 `json:"sink_errors"`
	HandLosses        uint64 `json:"hand_losses"`
	ProcessLatencyUs  uint64 `json:"process_latency_us"`
	LiveClients       int64  `json:"live_clients"`
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fingercursor_gesture_events_total",
			Help: "Gesture events emitted, by event",
		}, []string{"event"}),
	}
	m.registerPrometheusMetrics()
	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	counters := []struct {
		name string
		help string
		v    *atomic.Uint64
	}{
		{"fingercursor_frames_captured_total", "Total camera frames read", &m.FramesCaptured},
		{"fingercursor_frames_submitted_total", "Total landmark samples offered to the tracker", &m.FramesSubmitted},
		{"fingercursor_frames_processed_total", "Total landmark samples processed", &m.FramesProcessed},
		{"fingercursor_frames_dropped_total", "Samples dropped because a frame was in flight", &m.FramesDropped},
		{"fingercursor_frames_withheld_total", "Samples withheld for low visibility", &m.FramesWithheld},
		{"fingercursor_deliveries_dropped_total", "Frames not delivered because the dispatch queue was full", &m.DeliveriesDropped},
		{"fingercursor_capture_errors_total", "Total camera read errors", &m.CaptureErrors},
		{"fingercursor_detect_errors_total", "Total hand detector errors", &m.DetectErrors},
		{"fingercursor_sink_errors_total", "Total frame sink errors", &m.SinkErrors},
		{"fingercursor_hand_losses_total", "Times tracking state was reset after losing the hand", &m.HandLosses},
	}
	for _, c := range counters {
		v := c.v
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(v.Load()) },
		))
	}

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fingercursor_process_latency_us",
			Help: "Processing time of the last frame in microseconds",
		},
		func() float64 { return float64(m.ProcessLatencyUs.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "fingercursor_live_clients",
			Help: "Connected live view clients",
		},
		func() float64 { return float64(m.LiveClients.Load()) },
	))

	m.registry.MustRegister(m.events)
}

// ObserveEvent counts one emitted gesture event.
func (m *Metrics) ObserveEvent(name string) {
	m.events.WithLabelValues(name).Inc()
}

// UpdateProcessLatency records how long the last frame took.
func (m *Metrics) UpdateProcessLatency(d time.Duration) {
	m.ProcessLatencyUs.Store(uint64(d.Microseconds()))
}

// Snapshot returns the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		FramesCaptured:    m.FramesCaptured.Load(),
		FramesSubmitted:   m.FramesSubmitted.Load(),
		FramesProcessed:   m.FramesProcessed.Load(),
		FramesDropped:     m.FramesDropped.Load(),
		FramesWithheld:    m.FramesWithheld.Load(),
		DeliveriesDropped: m.DeliveriesDropped.Load(),
		CaptureErrors:     m.CaptureErrors.Load(),
		DetectErrors:      m.DetectErrors.Load(),
		SinkErrors:        m.SinkErrors.Load(),
		HandLosses:        m.HandLosses.Load(),
		ProcessLatencyUs:  m.ProcessLatencyUs.Load(),
		LiveClients:       m.LiveClients.Load(),
	}
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
