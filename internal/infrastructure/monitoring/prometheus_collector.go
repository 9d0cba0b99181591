package monitoring

import (
	"time"

	"streamgrid/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters and gauges
	sessionsActiveTotal prometheus.Gauge
	inputConnections    prometheus.Gauge
	operationsTotal     *prometheus.CounterVec
	intentsTotal        *prometheus.CounterVec
	snapshotsSavedTotal prometheus.Counter

	// Histograms
	operationDuration prometheus.Histogram
	gestureDuration   prometheus.Histogram

	// Per-session metrics
	sessionSlotCount *prometheus.GaugeVec
	sessionPiPCount  *prometheus.GaugeVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		sessionsActiveTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamgrid_sessions_active_total",
			Help: "Total number of live layout sessions",
		}),

		inputConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "streamgrid_input_connections",
			Help: "Number of open input gateway connections",
		}),

		operationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgrid_layout_operations_total",
			Help: "Layout operations by name and result",
		}, []string{"operation", "result"}),

		intentsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgrid_gesture_intents_total",
			Help: "Gesture intents applied by type",
		}, []string{"intent"}),

		snapshotsSavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgrid_snapshots_saved_total",
			Help: "Total number of layout snapshots saved",
		}),

		operationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamgrid_layout_operation_duration_seconds",
			Help:    "Duration of layout operations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),

		gestureDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamgrid_gesture_duration_seconds",
			Help:    "Duration of completed drag and pinch gestures",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),

		sessionSlotCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streamgrid_session_slot_count",
			Help: "Number of grid slots in each session",
		}, []string{"session_id"}),

		sessionPiPCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streamgrid_session_pip_count",
			Help: "Number of detached PiP panes in each session",
		}, []string{"session_id"}),
	}
}

func (p *PrometheusCollector) RecordSessionCreated() {
	p.sessionsActiveTotal.Inc()
}

func (p *PrometheusCollector) RecordSessionDestroyed(sessionID domain.SessionID) {
	p.sessionsActiveTotal.Dec()
	p.sessionSlotCount.DeleteLabelValues(string(sessionID))
	p.sessionPiPCount.DeleteLabelValues(string(sessionID))
}

func (p *PrometheusCollector) RecordInputConnected() {
	p.inputConnections.Inc()
}

func (p *PrometheusCollector) RecordInputDisconnected() {
	p.inputConnections.Dec()
}

func (p *PrometheusCollector) RecordOperation(operation string, rejected bool, duration time.Duration) {
	result := "ok"
	if rejected {
		result = "rejected"
	}
	p.operationsTotal.WithLabelValues(operation, result).Inc()
	p.operationDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordIntent(intent domain.IntentType) {
	p.intentsTotal.WithLabelValues(string(intent)).Inc()
}

func (p *PrometheusCollector) RecordSnapshotSaved() {
	p.snapshotsSavedTotal.Inc()
}

func (p *PrometheusCollector) RecordGestureDuration(duration time.Duration) {
	p.gestureDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) UpdateSessionLayout(sessionID domain.SessionID, state *domain.LayoutState, pip *domain.PiPState) {
	p.sessionSlotCount.WithLabelValues(string(sessionID)).Set(float64(len(state.Slots)))
	p.sessionPiPCount.WithLabelValues(string(sessionID)).Set(float64(len(pip.Slots)))
}
