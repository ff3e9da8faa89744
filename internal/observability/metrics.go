package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// simulation service.
type Metrics struct {
	TicksTotal      prometheus.Counter
	FramesBroadcast prometheus.Counter
	StreamRunning   prometheus.Gauge
	Subscribers     prometheus.Gauge

	// Hazard orchestration metrics.
	HazardsTriggered  *prometheus.CounterVec // label: kind={rockfall,rainfall,landslide}
	TriggerRejections prometheus.Counter

	// Simulation internals surfaced for alerting on misbehavior.
	InvariantClamps  prometheus.Gauge
	AutonomousStarts prometheus.Gauge
	TickDuration     prometheus.Histogram

	// Kafka frame publishing metrics.
	KafkaPublishErrors prometheus.Counter
	KafkaEnabled       prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rockfall_sim",
			Name:      "ticks_total",
			Help:      "Total simulation ticks advanced.",
		}),
		FramesBroadcast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rockfall_sim",
			Name:      "frames_broadcast_total",
			Help:      "Total frames delivered to at least one subscriber.",
		}),
		StreamRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rockfall_sim",
			Name:      "stream_running",
			Help:      "1 when the tick loop is active, 0 when shut down.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rockfall_sim",
			Name:      "subscribers",
			Help:      "Current number of live frame subscribers.",
		}),
		HazardsTriggered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rockfall_sim",
			Name:      "hazards_triggered_total",
			Help:      "Accepted hazard triggers by kind.",
		}, []string{"kind"}),
		TriggerRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rockfall_sim",
			Name:      "trigger_rejections_total",
			Help:      "Hazard triggers rejected for invalid kind or duration.",
		}),
		InvariantClamps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rockfall_sim",
			Name:      "invariant_clamps",
			Help:      "Cumulative defensive clamps inside the simulation.",
		}),
		AutonomousStarts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rockfall_sim",
			Name:      "autonomous_starts",
			Help:      "Cumulative spontaneous events started by the schedulers.",
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rockfall_sim",
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent computing one simulation tick.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		KafkaPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rockfall_sim",
			Name:      "kafka_publish_errors_total",
			Help:      "Frame publishes that failed to reach the sink topic.",
		}),
		KafkaEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rockfall_sim",
			Name:      "kafka_enabled",
			Help:      "1 when frame publishing to Kafka is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.FramesBroadcast,
		m.StreamRunning,
		m.Subscribers,
		m.HazardsTriggered,
		m.TriggerRejections,
		m.InvariantClamps,
		m.AutonomousStarts,
		m.TickDuration,
		m.KafkaPublishErrors,
		m.KafkaEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		TicksTotal:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rockfall_sim", Name: "ticks_total"}),
		FramesBroadcast:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rockfall_sim", Name: "frames_broadcast_total"}),
		StreamRunning:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rockfall_sim", Name: "stream_running"}),
		Subscribers:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rockfall_sim", Name: "subscribers"}),
		HazardsTriggered:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rockfall_sim", Name: "hazards_triggered_total"}, []string{"kind"}),
		TriggerRejections:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rockfall_sim", Name: "trigger_rejections_total"}),
		InvariantClamps:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rockfall_sim", Name: "invariant_clamps"}),
		AutonomousStarts:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rockfall_sim", Name: "autonomous_starts"}),
		TickDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rockfall_sim", Name: "tick_duration_seconds"}),
		KafkaPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rockfall_sim", Name: "kafka_publish_errors_total"}),
		KafkaEnabled:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rockfall_sim", Name: "kafka_enabled"}),
	}
}
