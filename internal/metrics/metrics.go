// Package metrics exposes the Prometheus instrumentation for the segment
// cache subsystem: manager queue depth, provider call latency, timeouts
// and rollup activity, so operators can observe the actor loop the same
// way the rest of this codebase's ambient stack relies on
// prometheus/client_golang for runtime visibility.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles every collector this subsystem registers. Construct
// one with New and register it with a prometheus.Registerer; the zero
// value is not usable.
type Metrics struct {
	QueueDepth       prometheus.Gauge
	CommandsTotal    *prometheus.CounterVec
	EventsTotal      *prometheus.CounterVec
	ProviderCalls    *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec
	ProviderTimeouts *prometheus.CounterVec
	RollupsTotal     prometheus.Counter
	IndexHeaders     prometheus.Gauge
	EvictionsTotal   prometheus.Counter
}

// New builds a Metrics bundle with the given namespace (e.g. "segcache").
func New(namespace string) *Metrics {
	return &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "manager_queue_depth",
			Help:      "Number of commands and events currently buffered in the manager's actor queue.",
		}),
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manager_commands_total",
			Help:      "Total commands processed by the manager actor loop, by command kind.",
		}, []string{"kind"}),
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manager_events_total",
			Help:      "Total events processed by the manager actor loop, by event kind.",
		}, []string{"kind"}),
		ProviderCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Total calls dispatched to external cache providers, by provider and operation.",
		}, []string{"provider", "operation"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_call_latency_seconds",
			Help:      "Latency of calls dispatched to external cache providers.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		ProviderTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_timeouts_total",
			Help:      "Total provider calls that exceeded their configured timeout budget.",
		}, []string{"provider", "kind"}),
		RollupsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollups_total",
			Help:      "Total successful SegmentBuilder rollups.",
		}),
		IndexHeaders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_headers",
			Help:      "Current number of SegmentHeaders held by the SegmentCacheIndex.",
		}),
		EvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_evictions_total",
			Help:      "Total headers evicted from the SegmentCacheIndex.",
		}),
	}
}

// MustRegister registers every collector in m with reg, panicking on a
// duplicate registration (a programmer error, matching
// prometheus.MustRegister's own convention).
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		m.QueueDepth,
		m.CommandsTotal,
		m.EventsTotal,
		m.ProviderCalls,
		m.ProviderLatency,
		m.ProviderTimeouts,
		m.RollupsTotal,
		m.IndexHeaders,
		m.EvictionsTotal,
	)
}
