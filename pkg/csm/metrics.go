package csm

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics backs Manager.Status() and exposes a prometheus registry for a
// composition root that wants to serve /metrics. The plain Go struct
// returned by Status() stays the public contract (per the spec's status()
// operations); prometheus is the backing instrument, kept in lockstep via
// the same increment call sites, never read back through it — counters
// that must be read synchronously use atomic.Uint64 directly.
type metrics struct {
	registry *prometheus.Registry

	totalQueries atomic.Uint64
	cacheHits    atomic.Uint64
	totalUpdates atomic.Uint64

	queriesCollector prometheus.Counter
	hitsCollector    prometheus.Counter
	updatesCollector prometheus.Counter
	contextsGauge    prometheus.Gauge
	subscriberGauge  prometheus.Gauge
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	m := &metrics{
		registry: registry,
		queriesCollector: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csm_queries_total",
			Help: "Total number of Get calls served by the Context State Manager.",
		}),
		hitsCollector: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csm_cache_hits_total",
			Help: "Total number of Get calls served from the TTL cache.",
		}),
		updatesCollector: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csm_updates_total",
			Help: "Total number of committed Update calls.",
		}),
		contextsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "csm_active_contexts",
			Help: "Number of project contexts currently registered.",
		}),
		subscriberGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "csm_subscribers",
			Help: "Number of live (not yet garbage-collected) subscribers.",
		}),
	}
	registry.MustRegister(m.queriesCollector, m.hitsCollector, m.updatesCollector, m.contextsGauge, m.subscriberGauge)
	return m
}

func (m *metrics) recordQuery(hit bool) {
	m.totalQueries.Add(1)
	m.queriesCollector.Inc()
	if hit {
		m.cacheHits.Add(1)
		m.hitsCollector.Inc()
	}
}

func (m *metrics) recordUpdate() {
	m.totalUpdates.Add(1)
	m.updatesCollector.Inc()
}

func (m *metrics) setActiveContexts(n int) {
	m.contextsGauge.Set(float64(n))
}

func (m *metrics) setSubscriberCount(n int) {
	m.subscriberGauge.Set(float64(n))
}

// Registry exposes the private prometheus registry backing this manager's
// metrics.
func (m *Manager) Registry() *prometheus.Registry {
	return m.metrics.registry
}
