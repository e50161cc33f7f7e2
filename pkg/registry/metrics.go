package registry

import "github.com/prometheus/client_golang/prometheus"

// metrics mirrors the CSM's pattern: a private prometheus.Registry so
// collector names never collide across package instances in tests, with
// prometheus collectors as the backing instrument for /metrics and plain
// Go fields (read by the caller through Status-like accessors, here kept
// minimal since the registry's own public contract is the Snapshot/Get
// API rather than an aggregate status struct) incremented alongside.
type metrics struct {
	registry          *prometheus.Registry
	tasksDispatched   prometheus.Counter
	tasksErrored      prometheus.Counter
	noAgentsAvailable prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		tasksDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_registry_tasks_dispatched_total",
			Help: "Total tasks that completed successfully through the registry.",
		}),
		tasksErrored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_registry_tasks_errored_total",
			Help: "Total tasks that failed through the registry.",
		}),
		noAgentsAvailable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_registry_no_agent_available_total",
			Help: "Total ExecuteTask calls that found no qualifying agent.",
		}),
	}
	reg.MustRegister(m.tasksDispatched, m.tasksErrored, m.noAgentsAvailable)
	return m
}

func (m *metrics) recordTaskDispatched()   { m.tasksDispatched.Inc() }
func (m *metrics) recordTaskError()        { m.tasksErrored.Inc() }
func (m *metrics) recordNoAgentAvailable() { m.noAgentsAvailable.Inc() }
