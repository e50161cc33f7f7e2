package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// metrics mirrors the CSM's and registry's pattern: a private
// prometheus.Registry, collectors as the /metrics backing instrument.
type metrics struct {
	registry        *prometheus.Registry
	stepsDispatched prometheus.Counter
	stepsRetried    prometheus.Counter
	stepsFailed     prometheus.Counter
	workflowsDone   prometheus.Counter
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	m := &metrics{
		registry: reg,
		stepsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_orchestrator_steps_dispatched_total",
			Help: "Total workflow steps dispatched to the registry.",
		}),
		stepsRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_orchestrator_steps_retried_total",
			Help: "Total workflow step retries scheduled after a retriable failure.",
		}),
		stepsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_orchestrator_steps_failed_total",
			Help: "Total workflow steps that exhausted their retry budget.",
		}),
		workflowsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coordination_orchestrator_workflows_finalized_total",
			Help: "Total workflows finalized as completed or failed.",
		}),
	}
	reg.MustRegister(m.stepsDispatched, m.stepsRetried, m.stepsFailed, m.workflowsDone)
	return m
}

// MetricsRegistry exposes the orchestrator's private prometheus registry
// so a composition root can serve /metrics.
func (o *Orchestrator) MetricsRegistry() *prometheus.Registry { return o.metrics.registry }
