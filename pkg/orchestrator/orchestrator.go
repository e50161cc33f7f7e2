// Package orchestrator is the task orchestrator (C7): workflow DAG
// creation, the 1-second execution loop that advances ready steps through
// the registry, and the single-shot task API that bypasses workflow
// machinery entirely. Grounded on the teacher's
// pkg/agent/orchestrator.SubAgentRunner — a map of in-flight executions
// guarded by a mutex, goroutine-per-unit-of-work dispatch bounded by a
// concurrency limit, and explicit Start/Stop lifecycle — generalized from
// "sub-agents within one session" to "steps within any running workflow".
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/registry"
	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// DefaultTickInterval is the execution loop's scheduling tick, per §5.
const DefaultTickInterval = 1 * time.Second

// Default retry backoff bounds for a failed step's re-attempt spacing.
const (
	defaultRetryInitialInterval = 2 * time.Second
	defaultRetryMaxInterval     = 30 * time.Second
)

// Orchestrator owns the workflow map and drives its single execution
// loop. Step dispatch is delegated to the registry; the orchestrator
// itself holds no agents.
type Orchestrator struct {
	mu        sync.RWMutex
	workflows map[string]*Workflow
	registry  *registry.Registry
	logger    *slog.Logger
	metrics   *metrics

	tickInterval         time.Duration
	retryInitialInterval time.Duration
	retryMaxInterval     time.Duration
	stopCh               chan struct{}
	stopOnce             sync.Once
	wg                   sync.WaitGroup
	started              bool
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithTickInterval overrides the default 1-second execution loop tick.
func WithTickInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.tickInterval = d }
}

// WithRetryBackoff overrides the default exponential backoff bounds used
// to space out retriable step failures.
func WithRetryBackoff(initial, maxInterval time.Duration) Option {
	return func(o *Orchestrator) { o.retryInitialInterval, o.retryMaxInterval = initial, maxInterval }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New builds an Orchestrator dispatching through reg.
func New(reg *registry.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		workflows:            make(map[string]*Workflow),
		registry:             reg,
		logger:               slog.Default(),
		metrics:              newMetrics(),
		tickInterval:         DefaultTickInterval,
		retryInitialInterval: defaultRetryInitialInterval,
		retryMaxInterval:     defaultRetryMaxInterval,
		stopCh:               make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start spawns the execution loop goroutine. Safe to call once; a second
// call is a no-op.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()

	o.wg.Add(1)
	go o.runLoop(ctx)
}

// Stop signals the execution loop to exit and waits for it to finish any
// in-flight tick.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stopCh) })
	o.wg.Wait()
}

func (o *Orchestrator) runLoop(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(o.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

// ExecuteSingleTask wraps the inputs in a task.Task and calls the
// registry directly, bypassing the workflow machinery entirely.
func (o *Orchestrator) ExecuteSingleTask(ctx context.Context, description string, data map[string]any, capabilities []string, priority task.Priority, preferredAgentID string) *task.TaskResult {
	taskContext := map[string]any{}
	if len(capabilities) > 0 {
		taskContext["required_capabilities"] = capabilities
	}
	t := task.New(description, data, priority, taskContext)
	return o.registry.ExecuteTask(ctx, t, preferredAgentID)
}
