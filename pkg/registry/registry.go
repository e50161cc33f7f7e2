// Package registry is the agent registry (C6): maintains the set of
// registered agents, the capability/type indices selection runs against,
// load/health bookkeeping, and best-agent scoring. Grounded on the
// teacher's queue.WorkerPool: a coarse RWMutex guarding a map plus
// indices, a router-registered handler refreshing liveness, and a
// guaranteed-release finalizer around in-flight load counters.
package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codeready-toolchain/coordination-core/pkg/agent"
	"github.com/codeready-toolchain/coordination-core/pkg/message"
	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// DefaultStaleHeartbeatAfter is the window after which an agent's last
// heartbeat is considered stale for both selection and the health loop,
// absent a WithStaleHeartbeatAfter override.
const DefaultStaleHeartbeatAfter = 5 * time.Minute

// lifecycle is the optional subset of agent.Agent a concrete agent may
// additionally implement; BaseAgent (and therefore ContextAwareAgent)
// does. Register/Unregister call through it when present.
type lifecycle interface {
	Initialize()
	Shutdown()
}

// Registry owns the agent map and its capability/type indices
// exclusively; each agent owns its own decision history.
type Registry struct {
	mu         sync.RWMutex
	agents     map[string]*AgentInfo
	byCap      map[string]map[string]struct{}
	byType     map[string]map[string]struct{}
	router     *message.Router
	logger     *slog.Logger
	metrics    *metrics
	defaultMax int

	staleHeartbeatAfter time.Duration
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithRouter wires a message.Router so registration also installs a
// heartbeat handler for each agent.
func WithRouter(r *message.Router) Option {
	return func(reg *Registry) { reg.router = r }
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(reg *Registry) { reg.logger = l }
}

// WithDefaultMaxConcurrentTasks sets the MaxConcurrentTask used by
// Register when the caller passes zero.
func WithDefaultMaxConcurrentTasks(n int) Option {
	return func(reg *Registry) { reg.defaultMax = n }
}

// WithStaleHeartbeatAfter overrides DefaultStaleHeartbeatAfter.
func WithStaleHeartbeatAfter(d time.Duration) Option {
	return func(reg *Registry) { reg.staleHeartbeatAfter = d }
}

// New builds an empty Registry.
func New(opts ...Option) *Registry {
	reg := &Registry{
		agents:              make(map[string]*AgentInfo),
		byCap:               make(map[string]map[string]struct{}),
		byType:              make(map[string]map[string]struct{}),
		logger:              slog.Default(),
		metrics:             newMetrics(),
		defaultMax:          1,
		staleHeartbeatAfter: DefaultStaleHeartbeatAfter,
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg
}

// MetricsRegistry exposes the registry's private prometheus registry so a
// composition root can serve /metrics.
func (r *Registry) MetricsRegistry() *prometheus.Registry { return r.metrics.registry }

// Register initializes a, stamps an AgentInfo, updates the
// capability/type indices, and installs a router handler (if a router is
// configured) that refreshes the agent's last heartbeat on any heartbeat
// message it receives.
func (r *Registry) Register(a agent.Agent, capabilities []string, agentType string, maxConcurrentTasks int) error {
	if lc, ok := a.(lifecycle); ok {
		lc.Initialize()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.agents[id]; exists {
		return ErrAgentAlreadyRegistered
	}

	maxConcurrent := maxConcurrentTasks
	if maxConcurrent <= 0 {
		maxConcurrent = r.defaultMax
	}

	info := &AgentInfo{
		Agent:             a,
		Capabilities:      append([]string(nil), capabilities...),
		AgentType:         agentType,
		Status:            agent.StatusIdle,
		MaxConcurrentTask: maxConcurrent,
		LastHeartbeat:     time.Now(),
	}
	r.agents[id] = info

	for _, capability := range capabilities {
		if r.byCap[capability] == nil {
			r.byCap[capability] = make(map[string]struct{})
		}
		r.byCap[capability][id] = struct{}{}
	}
	if r.byType[agentType] == nil {
		r.byType[agentType] = make(map[string]struct{})
	}
	r.byType[agentType][id] = struct{}{}

	if r.router != nil {
		r.router.RegisterHandler(id, func(m *message.Message) error {
			if m.Kind == message.KindHeartbeat {
				r.touchHeartbeat(id)
			}
			return nil
		})
	}

	r.logger.Info("agent registered", "agent_id", id, "agent_type", agentType, "capabilities", capabilities)
	return nil
}

// Unregister shuts down agentID, removes it from both indices (dropping a
// now-empty index key), and de-registers its router handler.
func (r *Registry) Unregister(agentID string) error {
	r.mu.Lock()
	info, ok := r.agents[agentID]
	if !ok {
		r.mu.Unlock()
		return ErrAgentNotFound
	}
	delete(r.agents, agentID)

	for _, capability := range info.Capabilities {
		if set, ok := r.byCap[capability]; ok {
			delete(set, agentID)
			if len(set) == 0 {
				delete(r.byCap, capability)
			}
		}
	}
	if set, ok := r.byType[info.AgentType]; ok {
		delete(set, agentID)
		if len(set) == 0 {
			delete(r.byType, info.AgentType)
		}
	}
	r.mu.Unlock()

	if r.router != nil {
		r.router.UnregisterHandler(agentID)
	}
	if lc, ok := info.Agent.(lifecycle); ok {
		lc.Shutdown()
	}

	r.logger.Info("agent unregistered", "agent_id", agentID)
	return nil
}

func (r *Registry) touchHeartbeat(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.agents[agentID]; ok {
		info.LastHeartbeat = time.Now()
	}
}

// Get returns a read-only snapshot of a registered agent's bookkeeping.
func (r *Registry) Get(agentID string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.agents[agentID]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(agentID, info), true
}

// AvailableCapacity sums the remaining task slots across every healthy,
// non-errored agent — the bound the orchestrator's execution loop uses
// for its per-tick parallel dispatch (errgroup.SetLimit).
func (r *Registry) AvailableCapacity() int {
	now := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for _, info := range r.agents {
		if info.Status == agent.StatusError || !info.healthy(now, r.staleHeartbeatAfter) {
			continue
		}
		if remaining := info.MaxConcurrentTask - info.CurrentTaskCount; remaining > 0 {
			total += remaining
		}
	}
	return total
}

func snapshotOf(agentID string, info *AgentInfo) Snapshot {
	return Snapshot{
		AgentID:           agentID,
		Capabilities:      append([]string(nil), info.Capabilities...),
		AgentType:         info.AgentType,
		Status:            info.Status,
		MaxConcurrentTask: info.MaxConcurrentTask,
		CurrentTaskCount:  info.CurrentTaskCount,
		TotalCompleted:    info.TotalCompleted,
		TotalErrors:       info.TotalErrors,
		MeanExecTimeMS:    info.MeanExecTimeMS,
		LastHeartbeat:     info.LastHeartbeat,
	}
}

// ExecuteTask runs t on the preferred agent if available, else the
// best-scoring candidate. Returns a failure TaskResult (not an error) if
// no agent qualifies — per the spec, "no available agent found" is a
// result, not an error path.
func (r *Registry) ExecuteTask(ctx context.Context, t *task.Task, preferredAgentID string) *task.TaskResult {
	agentID, ok := r.pickAgent(t, preferredAgentID)
	if !ok {
		r.metrics.recordNoAgentAvailable()
		return &task.TaskResult{TaskID: t.ID, Success: false, Error: ErrNoAvailableAgent.Error()}
	}

	r.mu.Lock()
	info, ok := r.agents[agentID]
	if !ok {
		r.mu.Unlock()
		return &task.TaskResult{TaskID: t.ID, Success: false, Error: ErrNoAvailableAgent.Error()}
	}
	info.CurrentTaskCount++
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		info.CurrentTaskCount--
		r.mu.Unlock()
	}()

	start := time.Now()
	result, err := info.Agent.Execute(ctx, t)
	elapsed := time.Since(start)

	r.mu.Lock()
	switch {
	case err != nil:
		info.TotalErrors++
		r.metrics.recordTaskError()
	case result == nil || !result.Success:
		info.TotalErrors++
		r.metrics.recordTaskError()
	default:
		info.TotalCompleted++
		info.MeanExecTimeMS = rollingMean(info.MeanExecTimeMS, info.TotalCompleted, float64(elapsed.Milliseconds()))
		r.metrics.recordTaskDispatched()
	}
	r.mu.Unlock()

	switch {
	case err != nil:
		result = &task.TaskResult{TaskID: t.ID, Success: false, Error: err.Error(), Duration: elapsed}
	case result == nil:
		result = &task.TaskResult{TaskID: t.ID, Success: false, Error: "agent returned a nil result", Duration: elapsed}
	}
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["agent_id"] = agentID
	return result
}

// rollingMean folds a new sample into an incremental mean over n samples
// (n includes the new sample).
func rollingMean(prevMean float64, n int, sample float64) float64 {
	if n <= 1 {
		return sample
	}
	return prevMean + (sample-prevMean)/float64(n)
}

// RunHealthSweep marks agents with a heartbeat older than
// staleHeartbeatAfter as errored, so selection excludes them. Meant to be
// driven by an external scheduler (cron, every registry.health_sweep_interval, 30s by default) rather than an
// internally owned goroutine, matching how the CSM exposes SweepCache.
func (r *Registry) RunHealthSweep() int {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	marked := 0
	for id, info := range r.agents {
		if !info.healthy(now, r.staleHeartbeatAfter) && info.Status != agent.StatusError {
			info.Status = agent.StatusError
			marked++
			r.logger.Warn("agent marked unhealthy: stale heartbeat", "agent_id", id, "last_heartbeat", info.LastHeartbeat)
		}
	}
	return marked
}
