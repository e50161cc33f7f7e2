package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/coordination-core/pkg/csm"
	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// StrategySelector is the pure extension point of the decision protocol:
// pick a base strategy from the catalog and adjust its parameters by
// context. Implementations must not mutate the catalog entries they read.
type StrategySelector interface {
	SelectStrategy(projCtx *projectcontext.ProjectContext, t *task.Task, rec *csm.Recommendations) DecisionStrategy
}

// StrategyExecutor is the impure extension point: the agent-specific work
// body, given the chosen strategy and (possibly nil, for fallback) context.
type StrategyExecutor interface {
	ExecuteWithStrategy(ctx context.Context, t *task.Task, strategy DecisionStrategy, projCtx *projectcontext.ProjectContext) (*task.TaskResult, error)
}

// ContextAwareAgent is the base every concrete role agent embeds. It
// implements the Agent interface via BaseAgent, with the work body being
// the full decision protocol: resolve project, fetch context +
// recommendations, select and adjust a strategy, estimate effort, build
// risks/dependencies, record a ContextualDecision, execute, attach
// provenance.
type ContextAwareAgent struct {
	*BaseAgent

	csm              *csm.Manager
	defaultProjectID string
	capabilities     []string
	catalog          StrategyCatalog
	selector         StrategySelector
	executor         StrategyExecutor
	logger           *slog.Logger

	decisionsMu     sync.Mutex
	decisions       []ContextualDecision
	currentStrategy *DecisionStrategy

	sub *csm.Subscription
}

// NewContextAwareAgent builds an agent over the given CSM, capability
// set, strategy catalog, and selector/executor extension points.
// defaultProjectID is used when a task carries no project_id of its own;
// leave empty to always require one.
func NewContextAwareAgent(
	id string,
	manager *csm.Manager,
	defaultProjectID string,
	capabilities []string,
	catalog StrategyCatalog,
	selector StrategySelector,
	executor StrategyExecutor,
) *ContextAwareAgent {
	a := &ContextAwareAgent{
		csm:              manager,
		defaultProjectID: defaultProjectID,
		capabilities:     append([]string(nil), capabilities...),
		catalog:          catalog,
		selector:         selector,
		executor:         executor,
		logger:           slog.With("agent_id", id),
	}
	a.BaseAgent = newBaseAgent(id, a.decide)
	return a
}

// Initialize resets lifecycle state and subscribes to the CSM, per
// "every context-aware agent subscribes to the CSM on initialize".
func (a *ContextAwareAgent) Initialize() {
	a.BaseAgent.Initialize()
	a.sub = a.csm.Subscribe(a.onContextEvent)
}

// Shutdown unsubscribes from the CSM before transitioning offline.
func (a *ContextAwareAgent) Shutdown() {
	a.csm.Unsubscribe(a.sub)
	a.BaseAgent.Shutdown()
}

// CanHandle is loosely capability-based, per the design notes: if the task
// declares required capabilities, every one of them must be in this
// agent's set; otherwise the task is assumed generic. The registry's
// capability index remains the authoritative filter upstream of this call.
func (a *ContextAwareAgent) CanHandle(t *task.Task) bool {
	required, _ := t.Context["required_capabilities"].([]string)
	if len(required) == 0 {
		return true
	}
	have := make(map[string]bool, len(a.capabilities))
	for _, c := range a.capabilities {
		have[c] = true
	}
	for _, r := range required {
		if !have[r] {
			return false
		}
	}
	return true
}

func (a *ContextAwareAgent) onContextEvent(evt csm.Event) {
	a.decisionsMu.Lock()
	haveInFlight := a.currentStrategy != nil
	a.decisionsMu.Unlock()
	if !haveInFlight {
		return
	}
	// Whether this event actually concerns an in-flight task is
	// agent-specific; the base framework never preempts running work, it
	// only logs the intent so a concrete agent can act on it if it wants to.
	a.logger.Info("context updated while a strategy is in flight; will reconsider on next task",
		"project_id", evt.ProjectID, "event_kind", evt.Kind, "new_version", evt.NewVersion)
}

// decide is the work body BaseAgent.Execute wraps. It implements the
// decision protocol's steps 1-9.
func (a *ContextAwareAgent) decide(ctx context.Context, t *task.Task) (*task.TaskResult, error) {
	projectID, hasProject := t.ProjectID()
	if !hasProject && a.defaultProjectID != "" {
		projectID, hasProject = a.defaultProjectID, true
	}

	var projCtx *projectcontext.ProjectContext
	var rec *csm.Recommendations
	if hasProject {
		if c, ok := a.csm.Get(projectID); ok {
			projCtx = c
			if r, err := a.csm.Recommendations(projectID, a.ID()); err == nil {
				rec = r
			}
		}
	}

	if projCtx == nil {
		return a.executeFallback(ctx, t)
	}

	strategy := a.selector.SelectStrategy(projCtx, t, rec)
	timeDays, resourceDemand := estimate(t.Priority, strategy, projCtx)
	risks, deps := buildRisksAndDependencies(strategy, projCtx)

	decision := ContextualDecision{
		ID:                uuid.NewString(),
		AgentID:           a.ID(),
		TaskID:            t.ID,
		Strategy:          strategy,
		ContextSnapshot:   projCtx.Clone(),
		EstimatedTimeDays: timeDays,
		ResourceDemand:    resourceDemand,
		Dependencies:      deps,
		Risks:             risks,
		CreatedAt:         time.Now(),
	}
	a.recordDecision(decision)

	result, err := a.executor.ExecuteWithStrategy(ctx, t, strategy, projCtx)
	if err != nil {
		return nil, err
	}
	attachProvenance(result, decision, projCtx.Version)
	return result, nil
}

// executeFallback implements §4.3 "fallback execution": a balanced default
// strategy, context snapshot marked absent, work must still complete.
func (a *ContextAwareAgent) executeFallback(ctx context.Context, t *task.Task) (*task.TaskResult, error) {
	balanced, ok := a.catalog.Get(BalancedStrategyTag)
	if !ok {
		balanced = defaultBalancedStrategy
	}

	decision := ContextualDecision{
		ID:        uuid.NewString(),
		AgentID:   a.ID(),
		TaskID:    t.ID,
		Strategy:  balanced,
		CreatedAt: time.Now(),
	}
	a.recordDecision(decision)

	result, err := a.executor.ExecuteWithStrategy(ctx, t, balanced, nil)
	if err != nil {
		return nil, err
	}
	attachProvenance(result, decision, 0)
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["context_snapshot"] = "absent"
	return result, nil
}

func attachProvenance(result *task.TaskResult, decision ContextualDecision, contextVersion int) {
	if result == nil {
		return
	}
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["decision_id"] = decision.ID
	result.Metadata["strategy_tag"] = decision.Strategy.Tag
	if decision.ContextSnapshot != nil {
		result.Metadata["context_snapshot_version"] = contextVersion
	}
}

func (a *ContextAwareAgent) recordDecision(d ContextualDecision) {
	a.decisionsMu.Lock()
	a.decisions = append(a.decisions, d)
	strategy := d.Strategy
	a.currentStrategy = &strategy
	a.decisionsMu.Unlock()
}
