package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// workBody is the per-agent-kind execution logic a BaseAgent wraps with the
// lifecycle described in the component design: timestamp start, set busy,
// call the work body, attach execution time, append to history, reset
// state. Any panic or error is converted into a structured failure result
// rather than propagating — see Execute.
type workBody func(ctx context.Context, t *task.Task) (*task.TaskResult, error)

// BaseAgent is the common lifecycle wrapper every concrete agent embeds.
// It never itself decides what to do with a task; that is the work body's
// job (ContextAwareAgent.decide, in this package).
type BaseAgent struct {
	id      string
	tracker *statusTracker
	body    workBody
}

func newBaseAgent(id string, body workBody) *BaseAgent {
	return &BaseAgent{id: id, tracker: newStatusTracker(), body: body}
}

// ID returns the agent's stable identity.
func (b *BaseAgent) ID() string { return b.id }

// Status returns the agent's current lifecycle state.
func (b *BaseAgent) Status() Status { return b.tracker.Status() }

// History returns immutable copies of every TaskResult the wrapper has
// ever produced for this agent, oldest first.
func (b *BaseAgent) History() []task.TaskResult { return b.tracker.History() }

// Initialize resets an error state back to idle and is where a concrete
// agent typically also (re)subscribes to the CSM — see
// ContextAwareAgent.Initialize.
func (b *BaseAgent) Initialize() { b.tracker.initialize() }

// Shutdown transitions the agent to offline.
func (b *BaseAgent) Shutdown() { b.tracker.shutdown() }

// Execute is the lifecycle wrapper. It always returns a non-nil result and
// a nil error — an agent-level failure surfaces as
// TaskResult{Success: false}, never as a returned error, so callers never
// need a second failure path to check.
func (b *BaseAgent) Execute(ctx context.Context, t *task.Task) (*task.TaskResult, error) {
	b.tracker.setBusy()
	start := time.Now()
	result, err := b.safeInvoke(ctx, t)
	elapsed := time.Since(start)

	switch {
	case err != nil:
		result = &task.TaskResult{TaskID: t.ID, Success: false, Error: err.Error(), Duration: elapsed}
		b.tracker.setError()
	case result == nil:
		// Defensive: a nil result without an error means a programming bug
		// in the work body, not a legitimate outcome.
		result = &task.TaskResult{TaskID: t.ID, Success: false, Error: "agent returned a nil result", Duration: elapsed}
		b.tracker.setError()
	default:
		result.Duration = elapsed
		b.tracker.setIdle()
	}

	b.tracker.appendHistory(*result)
	return result, nil
}

func (b *BaseAgent) safeInvoke(ctx context.Context, t *task.Task) (res *task.TaskResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("agent panicked: %v", r)
		}
	}()
	return b.body(ctx, t)
}
