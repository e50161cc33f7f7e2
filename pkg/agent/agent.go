// Package agent provides the agent lifecycle wrapper, strategy catalog, and
// Context-Aware Agent decision protocol. Agents plug into the registry
// (pkg/registry) by implementing the Agent interface; a ContextAwareAgent
// is the base every concrete role agent (QA, architect, developer, ...)
// embeds.
package agent

import (
	"context"

	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// Agent is the contract the registry and orchestrator depend on. Concrete
// role agents (HR, finance, coding, QA, ...) are out of scope here — only
// this interface is specified (see purpose & scope).
type Agent interface {
	ID() string
	CanHandle(t *task.Task) bool
	// Execute never returns a non-nil error for an agent-level failure —
	// those are converted into a TaskResult{Success: false}. A non-nil
	// error return is reserved for infrastructure failures with no
	// meaningful result (none occur in this package's own agents, but the
	// interface leaves room for one that does I/O of its own).
	Execute(ctx context.Context, t *task.Task) (*task.TaskResult, error)
}

// Status is the agent's own lifecycle state, distinct from the registry's
// AgentInfo.Status (which the registry owns for scheduling purposes).
type Status string

// Recognized states. idle -> busy -> idle on success; busy -> error on an
// unhandled failure; the next Initialize resets error -> idle; offline
// after Shutdown.
const (
	StatusIdle    Status = "idle"
	StatusBusy    Status = "busy"
	StatusError   Status = "error"
	StatusOffline Status = "offline"
)
