package registry

import (
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/agent"
)

// AgentInfo is the registry's own bookkeeping record for a registered
// agent: scheduling-relevant status and load, separate from whatever
// internal lifecycle state the agent tracks about itself (§3's ownership
// rule — the registry exclusively owns the agent map and indices; the
// agent owns its own decision history). Status here only ever takes
// StatusIdle or StatusError: idle means "eligible, modulo capacity",
// error means the health loop found a stale heartbeat. A busy agent is
// still idle in this sense — capacity is governed by CurrentTaskCount
// vs. MaxConcurrentTask, not by a binary busy flag, since one agent may
// run several tasks concurrently up to its limit.
type AgentInfo struct {
	Agent             agent.Agent
	Capabilities      []string
	AgentType         string
	Status            agent.Status
	MaxConcurrentTask int
	CurrentTaskCount  int
	TotalCompleted    int
	TotalErrors       int
	MeanExecTimeMS    float64
	LastHeartbeat     time.Time
}

func (i *AgentInfo) errorRate() float64 {
	return float64(i.TotalErrors) / float64(maxInt(i.TotalCompleted, 1))
}

func (i *AgentInfo) loadRatio() float64 {
	maxConcurrent := i.MaxConcurrentTask
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return float64(i.CurrentTaskCount) / float64(maxConcurrent)
}

func (i *AgentInfo) available() bool {
	return i.Status != agent.StatusError && i.Status != agent.StatusOffline && i.CurrentTaskCount < i.MaxConcurrentTask
}

func (i *AgentInfo) healthy(now time.Time, staleAfter time.Duration) bool {
	return now.Sub(i.LastHeartbeat) <= staleAfter
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Snapshot is a read-only copy of an AgentInfo returned to callers,
// decoupled from the registry's internal pointer so mutation of the
// returned value never leaks back into the registry.
type Snapshot struct {
	AgentID           string
	Capabilities      []string
	AgentType         string
	Status            agent.Status
	MaxConcurrentTask int
	CurrentTaskCount  int
	TotalCompleted    int
	TotalErrors       int
	MeanExecTimeMS    float64
	LastHeartbeat     time.Time
}
