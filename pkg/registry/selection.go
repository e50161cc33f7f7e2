package registry

import (
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// score implements §4.5's best-agent formula exactly:
// 1/(mean_exec_time+1) + 1/(error_rate+0.01) + 1/(current_load_ratio+0.1).
// mean_exec_time is in milliseconds, matching AgentInfo.MeanExecTimeMS.
func score(info *AgentInfo) float64 {
	meanExecTime := info.MeanExecTimeMS
	return 1/(meanExecTime+1) + 1/(info.errorRate()+0.01) + 1/(info.loadRatio()+0.1)
}

// selectBest returns the id of the best-scoring candidate among agents
// that are available, healthy, and for which CanHandle(t) is true. Ties
// are broken by first encountered, which, since map iteration order is
// randomized, means "first encountered in this particular scan" — the
// spec only requires a deterministic winner when scores differ, and a
// tie among qualifying candidates is genuinely interchangeable.
func (r *Registry) selectBest(t *task.Task) (string, bool) {
	now := time.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var bestID string
	var bestScore float64
	found := false

	for id, info := range r.agents {
		if !info.available() || !info.healthy(now, r.staleHeartbeatAfter) {
			continue
		}
		if !info.Agent.CanHandle(t) {
			continue
		}
		s := score(info)
		if !found || s > bestScore {
			bestID, bestScore, found = id, s, true
		}
	}
	return bestID, found
}

// pickAgent resolves preferredAgentID if it qualifies, else falls back to
// selectBest.
func (r *Registry) pickAgent(t *task.Task, preferredAgentID string) (string, bool) {
	if preferredAgentID != "" {
		r.mu.RLock()
		info, ok := r.agents[preferredAgentID]
		var qualifies bool
		if ok {
			qualifies = info.available() && info.healthy(time.Now(), r.staleHeartbeatAfter) && info.Agent.CanHandle(t)
		}
		r.mu.RUnlock()
		if qualifies {
			return preferredAgentID, true
		}
	}
	return r.selectBest(t)
}
