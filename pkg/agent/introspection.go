package agent

import "fmt"

// AwarenessStats summarizes how context has shaped an agent's strategy
// choices over its lifetime: a distribution over strategy tags plus
// averages across every recorded decision.
type AwarenessStats struct {
	StrategyCounts       map[string]int
	AverageQualityTarget float64
	AverageSpeedFactor   float64
	DecisionCount        int
}

// GetDecisionHistory returns immutable copies of every decision ever
// recorded for this agent, oldest first.
func (a *ContextAwareAgent) GetDecisionHistory() []ContextualDecision {
	a.decisionsMu.Lock()
	defer a.decisionsMu.Unlock()
	out := make([]ContextualDecision, len(a.decisions))
	copy(out, a.decisions)
	for i := range out {
		if out[i].ContextSnapshot != nil {
			out[i].ContextSnapshot = out[i].ContextSnapshot.Clone()
		}
	}
	return out
}

// GetCurrentStrategy returns the strategy of the most recent in-flight or
// last-completed task, and false if no decision has been made yet.
func (a *ContextAwareAgent) GetCurrentStrategy() (DecisionStrategy, bool) {
	a.decisionsMu.Lock()
	defer a.decisionsMu.Unlock()
	if a.currentStrategy == nil {
		return DecisionStrategy{}, false
	}
	return *a.currentStrategy, true
}

// ExplainCurrentDecision composes a single-line human-readable string from
// the current strategy's tag, rationale, quality target, and speed
// factor.
func (a *ContextAwareAgent) ExplainCurrentDecision() string {
	strategy, ok := a.GetCurrentStrategy()
	if !ok {
		return "no decision has been made yet"
	}
	return fmt.Sprintf("%s: %s (quality_target=%.2f, speed_factor=%.2f)",
		strategy.Tag, strategy.Rationale, strategy.QualityTarget, strategy.SpeedFactor)
}

// GetContextAwarenessStats returns a distribution over strategy tags and
// averages across every decision this agent has made.
func (a *ContextAwareAgent) GetContextAwarenessStats() AwarenessStats {
	a.decisionsMu.Lock()
	defer a.decisionsMu.Unlock()

	stats := AwarenessStats{StrategyCounts: map[string]int{}}
	if len(a.decisions) == 0 {
		return stats
	}

	var sumQuality, sumSpeed float64
	for _, d := range a.decisions {
		stats.StrategyCounts[d.Strategy.Tag]++
		sumQuality += d.Strategy.QualityTarget
		sumSpeed += d.Strategy.SpeedFactor
	}
	stats.DecisionCount = len(a.decisions)
	stats.AverageQualityTarget = sumQuality / float64(stats.DecisionCount)
	stats.AverageSpeedFactor = sumSpeed / float64(stats.DecisionCount)
	return stats
}
