package agent

import (
	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// baseTimeForPriority returns the base estimate in days before it is
// divided by the strategy's speed factor.
func baseTimeForPriority(p task.Priority) float64 {
	switch p {
	case task.PriorityUrgent:
		return 0.5
	case task.PriorityHigh:
		return 1.0
	case task.PriorityMedium:
		return 2.0
	default: // PriorityLow and any unrecognized value
		return 3.0
	}
}

const criticalResourceMultiplier = 1.2
const criticalTimeMultiplier = 0.8

// estimate implements step 5 of the decision protocol: base time from task
// priority divided by speed_factor; base resource 0.5 scaled by
// resource_intensity, multiplied by 1.2 under critical time pressure and
// clamped to [0,1]; time multiplied by 0.8 under critical time pressure.
func estimate(priority task.Priority, strategy DecisionStrategy, projCtx *projectcontext.ProjectContext) (timeDays, resourceDemand float64) {
	timeDays = baseTimeForPriority(priority) / strategy.SpeedFactor
	resourceDemand = 0.5 * strategy.ResourceIntensity

	pressure := projectcontext.LevelLow
	if projCtx != nil {
		pressure = projCtx.TimePressureLevel()
	}
	if pressure == projectcontext.LevelCritical {
		resourceDemand *= criticalResourceMultiplier
		timeDays *= criticalTimeMultiplier
	}

	switch {
	case resourceDemand > 1:
		resourceDemand = 1
	case resourceDemand < 0:
		resourceDemand = 0
	}
	return timeDays, resourceDemand
}

// buildRisksAndDependencies implements step 6: speed-optimized strategies
// carry reduced-coverage/tech-debt risks; a compliance tag adds a security
// reviewer dependency; critical tech debt adds a remediation-followup risk.
func buildRisksAndDependencies(strategy DecisionStrategy, projCtx *projectcontext.ProjectContext) (risks, dependencies []string) {
	if strategy.SpeedFactor > 1.0 {
		risks = append(risks,
			"reduced test coverage due to a speed-optimized strategy",
			"potential tech-debt accumulation from shortened timelines")
	}
	if projCtx != nil {
		if projCtx.TechDebt.IsCritical() {
			risks = append(risks, "tech debt is near its threshold; this work may need follow-up remediation")
		}
		if len(projCtx.Constraints.ComplianceTags) > 0 {
			dependencies = append(dependencies, "security-reviewer sign-off")
		}
	}
	return risks, dependencies
}
