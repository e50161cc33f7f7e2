package csm

import (
	"strings"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
)

// agentCategory buckets an agent id by substring match, per the source
// contract preserved in the design notes: "qa-*" prefix, "system-architect"
// prefix, or any id containing "developer" or "engineer". Anything else
// falls into "generic".
func agentCategory(agentID string) string {
	lower := strings.ToLower(agentID)
	switch {
	case strings.HasPrefix(lower, "qa-"):
		return "qa"
	case strings.HasPrefix(lower, "system-architect"):
		return "architect"
	case strings.Contains(lower, "developer"), strings.Contains(lower, "engineer"):
		return "developer"
	default:
		return "generic"
	}
}

var strategyTable = map[projectcontext.Priority]map[string]SuggestedStrategy{
	projectcontext.PrioritySpeed: {
		"qa":        {Type: "essential_testing", Rationale: "Speed is dominant: cover critical paths only, defer exhaustive edge-case testing."},
		"architect": {Type: "pragmatic_architecture", Rationale: "Speed is dominant: favor proven patterns over novel design exploration."},
		"developer": {Type: "rapid_iteration", Rationale: "Speed is dominant: ship incrementally, refactor once the shape is validated."},
		"generic":   {Type: "fast_delivery", Rationale: "Speed is dominant: minimize process ceremony."},
	},
	projectcontext.PriorityQuality: {
		"qa":        {Type: "comprehensive_testing", Rationale: "Quality is dominant: exhaustive coverage including edge cases and regression suites."},
		"architect": {Type: "robust_architecture", Rationale: "Quality is dominant: invest in resilience, observability, and maintainability."},
		"developer": {Type: "careful_implementation", Rationale: "Quality is dominant: prioritize correctness and review depth over velocity."},
		"generic":   {Type: "quality_first", Rationale: "Quality is dominant: slow down for correctness."},
	},
	projectcontext.PriorityCost: {
		"qa":        {Type: "risk_based_testing", Rationale: "Cost is dominant: concentrate testing effort on the highest-risk areas."},
		"architect": {Type: "cost_conscious_architecture", Rationale: "Cost is dominant: reuse existing infrastructure over new build."},
		"developer": {Type: "efficient_implementation", Rationale: "Cost is dominant: favor low-effort, low-maintenance solutions."},
		"generic":   {Type: "lean_delivery", Rationale: "Cost is dominant: minimize resource spend."},
	},
}

func suggestStrategy(dominant projectcontext.Priority, agentID string) SuggestedStrategy {
	category := agentCategory(agentID)
	byCategory, ok := strategyTable[dominant]
	if !ok {
		return SuggestedStrategy{Type: "balanced", Rationale: "No dominant priority signal; defaulting to a balanced approach."}
	}
	strategy, ok := byCategory[category]
	if !ok {
		return byCategory["generic"]
	}
	return strategy
}

const (
	defaultMinTestCoverage  = 0.6
	defaultQualityThresh    = 7.0
	tightMinTestCoverage    = 0.9
	tightQualityThresh      = 8.5
	looseMinTestCoverage    = 0.5
	looseQualityThresh      = 6.0
	complianceCoverageFloor = 0.8
)

func qualityConstraintsFor(ctx *projectcontext.ProjectContext) QualityConstraints {
	qc := QualityConstraints{
		MinTestCoverage:         defaultMinTestCoverage,
		CodeQualityThreshold:    defaultQualityThresh,
		PerformanceRequirements: "basic",
		SecurityRequirements:    "standard",
	}

	switch ctx.DominantPriority() {
	case projectcontext.PriorityQuality:
		qc.MinTestCoverage = tightMinTestCoverage
		qc.CodeQualityThreshold = tightQualityThresh
		qc.PerformanceRequirements = "high"
	case projectcontext.PrioritySpeed:
		qc.MinTestCoverage = looseMinTestCoverage
		qc.CodeQualityThreshold = looseQualityThresh
		qc.PerformanceRequirements = "acceptable"
	}

	if len(ctx.Constraints.ComplianceTags) > 0 {
		if qc.MinTestCoverage < complianceCoverageFloor {
			qc.MinTestCoverage = complianceCoverageFloor
		}
		qc.SecurityRequirements = "strict"
	}

	return qc
}

func resourceConstraintsFor(ctx *projectcontext.ProjectContext) ResourceConstraints {
	return ResourceConstraints{
		Timeline:           ctx.Constraints.Timeline,
		TeamCapacity:       ctx.Constraints.TeamCapacity,
		BudgetRemaining:    ctx.BudgetRemaining,
		TechnicalExpertise: append([]string(nil), ctx.Constraints.TechnicalExpertise...),
		TimePressure:       ctx.TimePressureLevel(),
	}
}

func buildRecommendations(ctx *projectcontext.ProjectContext, agentID string) *Recommendations {
	dominant := ctx.DominantPriority()
	return &Recommendations{
		ProjectPhase:        ctx.LifecyclePhase,
		DominantPriority:    dominant,
		TimePressure:        ctx.TimePressureLevel(),
		SuggestedStrategy:   suggestStrategy(dominant, agentID),
		QualityConstraints:  qualityConstraintsFor(ctx),
		ResourceConstraints: resourceConstraintsFor(ctx),
	}
}
