package csm

import (
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
)

// Event is what subscribers receive on registration and on every committed
// update. FieldUpdatesSummary lists the field-update keys, not their
// values — subscribers that need the new value call Get.
type Event struct {
	Kind                string
	ProjectID           string
	FieldUpdatesSummary []string
	NewVersion          int
	At                  time.Time
}

// Event kinds.
const (
	EventRegistered = "registered"
	EventUpdated    = "updated"
)

// SuggestedStrategy is the output of the table-driven dominant-priority ×
// agent-category lookup.
type SuggestedStrategy struct {
	Type      string
	Rationale string
}

// QualityConstraints are the coverage/quality/performance/security targets
// a context-aware agent should hold itself to for the current context.
type QualityConstraints struct {
	MinTestCoverage         float64
	CodeQualityThreshold    float64
	PerformanceRequirements string
	SecurityRequirements    string
}

// ResourceConstraints restates the context's constraints and budget in the
// shape a strategy-selection function consumes directly.
type ResourceConstraints struct {
	Timeline           string
	TeamCapacity       string
	BudgetRemaining    float64
	TechnicalExpertise []string
	TimePressure       projectcontext.Level
}

// Recommendations is the bundle returned by Manager.Recommendations.
type Recommendations struct {
	ProjectPhase        projectcontext.LifecyclePhase
	DominantPriority    projectcontext.Priority
	TimePressure        projectcontext.Level
	SuggestedStrategy   SuggestedStrategy
	QualityConstraints  QualityConstraints
	ResourceConstraints ResourceConstraints
}

// DecisionProposal is one candidate decision submitted for conflict
// evaluation. QualityTarget is optional — nil means "not specified", and
// proposals without one are excluded from the quality-mismatch check.
type DecisionProposal struct {
	AgentID           string
	EstimatedTimeDays float64
	ResourceDemand    float64
	QualityTarget     *float64
}

// Severity grades a detected conflict.
type Severity string

// Recognized severities.
const (
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityMedium   Severity = "medium"
)

// Conflict describes one detected cross-proposal problem.
type Conflict struct {
	Kind        string
	Severity    Severity
	Description string
	Suggestion  string
}

// Conflict kinds.
const (
	ConflictResource = "resource_conflict"
	ConflictTimeline = "time_overlap"
	ConflictQuality  = "quality_mismatch"
)

// Status is a point-in-time counters snapshot, safe to read without
// blocking a concurrent write.
type Status struct {
	TotalQueries    uint64
	CacheHits       uint64
	TotalUpdates    uint64
	ActiveContexts  int
	CachedContexts  int
	SubscriberCount int
}
