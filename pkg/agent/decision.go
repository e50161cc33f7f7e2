package agent

import (
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
)

// ContextualDecision is one record per (agent, task): the strategy chosen,
// the context snapshot that justified it, and the estimates/risks/
// dependencies derived from it. Appended to the agent's history; never
// mutated afterward.
type ContextualDecision struct {
	ID                string
	AgentID           string
	TaskID            string
	Strategy          DecisionStrategy
	ContextSnapshot   *projectcontext.ProjectContext // nil only for fallback execution
	EstimatedTimeDays float64
	ResourceDemand    float64
	Dependencies      []string
	Risks             []string
	CreatedAt         time.Time
}
