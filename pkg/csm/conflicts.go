package csm

import (
	"fmt"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
)

// qualityMismatchThreshold is the max-min spread above which quality
// targets across proposals are considered in conflict.
const qualityMismatchThreshold = 0.3

// detectConflicts is a pure function: no side effects, no deduplication
// across calls (per design note, callers decide how to react to repeats).
func detectConflicts(ctx *projectcontext.ProjectContext, proposals []DecisionProposal) []Conflict {
	var conflicts []Conflict

	if ctx == nil || len(proposals) < 2 {
		return conflicts
	}

	var sumResource, sumTime float64
	var qualityTargets []float64
	for _, p := range proposals {
		sumResource += p.ResourceDemand
		sumTime += p.EstimatedTimeDays
		if p.QualityTarget != nil {
			qualityTargets = append(qualityTargets, *p.QualityTarget)
		}
	}

	if sumResource > 1.0 {
		conflicts = append(conflicts, Conflict{
			Kind:        ConflictResource,
			Severity:    SeverityHigh,
			Description: fmt.Sprintf("proposed resource demand totals %.2f, exceeding capacity by %.2f", sumResource, sumResource-1.0),
			Suggestion:  "reprioritize proposals or reduce resource demand before committing",
		})
	}

	daysToDeadline := ctx.DaysUntilDeadline()
	if sumTime > daysToDeadline {
		conflicts = append(conflicts, Conflict{
			Kind:        ConflictTimeline,
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("proposed effort totals %.1f days against %.1f days remaining to deadline", sumTime, daysToDeadline),
			Suggestion:  "parallelize independent work, descope, or move the deadline",
		})
	}

	if len(qualityTargets) > 0 {
		min, max := qualityTargets[0], qualityTargets[0]
		for _, q := range qualityTargets[1:] {
			if q < min {
				min = q
			}
			if q > max {
				max = q
			}
		}
		if max-min > qualityMismatchThreshold {
			conflicts = append(conflicts, Conflict{
				Kind:        ConflictQuality,
				Severity:    SeverityMedium,
				Description: fmt.Sprintf("quality targets range from %.2f to %.2f across proposals", min, max),
				Suggestion:  "align on a single quality bar before work starts",
			})
		}
	}

	return conflicts
}
