// Package projectcontext defines ProjectContext, the typed and validated
// description of a project's current state that the coordination core reads
// and writes. Values here are immutable once constructed; the only two
// targeted mutators are UpdatePriorityMatrix and UpdateTechDebt — any
// other change goes through the Context State Manager's generic sparse
// updater so cache invalidation and version bumping stay in one place.
package projectcontext

import (
	"fmt"
	"math"
	"time"
)

// PriorityMatrix weighs the three competing delivery priorities. The three
// weights must sum to 1.0 within ±0.01.
type PriorityMatrix struct {
	Speed   float64 `yaml:"speed" json:"speed"`
	Quality float64 `yaml:"quality" json:"quality"`
	Cost    float64 `yaml:"cost" json:"cost"`
}

// Dominant returns the priority with the highest weight. Ties favor Speed,
// then Quality, then Cost — a stable, deterministic tie-break.
func (m PriorityMatrix) Dominant() Priority {
	dominant := PrioritySpeed
	best := m.Speed
	if m.Quality > best {
		dominant, best = PriorityQuality, m.Quality
	}
	if m.Cost > best {
		dominant = PriorityCost
	}
	return dominant
}

func (m PriorityMatrix) validate() error {
	for field, v := range map[string]float64{"speed": m.Speed, "quality": m.Quality, "cost": m.Cost} {
		if v < 0 || v > 1 {
			return NewFieldError("priority_matrix."+field, ErrInvalidRatio)
		}
	}
	sum := m.Speed + m.Quality + m.Cost
	if math.Abs(sum-1.0) > priorityTolerance {
		return NewFieldError("priority_matrix", ErrInvalidPriorityMatrix)
	}
	return nil
}

// Constraints captures the hard limits a project is operating under.
type Constraints struct {
	Timeline           string   `yaml:"timeline" json:"timeline"`
	TeamCapacity       string   `yaml:"team_capacity" json:"team_capacity"`
	TechnicalExpertise []string `yaml:"technical_expertise,omitempty" json:"technical_expertise,omitempty"`
	ComplianceTags     []string `yaml:"compliance_tags,omitempty" json:"compliance_tags,omitempty"`
	BudgetCap          *float64 `yaml:"budget_cap,omitempty" json:"budget_cap,omitempty"`
}

// TechDebt tracks accumulated technical debt against a repayment budget.
type TechDebt struct {
	CurrentLevel    float64  `yaml:"current_level" json:"current_level"`
	MaxThreshold    float64  `yaml:"max_threshold" json:"max_threshold"`
	CriticalAreas   []string `yaml:"critical_areas,omitempty" json:"critical_areas,omitempty"`
	RepaymentBudget float64  `yaml:"repayment_budget" json:"repayment_budget"`
}

// IsCritical reports whether current tech debt exceeds 80% of the threshold.
func (t TechDebt) IsCritical() bool {
	return t.CurrentLevel > techDebtCriticalFraction*t.MaxThreshold
}

// RequiresMandatoryAction reports whether tech debt has crossed the threshold outright.
func (t TechDebt) RequiresMandatoryAction() bool {
	return t.CurrentLevel > t.MaxThreshold
}

func (t TechDebt) validate() error {
	for field, v := range map[string]float64{
		"current_level":    t.CurrentLevel,
		"max_threshold":    t.MaxThreshold,
		"repayment_budget": t.RepaymentBudget,
	} {
		if v < 0 || v > 1 {
			return NewFieldError("tech_debt."+field, ErrInvalidRatio)
		}
	}
	return nil
}

// BusinessContext captures the commercial framing around the project.
type BusinessContext struct {
	UserImpact          Level    `yaml:"user_impact" json:"user_impact"`
	RevenueImpact       Level    `yaml:"revenue_impact" json:"revenue_impact"`
	CompetitivePressure Level    `yaml:"competitive_pressure" json:"competitive_pressure"`
	MarketWindow        string   `yaml:"market_window,omitempty" json:"market_window,omitempty"`
	StakeholderPriority []string `yaml:"stakeholder_priority,omitempty" json:"stakeholder_priority,omitempty"`
}

func (b BusinessContext) validate() error {
	for field, v := range map[string]Level{
		"user_impact":          b.UserImpact,
		"revenue_impact":       b.RevenueImpact,
		"competitive_pressure": b.CompetitivePressure,
	} {
		if !v.IsValid() {
			return NewFieldError("business_context."+field, fmt.Errorf("invalid level %q", v))
		}
	}
	return nil
}

// ProjectContext is the authoritative, validated snapshot of a project's
// current situation. Keyed by ProjectID. Values are immutable — every
// mutation (targeted or sparse via the CSM) produces a new value with a
// bumped Version, never an in-place field write on a shared pointer.
type ProjectContext struct {
	ProjectID       string          `yaml:"project_id" json:"project_id"`
	ProjectName     string          `yaml:"project_name" json:"project_name"`
	LifecyclePhase  LifecyclePhase  `yaml:"lifecycle_phase" json:"lifecycle_phase"`
	Deadline        time.Time       `yaml:"deadline" json:"deadline"`
	BudgetRemaining float64         `yaml:"budget_remaining" json:"budget_remaining"`
	PriorityMatrix  PriorityMatrix  `yaml:"priority_matrix" json:"priority_matrix"`
	Constraints     Constraints     `yaml:"constraints" json:"constraints"`
	TechDebt        TechDebt        `yaml:"tech_debt" json:"tech_debt"`
	BusinessContext BusinessContext `yaml:"business_context" json:"business_context"`

	CreatedAt   time.Time `yaml:"created_at" json:"created_at"`
	LastUpdated time.Time `yaml:"last_updated" json:"last_updated"`
	UpdatedBy   string    `yaml:"updated_by" json:"updated_by"`
	Version     int       `yaml:"version" json:"version"`
}

// New validates and constructs a ProjectContext. Deadline must be strictly
// in the future at construction time only — later reads may find it past
// due, which is expected and handled by TimePressureLevel.
func New(projectID, projectName string, phase LifecyclePhase, deadline time.Time,
	budgetRemaining float64, priorities PriorityMatrix, constraints Constraints,
	techDebt TechDebt, business BusinessContext, updatedBy string) (*ProjectContext, error) {
	if projectID == "" {
		return nil, NewFieldError("project_id", fmt.Errorf("must not be empty"))
	}
	if !phase.IsValid() {
		return nil, NewFieldError("lifecycle_phase", ErrInvalidLifecyclePhase)
	}
	now := time.Now()
	if !deadline.After(now) {
		return nil, NewFieldError("deadline", ErrInvalidDeadline)
	}
	if budgetRemaining < 0 || budgetRemaining > 1 {
		return nil, NewFieldError("budget_remaining", ErrInvalidRatio)
	}
	if err := priorities.validate(); err != nil {
		return nil, err
	}
	if err := techDebt.validate(); err != nil {
		return nil, err
	}
	if err := business.validate(); err != nil {
		return nil, err
	}

	return &ProjectContext{
		ProjectID:       projectID,
		ProjectName:     projectName,
		LifecyclePhase:  phase,
		Deadline:        deadline,
		BudgetRemaining: budgetRemaining,
		PriorityMatrix:  priorities,
		Constraints:     constraints,
		TechDebt:        techDebt,
		BusinessContext: business,
		CreatedAt:       now,
		LastUpdated:     now,
		UpdatedBy:       updatedBy,
		Version:         1,
	}, nil
}

// Validate re-checks the same invariants New enforces, except the
// deadline-must-be-future check, which only applies at construction time —
// a context read later is allowed to have a past-due deadline. Used by the
// Context State Manager to revalidate a candidate after a sparse field
// update has been merged onto a working copy.
func (c *ProjectContext) Validate() error {
	if c.ProjectID == "" {
		return NewFieldError("project_id", fmt.Errorf("must not be empty"))
	}
	if !c.LifecyclePhase.IsValid() {
		return NewFieldError("lifecycle_phase", ErrInvalidLifecyclePhase)
	}
	if c.BudgetRemaining < 0 || c.BudgetRemaining > 1 {
		return NewFieldError("budget_remaining", ErrInvalidRatio)
	}
	if err := c.PriorityMatrix.validate(); err != nil {
		return err
	}
	if err := c.TechDebt.validate(); err != nil {
		return err
	}
	if err := c.BusinessContext.validate(); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep-enough copy safe for independent mutation — slices in
// Constraints/TechDebt/BusinessContext are copied, never shared.
func (c *ProjectContext) Clone() *ProjectContext {
	clone := *c
	clone.Constraints.TechnicalExpertise = append([]string(nil), c.Constraints.TechnicalExpertise...)
	clone.Constraints.ComplianceTags = append([]string(nil), c.Constraints.ComplianceTags...)
	if c.Constraints.BudgetCap != nil {
		cap := *c.Constraints.BudgetCap
		clone.Constraints.BudgetCap = &cap
	}
	clone.TechDebt.CriticalAreas = append([]string(nil), c.TechDebt.CriticalAreas...)
	clone.BusinessContext.StakeholderPriority = append([]string(nil), c.BusinessContext.StakeholderPriority...)
	return &clone
}

// DominantPriority returns the argmax of the priority matrix.
func (c *ProjectContext) DominantPriority() Priority {
	return c.PriorityMatrix.Dominant()
}

// TimePressureLevel buckets days-to-deadline into {critical, high, medium, low}.
// Boundaries are inclusive on the upper side: ≤3d critical, ≤7d high, ≤21d medium,
// else low. A past-due deadline is always critical.
func (c *ProjectContext) TimePressureLevel() Level {
	days := time.Until(c.Deadline).Hours() / 24
	switch {
	case days <= timePressureCriticalDays:
		return LevelCritical
	case days <= timePressureHighDays:
		return LevelHigh
	case days <= timePressureMediumDays:
		return LevelMedium
	default:
		return LevelLow
	}
}

// DaysUntilDeadline returns the (possibly negative) number of days remaining.
func (c *ProjectContext) DaysUntilDeadline() float64 {
	return time.Until(c.Deadline).Hours() / 24
}

// UpdatePriorityMatrix is a targeted mutator: revalidates the new matrix,
// bumps Version, and refreshes LastUpdated/UpdatedBy. Returns a new value —
// the receiver is never mutated in place.
func (c *ProjectContext) UpdatePriorityMatrix(speed, quality, cost float64, updatedBy string) (*ProjectContext, error) {
	m := PriorityMatrix{Speed: speed, Quality: quality, Cost: cost}
	if err := m.validate(); err != nil {
		return nil, err
	}
	next := c.Clone()
	next.PriorityMatrix = m
	next.Version++
	next.LastUpdated = time.Now()
	next.UpdatedBy = updatedBy
	return next, nil
}

// UpdateTechDebt is a targeted mutator: revalidates the new tech-debt ratios,
// bumps Version, and refreshes LastUpdated/UpdatedBy.
func (c *ProjectContext) UpdateTechDebt(td TechDebt, updatedBy string) (*ProjectContext, error) {
	if err := td.validate(); err != nil {
		return nil, err
	}
	next := c.Clone()
	next.TechDebt = td
	next.Version++
	next.LastUpdated = time.Now()
	next.UpdatedBy = updatedBy
	return next, nil
}
