// Package raci defines the static decision-authority matrix: for each kind
// of decision the coordination core cares about, who is Responsible,
// Accountable, Consulted, and Informed. The matrix is immutable once built —
// it is seed data, not mutable state — so it carries no locking.
package raci

import (
	"errors"
	"fmt"
)

// ErrUnknownDecisionKind is returned by Matrix.Authority for a decision kind
// the matrix has no entry for.
var ErrUnknownDecisionKind = errors.New("unknown decision kind")

// DecisionKind names a class of decision an agent might need authority for.
type DecisionKind string

// Built-in decision kinds.
const (
	KindArchitectureChoices     DecisionKind = "architecture_choices"
	KindTestingStrategy         DecisionKind = "testing_strategy"
	KindTechDebtPrioritization  DecisionKind = "tech_debt_prioritization"
	KindPerformanceOptimization DecisionKind = "performance_optimization"
	KindSecurityImplementation  DecisionKind = "security_implementation"
)

// Authority is one RACI tuple: exactly one Responsible, exactly one
// Accountable, plus lists of Consulted and Informed parties. Parties are
// named by role/agent-type string (e.g. "system-architect", "qa-engineer"),
// not by agent instance id — the matrix is static, agent instances are not.
type Authority struct {
	Responsible string
	Accountable string
	Consulted   []string
	Informed    []string
}

// Matrix is a lookup-only RACI table, built once at startup via New or
// NewDefault and never mutated afterward.
type Matrix struct {
	entries map[DecisionKind]Authority
}

// New builds a Matrix from an explicit set of entries — used when loading
// the RACI table from configuration (see pkg/config).
func New(entries map[DecisionKind]Authority) *Matrix {
	copied := make(map[DecisionKind]Authority, len(entries))
	for k, v := range entries {
		copied[k] = Authority{
			Responsible: v.Responsible,
			Accountable: v.Accountable,
			Consulted:   append([]string(nil), v.Consulted...),
			Informed:    append([]string(nil), v.Informed...),
		}
	}
	return &Matrix{entries: copied}
}

// NewDefault builds the built-in matrix described in the specification's
// worked examples — a sane starting point a deployment can override via
// configuration without touching code.
func NewDefault() *Matrix {
	return New(map[DecisionKind]Authority{
		KindArchitectureChoices: {
			Responsible: "system-architect",
			Accountable: "tech-lead",
			Consulted:   []string{"senior-developer", "security-reviewer"},
			Informed:    []string{"product-owner"},
		},
		KindTestingStrategy: {
			Responsible: "qa-engineer",
			Accountable: "tech-lead",
			Consulted:   []string{"developer"},
			Informed:    []string{"product-owner"},
		},
		KindTechDebtPrioritization: {
			Responsible: "tech-lead",
			Accountable: "engineering-manager",
			Consulted:   []string{"system-architect", "developer"},
			Informed:    []string{"product-owner"},
		},
		KindPerformanceOptimization: {
			Responsible: "performance-engineer",
			Accountable: "tech-lead",
			Consulted:   []string{"system-architect"},
			Informed:    []string{"product-owner"},
		},
		KindSecurityImplementation: {
			Responsible: "security-engineer",
			Accountable: "tech-lead",
			Consulted:   []string{"system-architect", "compliance-officer"},
			Informed:    []string{"product-owner", "engineering-manager"},
		},
	})
}

// Authority returns the RACI tuple for kind, or ErrUnknownDecisionKind. The
// returned value owns its own Consulted/Informed slices — mutating them
// never affects the matrix.
func (m *Matrix) Authority(kind DecisionKind) (Authority, error) {
	a, ok := m.entries[kind]
	if !ok {
		return Authority{}, fmt.Errorf("%w: %s", ErrUnknownDecisionKind, kind)
	}
	a.Consulted = append([]string(nil), a.Consulted...)
	a.Informed = append([]string(nil), a.Informed...)
	return a, nil
}

// Kinds returns every decision kind the matrix has an entry for, useful for
// validation and introspection.
func (m *Matrix) Kinds() []DecisionKind {
	kinds := make([]DecisionKind, 0, len(m.entries))
	for k := range m.entries {
		kinds = append(kinds, k)
	}
	return kinds
}
