package raci

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatrixKnownKind(t *testing.T) {
	m := NewDefault()
	a, err := m.Authority(KindArchitectureChoices)
	require.NoError(t, err)
	assert.Equal(t, "system-architect", a.Responsible)
	assert.Equal(t, "tech-lead", a.Accountable)
	assert.Contains(t, a.Consulted, "security-reviewer")
	assert.Contains(t, a.Informed, "product-owner")
}

func TestUnknownDecisionKindFails(t *testing.T) {
	m := NewDefault()
	_, err := m.Authority(DecisionKind("unheard_of"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownDecisionKind))
}

func TestNewCopiesEntriesDefensively(t *testing.T) {
	src := map[DecisionKind]Authority{
		KindTestingStrategy: {Responsible: "qa", Accountable: "lead", Consulted: []string{"dev"}},
	}
	m := New(src)
	src[KindTestingStrategy] = Authority{Responsible: "mutated"}

	a, err := m.Authority(KindTestingStrategy)
	require.NoError(t, err)
	assert.Equal(t, "qa", a.Responsible)
}

func TestAuthorityConsultedSliceIsNotSharedWithCaller(t *testing.T) {
	m := NewDefault()
	a, err := m.Authority(KindArchitectureChoices)
	require.NoError(t, err)
	a.Consulted[0] = "mutated"

	a2, err := m.Authority(KindArchitectureChoices)
	require.NoError(t, err)
	assert.Equal(t, "senior-developer", a2.Consulted[0])
}

func TestKindsCoversAllBuiltins(t *testing.T) {
	m := NewDefault()
	kinds := m.Kinds()
	assert.Len(t, kinds, 5)
	assert.Contains(t, kinds, KindSecurityImplementation)
}
