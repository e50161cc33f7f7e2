package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/coordination-core/pkg/agent"
	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// stubAgent is a minimal agent.Agent for registry tests: it reports
// whatever status/result the test configures and never itself tracks
// lifecycle beyond what's needed to exercise the registry.
type stubAgent struct {
	id          string
	canHandle   bool
	result      *task.TaskResult
	err         error
	initialized bool
	shutdown    bool
	delay       time.Duration
}

func (s *stubAgent) ID() string { return s.id }
func (s *stubAgent) CanHandle(t *task.Task) bool { return s.canHandle }
func (s *stubAgent) Execute(ctx context.Context, t *task.Task) (*task.TaskResult, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
func (s *stubAgent) Initialize() { s.initialized = true }
func (s *stubAgent) Shutdown()   { s.shutdown = true }

func successResult(taskID string) *task.TaskResult {
	return &task.TaskResult{TaskID: taskID, Success: true, Output: map[string]any{"ok": true}}
}

func TestRegisterInitializesAgentAndBuildsIndices(t *testing.T) {
	r := New()
	a := &stubAgent{id: "qa-1", canHandle: true, result: successResult("")}
	require.NoError(t, r.Register(a, []string{"testing", "review"}, "qa", 2))
	assert.True(t, a.initialized)

	snap, ok := r.Get("qa-1")
	require.True(t, ok)
	assert.Equal(t, "qa", snap.AgentType)
	assert.ElementsMatch(t, []string{"testing", "review"}, snap.Capabilities)
	assert.Equal(t, 2, snap.MaxConcurrentTask)
}

func TestRegisterDuplicateFails(t *testing.T) {
	r := New()
	a := &stubAgent{id: "qa-1", canHandle: true}
	require.NoError(t, r.Register(a, nil, "qa", 1))
	err := r.Register(a, nil, "qa", 1)
	assert.ErrorIs(t, err, ErrAgentAlreadyRegistered)
}

func TestUnregisterShutsDownAndDropsEmptyIndexKeys(t *testing.T) {
	r := New()
	a := &stubAgent{id: "qa-1", canHandle: true}
	require.NoError(t, r.Register(a, []string{"testing"}, "qa", 1))
	require.NoError(t, r.Unregister("qa-1"))
	assert.True(t, a.shutdown)

	_, ok := r.Get("qa-1")
	assert.False(t, ok)

	assert.Empty(t, r.byCap["testing"])
	assert.Empty(t, r.byType["qa"])
}

func TestUnregisterUnknownAgentFails(t *testing.T) {
	r := New()
	err := r.Unregister("ghost")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestExecuteTaskUsesPreferredAgentWhenAvailable(t *testing.T) {
	r := New()
	preferred := &stubAgent{id: "dev-1", canHandle: true, result: successResult("")}
	other := &stubAgent{id: "dev-2", canHandle: true, result: successResult("")}
	require.NoError(t, r.Register(preferred, nil, "developer", 1))
	require.NoError(t, r.Register(other, nil, "developer", 1))

	tk := task.New("write code", nil, task.PriorityMedium, nil)
	result := r.ExecuteTask(context.Background(), tk, "dev-1")
	require.True(t, result.Success)

	snap, _ := r.Get("dev-1")
	assert.Equal(t, 1, snap.TotalCompleted)
	otherSnap, _ := r.Get("dev-2")
	assert.Equal(t, 0, otherSnap.TotalCompleted)
}

func TestExecuteTaskFallsBackToSelectionWhenPreferredUnqualified(t *testing.T) {
	r := New()
	busy := &stubAgent{id: "dev-1", canHandle: false}
	qualified := &stubAgent{id: "dev-2", canHandle: true, result: successResult("")}
	require.NoError(t, r.Register(busy, nil, "developer", 1))
	require.NoError(t, r.Register(qualified, nil, "developer", 1))

	tk := task.New("write code", nil, task.PriorityMedium, nil)
	result := r.ExecuteTask(context.Background(), tk, "dev-1")
	require.True(t, result.Success)

	snap, _ := r.Get("dev-2")
	assert.Equal(t, 1, snap.TotalCompleted)
}

func TestExecuteTaskNoQualifyingAgentReturnsFailureNotError(t *testing.T) {
	r := New()
	a := &stubAgent{id: "dev-1", canHandle: false}
	require.NoError(t, r.Register(a, nil, "developer", 1))

	tk := task.New("write code", nil, task.PriorityMedium, nil)
	result := r.ExecuteTask(context.Background(), tk, "")
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no available agent")
}

func TestExecuteTaskReleasesLoadCountOnSuccessAndFailure(t *testing.T) {
	r := New()
	ok := &stubAgent{id: "dev-1", canHandle: true, result: successResult("")}
	require.NoError(t, r.Register(ok, nil, "developer", 1))
	tk := task.New("x", nil, task.PriorityMedium, nil)
	r.ExecuteTask(context.Background(), tk, "dev-1")
	snap, _ := r.Get("dev-1")
	assert.Equal(t, 0, snap.CurrentTaskCount)

	failing := &stubAgent{id: "dev-2", canHandle: true, err: assert.AnError}
	require.NoError(t, r.Register(failing, nil, "developer", 1))
	r.ExecuteTask(context.Background(), tk, "dev-2")
	snap2, _ := r.Get("dev-2")
	assert.Equal(t, 0, snap2.CurrentTaskCount)
	assert.Equal(t, 1, snap2.TotalErrors)
}

func TestSelectionPrefersHigherScoringAgent(t *testing.T) {
	r := New()
	// fast, no errors
	fast := &stubAgent{id: "dev-fast", canHandle: true, result: successResult("")}
	require.NoError(t, r.Register(fast, nil, "developer", 10))
	tk := task.New("x", nil, task.PriorityMedium, nil)
	for i := 0; i < 5; i++ {
		r.ExecuteTask(context.Background(), tk, "dev-fast")
	}

	// slow agent that always errors
	slow := &stubAgent{id: "dev-slow", canHandle: true, err: assert.AnError, delay: 5 * time.Millisecond}
	require.NoError(t, r.Register(slow, nil, "developer", 10))
	for i := 0; i < 5; i++ {
		r.ExecuteTask(context.Background(), tk, "dev-slow")
	}

	id, ok := r.selectBest(tk)
	require.True(t, ok)
	assert.Equal(t, "dev-fast", id)
}

func TestHealthSweepMarksStaleHeartbeatsAsError(t *testing.T) {
	r := New()
	a := &stubAgent{id: "dev-1", canHandle: true}
	require.NoError(t, r.Register(a, nil, "developer", 1))

	r.mu.Lock()
	r.agents["dev-1"].LastHeartbeat = time.Now().Add(-10 * time.Minute)
	r.mu.Unlock()

	marked := r.RunHealthSweep()
	assert.Equal(t, 1, marked)

	snap, _ := r.Get("dev-1")
	assert.Equal(t, agent.StatusError, snap.Status)
}

func TestHealthyAgentIsNotMarkedByHealthSweep(t *testing.T) {
	r := New()
	a := &stubAgent{id: "dev-1", canHandle: true}
	require.NoError(t, r.Register(a, nil, "developer", 1))

	marked := r.RunHealthSweep()
	assert.Equal(t, 0, marked)
}

func TestErroredAgentIsExcludedFromSelection(t *testing.T) {
	r := New()
	a := &stubAgent{id: "dev-1", canHandle: true, result: successResult("")}
	require.NoError(t, r.Register(a, nil, "developer", 1))

	r.mu.Lock()
	r.agents["dev-1"].LastHeartbeat = time.Now().Add(-10 * time.Minute)
	r.mu.Unlock()
	r.RunHealthSweep()

	tk := task.New("x", nil, task.PriorityMedium, nil)
	_, ok := r.selectBest(tk)
	assert.False(t, ok)
}
