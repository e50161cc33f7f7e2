package csm

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
)

func newContext(t *testing.T, id string, priorities projectcontext.PriorityMatrix, deadline time.Time, compliance []string) *projectcontext.ProjectContext {
	t.Helper()
	ctx, err := projectcontext.New(id, "Test Project", projectcontext.PhaseMVP, deadline, 0.5, priorities,
		projectcontext.Constraints{Timeline: "normal", TeamCapacity: "full", ComplianceTags: compliance},
		projectcontext.TechDebt{CurrentLevel: 0.1, MaxThreshold: 0.5, RepaymentBudget: 0.1},
		projectcontext.BusinessContext{UserImpact: projectcontext.LevelMedium, RevenueImpact: projectcontext.LevelMedium, CompetitivePressure: projectcontext.LevelLow},
		"tester")
	require.NoError(t, err)
	return ctx
}

func TestRegisterThenGetRoundTrips(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	got, ok := m.Get("proj-1")
	require.True(t, ok)
	assert.Equal(t, ctx.ProjectID, got.ProjectID)
	assert.Equal(t, ctx.PriorityMatrix, got.PriorityMatrix)
	assert.Equal(t, ctx.Version, got.Version)
}

func TestGetUnknownProjectIsAbsent(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	_, ok := m.Get("does-not-exist")
	assert.False(t, ok)
}

func TestReRegisterLeavesNoLeakedState(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	ctx1 := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.9, Quality: 0.05, Cost: 0.05}, time.Now().Add(10*24*time.Hour), []string{"SOX"})
	m.Register(ctx1)

	ctx2 := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.1, Quality: 0.8, Cost: 0.1}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx2)

	got, ok := m.Get("proj-1")
	require.True(t, ok)
	assert.Equal(t, projectcontext.PriorityQuality, got.DominantPriority())
	assert.Empty(t, got.Constraints.ComplianceTags)
}

func TestUpdateUnknownProjectFails(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	_, err = m.Update("nope", map[string]any{}, "someone")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContextNotFound)
}

func TestUpdateBumpsVersionEvenWithEmptyMap(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	newVersion, err := m.Update("proj-1", map[string]any{}, "alice")
	require.NoError(t, err)
	assert.Equal(t, ctx.Version+1, newVersion)
}

func TestUpdateAppliesSparseFieldsAndValidates(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	_, err = m.Update("proj-1", map[string]any{
		"priority_matrix": map[string]any{"speed": 0.2, "quality": 0.7, "cost": 0.1},
	}, "alice")
	require.NoError(t, err)

	got, ok := m.Get("proj-1")
	require.True(t, ok)
	assert.Equal(t, projectcontext.PriorityQuality, got.DominantPriority())
	assert.Equal(t, "alice", got.UpdatedBy)
}

func TestUpdateRejectsInvalidPriorityMatrix(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	_, err = m.Update("proj-1", map[string]any{
		"priority_matrix": map[string]any{"speed": 0.9, "quality": 0.9, "cost": 0.9},
	}, "alice")
	require.Error(t, err)

	// Failed update must leave the prior state fully intact.
	got, ok := m.Get("proj-1")
	require.True(t, ok)
	assert.Equal(t, 1, got.Version)
}

func TestUpdateInvalidatesCacheBeforeNextRead(t *testing.T) {
	m, err := New(WithCacheTTL(time.Minute))
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	_, ok := m.Get("proj-1") // warm the cache
	require.True(t, ok)

	newVersion, err := m.Update("proj-1", map[string]any{}, "alice")
	require.NoError(t, err)

	got, ok := m.Get("proj-1")
	require.True(t, ok)
	assert.Equal(t, newVersion, got.Version, "a read after commit must observe the new version, never a shadowed cache entry")
}

func TestCacheTTLExpiryForcesReFetch(t *testing.T) {
	m, err := New(WithCacheTTL(10 * time.Millisecond))
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	_, ok := m.Get("proj-1")
	require.True(t, ok)
	status := m.Status()
	assert.EqualValues(t, 0, status.CacheHits)

	time.Sleep(20 * time.Millisecond)
	_, ok = m.Get("proj-1")
	require.True(t, ok)
	status = m.Status()
	assert.EqualValues(t, 0, status.CacheHits, "past-TTL read must not count as a cache hit")

	_, ok = m.Get("proj-1")
	require.True(t, ok)
	status = m.Status()
	assert.EqualValues(t, 1, status.CacheHits)
}

func TestSubscribeReceivesEventsInCommitOrder(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)

	var mu sync.Mutex
	var versions []int
	done := make(chan struct{}, 10)
	sub := m.Subscribe(func(evt Event) {
		mu.Lock()
		versions = append(versions, evt.NewVersion)
		mu.Unlock()
		done <- struct{}{}
	})
	defer m.Unsubscribe(sub)

	m.Register(ctx)
	<-done
	for i := 0; i < 3; i++ {
		_, err := m.Update("proj-1", map[string]any{}, "alice")
		require.NoError(t, err)
		<-done
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, versions, 4)
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
}

// Concurrent Update calls must still deliver in commit order: since each
// commit is the one that assigns the next version number while holding
// mu, receiving versions in strictly increasing, gapless order is proof
// delivery order matches commit order even when the goroutines that
// issued the commits run and finish in some other order.
func TestSubscribeReceivesConcurrentUpdatesInCommitOrder(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)

	const n = 50
	var mu sync.Mutex
	var versions []int
	done := make(chan struct{}, n+1)
	sub := m.Subscribe(func(evt Event) {
		mu.Lock()
		versions = append(versions, evt.NewVersion)
		mu.Unlock()
		done <- struct{}{}
	})
	defer m.Unsubscribe(sub)

	m.Register(ctx)
	<-done

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update("proj-1", map[string]any{}, "alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		<-done
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, versions, n)
	for i, v := range versions {
		assert.Equal(t, i+2, v, "version at delivery position %d should be %d, proving delivery order matches commit order", i, i+2)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(10*24*time.Hour), nil)
	m.Register(ctx)

	count := 0
	var mu sync.Mutex
	sub := m.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	m.Unsubscribe(sub)

	_, err = m.Update("proj-1", map[string]any{}, "alice")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}

// Scenario A — speed-priority MVP chooses speed-optimized strategies.
func TestScenarioASpeedPriorityMVP(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "mvp-1", projectcontext.PriorityMatrix{Speed: 0.7, Quality: 0.2, Cost: 0.1}, time.Now().Add(14*24*time.Hour), nil)
	m.Register(ctx)

	rec, err := m.Recommendations("mvp-1", "qa-engineer-1")
	require.NoError(t, err)
	assert.LessOrEqual(t, rec.QualityConstraints.MinTestCoverage, 0.75)
	assert.Equal(t, projectcontext.PrioritySpeed, rec.DominantPriority)
}

// Scenario B — quality-priority production tightens coverage.
func TestScenarioBQualityPriorityProduction(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "prod-1", projectcontext.PriorityMatrix{Speed: 0.1, Quality: 0.7, Cost: 0.2}, time.Now().Add(30*24*time.Hour), []string{"SOX", "PCI-DSS"})
	m.Register(ctx)

	rec, err := m.Recommendations("prod-1", "developer-1")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rec.QualityConstraints.MinTestCoverage, 0.8)
	assert.Equal(t, "high", rec.QualityConstraints.PerformanceRequirements)
	assert.Equal(t, "strict", rec.QualityConstraints.SecurityRequirements)
}

// Scenario C — context change triggers adaptation: a fresh recommendation
// after a priority shift must reflect the new dominant priority.
func TestScenarioCContextChangeShiftsRecommendation(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.6, Quality: 0.3, Cost: 0.1}, time.Now().Add(20*24*time.Hour), nil)
	m.Register(ctx)

	before, err := m.Recommendations("proj-1", "developer-1")
	require.NoError(t, err)

	_, err = m.Update("proj-1", map[string]any{
		"priority_matrix": map[string]any{"speed": 0.2, "quality": 0.7, "cost": 0.1},
	}, "alice")
	require.NoError(t, err)

	after, err := m.Recommendations("proj-1", "developer-1")
	require.NoError(t, err)

	assert.Greater(t, after.QualityConstraints.MinTestCoverage, before.QualityConstraints.MinTestCoverage)
}

// Scenario D — conflict detection signals over-allocation and timeline infeasibility.
func TestScenarioDConflictDetection(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(5*24*time.Hour), nil)
	m.Register(ctx)

	conflicts, err := m.DetectConflicts("proj-1", []DecisionProposal{
		{AgentID: "a", EstimatedTimeDays: 3, ResourceDemand: 0.4},
		{AgentID: "b", EstimatedTimeDays: 3, ResourceDemand: 0.5},
		{AgentID: "c", EstimatedTimeDays: 3, ResourceDemand: 0.3},
	})
	require.NoError(t, err)

	var hasResource, hasTimeline bool
	for _, c := range conflicts {
		if c.Kind == ConflictResource {
			hasResource = true
		}
		if c.Kind == ConflictTimeline {
			hasTimeline = true
		}
	}
	assert.True(t, hasResource)
	assert.True(t, hasTimeline)
}

// A single proposal, however over-budget, can never conflict with another
// proposal — there is nothing to conflict with.
func TestDetectConflictsSingleProposalNeverConflicts(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	ctx := newContext(t, "proj-1", projectcontext.PriorityMatrix{Speed: 0.4, Quality: 0.4, Cost: 0.2}, time.Now().Add(1*24*time.Hour), nil)
	m.Register(ctx)

	conflicts, err := m.DetectConflicts("proj-1", []DecisionProposal{
		{AgentID: "a", EstimatedTimeDays: 30, ResourceDemand: 5.0},
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestDecisionAuthorityUnknownKindFails(t *testing.T) {
	m, err := New()
	require.NoError(t, err)
	_, err = m.DecisionAuthority("not_a_real_kind")
	require.Error(t, err)
}
