// Package csm implements the Context State Manager: the coordination hub
// that serves authoritative project-context reads fast, absorbs writes
// atomically, fans out update events to subscribers, and answers
// contextual questions (recommendations, RACI lookups, conflict
// detection). See the design notes on event ordering vs. cache for why the
// commit sequence below is mandatory.
package csm

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dario.cat/mergo"

	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
	"github.com/codeready-toolchain/coordination-core/pkg/raci"
)

// DefaultCacheTTL, DefaultCacheSize, and DefaultIdleWarningAfter are the
// spec's stated defaults.
const (
	DefaultCacheTTL         = 60 * time.Second
	DefaultCacheSize        = 1024
	DefaultIdleWarningAfter = 24 * time.Hour
)

// dispatchQueueSize bounds the number of committed events awaiting
// delivery to subscribers. A commit blocks once the queue is full, which
// still preserves commit order (it just back-pressures the writer) rather
// than silently reordering or dropping events.
const dispatchQueueSize = 256

// Manager is the Context State Manager. The zero value is not usable; build
// one with New. A Manager is safe for concurrent use by multiple
// goroutines.
type Manager struct {
	mu       sync.RWMutex // the single coarse write lock; RLock serves cache-miss reads
	contexts map[string]*projectcontext.ProjectContext

	cache *ttlCache
	raci  *raci.Matrix
	subs  *subscriberSet

	metrics *metrics
	logger  *slog.Logger

	idleWarningAfter time.Duration

	// dispatchCh carries committed events, in commit order, to the single
	// dispatchLoop goroutine — the only thing that ever calls dispatch, so
	// two concurrent commits can never have their notifications race past
	// each other on the way to subscribers.
	dispatchCh   chan Event
	dispatchDone chan struct{}
	closeOnce    sync.Once
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithCacheTTL overrides DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.cache.ttl = ttl }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithRACI overrides the default RACI matrix (raci.NewDefault()).
func WithRACI(matrix *raci.Matrix) Option {
	return func(m *Manager) { m.raci = matrix }
}

// WithIdleWarningAfter overrides DefaultIdleWarningAfter.
func WithIdleWarningAfter(d time.Duration) Option {
	return func(m *Manager) { m.idleWarningAfter = d }
}

// New builds a Manager ready to serve requests.
func New(opts ...Option) (*Manager, error) {
	cache, err := newTTLCache(DefaultCacheSize, DefaultCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("building context cache: %w", err)
	}
	m := &Manager{
		contexts:         make(map[string]*projectcontext.ProjectContext),
		cache:            cache,
		raci:             raci.NewDefault(),
		subs:             newSubscriberSet(),
		metrics:          newMetrics(),
		logger:           slog.Default(),
		idleWarningAfter: DefaultIdleWarningAfter,
		dispatchCh:       make(chan Event, dispatchQueueSize),
		dispatchDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	go m.dispatchLoop()
	return m, nil
}

// dispatchLoop is the single goroutine that ever calls dispatch, draining
// dispatchCh strictly in send order. Runs until Close closes dispatchCh.
func (m *Manager) dispatchLoop() {
	defer close(m.dispatchDone)
	for evt := range m.dispatchCh {
		m.dispatch(evt)
	}
}

// Close stops accepting new commits' events for delivery and waits for
// every already-queued event to finish dispatching. Safe to call more than
// once. Register/Update must not be called concurrently with or after
// Close.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.dispatchCh) })
	<-m.dispatchDone
}

// Register makes ctx visible to the next read. Re-registering an id is
// idempotent: the new value fully replaces the old one, with no leaked
// state from the prior value.
func (m *Manager) Register(ctx *projectcontext.ProjectContext) {
	snapshot := ctx.Clone()

	m.mu.Lock()
	m.contexts[snapshot.ProjectID] = snapshot
	m.cache.invalidate(snapshot.ProjectID)
	active := len(m.contexts)
	// Enqueued while still holding mu, so the order events land in
	// dispatchCh is exactly the order their commits took the lock —
	// releasing mu first would let two goroutines race each other to the
	// channel and reorder delivery relative to commit order.
	m.dispatchCh <- Event{Kind: EventRegistered, ProjectID: snapshot.ProjectID, NewVersion: snapshot.Version, At: time.Now()}
	m.mu.Unlock()

	m.metrics.setActiveContexts(active)
}

// Get returns a read-only snapshot (cache-first, within TTL) or false if
// the project has never been registered.
func (m *Manager) Get(projectID string) (*projectcontext.ProjectContext, bool) {
	if snapshot, hit := m.cache.get(projectID); hit {
		m.metrics.recordQuery(true)
		return snapshot.Clone(), true
	}

	m.mu.RLock()
	ctx, ok := m.contexts[projectID]
	m.mu.RUnlock()

	m.metrics.recordQuery(false)
	if !ok {
		return nil, false
	}
	// ctx itself is never mutated in place after being stored — every
	// Update replaces the map entry wholesale — so it is safe to cache the
	// pointer directly and clone only at the point a caller receives it.
	m.cache.put(projectID, ctx)
	return ctx.Clone(), true
}

// Update applies a sparse field-update map atomically under the write
// lock: apply it onto a working copy, validate, bump version, commit,
// invalidate the cache slot, and enqueue an updated event (still under the
// lock, so events queue in commit order), then release the lock.
// Subscribers are invoked asynchronously by the dispatch goroutine, never
// from inside this call. An empty update map still bumps version and
// last_updated (the chosen resolution of the source's unstated behavior;
// see DESIGN.md). Returns the new version on success.
func (m *Manager) Update(projectID string, fieldUpdates map[string]any, updatedBy string) (int, error) {
	m.mu.Lock()

	current, ok := m.contexts[projectID]
	if !ok {
		m.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrContextNotFound, projectID)
	}

	working := current.Clone()
	asMap, err := working.ToMap()
	if err != nil {
		m.mu.Unlock()
		return 0, fmt.Errorf("rendering working copy to map: %w", err)
	}
	for field := range fieldUpdates {
		if _, known := asMap[field]; !known {
			m.mu.Unlock()
			return 0, projectcontext.NewFieldError(field, projectcontext.ErrUnknownField)
		}
	}
	if err := mergo.Merge(&asMap, fieldUpdates, mergo.WithOverride); err != nil {
		m.mu.Unlock()
		return 0, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}

	candidate, err := projectcontext.FromMap(asMap)
	if err != nil {
		m.mu.Unlock()
		return 0, fmt.Errorf("rebuilding context from merged map: %w", err)
	}
	if err := candidate.Validate(); err != nil {
		m.mu.Unlock()
		return 0, err
	}

	candidate.ProjectID = current.ProjectID
	candidate.CreatedAt = current.CreatedAt
	candidate.Version = current.Version + 1
	candidate.LastUpdated = time.Now()
	candidate.UpdatedBy = updatedBy

	m.contexts[projectID] = candidate
	m.cache.invalidate(projectID)
	m.metrics.recordUpdate()
	newVersion := candidate.Version

	summary := make([]string, 0, len(fieldUpdates))
	for field := range fieldUpdates {
		summary = append(summary, field)
	}
	// Enqueued while still holding mu — see the comment in Register for
	// why releasing mu before enqueueing would let concurrent commits
	// reorder delivery relative to commit order.
	m.dispatchCh <- Event{
		Kind:                EventUpdated,
		ProjectID:           projectID,
		FieldUpdatesSummary: summary,
		NewVersion:          newVersion,
		At:                  time.Now(),
	}
	m.mu.Unlock()

	return newVersion, nil
}

// Recommendations derives a recommendation bundle purely from the current
// context — no side effects.
func (m *Manager) Recommendations(projectID, agentID string) (*Recommendations, error) {
	ctx, ok := m.Get(projectID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, projectID)
	}
	return buildRecommendations(ctx, agentID), nil
}

// DecisionAuthority looks up the RACI tuple for kind.
func (m *Manager) DecisionAuthority(kind raci.DecisionKind) (raci.Authority, error) {
	return m.raci.Authority(kind)
}

// DetectConflicts evaluates proposals against projectID's current context.
// Pure function over its inputs; does not deduplicate across calls.
func (m *Manager) DetectConflicts(projectID string, proposals []DecisionProposal) ([]Conflict, error) {
	ctx, ok := m.Get(projectID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, projectID)
	}
	return detectConflicts(ctx, proposals), nil
}

// Status returns a non-blocking counters snapshot.
func (m *Manager) Status() Status {
	m.mu.RLock()
	active := len(m.contexts)
	m.mu.RUnlock()

	return Status{
		TotalQueries:    m.metrics.totalQueries.Load(),
		CacheHits:       m.metrics.cacheHits.Load(),
		TotalUpdates:    m.metrics.totalUpdates.Load(),
		ActiveContexts:  active,
		CachedContexts:  m.cache.len(),
		SubscriberCount: m.subscriberCount(),
	}
}

// SweepCache drops expired cache entries. Meant to be driven by an
// external scheduler (every 5 minutes, per the spec) — it never blocks a
// concurrent Get/Update.
func (m *Manager) SweepCache() {
	removed := m.cache.sweep()
	if removed > 0 {
		m.logger.Info("cache sweep removed expired entries", "removed", removed)
	}
	status := m.Status()
	hitRate := 0.0
	if status.TotalQueries > 0 {
		hitRate = float64(status.CacheHits) / float64(status.TotalQueries)
	}
	m.logger.Info("cache status", "hit_rate", hitRate, "cached_contexts", status.CachedContexts)
}

// WarnIdleContexts logs a warning for every context that has not been
// updated in more than idleWarningAfter (DefaultIdleWarningAfter absent a
// WithIdleWarningAfter override). Meant to be driven by the same external
// scheduler as SweepCache.
func (m *Manager) WarnIdleContexts() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for id, ctx := range m.contexts {
		if time.Since(ctx.LastUpdated) > m.idleWarningAfter {
			m.logger.Warn("project context idle beyond warning threshold", "project_id", id, "last_updated", ctx.LastUpdated, "idle_warning_after", m.idleWarningAfter)
		}
	}
}
