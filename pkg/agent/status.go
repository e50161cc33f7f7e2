package agent

import (
	"sync"

	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// statusTracker holds an agent's own lifecycle state and task history,
// guarded by a single mutex — cheap and small, like the CSM's own store.
type statusTracker struct {
	mu      sync.RWMutex
	status  Status
	history []task.TaskResult
}

func newStatusTracker() *statusTracker {
	return &statusTracker{status: StatusIdle}
}

func (s *statusTracker) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *statusTracker) setBusy() {
	s.mu.Lock()
	s.status = StatusBusy
	s.mu.Unlock()
}

func (s *statusTracker) setIdle() {
	s.mu.Lock()
	s.status = StatusIdle
	s.mu.Unlock()
}

func (s *statusTracker) setError() {
	s.mu.Lock()
	s.status = StatusError
	s.mu.Unlock()
}

// initialize resets error -> idle, per the lifecycle rule.
func (s *statusTracker) initialize() {
	s.mu.Lock()
	s.status = StatusIdle
	s.mu.Unlock()
}

func (s *statusTracker) shutdown() {
	s.mu.Lock()
	s.status = StatusOffline
	s.mu.Unlock()
}

func (s *statusTracker) appendHistory(r task.TaskResult) {
	s.mu.Lock()
	s.history = append(s.history, r)
	s.mu.Unlock()
}

func (s *statusTracker) History() []task.TaskResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]task.TaskResult(nil), s.history...)
}
