// Package task defines the Task and TaskResult records shared by agents,
// the registry, and the orchestrator. Kept separate from pkg/agent so none
// of those packages need to import each other just to talk about work
// items.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Priority drives an agent's base time estimate for a task (see
// pkg/agent's estimate rule).
type Priority string

// Recognized priorities.
const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is immutable after creation.
type Task struct {
	ID          string
	Description string
	Input       map[string]any
	Priority    Priority
	CreatedAt   time.Time
	Context     map[string]any
}

// New constructs a Task with a fresh id and CreatedAt.
func New(description string, input map[string]any, priority Priority, taskContext map[string]any) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		Input:       input,
		Priority:    priority,
		CreatedAt:   time.Now(),
		Context:     taskContext,
	}
}

// ProjectID extracts the "project_id" key from Context, if present and a
// non-empty string.
func (t *Task) ProjectID() (string, bool) {
	if t.Context == nil {
		return "", false
	}
	v, ok := t.Context["project_id"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// TaskResult is returned by an agent's lifecycle-wrapped Execute.
type TaskResult struct {
	TaskID   string
	Success  bool
	Output   map[string]any
	Error    string
	Duration time.Duration
	Metadata map[string]any
}
