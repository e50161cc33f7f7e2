package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

type readyStep struct {
	wf   *Workflow
	step *WorkflowStep
}

// tick runs one pass of the execution loop: compute ready steps across
// every running workflow, dispatch them in parallel subject to registry
// capacity, then finalize any workflow whose steps are all terminal.
func (o *Orchestrator) tick(ctx context.Context) {
	now := time.Now()

	o.mu.Lock()
	var ready []readyStep
	var runningWorkflows []*Workflow
	for _, wf := range o.workflows {
		if wf.Status != WorkflowRunning {
			continue
		}
		runningWorkflows = append(runningWorkflows, wf)
		for _, s := range wf.Steps {
			if s.Status != StepPending {
				continue
			}
			if !s.nextEligibleAt.IsZero() && now.Before(s.nextEligibleAt) {
				continue
			}
			if !stepReady(wf, s) {
				continue
			}
			s.Status = StepRunning
			s.StartedAt = now
			ready = append(ready, readyStep{wf: wf, step: s})
		}
	}
	o.mu.Unlock()

	if len(ready) > 0 {
		o.dispatchReady(ctx, ready)
	}

	o.mu.Lock()
	for _, wf := range runningWorkflows {
		o.maybeFinalize(wf)
	}
	o.mu.Unlock()
}

// stepReady reports whether every dependency of s has completed.
func stepReady(wf *Workflow, s *WorkflowStep) bool {
	for _, dep := range s.DependsOn {
		d := wf.step(dep)
		if d == nil || d.Status != StepCompleted {
			return false
		}
	}
	return true
}

// dispatchReady runs every ready step concurrently, bounded by the
// registry's currently available capacity.
func (o *Orchestrator) dispatchReady(ctx context.Context, ready []readyStep) {
	limit := o.registry.AvailableCapacity()
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, rs := range ready {
		rs := rs
		g.Go(func() error {
			o.runStep(gctx, rs.wf, rs.step)
			return nil
		})
	}
	_ = g.Wait()
}

// buildStepInput merges the step's own input data with a
// step_{dep}_result entry for each dependency's output.
func buildStepInput(wf *Workflow, s *WorkflowStep) map[string]any {
	input := make(map[string]any, len(s.InputData)+len(s.DependsOn))
	for k, v := range s.InputData {
		input[k] = v
	}
	for _, dep := range s.DependsOn {
		if d := wf.step(dep); d != nil {
			input[fmt.Sprintf("step_%s_result", dep)] = d.OutputData
		}
	}
	return input
}

// runStep executes one step through the registry, honoring the step's
// declared timeout, and records the outcome: completed on success,
// returned to pending (with a retry counter and a backoff-delayed
// eligibility) on a retriable failure, or failed once retries are
// exhausted. A step whose workflow was cancelled while it was in flight
// has its result discarded.
func (o *Orchestrator) runStep(ctx context.Context, wf *Workflow, s *WorkflowStep) {
	stepCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	taskContext := map[string]any{"project_id": wf.ProjectID}
	if len(s.RequiredCapabilities) > 0 {
		taskContext["required_capabilities"] = s.RequiredCapabilities
	}
	t := task.New(s.TaskDescription, buildStepInput(wf, s), task.PriorityMedium, taskContext)

	result := o.registry.ExecuteTask(stepCtx, t, "")
	o.metrics.stepsDispatched.Inc()

	if stepCtx.Err() == context.DeadlineExceeded {
		result = &task.TaskResult{TaskID: t.ID, Success: false, Error: fmt.Sprintf("step %s timed out after %s", s.ID, s.Timeout)}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if wf.Status != WorkflowRunning || s.Status == StepCancelled {
		return // cancelled while in flight; discard the result
	}

	now := time.Now()
	if result.Success {
		s.Status = StepCompleted
		s.CompletedAt = now
		s.OutputData = result.Output
		if agentID, ok := result.Metadata["agent_id"].(string); ok {
			s.AssignedAgent = agentID
		}
		return
	}

	if s.RetryCount < s.MaxRetries {
		s.RetryCount++
		s.Status = StepPending
		s.nextEligibleAt = now.Add(o.retryDelay(s.RetryCount))
		o.metrics.stepsRetried.Inc()
		return
	}

	s.Status = StepFailed
	s.CompletedAt = now
	s.ErrorMessage = result.Error
	o.metrics.stepsFailed.Inc()
}

// retryDelay returns the backoff.ExponentialBackOff delay for the
// attempt-th retry (1-indexed), spacing re-attempts out instead of
// immediate re-queue to avoid thundering-herd re-dispatch against the
// same unhealthy agent.
func (o *Orchestrator) retryDelay(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.retryInitialInterval
	b.MaxInterval = o.retryMaxInterval
	b.Reset()
	var d time.Duration
	for i := 0; i < attempt; i++ {
		d = b.NextBackOff()
	}
	return d
}

// maybeFinalize completes wf if it is still running and every step is
// terminal: completed when no step failed, otherwise failed, with outputs
// aggregated by step id. Caller must hold o.mu.
func (o *Orchestrator) maybeFinalize(wf *Workflow) {
	if wf.Status != WorkflowRunning {
		return // cancelled while this tick was dispatching
	}
	anyFailed := false
	for _, s := range wf.Steps {
		if !s.Status.terminal() {
			return
		}
		if s.Status == StepFailed {
			anyFailed = true
		}
	}

	wf.CompletedAt = time.Now()
	if anyFailed {
		wf.Status = WorkflowFailed
	} else {
		wf.Status = WorkflowCompleted
	}
	o.metrics.workflowsDone.Inc()
	o.logger.Info("workflow finalized", "workflow_id", wf.ID, "status", wf.Status)
}
