package orchestrator

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultStepTimeout = 10 * time.Minute

// CreateWorkflow parses def into WorkflowStep records, validates that
// every depends_on id exists within the workflow and that the dependency
// graph is acyclic, assigns a new workflow id, and stores the workflow as
// pending.
func (o *Orchestrator) CreateWorkflow(def WorkflowDefinition) (string, error) {
	ids := make(map[string]struct{}, len(def.Steps))
	for _, sd := range def.Steps {
		if _, dup := ids[sd.ID]; dup {
			return "", fmt.Errorf("%w: %s", ErrDuplicateStepID, sd.ID)
		}
		ids[sd.ID] = struct{}{}
	}
	for _, sd := range def.Steps {
		for _, dep := range sd.DependsOn {
			if _, ok := ids[dep]; !ok {
				return "", fmt.Errorf("%w: step %s depends on %s", ErrUnknownDependency, sd.ID, dep)
			}
		}
	}
	if err := checkAcyclic(def.Steps); err != nil {
		return "", err
	}

	steps := make([]*WorkflowStep, 0, len(def.Steps))
	for _, sd := range def.Steps {
		timeout := defaultStepTimeout
		if sd.TimeoutMinutes > 0 {
			timeout = time.Duration(sd.TimeoutMinutes) * time.Minute
		}
		steps = append(steps, &WorkflowStep{
			ID:                   sd.ID,
			Name:                 sd.Name,
			TaskDescription:      sd.TaskDescription,
			RequiredCapabilities: sd.RequiredCapabilities,
			InputData:            sd.InputData,
			DependsOn:            sd.DependsOn,
			Timeout:              timeout,
			MaxRetries:           sd.MaxRetries,
			Status:               StepPending,
		})
	}

	wf := &Workflow{
		ID:          uuid.NewString(),
		Name:        def.Name,
		Description: def.Description,
		ProjectID:   def.ProjectID,
		Status:      WorkflowPending,
		Steps:       steps,
		CreatedAt:   time.Now(),
	}

	o.mu.Lock()
	o.workflows[wf.ID] = wf
	o.mu.Unlock()

	o.logger.Info("workflow created", "workflow_id", wf.ID, "name", wf.Name, "step_count", len(steps))
	return wf.ID, nil
}

// checkAcyclic runs a three-color DFS over the depends_on edges.
func checkAcyclic(steps []StepDefinition) error {
	byID := make(map[string]StepDefinition, len(steps))
	for _, s := range steps {
		byID[s.ID] = s
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(steps))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		for _, dep := range byID[id].DependsOn {
			switch color[dep] {
			case gray:
				return fmt.Errorf("%w: through %s", ErrCyclicDependency, dep)
			case white:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, s := range steps {
		if color[s.ID] == white {
			if err := visit(s.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// StartWorkflow transitions a pending workflow to running and stamps
// started_at.
func (o *Orchestrator) StartWorkflow(workflowID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	wf, ok := o.workflows[workflowID]
	if !ok {
		return ErrWorkflowNotFound
	}
	if wf.Status != WorkflowPending {
		return fmt.Errorf("%w: workflow %s is %s, not pending", ErrInvalidTransition, workflowID, wf.Status)
	}
	wf.Status = WorkflowRunning
	wf.StartedAt = time.Now()
	return nil
}

// CancelWorkflow transitions a running workflow to cancelled; any running
// step is marked cancelled. A cancelled step's underlying work may still
// complete in the background — the execution loop discards its result by
// checking the workflow's status before applying it.
func (o *Orchestrator) CancelWorkflow(workflowID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	wf, ok := o.workflows[workflowID]
	if !ok {
		return ErrWorkflowNotFound
	}
	if wf.Status != WorkflowRunning {
		return fmt.Errorf("%w: workflow %s is %s, not running", ErrInvalidTransition, workflowID, wf.Status)
	}
	wf.Status = WorkflowCancelled
	wf.CompletedAt = time.Now()
	for _, s := range wf.Steps {
		if s.Status == StepRunning {
			s.Status = StepCancelled
			s.CompletedAt = wf.CompletedAt
		}
	}
	return nil
}

// GetWorkflowStatus returns the status report for workflowID.
func (o *Orchestrator) GetWorkflowStatus(workflowID string) (WorkflowStatusReport, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	wf, ok := o.workflows[workflowID]
	if !ok {
		return WorkflowStatusReport{}, ErrWorkflowNotFound
	}
	return reportOf(wf), nil
}

func reportOf(wf *Workflow) WorkflowStatusReport {
	steps := make([]StepStatusReport, len(wf.Steps))
	results := make(map[string]any, len(wf.Steps))
	for i, s := range wf.Steps {
		steps[i] = StepStatusReport{
			ID:            s.ID,
			Name:          s.Name,
			Status:        s.Status,
			AssignedAgent: s.AssignedAgent,
			StartedAt:     s.StartedAt,
			CompletedAt:   s.CompletedAt,
			ErrorMessage:  s.ErrorMessage,
		}
		if s.Status == StepCompleted {
			results[s.ID] = s.OutputData
		}
	}
	return WorkflowStatusReport{
		ID:          wf.ID,
		Name:        wf.Name,
		Status:      wf.Status,
		CreatedAt:   wf.CreatedAt,
		StartedAt:   wf.StartedAt,
		CompletedAt: wf.CompletedAt,
		Steps:       steps,
		Results:     results,
	}
}

// LinearChain builds a WorkflowDefinition where each step depends on the
// previous one, in slice order.
func LinearChain(name, description, projectID string, steps []StepDefinition) WorkflowDefinition {
	for i := range steps {
		if i > 0 {
			steps[i].DependsOn = []string{steps[i-1].ID}
		}
	}
	return WorkflowDefinition{Name: name, Description: description, ProjectID: projectID, Steps: steps}
}

// ParallelFan builds a WorkflowDefinition where no step depends on any
// other — all become ready on the first tick.
func ParallelFan(name, description, projectID string, steps []StepDefinition) WorkflowDefinition {
	for i := range steps {
		steps[i].DependsOn = nil
	}
	return WorkflowDefinition{Name: name, Description: description, ProjectID: projectID, Steps: steps}
}
