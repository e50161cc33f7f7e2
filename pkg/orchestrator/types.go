package orchestrator

import "time"

// WorkflowStatus is a workflow's coarse lifecycle state.
type WorkflowStatus string

// Recognized workflow states. pending -> running -> (completed|failed|cancelled).
const (
	WorkflowPending   WorkflowStatus = "pending"
	WorkflowRunning   WorkflowStatus = "running"
	WorkflowCompleted WorkflowStatus = "completed"
	WorkflowFailed    WorkflowStatus = "failed"
	WorkflowCancelled WorkflowStatus = "cancelled"
)

// StepStatus is a single step's lifecycle state. A step never transitions
// backward except pending -> running -> pending on a retriable failure.
type StepStatus string

// Recognized step states.
const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepCancelled StepStatus = "cancelled"
)

func (s StepStatus) terminal() bool {
	return s == StepCompleted || s == StepFailed || s == StepCancelled
}

// StepDefinition is the on-the-wire shape of one workflow step, decoded
// from the workflow-definition document (yaml.v3 — see pkg/config for the
// sibling RACI/catalog document this format mirrors).
type StepDefinition struct {
	ID                   string         `yaml:"id"`
	Name                 string         `yaml:"name"`
	TaskDescription      string         `yaml:"task_description"`
	RequiredCapabilities []string       `yaml:"required_capabilities"`
	InputData            map[string]any `yaml:"input_data"`
	DependsOn            []string       `yaml:"depends_on"`
	TimeoutMinutes       int            `yaml:"timeout_minutes"`
	MaxRetries           int            `yaml:"max_retries"`
}

// WorkflowDefinition is the document consumed by CreateWorkflow. The only
// format constraint is that the step graph is a DAG with unique step ids.
type WorkflowDefinition struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	ProjectID   string           `yaml:"project_id"`
	Steps       []StepDefinition `yaml:"steps"`
}

// WorkflowStep is the runtime record for one step of a workflow.
type WorkflowStep struct {
	ID                   string
	Name                 string
	TaskDescription      string
	RequiredCapabilities []string
	InputData            map[string]any
	DependsOn            []string
	Timeout              time.Duration
	MaxRetries           int

	Status        StepStatus
	AssignedAgent string
	RetryCount    int
	StartedAt     time.Time
	CompletedAt   time.Time
	ErrorMessage  string
	OutputData    map[string]any

	nextEligibleAt time.Time
}

// Workflow is a DAG of steps plus its own lifecycle state.
type Workflow struct {
	ID          string
	Name        string
	Description string
	ProjectID   string
	Status      WorkflowStatus
	Steps       []*WorkflowStep
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

func (w *Workflow) step(id string) *WorkflowStep {
	for _, s := range w.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// StepStatusReport is one step's entry in a WorkflowStatusReport.
type StepStatusReport struct {
	ID            string
	Name          string
	Status        StepStatus
	AssignedAgent string
	StartedAt     time.Time
	CompletedAt   time.Time
	ErrorMessage  string
}

// WorkflowStatusReport is returned by GetWorkflowStatus.
type WorkflowStatusReport struct {
	ID          string
	Name        string
	Status      WorkflowStatus
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	Steps       []StepStatusReport
	Results     map[string]any
}
