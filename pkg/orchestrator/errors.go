package orchestrator

import "errors"

var (
	// ErrWorkflowNotFound is returned for an operation naming an unknown
	// workflow id.
	ErrWorkflowNotFound = errors.New("orchestrator: workflow not found")
	// ErrDuplicateStepID is returned by CreateWorkflow when two steps in a
	// definition share an id.
	ErrDuplicateStepID = errors.New("orchestrator: duplicate step id")
	// ErrUnknownDependency is returned by CreateWorkflow when a step's
	// depends_on names an id absent from the definition.
	ErrUnknownDependency = errors.New("orchestrator: depends_on references an unknown step")
	// ErrCyclicDependency is returned by CreateWorkflow when the step graph
	// is not a DAG.
	ErrCyclicDependency = errors.New("orchestrator: step dependency graph has a cycle")
	// ErrInvalidTransition is returned by StartWorkflow/CancelWorkflow for a
	// workflow not in the required source state.
	ErrInvalidTransition = errors.New("orchestrator: invalid workflow state transition")
)
