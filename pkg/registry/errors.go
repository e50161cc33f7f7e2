package registry

import "errors"

var (
	// ErrAgentNotFound is returned when an operation names an unregistered
	// agent id.
	ErrAgentNotFound = errors.New("registry: agent not found")
	// ErrAgentAlreadyRegistered is returned by Register for a duplicate id.
	ErrAgentAlreadyRegistered = errors.New("registry: agent already registered")
	// ErrNoAvailableAgent is the failure reason set on the TaskResult
	// returned by ExecuteTask when neither the preferred agent nor
	// selection produces a candidate.
	ErrNoAvailableAgent = errors.New("registry: no available agent found")
)
