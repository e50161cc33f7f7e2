package config

import "fmt"

// Validator validates a resolved Config comprehensively, fail-fast, one
// method per concern — mirroring the teacher's pkg/config/validator.go
// shape.
type Validator struct {
	cfg *Config
}

// NewValidator builds a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every validation in dependency order: RACI before
// agents (agent types are informal names the RACI table may reference),
// then the three tunable groups.
func (v *Validator) ValidateAll() error {
	if err := v.validateRACI(); err != nil {
		return fmt.Errorf("raci validation failed: %w", err)
	}
	if err := v.validateAgents(); err != nil {
		return fmt.Errorf("agent validation failed: %w", err)
	}
	if err := v.validateCSM(); err != nil {
		return fmt.Errorf("csm validation failed: %w", err)
	}
	if err := v.validateRegistry(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	if err := v.validateOrchestrator(); err != nil {
		return fmt.Errorf("orchestrator validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateRACI() error {
	for _, kind := range v.cfg.RACI.Kinds() {
		a, err := v.cfg.RACI.Authority(kind)
		if err != nil {
			return NewValidationError("raci."+string(kind), err)
		}
		if a.Responsible == "" {
			return NewValidationError(fmt.Sprintf("raci.%s.responsible", kind), fmt.Errorf("must not be empty"))
		}
		if a.Accountable == "" {
			return NewValidationError(fmt.Sprintf("raci.%s.accountable", kind), fmt.Errorf("must not be empty"))
		}
	}
	return nil
}

func (v *Validator) validateAgents() error {
	seen := make(map[string]struct{}, len(v.cfg.Agents))
	for _, a := range v.cfg.Agents {
		if a.ID == "" {
			return NewValidationError("agents[].id", fmt.Errorf("must not be empty"))
		}
		if _, dup := seen[a.ID]; dup {
			return NewValidationError("agents[].id", fmt.Errorf("duplicate agent id %q", a.ID))
		}
		seen[a.ID] = struct{}{}

		if a.Type == "" {
			return NewValidationError(fmt.Sprintf("agents[%s].type", a.ID), fmt.Errorf("must not be empty"))
		}
		if a.MaxConcurrentTask < 0 {
			return NewValidationError(fmt.Sprintf("agents[%s].max_concurrent_tasks", a.ID), fmt.Errorf("must be non-negative"))
		}
	}
	return nil
}

func (v *Validator) validateCSM() error {
	if v.cfg.CSMCacheTTL <= 0 {
		return NewValidationError("csm.cache_ttl", fmt.Errorf("must be positive"))
	}
	if v.cfg.CSMIdleWarningAfter <= 0 {
		return NewValidationError("csm.idle_warning_after", fmt.Errorf("must be positive"))
	}
	if v.cfg.CSMSweepInterval <= 0 {
		return NewValidationError("csm.sweep_interval", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *Validator) validateRegistry() error {
	if v.cfg.RegistryDefaultMaxConcurrentTasks < 1 {
		return NewValidationError("registry.default_max_concurrent_tasks", fmt.Errorf("must be at least 1"))
	}
	if v.cfg.RegistryStaleHeartbeatAfter <= 0 {
		return NewValidationError("registry.stale_heartbeat_after", fmt.Errorf("must be positive"))
	}
	if v.cfg.RegistryHealthSweepInterval <= 0 {
		return NewValidationError("registry.health_sweep_interval", fmt.Errorf("must be positive"))
	}
	return nil
}

func (v *Validator) validateOrchestrator() error {
	if v.cfg.OrchestratorTickInterval <= 0 {
		return NewValidationError("orchestrator.tick_interval", fmt.Errorf("must be positive"))
	}
	if v.cfg.OrchestratorRetryInitialInterval <= 0 {
		return NewValidationError("orchestrator.retry_initial_interval", fmt.Errorf("must be positive"))
	}
	if v.cfg.OrchestratorRetryMaxInterval < v.cfg.OrchestratorRetryInitialInterval {
		return NewValidationError("orchestrator.retry_max_interval", fmt.Errorf("must be >= retry_initial_interval"))
	}
	return nil
}
