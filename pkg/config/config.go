package config

import (
	"time"

	"github.com/codeready-toolchain/coordination-core/pkg/csm"
	"github.com/codeready-toolchain/coordination-core/pkg/orchestrator"
	"github.com/codeready-toolchain/coordination-core/pkg/raci"
	"github.com/codeready-toolchain/coordination-core/pkg/registry"
)

// Config is the resolved, validated configuration returned by Load: the
// RACI matrix, agent catalog seed data, and every tunable parsed into its
// native Go type (durations resolved, no more strings to re-parse).
type Config struct {
	configDir string

	RACI   *raci.Matrix
	Agents []AgentSeed

	CSMCacheTTL         time.Duration
	CSMIdleWarningAfter time.Duration
	CSMSweepInterval    time.Duration

	RegistryDefaultMaxConcurrentTasks int
	RegistryStaleHeartbeatAfter       time.Duration
	RegistryHealthSweepInterval       time.Duration

	OrchestratorTickInterval         time.Duration
	OrchestratorRetryInitialInterval time.Duration
	OrchestratorRetryMaxInterval     time.Duration
}

// ConfigDir returns the directory Load read coordination.yaml from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// CSMOptions builds the csm.Option slice a composition root passes to
// csm.New, so the loaded RACI table and cache TTL take effect without the
// caller re-reading Config's fields one by one.
func (c *Config) CSMOptions() []csm.Option {
	return []csm.Option{
		csm.WithCacheTTL(c.CSMCacheTTL),
		csm.WithRACI(c.RACI),
		csm.WithIdleWarningAfter(c.CSMIdleWarningAfter),
	}
}

// RegistryOptions builds the registry.Option slice a composition root
// passes to registry.New.
func (c *Config) RegistryOptions() []registry.Option {
	return []registry.Option{
		registry.WithDefaultMaxConcurrentTasks(c.RegistryDefaultMaxConcurrentTasks),
		registry.WithStaleHeartbeatAfter(c.RegistryStaleHeartbeatAfter),
	}
}

// OrchestratorOptions builds the orchestrator.Option slice a composition
// root passes to orchestrator.New.
func (c *Config) OrchestratorOptions() []orchestrator.Option {
	return []orchestrator.Option{
		orchestrator.WithTickInterval(c.OrchestratorTickInterval),
		orchestrator.WithRetryBackoff(c.OrchestratorRetryInitialInterval, c.OrchestratorRetryMaxInterval),
	}
}
