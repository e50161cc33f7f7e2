package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/coordination-core/pkg/raci"
)

func validConfig() *Config {
	return &Config{
		RACI:   raci.NewDefault(),
		Agents: []AgentSeed{{ID: "dev-1", Type: "developer"}},

		CSMCacheTTL:         time.Minute,
		CSMIdleWarningAfter: 24 * time.Hour,
		CSMSweepInterval:    5 * time.Minute,

		RegistryDefaultMaxConcurrentTasks: 1,
		RegistryStaleHeartbeatAfter:       5 * time.Minute,
		RegistryHealthSweepInterval:       30 * time.Second,

		OrchestratorTickInterval:         time.Second,
		OrchestratorRetryInitialInterval: 2 * time.Second,
		OrchestratorRetryMaxInterval:     30 * time.Second,
	}
}

func TestValidateAllAcceptsValidConfig(t *testing.T) {
	require.NoError(t, NewValidator(validConfig()).ValidateAll())
}

func TestValidateAgentsRejectsEmptyID(t *testing.T) {
	cfg := validConfig()
	cfg.Agents = []AgentSeed{{ID: "", Type: "developer"}}
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
}

func TestValidateAgentsRejectsDuplicateID(t *testing.T) {
	cfg := validConfig()
	cfg.Agents = []AgentSeed{{ID: "dup", Type: "developer"}, {ID: "dup", Type: "qa"}}
	require.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAgentsRejectsNegativeMaxConcurrentTasks(t *testing.T) {
	cfg := validConfig()
	cfg.Agents = []AgentSeed{{ID: "dev-1", Type: "developer", MaxConcurrentTask: -1}}
	require.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateCSMRejectsNonPositiveCacheTTL(t *testing.T) {
	cfg := validConfig()
	cfg.CSMCacheTTL = 0
	require.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateRegistryRejectsZeroMaxConcurrentTasks(t *testing.T) {
	cfg := validConfig()
	cfg.RegistryDefaultMaxConcurrentTasks = 0
	require.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateOrchestratorRejectsRetryMaxBelowInitial(t *testing.T) {
	cfg := validConfig()
	cfg.OrchestratorRetryInitialInterval = 10 * time.Second
	cfg.OrchestratorRetryMaxInterval = 5 * time.Second
	require.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateRACIRejectsEmptyResponsible(t *testing.T) {
	cfg := validConfig()
	cfg.RACI = raci.New(map[raci.DecisionKind]raci.Authority{
		raci.KindArchitectureChoices: {Responsible: "", Accountable: "tech-lead"},
	})
	err := NewValidator(cfg).ValidateAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "raci validation failed")
}
