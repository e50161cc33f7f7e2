package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/coordination-core/pkg/csm"
	"github.com/codeready-toolchain/coordination-core/pkg/orchestrator"
	"github.com/codeready-toolchain/coordination-core/pkg/raci"
	"github.com/codeready-toolchain/coordination-core/pkg/registry"
)

func TestConfigDirReturnsLoadedDirectory(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{configDir: dir}
	assert.Equal(t, dir, cfg.ConfigDir())
}

func TestCSMOptionsApplyCacheTTLAndRACI(t *testing.T) {
	cfg := &Config{RACI: raci.NewDefault(), CSMCacheTTL: 42 * time.Second}
	manager, err := csm.New(cfg.CSMOptions()...)
	require.NoError(t, err)
	require.NotNil(t, manager)
}

func TestRegistryOptionsApplyTunables(t *testing.T) {
	cfg := &Config{
		RegistryDefaultMaxConcurrentTasks: 3,
		RegistryStaleHeartbeatAfter:       90 * time.Second,
	}
	reg := registry.New(cfg.RegistryOptions()...)
	require.NotNil(t, reg)
}

func TestOrchestratorOptionsApplyTunables(t *testing.T) {
	reg := registry.New()
	cfg := &Config{
		OrchestratorTickInterval:         5 * time.Millisecond,
		OrchestratorRetryInitialInterval: time.Second,
		OrchestratorRetryMaxInterval:     10 * time.Second,
	}
	orch := orchestrator.New(reg, cfg.OrchestratorOptions()...)
	require.NotNil(t, orch)
}
