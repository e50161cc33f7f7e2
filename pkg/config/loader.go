package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codeready-toolchain/coordination-core/pkg/raci"
)

// documentFile is the one configuration document this module reads —
// unlike the teacher's multi-file tarsy.yaml/llm-providers.yaml split,
// there is a single RACI/catalog/tunables document since every concern
// here is in-process, not provider-specific.
const documentFile = "coordination.yaml"

// Load reads coordination.yaml from configDir (if present — a missing file
// is not an error, defaults apply), expands {{.VAR}} references against the
// environment, merges it onto the built-in defaults, validates the result,
// and returns a ready-to-use Config.
func Load(configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("loading configuration")

	doc, err := loadDocument(configDir)
	if err != nil {
		return nil, err
	}

	merged, err := mergeDocuments(defaultDocument(), doc)
	if err != nil {
		return nil, fmt.Errorf("config: merging defaults with override: %w", err)
	}

	cfg, err := resolve(configDir, merged)
	if err != nil {
		return nil, err
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	log.Info("configuration loaded", "agents", len(cfg.Agents), "raci_kinds", len(cfg.RACI.Kinds()))
	return cfg, nil
}

func loadDocument(configDir string) (Document, error) {
	path := filepath.Join(configDir, documentFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return Document{}, newLoadError(documentFile, err)
	}

	data = ExpandEnv(data)

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, newLoadError(documentFile, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return doc, nil
}

// resolve converts the merged, string-durationed Document into a Config
// with native time.Duration fields and a built raci.Matrix.
func resolve(configDir string, doc Document) (*Config, error) {
	matrix := buildRACI(doc.RACI)

	cacheTTL, err := parseDuration("csm.cache_ttl", doc.CSM.CacheTTL)
	if err != nil {
		return nil, err
	}
	idleWarningAfter, err := parseDuration("csm.idle_warning_after", doc.CSM.IdleWarningAfter)
	if err != nil {
		return nil, err
	}
	csmSweepInterval, err := parseDuration("csm.sweep_interval", doc.CSM.SweepInterval)
	if err != nil {
		return nil, err
	}
	staleHeartbeatAfter, err := parseDuration("registry.stale_heartbeat_after", doc.Registry.StaleHeartbeatAfter)
	if err != nil {
		return nil, err
	}
	healthSweepInterval, err := parseDuration("registry.health_sweep_interval", doc.Registry.HealthSweepInterval)
	if err != nil {
		return nil, err
	}
	tickInterval, err := parseDuration("orchestrator.tick_interval", doc.Orchestrator.TickInterval)
	if err != nil {
		return nil, err
	}
	retryInitial, err := parseDuration("orchestrator.retry_initial_interval", doc.Orchestrator.RetryInitialInterval)
	if err != nil {
		return nil, err
	}
	retryMax, err := parseDuration("orchestrator.retry_max_interval", doc.Orchestrator.RetryMaxInterval)
	if err != nil {
		return nil, err
	}

	return &Config{
		configDir: configDir,
		RACI:      matrix,
		Agents:    doc.Agents,

		CSMCacheTTL:         cacheTTL,
		CSMIdleWarningAfter: idleWarningAfter,
		CSMSweepInterval:    csmSweepInterval,

		RegistryDefaultMaxConcurrentTasks: doc.Registry.DefaultMaxConcurrentTasks,
		RegistryStaleHeartbeatAfter:       staleHeartbeatAfter,
		RegistryHealthSweepInterval:       healthSweepInterval,

		OrchestratorTickInterval:         tickInterval,
		OrchestratorRetryInitialInterval: retryInitial,
		OrchestratorRetryMaxInterval:     retryMax,
	}, nil
}

func buildRACI(entries map[string]AuthorityYAML) *raci.Matrix {
	converted := make(map[raci.DecisionKind]raci.Authority, len(entries))
	for kind, a := range entries {
		converted[raci.DecisionKind(kind)] = raci.Authority{
			Responsible: a.Responsible,
			Accountable: a.Accountable,
			Consulted:   a.Consulted,
			Informed:    a.Informed,
		}
	}
	return raci.New(converted)
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, NewValidationError(field, fmt.Errorf("must be set"))
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, NewValidationError(field, fmt.Errorf("invalid duration %q: %w", value, err))
	}
	return d, nil
}
