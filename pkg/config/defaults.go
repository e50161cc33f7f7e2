package config

import "github.com/codeready-toolchain/coordination-core/pkg/raci"

// defaultDocument returns the built-in configuration a deployment can
// override, field by field, via its own coordination.yaml — mirroring the
// teacher's builtin-plus-user-override layering (pkg/config/builtin.go),
// scoped down to this module's RACI table and tunables.
func defaultDocument() Document {
	return Document{
		RACI: defaultRACI(),
		CSM: CSMTunables{
			CacheTTL:         "60s",
			IdleWarningAfter: "24h",
			SweepInterval:    "5m",
		},
		Registry: RegistryTunables{
			DefaultMaxConcurrentTasks: 1,
			StaleHeartbeatAfter:       "5m",
			HealthSweepInterval:       "30s",
		},
		Orchestrator: OrchestratorTunables{
			TickInterval:         "1s",
			RetryInitialInterval: "2s",
			RetryMaxInterval:     "30s",
		},
	}
}

// defaultRACI converts raci.NewDefault()'s built-in matrix into its YAML
// shape, so the built-in authority table has exactly one source of truth
// and a user override file only needs to name the decision kinds it wants
// to change.
func defaultRACI() map[string]AuthorityYAML {
	matrix := raci.NewDefault()
	out := make(map[string]AuthorityYAML, len(matrix.Kinds()))
	for _, kind := range matrix.Kinds() {
		a, err := matrix.Authority(kind)
		if err != nil {
			continue // Kinds() only ever returns kinds the matrix has an entry for.
		}
		out[string(kind)] = AuthorityYAML{
			Responsible: a.Responsible,
			Accountable: a.Accountable,
			Consulted:   a.Consulted,
			Informed:    a.Informed,
		}
	}
	return out
}
