package config

// Document is the on-disk shape of coordination.yaml: the RACI table, the
// agent catalog seed data registered into the registry at startup, and the
// tunables for the CSM, registry, and orchestrator. Durations are strings
// on the wire (time.ParseDuration syntax, e.g. "30s", "5m") and resolved
// into time.Duration fields on the merged Config.
type Document struct {
	RACI         map[string]AuthorityYAML `yaml:"raci"`
	Agents       []AgentSeed              `yaml:"agents"`
	CSM          CSMTunables              `yaml:"csm"`
	Registry     RegistryTunables         `yaml:"registry"`
	Orchestrator OrchestratorTunables     `yaml:"orchestrator"`
}

// AuthorityYAML is one decision kind's RACI tuple as it appears in YAML,
// keyed by decision kind in Document.RACI.
type AuthorityYAML struct {
	Responsible string   `yaml:"responsible"`
	Accountable string   `yaml:"accountable"`
	Consulted   []string `yaml:"consulted"`
	Informed    []string `yaml:"informed"`
}

// AgentSeed describes one agent the composition root registers at startup.
type AgentSeed struct {
	ID                string   `yaml:"id"`
	Type              string   `yaml:"type"`
	Capabilities      []string `yaml:"capabilities"`
	MaxConcurrentTask int      `yaml:"max_concurrent_tasks"`
}

// CSMTunables configures the Context State Manager.
type CSMTunables struct {
	CacheTTL         string `yaml:"cache_ttl"`
	IdleWarningAfter string `yaml:"idle_warning_after"`
	SweepInterval    string `yaml:"sweep_interval"`
}

// RegistryTunables configures the agent registry.
type RegistryTunables struct {
	DefaultMaxConcurrentTasks int    `yaml:"default_max_concurrent_tasks"`
	StaleHeartbeatAfter       string `yaml:"stale_heartbeat_after"`
	HealthSweepInterval       string `yaml:"health_sweep_interval"`
}

// OrchestratorTunables configures the task orchestrator.
type OrchestratorTunables struct {
	TickInterval         string `yaml:"tick_interval"`
	RetryInitialInterval string `yaml:"retry_initial_interval"`
	RetryMaxInterval     string `yaml:"retry_max_interval"`
}
