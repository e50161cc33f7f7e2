// Package main wires the context state manager, agent registry, and task
// orchestrator into a running process, seeds a demo agent catalog and
// project context, and drives one workflow end to end. There is no
// HTTP/WebSocket surface — this module's external interfaces are the Go
// APIs described in its configuration and package documentation, not a
// network API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/codeready-toolchain/coordination-core/pkg/agent"
	"github.com/codeready-toolchain/coordination-core/pkg/config"
	"github.com/codeready-toolchain/coordination-core/pkg/csm"
	"github.com/codeready-toolchain/coordination-core/pkg/orchestrator"
	"github.com/codeready-toolchain/coordination-core/pkg/projectcontext"
	"github.com/codeready-toolchain/coordination-core/pkg/registry"
	"github.com/codeready-toolchain/coordination-core/pkg/task"
)

// everySpec formats d as a robfig/cron "@every" spec, so the sweep
// intervals configured in coordination.yaml actually govern the
// scheduler instead of being validated and then ignored.
func everySpec(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./config"),
		"Path to configuration directory")
	demoProjectID := flag.String("demo-project-id", "demo-project", "project id seeded for the demo workflow")
	flag.Parse()

	log := slog.Default()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		log.Info("loaded environment", "path", envPath)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	log.Info("configuration loaded", "config_dir", *configDir, "agents", len(cfg.Agents), "raci_kinds", len(cfg.RACI.Kinds()))

	manager, err := csm.New(cfg.CSMOptions()...)
	if err != nil {
		log.Error("failed to build context state manager", "error", err)
		os.Exit(1)
	}
	defer manager.Close()

	reg := registry.New(cfg.RegistryOptions()...)
	orch := orchestrator.New(reg, cfg.OrchestratorOptions()...)

	seedDemoProject(manager, *demoProjectID)
	registerSeededAgents(log, reg, manager, cfg.Agents, *demoProjectID)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(everySpec(cfg.CSMSweepInterval), manager.SweepCache); err != nil {
		log.Error("failed to register cache sweep", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc(everySpec(cfg.CSMIdleWarningAfter), manager.WarnIdleContexts); err != nil {
		log.Error("failed to register idle-context warning sweep", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.AddFunc(everySpec(cfg.RegistryHealthSweepInterval), func() { reg.RunHealthSweep() }); err != nil {
		log.Error("failed to register registry health sweep", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch.Start(ctx)
	defer orch.Stop()

	if err := runDemoWorkflow(log, orch, *demoProjectID); err != nil {
		log.Error("demo workflow failed", "error", err)
	}

	log.Info("coordinator running, press ctrl-c to exit")
	<-ctx.Done()
	log.Info("shutting down")
}

// seedDemoProject registers one project context so the demo workflow's
// agents have something to make context-aware decisions against.
func seedDemoProject(manager *csm.Manager, projectID string) {
	ctx, err := projectcontext.New(projectID, "Demo Project", projectcontext.PhaseMVP,
		time.Now().Add(30*24*time.Hour), 0.2,
		projectcontext.PriorityMatrix{Speed: 0.5, Quality: 0.4, Cost: 0.1},
		projectcontext.Constraints{Timeline: "normal", TeamCapacity: "full"},
		projectcontext.TechDebt{CurrentLevel: 0.1, MaxThreshold: 0.6, RepaymentBudget: 0.1},
		projectcontext.BusinessContext{
			UserImpact:          projectcontext.LevelMedium,
			RevenueImpact:       projectcontext.LevelMedium,
			CompetitivePressure: projectcontext.LevelLow,
		},
		"coordinator")
	if err != nil {
		slog.Default().Error("failed to build demo project context", "error", err)
		return
	}
	manager.Register(ctx)
}

// registerSeededAgents builds one ContextAwareAgent per AgentSeed using a
// single generic catalog/selector/executor — a stand-in for the real
// role-specific agents that would embed ContextAwareAgent in a concrete
// deployment of this module.
func registerSeededAgents(log *slog.Logger, reg *registry.Registry, manager *csm.Manager, seeds []config.AgentSeed, defaultProjectID string) {
	catalog := demoCatalog()
	for _, seed := range seeds {
		a := agent.NewContextAwareAgent(seed.ID, manager, defaultProjectID, seed.Capabilities,
			catalog, demoSelector{catalog: catalog}, demoExecutor{})
		if err := reg.Register(a, seed.Capabilities, seed.Type, seed.MaxConcurrentTask); err != nil {
			log.Error("failed to register seeded agent", "agent_id", seed.ID, "error", err)
		}
	}
}

// runDemoWorkflow creates a two-step linear workflow (design -> implement)
// and starts it; the orchestrator's own execution loop advances it from
// there.
func runDemoWorkflow(log *slog.Logger, orch *orchestrator.Orchestrator, projectID string) error {
	def := orchestrator.WorkflowDefinition{
		Name:        "demo feature rollout",
		Description: "seed workflow exercised at startup",
		ProjectID:   projectID,
		Steps: []orchestrator.StepDefinition{
			{ID: "design", Name: "design the change", TaskDescription: "produce a design", MaxRetries: 1},
			{ID: "implement", Name: "implement the change", TaskDescription: "write the code", DependsOn: []string{"design"}, MaxRetries: 2},
		},
	}

	workflowID, err := orch.CreateWorkflow(def)
	if err != nil {
		return err
	}
	if err := orch.StartWorkflow(workflowID); err != nil {
		return err
	}
	log.Info("demo workflow started", "workflow_id", workflowID)
	return nil
}

// demoSelector always returns the catalog's only strategy — a deliberately
// trivial stand-in for a real agent's decision logic.
type demoSelector struct{ catalog agent.StrategyCatalog }

func (s demoSelector) SelectStrategy(projCtx *projectcontext.ProjectContext, t *task.Task, rec *csm.Recommendations) agent.DecisionStrategy {
	strategy, _ := s.catalog.Get(agent.BalancedStrategyTag)
	return strategy
}

// demoExecutor completes every task immediately, echoing the strategy tag
// applied — real role agents replace this with actual work.
type demoExecutor struct{}

func (demoExecutor) ExecuteWithStrategy(ctx context.Context, t *task.Task, strategy agent.DecisionStrategy, projCtx *projectcontext.ProjectContext) (*task.TaskResult, error) {
	return &task.TaskResult{
		TaskID:  t.ID,
		Success: true,
		Output:  map[string]any{"strategy": strategy.Tag},
	}, nil
}

func demoCatalog() agent.StrategyCatalog {
	return agent.StrategyCatalog{
		agent.BalancedStrategyTag: {
			Tag:               agent.BalancedStrategyTag,
			Approach:          "balanced default",
			Rationale:         "demo workflow applies one strategy uniformly",
			QualityTarget:     0.7,
			SpeedFactor:       1.0,
			ResourceIntensity: 0.5,
		},
	}
}
