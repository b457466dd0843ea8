// Package cmd implements the agentboard CLI.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentboard/agentboard/internal/backend"
	"github.com/agentboard/agentboard/internal/config"
	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/events"
	"github.com/agentboard/agentboard/internal/logging"
	"github.com/agentboard/agentboard/internal/service"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	// Version info - set via SetVersion()
	appVersion string
	appCommit  string
	appDate    string
)

var rootCmd = &cobra.Command{
	Use:   "agentboard",
	Short: "Agent workflow orchestration engine for the analysis dashboard",
	Long: `agentboard drives multi-agent analysis workflows against a remote
orchestration backend: it validates the agent dependency graph, manages the
session lifecycle (start, pause, resume, stop, reset) and keeps local agent
statuses synchronized with the backend by adaptive polling.

It exposes the engine to the dashboard over a local HTTP API with an SSE
event stream.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func SetVersion(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: .agentboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format (auto, text, json)")

	// Bind flags to viper (errors are nil when flag exists)
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// loadConfig loads configuration honoring the --config flag and CLI flag
// bindings.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoaderWithViper(viper.GetViper())
	if cfgFile != "" {
		loader.WithConfigFile(cfgFile)
	}
	return loader.Load()
}

// newLogger builds the process logger from the loaded config.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// engine bundles the wired orchestration components.
type engine struct {
	graph   *service.WorkflowGraph
	backend core.Backend
	bus     *events.Bus
	ctrl    *service.ExecutionController
}

// buildEngine wires the workflow graph, backend client, event bus and
// controller from config.
func buildEngine(cfg *config.Config, logger *logging.Logger) (*engine, error) {
	graph, err := service.NewWorkflowGraph(cfg.AgentSpecs())
	if err != nil {
		return nil, err
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	bus := events.New(100)
	ctrl := service.NewExecutionController(graph, client, bus,
		service.WithWorkflowConfig(cfg.WorkflowRequestConfig()),
		service.WithSyncConfig(service.SyncConfig{
			ActiveInterval: cfg.Sync.ActiveInterval,
			PausedInterval: cfg.Sync.PausedInterval,
		}),
		service.WithLogger(logger),
	)

	return &engine{graph: graph, backend: client, bus: bus, ctrl: ctrl}, nil
}

// Close tears down the engine.
func (e *engine) Close() {
	e.ctrl.Close()
	e.bus.Close()
}
