package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentboard/agentboard/internal/api"
	"github.com/agentboard/agentboard/internal/config"
	"github.com/agentboard/agentboard/internal/diagnostics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the engine and its HTTP API",
	Long: `Start the orchestration engine and serve the dashboard API.

The server exposes workflow lifecycle endpoints, a read-only execution
snapshot and an SSE stream of engine events.

Examples:
  # Start with defaults (127.0.0.1:8600)
  agentboard serve

  # Custom bind address
  agentboard serve --addr 0.0.0.0:9000`,
	RunE: runServe,
}

var serveAddr string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"address to bind to (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	eng, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := api.NewServer(eng.ctrl, eng.backend, eng.bus,
		api.WithLogger(logger),
		api.WithCollector(diagnostics.NewCollector()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Surface on-disk config edits; agent graph changes need a restart.
	if path := configFilePath(); path != "" {
		stopWatch, err := config.Watch(path, logger, func(_ *config.Config) {
			logger.Info("config file changed, restart serve to apply", "path", path)
		})
		if err != nil {
			logger.Warn("config watch unavailable", "path", path, "error", err)
		} else {
			defer stopWatch()
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, addr)
	})

	logger.Info("agentboard serving",
		"addr", addr,
		"backend", cfg.Backend.BaseURL,
		"agents", len(cfg.Agents))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// configFilePath returns the config file to watch, if any.
func configFilePath() string {
	return cfgFile
}
