package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/service"
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Run one workflow to completion",
	Long: `Start a workflow for the given query and poll it to completion,
printing progress as agents advance. Exits non-zero when any agent ends in
error.

Examples:
  agentboard run "quarterly revenue by region"
  agentboard run --report run.json "churn drivers by cohort"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runReportPath string
	runTimeout    time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runReportPath, "report", "",
		"write a JSON session report to this path when the run ends")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Minute,
		"abort the run after this long")
}

func runRun(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	query := args[0]
	if err := eng.ctrl.Start(ctx, query); err != nil {
		return fmt.Errorf("starting workflow: %w", err)
	}

	snap := eng.ctrl.Snapshot()
	fmt.Printf("session %s started: %d agents\n", snap.SessionID, len(snap.Agents))

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastLine := ""
	for {
		select {
		case <-ctx.Done():
			_ = eng.ctrl.Stop(context.Background())
			return fmt.Errorf("run aborted: %w", ctx.Err())

		case <-ticker.C:
			snap = eng.ctrl.Snapshot()
			if line := progressLine(snap, eng.ctrl.Progress()); line != lastLine {
				fmt.Println(line)
				lastLine = line
			}
			if !snap.IsRunning && !snap.IsPaused {
				return finishRun(eng, snap)
			}
		}
	}
}

func finishRun(eng *engine, snap *core.ExecutionSnapshot) error {
	if runReportPath != "" {
		if err := service.WriteReport(runReportPath, snap, time.Now()); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Printf("report written to %s\n", runReportPath)
	}

	errored := 0
	for _, a := range snap.Agents {
		if a.Status == core.AgentStatusError {
			errored++
			fmt.Printf("agent %s failed: %s\n", a.ID(), a.Error)
		}
	}
	if errored > 0 {
		return fmt.Errorf("%d of %d agents failed", errored, len(snap.Agents))
	}
	fmt.Println("workflow complete")
	return nil
}

func progressLine(snap *core.ExecutionSnapshot, p service.OverallProgress) string {
	parts := make([]string, 0, len(snap.Agents))
	for _, a := range snap.Agents {
		switch a.Status {
		case core.AgentStatusProcessing:
			parts = append(parts, fmt.Sprintf("%s %.0f%%", a.ID(), a.Progress))
		default:
			parts = append(parts, fmt.Sprintf("%s %s", a.ID(), a.Status))
		}
	}
	return fmt.Sprintf("[%d/%d %.0f%%] %s",
		p.CompletedSteps, p.TotalSteps, p.OverallPercent, strings.Join(parts, " | "))
}
