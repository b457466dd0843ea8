package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the workflow state of a running serve instance",
	Long: `Query a running agentboard serve instance and print the current
workflow snapshot.

Examples:
  agentboard status
  agentboard status --addr 127.0.0.1:9000 -o yaml`,
	RunE: runStatus,
}

var (
	statusAddr   string
	statusOutput string
)

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusAddr, "addr", "127.0.0.1:8600",
		"address of the serve instance")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table",
		"output format (table, json, yaml)")
}

// statusResponse mirrors the GET /api/v1/workflow payload loosely; unknown
// fields are fine for display purposes.
type statusResponse struct {
	Execution struct {
		SessionID string `json:"session_id" yaml:"session_id"`
		Query     string `json:"query,omitempty" yaml:"query,omitempty"`
		IsRunning bool   `json:"is_running" yaml:"is_running"`
		IsPaused  bool   `json:"is_paused" yaml:"is_paused"`
		Agents    []struct {
			Spec struct {
				ID string `json:"id" yaml:"id"`
			} `json:"spec" yaml:"spec"`
			Status   string  `json:"status" yaml:"status"`
			Progress float64 `json:"progress" yaml:"progress"`
			Error    string  `json:"error,omitempty" yaml:"error,omitempty"`
		} `json:"agents" yaml:"agents"`
	} `json:"execution" yaml:"execution"`
	Progress struct {
		CompletedSteps int     `json:"completed_steps" yaml:"completed_steps"`
		TotalSteps     int     `json:"total_steps" yaml:"total_steps"`
		OverallPercent float64 `json:"overall_percent" yaml:"overall_percent"`
	} `json:"progress" yaml:"progress"`
}

func runStatus(_ *cobra.Command, _ []string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get("http://" + statusAddr + "/api/v1/workflow")
	if err != nil {
		return fmt.Errorf("is serve running on %s? %w", statusAddr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, statusAddr)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	switch statusOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(status)
	case "table":
		printStatusTable(&status)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", statusOutput)
	}
}

func printStatusTable(status *statusResponse) {
	exec := &status.Execution
	state := "idle"
	switch {
	case exec.IsRunning:
		state = "running"
	case exec.IsPaused:
		state = "paused"
	}

	fmt.Printf("session:  %s\n", exec.SessionID)
	if exec.Query != "" {
		fmt.Printf("query:    %s\n", exec.Query)
	}
	fmt.Printf("state:    %s\n", state)
	fmt.Printf("progress: %d/%d (%.0f%%)\n\n",
		status.Progress.CompletedSteps, status.Progress.TotalSteps, status.Progress.OverallPercent)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "AGENT\tSTATUS\tPROGRESS\tERROR")
	for _, a := range exec.Agents {
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n", a.Spec.ID, a.Status, a.Progress, a.Error)
	}
	_ = w.Flush()
}
