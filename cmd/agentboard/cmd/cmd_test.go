package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentboard/agentboard/internal/config"
	"github.com/agentboard/agentboard/internal/core"
	"github.com/agentboard/agentboard/internal/logging"
	"github.com/agentboard/agentboard/internal/service"
)

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".agentboard.yaml")

	oldCfgFile := cfgFile
	cfgFile = path
	defer func() { cfgFile = oldCfgFile }()

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "data_analysis") {
		t.Error("default config missing agent pipeline")
	}

	// Second init without --force refuses to clobber.
	if err := runInit(nil, nil); err == nil {
		t.Fatal("runInit() should refuse to overwrite without --force")
	}
	initForce = true
	defer func() { initForce = false }()
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit(--force) error = %v", err)
	}
}

func TestInitOutputLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".agentboard.yaml")
	if err := os.WriteFile(path, []byte(config.DefaultConfigYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader().WithConfigFile(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Agents) != 4 {
		t.Errorf("agents = %d, want 4", len(cfg.Agents))
	}
}

func TestBuildEngine(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: "http://localhost:8000"},
		Agents: []config.AgentConfig{
			{ID: "a"},
			{ID: "b", Dependencies: []string{"a"}},
		},
	}

	eng, err := buildEngine(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("buildEngine() error = %v", err)
	}
	defer eng.Close()

	if eng.graph.Len() != 2 {
		t.Errorf("graph.Len() = %d, want 2", eng.graph.Len())
	}
	if eng.ctrl.Snapshot().SessionID == "" {
		t.Error("controller has no session id")
	}
}

func TestBuildEngine_CyclicGraph(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: "http://localhost:8000"},
		Agents: []config.AgentConfig{
			{ID: "a", Dependencies: []string{"b"}},
			{ID: "b", Dependencies: []string{"a"}},
		},
	}

	if _, err := buildEngine(cfg, logging.NewNop()); err == nil {
		t.Fatal("buildEngine() should reject a cyclic agent graph")
	}
}

func TestProgressLine(t *testing.T) {
	snap := &core.ExecutionSnapshot{
		Agents: []*core.Agent{
			{Spec: core.AgentSpec{ID: "planning"}, Status: core.AgentStatusComplete, Progress: 100},
			{Spec: core.AgentSpec{ID: "query"}, Status: core.AgentStatusProcessing, Progress: 40},
		},
	}
	p := service.OverallProgress{CompletedSteps: 1, TotalSteps: 2, OverallPercent: 50}

	line := progressLine(snap, p)
	want := "[1/2 50%] planning complete | query 40%"
	if line != want {
		t.Errorf("progressLine() = %q, want %q", line, want)
	}
}
