package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboard/agentboard/internal/core"
)

func TestLoadDefaults(t *testing.T) {
	// Run from an empty directory so no project config is picked up.
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8600", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Sync.ActiveInterval)
	assert.Equal(t, 5*time.Second, cfg.Sync.PausedInterval)
	assert.Equal(t, 3, cfg.Workflow.MaxRetries)
	assert.Equal(t, "info", cfg.Log.Level)

	require.Len(t, cfg.Agents, 4)
	assert.Equal(t, "planning", cfg.Agents[0].ID)
	assert.Equal(t, []string{"data_analysis", "query"}, cfg.Agents[3].Dependencies)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: 0.0.0.0:9900
backend:
  base_url: https://orchestrator.internal:8443
sync:
  active_interval: 2s
agents:
  - id: a
  - id: b
    dependencies: [a]
`), 0o644))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9900", cfg.Server.Addr)
	assert.Equal(t, "https://orchestrator.internal:8443", cfg.Backend.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Sync.ActiveInterval)
	// Unset keys keep their defaults.
	assert.Equal(t, 5*time.Second, cfg.Sync.PausedInterval)

	require.Len(t, cfg.Agents, 2)
	assert.Equal(t, []string{"a"}, cfg.Agents[1].Dependencies)
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  base_url: "not a url"
`), 0o644))

	_, err := NewLoader().WithConfigFile(path).Load()
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatValidation))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AGENTBOARD_SERVER_ADDR", "127.0.0.1:7777")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7777", cfg.Server.Addr)
}

func TestDefaultConfigYAMLLoads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".agentboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(DefaultConfigYAML), 0o644))

	cfg, err := NewLoader().WithConfigFile(path).Load()
	require.NoError(t, err)
	require.Len(t, cfg.Agents, 4)
}

func TestAgentSpecs(t *testing.T) {
	cfg := &Config{Agents: []AgentConfig{
		{ID: "a", Name: "A", Priority: 1, Capabilities: []string{"x"}},
		{ID: "b", Dependencies: []string{"a"}, Priority: 2},
	}}

	specs := cfg.AgentSpecs()
	require.Len(t, specs, 2)
	assert.Equal(t, core.AgentID("a"), specs[0].ID)
	assert.Equal(t, []core.AgentID{"a"}, specs[1].Dependencies)
}
