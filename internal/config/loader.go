package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v          *viper.Viper
	configFile string
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		v:         viper.New(),
		envPrefix: "AGENTBOARD",
	}
}

// NewLoaderWithViper creates a loader using an existing viper instance.
// This allows integration with CLI flag bindings.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{
		v:         v,
		envPrefix: "AGENTBOARD",
	}
}

// WithConfigFile sets an explicit config file path.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// Viper returns the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load loads configuration from all sources.
// Precedence (highest to lowest):
// 1. CLI flags (set via viper.BindPFlag)
// 2. Environment variables (AGENTBOARD_*)
// 3. Project config (.agentboard.yaml in current directory)
// 4. User config (~/.config/agentboard/config.yaml)
// 5. Defaults
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()

	l.v.SetEnvPrefix(l.envPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName(".agentboard")
		l.v.SetConfigType("yaml")

		// Project config takes precedence over user config.
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", "agentboard"))
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults configures default values. The agent pipeline defaults to the
// four-stage analysis flow used by the dashboard.
func (l *Loader) setDefaults() {
	l.v.SetDefault("server.addr", "127.0.0.1:8600")

	l.v.SetDefault("backend.base_url", "http://localhost:8000")
	l.v.SetDefault("backend.timeout", "30s")

	l.v.SetDefault("sync.active_interval", "1500ms")
	l.v.SetDefault("sync.paused_interval", "5s")

	l.v.SetDefault("workflow.sequential", true)
	l.v.SetDefault("workflow.retry_on_error", true)
	l.v.SetDefault("workflow.max_retries", 3)
	l.v.SetDefault("workflow.timeout_minutes", 30)

	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	l.v.SetDefault("agents", []map[string]interface{}{
		{
			"id":           "planning",
			"name":         "Planning Agent",
			"priority":     0,
			"capabilities": []string{"decompose", "plan"},
		},
		{
			"id":           "data_analysis",
			"name":         "Data Analysis Agent",
			"dependencies": []string{"planning"},
			"priority":     1,
			"capabilities": []string{"analyze"},
		},
		{
			"id":           "query",
			"name":         "Query Agent",
			"dependencies": []string{"data_analysis"},
			"priority":     2,
			"capabilities": []string{"sql"},
		},
		{
			"id":           "insight",
			"name":         "Insight Agent",
			"dependencies": []string{"data_analysis", "query"},
			"priority":     3,
			"capabilities": []string{"summarize"},
		},
	})
}

// ConfigFile returns the config file path if one was used.
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}
