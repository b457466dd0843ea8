// Package config loads and validates application configuration from files,
// environment variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/agentboard/agentboard/internal/core"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Backend  BackendConfig  `mapstructure:"backend" validate:"required"`
	Sync     SyncConfig     `mapstructure:"sync" validate:"required"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
	Agents   []AgentConfig  `mapstructure:"agents" validate:"min=1,dive"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig configures the local HTTP API.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required,hostname_port"`
}

// BackendConfig configures the remote orchestration backend.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// SyncConfig configures the status polling cadence.
type SyncConfig struct {
	ActiveInterval time.Duration `mapstructure:"active_interval" validate:"gt=0"`
	PausedInterval time.Duration `mapstructure:"paused_interval" validate:"gt=0"`
}

// WorkflowConfig configures the execution request sent on start.
type WorkflowConfig struct {
	Sequential     bool `mapstructure:"sequential"`
	RetryOnError   bool `mapstructure:"retry_on_error"`
	MaxRetries     int  `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	TimeoutMinutes int  `mapstructure:"timeout_minutes" validate:"gt=0,lte=1440"`
}

// AgentConfig declares one pipeline stage.
type AgentConfig struct {
	ID           string   `mapstructure:"id" validate:"required"`
	Name         string   `mapstructure:"name"`
	Dependencies []string `mapstructure:"dependencies"`
	Priority     int      `mapstructure:"priority"`
	Capabilities []string `mapstructure:"capabilities"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=auto text json"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration for structural problems. Graph-level
// problems (cycles, unknown dependencies) are caught later when the workflow
// graph is built.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Namespace()), fe.Tag()))
			}
			return core.ErrValidation("INVALID_CONFIG", strings.Join(msgs, "; "))
		}
		return core.ErrValidation("INVALID_CONFIG", err.Error())
	}
	return nil
}

// AgentSpecs converts the declared agents into engine specs.
func (c *Config) AgentSpecs() []core.AgentSpec {
	specs := make([]core.AgentSpec, 0, len(c.Agents))
	for _, a := range c.Agents {
		deps := make([]core.AgentID, 0, len(a.Dependencies))
		for _, d := range a.Dependencies {
			deps = append(deps, core.AgentID(d))
		}
		specs = append(specs, core.AgentSpec{
			ID:           core.AgentID(a.ID),
			Name:         a.Name,
			Dependencies: deps,
			Priority:     a.Priority,
			Capabilities: a.Capabilities,
		})
	}
	return specs
}

// WorkflowRequestConfig converts the workflow block into the wire form.
func (c *Config) WorkflowRequestConfig() core.WorkflowConfig {
	return core.WorkflowConfig{
		Sequential:     c.Workflow.Sequential,
		RetryOnError:   c.Workflow.RetryOnError,
		MaxRetries:     c.Workflow.MaxRetries,
		TimeoutMinutes: c.Workflow.TimeoutMinutes,
	}
}
