package config

// DefaultConfigYAML contains the default configuration YAML content written
// by `agentboard init`.
const DefaultConfigYAML = `# agentboard configuration
#
# Values not specified here use sensible defaults.

# Local HTTP API for the dashboard
server:
  addr: 127.0.0.1:8600

# Remote orchestration backend
backend:
  base_url: http://localhost:8000
  timeout: 30s

# Status polling cadence: fast while running, relaxed while paused
sync:
  active_interval: 1500ms
  paused_interval: 5s

# Execution request settings sent on workflow start
workflow:
  sequential: true
  retry_on_error: true
  max_retries: 3
  timeout_minutes: 30

log:
  level: info
  format: auto

# Agent pipeline. Dependencies must name declared agent ids and form an
# acyclic graph; priority only breaks ordering ties.
agents:
  - id: planning
    name: Planning Agent
    priority: 0
    capabilities: [decompose, plan]

  - id: data_analysis
    name: Data Analysis Agent
    dependencies: [planning]
    priority: 1
    capabilities: [analyze]

  - id: query
    name: Query Agent
    dependencies: [data_analysis]
    priority: 2
    capabilities: [sql]

  - id: insight
    name: Insight Agent
    dependencies: [data_analysis, query]
    priority: 3
    capabilities: [summarize]
`
