package core

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// StatusSnapshot is a point-in-time status report for all agents as produced
// by the remote backend. Ids absent from a map carry no new information and
// retain their previous local value on merge.
type StatusSnapshot struct {
	SessionID           string             `json:"session_id"`
	IsRunning           bool               `json:"is_running"`
	IsPaused            bool               `json:"is_paused"`
	CurrentAgent        string             `json:"current_agent,omitempty"`
	CurrentStep         int                `json:"current_step,omitempty"`
	Statuses            map[string]string  `json:"statuses,omitempty"`
	Progress            map[string]float64 `json:"progress,omitempty"`
	Results             map[string]string  `json:"results,omitempty"`
	Errors              map[string]string  `json:"errors,omitempty"`
	Metrics             map[string]AgentMetrics `json:"metrics,omitempty"`
	EstimatedCompletion *time.Time         `json:"estimated_completion,omitempty"`
	CompletedSteps      int                `json:"completed_steps,omitempty"`
	SystemMetrics       map[string]float64 `json:"system_metrics,omitempty"`
}

// snapshotFields is the set of top-level keys DecodeStatusSnapshot accepts.
var snapshotFields = map[string]bool{
	"session_id":           true,
	"is_running":           true,
	"is_paused":            true,
	"current_agent":        true,
	"current_step":         true,
	"statuses":             true,
	"progress":             true,
	"results":              true,
	"errors":               true,
	"metrics":              true,
	"estimated_completion": true,
	"completed_steps":      true,
	"system_metrics":       true,
}

// DecodeStatusSnapshot parses a backend status payload. Only known fields are
// accepted; unrecognized top-level keys are returned for reporting rather
// than silently merged into local state.
func DecodeStatusSnapshot(data []byte) (*StatusSnapshot, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, ErrValidation("MALFORMED_SNAPSHOT", "status payload is not a JSON object").WithCause(err)
	}

	var unknown []string
	for key := range raw {
		if !snapshotFields[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	dec := json.NewDecoder(bytes.NewReader(data))
	snap := &StatusSnapshot{}
	if err := dec.Decode(snap); err != nil {
		return nil, unknown, ErrValidation("MALFORMED_SNAPSHOT", "status payload failed to decode").WithCause(err)
	}
	return snap, unknown, nil
}
