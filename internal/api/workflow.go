package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/agentboard/agentboard/internal/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StartRequest is the body of POST /api/v1/workflow/start.
type StartRequest struct {
	Query string `json:"query" validate:"required,min=1,max=4096"`
}

// WorkflowResponse pairs the execution snapshot with its derived progress
// view.
type WorkflowResponse struct {
	Execution *core.ExecutionSnapshot `json:"execution"`
	Progress  interface{}             `json:"progress"`
}

// AgentView is the static declaration plus live state of one agent.
type AgentView struct {
	ID           core.AgentID     `json:"id"`
	Name         string           `json:"name,omitempty"`
	Dependencies []core.AgentID   `json:"dependencies"`
	Priority     int              `json:"priority"`
	Status       core.AgentStatus `json:"status"`
	Progress     float64          `json:"progress"`
	Error        string           `json:"error,omitempty"`
}

// handleGetWorkflow returns the current execution snapshot.
func (s *Server) handleGetWorkflow(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, WorkflowResponse{
		Execution: s.ctrl.Snapshot(),
		Progress:  s.ctrl.Progress(),
	})
}

// handleStart validates the query and starts a workflow run.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.respondBadRequest(w, r, "failed to read request body")
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondBadRequest(w, r, "request body is not valid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.respondBadRequest(w, r, "query is required and must be at most 4096 characters")
		return
	}

	if err := s.ctrl.Start(r.Context(), req.Query); err != nil {
		s.respondProblem(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusAccepted, WorkflowResponse{
		Execution: s.ctrl.Snapshot(),
		Progress:  s.ctrl.Progress(),
	})
}

// handlePause suspends the running workflow.
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Pause(r.Context()); err != nil {
		s.respondProblem(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, WorkflowResponse{
		Execution: s.ctrl.Snapshot(),
		Progress:  s.ctrl.Progress(),
	})
}

// handleResume continues a paused workflow.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Resume(r.Context()); err != nil {
		s.respondProblem(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, WorkflowResponse{
		Execution: s.ctrl.Snapshot(),
		Progress:  s.ctrl.Progress(),
	})
}

// handleStop aborts the active workflow.
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Stop(r.Context()); err != nil {
		s.respondProblem(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, WorkflowResponse{
		Execution: s.ctrl.Snapshot(),
		Progress:  s.ctrl.Progress(),
	})
}

// handleReset clears the session locally and allocates a fresh id.
func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Reset()
	s.respondJSON(w, http.StatusOK, WorkflowResponse{
		Execution: s.ctrl.Snapshot(),
		Progress:  s.ctrl.Progress(),
	})
}

// handleListAgents returns every declared agent with its live state, in
// display order.
func (s *Server) handleListAgents(w http.ResponseWriter, _ *http.Request) {
	snap := s.ctrl.Snapshot()
	views := make([]AgentView, 0, len(snap.Agents))
	for _, a := range snap.Agents {
		views = append(views, AgentView{
			ID:           a.ID(),
			Name:         a.Spec.Name,
			Dependencies: a.Spec.Dependencies,
			Priority:     a.Spec.Priority,
			Status:       a.Status,
			Progress:     a.Progress,
			Error:        a.Error,
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"agents": views})
}
