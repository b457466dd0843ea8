package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/moogar0880/problems"

	"github.com/agentboard/agentboard/internal/core"
)

// statusForCategory maps the engine error taxonomy to HTTP status codes.
func statusForCategory(cat core.ErrorCategory) int {
	switch cat {
	case core.ErrCatValidation, core.ErrCatGraph:
		return http.StatusUnprocessableEntity
	case core.ErrCatNotFound:
		return http.StatusNotFound
	case core.ErrCatState, core.ErrCatTransition:
		return http.StatusConflict
	case core.ErrCatNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondProblem writes an RFC 7807 problem document for an engine error.
func (s *Server) respondProblem(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	problemType := "internal_error"
	detail := err.Error()

	var domErr *core.DomainError
	if errors.As(err, &domErr) {
		status = statusForCategory(domErr.Category)
		problemType = strings.ToLower(domErr.Code)
		detail = domErr.Message
	}

	problem := problems.NewStatusProblem(status).
		WithInstance(r.URL.Path).
		WithType(problemType).
		WithDetail(detail)

	w.Header().Set("Content-Type", problems.ProblemMediaType)
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(problem); encErr != nil {
		s.logger.Error("failed to encode problem response", "error", encErr)
	}
}

// respondBadRequest writes a 400 problem for malformed request bodies.
func (s *Server) respondBadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	problem := problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(r.URL.Path).
		WithType("malformed_request").
		WithDetail(detail)

	w.Header().Set("Content-Type", problems.ProblemMediaType)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(problem); err != nil {
		s.logger.Error("failed to encode problem response", "error", err)
	}
}
