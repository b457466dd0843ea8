package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboard/agentboard/internal/core"
)

func TestClient_ExecuteWorkflow(t *testing.T) {
	var got core.ExecuteWorkflowRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/workflow/execute", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(core.ExecuteWorkflowResponse{SessionID: got.SessionID})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := client.ExecuteWorkflow(context.Background(), core.ExecuteWorkflowRequest{
		Query:     "quarterly revenue trends",
		SessionID: "sess-1",
		Agents: []core.AgentSpec{
			{ID: "planning", Priority: 0},
			{ID: "analysis", Priority: 1, Dependencies: []core.AgentID{"planning"}},
		},
		Config: core.DefaultWorkflowConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.Equal(t, "quarterly revenue trends", got.Query)
	assert.True(t, got.Config.Sequential)
}

func TestClient_StatusDecodesSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/execution/sess-1/status", r.URL.Path)
		w.Write([]byte(`{"session_id":"sess-1","is_running":true,"statuses":{"planning":"processing"},"spurious_field":1}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	snap, err := client.Status(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", snap.SessionID)
	assert.Equal(t, "processing", snap.Statuses["planning"])
}

func TestClient_Non2xxIsRemoteCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = client.Pause(context.Background(), "sess-1")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatNetwork))
	assert.True(t, core.IsRetryable(err))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Status(context.Background(), "sess-1")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatNetwork))
}

func TestClient_Lifecycle(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.Pause(ctx, "s"))
	require.NoError(t, client.Resume(ctx, "s"))
	require.NoError(t, client.Stop(ctx, "s"))
	assert.Equal(t, []string{"/execution/s/pause", "/execution/s/resume", "/execution/s/stop"}, paths)
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(core.HealthInfo{
			Status:        "healthy",
			SystemMetrics: map[string]float64{"cpu_percent": 12.5},
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	info, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", info.Status)
	assert.InDelta(t, 12.5, info.SystemMetrics["cpu_percent"], 0.001)
}
