package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentboard/agentboard/internal/events"
	"github.com/agentboard/agentboard/internal/service"
	"github.com/agentboard/agentboard/internal/testutil"
)

type apiFixture struct {
	srv     *httptest.Server
	ctrl    *service.ExecutionController
	backend *testutil.FakeBackend
	bus     *events.Bus
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	backend := testutil.NewFakeBackend()
	graph, err := service.NewWorkflowGraph(testutil.PipelineSpecs())
	require.NoError(t, err)

	bus := events.New(64)
	clock := testutil.NewManualClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	ctrl := service.NewExecutionController(graph, backend, bus,
		service.WithIDGenerator(testutil.NewSequenceIDs("sess")),
		service.WithClock(clock),
	)

	server := NewServer(ctrl, backend, bus)
	srv := httptest.NewServer(server.Handler())

	t.Cleanup(srv.Close)
	t.Cleanup(ctrl.Close)
	t.Cleanup(bus.Close)

	return &apiFixture{srv: srv, ctrl: ctrl, backend: backend, bus: bus}
}

func (f *apiFixture) get(t *testing.T, path string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(f.srv.URL + path)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func (f *apiFixture) post(t *testing.T, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(f.srv.URL+path, "application/json", &buf)
	require.NoError(t, err)
	return resp, decodeBody(t, resp)
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestGetWorkflow(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.get(t, "/api/v1/workflow")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	exec := body["execution"].(map[string]interface{})
	assert.Equal(t, "sess-1", exec["session_id"])
	assert.Equal(t, false, exec["is_running"])
	assert.Len(t, exec["agents"], 4)
}

func TestStartWorkflow(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.post(t, "/api/v1/workflow/start", StartRequest{Query: "top products by margin"})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	exec := body["execution"].(map[string]interface{})
	assert.Equal(t, true, exec["is_running"])
	require.Len(t, f.backend.Calls("execute"), 1)

	// Starting again while active conflicts.
	resp, body = f.post(t, "/api/v1/workflow/start", StartRequest{Query: "again"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "invalid_session_state", body["type"])
}

func TestStartWorkflow_Validation(t *testing.T) {
	f := newAPIFixture(t)

	resp, _ := f.post(t, "/api/v1/workflow/start", map[string]string{"query": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, f.srv.URL+"/api/v1/workflow/start",
		bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
	assert.Empty(t, f.backend.Calls("execute"))
}

func TestLifecycleRoundTrip(t *testing.T) {
	f := newAPIFixture(t)

	resp, _ := f.post(t, "/api/v1/workflow/start", StartRequest{Query: "q"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := f.post(t, "/api/v1/workflow/pause", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["execution"].(map[string]interface{})["is_paused"])

	resp, body = f.post(t, "/api/v1/workflow/resume", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["execution"].(map[string]interface{})["is_running"])

	resp, body = f.post(t, "/api/v1/workflow/stop", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	exec := body["execution"].(map[string]interface{})
	assert.Equal(t, false, exec["is_running"])
	assert.Equal(t, false, exec["is_paused"])
}

func TestPauseWithoutRun(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.post(t, "/api/v1/workflow/pause", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
	assert.Equal(t, float64(http.StatusConflict), body["status"])
}

func TestResetWorkflow(t *testing.T) {
	f := newAPIFixture(t)

	resp, _ := f.post(t, "/api/v1/workflow/start", StartRequest{Query: "q"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp, body := f.post(t, "/api/v1/workflow/reset", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	exec := body["execution"].(map[string]interface{})
	assert.Equal(t, "sess-2", exec["session_id"])
	assert.Equal(t, false, exec["is_running"])
}

func TestListAgents(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.get(t, "/api/v1/agents")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	agents := body["agents"].([]interface{})
	require.Len(t, agents, 4)
	first := agents[0].(map[string]interface{})
	assert.Equal(t, "planning", first["id"])
	assert.Equal(t, "idle", first["status"])

	last := agents[3].(map[string]interface{})
	assert.Equal(t, "insight", last["id"])
	assert.Len(t, last["dependencies"], 2)
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	resp, body := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	backend := body["backend"].(map[string]interface{})
	assert.Equal(t, true, backend["reachable"])

	system := body["system"].(map[string]interface{})
	assert.Contains(t, system, "mem_total_mb")
}
