package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/eventbus"
	"github.com/flowgent/flowgent/pkg/models"
	"github.com/flowgent/flowgent/pkg/persistence/memory"
	"github.com/flowgent/flowgent/pkg/registry"
	"github.com/flowgent/flowgent/pkg/scope"
	"github.com/flowgent/flowgent/pkg/testutil"
)

func setupTestApp() (*fiber.App, *memory.Persistence) {
	persistence := memory.NewPersistence()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes()

	api := NewAPI(
		slog.Default(),
		persistence,
		reg,
		eventbus.NewInProcessEventBus(),
		scope.NewManager(slog.Default()),
	)

	return api.App(), persistence
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Logf("Failed to close response body: %v", err)
	}
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Flowgent API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_HealthCheck(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "healthy", payload["status"])
}

func TestAPI_GetWorkflows_Empty(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/workflows", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Workflows []models.Workflow `json:"workflows"`
		Count     int               `json:"count"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Empty(t, payload.Workflows)
	assert.Equal(t, 0, payload.Count)
}

func TestAPI_CreateWorkflow(t *testing.T) {
	app, _ := setupTestApp()

	body := `{"name": "Support Flow", "owner": "team-cx", "description": "routes chats"}`
	req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Support Flow", created.Name)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
}

func TestAPI_CreateWorkflow_ValidationErrors(t *testing.T) {
	app, _ := setupTestApp()

	cases := []struct {
		name string
		body string
	}{
		{"name too short", `{"name": "ab", "owner": "team-cx"}`},
		{"missing owner", `{"name": "Support Flow"}`},
		{"invalid json", `{"name":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer closeBody(t, resp)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAPI_GetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/workflows/nope", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_UpdatePublishedWorkflow_Conflict(t *testing.T) {
	app, persistence := setupTestApp()

	wf := testutil.CreateTestWorkflow(testutil.CreateTestNode(testutil.WithTriggerNode()))
	require.NoError(t, persistence.WorkflowRepository().Save(context.Background(), wf))

	body := `{"name": "Renamed Flow"}`
	req := httptest.NewRequest(http.MethodPatch, "/workflows/"+wf.ID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_ValidateWorkflow(t *testing.T) {
	app, persistence := setupTestApp()

	wf := testutil.CreateTestWorkflow(testutil.CreateTestNode())
	wf.Status = models.WorkflowStatusDraft
	require.NoError(t, persistence.WorkflowRepository().Save(context.Background(), wf))

	req := httptest.NewRequest(http.MethodGet, "/workflows/"+wf.ID+"/validate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Valid  bool `json:"valid"`
		Errors []struct {
			Code string `json:"code"`
		} `json:"errors"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "missing_trigger", result.Errors[0].Code)
}

func TestAPI_PublishAndExecuteWorkflow(t *testing.T) {
	app, persistence := setupTestApp()

	wf := testutil.CreateTestWorkflow(
		testutil.CreateTestNode(testutil.WithTriggerNode()),
		testutil.CreateTestNode(),
	)
	wf.Status = models.WorkflowStatusDraft
	require.NoError(t, persistence.WorkflowRepository().Save(context.Background(), wf))

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+wf.ID+"/publish", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	closeBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"input_data": {"text": "hello"}, "conversation_id": "conv-1", "channel": "whatsapp"}`
	req = httptest.NewRequest(http.MethodPost, "/workflows/"+wf.ID+"/execute", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var execution models.WorkflowExecution

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&execution))
	assert.Equal(t, models.ExecutionStatusCompleted, execution.Status)
	assert.Len(t, execution.Steps, 2)
	assert.Equal(t, "conv-1", execution.ConversationID)

	// The finished record is retrievable.
	req = httptest.NewRequest(http.MethodGet, "/executions/"+execution.ID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)

	closeBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ExecuteDraftWorkflow_Rejected(t *testing.T) {
	app, persistence := setupTestApp()

	wf := testutil.CreateTestWorkflow(testutil.CreateTestNode(testutil.WithTriggerNode()))
	wf.Status = models.WorkflowStatusDraft
	require.NoError(t, persistence.WorkflowRepository().Save(context.Background(), wf))

	req := httptest.NewRequest(http.MethodPost, "/workflows/"+wf.ID+"/execute", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CancelExecution_NotRunning(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodPost, "/executions/exec-nope/cancel", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetNodeTypes(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/node-types", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		NodeTypes []struct {
			ID     string         `json:"id"`
			Name   string         `json:"name"`
			Schema map[string]any `json:"schema"`
		} `json:"node_types"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

	ids := make([]string, 0, len(payload.NodeTypes))
	for _, item := range payload.NodeTypes {
		ids = append(ids, item.ID)
	}

	assert.Contains(t, ids, "trigger")
	assert.Contains(t, ids, "condition")
	assert.Contains(t, ids, "ai_response")
}

func TestAPI_GetAccessLogs_BadTimestamp(t *testing.T) {
	app, _ := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/access-logs?since=yesterday", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
