package httprequest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgent/flowgent/pkg/testutil"
)

func TestNewHTTPRequestNode_RequiresURL(t *testing.T) {
	_, err := NewHTTPRequestNode("h1", map[string]any{})
	require.Error(t, err)
}

func TestHTTPRequestNode_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("h1", map[string]any{"url": server.URL})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, output["status_code"])
	assert.Equal(t, `{"ok": true}`, output["body"])
	assert.Equal(t, map[string]any{"ok": true}, output["json"])
}

func TestHTTPRequestNode_PostWithTemplatedBody(t *testing.T) {
	var received string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received = string(body)

		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("h1", map[string]any{
		"url":    server.URL,
		"method": "post",
		"body":   `{"name": "{{.input.name}}"}`,
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{"name": "Ada"}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, output["status_code"])
	assert.JSONEq(t, `{"name": "Ada"}`, received)
}

func TestHTTPRequestNode_TemplatedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/42", r.URL.Path)
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("h1", map[string]any{
		"url": server.URL + "/users/{{.vars.user_id}}",
	})
	require.NoError(t, err)

	execCtx := testutil.NewExecutionContext(map[string]any{"user_id": "42"})

	_, err = node.Execute(context.Background(), map[string]any{}, execCtx)
	require.NoError(t, err)
}

func TestHTTPRequestNode_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}

		_, _ = w.Write([]byte("recovered"))
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("h1", map[string]any{
		"url": server.URL,
		"retries": map[string]any{
			"attempts": float64(3),
			"delay":    float64(1),
		},
	})
	require.NoError(t, err)

	output, err := node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.NoError(t, err)
	assert.Equal(t, "recovered", output["body"])
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPRequestNode_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	node, err := NewHTTPRequestNode("h1", map[string]any{
		"url": server.URL,
		"retries": map[string]any{
			"attempts": float64(3),
		},
	})
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), map[string]any{}, testutil.NewExecutionContext(nil))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
