package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/taskflow/internal/tools"
)

// echoTool returns its "say" argument, fails as a tool error on "fail",
// and as a Go error on "crash".
type echoTool struct{}

func (echoTool) Definition() mcp.Tool { return mcp.NewTool("echo") }

func (echoTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	say := req.GetString("say", "")
	switch say {
	case "fail":
		return mcp.NewToolResultError("told to fail"), nil
	case "crash":
		return nil, errors.New("crashed")
	}
	return mcp.NewToolResultText("echo: " + say), nil
}

type otherTool struct{}

func (otherTool) Definition() mcp.Tool { return mcp.NewTool("another") }

func (otherTool) Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("ok"), nil
}

func newTestRouter() http.Handler {
	reg := tools.NewRegistry()
	reg.Add(echoTool{})
	reg.Add(otherTool{})
	return NewRouter(reg)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestInvoke(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		name    string
		body    string
		isError bool
		text    string
	}{
		{"success", `{"say": "hi"}`, false, "echo: hi"},
		{"tool error", `{"say": "fail"}`, true, "told to fail"},
		{"empty body", ``, false, "echo: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/invoke/echo", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp InvokeResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "echo", resp.Tool)
			assert.Equal(t, tt.isError, resp.IsError)
			assert.Equal(t, tt.text, resp.Text)
		})
	}
}

func TestInvoke_Failures(t *testing.T) {
	h := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown tool", http.MethodPost, "/v1/invoke/nope", `{}`, http.StatusNotFound},
		{"not an object", http.MethodPost, "/v1/invoke/echo", `["x"]`, http.StatusBadRequest},
		{"malformed", http.MethodPost, "/v1/invoke/echo", `{"say":`, http.StatusBadRequest},
		{"handler error", http.MethodPost, "/v1/invoke/echo", `{"say": "crash"}`, http.StatusInternalServerError},
		{"wrong method", http.MethodGet, "/v1/invoke/echo", ``, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestListTools(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/v1/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tools": ["another", "echo"]}`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestRouter(), http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Serve(ctx, "127.0.0.1:0", newTestRouter()) }()

	cancel()
	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("Serve returned %v", err)
	}
}
