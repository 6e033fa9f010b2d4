// Package gateway exposes the taskflow tools over HTTP. It runs the same
// handlers as the MCP server, so a tool behaves identically on both
// transports.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/logging"
	"github.com/loqalabs/taskflow/internal/tools"
)

// maxBodyBytes bounds an invoke request body.
const maxBodyBytes = 1 << 20

// InvokeResponse is the body of a successful POST /v1/invoke/{tool}.
type InvokeResponse struct {
	Tool    string `json:"tool"`
	IsError bool   `json:"is_error"`
	Text    string `json:"text"`
}

// Handler serves the gateway endpoints.
type Handler struct {
	registry *tools.Registry
	log      *slog.Logger
}

// NewRouter creates the gateway router.
func NewRouter(registry *tools.Registry) http.Handler {
	h := &Handler{registry: registry, log: logging.New("gateway")}

	r := mux.NewRouter()
	r.Use(h.logRequests)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/tools", h.ListTools).Methods("GET")
	v1.HandleFunc("/invoke/{tool}", h.Invoke).Methods("POST")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	return r
}

// ListTools handles GET /v1/tools.
func (h *Handler) ListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tools": h.registry.Names()})
}

// Invoke handles POST /v1/invoke/{tool}. The body is the JSON object of
// tool arguments; an empty body means no arguments.
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["tool"]
	tool, ok := h.registry.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown tool: "+name)
		return
	}

	args := map[string]any{}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object of tool arguments")
		return
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handle(r.Context(), req)
	if err != nil {
		h.log.Error("tool failed", "tool", name, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, InvokeResponse{
		Tool:    name,
		IsError: result.IsError,
		Text:    resultText(result),
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// resultText joins the text contents of a tool result.
func resultText(result *mcp.CallToolResult) string {
	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return text
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Serve runs the gateway on addr until ctx is done, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
