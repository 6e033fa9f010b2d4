// Package resources implements the MCP resources for taskflow.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (taskflow://...).
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
)

// ActiveInterviewsURI addresses the list of interviews in progress.
const ActiveInterviewsURI = "taskflow://interviews/active"

// ActiveLister lists interviews that are not complete.
// *interview.Engine satisfies it.
type ActiveLister interface {
	ListActive(ctx context.Context) ([]*interview.State, error)
}

// Handler serves taskflow resources.
type Handler struct {
	interviews ActiveLister
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(interviews ActiveLister) *Handler {
	return &Handler{interviews: interviews}
}

// ActiveInterviewsResource returns the MCP resource definition for the
// interviews in progress.
func (h *Handler) ActiveInterviewsResource() mcp.Resource {
	return mcp.NewResource(
		ActiveInterviewsURI,
		"Active Interviews",
		mcp.WithResourceDescription("Interviews still in progress, oldest first, with their answers and cursor"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleActiveInterviews returns the interviews in progress as JSON.
func (h *Handler) HandleActiveInterviews(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	active, err := h.interviews.ListActive(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(active, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling active interviews: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
