package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
)

// InterviewCleanupTool handles the interview_cleanup MCP tool.
type InterviewCleanupTool struct {
	engine *interview.Engine
}

// NewInterviewCleanupTool creates an InterviewCleanupTool.
func NewInterviewCleanupTool(engine *interview.Engine) *InterviewCleanupTool {
	return &InterviewCleanupTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *InterviewCleanupTool) Definition() mcp.Tool {
	return mcp.NewTool("interview_cleanup",
		mcp.WithDescription(
			"Remove completed interviews older than the configured retention horizon. "+
				"Interviews still in progress are never removed.",
		),
	)
}

// Handle processes the interview_cleanup tool call.
func (t *InterviewCleanupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.engine.Retention() <= 0 {
		return mcp.NewToolResultText("Retention is disabled (interview.retention = 0); nothing was removed."), nil
	}

	removed, err := t.engine.Cleanup(ctx)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Removed %d completed interview(s) older than %s.", len(removed), t.engine.Retention())), nil
}
