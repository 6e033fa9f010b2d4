package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
)

// InterviewStartTool handles the interview_start MCP tool.
type InterviewStartTool struct {
	engine *interview.Engine
}

// NewInterviewStartTool creates an InterviewStartTool.
func NewInterviewStartTool(engine *interview.Engine) *InterviewStartTool {
	return &InterviewStartTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *InterviewStartTool) Definition() mcp.Tool {
	return mcp.NewTool("interview_start",
		mcp.WithDescription(
			"Start a structured interview that collects everything needed for a well-formed issue. "+
				"The original input is classified to suggest a category and priority, and short "+
				"single-line inputs are offered as the title. Returns the interview id and the first question.",
		),
		mcp.WithString("original_input",
			mcp.Required(),
			mcp.Description("The idea, bug report, or request in the user's own words."),
		),
	)
}

// Handle processes the interview_start tool call.
func (t *InterviewStartTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input := req.GetString("original_input", "")
	if strings.TrimSpace(input) == "" {
		return mcp.NewToolResultError("original_input is required"), nil
	}

	s, err := t.engine.Start(ctx, input)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(renderInterview("Interview Started", s, t.engine.Catalog())), nil
}
