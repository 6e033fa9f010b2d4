package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
)

// InterviewStatusTool handles the interview_status MCP tool: it shows one
// interview with its answers so far and the question it is waiting on.
type InterviewStatusTool struct {
	engine *interview.Engine
}

// NewInterviewStatusTool creates an InterviewStatusTool.
func NewInterviewStatusTool(engine *interview.Engine) *InterviewStatusTool {
	return &InterviewStatusTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *InterviewStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("interview_status",
		mcp.WithDescription(
			"Show an interview: its answers so far, the question it is waiting on, "+
				"and the created issue once there is one. Use it to resume an interview.",
		),
		mcp.WithString("interview_id",
			mcp.Required(),
			mcp.Description("Interview id to inspect."),
		),
	)
}

// Handle processes the interview_status tool call.
func (t *InterviewStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	if id == "" {
		return mcp.NewToolResultError("interview_id is required"), nil
	}

	s, err := t.engine.Get(ctx, id)
	if err != nil {
		return errorResult(err)
	}

	var b strings.Builder
	b.WriteString(renderInterview("Interview Status", s, t.engine.Catalog()))

	if len(s.Answers) > 0 {
		b.WriteString("\n## Answers\n\n| Question | Answer |\n|----------|--------|\n")
		for _, qid := range s.Sequence {
			v, ok := s.Answer(qid)
			if !ok {
				continue
			}
			text := v.String()
			if text == "" {
				text = "_skipped_"
			}
			fmt.Fprintf(&b, "| %s | %s |\n", qid, strings.ReplaceAll(text, "\n", " "))
		}
	}
	if s.OriginalInput != "" {
		fmt.Fprintf(&b, "\n**Original input:** %s\n", s.OriginalInput)
	}
	return mcp.NewToolResultText(b.String()), nil
}
