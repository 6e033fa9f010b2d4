package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
)

// InterviewAnswerTool handles the interview_answer MCP tool.
type InterviewAnswerTool struct {
	engine *interview.Engine
}

// NewInterviewAnswerTool creates an InterviewAnswerTool.
func NewInterviewAnswerTool(engine *interview.Engine) *InterviewAnswerTool {
	return &InterviewAnswerTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *InterviewAnswerTool) Definition() mcp.Tool {
	return mcp.NewTool("interview_answer",
		mcp.WithDescription(
			"Answer the current question of an interview. Some answers add follow-up questions "+
				"(a protocol change asks about breaking changes, a breaking change asks for a migration plan). "+
				"Progress is saved before the next question is returned, so an interview can be resumed at any time.",
		),
		mcp.WithString("interview_id",
			mcp.Required(),
			mcp.Description("Interview id returned by interview_start."),
		),
		mcp.WithString("answer",
			mcp.Description("Answer to the current question. Multi-choice answers are comma-separated. "+
				"Empty skips an optional question."),
		),
	)
}

// Handle processes the interview_answer tool call.
func (t *InterviewAnswerTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	if id == "" {
		return mcp.NewToolResultError("interview_id is required"), nil
	}
	answer := req.GetString("answer", "")

	s, err := t.engine.SubmitAnswer(ctx, id, answer)
	if err != nil {
		return errorResult(err)
	}

	heading := "Answer Recorded"
	if s.Complete {
		heading = "Interview Complete"
	}
	return mcp.NewToolResultText(renderInterview(heading, s, t.engine.Catalog())), nil
}
