package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ResumePrompt handles the interview-resume MCP prompt.
type ResumePrompt struct{}

// NewResumePrompt creates a ResumePrompt.
func NewResumePrompt() *ResumePrompt {
	return &ResumePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ResumePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("interview-resume",
		mcp.WithPromptDescription(
			"Pick up an interview that was left unfinished. "+
				"Lists interviews in progress and continues the one you choose.",
		),
	)
}

// Handle processes the interview-resume prompt request.
func (p *ResumePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Resume an unfinished interview",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please run `interview_list_active` to see my unfinished interviews.\n\n" +
						"Then:\n" +
						"1. Show them to me and ask which one to continue\n" +
						"2. Run `interview_status` for the one I pick and ask me the question it is waiting on\n" +
						"3. Continue with `interview_answer` until the interview is complete\n" +
						"4. Offer to create the issue with `issue_create`",
				),
			},
		},
	}, nil
}
