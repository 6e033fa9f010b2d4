// Package prompts implements the MCP prompts for taskflow.
//
// Prompts are user-triggered workflows (like slash commands) that tell the
// assistant which tools to call and in what order.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// InterviewPrompt handles the issue-interview MCP prompt.
// It walks the assistant through capture, interview and issue creation.
type InterviewPrompt struct{}

// NewInterviewPrompt creates an InterviewPrompt.
func NewInterviewPrompt() *InterviewPrompt {
	return &InterviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *InterviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("issue-interview",
		mcp.WithPromptDescription(
			"Turn an idea or bug report into a well-formed issue. "+
				"Checks for related open issues first, then runs the structured interview "+
				"and creates the issue when every question is answered.",
		),
		mcp.WithArgument("idea",
			mcp.ArgumentDescription("The idea, bug, or request in your own words"),
		),
	)
}

// Handle processes the issue-interview prompt request.
func (p *InterviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	idea := ""
	if args := req.Params.Arguments; args != nil {
		idea = strings.TrimSpace(args["idea"])
	}

	opening := "I want to create an issue. Ask me to describe the idea first, in my own words."
	if idea != "" {
		opening = fmt.Sprintf("I want to create an issue for this:\n\n> %s", idea)
	}

	return &mcp.GetPromptResult{
		Description: "Create an issue through a structured interview",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(opening + "\n\n" +
					"Please:\n" +
					"1. Run `thought_capture` with the idea. If it recommends merging into an existing issue, " +
					"show me that issue and ask whether to continue\n" +
					"2. Run `interview_start` with the idea as original_input\n" +
					"3. Ask me each question exactly as returned, one at a time, and send my answer with " +
					"`interview_answer`. Offer the suggested answer when there is one\n" +
					"4. When the interview is complete, run `issue_create` with dry_run=true and show me the preview\n" +
					"5. After I confirm, run `issue_create` again without dry_run and give me the issue link",
				),
			},
		},
	}, nil
}
