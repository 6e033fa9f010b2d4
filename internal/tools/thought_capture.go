package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/analyzer"
)

// ThoughtCaptureTool handles the thought_capture MCP tool. It runs the
// whole analysis in one call and recommends whether to create an issue,
// merge into an existing one, or only keep the note.
type ThoughtCaptureTool struct {
	analyzer *analyzer.Analyzer
}

// NewThoughtCaptureTool creates a ThoughtCaptureTool.
func NewThoughtCaptureTool(a *analyzer.Analyzer) *ThoughtCaptureTool {
	return &ThoughtCaptureTool{analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *ThoughtCaptureTool) Definition() mcp.Tool {
	return mcp.NewTool("thought_capture",
		mcp.WithDescription(
			"Capture a passing thought and get a recommendation: create an issue (start an interview), "+
				"merge it into a closely related open issue, or just keep it. Combines classification, "+
				"assessment against open issues, and related-issue search.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The thought, in the user's own words."),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma-separated tags."),
		),
	)
}

// Handle processes the thought_capture tool call.
func (t *ThoughtCaptureTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	c, snapErr := t.analyzer.CaptureThought(ctx, text, tagsArg(req))

	var b strings.Builder
	b.WriteString("# Thought Captured\n\n")
	fmt.Fprintf(&b, "**Recommendation:** %s\n", c.Recommendation.Action)
	if c.Recommendation.Complexity != "" {
		fmt.Fprintf(&b, "**Complexity:** %s\n", c.Recommendation.Complexity)
	}
	fmt.Fprintf(&b, "**Why:** %s\n", c.Recommendation.Reasoning)
	fmt.Fprintf(&b, "**Urgency:** %s\n\n", c.Urgency)

	b.WriteString("## Assessment\n\n")
	writeAssessment(&b, c.Assessment)

	if len(c.Related) > 0 {
		b.WriteString("\n## Related Issues\n\n")
		writeRelated(&b, c.Related)
	}

	switch c.Recommendation.Action {
	case analyzer.ActionCreateIssue:
		b.WriteString("\nNext: run `interview_start` with this text to collect the issue details.\n")
	case analyzer.ActionMergeIntoExisting:
		m := c.Recommendation.MergeTarget
		fmt.Fprintf(&b, "\nNext: add this as a comment on %s#%d instead of opening a new issue.\n", m.Issue.Repository, m.Issue.ID)
	}
	if snapErr != nil {
		fmt.Fprintf(&b, "\n> Project snapshot is incomplete (%v); related issues come from tag matching.\n", snapErr)
	}
	return mcp.NewToolResultText(b.String()), nil
}
