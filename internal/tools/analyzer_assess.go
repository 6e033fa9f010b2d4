package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/analyzer"
)

// AssessTool handles the analyzer_assess MCP tool: it scores text against
// a fresh snapshot of open issues.
type AssessTool struct {
	analyzer *analyzer.Analyzer
}

// NewAssessTool creates an AssessTool.
func NewAssessTool(a *analyzer.Analyzer) *AssessTool {
	return &AssessTool{analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *AssessTool) Definition() mcp.Tool {
	return mcp.NewTool("analyzer_assess",
		mcp.WithDescription(
			"Assess whether a thought deserves its own issue, given the current open issues: "+
				"priority areas, underserved and overloaded repositories, urgency, implementation "+
				"detail and architectural impact. Returns the score, reasoning, template and priority.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The thought or request to assess."),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma-separated tags."),
		),
	)
}

// Handle processes the analyzer_assess tool call.
func (t *AssessTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	snap, snapErr := t.analyzer.Snapshot(ctx)
	as := t.analyzer.AnalyzeAgainstProjectState(text, tagsArg(req), snap)

	var b strings.Builder
	b.WriteString("# Assessment\n\n")
	writeAssessment(&b, as)
	if snapErr != nil {
		fmt.Fprintf(&b, "\n> Project snapshot is incomplete (%v); the assessment uses the repositories that could be read.\n", snapErr)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func writeAssessment(b *strings.Builder, as analyzer.Assessment) {
	verdict := "no, capture it for later"
	if as.ShouldSuggestIssue {
		verdict = "yes"
	}
	fmt.Fprintf(b, "**Create an issue:** %s\n", verdict)
	fmt.Fprintf(b, "**Score:** %d\n", as.Score)
	fmt.Fprintf(b, "**Reasoning:** %s\n", as.Reasoning)
	fmt.Fprintf(b, "**Category:** %s\n", as.Category)
	fmt.Fprintf(b, "**Suggested template:** %s\n", as.SuggestedTemplate)
	fmt.Fprintf(b, "**Suggested priority:** %s\n", as.SuggestedPriority)
}
