package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/analyzer"
)

// FindRelatedTool handles the analyzer_find_related MCP tool.
type FindRelatedTool struct {
	analyzer *analyzer.Analyzer
}

// NewFindRelatedTool creates a FindRelatedTool.
func NewFindRelatedTool(a *analyzer.Analyzer) *FindRelatedTool {
	return &FindRelatedTool{analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *FindRelatedTool) Definition() mcp.Tool {
	return mcp.NewTool("analyzer_find_related",
		mcp.WithDescription(
			"Find open issues across the configured repositories that are related to the given text, "+
				"most similar first. Use it before creating an issue to avoid duplicates.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The thought or request to compare against open issues."),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma-separated tags, used when semantic matching is unavailable."),
		),
	)
}

// Handle processes the analyzer_find_related tool call.
func (t *FindRelatedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	related := t.analyzer.FindRelatedIssues(ctx, text, tagsArg(req))
	if len(related) == 0 {
		return mcp.NewToolResultText("No related open issues found."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Related Issues (%d)\n\n", len(related))
	writeRelated(&b, related)
	return mcp.NewToolResultText(b.String()), nil
}

func writeRelated(b *strings.Builder, related []analyzer.ScoredCandidateIssue) {
	b.WriteString("| Issue | Similarity | Title | Why |\n")
	b.WriteString("|-------|------------|-------|-----|\n")
	for _, c := range related {
		fmt.Fprintf(b, "| %s#%d | %d%% | %s | %s |\n",
			c.Issue.Repository, c.Issue.ID, c.Similarity, c.Issue.Title, c.Reason)
	}
}
