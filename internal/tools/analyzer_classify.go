package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/analyzer"
)

// ClassifyTool handles the analyzer_classify MCP tool.
type ClassifyTool struct {
	analyzer *analyzer.Analyzer
}

// NewClassifyTool creates a ClassifyTool.
func NewClassifyTool(a *analyzer.Analyzer) *ClassifyTool {
	return &ClassifyTool{analyzer: a}
}

// Definition returns the MCP tool definition for registration.
func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("analyzer_classify",
		mcp.WithDescription(
			"Classify free text into a category (architecture, bug-insight, technical-debt, optimization, "+
				"feature-idea, process-improvement, research-topic) and estimate its urgency. "+
				"Pure keyword matching: the same input always gives the same answer.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The thought or request to classify."),
		),
		mcp.WithString("tags",
			mcp.Description("Optional comma-separated tags. A tag naming a category forces that category."),
		),
	)
}

// Handle processes the analyzer_classify tool call.
func (t *ClassifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}
	tags := tagsArg(req)

	category := t.analyzer.ClassifyCategory(text, tags)
	urgency := t.analyzer.EstimateUrgency(text)

	return mcp.NewToolResultText(fmt.Sprintf(
		"**Category:** %s\n**Urgency:** %s\n**Suggested priority:** %s\n",
		category, urgency, analyzer.PriorityForUrgency(urgency),
	)), nil
}
