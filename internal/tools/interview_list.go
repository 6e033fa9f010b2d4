package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
)

// InterviewListActiveTool handles the interview_list_active MCP tool.
type InterviewListActiveTool struct {
	engine *interview.Engine
}

// NewInterviewListActiveTool creates an InterviewListActiveTool.
func NewInterviewListActiveTool(engine *interview.Engine) *InterviewListActiveTool {
	return &InterviewListActiveTool{engine: engine}
}

// Definition returns the MCP tool definition for registration.
func (t *InterviewListActiveTool) Definition() mcp.Tool {
	return mcp.NewTool("interview_list_active",
		mcp.WithDescription(
			"List interviews that are still in progress, oldest first, with the question each is waiting on.",
		),
	)
}

// Handle processes the interview_list_active tool call.
func (t *InterviewListActiveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active, err := t.engine.ListActive(ctx)
	if err != nil {
		return errorResult(err)
	}
	if len(active) == 0 {
		return mcp.NewToolResultText("No interviews in progress. Start one with `interview_start`."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Active Interviews (%d)\n\n", len(active))
	b.WriteString("| Interview | Started | Progress | Waiting on | Original input |\n")
	b.WriteString("|-----------|---------|----------|------------|----------------|\n")
	for _, s := range active {
		waiting := "—"
		if q, ok := t.engine.Current(s); ok {
			waiting = string(q.ID)
		}
		fmt.Fprintf(&b, "| `%s` | %s | %d/%d | %s | %s |\n",
			s.ID, s.CreatedAt.Format(time.RFC3339), s.Cursor, len(s.Sequence), waiting, summarize(s.OriginalInput, 60))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// summarize returns the first line of s, cut to max runes.
func summarize(s string, max int) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i] + "..."
	}
	if r := []rune(s); len(r) > max {
		return string(r[:max]) + "..."
	}
	return s
}
