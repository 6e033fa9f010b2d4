package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	if len(result.Messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(result.Messages))
	}
	tc, ok := result.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Messages[0].Content)
	}
	return tc.Text
}

func TestInterviewPrompt(t *testing.T) {
	p := NewInterviewPrompt()
	if got := p.Definition().Name; got != "issue-interview" {
		t.Errorf("Name = %q", got)
	}

	tests := []struct {
		name string
		args map[string]string
		want string
	}{
		{"with idea", map[string]string{"idea": "  retry relay reconnects "}, "> retry relay reconnects"},
		{"without idea", nil, "Ask me to describe the idea first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Arguments = tt.args
			result, err := p.Handle(context.Background(), req)
			if err != nil {
				t.Fatalf("Handle: %v", err)
			}
			text := promptText(t, result)
			for _, want := range []string{tt.want, "`thought_capture`", "`interview_start`", "`interview_answer`", "`issue_create`"} {
				if !strings.Contains(text, want) {
					t.Errorf("prompt missing %q", want)
				}
			}
		})
	}
}

func TestResumePrompt(t *testing.T) {
	p := NewResumePrompt()
	if got := p.Definition().Name; got != "interview-resume" {
		t.Errorf("Name = %q", got)
	}
	result, err := p.Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	text := promptText(t, result)
	if !strings.Contains(text, "`interview_list_active`") || !strings.Contains(text, "`interview_status`") {
		t.Errorf("unexpected prompt:\n%s", text)
	}
}
