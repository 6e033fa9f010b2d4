// Package tools implements the MCP tool handlers for taskflow.
//
// Each tool is a struct that receives its dependencies through its
// constructor, exposes Definition() for registration and Handle() for
// calls. One file per tool.
package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
	"github.com/loqalabs/taskflow/internal/interview"
)

// errorResult converts a typed taskflow error into a tool error result the
// assistant can act on. Errors of unknown kind are returned as Go errors.
func errorResult(err error) (*mcp.CallToolResult, error) {
	switch {
	case tferrors.IsNotFound(err):
		return mcp.NewToolResultError(fmt.Sprintf(
			"%v. It may have expired or been cleaned up; start a new one with `interview_start`.", err)), nil
	case tferrors.IsBusy(err):
		return mcp.NewToolResultError(err.Error()), nil
	case tferrors.IsValidation(err):
		return mcp.NewToolResultError(err.Error()), nil
	case tferrors.IsStore(err):
		return mcp.NewToolResultError(fmt.Sprintf(
			"%v. Nothing was changed; the previous interview state is intact, retry the call.", err)), nil
	case tferrors.IsBackend(err):
		hint := "Check the GitHub configuration before retrying."
		if tferrors.IsRetryable(err) {
			hint = "This is likely transient; retry shortly."
		}
		return mcp.NewToolResultError(fmt.Sprintf("%v. %s", err, hint)), nil
	default:
		return nil, err
	}
}

// tagsArg reads the optional tags argument. It accepts either a JSON array
// of strings or a comma-separated string.
func tagsArg(req mcp.CallToolRequest) []string {
	var raw []string
	switch v := req.GetArguments()["tags"].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	var tags []string
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// writeQuestion renders the question an interview is waiting on.
func writeQuestion(b *strings.Builder, s *interview.State, q interview.Question) {
	fmt.Fprintf(b, "## Next question (`%s`, %s)\n\n%s\n", q.ID, q.Kind, q.Prompt)
	if len(q.Choices) > 0 {
		quoted := make([]string, len(q.Choices))
		for i, c := range q.Choices {
			quoted[i] = "`" + c + "`"
		}
		sep := "one of"
		if q.Kind == interview.KindMultiChoice {
			sep = "any of (comma-separated)"
		}
		fmt.Fprintf(b, "\nAnswer with %s: %s\n", sep, strings.Join(quoted, ", "))
	}
	if !q.Required {
		b.WriteString("\nOptional: an empty answer skips it.\n")
	}
	if suggested := s.AnswerText(q.ID); suggested != "" {
		fmt.Fprintf(b, "\nSuggested answer: %q (send it back to confirm, or answer differently)\n", suggested)
	}
}

// renderInterview formats an interview and what to do next.
func renderInterview(heading string, s *interview.State, c *interview.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", heading)
	fmt.Fprintf(&b, "**Interview:** `%s`\n", s.ID)
	if s.Complete {
		b.WriteString("**Status:** complete\n")
	} else {
		fmt.Fprintf(&b, "**Status:** in progress (question %d of %d)\n", s.Cursor+1, len(s.Sequence))
	}
	if s.SuggestedCategory != "" {
		fmt.Fprintf(&b, "**Suggested category:** %s\n", s.SuggestedCategory)
	}
	if s.SuggestedPriority != "" {
		fmt.Fprintf(&b, "**Suggested priority:** %s\n", s.SuggestedPriority)
	}
	b.WriteString("\n")

	if s.Issue != nil {
		fmt.Fprintf(&b, "Issue created: %s#%d %s\n", s.Issue.Repository, s.Issue.Number, s.Issue.URL)
		return b.String()
	}
	if s.Complete {
		fmt.Fprintf(&b, "All questions are answered. Call `issue_create` with interview_id=`%s` to create the issue.\n", s.ID)
		return b.String()
	}
	if q, ok := interview.Current(s, c); ok {
		writeQuestion(&b, s, q)
		fmt.Fprintf(&b, "\nSubmit the answer with `interview_answer` (interview_id=`%s`).\n", s.ID)
	}
	return b.String()
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
