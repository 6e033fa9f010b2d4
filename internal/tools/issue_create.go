package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/loqalabs/taskflow/internal/interview"
	"github.com/loqalabs/taskflow/internal/issue"
	"github.com/loqalabs/taskflow/internal/logging"
)

// IssueTarget says where issues go.
type IssueTarget struct {
	Owner             string
	DefaultRepository string
}

// IssueCreateTool handles the issue_create MCP tool.
type IssueCreateTool struct {
	engine  *interview.Engine
	backend issue.Backend
	target  IssueTarget
}

// NewIssueCreateTool creates an IssueCreateTool. backend may be nil when no
// issue tracker is configured; only dry runs work then.
func NewIssueCreateTool(engine *interview.Engine, backend issue.Backend, target IssueTarget) *IssueCreateTool {
	return &IssueCreateTool{engine: engine, backend: backend, target: target}
}

// Definition returns the MCP tool definition for registration.
func (t *IssueCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("issue_create",
		mcp.WithDescription(
			"Create the issue for a completed interview. The body and labels are assembled from the answers. "+
				"Calling it again for the same interview returns the already created issue instead of a duplicate. "+
				"Use dry_run to preview the issue without creating it.",
		),
		mcp.WithString("interview_id",
			mcp.Required(),
			mcp.Description("Id of a completed interview."),
		),
		mcp.WithString("labels",
			mcp.Description("Optional comma-separated extra labels."),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Render the issue without creating it. Default: false"),
		),
	)
}

// Handle processes the issue_create tool call.
func (t *IssueCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("interview_id", "")
	if id == "" {
		return mcp.NewToolResultError("interview_id is required"), nil
	}
	dryRun := boolArg(req, "dry_run", false)

	s, err := t.engine.Get(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	if s.Issue != nil {
		return alreadyCreated(s), nil
	}

	var extra []string
	for _, l := range strings.Split(req.GetString("labels", ""), ",") {
		extra = append(extra, strings.TrimSpace(l))
	}
	payload, err := issue.BuildIssuePayload(s, t.target.DefaultRepository, extra...)
	if err != nil {
		return errorResult(err)
	}

	if dryRun {
		return mcp.NewToolResultText(renderPayload("Issue Preview (dry run)", t.target.Owner, payload)), nil
	}
	if t.backend == nil || t.target.Owner == "" {
		return mcp.NewToolResultError(
			"No issue tracker is configured (set github.owner and GITHUB_TOKEN). Use dry_run to preview the issue."), nil
	}
	if payload.Repository == "" {
		return mcp.NewToolResultError(fmt.Sprintf(
			"interview %s: no repository was answered and github.default_repository is not set", s.ID)), nil
	}

	st, created, err := t.engine.CreateIssue(ctx, s.ID, func(current *interview.State) (*interview.IssueRef, error) {
		p, err := issue.BuildIssuePayload(current, t.target.DefaultRepository, extra...)
		if err != nil {
			return nil, err
		}
		return t.backend.CreateIssue(ctx, issue.RequestFor(t.target.Owner, p))
	})
	switch {
	case err != nil && created:
		ref := st.Issue
		return mcp.NewToolResultError(fmt.Sprintf(
			"Issue %s#%d was created (%s) but recording it on interview %s failed: %v. "+
				"Do not call issue_create again for this interview.",
			ref.Repository, ref.Number, ref.URL, s.ID, err)), nil
	case err != nil:
		return errorResult(err)
	case !created:
		return alreadyCreated(st), nil
	}

	ref := st.Issue
	logging.New("tools").Info("issue created", "interview_id", s.ID, "repository", ref.Repository, "number", ref.Number)
	return mcp.NewToolResultText(fmt.Sprintf(
		"# Issue Created\n\n%s#%d: %s\n\n%s\n", ref.Repository, ref.Number, payload.Title, ref.URL)), nil
}

func alreadyCreated(s *interview.State) *mcp.CallToolResult {
	return mcp.NewToolResultText(fmt.Sprintf(
		"Issue already created for interview `%s`: %s#%d %s",
		s.ID, s.Issue.Repository, s.Issue.Number, s.Issue.URL))
}

func renderPayload(heading, owner string, p *issue.Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", heading)
	repo := p.Repository
	if owner != "" && repo != "" {
		repo = owner + "/" + repo
	}
	if repo == "" {
		repo = "_not set_"
	}
	fmt.Fprintf(&b, "**Repository:** %s\n", repo)
	fmt.Fprintf(&b, "**Title:** %s\n", p.Title)
	fmt.Fprintf(&b, "**Labels:** %s\n\n", strings.Join(p.Labels, ", "))
	b.WriteString(p.Body)
	return b.String()
}
