package issue

import (
	"context"

	"github.com/loqalabs/taskflow/internal/analyzer"
	"github.com/loqalabs/taskflow/internal/interview"
)

// Request is one issue creation call.
type Request struct {
	Owner      string
	Repository string
	Title      string
	Body       string
	Labels     []string
	Assignees  []string
}

// RequestFor builds the backend request for a payload.
func RequestFor(owner string, p *Payload) Request {
	return Request{
		Owner:      owner,
		Repository: p.Repository,
		Title:      p.Title,
		Body:       p.Body,
		Labels:     p.Labels,
		Assignees:  p.Assignees,
	}
}

// Backend is the external issue tracker. Failures are reported as
// BackendError and never affect interview state.
type Backend interface {
	CreateIssue(ctx context.Context, req Request) (*interview.IssueRef, error)
	ListOpenIssues(ctx context.Context, owner, repository string) ([]analyzer.OpenIssue, error)
}

// Fetcher adapts a Backend to the analyzer's repository registry.
func Fetcher(b Backend, owner string) analyzer.FetchFunc {
	return func(ctx context.Context, repository string) ([]analyzer.OpenIssue, error) {
		return b.ListOpenIssues(ctx, owner, repository)
	}
}
