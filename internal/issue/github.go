package issue

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"

	"github.com/loqalabs/taskflow/internal/analyzer"
	tferrors "github.com/loqalabs/taskflow/internal/errors"
	"github.com/loqalabs/taskflow/internal/interview"
	"github.com/loqalabs/taskflow/internal/logging"
)

const (
	listPageSize     = 100
	listMaxPages     = 10
	bodyExcerptRunes = 280
)

// GitHubBackend implements Backend using the GitHub REST API.
type GitHubBackend struct {
	client *gh.Client
	logger *slog.Logger
}

// Compile-time check that GitHubBackend implements Backend.
var _ Backend = (*GitHubBackend)(nil)

// GitHubOption is a functional option for configuring GitHubBackend.
type GitHubOption func(*GitHubBackend)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) GitHubOption {
	return func(b *GitHubBackend) {
		b.logger = logger
	}
}

// NewGitHubBackend creates a backend authenticated with token. A non-empty
// baseURL points the client at a GitHub Enterprise API root
// (e.g. https://ghe.example.com/api/v3/).
func NewGitHubBackend(token, baseURL string, opts ...GitHubOption) (*GitHubBackend, error) {
	if token == "" {
		return nil, tferrors.NewBackendError("NewGitHubBackend", "token is required")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	client := gh.NewClient(tc)

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, tferrors.NewBackendErrorWithCause("NewGitHubBackend", "invalid base URL", err)
		}
		client.BaseURL = u
	}

	b := &GitHubBackend{
		client: client,
		logger: logging.New("github"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// CreateIssue creates an issue and returns its reference.
func (b *GitHubBackend) CreateIssue(ctx context.Context, req Request) (*interview.IssueRef, error) {
	if req.Owner == "" || req.Repository == "" {
		return nil, tferrors.NewBackendError("CreateIssue", "owner and repository are required")
	}
	if req.Title == "" {
		return nil, tferrors.NewBackendError("CreateIssue", "title is required")
	}

	b.logger.Debug("creating issue", "owner", req.Owner, "repo", req.Repository, "labels", req.Labels)

	newIssue := &gh.IssueRequest{
		Title: gh.Ptr(req.Title),
		Body:  gh.Ptr(req.Body),
	}
	if len(req.Labels) > 0 {
		labels := append([]string(nil), req.Labels...)
		newIssue.Labels = &labels
	}
	if len(req.Assignees) > 0 {
		assignees := append([]string(nil), req.Assignees...)
		newIssue.Assignees = &assignees
	}

	created, resp, err := b.client.Issues.Create(ctx, req.Owner, req.Repository, newIssue)
	if err != nil {
		return nil, toBackendError("CreateIssue", resp, err)
	}

	return &interview.IssueRef{
		Repository: req.Repository,
		Number:     created.GetNumber(),
		URL:        created.GetHTMLURL(),
	}, nil
}

// ListOpenIssues returns the open issues of one repository, skipping pull
// requests.
func (b *GitHubBackend) ListOpenIssues(ctx context.Context, owner, repository string) ([]analyzer.OpenIssue, error) {
	if owner == "" || repository == "" {
		return nil, tferrors.NewBackendError("ListOpenIssues", "owner and repository are required")
	}

	opts := &gh.IssueListByRepoOptions{
		State:       "open",
		ListOptions: gh.ListOptions{PerPage: listPageSize},
	}

	var result []analyzer.OpenIssue
	for page := 0; page < listMaxPages; page++ {
		issues, resp, err := b.client.Issues.ListByRepo(ctx, owner, repository, opts)
		if err != nil {
			return nil, toBackendError("ListOpenIssues", resp, err)
		}
		for _, is := range issues {
			if is.IsPullRequest() {
				continue
			}
			result = append(result, openIssueFromGitHub(repository, is))
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	b.logger.Debug("listed open issues", "owner", owner, "repo", repository, "count", len(result))
	return result, nil
}

func openIssueFromGitHub(repository string, is *gh.Issue) analyzer.OpenIssue {
	labels := make([]string, 0, len(is.Labels))
	for _, l := range is.Labels {
		labels = append(labels, l.GetName())
	}
	return analyzer.OpenIssue{
		Repository:  repository,
		ID:          is.GetNumber(),
		Title:       is.GetTitle(),
		BodyExcerpt: excerpt(is.GetBody(), bodyExcerptRunes),
		Labels:      labels,
	}
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

// toBackendError converts a go-github error into a BackendError.
func toBackendError(operation string, resp *gh.Response, err error) error {
	if resp != nil && resp.StatusCode > 0 {
		return tferrors.NewBackendErrorWithStatus(operation, resp.StatusCode, err.Error())
	}
	return tferrors.NewBackendErrorWithCause(operation, "API request failed", err)
}
