package issue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

func newTestBackend(t *testing.T, handler http.Handler) *GitHubBackend {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b, err := NewGitHubBackend("test-token", srv.URL)
	require.NoError(t, err)
	return b
}

func TestNewGitHubBackend_RequiresToken(t *testing.T) {
	_, err := NewGitHubBackend("", "")
	require.Error(t, err)
	assert.True(t, tferrors.IsBackend(err))
}

func TestGitHubBackend_CreateIssue(t *testing.T) {
	var got map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/loqalabs/loqa-hub/issues", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"number": 42, "html_url": "https://github.com/loqalabs/loqa-hub/issues/42"}`)
	})
	b := newTestBackend(t, mux)

	ref, err := b.CreateIssue(context.Background(), Request{
		Owner:      "loqalabs",
		Repository: "loqa-hub",
		Title:      "Add retries",
		Body:       "## Description\n\nretry",
		Labels:     []string{"priority: high", "type: bug"},
	})
	require.NoError(t, err)

	assert.Equal(t, "loqa-hub", ref.Repository)
	assert.Equal(t, 42, ref.Number)
	assert.Equal(t, "https://github.com/loqalabs/loqa-hub/issues/42", ref.URL)

	assert.Equal(t, "Add retries", got["title"])
	assert.Equal(t, []any{"priority: high", "type: bug"}, got["labels"])
	assert.NotContains(t, got, "assignees")
}

func TestGitHubBackend_CreateIssue_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"validation failed", http.StatusUnprocessableEntity, false},
		{"unavailable", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message": "nope"}`)
			}))

			_, err := b.CreateIssue(context.Background(), Request{Owner: "o", Repository: "r", Title: "t"})
			require.Error(t, err)

			var be *tferrors.BackendError
			require.True(t, tferrors.As(err, &be), "want BackendError, got %T", err)
			assert.Equal(t, "CreateIssue", be.Operation)
			assert.Equal(t, tt.status, be.StatusCode)
			assert.Equal(t, tt.retryable, tferrors.IsRetryable(err))
		})
	}
}

func TestGitHubBackend_CreateIssue_RejectsMissingFields(t *testing.T) {
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))

	_, err := b.CreateIssue(context.Background(), Request{Owner: "o", Title: "t"})
	assert.True(t, tferrors.IsBackend(err))

	_, err = b.CreateIssue(context.Background(), Request{Owner: "o", Repository: "r"})
	assert.True(t, tferrors.IsBackend(err))
}

func TestGitHubBackend_ListOpenIssues(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/loqalabs/loqa-stt/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/loqalabs/loqa-stt/issues?state=open&page=2>; rel="next"`, srvURL))
			fmt.Fprintf(w, `[
				{"number": 1, "title": "Whisper accuracy", "body": %q, "labels": [{"name": "priority: high"}]},
				{"number": 2, "title": "Bump deps", "pull_request": {"url": "x"}}
			]`, strings.Repeat("a", 300))
		case "2":
			fmt.Fprint(w, `[{"number": 3, "title": "Streaming output", "body": "  short  "}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	b, err := NewGitHubBackend("test-token", srv.URL)
	require.NoError(t, err)

	issues, err := b.ListOpenIssues(context.Background(), "loqalabs", "loqa-stt")
	require.NoError(t, err)
	require.Len(t, issues, 2, "pull requests must be skipped")

	assert.Equal(t, 1, issues[0].ID)
	assert.Equal(t, "loqa-stt", issues[0].Repository)
	assert.Equal(t, []string{"priority: high"}, issues[0].Labels)
	assert.Equal(t, strings.Repeat("a", bodyExcerptRunes)+"...", issues[0].BodyExcerpt)

	assert.Equal(t, 3, issues[1].ID)
	assert.Equal(t, "short", issues[1].BodyExcerpt)
	assert.Empty(t, issues[1].Labels)
}

func TestFetcher_UsesOwner(t *testing.T) {
	var path string
	b := newTestBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `[]`)
	}))

	issues, err := Fetcher(b, "loqalabs")(context.Background(), "loqa-relay")
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, "/repos/loqalabs/loqa-relay/issues", path)
}

func TestExcerpt_RuneSafe(t *testing.T) {
	assert.Equal(t, "héll...", excerpt("héllo", 4))
	assert.Equal(t, "héllo", excerpt(" héllo ", 5))
}
