package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureThought_UsesOneSnapshot(t *testing.T) {
	calls := 0
	a := newTestAnalyzer(RepositoryRegistry{
		Repositories: []string{"loqa-stt"},
		Fetch: func(_ context.Context, repo string) ([]OpenIssue, error) {
			calls++
			return []OpenIssue{{Repository: repo, ID: 7, Title: "STT transcription errors in noisy rooms"}}, nil
		},
	})

	c, err := a.CaptureThought(context.Background(), "urgent: improve STT accuracy", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	assert.Equal(t, UrgencyImmediate, c.Urgency)
	assert.Equal(t, c.Assessment.Category, c.Category)
	assert.True(t, c.Assessment.ShouldSuggestIssue)
	require.NotEmpty(t, c.Related)
	assert.Equal(t, 7, c.Related[0].Issue.ID)
	assert.Equal(t, a.Recommend(c.Assessment, c.Related), c.Recommendation)
}

func TestCaptureThought_IncompleteSnapshot(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{
		Repositories: []string{"loqa-stt", "loqa-hub"},
		Fetch: func(_ context.Context, repo string) ([]OpenIssue, error) {
			if repo == "loqa-hub" {
				return nil, errors.New("rate limited")
			}
			return []OpenIssue{{Repository: repo, ID: 1, Title: "Whisper model upgrade"}}, nil
		},
	})

	c, err := a.CaptureThought(context.Background(), "try a smaller model", []string{"whisper"})
	require.Error(t, err)
	require.NotNil(t, c)

	require.Len(t, c.Related, 1)
	assert.Equal(t, "tag match: whisper", c.Related[0].Reason)
	assert.Equal(t, ActionCaptureOnly, c.Recommendation.Action)
}

func TestCaptureThought_NoRepositories(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{})

	c, err := a.CaptureThought(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, CategoryFeatureIdea, c.Category)
	assert.Equal(t, noReasonsFired, c.Assessment.Reasoning)
	assert.NotNil(t, c.Related)
	assert.Empty(t, c.Related)
	assert.Equal(t, ActionCaptureOnly, c.Recommendation.Action)
}
