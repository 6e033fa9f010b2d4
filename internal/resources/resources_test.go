package resources

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loqalabs/taskflow/internal/interview"
)

type stubLister struct {
	states []*interview.State
	err    error
}

func (s stubLister) ListActive(context.Context) ([]*interview.State, error) {
	return s.states, s.err
}

func readActive(t *testing.T, h *Handler) mcp.TextResourceContents {
	t.Helper()
	req := mcp.ReadResourceRequest{}
	req.Params.URI = ActiveInterviewsURI
	contents, err := h.HandleActiveInterviews(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok, "got %T", contents[0])
	return tc
}

func TestActiveInterviews_JSON(t *testing.T) {
	s := interview.NewState("iv-1", "retry reconnects", interview.DefaultCatalog(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.Answers[interview.QTitle] = interview.Text("Retry reconnects")

	h := NewHandler(stubLister{states: []*interview.State{s}})
	assert.Equal(t, ActiveInterviewsURI, h.ActiveInterviewsResource().URI)

	tc := readActive(t, h)
	assert.Equal(t, "application/json", tc.MIMEType)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "iv-1", got[0]["id"])
	assert.Equal(t, float64(0), got[0]["question_cursor"])
	assert.Equal(t, false, got[0]["complete"])
}

func TestActiveInterviews_Empty(t *testing.T) {
	tc := readActive(t, NewHandler(stubLister{states: []*interview.State{}}))
	assert.JSONEq(t, "[]", tc.Text)
}

func TestActiveInterviews_StoreError(t *testing.T) {
	tc := readActive(t, NewHandler(stubLister{err: errors.New("disk gone")}))
	assert.Equal(t, "text/plain", tc.MIMEType)
	assert.Equal(t, "Error: disk gone", tc.Text)
}
