package issue

import (
	"strings"
	"testing"
	"time"

	"github.com/loqalabs/taskflow/internal/analyzer"
	tferrors "github.com/loqalabs/taskflow/internal/errors"
	"github.com/loqalabs/taskflow/internal/interview"
)

// completeState answers the whole interview with the given answers, in
// sequence order, using the real state machine.
func completeState(t *testing.T, input string, answers ...string) *interview.State {
	t.Helper()
	c := interview.DefaultCatalog()
	s := interview.NewState("iv-42", input, c, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	s.SuggestedCategory = analyzer.CategoryBugInsight
	s.SuggestedPriority = analyzer.PriorityMedium
	for _, a := range answers {
		if err := interview.Apply(s, c, a); err != nil {
			t.Fatalf("Apply(%q): %v", a, err)
		}
	}
	if !s.Complete {
		t.Fatalf("interview not complete after %d answers (cursor %d of %d)", len(answers), s.Cursor, len(s.Sequence))
	}
	return s
}

func TestBuildIssuePayload_ProtocolBreakingChange(t *testing.T) {
	s := completeState(t, "new frame header",
		"Version the frame header", "Frames need a version byte.", "protocol-change", "yes",
		"Dual-read for one release", "high", "loqa-proto", "", "")

	p, err := BuildIssuePayload(s, "loqa-hub", "from-interview")
	if err != nil {
		t.Fatalf("BuildIssuePayload: %v", err)
	}

	if p.Title != "Version the frame header" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Repository != "loqa-proto" {
		t.Errorf("Repository = %q, want answered repository", p.Repository)
	}
	checks := []string{
		"## Description\n\nFrames need a version byte.",
		"## ⚠️ Breaking Change",
		"**Migration plan:** Dual-read for one release",
		"- **Category:** bug-insight",
		"- **Type:** protocol-change",
		"- **Priority:** high",
		"- **Original input:** new frame header",
		"- **Interview:** `iv-42`",
	}
	for _, want := range checks {
		if !strings.Contains(p.Body, want) {
			t.Errorf("body missing %q\n---\n%s", want, p.Body)
		}
	}
	for _, absent := range []string{"## Acceptance Criteria", "## Technical Notes", "## Affected Repositories"} {
		if strings.Contains(p.Body, absent) {
			t.Errorf("body should omit %q", absent)
		}
	}

	wantLabels := []string{"priority: high", "type: protocol", "type: breaking-change", "from-interview"}
	if strings.Join(p.Labels, "|") != strings.Join(wantLabels, "|") {
		t.Errorf("Labels = %v, want %v", p.Labels, wantLabels)
	}
}

func TestBuildIssuePayload_SectionOrder(t *testing.T) {
	s := completeState(t, "",
		"Cross-repo auth", "Share tokens between services.", "cross-repo", "loqa-hub, loqa-relay", "yes", "",
		"medium", "loqa-hub", "Tokens rotate daily", "Use the existing JWT lib")

	p, err := BuildIssuePayload(s, "")
	if err != nil {
		t.Fatal(err)
	}

	order := []string{
		"## Description", "## Acceptance Criteria", "## Technical Notes",
		"## Affected Repositories", "## ⚠️ Breaking Change", "### Metadata",
	}
	last := -1
	for _, h := range order {
		i := strings.Index(p.Body, h)
		if i < 0 {
			t.Fatalf("missing section %q\n%s", h, p.Body)
		}
		if i < last {
			t.Errorf("section %q out of order", h)
		}
		last = i
	}
	if !strings.Contains(p.Body, "## Affected Repositories\n\n- loqa-hub\n- loqa-relay") {
		t.Errorf("affected repositories not rendered as a list:\n%s", p.Body)
	}
	if strings.Contains(p.Body, "Migration plan") {
		t.Error("empty migration plan should be omitted")
	}
	if !strings.Contains(p.Body, "- **Original input:** _none_") {
		t.Error("missing original input placeholder")
	}
}

func TestBuildIssuePayload_NotBreaking(t *testing.T) {
	s := completeState(t, "", "t", "d", "protocol-change", "no", "low", "loqa-proto", "", "")
	p, err := BuildIssuePayload(s, "")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(p.Body, "Breaking Change") {
		t.Error("non-breaking change rendered a breaking section")
	}
	for _, l := range p.Labels {
		if l == BreakingChangeLabel {
			t.Error("non-breaking change got the breaking label")
		}
	}
}

func TestBuildIssuePayload_Fallbacks(t *testing.T) {
	s := completeState(t, "", "", "Only a description", "", "", "", "", "")

	p, err := BuildIssuePayload(s, "loqa-hub", "priority: medium", "", "Type: Bug", "triage")
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != UntitledIssue {
		t.Errorf("Title = %q, want fallback", p.Title)
	}
	if p.Repository != "loqa-hub" {
		t.Errorf("Repository = %q, want default", p.Repository)
	}
	// Priority falls back to the suggestion, type to the category.
	want := []string{"priority: medium", "type: bug", "triage"}
	if strings.Join(p.Labels, "|") != strings.Join(want, "|") {
		t.Errorf("Labels = %v, want %v", p.Labels, want)
	}
}

func TestBuildIssuePayload_Rejects(t *testing.T) {
	t.Run("incomplete", func(t *testing.T) {
		s := interview.NewState("iv-1", "", interview.DefaultCatalog(), time.Now())
		_, err := BuildIssuePayload(s, "")
		if !tferrors.IsValidation(err) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
		if !strings.Contains(err.Error(), "iv-1") {
			t.Errorf("error should name the interview: %v", err)
		}
	})

	t.Run("no title and no description", func(t *testing.T) {
		s := completeState(t, "", "", "", "feature", "low", "loqa-hub", "", "")
		_, err := BuildIssuePayload(s, "")
		if !tferrors.IsValidation(err) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if _, err := BuildIssuePayload(nil, ""); !tferrors.IsValidation(err) {
			t.Fatalf("err = %v, want ValidationError", err)
		}
	})
}

func TestTypeLabel(t *testing.T) {
	tests := []struct {
		issueType string
		category  analyzer.Category
		want      string
	}{
		{"feature", analyzer.CategoryBugInsight, "type: feature"},
		{"bug-fix", "", "type: bug"},
		{"improvement", "", "type: enhancement"},
		{"documentation", "", "type: docs"},
		{"", analyzer.CategoryTechnicalDebt, "type: tech-debt"},
		{"something-else", analyzer.CategoryResearchTopic, "type: research"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := typeLabel(tt.issueType, tt.category); got != tt.want {
			t.Errorf("typeLabel(%q, %q) = %q, want %q", tt.issueType, tt.category, got, tt.want)
		}
	}
}
