package analyzer

import (
	"fmt"
	"testing"
)

// projectSnapshot: loqa-hub is overloaded (12 open), loqa-stt is
// underserved (0 open), and one high-priority hub issue defines the
// priority areas.
func projectSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	repos := []string{"loqa-hub", "loqa-stt", "loqa-commander"}
	var issues []OpenIssue
	issues = append(issues, OpenIssue{
		Repository: "loqa-hub", ID: 1, Title: "Wake word detection misfires",
		Labels: []string{"Priority: High"},
	})
	for i := 2; i <= 12; i++ {
		issues = append(issues, OpenIssue{Repository: "loqa-hub", ID: i, Title: fmt.Sprintf("hub chore %d", i)})
	}
	for i := 1; i <= 5; i++ {
		issues = append(issues, OpenIssue{Repository: "loqa-commander", ID: i, Title: fmt.Sprintf("commander chore %d", i)})
	}
	return BuildSnapshot(DefaultRules(), repos, issues)
}

func TestAnalyzeAgainstProjectState_UrgentOnly(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{})
	got := a.AnalyzeAgainstProjectState("this is urgent", nil, BuildSnapshot(a.Rules(), nil, nil))

	if got.Score != 2 {
		t.Errorf("Score = %d, want 2", got.Score)
	}
	if !got.ShouldSuggestIssue {
		t.Error("ShouldSuggestIssue should be true")
	}
	if got.SuggestedPriority != PriorityHigh {
		t.Errorf("SuggestedPriority = %q, want high", got.SuggestedPriority)
	}
	if got.SuggestedTemplate != TemplateBugFix {
		t.Errorf("SuggestedTemplate = %q, want bug-fix", got.SuggestedTemplate)
	}
	if got.Reasoning != "contains urgency indicators" {
		t.Errorf("Reasoning = %q", got.Reasoning)
	}
}

func TestAnalyzeAgainstProjectState_NoRuleFires(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{})
	got := a.AnalyzeAgainstProjectState("a quiet thought", nil, nil)

	if got.Score != 0 || got.ShouldSuggestIssue {
		t.Errorf("Score = %d, suggest = %v; want 0, false", got.Score, got.ShouldSuggestIssue)
	}
	if got.Reasoning != "general idea captured" {
		t.Errorf("Reasoning = %q, want literal fallback", got.Reasoning)
	}
	if got.SuggestedPriority != PriorityLow {
		t.Errorf("SuggestedPriority = %q, want low", got.SuggestedPriority)
	}
	if got.SuggestedTemplate != TemplateGeneral {
		t.Errorf("SuggestedTemplate = %q, want general", got.SuggestedTemplate)
	}
}

func TestAnalyzeAgainstProjectState_Rules(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{})
	snap := projectSnapshot(t)

	tests := []struct {
		name      string
		text      string
		score     int
		priority  Priority
		template  Template
		reasoning string
	}{
		{
			name: "priority area", text: "wake word tuning",
			score: 3, priority: PriorityHigh, template: TemplateGeneral,
			reasoning: "addresses current priority areas",
		},
		{
			name: "underserved repository", text: "stt model swap",
			score: 2, priority: PriorityMedium, template: TemplateFeature,
			reasoning: "addresses underserved areas",
		},
		{
			name: "overloaded repository", text: "hub dashboard colors",
			score: -1, priority: PriorityLow, template: TemplateGeneral,
			reasoning: "targets already busy area - consider timing",
		},
		{
			name: "overloaded but urgent", text: "urgent hub restart loop",
			score: 2, priority: PriorityHigh, template: TemplateBugFix,
			reasoning: "contains urgency indicators",
		},
		{
			name: "implementation details", text: "refactor `parseConfig()` in config.go",
			score: 1, priority: PriorityLow, template: TemplateFeature,
			reasoning: "includes implementation details",
		},
		{
			name: "implementation does not override urgency template", text: "urgent: guard nil in `Decode()`",
			score: 3, priority: PriorityHigh, template: TemplateBugFix,
			reasoning: "contains urgency indicators, includes implementation details",
		},
		{
			name: "architectural and complex", text: "urgent breaking change to the protocol across all services",
			score: 3, priority: PriorityHigh, template: TemplateCrossRepo,
			reasoning: "contains urgency indicators, has architectural implications",
		},
		{
			name: "architectural but simple", text: "rename a protocol field",
			score: 1, priority: PriorityLow, template: TemplateGeneral,
			reasoning: "has architectural implications",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.AnalyzeAgainstProjectState(tt.text, nil, snap)
			if got.Score != tt.score {
				t.Errorf("Score = %d, want %d (%s)", got.Score, tt.score, got.Reasoning)
			}
			if got.SuggestedPriority != tt.priority {
				t.Errorf("SuggestedPriority = %q, want %q", got.SuggestedPriority, tt.priority)
			}
			if got.SuggestedTemplate != tt.template {
				t.Errorf("SuggestedTemplate = %q, want %q", got.SuggestedTemplate, tt.template)
			}
			if got.Reasoning != tt.reasoning {
				t.Errorf("Reasoning = %q, want %q", got.Reasoning, tt.reasoning)
			}
		})
	}
}

func TestAnalyzeAgainstProjectState_SuggestIffScoreReachesThreshold(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{})
	snap := projectSnapshot(t)
	inputs := []string{
		"", "this is urgent", "wake word", "hub", "stt", "urgent hub",
		"refactor `x()`", "protocol", "protocol across services", "stt wake urgent `a()` schema across",
		"1. do this\n2. then that", "maybe later",
	}
	for _, in := range inputs {
		got := a.AnalyzeAgainstProjectState(in, nil, snap)
		if got.ShouldSuggestIssue != (got.Score >= 2) {
			t.Errorf("%q: ShouldSuggestIssue = %v with score %d", in, got.ShouldSuggestIssue, got.Score)
		}
	}
}

func TestAnalyzeAgainstProjectState_CategoryFromTags(t *testing.T) {
	a := newTestAnalyzer(RepositoryRegistry{})
	got := a.AnalyzeAgainstProjectState("this is urgent", []string{"optimization"}, nil)
	if got.Category != CategoryOptimization {
		t.Errorf("Category = %q, want optimization", got.Category)
	}
}
