// Package analyzer scores free-text thoughts against the live set of open
// issues across the project's repositories.
//
// Everything here is an ordered, additive keyword heuristic driven by a
// declarative Rules table (rules.yaml). Classification and urgency
// estimation are pure; only Snapshot touches the Issue Backend, through the
// RepositoryRegistry given at construction.
package analyzer

// Category is the kind of thought a piece of text represents.
type Category string

const (
	CategoryArchitecture       Category = "architecture"
	CategoryBugInsight         Category = "bug-insight"
	CategoryTechnicalDebt      Category = "technical-debt"
	CategoryOptimization       Category = "optimization"
	CategoryFeatureIdea        Category = "feature-idea"
	CategoryProcessImprovement Category = "process-improvement"
	CategoryResearchTopic      Category = "research-topic"
)

var validCategories = map[Category]bool{
	CategoryArchitecture:       true,
	CategoryBugInsight:         true,
	CategoryTechnicalDebt:      true,
	CategoryOptimization:       true,
	CategoryFeatureIdea:        true,
	CategoryProcessImprovement: true,
	CategoryResearchTopic:      true,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return validCategories[c] }

// Urgency buckets how soon a thought should be acted upon.
type Urgency string

const (
	UrgencyImmediate  Urgency = "immediate"
	UrgencyNextSprint Urgency = "next-sprint"
	UrgencyPlanned    Urgency = "planned"
	UrgencyFuture     Urgency = "future"
)

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyImmediate, UrgencyNextSprint, UrgencyPlanned, UrgencyFuture:
		return true
	}
	return false
}

// Priority is the issue priority label value.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// PriorityForUrgency maps an urgency bucket to the priority an interview is
// pre-filled with.
func PriorityForUrgency(u Urgency) Priority {
	switch u {
	case UrgencyImmediate:
		return PriorityHigh
	case UrgencyFuture:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Template names the issue-body structure to apply.
type Template string

const (
	TemplateGeneral   Template = "general"
	TemplateFeature   Template = "feature"
	TemplateBugFix    Template = "bug-fix"
	TemplateCrossRepo Template = "cross-repo"
)

// OpenIssue is one open issue as seen by the analyzer.
type OpenIssue struct {
	Repository  string   `json:"repository"`
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	BodyExcerpt string   `json:"body_excerpt,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// Snapshot is a point-in-time read of open issues. It is rebuilt on every
// analyzer call and never persisted.
type Snapshot struct {
	Repositories            []string    `json:"repositories"`
	OpenIssues              []OpenIssue `json:"open_issues"`
	PriorityAreas           []string    `json:"priority_areas"`
	UnderservedRepositories []string    `json:"underserved_repositories"`
	OverloadedRepositories  []string    `json:"overloaded_repositories"`
}

// ScoredCandidateIssue is an open issue with its similarity to some text.
type ScoredCandidateIssue struct {
	Issue      OpenIssue `json:"issue"`
	Similarity int       `json:"similarity"`
	Reason     string    `json:"reason"`
}

// Assessment is the outcome of AnalyzeAgainstProjectState.
type Assessment struct {
	ShouldSuggestIssue bool     `json:"should_suggest_issue"`
	Score              int      `json:"score"`
	Reasoning          string   `json:"reasoning"`
	SuggestedTemplate  Template `json:"suggested_template"`
	SuggestedPriority  Priority `json:"suggested_priority"`
	Category           Category `json:"category"`

	Architectural  bool `json:"architectural"`
	HighComplexity bool `json:"high_complexity"`
	Implementation bool `json:"implementation_details"`
}

// Action is the recommended next step for a thought.
type Action string

const (
	ActionCaptureOnly       Action = "capture-only"
	ActionMergeIntoExisting Action = "merge-into-existing"
	ActionCreateIssue       Action = "create-issue"
)

// ComplexityLevel estimates the size of the work a thought implies.
type ComplexityLevel string

const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityComplex  ComplexityLevel = "complex"
)

// Recommendation is the suggested handling of a captured thought.
type Recommendation struct {
	Action      Action                `json:"action"`
	Complexity  ComplexityLevel       `json:"complexity,omitempty"`
	MergeTarget *ScoredCandidateIssue `json:"merge_target,omitempty"`
	Reasoning   string                `json:"reasoning"`
}
