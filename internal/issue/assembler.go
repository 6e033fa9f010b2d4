// Package issue turns completed interviews into issue payloads and sends
// them to the Issue Backend.
package issue

import (
	"bytes"
	"embed"
	"strings"
	"text/template"

	"github.com/loqalabs/taskflow/internal/analyzer"
	tferrors "github.com/loqalabs/taskflow/internal/errors"
	"github.com/loqalabs/taskflow/internal/interview"
)

//go:embed templates/body.md.tmpl
var templateFS embed.FS

var bodyTemplate = template.Must(template.ParseFS(templateFS, "templates/body.md.tmpl"))

// UntitledIssue is the title used when the interview has no title answer.
const UntitledIssue = "Untitled issue"

// BreakingChangeLabel marks issues that break compatibility.
const BreakingChangeLabel = "type: breaking-change"

// Payload is everything needed to create one issue.
type Payload struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Labels     []string `json:"labels"`
	Repository string   `json:"repository"`
	Assignees  []string `json:"assignees,omitempty"`
}

// typeLabels maps the issue_type answer to its label.
var typeLabels = map[string]string{
	interview.TypeFeature:        "type: feature",
	interview.TypeBugFix:         "type: bug",
	interview.TypeProtocolChange: "type: protocol",
	interview.TypeCrossRepo:      "type: cross-repo",
	interview.TypeImprovement:    "type: enhancement",
	interview.TypeDocumentation:  "type: docs",
}

// categoryLabels is used when issue_type was not answered.
var categoryLabels = map[analyzer.Category]string{
	analyzer.CategoryFeatureIdea:        "type: feature",
	analyzer.CategoryBugInsight:         "type: bug",
	analyzer.CategoryOptimization:       "type: enhancement",
	analyzer.CategoryTechnicalDebt:      "type: tech-debt",
	analyzer.CategoryArchitecture:       "type: architecture",
	analyzer.CategoryProcessImprovement: "type: process",
	analyzer.CategoryResearchTopic:      "type: research",
}

type bodyData struct {
	Description          string
	AcceptanceCriteria   string
	TechnicalNotes       string
	AffectedRepositories []string
	Breaking             bool
	MigrationPlan        string
	Category             analyzer.Category
	IssueType            string
	Priority             string
	OriginalInput        string
	InterviewID          string
}

// BuildIssuePayload assembles the issue for a complete interview. Optional
// answers that are absent or empty omit their section. It fails when the
// interview is not complete, or when it has neither a title nor a
// description.
func BuildIssuePayload(s *interview.State, defaultRepository string, extraLabels ...string) (*Payload, error) {
	if s == nil {
		return nil, tferrors.NewValidationError("", "no interview given")
	}
	if !s.Complete {
		return nil, tferrors.NewValidationError(s.ID, "interview is not complete")
	}

	title := s.AnswerText(interview.QTitle)
	description := s.AnswerText(interview.QDescription)
	if title == "" && description == "" {
		return nil, tferrors.NewValidationError(s.ID, "interview has neither a title nor a description")
	}
	if title == "" {
		title = UntitledIssue
	}

	priority := s.AnswerText(interview.QPriority)
	if priority == "" {
		priority = string(s.SuggestedPriority)
	}
	if priority == "" {
		priority = string(analyzer.PriorityMedium)
	}
	priority = strings.ToLower(priority)

	issueType := strings.ToLower(s.AnswerText(interview.QIssueType))
	breaking := IsBreaking(s)

	data := bodyData{
		Description:        description,
		AcceptanceCriteria: s.AnswerText(interview.QAcceptanceCriteria),
		TechnicalNotes:     s.AnswerText(interview.QTechnicalNotes),
		Breaking:           breaking,
		Category:           s.SuggestedCategory,
		IssueType:          issueType,
		Priority:           priority,
		OriginalInput:      strings.TrimSpace(s.OriginalInput),
		InterviewID:        s.ID,
	}
	if breaking {
		data.MigrationPlan = s.AnswerText(interview.QMigrationPlan)
	}
	if v, ok := s.Answer(interview.QAffectedRepositories); ok && !v.IsEmpty() {
		data.AffectedRepositories = v.Items()
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, data); err != nil {
		return nil, tferrors.Wrap(err, "rendering issue body")
	}

	labels := []string{"priority: " + priority}
	if l := typeLabel(issueType, s.SuggestedCategory); l != "" {
		labels = append(labels, l)
	}
	if breaking {
		labels = append(labels, BreakingChangeLabel)
	}
	labels = append(labels, extraLabels...)

	repository := s.AnswerText(interview.QRepository)
	if repository == "" {
		repository = defaultRepository
	}

	return &Payload{
		Title:      title,
		Body:       body.String(),
		Labels:     dedupe(labels),
		Repository: repository,
	}, nil
}

// IsBreaking reports whether the breaking-change follow-up was answered
// affirmatively.
func IsBreaking(s *interview.State) bool {
	switch strings.ToLower(s.AnswerText(interview.QBreakingChange)) {
	case "yes", "y", "true":
		return true
	}
	return false
}

func typeLabel(issueType string, category analyzer.Category) string {
	if l, ok := typeLabels[issueType]; ok {
		return l
	}
	return categoryLabels[category]
}

// dedupe drops empty and repeated labels, keeping first occurrences in order.
func dedupe(labels []string) []string {
	seen := make(map[string]bool, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		key := strings.ToLower(l)
		if l == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}
