package interview

import (
	"fmt"
	"strings"
)

// Question is one catalog entry.
type Question struct {
	ID       QuestionID   `json:"id"`
	Prompt   string       `json:"prompt"`
	Kind     QuestionKind `json:"kind"`
	Choices  []string     `json:"choices,omitempty"`
	Required bool         `json:"required"`
	// FollowUpOnly questions are never part of the base sequence; they are
	// only reached through another question's FollowUps.
	FollowUpOnly bool `json:"follow_up_only,omitempty"`
	// FollowUps maps a (normalized) answer to the questions it triggers.
	FollowUps map[string][]QuestionID `json:"follow_ups,omitempty"`
}

// FollowUpsFor returns the questions triggered by answer. It is pure: the
// same answer always yields the same ids.
func (q Question) FollowUpsFor(answer AnswerValue) []QuestionID {
	if len(q.FollowUps) == 0 {
		return nil
	}
	var out []QuestionID
	for _, item := range answer.Items() {
		out = append(out, q.FollowUps[strings.ToLower(strings.TrimSpace(item))]...)
	}
	return out
}

// choiceAliases normalizes common spellings of yes/no answers.
var choiceAliases = map[string]string{
	"y":     "yes",
	"true":  "yes",
	"n":     "no",
	"false": "no",
}

// Parse converts raw caller input into an answer of the question's kind.
// Choice answers matching a choice case-insensitively take the choice's
// spelling; anything else is kept verbatim (choice validation is left to
// the caller).
func (q Question) Parse(raw string) AnswerValue {
	raw = strings.TrimSpace(raw)
	switch q.Kind {
	case KindSingleChoice:
		return Choice(q.canonicalChoice(raw))
	case KindMultiChoice:
		var items []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, q.canonicalChoice(part))
			}
		}
		return MultiChoice(items...)
	default:
		return Text(raw)
	}
}

func (q Question) canonicalChoice(s string) string {
	lower := strings.ToLower(s)
	if alias, ok := choiceAliases[lower]; ok && q.hasChoice(alias) {
		lower = alias
	}
	for _, c := range q.Choices {
		if strings.ToLower(c) == lower {
			return c
		}
	}
	return s
}

func (q Question) hasChoice(s string) bool {
	for _, c := range q.Choices {
		if c == s {
			return true
		}
	}
	return false
}

// Issue types offered by the issue_type question.
const (
	TypeFeature        = "feature"
	TypeBugFix         = "bug-fix"
	TypeProtocolChange = "protocol-change"
	TypeCrossRepo      = "cross-repo"
	TypeImprovement    = "improvement"
	TypeDocumentation  = "documentation"
)

// Catalog is an ordered, static set of questions.
type Catalog struct {
	questions []Question
	byID      map[QuestionID]int
}

// NewCatalog builds a catalog and checks that every follow-up refers to a
// declared question.
func NewCatalog(questions []Question) (*Catalog, error) {
	c := &Catalog{
		questions: append([]Question(nil), questions...),
		byID:      make(map[QuestionID]int, len(questions)),
	}
	for i, q := range c.questions {
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("duplicate question %q", q.ID)
		}
		if q.Kind != KindFreeText && len(q.Choices) == 0 {
			return nil, fmt.Errorf("question %q: choices are required for %s", q.ID, q.Kind)
		}
		c.byID[q.ID] = i
	}
	for _, q := range c.questions {
		for answer, ids := range q.FollowUps {
			for _, id := range ids {
				if _, ok := c.byID[id]; !ok {
					return nil, fmt.Errorf("question %q: follow-up for %q refers to unknown question %q", q.ID, answer, id)
				}
			}
		}
	}
	return c, nil
}

// Question returns the question with the given id.
func (c *Catalog) Question(id QuestionID) (Question, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Question{}, false
	}
	return c.questions[i], true
}

// Questions returns every question in catalog order.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// BaseSequence returns the question order of a fresh interview: every
// question that is not follow-up only, in catalog order.
func (c *Catalog) BaseSequence() []QuestionID {
	var seq []QuestionID
	for _, q := range c.questions {
		if !q.FollowUpOnly {
			seq = append(seq, q.ID)
		}
	}
	return seq
}

// DefaultQuestions is the issue interview.
var DefaultQuestions = []Question{
	{
		ID:       QTitle,
		Prompt:   "What is a short, descriptive title for this issue?",
		Kind:     KindFreeText,
		Required: true,
	},
	{
		ID:       QDescription,
		Prompt:   "Describe the problem or idea in a few sentences. What happens today and what should happen instead?",
		Kind:     KindFreeText,
		Required: true,
	},
	{
		ID:       QIssueType,
		Prompt:   "What type of issue is this?",
		Kind:     KindSingleChoice,
		Choices:  []string{TypeFeature, TypeBugFix, TypeProtocolChange, TypeCrossRepo, TypeImprovement, TypeDocumentation},
		Required: true,
		FollowUps: map[string][]QuestionID{
			TypeProtocolChange: {QBreakingChange},
			TypeCrossRepo:      {QAffectedRepositories, QBreakingChange},
		},
	},
	{
		ID:           QBreakingChange,
		Prompt:       "Does this break compatibility for existing clients or services?",
		Kind:         KindSingleChoice,
		Choices:      []string{"yes", "no"},
		Required:     true,
		FollowUpOnly: true,
		FollowUps: map[string][]QuestionID{
			"yes": {QMigrationPlan},
		},
	},
	{
		ID:           QMigrationPlan,
		Prompt:       "How will consumers migrate? Describe the rollout or compatibility plan.",
		Kind:         KindFreeText,
		FollowUpOnly: true,
	},
	{
		ID:           QAffectedRepositories,
		Prompt:       "Which repositories are affected? (comma-separated)",
		Kind:         KindMultiChoice,
		Choices:      []string{"loqa-hub", "loqa-relay", "loqa-commander", "loqa-skills", "loqa-proto", "loqa-stt", "loqa-tts", "loqa-docs"},
		FollowUpOnly: true,
	},
	{
		ID:       QPriority,
		Prompt:   "What priority should this have?",
		Kind:     KindSingleChoice,
		Choices:  []string{"high", "medium", "low"},
		Required: true,
	},
	{
		ID:       QRepository,
		Prompt:   "Which repository should the issue be created in?",
		Kind:     KindFreeText,
		Required: true,
	},
	{
		ID:     QAcceptanceCriteria,
		Prompt: "What are the acceptance criteria? (optional, leave empty to skip)",
		Kind:   KindFreeText,
	},
	{
		ID:     QTechnicalNotes,
		Prompt: "Any technical notes, constraints, or implementation hints? (optional, leave empty to skip)",
		Kind:   KindFreeText,
	},
}

// DefaultCatalog returns the catalog built from DefaultQuestions.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultQuestions)
	if err != nil {
		panic("interview: default catalog is invalid: " + err.Error())
	}
	return c
}
