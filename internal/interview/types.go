// Package interview drives the multi-turn Q&A that collects everything an
// issue needs.
//
// The package is split the same way as the rest of the workflow code:
// question catalog, pure state transitions, engine (load, mutate, persist),
// and interchangeable stores behind the Store interface.
package interview

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/loqalabs/taskflow/internal/analyzer"
)

// QuestionID identifies a catalog question.
type QuestionID string

const (
	QTitle                QuestionID = "title"
	QDescription          QuestionID = "description"
	QIssueType            QuestionID = "issue_type"
	QBreakingChange       QuestionID = "breaking_change"
	QMigrationPlan        QuestionID = "migration_plan"
	QAffectedRepositories QuestionID = "affected_repositories"
	QPriority             QuestionID = "priority"
	QRepository           QuestionID = "repository"
	QAcceptanceCriteria   QuestionID = "acceptance_criteria"
	QTechnicalNotes       QuestionID = "technical_notes"
)

// QuestionKind says what shape of answer a question takes.
type QuestionKind string

const (
	KindFreeText     QuestionKind = "free-text"
	KindSingleChoice QuestionKind = "single-choice"
	KindMultiChoice  QuestionKind = "multi-choice"
)

// AnswerKind tags an AnswerValue.
type AnswerKind string

const (
	AnswerText        AnswerKind = "text"
	AnswerChoice      AnswerKind = "choice"
	AnswerMultiChoice AnswerKind = "multi-choice"
)

// AnswerValue is one recorded answer: free text, a single choice, or a list
// of choices.
type AnswerValue struct {
	kind  AnswerKind
	text  string
	items []string
}

// Text returns a free-text answer.
func Text(s string) AnswerValue { return AnswerValue{kind: AnswerText, text: s} }

// Choice returns a single-choice answer.
func Choice(s string) AnswerValue { return AnswerValue{kind: AnswerChoice, text: s} }

// MultiChoice returns a multi-choice answer.
func MultiChoice(items ...string) AnswerValue {
	return AnswerValue{kind: AnswerMultiChoice, items: append([]string(nil), items...)}
}

// Kind returns the answer's tag.
func (a AnswerValue) Kind() AnswerKind { return a.kind }

// Items returns the chosen values of a multi-choice answer, or the single
// value of any other answer.
func (a AnswerValue) Items() []string {
	if a.kind == AnswerMultiChoice {
		return append([]string(nil), a.items...)
	}
	if a.text == "" {
		return nil
	}
	return []string{a.text}
}

// String renders the answer as text. Multi-choice items are comma-joined.
func (a AnswerValue) String() string {
	if a.kind == AnswerMultiChoice {
		return strings.Join(a.items, ", ")
	}
	return a.text
}

// IsEmpty reports whether the answer carries no content.
func (a AnswerValue) IsEmpty() bool {
	if a.kind == AnswerMultiChoice {
		return len(a.items) == 0
	}
	return strings.TrimSpace(a.text) == ""
}

type answerJSON struct {
	Kind  AnswerKind      `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the answer as {"kind": ..., "value": ...}.
func (a AnswerValue) MarshalJSON() ([]byte, error) {
	var (
		value []byte
		err   error
	)
	if a.kind == AnswerMultiChoice {
		items := a.items
		if items == nil {
			items = []string{}
		}
		value, err = json.Marshal(items)
	} else {
		value, err = json.Marshal(a.text)
	}
	if err != nil {
		return nil, err
	}
	kind := a.kind
	if kind == "" {
		kind = AnswerText
	}
	return json.Marshal(answerJSON{Kind: kind, Value: value})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case AnswerText, AnswerChoice:
		var s string
		if err := json.Unmarshal(raw.Value, &s); err != nil {
			return fmt.Errorf("answer value for kind %q: %w", raw.Kind, err)
		}
		*a = AnswerValue{kind: raw.Kind, text: s}
	case AnswerMultiChoice:
		var items []string
		if err := json.Unmarshal(raw.Value, &items); err != nil {
			return fmt.Errorf("answer value for kind %q: %w", raw.Kind, err)
		}
		*a = MultiChoice(items...)
	default:
		return fmt.Errorf("unknown answer kind %q", raw.Kind)
	}
	return nil
}

// IssueRef points at the issue created from a completed interview.
type IssueRef struct {
	Repository string `json:"repository"`
	Number     int    `json:"number"`
	URL        string `json:"url"`
}

// State is one interview, in progress or complete.
type State struct {
	ID            string                     `json:"id"`
	OriginalInput string                     `json:"original_input"`
	Answers       map[QuestionID]AnswerValue `json:"answers"`
	// Sequence is the resolved question order: the catalog base order with
	// follow-ups inserted where they were triggered.
	Sequence          []QuestionID      `json:"sequence"`
	Cursor            int               `json:"question_cursor"`
	Complete          bool              `json:"complete"`
	SuggestedCategory analyzer.Category `json:"suggested_category"`
	SuggestedPriority analyzer.Priority `json:"suggested_priority"`
	Issue             *IssueRef         `json:"issue,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Answer returns the recorded answer for id.
func (s *State) Answer(id QuestionID) (AnswerValue, bool) {
	v, ok := s.Answers[id]
	return v, ok
}

// AnswerText returns the trimmed text of the answer for id, or "" when it
// is absent.
func (s *State) AnswerText(id QuestionID) string {
	v, ok := s.Answers[id]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v.String())
}

// Clone returns a deep copy, so a mutation can be discarded if persisting it
// fails.
func (s *State) Clone() *State {
	c := *s
	c.Answers = make(map[QuestionID]AnswerValue, len(s.Answers))
	for k, v := range s.Answers {
		c.Answers[k] = v.clone()
	}
	c.Sequence = append([]QuestionID(nil), s.Sequence...)
	if s.Issue != nil {
		ref := *s.Issue
		c.Issue = &ref
	}
	return &c
}

func (a AnswerValue) clone() AnswerValue {
	if a.kind == AnswerMultiChoice {
		a.items = append([]string(nil), a.items...)
	}
	return a
}
