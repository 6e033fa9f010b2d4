package interview

import (
	"fmt"
	"time"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

// --- Pure state transitions ---
//
// The engine loads a State, applies one of these to a clone, persists the
// clone, and only then hands it back. Nothing here touches storage.

// NewState returns a fresh interview at the start of the catalog's base
// sequence.
func NewState(id, originalInput string, c *Catalog, now time.Time) *State {
	return &State{
		ID:            id,
		OriginalInput: originalInput,
		Answers:       make(map[QuestionID]AnswerValue),
		Sequence:      c.BaseSequence(),
		Cursor:        0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Current returns the question at the cursor, or false once the interview
// is complete.
func Current(s *State, c *Catalog) (Question, bool) {
	if s.Complete || s.Cursor < 0 || s.Cursor >= len(s.Sequence) {
		return Question{}, false
	}
	return c.Question(s.Sequence[s.Cursor])
}

// Apply records raw as the answer to the current question, inserts its
// follow-ups and advances the cursor.
//
// A follow-up is inserted right after the current position unless it is
// already answered or already in the sequence, so answering the same way
// twice never duplicates questions. The cursor then moves to the first
// unanswered position after the current one; reaching the end completes the
// interview. The cursor never moves backwards.
func Apply(s *State, c *Catalog, raw string) error {
	if s.Complete {
		return tferrors.NewValidationError(s.ID, "interview is already complete")
	}
	q, ok := Current(s, c)
	if !ok {
		return tferrors.NewValidationError(s.ID, fmt.Sprintf("no question at position %d", s.Cursor))
	}

	answer := q.Parse(raw)
	s.Answers[q.ID] = answer

	insertAt := s.Cursor + 1
	for _, f := range q.FollowUpsFor(answer) {
		if _, answered := s.Answers[f]; answered || s.inSequence(f) {
			continue
		}
		s.Sequence = insertQuestion(s.Sequence, insertAt, f)
		insertAt++
	}

	s.Cursor = s.nextUnanswered(s.Cursor + 1)
	if s.Cursor >= len(s.Sequence) {
		s.Cursor = len(s.Sequence)
		s.Complete = true
	}
	return nil
}

func (s *State) inSequence(id QuestionID) bool {
	for _, q := range s.Sequence {
		if q == id {
			return true
		}
	}
	return false
}

// nextUnanswered returns the first position at or after from whose question
// has no answer yet, or len(Sequence).
func (s *State) nextUnanswered(from int) int {
	for i := from; i < len(s.Sequence); i++ {
		if _, answered := s.Answers[s.Sequence[i]]; !answered {
			return i
		}
	}
	return len(s.Sequence)
}

func insertQuestion(seq []QuestionID, at int, id QuestionID) []QuestionID {
	seq = append(seq, "")
	copy(seq[at+1:], seq[at:])
	seq[at] = id
	return seq
}
