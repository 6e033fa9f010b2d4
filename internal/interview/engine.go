package interview

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loqalabs/taskflow/internal/analyzer"
	tferrors "github.com/loqalabs/taskflow/internal/errors"
	"github.com/loqalabs/taskflow/internal/logging"
)

// Suggester pre-fills a new interview from its original input.
// *analyzer.Analyzer satisfies it.
type Suggester interface {
	ClassifyCategory(text string, tags []string) analyzer.Category
	EstimateUrgency(text string) analyzer.Urgency
}

// Options tunes an Engine.
type Options struct {
	// TitlePrefillMax is the length below which a single-line original input
	// is used as the suggested title. Zero disables title pre-fill.
	TitlePrefillMax int
	// Retention is how long complete interviews are kept. Zero disables
	// cleanup.
	Retention time.Duration
	// Catalog defaults to DefaultCatalog().
	Catalog *Catalog
}

// Engine runs interviews. It holds no interview state between calls: every
// operation loads from the store, and every mutation is persisted before the
// call returns.
type Engine struct {
	store   Store
	suggest Suggester
	catalog *Catalog
	opts    Options
	log     *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{} // ids with a mutation in progress
}

// NewEngine creates an Engine.
func NewEngine(store Store, suggest Suggester, opts Options) *Engine {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	return &Engine{
		store:    store,
		suggest:  suggest,
		catalog:  opts.Catalog,
		opts:     opts,
		log:      logging.New("interview"),
		inFlight: map[string]struct{}{},
	}
}

// Catalog returns the question catalog in use.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Start creates and persists a new interview for originalInput.
func (e *Engine) Start(ctx context.Context, originalInput string) (*State, error) {
	now := timeNow().UTC()
	s := NewState(uuid.NewString(), originalInput, e.catalog, now)

	s.SuggestedCategory = e.suggest.ClassifyCategory(originalInput, nil)
	s.SuggestedPriority = analyzer.PriorityForUrgency(e.suggest.EstimateUrgency(originalInput))

	if title, ok := e.titleFrom(originalInput); ok {
		s.Answers[QTitle] = Text(title)
	}

	if err := e.store.Create(ctx, s); err != nil {
		e.log.Error("persisting new interview failed", "interview_id", s.ID, "error", err)
		return nil, err
	}
	e.log.Info("interview started", "interview_id", s.ID, "category", s.SuggestedCategory, "priority", s.SuggestedPriority)
	return s, nil
}

// titleFrom returns input as a title suggestion when it is a short single line.
func (e *Engine) titleFrom(input string) (string, bool) {
	title := strings.TrimSpace(input)
	if e.opts.TitlePrefillMax <= 0 || title == "" || strings.ContainsAny(title, "\r\n") {
		return "", false
	}
	if len([]rune(title)) >= e.opts.TitlePrefillMax {
		return "", false
	}
	return title, true
}

// SubmitAnswer records answer for the current question of interview id.
//
// The store is written before the new state is returned. If the write
// fails, the previously stored state is untouched. A second submission for
// the same interview while one is in flight fails with a BusyError.
func (e *Engine) SubmitAnswer(ctx context.Context, id, answer string) (*State, error) {
	unlock, ok := e.tryLock(id)
	if !ok {
		return nil, tferrors.NewBusyError(id)
	}
	defer unlock()

	current, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if err := Apply(next, e.catalog, answer); err != nil {
		return nil, err
	}
	next.UpdatedAt = timeNow().UTC()

	if err := e.store.Save(ctx, next); err != nil {
		e.log.Error("persisting answer failed", "interview_id", id, "error", err)
		return nil, err
	}

	e.log.Debug("answer recorded", "interview_id", id, "cursor", next.Cursor, "complete", next.Complete)
	if next.Complete && !current.Complete {
		e.log.Info("interview complete", "interview_id", id)
	}
	return next, nil
}

// Get loads one interview.
func (e *Engine) Get(ctx context.Context, id string) (*State, error) {
	return e.store.Load(ctx, id)
}

// Current returns the question the interview is waiting on.
func (e *Engine) Current(s *State) (Question, bool) {
	return Current(s, e.catalog)
}

// ListActive returns the interviews that are not complete, oldest first.
func (e *Engine) ListActive(ctx context.Context) ([]*State, error) {
	all, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*State, 0, len(all))
	for _, s := range all {
		if !s.Complete {
			active = append(active, s)
		}
	}
	return active, nil
}

// RecordIssue stores the reference of the issue created from interview id.
func (e *Engine) RecordIssue(ctx context.Context, id string, ref IssueRef) (*State, error) {
	unlock, ok := e.tryLock(id)
	if !ok {
		return nil, tferrors.NewBusyError(id)
	}
	defer unlock()

	current, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.saveIssue(ctx, current, ref)
}

// CreateIssue runs create for interview id and records the reference it
// returns, holding the interview for the whole call. If an issue is already
// recorded, create is not called and the stored state comes back with
// created false. A concurrent call for the same interview fails with a
// BusyError.
//
// When create succeeds but the reference cannot be saved, the returned state
// carries the new reference alongside the StoreError.
func (e *Engine) CreateIssue(ctx context.Context, id string, create func(*State) (*IssueRef, error)) (s *State, created bool, err error) {
	unlock, ok := e.tryLock(id)
	if !ok {
		return nil, false, tferrors.NewBusyError(id)
	}
	defer unlock()

	current, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if current.Issue != nil {
		return current, false, nil
	}

	ref, err := create(current.Clone())
	if err != nil {
		return nil, false, err
	}
	next, err := e.saveIssue(ctx, current, *ref)
	if err != nil {
		e.log.Error("recording created issue failed", "interview_id", id, "repository", ref.Repository, "number", ref.Number, "error", err)
		failed := current.Clone()
		failed.Issue = ref
		return failed, true, err
	}
	return next, true, nil
}

func (e *Engine) saveIssue(ctx context.Context, current *State, ref IssueRef) (*State, error) {
	next := current.Clone()
	next.Issue = &ref
	next.UpdatedAt = timeNow().UTC()
	if err := e.store.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Cleanup removes complete interviews older than the retention horizon and
// returns their ids. It does nothing when retention is disabled.
func (e *Engine) Cleanup(ctx context.Context) ([]string, error) {
	if e.opts.Retention <= 0 {
		return nil, nil
	}
	cutoff := timeNow().UTC().Add(-e.opts.Retention)
	removed, err := e.store.DeleteCompletedBefore(ctx, cutoff)
	if err != nil {
		return removed, err
	}
	if len(removed) > 0 {
		e.log.Info("removed expired interviews", "count", len(removed), "cutoff", cutoff.Format(time.RFC3339))
	}
	return removed, nil
}

// Retention returns the configured retention horizon.
func (e *Engine) Retention() time.Duration { return e.opts.Retention }

// tryLock marks id as in flight. The entry is dropped on unlock, so the
// table only ever holds ids with a call in progress.
func (e *Engine) tryLock(id string) (func(), bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[id]; busy {
		return nil, false
	}
	e.inFlight[id] = struct{}{}
	return func() {
		e.mu.Lock()
		delete(e.inFlight, id)
		e.mu.Unlock()
	}, true
}
