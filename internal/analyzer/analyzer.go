package analyzer

import (
	"context"
	"log/slog"

	"github.com/loqalabs/taskflow/internal/logging"
)

// FetchFunc returns the open issues of one repository.
type FetchFunc func(ctx context.Context, repository string) ([]OpenIssue, error)

// RepositoryRegistry lists the repositories a Snapshot covers and how to
// read their open issues.
type RepositoryRegistry struct {
	Repositories []string
	Fetch        FetchFunc
}

// Options tunes an Analyzer.
type Options struct {
	// FetchParallelism bounds concurrent repository fetches. Values below 1
	// mean 4.
	FetchParallelism int
}

// Analyzer classifies and scores free text against project state.
type Analyzer struct {
	rules       *Rules
	registry    RepositoryRegistry
	parallelism int
	log         *slog.Logger
}

// New creates an Analyzer. A nil rules value selects the embedded rules.
func New(rules *Rules, registry RepositoryRegistry, opts Options) *Analyzer {
	if rules == nil {
		rules = DefaultRules()
	}
	if opts.FetchParallelism < 1 {
		opts.FetchParallelism = 4
	}
	return &Analyzer{
		rules:       rules,
		registry:    registry,
		parallelism: opts.FetchParallelism,
		log:         logging.New("analyzer"),
	}
}

// Rules returns the rule table in use.
func (a *Analyzer) Rules() *Rules { return a.rules }
