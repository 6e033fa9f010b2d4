package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

// Snapshot reads the open issues of every registered repository and derives
// priority areas and repository load. Repositories are fetched concurrently.
//
// A failing repository does not abort the others: the returned snapshot
// holds whatever was fetched, and the error combines every failure.
func (a *Analyzer) Snapshot(ctx context.Context) (*Snapshot, error) {
	repos := a.registry.Repositories
	if len(repos) == 0 {
		return BuildSnapshot(a.rules, nil, nil), nil
	}
	if a.registry.Fetch == nil {
		return BuildSnapshot(a.rules, nil, nil), tferrors.New("analyzer: no issue fetcher configured")
	}

	perRepo := make([][]OpenIssue, len(repos))
	failures := make([]error, len(repos))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i, repo := range repos {
		g.Go(func() error {
			issues, err := a.fetch(gCtx, repo)
			if err != nil {
				a.log.Warn("fetching open issues failed", "repository", repo, "error", err)
				failures[i] = tferrors.Wrapf(err, "repository %s", repo)
				return nil
			}
			perRepo[i] = issues
			return nil
		})
	}
	_ = g.Wait()

	var (
		all  []OpenIssue
		errs error
	)
	for i, issues := range perRepo {
		all = append(all, issues...)
		errs = tferrors.CombineErrors(errs, failures[i])
	}
	a.log.Debug("snapshot built", "repositories", len(repos), "open_issues", len(all))
	return BuildSnapshot(a.rules, repos, all), errs
}

// fetch calls the registry fetcher, turning a panic into an error.
func (a *Analyzer) fetch(ctx context.Context, repo string) (issues []OpenIssue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return a.registry.Fetch(ctx, repo)
}

// BuildSnapshot derives the snapshot sets from a list of open issues.
func BuildSnapshot(r *Rules, repos []string, issues []OpenIssue) *Snapshot {
	snap := &Snapshot{
		Repositories:            repos,
		OpenIssues:              issues,
		PriorityAreas:           []string{},
		UnderservedRepositories: []string{},
		OverloadedRepositories:  []string{},
	}
	if snap.Repositories == nil {
		snap.Repositories = []string{}
	}
	if snap.OpenIssues == nil {
		snap.OpenIssues = []OpenIssue{}
	}

	areas := make(map[string]bool)
	counts := make(map[string]int, len(repos))
	for _, issue := range issues {
		counts[issue.Repository]++
		if !hasPriorityLabel(r, issue.Labels) {
			continue
		}
		for _, kw := range newText(issue.Title).keywords(r.stopWords) {
			areas[kw] = true
		}
	}
	snap.PriorityAreas = sortedKeys(areas)

	for _, repo := range repos {
		n := counts[repo]
		if n <= r.Thresholds.UnderservedMax {
			snap.UnderservedRepositories = append(snap.UnderservedRepositories, repo)
		}
		if n >= r.Thresholds.OverloadedMin {
			snap.OverloadedRepositories = append(snap.OverloadedRepositories, repo)
		}
	}
	return snap
}

func hasPriorityLabel(r *Rules, labels []string) bool {
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		for _, p := range r.PriorityLabels {
			if l == p {
				return true
			}
		}
	}
	return false
}

// repositoryTokens splits repository names into name tokens, dropping
// tokens shared by every name in all (typically an organization prefix).
func repositoryTokens(names, all []string) map[string]bool {
	shared := map[string]bool{}
	if len(all) > 1 {
		for i, name := range all {
			toks := nameTokens(name)
			if i == 0 {
				for t := range toks {
					shared[t] = true
				}
				continue
			}
			for t := range shared {
				if !toks[t] {
					delete(shared, t)
				}
			}
		}
	}

	out := make(map[string]bool)
	for _, name := range names {
		for t := range nameTokens(name) {
			if !shared[t] {
				out[t] = true
			}
		}
	}
	return out
}

func nameTokens(name string) map[string]bool {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	parts := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	out := make(map[string]bool, len(parts))
	for _, p := range parts {
		if len(p) >= 2 {
			out[p] = true
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
