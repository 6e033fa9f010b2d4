package analyzer

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// FindRelatedIssues returns open issues similar to text, most similar
// first. It never fails: when the snapshot cannot be read, or scoring
// panics, it degrades to matching tags against issue titles and bodies.
func (a *Analyzer) FindRelatedIssues(ctx context.Context, s string, tags []string) []ScoredCandidateIssue {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		a.log.Warn("snapshot incomplete, using tag matching", "error", err)
		return a.relatedByTags(snap.OpenIssues, tags)
	}
	return a.RelatedIn(snap, s, tags)
}

// RelatedIn scores text against the issues of an already fetched snapshot.
func (a *Analyzer) RelatedIn(snap *Snapshot, s string, tags []string) (result []ScoredCandidateIssue) {
	if snap == nil {
		return []ScoredCandidateIssue{}
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("related issue scoring panicked, using tag matching", "panic", r)
			result = a.relatedByTags(snap.OpenIssues, tags)
		}
	}()
	return a.relatedBySemantics(snap.OpenIssues, s)
}

func (a *Analyzer) relatedBySemantics(issues []OpenIssue, s string) []ScoredCandidateIssue {
	r := a.rules
	input := newText(s)

	out := []ScoredCandidateIssue{}
	for _, issue := range issues {
		other := newText(issue.Title + "\n" + issue.BodyExcerpt)
		score, reasons := 0, []string(nil)

		for _, d := range r.Domains {
			if groupShared(d.Terms, input, other) {
				score += d.Weight
				reasons = append(reasons, "both mention "+d.Name)
			}
		}
		for _, c := range r.Components {
			if groupShared(c.Terms, input, other) {
				score += r.ComponentWeight
				reasons = append(reasons, "same component ("+c.Name+")")
			}
		}
		if pairs(input, other, r.ProblemTerms, r.SolutionTerms) || pairs(other, input, r.ProblemTerms, r.SolutionTerms) {
			score += r.PairingWeight
			reasons = append(reasons, "problem/solution pairing")
		}

		if score > r.Thresholds.Related {
			out = append(out, ScoredCandidateIssue{
				Issue:      issue,
				Similarity: clampSimilarity(score),
				Reason:     strings.Join(reasons, "; "),
			})
		}
	}
	sortBySimilarity(out)
	return out
}

func (a *Analyzer) relatedByTags(issues []OpenIssue, tags []string) []ScoredCandidateIssue {
	r := a.rules
	out := []ScoredCandidateIssue{}
	for _, issue := range issues {
		haystack := strings.ToLower(issue.Title + "\n" + issue.BodyExcerpt)
		score := 0
		var matched []string
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || !strings.Contains(haystack, tag) {
				continue
			}
			score += r.TagWeight
			matched = append(matched, tag)
		}
		if score > r.Thresholds.Fallback {
			out = append(out, ScoredCandidateIssue{
				Issue:      issue,
				Similarity: clampSimilarity(score),
				Reason:     fmt.Sprintf("tag match: %s", strings.Join(matched, ", ")),
			})
		}
	}
	sortBySimilarity(out)
	return out
}

// groupShared reports whether both texts mention some term of the group.
func groupShared(terms []string, x, y text) bool {
	_, inX := x.firstOf(terms)
	if !inX {
		return false
	}
	_, inY := y.firstOf(terms)
	return inY
}

// pairs reports whether x states a problem that y offers a solution for.
func pairs(x, y text, problems, solutions []string) bool {
	_, problem := x.firstOf(problems)
	if !problem {
		return false
	}
	_, solution := y.firstOf(solutions)
	return solution
}

func sortBySimilarity(candidates []ScoredCandidateIssue) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
}

func clampSimilarity(score int) int {
	switch {
	case score > 100:
		return 100
	case score < 0:
		return 0
	default:
		return score
	}
}
