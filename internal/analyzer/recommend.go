package analyzer

import "fmt"

// Recommend picks what to do with a captured thought given its assessment
// and related issues (most similar first).
//
// A related issue at or above the merge threshold wins; otherwise an issue
// is proposed when the assessment suggests one; otherwise the thought is
// only captured.
func (a *Analyzer) Recommend(assessment Assessment, related []ScoredCandidateIssue) Recommendation {
	if len(related) > 0 && related[0].Similarity >= a.rules.Thresholds.Merge {
		top := related[0]
		return Recommendation{
			Action:      ActionMergeIntoExisting,
			MergeTarget: &top,
			Reasoning: fmt.Sprintf("%s#%d is %d%% similar (%s)",
				top.Issue.Repository, top.Issue.ID, top.Similarity, top.Reason),
		}
	}

	if assessment.ShouldSuggestIssue {
		return Recommendation{
			Action:     ActionCreateIssue,
			Complexity: estimateComplexity(assessment),
			Reasoning:  assessment.Reasoning,
		}
	}

	return Recommendation{
		Action:    ActionCaptureOnly,
		Reasoning: assessment.Reasoning,
	}
}

func estimateComplexity(as Assessment) ComplexityLevel {
	switch {
	case as.Architectural && as.HighComplexity:
		return ComplexityComplex
	case as.Architectural || as.HighComplexity || as.Implementation:
		return ComplexityModerate
	default:
		return ComplexitySimple
	}
}
