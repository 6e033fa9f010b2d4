package analyzer

import "context"

// Capture is the full analysis of one captured thought.
type Capture struct {
	Category       Category               `json:"category"`
	Urgency        Urgency                `json:"urgency"`
	Assessment     Assessment             `json:"assessment"`
	Related        []ScoredCandidateIssue `json:"related"`
	Recommendation Recommendation         `json:"recommendation"`
}

// CaptureThought classifies a thought, assesses it against one snapshot,
// finds related issues in that same snapshot and recommends what to do.
//
// The capture is always returned. A non-nil error reports that the
// snapshot was incomplete; related issues then come from tag matching.
func (a *Analyzer) CaptureThought(ctx context.Context, s string, tags []string) (*Capture, error) {
	snap, snapErr := a.Snapshot(ctx)

	var related []ScoredCandidateIssue
	if snapErr != nil {
		related = a.relatedByTags(snap.OpenIssues, tags)
	} else {
		related = a.RelatedIn(snap, s, tags)
	}

	assessment := a.AnalyzeAgainstProjectState(s, tags, snap)
	return &Capture{
		Category:       assessment.Category,
		Urgency:        a.EstimateUrgency(s),
		Assessment:     assessment,
		Related:        related,
		Recommendation: a.Recommend(assessment, related),
	}, snapErr
}
