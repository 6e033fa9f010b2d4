package analyzer

import (
	"strings"
)

const noReasonsFired = "general idea captured"

// AnalyzeAgainstProjectState scores text against snap with an ordered set of
// additive rules and decides whether it deserves an issue.
//
// Rules, in order:
//
//	+3 keywords overlap priority areas           (priority high)
//	+2 keywords overlap underserved repositories (template feature)
//	-1 keywords overlap overloaded repositories and no urgency indicator
//	+2 urgency indicator present                 (priority high, template bug-fix)
//	+1 implementation details                    (template feature unless already set)
//	+1 architectural implications                (template cross-repo when also complex)
//
// An issue is suggested when the score reaches the suggest threshold.
func (a *Analyzer) AnalyzeAgainstProjectState(s string, tags []string, snap *Snapshot) Assessment {
	r := a.rules
	if snap == nil {
		snap = BuildSnapshot(r, nil, nil)
	}
	t := newText(s)
	keywords := t.keywords(r.stopWords)

	var (
		score    int
		reasons  []string
		template Template
		priority Priority
	)

	areas := make(map[string]bool, len(snap.PriorityAreas))
	for _, area := range snap.PriorityAreas {
		areas[area] = true
	}
	if overlaps(keywords, areas) {
		score += 3
		reasons = append(reasons, "addresses current priority areas")
		priority = PriorityHigh
	}

	if overlaps(keywords, repositoryTokens(snap.UnderservedRepositories, snap.Repositories)) {
		score += 2
		reasons = append(reasons, "addresses underserved areas")
		template = TemplateFeature
	}

	urgent := containsAny(t.lower, r.UrgencyIndicators)
	if !urgent && overlaps(keywords, repositoryTokens(snap.OverloadedRepositories, snap.Repositories)) {
		score--
		reasons = append(reasons, "targets already busy area - consider timing")
	}

	if urgent {
		score += 2
		reasons = append(reasons, "contains urgency indicators")
		priority = PriorityHigh
		template = TemplateBugFix
	}

	implementation := a.hasImplementationDetails(s)
	if implementation {
		score++
		reasons = append(reasons, "includes implementation details")
		if template == "" {
			template = TemplateFeature
		}
	}

	architectural := containsAny(t.lower, r.ArchitectureMarkers)
	highComplexity := a.isHighComplexity(t)
	if architectural {
		score++
		reasons = append(reasons, "has architectural implications")
		if highComplexity {
			template = TemplateCrossRepo
		}
	}

	suggest := score >= r.Thresholds.Suggest
	if priority == "" {
		if suggest {
			priority = PriorityMedium
		} else {
			priority = PriorityLow
		}
	}
	if template == "" {
		template = TemplateGeneral
	}

	reasoning := noReasonsFired
	if len(reasons) > 0 {
		reasoning = strings.Join(reasons, ", ")
	}

	return Assessment{
		ShouldSuggestIssue: suggest,
		Score:              score,
		Reasoning:          reasoning,
		SuggestedTemplate:  template,
		SuggestedPriority:  priority,
		Category:           classifyCategory(r, s, tags),
		Architectural:      architectural,
		HighComplexity:     highComplexity,
		Implementation:     implementation,
	}
}

func (a *Analyzer) hasImplementationDetails(s string) bool {
	for _, re := range a.rules.implementation {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func (a *Analyzer) isHighComplexity(t text) bool {
	c := a.rules.Complexity
	if c.WordCount > 0 && len(t.words) >= c.WordCount {
		return true
	}
	return containsAny(t.lower, c.Phrases)
}
