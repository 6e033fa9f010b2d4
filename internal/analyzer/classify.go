package analyzer

import "strings"

// ClassifyCategory returns the category of text. An explicit tag naming a
// known category wins; otherwise the first category whose vocabulary
// appears in the text; otherwise feature-idea.
func (a *Analyzer) ClassifyCategory(text string, tags []string) Category {
	return classifyCategory(a.rules, text, tags)
}

// EstimateUrgency returns the first urgency bucket whose vocabulary appears
// in text, or planned.
func (a *Analyzer) EstimateUrgency(text string) Urgency {
	return estimateUrgency(a.rules, text)
}

func classifyCategory(r *Rules, s string, tags []string) Category {
	for _, tag := range tags {
		c := Category(strings.ToLower(strings.TrimSpace(tag)))
		if c.Valid() {
			return c
		}
	}

	lower := strings.ToLower(s)
	for _, bucket := range r.Categories {
		if containsAny(lower, bucket.Keywords) {
			return Category(bucket.Name)
		}
	}
	return CategoryFeatureIdea
}

func estimateUrgency(r *Rules, s string) Urgency {
	lower := strings.ToLower(s)
	for _, bucket := range r.Urgency {
		if containsAny(lower, bucket.Keywords) {
			return Urgency(bucket.Name)
		}
	}
	return UrgencyPlanned
}
