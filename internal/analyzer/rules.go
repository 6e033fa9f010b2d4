package analyzer

import (
	_ "embed"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	tferrors "github.com/loqalabs/taskflow/internal/errors"
)

//go:embed rules.yaml
var embeddedRules []byte

// Thresholds are the tunable decision boundaries of the analyzer.
type Thresholds struct {
	Suggest        int `yaml:"suggest"`
	Related        int `yaml:"related"`
	Fallback       int `yaml:"fallback"`
	Merge          int `yaml:"merge"`
	UnderservedMax int `yaml:"underserved_max"`
	OverloadedMin  int `yaml:"overloaded_min"`
}

// KeywordBucket maps a name (category or urgency) to its vocabulary.
type KeywordBucket struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// TermGroup is a weighted set of terms describing one semantic domain or
// component.
type TermGroup struct {
	Name   string   `yaml:"name"`
	Weight int      `yaml:"weight"`
	Terms  []string `yaml:"terms"`
}

// Complexity configures the "high complexity" heuristic.
type Complexity struct {
	WordCount int      `yaml:"word_count"`
	Phrases   []string `yaml:"phrases"`
}

// Rules is the declarative keyword and weight table the analyzer scores with.
type Rules struct {
	Thresholds            Thresholds      `yaml:"thresholds"`
	Categories            []KeywordBucket `yaml:"categories"`
	Urgency               []KeywordBucket `yaml:"urgency"`
	UrgencyIndicators     []string        `yaml:"urgency_indicators"`
	ImplementationMarkers []string        `yaml:"implementation_markers"`
	ArchitectureMarkers   []string        `yaml:"architecture_markers"`
	Complexity            Complexity      `yaml:"complexity"`
	PriorityLabels        []string        `yaml:"priority_labels"`
	StopWords             []string        `yaml:"stop_words"`
	Domains               []TermGroup     `yaml:"domains"`
	ComponentWeight       int             `yaml:"component_weight"`
	Components            []TermGroup     `yaml:"components"`
	PairingWeight         int             `yaml:"pairing_weight"`
	ProblemTerms          []string        `yaml:"problem_terms"`
	SolutionTerms         []string        `yaml:"solution_terms"`
	TagWeight             int             `yaml:"tag_weight"`

	implementation []*regexp.Regexp
	stopWords      map[string]bool
}

// DefaultRules returns the rules shipped with the binary.
func DefaultRules() *Rules {
	r, err := ParseRules(embeddedRules)
	if err != nil {
		panic("analyzer: embedded rules are invalid: " + err.Error())
	}
	return r
}

// LoadRules reads rules from path, or returns the embedded rules when path
// is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, tferrors.Wrapf(err, "reading rules file %s", path)
	}
	r, err := ParseRules(data)
	if err != nil {
		return nil, tferrors.Wrapf(err, "rules file %s", path)
	}
	return r, nil
}

// ParseRules decodes and validates a rules document.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, tferrors.Wrap(err, "parsing rules")
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) compile() error {
	if len(r.Categories) == 0 {
		return tferrors.New("rules: at least one category is required")
	}
	if len(r.Urgency) == 0 {
		return tferrors.New("rules: at least one urgency bucket is required")
	}
	for _, c := range r.Categories {
		if !Category(c.Name).Valid() {
			return tferrors.Newf("rules: unknown category %q", c.Name)
		}
	}
	for _, u := range r.Urgency {
		if !Urgency(u.Name).Valid() {
			return tferrors.Newf("rules: unknown urgency %q", u.Name)
		}
	}
	for _, d := range r.Domains {
		if d.Weight <= 0 {
			return tferrors.Newf("rules: domain %q needs a positive weight", d.Name)
		}
	}

	r.implementation = r.implementation[:0]
	for _, expr := range r.ImplementationMarkers {
		re, err := regexp.Compile(expr)
		if err != nil {
			return tferrors.Wrapf(err, "rules: implementation marker %q", expr)
		}
		r.implementation = append(r.implementation, re)
	}

	r.stopWords = make(map[string]bool, len(r.StopWords))
	for _, w := range r.StopWords {
		r.stopWords[strings.ToLower(w)] = true
	}

	r.Categories = lowerBuckets(r.Categories)
	r.Urgency = lowerBuckets(r.Urgency)
	r.UrgencyIndicators = lowerAll(r.UrgencyIndicators)
	r.ArchitectureMarkers = lowerAll(r.ArchitectureMarkers)
	r.Complexity.Phrases = lowerAll(r.Complexity.Phrases)
	r.PriorityLabels = lowerAll(r.PriorityLabels)
	r.ProblemTerms = lowerAll(r.ProblemTerms)
	r.SolutionTerms = lowerAll(r.SolutionTerms)
	for i := range r.Domains {
		r.Domains[i].Terms = lowerAll(r.Domains[i].Terms)
	}
	for i := range r.Components {
		r.Components[i].Terms = lowerAll(r.Components[i].Terms)
	}
	return nil
}

func lowerBuckets(in []KeywordBucket) []KeywordBucket {
	for i := range in {
		in[i].Keywords = lowerAll(in[i].Keywords)
	}
	return in
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
