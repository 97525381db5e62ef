// Package analyze classifies a natural-language query: what the user
// is after, how involved the answer should be, and which aspects of
// the topic a good answer has to touch.
package analyze

import "strings"

// Intent is the broad category of question being asked.
type Intent string

const (
	IntentComparison    Intent = "comparison"
	IntentHowTo         Intent = "howto"
	IntentCurrentEvents Intent = "current_events"
	IntentOpinion       Intent = "opinion"
	IntentTechnical     Intent = "technical"
	IntentComprehensive Intent = "comprehensive"
	IntentFactual       Intent = "factual"
)

// Complexity estimates how much digging an answer needs.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Aspect names one facet of a topic an answer can cover.
type Aspect string

const (
	AspectDefinition     Aspect = "definition"
	AspectReason         Aspect = "reason"
	AspectMethod         Aspect = "method"
	AspectTiming         Aspect = "timing"
	AspectLocation       Aspect = "location"
	AspectPerson         Aspect = "person"
	AspectSimilarities   Aspect = "similarities"
	AspectDifferences    Aspect = "differences"
	AspectProsCons       Aspect = "pros_cons"
	AspectExamples       Aspect = "examples"
	AspectLatest         Aspect = "latest"
	AspectSteps          Aspect = "steps"
	AspectOpinions       Aspect = "opinions"
	AspectImplementation Aspect = "implementation"
)

// Analysis is the full classification of one query.
type Analysis struct {
	Query          string     `json:"query"`
	Intent         Intent     `json:"intent"`
	Complexity     Complexity `json:"complexity"`
	SuggestedDepth int        `json:"suggested_depth"`
	Aspects        []Aspect   `json:"aspects"`
	Keywords       []string   `json:"keywords"`
}

var comparisonMarkers = []string{" vs ", " vs. ", " versus ", "compare", "comparison", "difference between", "better than", " or ", "違い"}

var howToMarkers = []string{"how to", "how do i", "how do you", "how can i", "tutorial", "guide", "setup", "install"}

var recencyMarkers = []string{"latest", "newest", "recent", "news", "today", "2024", "2025", "2026", "current", "update"}

var opinionMarkers = []string{"review", "reviews", "recommend", "recommendation", "best", "worth it", "should i", "opinion"}

var technicalMarkers = []string{"implementation", "algorithm", "architecture", "api", "protocol", "performance", "internals", "source code", "debug"}

var comprehensiveMarkers = []string{"everything about", "complete guide", "deep dive", "in depth", "comprehensive", "overview of", "explain"}

var connectives = []string{" and ", " with ", " including ", " between ", " while ", " as well as "}

// Analyze classifies a query with keyword heuristics. It never fails;
// an unmatched query lands on the factual defaults.
func Analyze(query string) Analysis {
	lower := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(lower)

	intent := detectIntent(lower)
	complexity := detectComplexity(lower, words)

	return Analysis{
		Query:          strings.TrimSpace(query),
		Intent:         intent,
		Complexity:     complexity,
		SuggestedDepth: suggestDepth(intent, complexity),
		Aspects:        detectAspects(lower, intent),
		Keywords:       ExtractKeywords(query),
	}
}

// detectIntent checks the categories in priority order; the first
// match wins so "how to compare X and Y" reads as a comparison.
func detectIntent(lower string) Intent {
	switch {
	case containsAny(lower, comparisonMarkers):
		return IntentComparison
	case containsAny(lower, howToMarkers):
		return IntentHowTo
	case containsAny(lower, recencyMarkers):
		return IntentCurrentEvents
	case containsAny(lower, opinionMarkers):
		return IntentOpinion
	case containsAny(lower, technicalMarkers):
		return IntentTechnical
	case containsAny(lower, comprehensiveMarkers):
		return IntentComprehensive
	default:
		return IntentFactual
	}
}

func detectComplexity(lower string, words []string) Complexity {
	conn := 0
	for _, c := range connectives {
		conn += strings.Count(lower, c)
	}
	// Whole tokens only, so "show" does not read as a question marker.
	interrogative := false
	for _, w := range words {
		if w == "why" || w == "how" || w == "what" {
			interrogative = true
			break
		}
	}

	switch {
	case len(words) > 15, conn >= 2, interrogative && len(words) > 8:
		return ComplexityComplex
	case len(words) > 8, conn >= 2:
		return ComplexityMedium
	default:
		return ComplexitySimple
	}
}

// suggestDepth maps the classification onto how many retrieval layers
// are likely worth running.
func suggestDepth(intent Intent, complexity Complexity) int {
	switch {
	case complexity == ComplexityComplex,
		intent == IntentComparison,
		intent == IntentComprehensive:
		return 3
	case complexity == ComplexityMedium,
		intent == IntentTechnical,
		intent == IntentHowTo:
		return 2
	default:
		return 1
	}
}

// aspectRules pairs surface markers with the aspect they signal.
// Order is fixed so the produced aspect list is deterministic.
var aspectRules = []struct {
	aspect  Aspect
	markers []string
}{
	{AspectDefinition, []string{"what is", "what are", "meaning", "definition", "explain"}},
	{AspectReason, []string{"why", "reason", "cause", "because"}},
	{AspectMethod, []string{"how to", "how do", "how can", "method", "way to"}},
	{AspectTiming, []string{"when", "timeline", "history", "schedule"}},
	{AspectLocation, []string{"where", "location", "place"}},
	{AspectPerson, []string{"who", "founder", "author", "creator"}},
	{AspectExamples, []string{"example", "examples", "sample", "use case"}},
	{AspectLatest, []string{"latest", "newest", "recent", "news", "current"}},
	{AspectSteps, []string{"step", "steps", "tutorial", "guide", "setup", "install"}},
	{AspectOpinions, []string{"review", "opinion", "recommend", "best", "worth"}},
	{AspectImplementation, []string{"implementation", "implement", "algorithm", "architecture", "internals"}},
}

// intentAspects are bundled in even without surface markers: asking
// for a comparison implies wanting the similarities, differences and
// tradeoffs spelled out.
var intentAspects = map[Intent][]Aspect{
	IntentComparison:    {AspectSimilarities, AspectDifferences, AspectProsCons},
	IntentHowTo:         {AspectSteps, AspectMethod},
	IntentCurrentEvents: {AspectLatest},
	IntentOpinion:       {AspectOpinions, AspectProsCons},
	IntentTechnical:     {AspectImplementation, AspectMethod},
	IntentComprehensive: {AspectDefinition, AspectReason, AspectExamples},
}

func detectAspects(lower string, intent Intent) []Aspect {
	seen := make(map[Aspect]bool)
	var aspects []Aspect
	add := func(a Aspect) {
		if !seen[a] {
			seen[a] = true
			aspects = append(aspects, a)
		}
	}

	for _, rule := range aspectRules {
		if containsAny(lower, rule.markers) {
			add(rule.aspect)
		}
	}
	for _, a := range intentAspects[intent] {
		add(a)
	}
	if len(aspects) == 0 {
		add(AspectDefinition)
	}
	return aspects
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
