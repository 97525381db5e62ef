package analyze

import (
	"strings"
	"unicode/utf8"
)

// stopwords are tokens that carry no search value on their own.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "was": true,
	"were": true, "with": true, "that": true, "this": true, "from": true,
	"what": true, "when": true, "where": true, "who": true, "why": true,
	"how": true, "which": true, "can": true, "could": true, "should": true,
	"would": true, "does": true, "did": true, "has": true, "have": true,
	"had": true, "will": true, "about": true, "between": true, "into": true,
	"not": true, "you": true, "your": true, "its": true, "their": true,
	"versus": true, "best": true,
}

// ExtractKeywords tokenizes a query and drops stopwords and short
// tokens. Order is preserved and duplicates are kept, so repeated
// terms still weigh in downstream matching.
func ExtractKeywords(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', '?', '!', '.', ':', ';', '(', ')', '"', '\'':
			return true
		}
		return false
	})

	var keywords []string
	for _, f := range fields {
		// Character count, not bytes, so the filter treats CJK tokens
		// the same as ASCII ones.
		if utf8.RuneCountInString(f) <= 2 || stopwords[f] {
			continue
		}
		keywords = append(keywords, f)
	}
	return keywords
}

// aspectTriggers maps each aspect to the phrases whose presence in a
// source marks the aspect as covered.
var aspectTriggers = map[Aspect][]string{
	AspectDefinition:     {"is a", "is an", "refers to", "defined as", "definition", "meaning"},
	AspectReason:         {"because", "reason", "due to", "cause", "why"},
	AspectMethod:         {"how to", "method", "approach", "way to", "technique"},
	AspectTiming:         {"when", "date", "year", "timeline", "history", "schedule"},
	AspectLocation:       {"located", "location", "where", "place", "region"},
	AspectPerson:         {"founded by", "created by", "author", "founder", "developed by"},
	AspectSimilarities:   {"similar", "both", "in common", "alike", "share"},
	AspectDifferences:    {"differ", "difference", "unlike", "whereas", "in contrast", "compared to"},
	AspectProsCons:       {"advantage", "disadvantage", "pros and cons", "benefit", "drawback", "tradeoff"},
	AspectExamples:       {"example", "for instance", "such as", "use case", "sample"},
	AspectLatest:         {"latest", "recently", "announced", "released", "update", "new version"},
	AspectSteps:          {"step", "first", "then", "next", "finally", "install"},
	AspectOpinions:       {"recommend", "in my experience", "review", "opinion", "rated", "verdict"},
	AspectImplementation: {"implementation", "implemented", "algorithm", "code", "architecture", "under the hood"},
}

// Triggers returns the coverage phrases for an aspect. Unknown aspects
// get the aspect name itself as the sole trigger.
func Triggers(a Aspect) []string {
	if t, ok := aspectTriggers[a]; ok {
		return t
	}
	return []string{string(a)}
}
