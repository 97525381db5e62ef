// Package coverage scores how completely a set of retrieved sources
// answers a query's aspects and keywords.
package coverage

import (
	"strings"

	"strata/internal/analyze"
)

// SourceText is the searchable text of one retrieved source.
type SourceText struct {
	Title       string
	Description string
	Content     string
}

// Weights balance aspect coverage against keyword coverage in the
// combined score.
type Weights struct {
	Aspect  float64
	Keyword float64
}

// DefaultWeights returns the standard 60/40 split.
func DefaultWeights() Weights {
	return Weights{Aspect: 0.6, Keyword: 0.4}
}

// Report is the outcome of one evaluation.
type Report struct {
	Coverage        float64          `json:"coverage"`
	AspectCoverage  float64          `json:"aspect_coverage"`
	KeywordCoverage float64          `json:"keyword_coverage"`
	Gaps            []analyze.Aspect `json:"gaps,omitempty"`
}

// Evaluate scores the sources against the wanted aspects and keywords.
// An aspect counts as covered when any of its trigger phrases appears
// in the combined source text; gaps come back in input order. With no
// aspects to check, aspect coverage sits at a neutral 0.5.
func Evaluate(aspects []analyze.Aspect, keywords []string, sources []SourceText, w Weights) Report {
	corpus := buildCorpus(sources)

	aspectScore := 0.5
	var gaps []analyze.Aspect
	if len(aspects) > 0 {
		covered := 0
		for _, a := range aspects {
			if aspectCovered(corpus, a) {
				covered++
			} else {
				gaps = append(gaps, a)
			}
		}
		aspectScore = float64(covered) / float64(len(aspects))
	}

	keywordScore := 0.0
	if len(keywords) > 0 {
		matched := 0
		for _, k := range keywords {
			if strings.Contains(corpus, strings.ToLower(k)) {
				matched++
			}
		}
		keywordScore = float64(matched) / float64(len(keywords))
	}

	return Report{
		Coverage:        w.Aspect*aspectScore + w.Keyword*keywordScore,
		AspectCoverage:  aspectScore,
		KeywordCoverage: keywordScore,
		Gaps:            gaps,
	}
}

func buildCorpus(sources []SourceText) string {
	var b strings.Builder
	for _, s := range sources {
		b.WriteString(s.Title)
		b.WriteByte(' ')
		b.WriteString(s.Description)
		b.WriteByte(' ')
		b.WriteString(s.Content)
		b.WriteByte(' ')
	}
	return strings.ToLower(b.String())
}

func aspectCovered(corpus string, a analyze.Aspect) bool {
	for _, trigger := range analyze.Triggers(a) {
		if strings.Contains(corpus, trigger) {
			return true
		}
	}
	return false
}
