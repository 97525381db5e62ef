// Package subquery turns a query, its analysis, and the sources seen
// so far into follow-up search queries for the next retrieval layer.
package subquery

import (
	"fmt"
	"strings"
	"time"

	"strata/internal/analyze"
)

// MaxSubQueries caps the fan-out of any single layer.
const MaxSubQueries = 3

// Generate proposes up to MaxSubQueries follow-up queries after
// completedLayer finished. The second layer drills into the original
// topic; the third broadens toward expert and background material.
// Queries come back deduplicated, in generation order.
func Generate(query string, a analyze.Analysis, sourceURLs []string, completedLayer int) []string {
	var candidates []string
	switch completedLayer {
	case 1:
		// Nothing to drill into without content words.
		if len(a.Keywords) == 0 {
			return nil
		}
		candidates = drillDown(query, a)
	default:
		candidates = broaden(query, sourceURLs)
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" || strings.EqualFold(c, query) || seen[strings.ToLower(c)] {
			continue
		}
		seen[strings.ToLower(c)] = true
		out = append(out, c)
		if len(out) == MaxSubQueries {
			break
		}
	}
	return out
}

// drillDown generates the second-layer queries: intent-specific
// angles first so they survive the cap, then sharper keyword variants
// of the original.
func drillDown(query string, a analyze.Analysis) []string {
	var out []string

	switch a.Intent {
	case analyze.IntentComparison:
		if left, right, ok := splitComparison(query); ok {
			out = append(out,
				left+" pros and cons",
				right+" pros and cons")
		} else {
			out = append(out, query+" pros and cons")
		}
	case analyze.IntentHowTo:
		out = append(out, query+" step by step", query+" for beginners")
	case analyze.IntentTechnical:
		out = append(out, query+" implementation", query+" best practices")
	case analyze.IntentCurrentEvents:
		out = append(out, fmt.Sprintf("%s latest news %d", query, time.Now().Year()))
	default:
		out = append(out, query+" explained clearly")
	}

	if topic := strings.Join(firstN(a.Keywords, 2), " "); topic != "" {
		out = append(out, topic+" details", topic+" concrete examples")
	}
	return out
}

// broaden generates the third-layer queries: authoritative and
// background material around the topic.
func broaden(query string, sourceURLs []string) []string {
	out := []string{
		query + " expert opinion",
		query + " recent research",
	}
	if !anyURLContains(sourceURLs, "wikipedia.org") {
		out = append(out, "site:wikipedia.org "+query)
	}
	return out
}

var comparisonSeparators = []string{" vs. ", " vs ", " versus ", " or ", "と"}

// splitComparison divides a comparison query into its two subjects.
func splitComparison(query string) (left, right string, ok bool) {
	lower := strings.ToLower(query)
	for _, sep := range comparisonSeparators {
		idx := strings.Index(lower, sep)
		if idx <= 0 {
			continue
		}
		left = strings.TrimSpace(query[:idx])
		right = strings.TrimSpace(query[idx+len(sep):])
		if left != "" && right != "" {
			return left, right, true
		}
	}
	return "", "", false
}

func firstN(ss []string, n int) []string {
	if len(ss) < n {
		return ss
	}
	return ss[:n]
}

func anyURLContains(urls []string, fragment string) bool {
	for _, u := range urls {
		if strings.Contains(u, fragment) {
			return true
		}
	}
	return false
}
