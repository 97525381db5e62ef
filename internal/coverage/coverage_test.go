package coverage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"strata/internal/analyze"
)

func TestEvaluateEmptySources(t *testing.T) {
	report := Evaluate(
		[]analyze.Aspect{analyze.AspectDefinition, analyze.AspectReason},
		[]string{"raft", "consensus"},
		nil,
		DefaultWeights(),
	)
	assert.Equal(t, 0.0, report.AspectCoverage)
	assert.Equal(t, 0.0, report.KeywordCoverage)
	assert.Equal(t, 0.0, report.Coverage)
	assert.Equal(t, []analyze.Aspect{analyze.AspectDefinition, analyze.AspectReason}, report.Gaps)
}

func TestEvaluateNoAspectsIsNeutral(t *testing.T) {
	report := Evaluate(nil, []string{"raft"}, []SourceText{{Content: "raft overview"}}, DefaultWeights())
	assert.Equal(t, 0.5, report.AspectCoverage)
	assert.Equal(t, 1.0, report.KeywordCoverage)
	assert.InDelta(t, 0.6*0.5+0.4*1.0, report.Coverage, 1e-9)
	assert.Empty(t, report.Gaps)
}

func TestEvaluateAspectTriggers(t *testing.T) {
	sources := []SourceText{
		{Title: "Raft explained", Content: "Raft is a consensus algorithm. It was designed because Paxos is hard to understand."},
	}
	aspects := []analyze.Aspect{analyze.AspectDefinition, analyze.AspectReason, analyze.AspectProsCons}

	report := Evaluate(aspects, []string{"raft", "paxos"}, sources, DefaultWeights())

	// "is a" covers definition, "because" covers reason; pros_cons has
	// no trigger in the text and must surface as the gap.
	assert.InDelta(t, 2.0/3.0, report.AspectCoverage, 1e-9)
	assert.Equal(t, 1.0, report.KeywordCoverage)
	assert.Equal(t, []analyze.Aspect{analyze.AspectProsCons}, report.Gaps)
}

func TestEvaluateKeywordsCaseInsensitive(t *testing.T) {
	report := Evaluate(nil, []string{"PostgreSQL", "replication", "missing"},
		[]SourceText{{Content: "postgresql streaming REPLICATION guide"}}, DefaultWeights())
	assert.InDelta(t, 2.0/3.0, report.KeywordCoverage, 1e-9)
}

func TestEvaluateMonotonicInSources(t *testing.T) {
	aspects := []analyze.Aspect{analyze.AspectDefinition, analyze.AspectReason, analyze.AspectExamples}
	keywords := []string{"raft", "consensus", "election"}

	first := []SourceText{{Content: "Raft is a consensus algorithm."}}
	second := append(first, SourceText{Content: "Leader election happens because followers time out. For instance, a five node cluster."})

	before := Evaluate(aspects, keywords, first, DefaultWeights())
	after := Evaluate(aspects, keywords, second, DefaultWeights())

	assert.GreaterOrEqual(t, after.Coverage, before.Coverage)
	assert.Less(t, len(after.Gaps), len(before.Gaps))
}

func TestEvaluateCustomWeights(t *testing.T) {
	sources := []SourceText{{Content: "raft is a consensus algorithm"}}
	report := Evaluate([]analyze.Aspect{analyze.AspectDefinition}, []string{"missing"}, sources,
		Weights{Aspect: 1.0, Keyword: 0.0})
	assert.Equal(t, 1.0, report.Coverage)
}
