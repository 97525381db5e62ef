package analyze

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeIntent(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{"versus keyword", "Apple vs Samsung", IntentComparison},
		{"difference phrasing", "difference between tcp and udp", IntentComparison},
		{"howto", "how to install postgres on debian", IntentHowTo},
		{"recency", "latest go release", IntentCurrentEvents},
		{"opinion", "is the framework laptop worth it", IntentOpinion},
		{"technical", "raft consensus algorithm", IntentTechnical},
		{"comprehensive", "explain kubernetes networking", IntentComprehensive},
		{"factual default", "population of norway", IntentFactual},
		{"comparison beats howto", "how to compare two git branches", IntentComparison},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Analyze(tt.query).Intent)
		})
	}
}

func TestAnalyzeComplexityAndDepth(t *testing.T) {
	simple := Analyze("population of norway")
	assert.Equal(t, ComplexitySimple, simple.Complexity)
	assert.Equal(t, 1, simple.SuggestedDepth)

	medium := Analyze("raft consensus algorithm leader election process heartbeat details explained clearly")
	assert.Equal(t, ComplexityMedium, medium.Complexity)
	assert.Equal(t, 2, medium.SuggestedDepth)

	complexQ := Analyze("why does kubernetes networking behave differently with overlay networks and host networking")
	assert.Equal(t, ComplexityComplex, complexQ.Complexity)
	assert.Equal(t, 3, complexQ.SuggestedDepth)

	// Comparison forces full depth even for a short query.
	assert.Equal(t, 3, Analyze("Apple vs Samsung").SuggestedDepth)
}

func TestAnalyzeComplexityShortConnectiveStaysSimple(t *testing.T) {
	// One connective alone is not enough; medium needs two of them or
	// a longer query.
	a := Analyze("tea with milk")
	assert.Equal(t, ComplexitySimple, a.Complexity)
	assert.Equal(t, 1, a.SuggestedDepth)
}

func TestAnalyzeQuestionMarkersMatchWholeWords(t *testing.T) {
	// "show" must not read as a "how" question.
	a := Analyze("show me the best pizza places open downtown tonight now")
	assert.Equal(t, ComplexityMedium, a.Complexity)

	a = Analyze("what is raft consensus used for in distributed systems engineering")
	assert.Equal(t, ComplexityComplex, a.Complexity)
}

func TestAnalyzeAspects(t *testing.T) {
	comparison := Analyze("Apple vs Samsung")
	assert.Subset(t, comparison.Aspects, []Aspect{AspectSimilarities, AspectDifferences, AspectProsCons})

	howto := Analyze("how to install postgres")
	assert.Contains(t, howto.Aspects, AspectSteps)
	assert.Contains(t, howto.Aspects, AspectMethod)

	// An unmatched query still carries at least one aspect.
	fallback := Analyze("zzqx")
	require.NotEmpty(t, fallback.Aspects)
	assert.Equal(t, AspectDefinition, fallback.Aspects[0])
}

func TestAnalyzeDeterministic(t *testing.T) {
	q := "why and how to implement the latest raft algorithm, with examples"
	first := Analyze(q)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Analyze(q)); diff != "" {
			t.Fatalf("analysis changed between runs (-first +again):\n%s", diff)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	kw := ExtractKeywords("How to install PostgreSQL on a Debian server?")
	assert.Equal(t, []string{"install", "postgresql", "debian", "server"}, kw)

	// Order and duplicates survive.
	kw = ExtractKeywords("docker docker compose")
	assert.Equal(t, []string{"docker", "docker", "compose"}, kw)

	assert.Empty(t, ExtractKeywords("is it ok"))

	// The length filter counts characters, not bytes: a two-rune CJK
	// token is dropped even though it is six bytes long.
	kw = ExtractKeywords("東京 ラーメン おすすめ")
	assert.Equal(t, []string{"ラーメン", "おすすめ"}, kw)
}

func TestTriggers(t *testing.T) {
	assert.Contains(t, Triggers(AspectProsCons), "advantage")
	assert.Equal(t, []string{"made_up"}, Triggers(Aspect("made_up")))
}

func TestParseModelAnalysis(t *testing.T) {
	raw := "```json\n{\"intent\":\"comparison\",\"complexity\":\"medium\",\"suggested_depth\":2,\"aspects\":[\"differences\"],\"keywords\":[\"apple\",\"samsung\"]}\n```"
	got, err := parseModelAnalysis(raw, "apple vs samsung")
	require.NoError(t, err)
	assert.Equal(t, IntentComparison, got.Intent)
	assert.Equal(t, 2, got.SuggestedDepth)
	assert.Equal(t, "apple vs samsung", got.Query)

	_, err = parseModelAnalysis("not json at all", "q")
	assert.Error(t, err)

	_, err = parseModelAnalysis(`{"intent":"nonsense","complexity":"medium"}`, "q")
	assert.Error(t, err)

	// Missing fields backfill from the heuristics.
	got, err = parseModelAnalysis(`{"intent":"howto","complexity":"simple"}`, "how to install postgres")
	require.NoError(t, err)
	assert.NotEmpty(t, got.Keywords)
	assert.NotEmpty(t, got.Aspects)
	assert.Equal(t, 2, got.SuggestedDepth)
}
