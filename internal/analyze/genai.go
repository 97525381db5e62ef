package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIAnalyzer classifies queries with a Gemini model instead of the
// keyword heuristics. Any failure, from transport to malformed JSON,
// falls back to Analyze so callers always get a usable Analysis.
type GenAIAnalyzer struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGenAIAnalyzer connects to the Gemini API with the given key.
func NewGenAIAnalyzer(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GenAIAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GenAIAnalyzer{client: client, model: model, log: logger.Named("analyze")}, nil
}

const analysisPrompt = `Classify this search query. Respond with only a JSON object:
{
  "intent": one of "comparison","howto","current_events","opinion","technical","comprehensive","factual",
  "complexity": one of "simple","medium","complex",
  "suggested_depth": 1-3,
  "aspects": subset of ["definition","reason","method","timing","location","person","similarities","differences","pros_cons","examples","latest","steps","opinions","implementation"],
  "keywords": important search terms from the query
}

Query: %s`

// Analyze asks the model for a classification.
func (a *GenAIAnalyzer) Analyze(ctx context.Context, query string) Analysis {
	resp, err := a.client.Models.GenerateContent(ctx, a.model,
		genai.Text(fmt.Sprintf(analysisPrompt, query)), nil)
	if err != nil {
		a.log.Warn("model analysis failed, using heuristics", zap.Error(err))
		return Analyze(query)
	}

	parsed, err := parseModelAnalysis(resp.Text(), query)
	if err != nil {
		a.log.Warn("model analysis unparseable, using heuristics", zap.Error(err))
		return Analyze(query)
	}
	return parsed
}

func parseModelAnalysis(text, query string) (Analysis, error) {
	text = strings.TrimSpace(text)
	// Models wrap JSON in fences more often than not.
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out Analysis
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Analysis{}, err
	}
	if !validIntent(out.Intent) || !validComplexity(out.Complexity) {
		return Analysis{}, fmt.Errorf("model returned unknown classification %q/%q", out.Intent, out.Complexity)
	}
	if out.SuggestedDepth < 1 || out.SuggestedDepth > 3 {
		out.SuggestedDepth = suggestDepth(out.Intent, out.Complexity)
	}
	if len(out.Keywords) == 0 {
		out.Keywords = ExtractKeywords(query)
	}
	if len(out.Aspects) == 0 {
		out.Aspects = detectAspects(strings.ToLower(query), out.Intent)
	}
	out.Query = query
	return out, nil
}

func validIntent(i Intent) bool {
	switch i {
	case IntentComparison, IntentHowTo, IntentCurrentEvents, IntentOpinion,
		IntentTechnical, IntentComprehensive, IntentFactual:
		return true
	}
	return false
}

func validComplexity(c Complexity) bool {
	switch c {
	case ComplexitySimple, ComplexityMedium, ComplexityComplex:
		return true
	}
	return false
}
