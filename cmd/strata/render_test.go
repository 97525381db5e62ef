package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/analyze"
	"strata/internal/engine"
	"strata/internal/websearch"
)

func sampleResult() *engine.SessionResult {
	src := engine.Source{
		Document: websearch.Document{
			Title:    "Raft Explained",
			URL:      "https://example.org/raft",
			Markdown: "# Raft\n\nA consensus algorithm.",
		},
		Layer: 1,
	}
	return &engine.SessionResult{
		ID:    "test-session",
		Query: "raft consensus",
		Analysis: analyze.Analysis{
			Intent:         analyze.IntentTechnical,
			Complexity:     analyze.ComplexitySimple,
			SuggestedDepth: 1,
		},
		Layers: []engine.LayerResult{{
			Layer:      1,
			Queries:    "raft consensus",
			NewSources: []engine.Source{src},
			Coverage:   0.8,
			Gaps:       []analyze.Aspect{analyze.AspectExamples},
		}},
		Sources:     []engine.Source{src},
		SearchCalls: 1,
		Coverage:    0.8,
	}
}

func TestRenderSession(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderSession(&sb, sampleResult(), false))

	out := sb.String()
	assert.Contains(t, out, "raft consensus")
	assert.Contains(t, out, "Layer 1")
	assert.Contains(t, out, "https://example.org/raft")
	assert.Contains(t, out, "missing: examples")
	assert.Contains(t, out, "80%")
	assert.Contains(t, out, "1 sources")
}

func TestRenderSessionWithContent(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, renderSession(&sb, sampleResult(), true))
	assert.Contains(t, sb.String(), "Raft")
}
