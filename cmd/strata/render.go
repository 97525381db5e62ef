package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"strata/internal/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("87"))

	layerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	coverageGood = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	coverageLow = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderSession prints a session result for a human terminal.
func renderSession(w io.Writer, result *engine.SessionResult, withContent bool) error {
	fmt.Fprintln(w, titleStyle.Render(result.Query))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("intent=%s complexity=%s depth=%d",
		result.Analysis.Intent, result.Analysis.Complexity, result.Analysis.SuggestedDepth)))
	fmt.Fprintln(w)

	for _, layer := range result.Layers {
		fmt.Fprintln(w, layerStyle.Render(fmt.Sprintf("Layer %d", layer.Layer)),
			dimStyle.Render(layer.Queries))
		fmt.Fprintf(w, "  coverage %s", renderCoverage(layer.Coverage))
		if len(layer.Gaps) > 0 {
			gaps := make([]string, 0, len(layer.Gaps))
			for _, g := range layer.Gaps {
				gaps = append(gaps, string(g))
			}
			fmt.Fprintf(w, "  missing: %s", strings.Join(gaps, ", "))
		}
		fmt.Fprintln(w)
		for _, src := range layer.NewSources {
			fmt.Fprintf(w, "  - %s\n    %s\n", src.Title, urlStyle.Render(src.URL))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%d sources, %d news, %d images from %d search calls\n",
		len(result.Sources), len(result.News), len(result.Images), result.SearchCalls)
	fmt.Fprintln(w, "final coverage", renderCoverage(result.Coverage))

	if withContent {
		return renderContent(w, result)
	}
	return nil
}

func renderCoverage(score float64) string {
	text := fmt.Sprintf("%.0f%%", score*100)
	if score >= 0.75 {
		return coverageGood.Render(text)
	}
	return coverageLow.Render(text)
}

// renderContent prints each scraped source's markdown through glamour.
func renderContent(w io.Writer, result *engine.SessionResult) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("creating markdown renderer: %w", err)
	}

	for _, src := range result.Sources {
		if src.Markdown == "" {
			continue
		}
		fmt.Fprintln(w, titleStyle.Render(src.Title), urlStyle.Render(src.URL))
		out, err := renderer.Render(src.Markdown)
		if err != nil {
			// Fall back to the raw markdown rather than dropping the source.
			out = src.Markdown + "\n"
		}
		fmt.Fprintln(w, out)
	}
	return nil
}
