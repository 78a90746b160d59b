package llm

import (
	"regexp"
	"strings"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// Generic highlight sets used when the model response degrades past repair.
var (
	untaggedHighlights = []string{"Great performance", "Excellent value", "Top quality", "Highly rated"}
	sentenceFallbacks  = []string{"High-quality product", "Great value", "Reliable performance", "Customer favorite"}
	finalHighlights    = []string{"Premium quality", "Great value", "Reliable performance", "Highly recommended"}

	finalSummary = "Excellent product with outstanding features and reliable performance."
)

var bulletRe = regexp.MustCompile(`[•\-\*]\s*([^•\-\*\n]+)`)

// ParseGeneratedContent extracts the summary and highlights out of a model
// response. It expects tagged SUMMARY:/HIGHLIGHTS: lines but degrades through
// sentence and bullet heuristics, and always returns non-empty content.
func ParseGeneratedContent(content string) (string, []string) {
	content = strings.TrimSpace(content)

	var summary string
	var highlights []string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "SUMMARY:") {
			summary = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
		} else if strings.HasPrefix(line, "HIGHLIGHTS:") {
			text := strings.TrimSpace(strings.TrimPrefix(line, "HIGHLIGHTS:"))
			if strings.Contains(text, "|") {
				highlights = splitHighlights(text)
			} else {
				// Tagged line without the pipe structure.
				highlights = append([]string(nil), untaggedHighlights...)
			}
		}
	}

	if summary == "" && content != "" {
		summary = summaryFromProse(content)
	}

	if len(highlights) == 0 && content != "" {
		highlights = highlightsFromProse(content)
	}

	if summary == "" {
		summary = finalSummary
	}
	if len(highlights) == 0 {
		highlights = append([]string(nil), finalHighlights...)
	}

	if len(highlights) > models.MaxHighlights {
		highlights = highlights[:models.MaxHighlights]
	}
	return models.TruncateRunes(summary, models.MaxSummaryLen), highlights
}

func splitHighlights(text string) []string {
	parts := strings.Split(text, "|")
	highlights := make([]string, 0, models.MaxHighlights)
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		highlights = append(highlights, models.TruncateRunes(part, models.MaxHighlightLen))
		if len(highlights) == models.MaxHighlights {
			break
		}
	}
	return highlights
}

// summaryFromProse joins the first substantial sentences of an untagged
// response, or truncates the raw text when none qualify.
func summaryFromProse(content string) string {
	var sentences []string
	for _, s := range strings.Split(content, ".") {
		s = strings.TrimSpace(s)
		if len(s) > 20 {
			sentences = append(sentences, s)
		}
		if len(sentences) == 2 {
			break
		}
	}
	if len(sentences) > 0 {
		return strings.Join(sentences, ". ") + "."
	}
	if truncated := models.TruncateRunes(content, 200); truncated != content {
		return truncated + "..."
	}
	return content
}

// highlightsFromProse mines bullets, then mid-length sentences, then gives up
// and returns the generic set.
func highlightsFromProse(content string) []string {
	matches := bulletRe.FindAllStringSubmatch(content, models.MaxHighlights)
	if len(matches) > 0 {
		highlights := make([]string, 0, len(matches))
		for _, m := range matches {
			highlights = append(highlights, strings.TrimSpace(m[1]))
		}
		return highlights
	}

	var sentences []string
	for _, s := range strings.Split(content, ".") {
		s = strings.TrimSpace(s)
		if len(s) > 10 && len(s) < 100 {
			sentences = append(sentences, s)
		}
		if len(sentences) == models.MaxHighlights {
			break
		}
	}
	if len(sentences) > 0 {
		return sentences
	}

	return append([]string(nil), sentenceFallbacks...)
}
