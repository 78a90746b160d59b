package llm

import (
	"reflect"
	"strings"
	"testing"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

func TestFallbackContent(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		wantSummary   string
		wantHighlight string
	}{
		{"gaming template", "ASUS Gaming Laptop RTX 4060", "High-performance gaming", "Gaming-optimized performance"},
		{"business template", "Lenovo Business Ultrabook", "Professional-grade", "Business-grade reliability"},
		{"professional counts as business", "Dell Professional Series", "Professional-grade", "Business-grade reliability"},
		{"laptop template", "Acme Laptop 15", "Versatile", "Balanced performance"},
		{"computer keyword", "Tower Computer Bundle", "Versatile", "Balanced performance"},
		{"generic template", "Wireless Mouse", "Quality", "Quality construction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := models.Product{Title: tt.title, Price: "$899.99"}
			summary, highlights := FallbackContent(product)

			if !strings.HasPrefix(summary, tt.wantSummary) {
				t.Errorf("summary = %q, want prefix %q", summary, tt.wantSummary)
			}
			if !strings.Contains(summary, tt.title) {
				t.Errorf("summary %q must reference the title", summary)
			}
			if !strings.Contains(summary, "$899.99") {
				t.Errorf("summary %q must reference the price", summary)
			}
			if len(highlights) != 4 {
				t.Fatalf("got %d highlights, want 4", len(highlights))
			}
			if highlights[0] != tt.wantHighlight {
				t.Errorf("first highlight = %q, want %q", highlights[0], tt.wantHighlight)
			}
		})
	}
}

func TestFallbackContentDeterministic(t *testing.T) {
	product := models.Product{Title: "Acme Laptop 15", Price: "$899.99"}

	firstSummary, firstHighlights := FallbackContent(product)
	for i := 0; i < 5; i++ {
		summary, highlights := FallbackContent(product)
		if summary != firstSummary || !reflect.DeepEqual(highlights, firstHighlights) {
			t.Fatal("fallback content must be deterministic for the same listing")
		}
	}
}

func TestFallbackContentWordBoundaries(t *testing.T) {
	// Keyword matching is per word, not substring: "Gamingo" is not gaming.
	product := models.Product{Title: "Gamingo Brand Headset", Price: "$49.99"}
	summary, _ := FallbackContent(product)
	if strings.HasPrefix(summary, "High-performance gaming") {
		t.Errorf("summary = %q, substring matches must not trigger the gaming template", summary)
	}
}
