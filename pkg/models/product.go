package models

import "time"

// Sentinel values for fields the scraper could not resolve.
const (
	UnknownTitle      = "Unknown Product"
	PriceNotAvailable = "Price not available"
)

// Field length caps applied across the pipeline.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 3000
	MaxRawPriceLen    = 50
	MaxSummaryLen     = 600
	MaxHighlightLen   = 60
	MaxHighlights     = 4
)

// Product is one catalog listing as collected by a scraping engine.
type Product struct {
	Title       string    `json:"title" validate:"required"`
	Price       string    `json:"price"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url" validate:"required,url"`
	Rating      string    `json:"rating,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// IsValid reports whether the listing carries enough data to keep. A card
// without a resolved title or a product URL is a sponsored placeholder or a
// partially rendered card.
func (p *Product) IsValid() bool {
	return p.Title != "" && p.Title != UnknownTitle && p.URL != ""
}

// EnrichedProduct is a Product after LLM enrichment.
type EnrichedProduct struct {
	Product
	Summary      string   `json:"summary"`
	Highlights   []string `json:"highlights"`
	StrategyUsed string   `json:"strategy_used"`
}

// TruncateRunes caps a string at max runes, preserving UTF-8 boundaries.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
