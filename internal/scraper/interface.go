package scraper

import (
	"context"

	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// Scraper defines the interface for all catalog scraping engines
type Scraper interface {
	// ScrapeCategory collects up to maxProducts listings from the given category page
	ScrapeCategory(ctx context.Context, categoryURL string, maxProducts int) ([]models.Product, error)

	// Cleanup releases any resources used by the scraper
	Cleanup()

	// IsHealthy returns true if the scraper is healthy and ready to run
	IsHealthy() bool
}

// ScraperFactory creates scrapers based on engine type
type ScraperFactory interface {
	// CreateScraper creates a new scraper instance for the given engine
	CreateScraper(engine string) (Scraper, error)

	// GetSupportedEngines returns a list of supported engine types
	GetSupportedEngines() []string
}
