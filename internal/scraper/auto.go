package scraper

import (
	"context"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// autoScraper runs the browser engine and degrades to the static engine
// when a browser session cannot be established or the run fails outright.
type autoScraper struct {
	primary  Scraper
	fallback Scraper
	logger   types.Logger
}

func newAutoScraper(primary, fallback Scraper) *autoScraper {
	return &autoScraper{
		primary:  primary,
		fallback: fallback,
		logger:   logging.GetGlobalLogger(),
	}
}

func (a *autoScraper) ScrapeCategory(ctx context.Context, categoryURL string, maxProducts int) ([]models.Product, error) {
	products, err := a.primary.ScrapeCategory(ctx, categoryURL, maxProducts)
	if err == nil {
		return products, nil
	}
	if ctx.Err() != nil {
		return products, err
	}

	a.logger.Warn("Browser engine failed, retrying with static engine", map[string]interface{}{
		"url":   categoryURL,
		"error": err.Error(),
	})

	return a.fallback.ScrapeCategory(ctx, categoryURL, maxProducts)
}

func (a *autoScraper) Cleanup() {
	a.primary.Cleanup()
	a.fallback.Cleanup()
}

func (a *autoScraper) IsHealthy() bool {
	return a.primary.IsHealthy() || a.fallback.IsHealthy()
}
