package scraper

import (
	"fmt"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/engines/headed"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/engines/static"
)

// DefaultScraperFactory implements ScraperFactory
type DefaultScraperFactory struct {
	config *config.Config
}

// NewScraperFactory creates a new scraper factory
func NewScraperFactory(cfg *config.Config) ScraperFactory {
	return &DefaultScraperFactory{
		config: cfg,
	}
}

// CreateScraper creates a new scraper instance for the given engine
func (f *DefaultScraperFactory) CreateScraper(engine string) (Scraper, error) {
	switch engine {
	case "headed":
		return headed.NewRodScraper(f.config), nil
	case "static":
		return static.NewStaticScraper(f.config), nil
	case "auto":
		return newAutoScraper(headed.NewRodScraper(f.config), static.NewStaticScraper(f.config)), nil
	default:
		return nil, fmt.Errorf("unsupported scraping engine: %s", engine)
	}
}

// GetSupportedEngines returns a list of supported engine types
func (f *DefaultScraperFactory) GetSupportedEngines() []string {
	return []string{"headed", "static", "auto"}
}
