package static

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/antibot"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/extract"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// Link selectors tried in order when mining a category page without a browser.
var linkSelectors = []string{
	`a[href*="/product/"]`,
	`a[data-automation*="product"]`,
	`.product-item a`,
	`h3 a`,
	`h4 a`,
}

const minLinkTextLen = 5

// StaticScraper is the degraded fallback engine. It fetches the category
// page over plain HTTP and mines product links out of the server-rendered
// markup. Prices are not resolvable without script execution.
type StaticScraper struct {
	config  *config.Config
	client  *http.Client
	sampler *antibot.Sampler
	logger  types.Logger
}

// NewStaticScraper creates a new static fallback scraper
func NewStaticScraper(cfg *config.Config) *StaticScraper {
	return &StaticScraper{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Scraper.RequestTimeout,
		},
		sampler: antibot.NewSampler(nil),
		logger:  logging.GetGlobalLogger(),
	}
}

// ScrapeCategory fetches the category page and extracts product links
func (ss *StaticScraper) ScrapeCategory(ctx context.Context, categoryURL string, maxProducts int) ([]models.Product, error) {
	ss.logger.Info("Starting catalog scrape with static engine", map[string]interface{}{
		"url":          categoryURL,
		"max_products": maxProducts,
		"engine":       "static",
	})

	doc, err := ss.fetchDocument(ctx, categoryURL)
	if err != nil {
		return nil, err
	}

	var links *goquery.Selection
	for _, selector := range linkSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			links = sel
			ss.logger.Debug("Found product links", map[string]interface{}{
				"count":    sel.Length(),
				"selector": selector,
			})
			break
		}
	}

	if links == nil {
		ss.logger.Warn("No product links found with any selector", map[string]interface{}{
			"url": categoryURL,
		})
		return []models.Product{}, nil
	}

	baseURL := strings.TrimRight(ss.config.Catalog.BaseURL, "/")
	products := make([]models.Product, 0, maxProducts)

	links.EachWithBreak(func(i int, link *goquery.Selection) bool {
		if len(products) >= maxProducts {
			return false
		}

		text := extract.CleanText(link.Text(), models.MaxTitleLen)
		if len(text) < minLinkTextLen {
			return true
		}

		href, _ := link.Attr("href")
		fullURL := href
		if strings.HasPrefix(href, "/") {
			fullURL = baseURL + href
		}

		product := models.Product{
			Title:       text,
			Price:       models.PriceNotAvailable,
			Description: fmt.Sprintf("Catalog listing from %s: %s", baseURL, extract.CleanText(link.Text(), 200)),
			URL:         fullURL,
			ScrapedAt:   time.Now(),
		}
		if !product.IsValid() {
			return true
		}

		products = append(products, product)
		return true
	})

	ss.logger.Info("Static scraping completed", map[string]interface{}{
		"products": len(products),
	})

	return products, nil
}

// fetchDocument performs the HTTP GET with fingerprint headers applied
func (ss *StaticScraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	profile := ss.sampler.SampleProfile()
	if ua := ss.config.Scraper.UserAgent; ua != "" {
		profile.UserAgent = ua
	}
	req.Header.Set("User-Agent", profile.UserAgent)
	for name, value := range profile.Headers {
		// Leave encoding negotiation to the transport so the body comes
		// back decompressed.
		if name == "Accept-Encoding" {
			continue
		}
		req.Header.Set(name, value)
	}

	resp, err := ss.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("category page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category page: %w", err)
	}

	return doc, nil
}

// Cleanup releases resources held by the scraper
func (ss *StaticScraper) Cleanup() {
	ss.client.CloseIdleConnections()
}

// IsHealthy returns true if the scraper is ready to run
func (ss *StaticScraper) IsHealthy() bool {
	return true
}
