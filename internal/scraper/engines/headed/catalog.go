package headed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/antibot"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/captcha"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/extract"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// Scroll attempts for mid-run top-ups when the first card collection comes
// up short of the requested batch size.
const topUpScrollBudget = 3

// Pause between card extractions.
const cardPacing = 500 * time.Millisecond

// RodScraper implements catalog scraping using Rod browser automation
type RodScraper struct {
	config         *config.Config
	browserManager *BrowserManager
	sampler        *antibot.Sampler
	navigator      *Navigator
	policy         extract.SelectorPolicy
	logger         types.Logger
}

// NewRodScraper creates a new Rod scraper instance
func NewRodScraper(cfg *config.Config) *RodScraper {
	sampler := antibot.NewSampler(nil)

	var solver ChallengeSolver
	if cfg.Scraper.Captcha.EnableAutoSolve && cfg.Scraper.Captcha.APIKey != "" {
		solver = captcha.NewSolver(cfg)
	}

	return &RodScraper{
		config:         cfg,
		browserManager: NewBrowserManager(cfg),
		sampler:        sampler,
		navigator:      NewNavigator(cfg, sampler, solver),
		policy:         extract.DefaultSelectorPolicy(),
		logger:         logging.GetGlobalLogger(),
	}
}

// ScrapeCategory collects up to maxProducts listings from the category page
func (rs *RodScraper) ScrapeCategory(ctx context.Context, categoryURL string, maxProducts int) ([]models.Product, error) {
	startTime := time.Now()

	rs.logger.Info("Starting catalog scrape with Rod engine", map[string]interface{}{
		"url":          categoryURL,
		"max_products": maxProducts,
		"engine":       "headed",
	})

	profile := rs.sampler.SampleProfile()
	if ua := rs.config.Scraper.UserAgent; ua != "" {
		profile.UserAgent = ua
	}

	browser, err := rs.browserManager.GetBrowser(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to get browser instance: %w", err)
	}
	defer browser.Release()

	if err := rs.navigator.LoadCatalog(ctx, browser, categoryURL, rs.policy.Cards); err != nil {
		return nil, err
	}

	pace := rs.humanPace(browser)

	if _, err := loadMoreContent(ctx, browser, rs.policy.LoadMore, rs.config.Scraper.ScrollBudget, rs.sampler.SettleDelay, pace); err != nil {
		return nil, err
	}

	cards, selector, err := rs.collectCards(browser)
	if err != nil {
		return nil, err
	}

	if cards.Length() < maxProducts {
		rs.logger.Info("Attempting to load more products", map[string]interface{}{
			"found":     cards.Length(),
			"requested": maxProducts,
		})

		scrolled, err := loadMoreContent(ctx, browser, rs.policy.LoadMore, topUpScrollBudget, rs.sampler.SettleDelay, pace)
		if err != nil {
			return nil, err
		}
		if scrolled {
			more, moreSelector, err := rs.collectCards(browser)
			if err == nil && more.Length() > cards.Length() {
				cards, selector = more, moreSelector
			}
		}
	}

	if cards.Length() == 0 {
		rs.logger.Warn("No product cards found with any selector", map[string]interface{}{
			"url": categoryURL,
		})
		return []models.Product{}, nil
	}

	rs.logger.Info("Extracting product cards", map[string]interface{}{
		"found":    cards.Length(),
		"selector": selector,
	})

	extractor := extract.NewCardExtractor(rs.policy, rs.config.Catalog.BaseURL)
	products := make([]models.Product, 0, maxProducts)

	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(products) >= maxProducts {
			return false
		}

		product, ok := extractor.ExtractCard(card)
		if !ok {
			rs.logger.Debug("Skipping card with insufficient data", map[string]interface{}{
				"index": i,
			})
			return true
		}

		product.URL = extract.ResolveRedirectURL(product.URL)

		specs := rs.fetchDetailSpecs(ctx, browser, product.URL)
		if specs != "" {
			product.Description = specs
		} else {
			product.Description = extract.PlaceholderDescription(rs.config.Catalog.Category, product.Title)
		}

		products = append(products, product)
		rs.logger.Debug("Extracted product", map[string]interface{}{
			"index": len(products),
			"title": product.Title,
		})

		if err := sleepCtx(ctx, cardPacing); err != nil {
			return false
		}
		return true
	})

	if err := ctx.Err(); err != nil {
		return products, err
	}

	rs.logger.Info("Catalog scraping completed", map[string]interface{}{
		"products":        len(products),
		"processing_time": time.Since(startTime).String(),
	})

	return products, nil
}

// humanPace returns the between-scroll interaction hook for a session.
func (rs *RodScraper) humanPace(browser *BrowserInstance) paceFunc {
	return func() {
		if err := browser.SimulateHumanBehavior(rs.sampler); err != nil {
			rs.logger.Debug("Human behavior simulation failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
}

// collectCards snapshots the page HTML and finds product cards using the
// first selector candidate that matches anything.
func (rs *RodScraper) collectCards(browser *BrowserInstance) (*goquery.Selection, string, error) {
	html, err := browser.GetPageHTML()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read catalog page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse catalog page: %w", err)
	}

	for _, selector := range rs.policy.Cards {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel, selector, nil
		}
	}

	return doc.Find(rs.policy.Cards[0]), rs.policy.Cards[0], nil
}

// fetchDetailSpecs opens the product page in a new tab and pulls its
// specification block. Failures degrade to an empty string.
func (rs *RodScraper) fetchDetailSpecs(ctx context.Context, browser *BrowserInstance, productURL string) string {
	if productURL == "" {
		return ""
	}

	page, err := browser.OpenDetailPage(ctx, productURL, rs.config.Scraper.RequestTimeout)
	if err != nil {
		rs.logger.Debug("Detail page navigation failed", map[string]interface{}{
			"url":   productURL,
			"error": err.Error(),
		})
		return ""
	}
	defer func() {
		_ = page.Close()
	}()

	if err := sleepCtx(ctx, 2*time.Second); err != nil {
		return ""
	}

	html, err := page.HTML()
	if err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	return extract.ExtractDetailSpecs(doc, rs.policy.DetailSpec)
}

// Cleanup releases browser resources
func (rs *RodScraper) Cleanup() {
	rs.browserManager.Cleanup()
}

// IsHealthy returns true if the scraper is ready to run
func (rs *RodScraper) IsHealthy() bool {
	return rs.browserManager.IsHealthy()
}
