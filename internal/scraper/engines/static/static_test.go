package static

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

const categoryFixture = `<html><body>
<div class="listing">
  <a href="/en-ca/product/acme-laptop-15/123456">ACME Laptop 15 - Intel Core i5, 8GB RAM</a>
  <a href="/en-ca/product/zen-ultrabook/789">Zen Ultrabook 14 - Ryzen 7, 16GB RAM</a>
  <a href="/en-ca/product/short/1">ad</a>
  <a href="https://www.example.com/product/external-widget">External Widget Pro 2000</a>
</div>
</body></html>`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestConfiguredUserAgentOverridesProfile(t *testing.T) {
	const pinnedUA = "Mozilla/5.0 (X11; Linux x86_64) PinnedAgent/1.0"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != pinnedUA {
			t.Errorf("User-Agent = %q, want the configured override", ua)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(categoryFixture))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Scraper.UserAgent = pinnedUA

	scraper := NewStaticScraper(cfg)
	defer scraper.Cleanup()

	if _, err := scraper.ScrapeCategory(context.Background(), server.URL, 10); err != nil {
		t.Fatalf("ScrapeCategory: %v", err)
	}
}

func TestScrapeCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("request must carry a fingerprint user agent")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(categoryFixture))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Catalog.BaseURL = "https://www.bestbuy.ca"

	scraper := NewStaticScraper(cfg)
	defer scraper.Cleanup()

	products, err := scraper.ScrapeCategory(context.Background(), server.URL, 10)
	if err != nil {
		t.Fatalf("ScrapeCategory: %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("got %d products, want 3 (short link text skipped)", len(products))
	}

	first := products[0]
	if first.Title != "ACME Laptop 15 - Intel Core i5, 8GB RAM" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Price != models.PriceNotAvailable {
		t.Errorf("price = %q, want the sentinel for the static engine", first.Price)
	}
	if first.URL != "https://www.bestbuy.ca/en-ca/product/acme-laptop-15/123456" {
		t.Errorf("url = %q, want relative href resolved against the catalog origin", first.URL)
	}
	if first.ScrapedAt.IsZero() {
		t.Error("scraped_at must be stamped")
	}

	// Absolute links pass through untouched.
	if products[2].URL != "https://www.example.com/product/external-widget" {
		t.Errorf("external url = %q", products[2].URL)
	}
}

func TestScrapeCategoryRespectsMaxProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(categoryFixture))
	}))
	defer server.Close()

	scraper := NewStaticScraper(testConfig(t))
	defer scraper.Cleanup()

	products, err := scraper.ScrapeCategory(context.Background(), server.URL, 1)
	if err != nil {
		t.Fatalf("ScrapeCategory: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("got %d products, want the cap of 1", len(products))
	}
}

func TestScrapeCategoryNoLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>nothing for sale</p></body></html>`))
	}))
	defer server.Close()

	scraper := NewStaticScraper(testConfig(t))
	defer scraper.Cleanup()

	products, err := scraper.ScrapeCategory(context.Background(), server.URL, 5)
	if err != nil {
		t.Fatalf("ScrapeCategory: %v", err)
	}
	if len(products) != 0 {
		t.Errorf("got %d products, want an empty batch", len(products))
	}
}

func TestScrapeCategoryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	scraper := NewStaticScraper(testConfig(t))
	defer scraper.Cleanup()

	if _, err := scraper.ScrapeCategory(context.Background(), server.URL, 5); err == nil {
		t.Error("expected an error for a non-200 category page")
	}
}
