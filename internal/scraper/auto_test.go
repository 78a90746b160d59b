package scraper

import (
	"context"
	"fmt"
	"testing"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

type fakeEngine struct {
	products  []models.Product
	err       error
	calls     int
	cleanedUp bool
	healthy   bool
}

func (f *fakeEngine) ScrapeCategory(ctx context.Context, categoryURL string, maxProducts int) ([]models.Product, error) {
	f.calls++
	return f.products, f.err
}

func (f *fakeEngine) Cleanup()        { f.cleanedUp = true }
func (f *fakeEngine) IsHealthy() bool { return f.healthy }

func TestAutoScraperUsesPrimaryWhenItSucceeds(t *testing.T) {
	primary := &fakeEngine{products: []models.Product{{Title: "Laptop", URL: "https://example.com/p/1"}}}
	fallback := &fakeEngine{}
	auto := newAutoScraper(primary, fallback)

	products, err := auto.ScrapeCategory(context.Background(), "https://example.com/cat", 5)
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	if len(products) != 1 {
		t.Errorf("products = %d, want 1", len(products))
	}
	if fallback.calls != 0 {
		t.Error("fallback must not run when the primary engine succeeds")
	}
}

func TestAutoScraperFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeEngine{err: fmt.Errorf("failed to launch browser")}
	fallback := &fakeEngine{products: []models.Product{{Title: "Laptop", URL: "https://example.com/p/1"}}}
	auto := newAutoScraper(primary, fallback)

	products, err := auto.ScrapeCategory(context.Background(), "https://example.com/cat", 5)
	if err != nil {
		t.Fatalf("scrape must succeed through the fallback, got %v", err)
	}
	if len(products) != 1 {
		t.Errorf("products = %d, want 1 from the static engine", len(products))
	}
	if primary.calls != 1 || fallback.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", primary.calls, fallback.calls)
	}
}

func TestAutoScraperSurfacesFallbackError(t *testing.T) {
	primary := &fakeEngine{err: fmt.Errorf("failed to launch browser")}
	fallback := &fakeEngine{err: fmt.Errorf("connection refused")}
	auto := newAutoScraper(primary, fallback)

	_, err := auto.ScrapeCategory(context.Background(), "https://example.com/cat", 5)
	if err == nil {
		t.Fatal("expected an error when both engines fail")
	}
}

func TestAutoScraperSkipsFallbackOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	primary := &fakeEngine{err: ctx.Err()}
	fallback := &fakeEngine{}
	auto := newAutoScraper(primary, fallback)

	if _, err := auto.ScrapeCategory(ctx, "https://example.com/cat", 5); err == nil {
		t.Fatal("expected the context error to surface")
	}
	if fallback.calls != 0 {
		t.Error("fallback must not run once the run context is cancelled")
	}
}

func TestAutoScraperCleanupAndHealth(t *testing.T) {
	primary := &fakeEngine{healthy: false}
	fallback := &fakeEngine{healthy: true}
	auto := newAutoScraper(primary, fallback)

	if !auto.IsHealthy() {
		t.Error("auto engine is healthy while either engine is")
	}

	auto.Cleanup()
	if !primary.cleanedUp || !fallback.cleanedUp {
		t.Error("cleanup must reach both engines")
	}
}

func TestFactoryAutoEngineCarriesFallback(t *testing.T) {
	factory := NewScraperFactory(&config.Config{})

	engine, err := factory.CreateScraper("auto")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := engine.(*autoScraper); !ok {
		t.Fatalf("auto engine = %T, want the degrading wrapper", engine)
	}
}
