package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/utils"
)

// ErrRefreshInProgress is returned when a refresh is already running.
var ErrRefreshInProgress = fmt.Errorf("a refresh run is already in progress")

// runTimeout bounds a full scrape-and-enrich cycle.
const runTimeout = 30 * time.Minute

// Scraper is the subset of the scraper needed to drive a run.
type Scraper interface {
	ScrapeCategory(ctx context.Context, categoryURL string, maxProducts int) ([]models.Product, error)
}

// Enricher generates summary content for a scraped batch.
type Enricher interface {
	EnrichProducts(ctx context.Context, products []models.Product) []models.EnrichedProduct
}

// Corpus is the persistence surface the coordinator writes to.
type Corpus interface {
	Merge(batch []models.EnrichedProduct) (int, error)
	Count() int
}

// Coordinator drives refresh runs end to end. At most one run executes
// at a time; concurrent start requests are rejected.
type Coordinator struct {
	config   *config.Config
	scraper  Scraper
	enricher Enricher
	corpus   Corpus
	runs     RunStore
	logger   types.Logger

	mu      sync.Mutex
	running bool
}

func NewCoordinator(cfg *config.Config, scraper Scraper, enricher Enricher, corpus Corpus, runs RunStore) *Coordinator {
	return &Coordinator{
		config:   cfg,
		scraper:  scraper,
		enricher: enricher,
		corpus:   corpus,
		runs:     runs,
		logger:   logging.GetGlobalLogger(),
	}
}

// StartRefresh launches a background refresh run and returns its ID.
// An empty categoryURL falls back to the configured catalog page.
// Returns ErrRefreshInProgress if a run is already executing.
func (c *Coordinator) StartRefresh(ctx context.Context, maxProducts int, categoryURL string) (string, error) {
	if maxProducts <= 0 {
		maxProducts = c.config.Catalog.MaxProducts
	}
	if categoryURL == "" {
		categoryURL = c.config.Catalog.CategoryURL
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return "", ErrRefreshInProgress
	}
	c.running = true
	c.mu.Unlock()

	record := &RunRecord{
		RunID:       utils.GenerateRequestID(),
		Status:      StatusAccepted,
		MaxProducts: maxProducts,
		CategoryURL: categoryURL,
		CreatedAt:   time.Now(),
	}
	if err := c.runs.Put(ctx, record); err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	c.logger.Info("Refresh run accepted", map[string]interface{}{
		"run_id":       record.RunID,
		"max_products": maxProducts,
		"category_url": categoryURL,
	})

	go c.execute(*record)

	return record.RunID, nil
}

// Running reports whether a refresh run is currently executing.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// GetRun returns the record for a run ID.
func (c *Coordinator) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	return c.runs.Get(ctx, runID)
}

func (c *Coordinator) execute(record RunRecord) {
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	record.Status = StatusProcessing
	c.putRecord(ctx, &record)

	started := time.Now()

	products, err := c.scraper.ScrapeCategory(ctx, record.CategoryURL, record.MaxProducts)
	if err != nil {
		// A failed scrape still completes the run with whatever was
		// collected so partial batches are never lost.
		c.logger.Error("Scrape failed, continuing with empty batch", map[string]interface{}{
			"run_id": record.RunID,
			"error":  err.Error(),
		})
		products = []models.Product{}
	}

	c.logger.Info("Scrape phase complete", map[string]interface{}{
		"run_id":   record.RunID,
		"products": len(products),
		"duration": utils.FormatDuration(time.Since(started)),
	})

	enriched := c.enricher.EnrichProducts(ctx, products)

	added, err := c.corpus.Merge(enriched)
	if err != nil {
		c.finish(ctx, &record, StatusFailure, err)
		return
	}

	record.NewProducts = added
	record.TotalProducts = c.corpus.Count()
	c.finish(ctx, &record, StatusSuccess, nil)

	c.logger.Info("Refresh run complete", map[string]interface{}{
		"run_id":         record.RunID,
		"new_products":   record.NewProducts,
		"total_products": record.TotalProducts,
		"duration":       utils.FormatDuration(time.Since(started)),
	})
}

func (c *Coordinator) finish(ctx context.Context, record *RunRecord, status RunStatus, runErr error) {
	now := time.Now()
	record.Status = status
	record.CompletedAt = &now
	if runErr != nil {
		record.Error = runErr.Error()
		c.logger.Error("Refresh run failed", map[string]interface{}{
			"run_id": record.RunID,
			"error":  runErr.Error(),
		})
	}
	c.putRecord(ctx, record)
}

func (c *Coordinator) putRecord(ctx context.Context, record *RunRecord) {
	if err := c.runs.Put(ctx, record); err != nil {
		c.logger.Error("Failed to persist run record", map[string]interface{}{
			"run_id": record.RunID,
			"error":  err.Error(),
		})
	}
}
