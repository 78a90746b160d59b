package llm

import (
	"context"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm/prompts"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging/types"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper/antibot"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
)

// generator is the slice of Manager the enricher needs. Tests stub it.
type generator interface {
	GenerateContent(ctx context.Context, tmpl prompts.Template, product models.Product) (string, error)
}

// Enricher runs the sequential enrichment loop over a scraped batch.
// Every listing comes out enriched; failed generation calls degrade to the
// deterministic fallback instead of dropping the record.
type Enricher struct {
	generator generator
	scheduler *antibot.DelayScheduler
	usage     *prompts.UsageCounter
	logger    types.Logger

	// sleep is swappable so tests run instantly.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEnricher creates an enricher backed by the given manager.
func NewEnricher(manager *Manager) *Enricher {
	return newEnricher(manager)
}

func newEnricher(gen generator) *Enricher {
	return &Enricher{
		generator: gen,
		scheduler: antibot.NewDelayScheduler(nil),
		usage:     prompts.NewUsageCounter(),
		logger:    logging.GetGlobalLogger(),
		sleep:     sleepCtx,
	}
}

// EnrichProducts enriches each listing in order. It never fails the batch.
func (e *Enricher) EnrichProducts(ctx context.Context, products []models.Product) []models.EnrichedProduct {
	enriched := make([]models.EnrichedProduct, 0, len(products))

	for i, product := range products {
		e.logger.Info("Enriching product", map[string]interface{}{
			"index": i + 1,
			"total": len(products),
			"title": product.Title,
		})

		strategy := prompts.SelectStrategy(product.Title, product.Price, i)
		tmpl := prompts.Get(strategy)

		var summary string
		var highlights []string

		raw, err := e.generator.GenerateContent(ctx, tmpl, product)
		if err != nil {
			e.logger.Warn("Generation call failed, using fallback content", map[string]interface{}{
				"title": product.Title,
				"error": err.Error(),
			})
			summary, highlights = FallbackContent(product)
			strategy = prompts.StrategyFallback
		} else {
			summary, highlights = ParseGeneratedContent(raw)
		}

		e.usage.Record(strategy)

		enriched = append(enriched, models.EnrichedProduct{
			Product:      product,
			Summary:      summary,
			Highlights:   highlights,
			StrategyUsed: string(strategy),
		})

		if i < len(products)-1 {
			if err := e.sleep(ctx, e.scheduler.NextDelay(i, len(products))); err != nil {
				e.logger.Warn("Enrichment loop interrupted", map[string]interface{}{
					"processed": len(enriched),
					"total":     len(products),
				})
				break
			}
		}
	}

	return enriched
}

// StrategyUsage returns how often each strategy ran.
func (e *Enricher) StrategyUsage() map[prompts.Strategy]int {
	return e.usage.Snapshot()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
