package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm/prompts"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/storage"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/utils"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

// LLMHealth reports whether the content generation backend is usable.
type LLMHealth interface {
	IsHealthy() bool
	GetProviderName() string
}

// ScraperHealth reports whether the scrape engine is usable.
type ScraperHealth interface {
	IsHealthy() bool
}

// UsageSource exposes how often each enrichment strategy has run.
type UsageSource interface {
	StrategyUsage() map[prompts.Strategy]int
}

func requestID(c echo.Context) string {
	if id, ok := c.Get("request_id").(string); ok && id != "" {
		return id
	}
	return utils.GenerateRequestID()
}

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	logger := logging.GetGlobalLogger()
	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID(c)})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler reports whether the pipeline dependencies can serve traffic
func ReadinessHandler(store *storage.FileStore, llm LLMHealth, scraper ScraperHealth) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		logger.Debug("Readiness check requested", map[string]interface{}{"request_id": requestID(c)})

		checks := map[string]string{
			"api": "ok",
		}
		status := "ready"
		code := http.StatusOK

		if llm != nil && llm.IsHealthy() {
			checks["llm"] = "ok"
		} else {
			// Enrichment degrades to deterministic fallback content, so
			// an unhealthy LLM does not take the service out of rotation.
			checks["llm"] = "degraded"
		}

		if scraper != nil && scraper.IsHealthy() {
			checks["scraper"] = "ok"
		} else {
			checks["scraper"] = "unavailable"
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		if store != nil {
			checks["storage"] = "ok"
		} else {
			checks["storage"] = "unavailable"
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	logger := logging.GetGlobalLogger()
	logger.Debug("Liveness check requested", map[string]interface{}{"request_id": requestID(c)})

	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
	})
}

// StatusHandler provides detailed service status including corpus state
// and per-strategy enrichment counts
func StatusHandler(store *storage.FileStore, llm LLMHealth, scraper ScraperHealth, usage UsageSource) echo.HandlerFunc {
	return func(c echo.Context) error {
		logger := logging.GetGlobalLogger()
		logger.Debug("Status check requested", map[string]interface{}{"request_id": requestID(c)})

		checks := map[string]string{
			"api": "operational",
		}

		if llm != nil && llm.IsHealthy() {
			checks["llm"] = "operational"
			checks["llm_provider"] = llm.GetProviderName()
		} else {
			checks["llm"] = "degraded"
		}

		if scraper != nil && scraper.IsHealthy() {
			checks["scraper"] = "operational"
		} else {
			checks["scraper"] = "unavailable"
		}

		if store != nil {
			checks["corpus_products"] = strconv.Itoa(store.Count())
			exists, size := store.FileInfo()
			if exists {
				checks["corpus_file"] = "present"
				checks["corpus_file_bytes"] = strconv.FormatInt(size, 10)
			} else {
				checks["corpus_file"] = "absent"
			}
			if last := store.LastScraped(); last != nil {
				checks["last_scraped"] = last.Format(time.RFC3339)
			}
		}

		var strategyUsage map[string]int
		if usage != nil {
			counts := usage.StrategyUsage()
			strategyUsage = make(map[string]int, len(counts))
			for strategy, count := range counts {
				strategyUsage[string(strategy)] = count
			}
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:        "operational",
			Timestamp:     time.Now(),
			Version:       "1.0.0",
			Uptime:        time.Since(startTime),
			Checks:        checks,
			StrategyUsage: strategyUsage,
		})
	}
}
