package routes

import (
	"net/http"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/api/handlers"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/api/middleware"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/pipeline"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/storage"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, store *storage.FileStore, coordinator *pipeline.Coordinator, llm handlers.LLMHealth, scraper handlers.ScraperHealth, usage handlers.UsageSource) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(store, llm, scraper))
		health.GET("/live", handlers.LivenessHandler)
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(store, llm, scraper, usage))

	// Corpus route
	e.GET("/products", handlers.ProductsHandler(cfg, store))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		v1.POST("/refresh", handlers.RefreshHandler(cfg, coordinator, store))
		v1.GET("/runs/:id", handlers.RunStatusHandler(coordinator))
		v1.POST("/save", handlers.SaveHandler(store))
		v1.POST("/clear", handlers.ClearHandler(store))
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"service":       "Catalog Enrichment Pipeline",
			"version":       "1.0.0",
			"status":        "running",
			"category":      cfg.Catalog.Category,
			"total_scraped": store.Count(),
			"endpoints": map[string]string{
				"products": "GET /products",
				"refresh":  "POST /api/v1/refresh",
				"runs":     "GET /api/v1/runs/:id",
				"save":     "POST /api/v1/save",
				"clear":    "POST /api/v1/clear",
				"health":   "GET /health",
				"status":   "GET /status",
			},
		})
	})
}
