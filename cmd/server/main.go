package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/api/routes"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/llm"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/pipeline"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/scraper"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger := logging.GetGlobalLogger()
	logger.Info("Starting catalog enrichment pipeline", map[string]interface{}{
		"category": cfg.Catalog.Category,
		"engine":   cfg.Scraper.Engine,
	})

	// Initialize LLM manager
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Error("Failed to start LLM manager", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Load the product corpus from disk
	store := storage.NewFileStore(cfg.Storage.FilePath)
	if err := store.Load(); err != nil {
		logger.Error("Failed to load product corpus", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	logger.Info("Product corpus loaded", map[string]interface{}{
		"products": store.Count(),
		"path":     store.FilePath(),
	})

	// Create the scraper engine
	factory := scraper.NewScraperFactory(cfg)
	engine, err := factory.CreateScraper(cfg.Scraper.Engine)
	if err != nil {
		logger.Error("Failed to create scraper", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer engine.Cleanup()

	// Run record store: Redis when configured, in-memory otherwise
	var runStore pipeline.RunStore
	if cfg.Redis.URL != "" {
		redisStore, err := pipeline.NewRedisRunStore(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, falling back to in-memory run store", map[string]interface{}{
				"error": err.Error(),
			})
			runStore = pipeline.NewMemoryRunStore()
		} else {
			runStore = redisStore
		}
	} else {
		runStore = pipeline.NewMemoryRunStore()
	}
	defer runStore.Close()

	enricher := llm.NewEnricher(llmManager)
	coordinator := pipeline.NewCoordinator(cfg, engine, enricher, store, runStore)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, cfg, store, coordinator, llmManager, engine, enricher)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Saving product corpus...")
		if err := store.Save(); err != nil {
			logger.Error("Error saving corpus", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping scraper...")
		engine.Cleanup()

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Error("Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
