package handlers

import (
	"net/http"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/storage"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"

	"github.com/labstack/echo/v4"
)

// ProductsHandler serves the accumulated product corpus
func ProductsHandler(cfg *config.Config, store *storage.FileStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		products := store.Snapshot()
		if len(products) == 0 {
			logger.Debug("Products requested but corpus is empty", map[string]interface{}{
				"request_id": reqID,
			})
			return c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:     "no_products",
				Message:   "No products scraped yet. Trigger a refresh first.",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		logger.Debug("Serving product corpus", map[string]interface{}{
			"request_id": reqID,
			"count":      len(products),
		})

		return c.JSON(http.StatusOK, models.ProductsResponse{
			Products:   products,
			TotalCount: len(products),
			Category:   cfg.Catalog.Category,
			ScrapedAt:  store.LastScraped(),
		})
	}
}
