package handlers

import (
	"net/http"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/config"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/pipeline"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/storage"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// RefreshHandler starts a background scrape-and-enrich run
func RefreshHandler(cfg *config.Config, coordinator *pipeline.Coordinator, store *storage.FileStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		logger.Info("Refresh request received", map[string]interface{}{"request_id": reqID})

		var req models.RefreshRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind refresh request", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Refresh request validation failed", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		maxProducts := req.MaxProducts
		if maxProducts <= 0 {
			maxProducts = cfg.Catalog.MaxProducts
		}

		runID, err := coordinator.StartRefresh(c.Request().Context(), maxProducts, req.CategoryURL)
		if err != nil {
			if err == pipeline.ErrRefreshInProgress {
				return c.JSON(http.StatusConflict, models.ErrorResponse{
					Error:     "refresh_in_progress",
					Message:   "A refresh run is already in progress. Try again later.",
					RequestID: reqID,
					Timestamp: time.Now(),
				})
			}
			logger.Error("Failed to start refresh run", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "refresh_failed",
				Message:   "Failed to start the refresh run",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Refresh run started", map[string]interface{}{
			"request_id":   reqID,
			"run_id":       runID,
			"max_products": maxProducts,
		})

		return c.JSON(http.StatusAccepted, models.RefreshResponse{
			RunID:       runID,
			Status:      string(pipeline.StatusAccepted),
			MaxProducts: maxProducts,
			CorpusSize:  store.Count(),
			AcceptedAt:  time.Now(),
		})
	}
}
