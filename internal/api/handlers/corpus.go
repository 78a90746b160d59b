package handlers

import (
	"net/http"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/logging"
	"github.com/lkl2050/ecommerce-llm-pipeline/internal/storage"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"

	"github.com/labstack/echo/v4"
)

// SaveHandler force-persists the in-memory corpus to disk
func SaveHandler(store *storage.FileStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		if err := store.Save(); err != nil {
			logger.Error("Failed to save corpus", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "save_failed",
				Message:   "Failed to persist the corpus",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Corpus saved", map[string]interface{}{
			"request_id": reqID,
			"count":      store.Count(),
			"path":       store.FilePath(),
		})

		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":     "Corpus saved",
			"total_count": store.Count(),
			"file_path":   store.FilePath(),
		})
	}
}

// ClearHandler drops the corpus and deletes the backing file
func ClearHandler(store *storage.FileStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		logger := logging.GetGlobalLogger()

		cleared, err := store.Clear()
		if err != nil {
			logger.Error("Failed to clear corpus", map[string]interface{}{
				"request_id": reqID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "clear_failed",
				Message:   "Failed to clear the corpus",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Corpus cleared", map[string]interface{}{
			"request_id": reqID,
			"cleared":    cleared,
		})

		return c.JSON(http.StatusOK, map[string]interface{}{
			"message":       "Corpus cleared",
			"cleared_count": cleared,
		})
	}
}
