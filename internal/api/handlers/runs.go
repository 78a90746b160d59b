package handlers

import (
	"net/http"
	"time"

	"github.com/lkl2050/ecommerce-llm-pipeline/internal/pipeline"
	"github.com/lkl2050/ecommerce-llm-pipeline/pkg/models"

	"github.com/labstack/echo/v4"
)

// RunStatusHandler returns the state of a refresh run
func RunStatusHandler(coordinator *pipeline.Coordinator) echo.HandlerFunc {
	return func(c echo.Context) error {
		reqID := requestID(c)
		runID := c.Param("id")

		if runID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "missing_run_id",
				Message:   "A run ID is required",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		record, err := coordinator.GetRun(c.Request().Context(), runID)
		if err != nil {
			if err == pipeline.ErrRunNotFound {
				return c.JSON(http.StatusNotFound, models.ErrorResponse{
					Error:     "run_not_found",
					Message:   "No run exists with that ID",
					RequestID: reqID,
					Timestamp: time.Now(),
				})
			}
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "run_lookup_failed",
				Message:   "Failed to look up the run",
				RequestID: reqID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, record)
	}
}
