package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/timeplus-io/smartmeter-pipeline/pkg/reader"
	"github.com/timeplus-io/smartmeter-pipeline/pkg/store"
)

// MaxLimit caps the number of readings one request may ask for
const MaxLimit = 1000

// APIHandler serves read-only views of the readings table
type APIHandler struct {
	reader *reader.Reader
	store  store.ReadingStore
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(s store.ReadingStore, r *reader.Reader) *APIHandler {
	return &APIHandler{
		reader: r,
		store:  s,
	}
}

// limit parses the optional ?limit= parameter
func (h *APIHandler) limit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return h.reader.Limit(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > MaxLimit {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", MaxLimit)
	}
	return n, nil
}

// GetReadings returns the most recent readings, newest first
// @Summary List recent readings
// @Param limit query int false "number of readings"
// @Success 200 {array} models.Reading
// @Router /readings [get]
func (h *APIHandler) GetReadings(c echo.Context) error {
	n, err := h.limit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	readings, err := h.reader.Recent(c.Request().Context(), n)
	if err != nil {
		logrus.Errorf("Error getting readings: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get readings"})
	}
	return c.JSON(http.StatusOK, readings)
}

// GetSummary returns the count and mean temperature of the most recent readings
// @Summary Summarise recent readings
// @Param limit query int false "number of readings"
// @Success 200 {object} models.Summary
// @Router /readings/summary [get]
func (h *APIHandler) GetSummary(c echo.Context) error {
	n, err := h.limit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	readings, err := h.reader.Recent(c.Request().Context(), n)
	if err != nil {
		logrus.Errorf("Error getting readings for summary: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to summarize readings"})
	}
	return c.JSON(http.StatusOK, reader.Summarize(readings))
}

// Health pings the store
func (h *APIHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logrus.Warnf("Health check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// SetupRoutes registers the API routes
func (h *APIHandler) SetupRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/api/readings", h.GetReadings)
	e.GET("/api/readings/summary", h.GetSummary)
}
