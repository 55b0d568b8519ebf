package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orion-backend/internal/service"
)

// AnalyticsHandler holds dependencies for the /analytics endpoints.
type AnalyticsHandler struct {
	logger        *zap.Logger
	analyticsServ *service.AnalyticsService
}

func NewAnalyticsHandler(logger *zap.Logger, analyticsServ *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		logger:        logger,
		analyticsServ: analyticsServ,
	}
}

// Overview handles GET /analytics/overview.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	overview, err := h.analyticsServ.Overview(c.Request.Context(), claims.UserID, from, to)
	if err != nil {
		h.logger.Error("analytics overview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute overview"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Trends handles GET /analytics/trends.
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	bucket := c.DefaultQuery("bucket", "day")
	trend, err := h.analyticsServ.Trends(c.Request.Context(), claims.UserID, bucket, from, to)
	if err != nil {
		h.logger.Error("analytics trends failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute trends"})
		return
	}
	c.JSON(http.StatusOK, trend)
}

// Forecast handles GET /analytics/forecast.
func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	months := intQuery(c, "months", 6)
	forecast, err := h.analyticsServ.Forecast(c.Request.Context(), claims.UserID, months)
	if err != nil {
		h.logger.Error("analytics forecast failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute forecast"})
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	var from, to time.Time
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
