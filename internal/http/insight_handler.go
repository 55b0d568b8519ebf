package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orion-backend/internal/domain"
	"orion-backend/internal/service"
)

// InsightHandler holds dependencies for the /insights endpoints.
type InsightHandler struct {
	logger      *zap.Logger
	userServ    *service.UserService
	insightServ *service.InsightService
}

func NewInsightHandler(logger *zap.Logger, userServ *service.UserService, insightServ *service.InsightService) *InsightHandler {
	return &InsightHandler{
		logger:      logger,
		userServ:    userServ,
		insightServ: insightServ,
	}
}

// List handles GET /insights.
func (h *InsightHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	status := domain.InsightStatus(c.DefaultQuery("status", string(domain.InsightActive)))
	insights, err := h.insightServ.List(c.Request.Context(), claims.UserID, status)
	if err != nil {
		h.logger.Error("list insights failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list insights"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// Generate handles POST /insights/generate.
func (h *InsightHandler) Generate(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("load user for insights failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate insights"})
		return
	}

	insights, err := h.insightServ.Generate(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("generate insights failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate insights"})
		return
	}
	if insights == nil {
		insights = []domain.FinancialInsight{}
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

// Dismiss handles POST /insights/:id/dismiss.
func (h *InsightHandler) Dismiss(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if err := h.insightServ.Dismiss(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		if errors.Is(err, service.ErrInsightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "insight not found"})
			return
		}
		h.logger.Error("dismiss insight failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not dismiss insight"})
		return
	}
	c.Status(http.StatusNoContent)
}
