package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orion-backend/internal/domain"
	"orion-backend/internal/service"
)

// AuditHandler holds dependencies for the admin-only /audit endpoints.
type AuditHandler struct {
	logger    *zap.Logger
	auditServ *service.AuditService
}

func NewAuditHandler(logger *zap.Logger, auditServ *service.AuditService) *AuditHandler {
	return &AuditHandler{
		logger:    logger,
		auditServ: auditServ,
	}
}

// List handles GET /audit.
func (h *AuditHandler) List(c *gin.Context) {
	filter := domain.AuditFilter{
		UserID: c.Query("user_id"),
		Action: domain.AuditAction(c.Query("action")),
		Skip:   intQuery(c, "skip", 0),
		Limit:  intQuery(c, "limit", 100),
	}

	logs, err := h.auditServ.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("list audit logs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"audit_logs": logs})
}
