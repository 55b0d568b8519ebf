package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orion-backend/internal/domain"
	"orion-backend/internal/service"
)

// TransactionHandler holds dependencies for the /transactions endpoints.
type TransactionHandler struct {
	logger *zap.Logger
	txServ *service.TransactionService
	audit  *service.AuditService
}

func NewTransactionHandler(logger *zap.Logger, txServ *service.TransactionService, audit *service.AuditService) *TransactionHandler {
	return &TransactionHandler{
		logger: logger,
		txServ: txServ,
		audit:  audit,
	}
}

type transactionRequest struct {
	Description string                 `json:"description" binding:"required"`
	Amount      float64                `json:"amount" binding:"required,gt=0"`
	Category    string                 `json:"category" binding:"required"`
	Type        domain.TransactionType `json:"type" binding:"required"`
	Date        time.Time              `json:"date" binding:"required"`
}

// Create handles POST /transactions.
func (h *TransactionHandler) Create(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create transaction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tx, err := h.txServ.Create(c.Request.Context(), claims.UserID, service.TransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Type:        req.Type,
		Date:        req.Date,
	})
	if err != nil {
		if isValidationErr(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create transaction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create transaction"})
		return
	}

	h.audit.Record(c.Request.Context(), service.AuditEvent{
		UserID:       claims.UserID,
		Action:       domain.AuditCreate,
		ResourceType: "transaction",
		ResourceID:   tx.ID,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}

// List handles GET /transactions.
func (h *TransactionHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	filter := domain.TransactionFilter{
		Type:     domain.TransactionType(c.Query("type")),
		Category: c.Query("category"),
		Skip:     intQuery(c, "skip", 0),
		Limit:    intQuery(c, "limit", 100),
	}

	txs, err := h.txServ.List(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		if errors.Is(err, service.ErrInvalidType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction type"})
			return
		}
		h.logger.Error("list transactions failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list transactions"})
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// Get handles GET /transactions/:id.
func (h *TransactionHandler) Get(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	tx, err := h.txServ.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		h.logger.Error("get transaction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// Update handles PUT /transactions/:id.
func (h *TransactionHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Description *string                 `json:"description"`
		Amount      *float64                `json:"amount"`
		Category    *string                 `json:"category"`
		Type        *domain.TransactionType `json:"type"`
		Date        *time.Time              `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update transaction request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tx, err := h.txServ.Update(c.Request.Context(), claims.UserID, c.Param("id"), service.TransactionUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		Type:        req.Type,
		Date:        req.Date,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		case isValidationErr(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("update transaction failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update transaction"})
			return
		}
	}

	h.audit.Record(c.Request.Context(), service.AuditEvent{
		UserID:       claims.UserID,
		Action:       domain.AuditUpdate,
		ResourceType: "transaction",
		ResourceID:   tx.ID,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// Delete handles DELETE /transactions/:id.
func (h *TransactionHandler) Delete(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	id := c.Param("id")
	if err := h.txServ.Delete(c.Request.Context(), claims.UserID, id); err != nil {
		if errors.Is(err, service.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		h.logger.Error("delete transaction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete transaction"})
		return
	}

	h.audit.Record(c.Request.Context(), service.AuditEvent{
		UserID:       claims.UserID,
		Action:       domain.AuditDelete,
		ResourceType: "transaction",
		ResourceID:   id,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	c.Status(http.StatusNoContent)
}

func isValidationErr(err error) bool {
	return errors.Is(err, service.ErrInvalidAmount) ||
		errors.Is(err, service.ErrInvalidType) ||
		errors.Is(err, service.ErrInvalidTransaction)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
