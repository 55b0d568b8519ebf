package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orion-backend/internal/domain"
	"orion-backend/internal/repository"
)

// AuditService records who did what. Recording is best-effort: a failed write
// is logged but never fails the operation being audited.
type AuditService struct {
	logger *zap.Logger
	audits repository.AuditRepository
}

func NewAuditService(logger *zap.Logger, audits repository.AuditRepository) *AuditService {
	return &AuditService{
		logger: logger,
		audits: audits,
	}
}

type AuditEvent struct {
	UserID       string
	Action       domain.AuditAction
	Status       domain.AuditStatus
	IPAddress    string
	UserAgent    string
	ResourceType string
	ResourceID   string
	Detail       string
	ErrorMessage string
}

func (s *AuditService) Record(ctx context.Context, event AuditEvent) {
	if s == nil || s.audits == nil {
		return
	}
	if event.Status == "" {
		event.Status = domain.AuditSuccess
	}
	entry := domain.AuditLog{
		ID:           uuid.NewString(),
		UserID:       event.UserID,
		Action:       event.Action,
		Status:       event.Status,
		IPAddress:    event.IPAddress,
		UserAgent:    event.UserAgent,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		Detail:       event.Detail,
		ErrorMessage: event.ErrorMessage,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		if s.logger != nil {
			s.logger.Warn("audit write failed", zap.Error(err), zap.String("action", string(event.Action)))
		}
	}
}

func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	out, err := s.audits.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.AuditLog{}
	}
	return out, nil
}
