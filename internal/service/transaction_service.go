package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"orion-backend/internal/domain"
	"orion-backend/internal/repository"
)

// TransactionService coordinates business rules for transactions. Every
// operation is scoped to the owning user; a foreign transaction is reported
// as not found, never as forbidden.
type TransactionService struct {
	logger       *zap.Logger
	transactions repository.TransactionRepository
}

func NewTransactionService(logger *zap.Logger, transactions repository.TransactionRepository) *TransactionService {
	return &TransactionService{
		logger:       logger,
		transactions: transactions,
	}
}

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

type TransactionInput struct {
	Description string
	Amount      float64
	Category    string
	Type        domain.TransactionType
	Date        time.Time
}

// TransactionUpdate carries a partial update; nil fields keep current values.
type TransactionUpdate struct {
	Description *string
	Amount      *float64
	Category    *string
	Type        *domain.TransactionType
	Date        *time.Time
}

func (s *TransactionService) Create(ctx context.Context, userID string, input TransactionInput) (domain.Transaction, error) {
	if err := validateInput(input); err != nil {
		return domain.Transaction{}, err
	}

	now := time.Now().UTC()
	tx := domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Category:    strings.TrimSpace(input.Category),
		Type:        input.Type,
		Date:        input.Date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, ErrTransactionNotFound
		}
		return domain.Transaction{}, err
	}
	if tx.UserID != userID {
		return domain.Transaction{}, ErrTransactionNotFound
	}
	return tx, nil
}

func (s *TransactionService) List(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if filter.Type != "" && !domain.ValidTransactionType(filter.Type) {
		return nil, ErrInvalidType
	}
	return s.transactions.ListByUser(ctx, userID, filter)
}

func (s *TransactionService) Update(ctx context.Context, userID, id string, update TransactionUpdate) (domain.Transaction, error) {
	tx, err := s.Get(ctx, userID, id)
	if err != nil {
		return domain.Transaction{}, err
	}

	if update.Description != nil {
		tx.Description = strings.TrimSpace(*update.Description)
	}
	if update.Amount != nil {
		tx.Amount = *update.Amount
	}
	if update.Category != nil {
		tx.Category = strings.TrimSpace(*update.Category)
	}
	if update.Type != nil {
		tx.Type = *update.Type
	}
	if update.Date != nil {
		tx.Date = *update.Date
	}

	if err := validateInput(TransactionInput{
		Description: tx.Description,
		Amount:      tx.Amount,
		Category:    tx.Category,
		Type:        tx.Type,
		Date:        tx.Date,
	}); err != nil {
		return domain.Transaction{}, err
	}

	tx.UpdatedAt = time.Now().UTC()
	if err := s.transactions.Update(ctx, tx); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Transaction{}, ErrTransactionNotFound
		}
		return domain.Transaction{}, err
	}
	return tx, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTransactionNotFound
		}
		return err
	}
	return nil
}

func validateInput(input TransactionInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return ErrInvalidTransaction
	}
	if input.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !domain.ValidTransactionType(input.Type) {
		return ErrInvalidType
	}
	if strings.TrimSpace(input.Category) == "" {
		return ErrInvalidTransaction
	}
	if input.Date.IsZero() {
		return ErrInvalidTransaction
	}
	return nil
}
