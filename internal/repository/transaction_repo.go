package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"orion-backend/internal/domain"
)

// TransactionRepository defines the persistence contract for transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx domain.Transaction) error
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error)
	Update(ctx context.Context, tx domain.Transaction) error
	Delete(ctx context.Context, id string) error
}

// PgTransactionRepository implements TransactionRepository using pgxpool.
type PgTransactionRepository struct {
	pool *pgxpool.Pool
}

func NewPgTransactionRepository(pool *pgxpool.Pool) *PgTransactionRepository {
	return &PgTransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, description, amount, category, type, date, created_at, updated_at`

func (r *PgTransactionRepository) Create(ctx context.Context, tx domain.Transaction) error {
	const query = `
		INSERT INTO transactions (id, user_id, description, amount, category, type, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Description,
		tx.Amount,
		tx.Category,
		tx.Type,
		tx.Date,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	return err
}

func (r *PgTransactionRepository) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE id = $1`, transactionColumns)
	return scanTransaction(r.pool.QueryRow(ctx, query, id))
}

func (r *PgTransactionRepository) ListByUser(ctx context.Context, userID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE user_id = $1`, transactionColumns)
	args := []any{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}

	query += " ORDER BY date DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Skip > 0 {
		args = append(args, filter.Skip)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *PgTransactionRepository) Update(ctx context.Context, tx domain.Transaction) error {
	const query = `
		UPDATE transactions
		SET description = $2, amount = $3, category = $4, type = $5, date = $6, updated_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		tx.ID,
		tx.Description,
		tx.Amount,
		tx.Category,
		tx.Type,
		tx.Date,
		tx.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgTransactionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTransaction(row pgx.Row) (domain.Transaction, error) {
	var (
		tx   domain.Transaction
		date time.Time
	)
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Description,
		&tx.Amount,
		&tx.Category,
		&tx.Type,
		&date,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Date = date
	return tx, nil
}
