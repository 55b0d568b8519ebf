package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"orion-backend/internal/domain"
)

// InsightRepository defines the persistence contract for financial insights.
type InsightRepository interface {
	Create(ctx context.Context, insight domain.FinancialInsight) error
	GetByID(ctx context.Context, id string) (domain.FinancialInsight, error)
	ListByUser(ctx context.Context, userID string, status domain.InsightStatus) ([]domain.FinancialInsight, error)
	UpdateStatus(ctx context.Context, id string, status domain.InsightStatus) error
	DeleteActiveByUser(ctx context.Context, userID string) error
}

// PgInsightRepository implements InsightRepository using pgxpool.
type PgInsightRepository struct {
	pool *pgxpool.Pool
}

func NewPgInsightRepository(pool *pgxpool.Pool) *PgInsightRepository {
	return &PgInsightRepository{pool: pool}
}

func (r *PgInsightRepository) Create(ctx context.Context, insight domain.FinancialInsight) error {
	const query = `
		INSERT INTO financial_insights (id, user_id, type, title, description, severity, status, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		insight.ID,
		insight.UserID,
		insight.Type,
		insight.Title,
		insight.Description,
		insight.Severity,
		insight.Status,
		insight.Confidence,
		insight.CreatedAt,
	)
	return err
}

func (r *PgInsightRepository) GetByID(ctx context.Context, id string) (domain.FinancialInsight, error) {
	const query = `
		SELECT id, user_id, type, title, description, severity, status, confidence, created_at
		FROM financial_insights
		WHERE id = $1
	`
	var in domain.FinancialInsight
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&in.ID,
		&in.UserID,
		&in.Type,
		&in.Title,
		&in.Description,
		&in.Severity,
		&in.Status,
		&in.Confidence,
		&in.CreatedAt,
	)
	return in, err
}

func (r *PgInsightRepository) ListByUser(ctx context.Context, userID string, status domain.InsightStatus) ([]domain.FinancialInsight, error) {
	query := `
		SELECT id, user_id, type, title, description, severity, status, confidence, created_at
		FROM financial_insights
		WHERE user_id = $1
	`
	args := []any{userID}
	if status != "" {
		args = append(args, status)
		query += " AND status = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FinancialInsight
	for rows.Next() {
		var in domain.FinancialInsight
		if err := rows.Scan(
			&in.ID,
			&in.UserID,
			&in.Type,
			&in.Title,
			&in.Description,
			&in.Severity,
			&in.Status,
			&in.Confidence,
			&in.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *PgInsightRepository) UpdateStatus(ctx context.Context, id string, status domain.InsightStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE financial_insights SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgInsightRepository) DeleteActiveByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM financial_insights WHERE user_id = $1 AND status = 'active'`, userID)
	return err
}
