package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"orion-backend/internal/domain"
)

// AnalyticsRepository exposes aggregate reads over the transactions table.
type AnalyticsRepository interface {
	TotalByType(ctx context.Context, userID string, txType domain.TransactionType, from, to time.Time) (float64, error)
	SpendingByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error)
	SpendingSeries(ctx context.Context, userID string, bucket string, from, to time.Time) ([]domain.TrendPoint, error)
	MonthlyExpenseTotals(ctx context.Context, userID string, months int) ([]float64, error)
}

// PgAnalyticsRepository implements AnalyticsRepository using pgxpool.
type PgAnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewPgAnalyticsRepository(pool *pgxpool.Pool) *PgAnalyticsRepository {
	return &PgAnalyticsRepository{pool: pool}
}

func (r *PgAnalyticsRepository) TotalByType(ctx context.Context, userID string, txType domain.TransactionType, from, to time.Time) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND type = $2 AND date >= $3 AND date <= $4
	`
	var total float64
	err := r.pool.QueryRow(ctx, query, userID, txType, from, to).Scan(&total)
	return total, err
}

func (r *PgAnalyticsRepository) SpendingByCategory(ctx context.Context, userID string, from, to time.Time) ([]domain.CategoryTotal, error) {
	const query = `
		SELECT category, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND date >= $2 AND date <= $3
		GROUP BY category
		ORDER BY SUM(amount) DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// SpendingSeries buckets expenses by "day" or "month" using date_trunc.
func (r *PgAnalyticsRepository) SpendingSeries(ctx context.Context, userID string, bucket string, from, to time.Time) ([]domain.TrendPoint, error) {
	if bucket != "day" && bucket != "month" {
		bucket = "day"
	}
	const query = `
		SELECT date_trunc($4, date) AS bucket, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense' AND date >= $2 AND date <= $3
		GROUP BY bucket
		ORDER BY bucket
	`
	rows, err := r.pool.Query(ctx, query, userID, from, to, bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TrendPoint
	for rows.Next() {
		var p domain.TrendPoint
		if err := rows.Scan(&p.Date, &p.Amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MonthlyExpenseTotals returns per-month expense sums for the trailing window,
// oldest month first. Months without spend are omitted.
func (r *PgAnalyticsRepository) MonthlyExpenseTotals(ctx context.Context, userID string, months int) ([]float64, error) {
	if months <= 0 {
		months = 6
	}
	const query = `
		SELECT SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND type = 'expense'
		  AND date >= date_trunc('month', now()) - ($2 || ' months')::interval
		GROUP BY date_trunc('month', date)
		ORDER BY date_trunc('month', date)
	`
	rows, err := r.pool.Query(ctx, query, userID, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
