package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"orion-backend/internal/domain"
)

// AuditRepository defines the persistence contract for audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error)
}

// PgAuditRepository implements AuditRepository using pgxpool.
type PgAuditRepository struct {
	pool *pgxpool.Pool
}

func NewPgAuditRepository(pool *pgxpool.Pool) *PgAuditRepository {
	return &PgAuditRepository{pool: pool}
}

func (r *PgAuditRepository) Create(ctx context.Context, entry domain.AuditLog) error {
	const query = `
		INSERT INTO audit_logs (id, user_id, action, status, ip_address, user_agent, resource_type, resource_id, detail, error_message, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.Status,
		entry.IPAddress,
		entry.UserAgent,
		entry.ResourceType,
		entry.ResourceID,
		entry.Detail,
		entry.ErrorMessage,
		entry.CreatedAt,
	)
	return err
}

func (r *PgAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditLog, error) {
	query := `
		SELECT id, COALESCE(user_id::text, ''), action, status,
		       COALESCE(ip_address, ''), COALESCE(user_agent, ''),
		       COALESCE(resource_type, ''), COALESCE(resource_id, ''),
		       COALESCE(detail, ''), COALESCE(error_message, ''), created_at
		FROM audit_logs
		WHERE 1=1
	`
	var args []any
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

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

	var out []domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Action,
			&e.Status,
			&e.IPAddress,
			&e.UserAgent,
			&e.ResourceType,
			&e.ResourceID,
			&e.Detail,
			&e.ErrorMessage,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
