package audit

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enqueta/backend/internal/models"
)

// Repository persists audit log rows. The table is append-only.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit log row.
func (r *Repository) Insert(ctx context.Context, entry *models.AuditLog) error {
	const q = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, details, ip_address, user_agent)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, entry.UserID, entry.Action, entry.Resource, entry.ResourceID, entry.Details, entry.IPAddress, entry.UserAgent).
		Scan(&entry.ID, &entry.CreatedAt)
}

// List returns recent audit log rows, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `SELECT id, user_id, action, resource, resource_id, details, ip_address, user_agent, created_at
		FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID, &e.Details, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
