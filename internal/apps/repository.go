package apps

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enqueta/backend/internal/models"
)

// ErrSlugTaken indicates another app already uses the slug.
var ErrSlugTaken = errors.New("app slug already in use")

const appColumns = `id, name, slug, privacy_policy_url, favicon_url, copyright, contact_url, created_at, updated_at`

// Repository handles app persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an app repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func mapSlugConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlugTaken
	}
	return err
}

// Create inserts a new app.
func (r *Repository) Create(ctx context.Context, a *models.App) error {
	const q = `INSERT INTO apps (id, name, slug, privacy_policy_url, favicon_url, copyright, contact_url)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, a.Name, a.Slug, a.PrivacyPolicyURL, a.FaviconURL, a.Copyright, a.ContactURL).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapSlugConflict(err)
}

// GetByID returns an app by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.App, error) {
	var a models.App
	err := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Slug, &a.PrivacyPolicyURL, &a.FaviconURL, &a.Copyright, &a.ContactURL,
			&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBySlug returns an app by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.App, error) {
	var a models.App
	err := r.pool.QueryRow(ctx, `SELECT `+appColumns+` FROM apps WHERE slug = $1`, slug).
		Scan(&a.ID, &a.Name, &a.Slug, &a.PrivacyPolicyURL, &a.FaviconURL, &a.Copyright, &a.ContactURL,
			&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all apps, alphabetically.
func (r *Repository) List(ctx context.Context) ([]models.App, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+appColumns+` FROM apps ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.App
	for rows.Next() {
		var a models.App
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.PrivacyPolicyURL, &a.FaviconURL, &a.Copyright,
			&a.ContactURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update rewrites the mutable app fields.
func (r *Repository) Update(ctx context.Context, a *models.App) error {
	const q = `UPDATE apps SET name = $1, slug = $2, privacy_policy_url = $3, favicon_url = $4,
		copyright = $5, contact_url = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, a.Name, a.Slug, a.PrivacyPolicyURL, a.FaviconURL, a.Copyright,
		a.ContactURL, a.ID).Scan(&a.UpdatedAt)
	return mapSlugConflict(err)
}

// Delete removes an app; its surveys cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM apps WHERE id = $1`, id)
	return err
}
