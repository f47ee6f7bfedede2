package surveys

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enqueta/backend/internal/models"
)

const surveyColumns = `id, app_id, title, slug, description, notes, theme_color, header_image_url, bg_image_url, webhook_url, is_active, start_at, end_at, created_at, updated_at`

// Repository handles survey persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a survey repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanSurvey(row pgx.Row, s *models.Survey) error {
	return row.Scan(&s.ID, &s.AppID, &s.Title, &s.Slug, &s.Description, &s.Notes, &s.ThemeColor,
		&s.HeaderImageURL, &s.BgImageURL, &s.WebhookURL, &s.IsActive, &s.StartAt, &s.EndAt,
		&s.CreatedAt, &s.UpdatedAt)
}

// Create inserts a new survey.
func (r *Repository) Create(ctx context.Context, s *models.Survey) error {
	const q = `INSERT INTO surveys (id, app_id, title, slug, description, notes, theme_color, header_image_url, bg_image_url, webhook_url, is_active, start_at, end_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, s.AppID, s.Title, s.Slug, s.Description, s.Notes, s.ThemeColor,
		s.HeaderImageURL, s.BgImageURL, s.WebhookURL, s.IsActive, s.StartAt, s.EndAt).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a survey by ID, without its questions.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	var s models.Survey
	err := scanSurvey(r.pool.QueryRow(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id), &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIDWithQuestions returns a survey by ID with its ordered question set.
func (r *Repository) GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	questions, err := r.questionsForSurvey(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Questions = questions
	return s, nil
}

// GetByAppAndSlug returns a survey addressed by app slug + survey slug, with
// questions. Used by the public form endpoint.
func (r *Repository) GetByAppAndSlug(ctx context.Context, appSlug, surveySlug string) (*models.Survey, error) {
	const q = `SELECT s.id, s.app_id, s.title, s.slug, s.description, s.notes, s.theme_color,
			s.header_image_url, s.bg_image_url, s.webhook_url, s.is_active, s.start_at, s.end_at,
			s.created_at, s.updated_at
		FROM surveys s JOIN apps a ON a.id = s.app_id
		WHERE a.slug = $1 AND s.slug = $2`
	var s models.Survey
	if err := scanSurvey(r.pool.QueryRow(ctx, q, appSlug, surveySlug), &s); err != nil {
		return nil, err
	}
	questions, err := r.questionsForSurvey(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Questions = questions
	return &s, nil
}

// ListByApp returns all surveys of an app, newest first.
func (r *Repository) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.Survey, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE app_id = $1 ORDER BY created_at DESC`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Survey
	for rows.Next() {
		var s models.Survey
		if err := scanSurvey(rows, &s); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update rewrites the mutable survey fields.
func (r *Repository) Update(ctx context.Context, s *models.Survey) error {
	const q = `UPDATE surveys SET title = $1, description = $2, notes = $3, theme_color = $4,
		header_image_url = $5, bg_image_url = $6, webhook_url = $7, is_active = $8,
		start_at = $9, end_at = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, s.Title, s.Description, s.Notes, s.ThemeColor,
		s.HeaderImageURL, s.BgImageURL, s.WebhookURL, s.IsActive, s.StartAt, s.EndAt, s.ID).
		Scan(&s.UpdatedAt)
}

// Delete removes a survey; questions, responses and answers cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, id)
	return err
}

// SlugExists reports whether any survey already uses slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM surveys WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// CreateCopy clones a survey and its questions under a new slug inside one
// transaction. The copy starts inactive; responses are never cloned.
func (r *Repository) CreateCopy(ctx context.Context, src *models.Survey, newSlug string) (uuid.UUID, error) {
	var newID uuid.UUID
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO surveys (id, app_id, title, slug, description, notes, theme_color, header_image_url, bg_image_url, webhook_url, is_active, start_at, end_at)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11)
			RETURNING id`
		if err := tx.QueryRow(ctx, q, src.AppID, src.Title+" (copy)", newSlug, src.Description, src.Notes,
			src.ThemeColor, src.HeaderImageURL, src.BgImageURL, src.WebhookURL, src.StartAt, src.EndAt).
			Scan(&newID); err != nil {
			return err
		}
		const qq = `INSERT INTO questions (id, survey_id, type, label, required, max_length, options, "order")
			VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)`
		for _, question := range src.Questions {
			var options []byte
			if question.Options != nil {
				var err error
				options, err = json.Marshal(question.Options)
				if err != nil {
					return err
				}
			}
			if _, err := tx.Exec(ctx, qq, newID, question.Type, question.Label, question.Required,
				question.MaxLength, options, question.Order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return newID, nil
}

func (r *Repository) questionsForSurvey(ctx context.Context, surveyID uuid.UUID) ([]models.Question, error) {
	const q = `SELECT id, survey_id, type, label, required, max_length, options, "order", created_at, updated_at
		FROM questions WHERE survey_id = $1 ORDER BY "order" ASC`
	rows, err := r.pool.Query(ctx, q, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Question
	for rows.Next() {
		var question models.Question
		var options []byte
		if err := rows.Scan(&question.ID, &question.SurveyID, &question.Type, &question.Label,
			&question.Required, &question.MaxLength, &options, &question.Order,
			&question.CreatedAt, &question.UpdatedAt); err != nil {
			return nil, err
		}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &question.Options); err != nil {
				return nil, err
			}
		}
		list = append(list, question)
	}
	return list, rows.Err()
}
