package submissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enqueta/backend/internal/models"
)

// uniqueViolation is the Postgres error code for a unique constraint hit.
const uniqueViolation = "23505"

// Repository handles response persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a response repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Exists reports whether userID already responded to the survey.
func (r *Repository) Exists(ctx context.Context, surveyID uuid.UUID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses WHERE survey_id = $1 AND user_id = $2)`,
		surveyID, userID).Scan(&exists)
	return exists, err
}

// CreateWithAnswers inserts a response and its answers in one transaction. A
// unique violation on (survey_id, user_id) is reported as ErrDuplicate so a
// concurrent submit loses cleanly instead of surfacing a raw constraint error.
func (r *Repository) CreateWithAnswers(ctx context.Context, resp *models.Response) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO responses (id, survey_id, user_id)
			VALUES (gen_random_uuid(), $1, $2)
			RETURNING id, submitted_at`
		if err := tx.QueryRow(ctx, q, resp.SurveyID, resp.UserID).
			Scan(&resp.ID, &resp.SubmittedAt); err != nil {
			return err
		}
		const qa = `INSERT INTO answers (id, response_id, question_id, value)
			VALUES (gen_random_uuid(), $1, $2, $3)
			RETURNING id`
		for i := range resp.Answers {
			resp.Answers[i].ResponseID = resp.ID
			if err := tx.QueryRow(ctx, qa, resp.ID, resp.Answers[i].QuestionID, resp.Answers[i].Value).
				Scan(&resp.Answers[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ListBySurvey returns all responses of a survey with their answers, oldest
// first. Used by the admin response list and the CSV export.
func (r *Repository) ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]models.Response, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, survey_id, user_id, submitted_at FROM responses
		 WHERE survey_id = $1 ORDER BY submitted_at ASC`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Response
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var resp models.Response
		if err := rows.Scan(&resp.ID, &resp.SurveyID, &resp.UserID, &resp.SubmittedAt); err != nil {
			return nil, err
		}
		index[resp.ID] = len(list)
		list = append(list, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return list, nil
	}

	const qa = `SELECT a.id, a.response_id, a.question_id, a.value
		FROM answers a JOIN responses r ON r.id = a.response_id
		WHERE r.survey_id = $1`
	arows, err := r.pool.Query(ctx, qa, surveyID)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a models.Answer
		if err := arows.Scan(&a.ID, &a.ResponseID, &a.QuestionID, &a.Value); err != nil {
			return nil, err
		}
		if i, ok := index[a.ResponseID]; ok {
			list[i].Answers = append(list[i].Answers, a)
		}
	}
	return list, arows.Err()
}

// CountBySurvey returns the number of responses a survey has collected.
func (r *Repository) CountBySurvey(ctx context.Context, surveyID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM responses WHERE survey_id = $1`, surveyID).Scan(&n)
	return n, err
}

// Delete removes one response and its answers.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM responses WHERE id = $1`, id)
	return err
}
