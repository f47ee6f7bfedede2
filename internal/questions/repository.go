package questions

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/enqueta/backend/internal/models"
)

// Repository handles question persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a question repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func marshalOptions(options []string) ([]byte, error) {
	if options == nil {
		return nil, nil
	}
	return json.Marshal(options)
}

// Create appends a question to a survey. The order is assigned inside the
// transaction as max(order)+1 so concurrent creates cannot collide.
func (r *Repository) Create(ctx context.Context, q *models.Question) error {
	options, err := marshalOptions(q.Options)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insert = `INSERT INTO questions (id, survey_id, type, label, required, max_length, options, "order")
			SELECT gen_random_uuid(), $1, $2, $3, $4, $5, $6, COALESCE(MAX("order"), 0) + 1
			FROM questions WHERE survey_id = $1
			RETURNING id, "order", created_at, updated_at`
		return tx.QueryRow(ctx, insert, q.SurveyID, q.Type, q.Label, q.Required, q.MaxLength, options).
			Scan(&q.ID, &q.Order, &q.CreatedAt, &q.UpdatedAt)
	})
}

// GetByID returns a question by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	const q = `SELECT id, survey_id, type, label, required, max_length, options, "order", created_at, updated_at
		FROM questions WHERE id = $1`
	var question models.Question
	var options []byte
	err := r.pool.QueryRow(ctx, q, id).Scan(&question.ID, &question.SurveyID, &question.Type,
		&question.Label, &question.Required, &question.MaxLength, &options, &question.Order,
		&question.CreatedAt, &question.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return nil, err
		}
	}
	return &question, nil
}

// Update rewrites the mutable question fields. Order is not touched here;
// Reorder owns order changes.
func (r *Repository) Update(ctx context.Context, q *models.Question) error {
	options, err := marshalOptions(q.Options)
	if err != nil {
		return err
	}
	const update = `UPDATE questions SET type = $1, label = $2, required = $3, max_length = $4,
		options = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, update, q.Type, q.Label, q.Required, q.MaxLength, options, q.ID).
		Scan(&q.UpdatedAt)
}

// Delete removes a question and closes the order gap it leaves.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var surveyID uuid.UUID
		var order int
		if err := tx.QueryRow(ctx,
			`DELETE FROM questions WHERE id = $1 RETURNING survey_id, "order"`, id).
			Scan(&surveyID, &order); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`UPDATE questions SET "order" = "order" - 1 WHERE survey_id = $1 AND "order" > $2`,
			surveyID, order)
		return err
	})
}

// Reorder rewrites the order of every listed question in one transaction.
// The per-survey uniqueness constraint is deferred, so intermediate states
// inside the transaction may overlap.
func (r *Repository) Reorder(ctx context.Context, surveyID uuid.UUID, orderedIDs []uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for i, id := range orderedIDs {
			tag, err := tx.Exec(ctx,
				`UPDATE questions SET "order" = $1, updated_at = NOW() WHERE id = $2 AND survey_id = $3`,
				i+1, id, surveyID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
		}
		return nil
	})
}
