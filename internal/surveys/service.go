package surveys

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/models"
)

var (
	// ErrNotFound indicates the survey does not exist.
	ErrNotFound = errors.New("survey not found")
	// ErrSlugExhausted indicates slug probing hit its retry bound without
	// finding a free slug.
	ErrSlugExhausted = errors.New("could not generate a unique survey slug")
)

// maxSlugAttempts bounds collision probing during duplication.
const maxSlugAttempts = 10

// DuplicateStore is the persistence surface the duplication workflow needs.
type DuplicateStore interface {
	GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*models.Survey, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	CreateCopy(ctx context.Context, src *models.Survey, newSlug string) (uuid.UUID, error)
}

// Service implements survey workflows that go beyond single queries.
type Service struct {
	store   DuplicateStore
	newSlug func() string
	logger  *zap.Logger
}

// NewService creates a survey service.
func NewService(store DuplicateStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, newSlug: GenerateSlug, logger: logger}
}

// Duplicate clones a survey and its questions under a freshly generated slug.
// The copy is created inactive with a " (copy)" title suffix; responses are
// never cloned. Probing for a free slug is bounded; exhausting the bound
// fails the operation rather than looping forever.
func (s *Service) Duplicate(ctx context.Context, surveyID uuid.UUID) (uuid.UUID, error) {
	src, err := s.store.GetByIDWithQuestions(ctx, surveyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("load source survey: %w", err)
	}

	slug, err := s.freeSlug(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	newID, err := s.store.CreateCopy(ctx, src, slug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create survey copy: %w", err)
	}

	s.logger.Info("survey duplicated",
		zap.String("source_id", surveyID.String()),
		zap.String("new_id", newID.String()),
		zap.String("slug", slug),
	)
	return newID, nil
}

func (s *Service) freeSlug(ctx context.Context) (string, error) {
	for i := 0; i < maxSlugAttempts; i++ {
		candidate := s.newSlug()
		exists, err := s.store.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}
