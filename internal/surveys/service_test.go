package surveys

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/models"
)

type fakeDuplicateStore struct {
	surveys map[uuid.UUID]*models.Survey
	slugs   map[string]bool

	copies     []string // slugs passed to CreateCopy
	copiedFrom []*models.Survey
	copyErr    error
}

func newFakeDuplicateStore() *fakeDuplicateStore {
	return &fakeDuplicateStore{
		surveys: make(map[uuid.UUID]*models.Survey),
		slugs:   make(map[string]bool),
	}
}

func (f *fakeDuplicateStore) GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	s, ok := f.surveys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeDuplicateStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	return f.slugs[slug], nil
}

func (f *fakeDuplicateStore) CreateCopy(ctx context.Context, src *models.Survey, newSlug string) (uuid.UUID, error) {
	if f.copyErr != nil {
		return uuid.Nil, f.copyErr
	}
	f.copies = append(f.copies, newSlug)
	f.copiedFrom = append(f.copiedFrom, src)
	return uuid.New(), nil
}

func sourceSurvey(questions int) *models.Survey {
	s := &models.Survey{
		ID:    uuid.New(),
		AppID: uuid.New(),
		Title: "Customer pulse",
		Slug:  "enq-1111-abc",
	}
	for i := 0; i < questions; i++ {
		s.Questions = append(s.Questions, models.Question{
			ID:       uuid.New(),
			SurveyID: s.ID,
			Type:     models.QuestionText,
			Label:    "Q",
			Order:    i + 1,
		})
	}
	return s
}

func TestDuplicateSuccess(t *testing.T) {
	store := newFakeDuplicateStore()
	src := sourceSurvey(3)
	store.surveys[src.ID] = src

	svc := NewService(store, zap.NewNop())
	newID, err := svc.Duplicate(context.Background(), src.ID)
	if err != nil {
		t.Fatal(err)
	}
	if newID == uuid.Nil {
		t.Fatal("expected a new survey id")
	}
	if len(store.copies) != 1 {
		t.Fatalf("expected one copy, got %d", len(store.copies))
	}
	if !SlugPattern.MatchString(store.copies[0]) {
		t.Fatalf("generated slug %q does not match pattern", store.copies[0])
	}
	if store.copiedFrom[0] != src {
		t.Fatal("copy not built from the source survey")
	}
}

func TestDuplicateNotFound(t *testing.T) {
	svc := NewService(newFakeDuplicateStore(), zap.NewNop())
	if _, err := svc.Duplicate(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateRetriesOnCollision(t *testing.T) {
	store := newFakeDuplicateStore()
	src := sourceSurvey(1)
	store.surveys[src.ID] = src

	svc := NewService(store, zap.NewNop())
	attempts := 0
	svc.newSlug = func() string {
		attempts++
		if attempts < 4 {
			return "enq-0000-dup"
		}
		return "enq-9999-new"
	}
	store.slugs["enq-0000-dup"] = true

	if _, err := svc.Duplicate(context.Background(), src.ID); err != nil {
		t.Fatal(err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 slug attempts, got %d", attempts)
	}
	if store.copies[0] != "enq-9999-new" {
		t.Fatalf("expected non-colliding slug, got %q", store.copies[0])
	}
}

func TestDuplicateSlugExhaustion(t *testing.T) {
	store := newFakeDuplicateStore()
	src := sourceSurvey(1)
	store.surveys[src.ID] = src
	store.slugs["enq-0000-dup"] = true

	svc := NewService(store, zap.NewNop())
	attempts := 0
	svc.newSlug = func() string {
		attempts++
		return "enq-0000-dup"
	}

	if _, err := svc.Duplicate(context.Background(), src.ID); !errors.Is(err, ErrSlugExhausted) {
		t.Fatalf("expected ErrSlugExhausted, got %v", err)
	}
	if attempts != maxSlugAttempts {
		t.Fatalf("expected %d attempts, got %d", maxSlugAttempts, attempts)
	}
	if len(store.copies) != 0 {
		t.Fatal("no copy should be created on exhaustion")
	}
}

func TestDuplicateCopyFailure(t *testing.T) {
	store := newFakeDuplicateStore()
	src := sourceSurvey(1)
	store.surveys[src.ID] = src
	store.copyErr = errors.New("deadlock detected")

	svc := NewService(store, zap.NewNop())
	if _, err := svc.Duplicate(context.Background(), src.ID); err == nil {
		t.Fatal("expected error from failed copy")
	}
}
