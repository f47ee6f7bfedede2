package submissions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/internal/webhook"
)

type fakeSurveyStore struct {
	surveys map[uuid.UUID]*models.Survey
}

func (f *fakeSurveyStore) GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	s, ok := f.surveys[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}

type fakeResponseStore struct {
	existing  map[string]bool // surveyID|userID
	created   []*models.Response
	createErr error
	existsErr error
}

func key(surveyID uuid.UUID, userID string) string {
	return surveyID.String() + "|" + userID
}

func (f *fakeResponseStore) Exists(ctx context.Context, surveyID uuid.UUID, userID string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[key(surveyID, userID)], nil
}

func (f *fakeResponseStore) CreateWithAnswers(ctx context.Context, resp *models.Response) error {
	if f.createErr != nil {
		return f.createErr
	}
	resp.ID = uuid.New()
	resp.SubmittedAt = time.Now()
	f.created = append(f.created, resp)
	return nil
}

type fakeCaptcha struct {
	ok     bool
	tokens []string
}

func (f *fakeCaptcha) Verify(ctx context.Context, token, remoteIP string) bool {
	f.tokens = append(f.tokens, token)
	return f.ok
}

type fakeNotifier struct {
	urls     []string
	payloads []webhook.Payload
}

func (f *fakeNotifier) Send(ctx context.Context, url string, payload webhook.Payload) bool {
	f.urls = append(f.urls, url)
	f.payloads = append(f.payloads, payload)
	return true
}

type fixture struct {
	service   *Service
	surveys   *fakeSurveyStore
	responses *fakeResponseStore
	captcha   *fakeCaptcha
	notifier  *fakeNotifier
	survey    *models.Survey
	q1, q2    uuid.UUID
}

func newFixture() *fixture {
	q1, q2 := uuid.New(), uuid.New()
	survey := &models.Survey{
		ID:       uuid.New(),
		Title:    "Customer pulse",
		IsActive: true,
		Questions: []models.Question{
			{ID: q1, Type: models.QuestionText, Label: "Name", Order: 1},
			{ID: q2, Type: models.QuestionCheckbox, Label: "Channels", Options: []string{"A", "B", "C"}, Order: 2},
		},
	}
	f := &fixture{
		surveys:   &fakeSurveyStore{surveys: map[uuid.UUID]*models.Survey{survey.ID: survey}},
		responses: &fakeResponseStore{existing: make(map[string]bool)},
		captcha:   &fakeCaptcha{ok: true},
		notifier:  &fakeNotifier{},
		survey:    survey,
		q1:        q1,
		q2:        q2,
	}
	f.service = NewService(f.surveys, f.responses, f.captcha, f.notifier, nil, zap.NewNop())
	f.service.dispatch = func(fn func()) { fn() }
	return f
}

func (f *fixture) input() SubmitInput {
	return SubmitInput{
		SurveyID:     f.survey.ID,
		UserID:       "visitor-1",
		CaptchaToken: "tok",
		Answers: map[string]FieldValue{
			f.q1.String(): Scalar("Ada"),
		},
	}
}

func TestSubmitSuccess(t *testing.T) {
	f := newFixture()
	in := f.input()
	in.Answers[f.q2.String()] = Multi("A", "B")

	res := f.service.Submit(context.Background(), in)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Err)
	}
	if res.ResponseID == uuid.Nil {
		t.Fatal("expected a response id")
	}
	if len(f.responses.created) != 1 {
		t.Fatalf("expected one persisted response, got %d", len(f.responses.created))
	}
	created := f.responses.created[0]
	if len(created.Answers) != 2 {
		t.Fatalf("expected 2 answers, got %d", len(created.Answers))
	}
	// Checkbox values are comma-joined and answers follow question order.
	if created.Answers[0].Value != "Ada" || created.Answers[1].Value != "A,B" {
		t.Fatalf("unexpected answer values: %q, %q", created.Answers[0].Value, created.Answers[1].Value)
	}
}

func TestSubmitSurveyNotFound(t *testing.T) {
	f := newFixture()
	in := f.input()
	in.SurveyID = uuid.New()

	res := f.service.Submit(context.Background(), in)
	if res.Err != "Survey not found." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if res.Kind != KindNotFound {
		t.Fatalf("unexpected kind: %v", res.Kind)
	}
	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitInactiveSurvey(t *testing.T) {
	f := newFixture()
	f.survey.IsActive = false

	res := f.service.Submit(context.Background(), f.input())
	if res.Err != "This survey is currently unavailable." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitOutsidePeriod(t *testing.T) {
	f := newFixture()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)
	f.survey.StartAt, f.survey.EndAt = &start, &end

	f.service.now = func() time.Time { return start.Add(-time.Hour) }
	res := f.service.Submit(context.Background(), f.input())
	if res.Err != "This survey opens at 2026-03-01 09:00." {
		t.Fatalf("unexpected not-started error: %q", res.Err)
	}

	f.service.now = func() time.Time { return end.Add(time.Hour) }
	res = f.service.Submit(context.Background(), f.input())
	if res.Err != "This survey has ended." {
		t.Fatalf("unexpected expired error: %q", res.Err)
	}

	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitDuplicate(t *testing.T) {
	f := newFixture()
	f.responses.existing[key(f.survey.ID, "visitor-1")] = true

	res := f.service.Submit(context.Background(), f.input())
	if res.Err != "You have already submitted this survey." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if res.Kind != KindConflict {
		t.Fatalf("unexpected kind: %v", res.Kind)
	}
	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitDuplicateRace(t *testing.T) {
	// The pre-check passes but the insert loses to a concurrent submit. The
	// constraint violation must surface as the same duplicate error.
	f := newFixture()
	f.responses.createErr = ErrDuplicate

	res := f.service.Submit(context.Background(), f.input())
	if res.Err != "You have already submitted this survey." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if res.Kind != KindConflict {
		t.Fatalf("unexpected kind: %v", res.Kind)
	}
}

func TestSubmitUnknownQuestionIDs(t *testing.T) {
	f := newFixture()
	in := f.input()
	in.Answers = map[string]FieldValue{"bad-id": Scalar("x")}

	res := f.service.Submit(context.Background(), in)
	if res.Err != "Invalid question IDs: bad-id" {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitAllAnswersEmpty(t *testing.T) {
	f := newFixture()
	in := f.input()
	in.Answers = map[string]FieldValue{
		f.q1.String(): Scalar(""),
		f.q2.String(): Multi(),
	}

	res := f.service.Submit(context.Background(), in)
	if res.Err != "No valid answers provided." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitFiltersEmptyValues(t *testing.T) {
	f := newFixture()
	in := f.input()
	in.Answers[f.q2.String()] = Multi()

	res := f.service.Submit(context.Background(), in)
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Err)
	}
	if got := len(f.responses.created[0].Answers); got != 1 {
		t.Fatalf("expected the empty value dropped, got %d answers", got)
	}
}

func TestSubmitCaptchaGate(t *testing.T) {
	f := newFixture()
	in := f.input()
	in.CaptchaToken = ""
	res := f.service.Submit(context.Background(), in)
	if res.Err != "Captcha token is required." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if len(f.captcha.tokens) != 0 {
		t.Fatal("verifier must not be called without a token")
	}

	f.captcha.ok = false
	res = f.service.Submit(context.Background(), f.input())
	if res.Err != "Captcha verification failed." {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if len(f.responses.created) != 0 {
		t.Fatal("no write expected")
	}
}

func TestSubmitStoreFailureIsGeneric(t *testing.T) {
	f := newFixture()
	f.responses.createErr = errors.New("connection refused")

	res := f.service.Submit(context.Background(), f.input())
	if res.Err != "Failed to submit survey: connection refused" {
		t.Fatalf("unexpected error: %q", res.Err)
	}
	if res.Kind != KindInternal {
		t.Fatalf("unexpected kind: %v", res.Kind)
	}
}

func TestSubmitSendsWebhook(t *testing.T) {
	f := newFixture()
	url := "https://hooks.example.com/enqueta"
	f.survey.WebhookURL = &url

	res := f.service.Submit(context.Background(), f.input())
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Err)
	}
	if len(f.notifier.urls) != 1 || f.notifier.urls[0] != url {
		t.Fatalf("expected one webhook to %q, got %v", url, f.notifier.urls)
	}
	p := f.notifier.payloads[0]
	if p.Event != webhook.EventResponseCreated {
		t.Fatalf("unexpected event: %q", p.Event)
	}
	if p.Data.ResponseID != res.ResponseID.String() {
		t.Fatal("payload response id mismatch")
	}
	if len(p.Data.Answers) != 1 || p.Data.Answers[0].QuestionLabel != "Name" {
		t.Fatalf("unexpected payload answers: %+v", p.Data.Answers)
	}
}

func TestSubmitNoWebhookWithoutURL(t *testing.T) {
	f := newFixture()
	res := f.service.Submit(context.Background(), f.input())
	if !res.Success {
		t.Fatalf("expected success, got error %q", res.Err)
	}
	if len(f.notifier.urls) != 0 {
		t.Fatal("no webhook expected without a configured url")
	}
}
