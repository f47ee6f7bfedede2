package submissions

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/internal/surveys"
	"github.com/enqueta/backend/internal/webhook"
)

// ErrDuplicate indicates the (survey, user) pair already has a response.
var ErrDuplicate = errors.New("response already exists")

// SurveyStore loads the survey being submitted to, questions included.
type SurveyStore interface {
	GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*models.Survey, error)
}

// ResponseStore persists responses. CreateWithAnswers must return ErrDuplicate
// when the unique (survey_id, user_id) constraint rejects the insert.
type ResponseStore interface {
	Exists(ctx context.Context, surveyID uuid.UUID, userID string) (bool, error)
	CreateWithAnswers(ctx context.Context, resp *models.Response) error
}

// CaptchaVerifier is the opaque boolean oracle guarding public submissions.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) bool
}

// Notifier delivers the response-created webhook.
type Notifier interface {
	Send(ctx context.Context, url string, payload webhook.Payload) bool
}

// Broadcaster pushes new responses to connected admin sessions.
type Broadcaster interface {
	ResponseCreated(surveyID uuid.UUID, resp *models.Response)
}

// Kind classifies a failed submission for transport mapping.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInternal
)

// Result is the submission outcome. Domain failures carry a user-legible
// message in Err; internal failures carry a generic one, with detail only in
// the server log.
type Result struct {
	Success    bool
	ResponseID uuid.UUID
	Err        string
	Kind       Kind
}

func failure(kind Kind, msg string) Result {
	return Result{Err: msg, Kind: kind}
}

// SubmitInput is one public submission attempt.
type SubmitInput struct {
	SurveyID     uuid.UUID
	UserID       string
	Answers      map[string]FieldValue
	CaptchaToken string
	RemoteIP     string
}

// Service runs the submission workflow.
type Service struct {
	surveys   SurveyStore
	responses ResponseStore
	captcha   CaptchaVerifier
	notifier  Notifier
	broadcast Broadcaster
	now       func() time.Time
	logger    *zap.Logger

	// dispatch runs side effects after a successful write. Replaced in tests
	// to run inline.
	dispatch func(fn func())
}

// NewService creates the submission service. broadcast may be nil.
func NewService(surveyStore SurveyStore, responseStore ResponseStore, captcha CaptchaVerifier, notifier Notifier, broadcast Broadcaster, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		surveys:   surveyStore,
		responses: responseStore,
		captcha:   captcha,
		notifier:  notifier,
		broadcast: broadcast,
		now:       time.Now,
		logger:    logger,
		dispatch:  func(fn func()) { go fn() },
	}
}

// Submit validates and persists one response. The gates run in a fixed order
// and nothing is written until every one of them passes: captcha, survey
// existence, activity flag, acceptance window, duplicate check, answer shape.
// The unique (survey_id, user_id) constraint stays authoritative for
// duplicates; a conflicting concurrent insert surfaces as the same duplicate
// error the pre-check produces.
func (s *Service) Submit(ctx context.Context, in SubmitInput) Result {
	if in.CaptchaToken == "" {
		return failure(KindValidation, "Captcha token is required.")
	}
	if !s.captcha.Verify(ctx, in.CaptchaToken, in.RemoteIP) {
		return failure(KindValidation, "Captcha verification failed.")
	}

	survey, err := s.surveys.GetByIDWithQuestions(ctx, in.SurveyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return failure(KindNotFound, "Survey not found.")
		}
		return s.internal("load survey", in, err)
	}

	if !survey.IsActive {
		return failure(KindValidation, "This survey is currently unavailable.")
	}

	period, err := surveys.EvaluatePeriod(s.now(), survey.StartAt, survey.EndAt)
	if err != nil {
		return s.internal("evaluate period", in, err)
	}
	if !period.IsActive {
		return failure(KindValidation, period.Message)
	}

	exists, err := s.responses.Exists(ctx, in.SurveyID, in.UserID)
	if err != nil {
		return s.internal("check duplicate", in, err)
	}
	if exists {
		return failure(KindConflict, "You have already submitted this survey.")
	}

	answers, invalid := buildAnswers(survey.Questions, in.Answers)
	if len(invalid) > 0 {
		return failure(KindValidation, "Invalid question IDs: "+strings.Join(invalid, ", "))
	}
	if len(answers) == 0 {
		return failure(KindValidation, "No valid answers provided.")
	}

	resp := &models.Response{
		SurveyID: in.SurveyID,
		UserID:   in.UserID,
		Answers:  answers,
	}
	if err := s.responses.CreateWithAnswers(ctx, resp); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return failure(KindConflict, "You have already submitted this survey.")
		}
		return s.internal("persist response", in, err)
	}

	s.sideEffects(survey, resp)

	return Result{Success: true, ResponseID: resp.ID, Kind: KindNone}
}

func (s *Service) internal(stage string, in SubmitInput, err error) Result {
	s.logger.Error("submission failed",
		zap.String("stage", stage),
		zap.String("survey_id", in.SurveyID.String()),
		zap.String("user_id", in.UserID),
		zap.Error(err),
	)
	msg := "Failed to submit survey."
	if err != nil && err.Error() != "" {
		msg = "Failed to submit survey: " + err.Error()
	}
	return failure(KindInternal, msg)
}

// buildAnswers maps raw form values onto the survey's question set. Unknown
// keys are collected (sorted, for stable messages) instead of silently
// dropped; empty values are dropped without complaint.
func buildAnswers(questions []models.Question, raw map[string]FieldValue) ([]models.Answer, []string) {
	known := make(map[string]uuid.UUID, len(questions))
	for _, q := range questions {
		known[q.ID.String()] = q.ID
	}

	var invalid []string
	for key := range raw {
		if _, ok := known[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		return nil, invalid
	}

	// Preserve question order so answers line up with the form.
	var answers []models.Answer
	for _, q := range questions {
		value, ok := raw[q.ID.String()]
		if !ok || value.Empty() {
			continue
		}
		answers = append(answers, models.Answer{
			QuestionID: q.ID,
			Value:      value.Serialize(),
		})
	}
	return answers, nil
}

// sideEffects runs the best-effort post-commit work: webhook delivery and the
// live feed broadcast. Failures here never reach the submitter.
func (s *Service) sideEffects(survey *models.Survey, resp *models.Response) {
	if s.broadcast != nil {
		s.broadcast.ResponseCreated(survey.ID, resp)
	}

	if survey.WebhookURL == nil || *survey.WebhookURL == "" || s.notifier == nil {
		return
	}

	labels := make(map[uuid.UUID]string, len(survey.Questions))
	for _, q := range survey.Questions {
		labels[q.ID] = q.Label
	}

	payload := webhook.Payload{
		Event:     webhook.EventResponseCreated,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		Data: webhook.PayloadData{
			SurveyID:    survey.ID.String(),
			SurveyTitle: survey.Title,
			ResponseID:  resp.ID.String(),
			UserID:      resp.UserID,
			SubmittedAt: resp.SubmittedAt.UTC().Format(time.RFC3339),
		},
	}
	for _, a := range resp.Answers {
		payload.Data.Answers = append(payload.Data.Answers, webhook.PayloadAnswer{
			QuestionID:    a.QuestionID.String(),
			QuestionLabel: labels[a.QuestionID],
			Value:         a.Value,
		})
	}

	url := *survey.WebhookURL
	s.dispatch(func() {
		// Detached from the request context; the caller's response must not
		// wait on delivery.
		s.notifier.Send(context.Background(), url, payload)
	})
}
