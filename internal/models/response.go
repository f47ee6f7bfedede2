package models

import (
	"time"

	"github.com/google/uuid"
)

// Response is one respondent's completed submission to a survey.
// UserID is an opaque caller-supplied identifier, not a platform account.
// At most one response exists per (survey, user_id) pair.
type Response struct {
	ID          uuid.UUID `json:"id"`
	SurveyID    uuid.UUID `json:"survey_id"`
	UserID      string    `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`

	Answers []Answer `json:"answers,omitempty"`
}

// Answer records one question's value within a response. Multi-select
// values are stored comma-joined.
type Answer struct {
	ID         uuid.UUID `json:"id"`
	ResponseID uuid.UUID `json:"response_id"`
	QuestionID uuid.UUID `json:"question_id"`
	Value      string    `json:"value"`
}
