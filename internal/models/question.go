package models

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionText     QuestionType = "TEXT"
	QuestionTextarea QuestionType = "TEXTAREA"
	QuestionEmail    QuestionType = "EMAIL"
	QuestionRadio    QuestionType = "RADIO"
	QuestionCheckbox QuestionType = "CHECKBOX"
	QuestionSelect   QuestionType = "SELECT"
)

// ValidQuestionType reports whether t is a known question type.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionEmail, QuestionRadio, QuestionCheckbox, QuestionSelect:
		return true
	}
	return false
}

// HasOptions reports whether the type carries an ordered option list.
func (t QuestionType) HasOptions() bool {
	switch t {
	case QuestionRadio, QuestionCheckbox, QuestionSelect:
		return true
	}
	return false
}

// Question is one prompt within a survey. Order is unique per survey and
// defines display and export order.
type Question struct {
	ID        uuid.UUID    `json:"id"`
	SurveyID  uuid.UUID    `json:"survey_id"`
	Type      QuestionType `json:"type"`
	Label     string       `json:"label"`
	Required  bool         `json:"required"`
	MaxLength *int         `json:"max_length,omitempty"`
	Options   []string     `json:"options,omitempty"`
	Order     int          `json:"order"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
