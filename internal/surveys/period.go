package surveys

import (
	"errors"
	"time"
)

// ErrPeriodBounds is returned when only one of the period bounds is supplied
// in a context that requires both.
var ErrPeriodBounds = errors.New("startAt and endAt must be provided together")

const periodTimeFormat = "2006-01-02 15:04"

// Period is the tri-state classification of a survey's acceptance window.
// Exactly one of IsNotStarted, IsActive, IsExpired is true.
type Period struct {
	IsNotStarted bool   `json:"is_not_started"`
	IsActive     bool   `json:"is_active"`
	IsExpired    bool   `json:"is_expired"`
	Message      string `json:"message,omitempty"`
}

// EvaluatePeriod classifies now against the survey window. A survey with no
// window at all is unconditionally active with no message. Supplying exactly
// one bound is a caller error, not a silent default.
func EvaluatePeriod(now time.Time, startAt, endAt *time.Time) (Period, error) {
	if startAt == nil && endAt == nil {
		return Period{IsActive: true}, nil
	}
	if startAt == nil || endAt == nil {
		return Period{}, ErrPeriodBounds
	}

	p := Period{
		IsNotStarted: now.Before(*startAt),
		IsExpired:    now.After(*endAt),
	}
	p.IsActive = !p.IsNotStarted && !p.IsExpired

	switch {
	case p.IsNotStarted:
		p.Message = "This survey opens at " + startAt.UTC().Format(periodTimeFormat) + "."
	case p.IsExpired:
		p.Message = "This survey has ended."
	default:
		p.Message = "This survey is open until " + endAt.UTC().Format(periodTimeFormat) + "."
	}
	return p, nil
}
