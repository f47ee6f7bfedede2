package models

import (
	"time"

	"github.com/google/uuid"
)

// Survey represents a single questionnaire campaign within an app.
type Survey struct {
	ID             uuid.UUID  `json:"id"`
	AppID          uuid.UUID  `json:"app_id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Notes          string     `json:"notes"`
	ThemeColor     string     `json:"theme_color"`
	HeaderImageURL *string    `json:"header_image_url,omitempty"`
	BgImageURL     *string    `json:"bg_image_url,omitempty"`
	WebhookURL     *string    `json:"webhook_url,omitempty"`
	IsActive       bool       `json:"is_active"`
	StartAt        *time.Time `json:"start_at,omitempty"`
	EndAt          *time.Time `json:"end_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Questions is populated by lookups that join the question set.
	Questions []Question `json:"questions,omitempty"`
}
