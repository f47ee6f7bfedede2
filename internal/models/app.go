package models

import (
	"time"

	"github.com/google/uuid"
)

// App represents a tenant namespace owning one or more surveys.
type App struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	PrivacyPolicyURL *string   `json:"privacy_policy_url,omitempty"`
	FaviconURL       *string   `json:"favicon_url,omitempty"`
	Copyright        *string   `json:"copyright,omitempty"`
	ContactURL       *string   `json:"contact_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
