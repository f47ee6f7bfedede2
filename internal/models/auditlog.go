package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction enumerates recorded administrative actions.
type AuditAction string

const (
	AuditCreate  AuditAction = "CREATE"
	AuditUpdate  AuditAction = "UPDATE"
	AuditDelete  AuditAction = "DELETE"
	AuditLogin   AuditAction = "LOGIN"
	AuditReorder AuditAction = "REORDER"
)

// AuditLog is an append-only record of an administrative mutation.
// The application never updates or deletes rows.
type AuditLog struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	Action     AuditAction     `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *string         `json:"resource_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	IPAddress  string          `json:"ip_address"`
	UserAgent  string          `json:"user_agent"`
	CreatedAt  time.Time       `json:"created_at"`
}
