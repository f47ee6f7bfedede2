package audit

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/ctxkeys"
	"github.com/enqueta/backend/internal/models"
)

// Store persists audit entries.
type Store interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
}

// Entry describes one administrative mutation to record.
type Entry struct {
	Action     models.AuditAction
	Resource   string
	ResourceID string
	Details    any
	// UserID overrides actor resolution from the request context (e.g. LOGIN,
	// where no authenticated session exists yet).
	UserID *uuid.UUID
}

// Recorder writes best-effort audit entries. Failures are logged and swallowed:
// audit logging must never block the mutation it accompanies.
type Recorder struct {
	store  Store
	logger *zap.Logger
}

// NewRecorder creates an audit recorder.
func NewRecorder(store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, logger: logger}
}

// Record resolves the acting user, request IP and user agent, and appends an
// audit row. If no actor can be resolved the entry is skipped with a warning.
func (r *Recorder) Record(c *gin.Context, e Entry) {
	userID := e.UserID
	if userID == nil {
		if v, ok := c.Get(ctxkeys.UserID); ok {
			if id, ok := v.(uuid.UUID); ok {
				userID = &id
			}
		}
	}
	if userID == nil {
		r.logger.Warn("audit entry skipped: no actor resolved",
			zap.String("action", string(e.Action)),
			zap.String("resource", e.Resource),
		)
		return
	}

	var details json.RawMessage
	if e.Details != nil {
		data, err := json.Marshal(e.Details)
		if err != nil {
			r.logger.Warn("audit details marshal failed", zap.Error(err))
		} else {
			details = data
		}
	}

	var resourceID *string
	if e.ResourceID != "" {
		resourceID = &e.ResourceID
	}

	entry := &models.AuditLog{
		UserID:     userID,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: resourceID,
		Details:    details,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	}
	if err := r.store.Insert(c.Request.Context(), entry); err != nil {
		r.logger.Error("audit insert failed",
			zap.Error(err),
			zap.String("action", string(e.Action)),
			zap.String("resource", e.Resource),
		)
	}
}
