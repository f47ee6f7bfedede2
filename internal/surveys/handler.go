package surveys

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
	"github.com/enqueta/backend/pkg/storage"
)

// SurveyRequest is the body for creating or updating a survey.
type SurveyRequest struct {
	AppID       string  `json:"app_id" binding:"required,uuid"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Notes       string  `json:"notes"`
	ThemeColor  string  `json:"theme_color"`
	WebhookURL  *string `json:"webhook_url"`
	IsActive    bool    `json:"is_active"`
	StartAt     *string `json:"start_at"`
	EndAt       *string `json:"end_at"`
}

// Handler handles survey HTTP endpoints.
type Handler struct {
	repo    *Repository
	service *Service
	assets  *storage.S3
	audit   *audit.Recorder
	logger  *zap.Logger
}

// NewHandler creates a survey handler. assets may be nil when no object
// storage is configured; image uploads then fail with a clear error.
func NewHandler(repo *Repository, service *Service, assets *storage.S3, recorder *audit.Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, service: service, assets: assets, audit: recorder, logger: logger}
}

// parseWindow validates the acceptance window: both bounds or neither, and
// start strictly before end.
func parseWindow(startRaw, endRaw *string) (*time.Time, *time.Time, string) {
	if (startRaw == nil) != (endRaw == nil) {
		return nil, nil, "start_at and end_at must be provided together"
	}
	if startRaw == nil {
		return nil, nil, ""
	}
	start, err := time.Parse(time.RFC3339, *startRaw)
	if err != nil {
		return nil, nil, "invalid start_at"
	}
	end, err := time.Parse(time.RFC3339, *endRaw)
	if err != nil {
		return nil, nil, "invalid end_at"
	}
	if !start.Before(end) {
		return nil, nil, "start_at must be before end_at"
	}
	return &start, &end, ""
}

// Create handles POST /surveys (admin only). The slug is generated, never
// caller-supplied.
func (h *Handler) Create(c *gin.Context) {
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	appID, _ := uuid.Parse(req.AppID)
	startAt, endAt, msg := parseWindow(req.StartAt, req.EndAt)
	if msg != "" {
		response.BadRequest(c, msg)
		return
	}

	slug, err := h.service.freeSlug(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrSlugExhausted) {
			response.Conflict(c, "Could not allocate a survey slug, try again.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	s := &models.Survey{
		AppID:       appID,
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Notes:       req.Notes,
		ThemeColor:  req.ThemeColor,
		WebhookURL:  req.WebhookURL,
		IsActive:    req.IsActive,
		StartAt:     startAt,
		EndAt:       endAt,
	}
	if err := h.repo.Create(c.Request.Context(), s); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditCreate,
		Resource:   "survey",
		ResourceID: s.ID.String(),
		Details:    gin.H{"title": s.Title, "slug": s.Slug},
	})
	response.Created(c, s)
}

// ListByApp handles GET /apps/:id/surveys (admin only).
func (h *Handler) ListByApp(c *gin.Context) {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid app id")
		return
	}
	list, err := h.repo.ListByApp(c.Request.Context(), appID)
	if err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	if list == nil {
		list = []models.Survey{}
	}
	response.OK(c, list)
}

// GetByID handles GET /surveys/:id (admin only), questions included.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	s, err := h.repo.GetByIDWithQuestions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Survey not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}
	response.OK(c, s)
}

// Update handles PUT /surveys/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	startAt, endAt, msg := parseWindow(req.StartAt, req.EndAt)
	if msg != "" {
		response.BadRequest(c, msg)
		return
	}

	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Survey not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	s.Title = req.Title
	s.Description = req.Description
	s.Notes = req.Notes
	s.ThemeColor = req.ThemeColor
	s.WebhookURL = req.WebhookURL
	s.IsActive = req.IsActive
	s.StartAt = startAt
	s.EndAt = endAt
	if err := h.repo.Update(c.Request.Context(), s); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditUpdate,
		Resource:   "survey",
		ResourceID: s.ID.String(),
		Details:    gin.H{"title": s.Title, "is_active": s.IsActive},
	})
	response.OK(c, s)
}

// Delete handles DELETE /surveys/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	h.audit.Record(c, audit.Entry{
		Action:     models.AuditDelete,
		Resource:   "survey",
		ResourceID: id.String(),
	})
	response.NoContent(c)
}

// Duplicate handles POST /surveys/:id/duplicate (admin only).
func (h *Handler) Duplicate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	newID, err := h.service.Duplicate(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "Survey not found.")
		case errors.Is(err, ErrSlugExhausted):
			response.Conflict(c, "Could not allocate a survey slug, try again.")
		default:
			h.logger.Error("survey duplication failed", zap.Error(err), zap.String("survey_id", id.String()))
			response.Internal(c, "Duplication failed.")
		}
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditCreate,
		Resource:   "survey",
		ResourceID: newID.String(),
		Details:    gin.H{"duplicated_from": id},
	})
	response.Created(c, gin.H{"survey_id": newID})
}

// PublicForm handles GET /public/:appSlug/:surveySlug. It returns everything
// the form page needs in one round trip: survey, questions and the current
// acceptance window state.
func (h *Handler) PublicForm(c *gin.Context) {
	s, err := h.repo.GetByAppAndSlug(c.Request.Context(), c.Param("appSlug"), c.Param("surveySlug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Survey not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	period, err := EvaluatePeriod(time.Now(), s.StartAt, s.EndAt)
	if err != nil {
		h.logger.Error("inconsistent survey window", zap.Error(err), zap.String("survey_id", s.ID.String()))
		response.Internal(c, "Database error occurred.")
		return
	}

	response.OK(c, gin.H{
		"survey":    s,
		"period":    period,
		"available": s.IsActive && period.IsActive,
	})
}

// UploadAsset handles POST /surveys/:id/assets (admin only). The multipart
// form carries "file" and a "kind" of header or bg. The object key is stored
// on the survey and a presigned URL is returned for immediate display.
func (h *Handler) UploadAsset(c *gin.Context) {
	if h.assets == nil {
		response.Internal(c, "Object storage is not configured.")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	kind := c.PostForm("kind")
	if kind != "header" && kind != "bg" {
		response.BadRequest(c, "kind must be header or bg")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	if file.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "file exceeds the 5MB limit")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType, file.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}

	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Survey not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "Failed to read upload.")
		return
	}
	defer src.Close()

	name := s.ID.String() + "-" + kind + "-" + uuid.NewString()
	key, err := h.assets.UploadImage(c.Request.Context(), storage.FolderSurveyAssets, name, contentType, src)
	if err != nil {
		h.logger.Error("asset upload failed", zap.Error(err), zap.String("survey_id", id.String()))
		response.Internal(c, "Upload failed.")
		return
	}

	if kind == "header" {
		s.HeaderImageURL = &key
	} else {
		s.BgImageURL = &key
	}
	if err := h.repo.Update(c.Request.Context(), s); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}

	url, err := h.assets.PresignGet(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("presign failed after upload", zap.Error(err), zap.String("key", key))
		url = ""
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditUpdate,
		Resource:   "survey",
		ResourceID: s.ID.String(),
		Details:    gin.H{"asset": kind},
	})
	response.OK(c, gin.H{"key": key, "url": url})
}
