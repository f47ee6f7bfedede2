package questions

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
)

// QuestionRequest is the body for creating or updating a question.
type QuestionRequest struct {
	Type      string   `json:"type" binding:"required"`
	Label     string   `json:"label" binding:"required"`
	Required  bool     `json:"required"`
	MaxLength *int     `json:"max_length"`
	Options   []string `json:"options"`
}

// ReorderRequest is the body for PUT /surveys/:id/questions/order.
type ReorderRequest struct {
	QuestionIDs []string `json:"question_ids" binding:"required,min=1"`
}

// Handler handles question HTTP endpoints (all admin only).
type Handler struct {
	repo  *Repository
	audit *audit.Recorder
}

// NewHandler creates a question handler.
func NewHandler(repo *Repository, recorder *audit.Recorder) *Handler {
	return &Handler{repo: repo, audit: recorder}
}

func validate(req *QuestionRequest) (models.QuestionType, string) {
	qt := models.QuestionType(req.Type)
	if !models.ValidQuestionType(qt) {
		return "", "Invalid data"
	}
	if qt.HasOptions() && len(req.Options) == 0 {
		return "", "Invalid data"
	}
	if !qt.HasOptions() && len(req.Options) > 0 {
		return "", "Invalid data"
	}
	return qt, ""
}

// Create handles POST /surveys/:id/questions.
func (h *Handler) Create(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	qt, msg := validate(&req)
	if msg != "" {
		response.BadRequest(c, msg)
		return
	}

	q := &models.Question{
		SurveyID:  surveyID,
		Type:      qt,
		Label:     req.Label,
		Required:  req.Required,
		MaxLength: req.MaxLength,
		Options:   req.Options,
	}
	if err := h.repo.Create(c.Request.Context(), q); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditCreate,
		Resource:   "question",
		ResourceID: q.ID.String(),
		Details:    gin.H{"survey_id": surveyID, "label": q.Label},
	})
	response.Created(c, q)
}

// Update handles PUT /questions/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	qt, msg := validate(&req)
	if msg != "" {
		response.BadRequest(c, msg)
		return
	}

	q, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Question not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	q.Type = qt
	q.Label = req.Label
	q.Required = req.Required
	q.MaxLength = req.MaxLength
	q.Options = req.Options
	if err := h.repo.Update(c.Request.Context(), q); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditUpdate,
		Resource:   "question",
		ResourceID: q.ID.String(),
		Details:    gin.H{"label": q.Label},
	})
	response.OK(c, q)
}

// Delete handles DELETE /questions/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid question id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Question not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}
	h.audit.Record(c, audit.Entry{
		Action:     models.AuditDelete,
		Resource:   "question",
		ResourceID: id.String(),
	})
	response.NoContent(c)
}

// Reorder handles PUT /surveys/:id/questions/order. The whole batch applies
// or none of it does.
func (h *Handler) Reorder(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.QuestionIDs))
	seen := make(map[uuid.UUID]bool, len(req.QuestionIDs))
	for _, s := range req.QuestionIDs {
		id, err := uuid.Parse(s)
		if err != nil || seen[id] {
			response.BadRequest(c, "Invalid data")
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if err := h.repo.Reorder(c.Request.Context(), surveyID, ids); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.BadRequest(c, "Invalid data")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditReorder,
		Resource:   "question",
		ResourceID: surveyID.String(),
		Details:    gin.H{"question_ids": req.QuestionIDs},
	})
	response.NoContent(c)
}
