package submissions

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
)

// SubmitRequest is the body for POST /public/submissions.
type SubmitRequest struct {
	SurveyID     string                `json:"survey_id" binding:"required,uuid"`
	UserID       string                `json:"user_id"`
	Answers      map[string]FieldValue `json:"answers"`
	CaptchaToken string                `json:"captcha_token"`
}

// Handler handles the public submission endpoint and the admin response
// endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	audit   *audit.Recorder
}

// NewHandler creates a submission handler.
func NewHandler(service *Service, repo *Repository, recorder *audit.Recorder) *Handler {
	return &Handler{service: service, repo: repo, audit: recorder}
}

// Submit handles POST /public/submissions. All domain outcomes come back as
// the envelope's error string; the status code mirrors the failure kind.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	if req.UserID == "" {
		response.BadRequest(c, "User ID is required.")
		return
	}
	surveyID, err := uuid.Parse(req.SurveyID)
	if err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}

	result := h.service.Submit(c.Request.Context(), SubmitInput{
		SurveyID:     surveyID,
		UserID:       req.UserID,
		Answers:      req.Answers,
		CaptchaToken: req.CaptchaToken,
		RemoteIP:     c.ClientIP(),
	})
	if !result.Success {
		switch result.Kind {
		case KindNotFound:
			response.NotFound(c, result.Err)
		case KindConflict:
			response.Conflict(c, result.Err)
		case KindInternal:
			response.Internal(c, result.Err)
		default:
			response.BadRequest(c, result.Err)
		}
		return
	}
	response.Created(c, gin.H{"response_id": result.ResponseID})
}

// ListBySurvey handles GET /surveys/:id/responses (admin only).
func (h *Handler) ListBySurvey(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}
	list, err := h.repo.ListBySurvey(c.Request.Context(), surveyID)
	if err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	if list == nil {
		list = []models.Response{}
	}
	response.OK(c, list)
}

// Delete handles DELETE /responses/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid response id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	h.audit.Record(c, audit.Entry{
		Action:     models.AuditDelete,
		Resource:   "response",
		ResourceID: id.String(),
	})
	response.NoContent(c)
}
