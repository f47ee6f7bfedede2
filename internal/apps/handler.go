package apps

import (
	"errors"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
)

// slugPattern constrains app slugs to lowercase alphanumerics and hyphens.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// AppRequest is the body for creating or updating an app.
type AppRequest struct {
	Name             string  `json:"name" binding:"required"`
	Slug             string  `json:"slug" binding:"required"`
	PrivacyPolicyURL *string `json:"privacy_policy_url"`
	FaviconURL       *string `json:"favicon_url"`
	Copyright        *string `json:"copyright"`
	ContactURL       *string `json:"contact_url"`
}

// Handler handles app HTTP endpoints.
type Handler struct {
	repo  *Repository
	audit *audit.Recorder
}

// NewHandler creates an app handler.
func NewHandler(repo *Repository, recorder *audit.Recorder) *Handler {
	return &Handler{repo: repo, audit: recorder}
}

// Create handles POST /apps (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req AppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		response.BadRequest(c, "Invalid data")
		return
	}

	a := &models.App{
		Name:             req.Name,
		Slug:             req.Slug,
		PrivacyPolicyURL: req.PrivacyPolicyURL,
		FaviconURL:       req.FaviconURL,
		Copyright:        req.Copyright,
		ContactURL:       req.ContactURL,
	}
	if err := h.repo.Create(c.Request.Context(), a); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "An app with this slug already exists.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditCreate,
		Resource:   "app",
		ResourceID: a.ID.String(),
		Details:    gin.H{"name": a.Name, "slug": a.Slug},
	})
	response.Created(c, a)
}

// List handles GET /apps (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	if list == nil {
		list = []models.App{}
	}
	response.OK(c, list)
}

// GetByID handles GET /apps/:id (admin only).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid app id")
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "App not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}
	response.OK(c, a)
}

// Update handles PUT /apps/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid app id")
		return
	}
	var req AppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		response.BadRequest(c, "Invalid data")
		return
	}

	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "App not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	a.Name = req.Name
	a.Slug = req.Slug
	a.PrivacyPolicyURL = req.PrivacyPolicyURL
	a.FaviconURL = req.FaviconURL
	a.Copyright = req.Copyright
	a.ContactURL = req.ContactURL
	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "An app with this slug already exists.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditUpdate,
		Resource:   "app",
		ResourceID: a.ID.String(),
		Details:    gin.H{"name": a.Name, "slug": a.Slug},
	})
	response.OK(c, a)
}

// Delete handles DELETE /apps/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid app id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	h.audit.Record(c, audit.Entry{
		Action:     models.AuditDelete,
		Resource:   "app",
		ResourceID: id.String(),
	})
	response.NoContent(c)
}
