package users

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/middleware"
	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
	"github.com/enqueta/backend/pkg/utils"
)

const minPasswordLength = 8

// UserRequest is the body for creating or updating an account. On update an
// empty password means "keep the current one".
type UserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// validate returns per-field messages. User management is the one admin form
// that surfaces field-level detail instead of a flat "Invalid data".
func (req *UserRequest) validate(passwordRequired bool) map[string]string {
	fields := make(map[string]string)
	if req.Email == "" {
		fields["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(req.Email); err != nil {
		fields["email"] = "Email is not a valid address."
	}
	if req.Name == "" {
		fields["name"] = "Name is required."
	}
	if req.Role != string(models.RoleAdmin) && req.Role != string(models.RoleUser) {
		fields["role"] = "Role must be ADMIN or USER."
	}
	if req.Password == "" {
		if passwordRequired {
			fields["password"] = "Password is required."
		}
	} else if len(req.Password) < minPasswordLength {
		fields["password"] = "Password must be at least 8 characters."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func fieldErrors(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid data",
		"fields":  fields,
	})
}

// Handler handles account management endpoints (all admin only).
type Handler struct {
	repo  *Repository
	audit *audit.Recorder
}

// NewHandler creates a user handler.
func NewHandler(repo *Repository, recorder *audit.Recorder) *Handler {
	return &Handler{repo: repo, audit: recorder}
}

// Create handles POST /users.
func (h *Handler) Create(c *gin.Context) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	if fields := req.validate(true); fields != nil {
		fieldErrors(c, fields)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "Failed to create user.")
		return
	}
	u := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         models.Role(req.Role),
	}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			fieldErrors(c, map[string]string{"email": "Email is already in use."})
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditCreate,
		Resource:   "user",
		ResourceID: u.ID.String(),
		Details:    gin.H{"email": u.Email, "role": u.Role},
	})
	response.Created(c, u.ToPublic())
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	public := make([]models.UserPublic, 0, len(list))
	for i := range list {
		public = append(public, list[i].ToPublic())
	}
	response.OK(c, public)
}

// Update handles PUT /users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}
	if fields := req.validate(false); fields != nil {
		fieldErrors(c, fields)
		return
	}

	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "User not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	u.Email = req.Email
	u.Name = req.Name
	u.Role = models.Role(req.Role)
	u.PasswordHash = ""
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			response.Internal(c, "Failed to update user.")
			return
		}
		u.PasswordHash = hash
	}
	if err := h.repo.Update(c.Request.Context(), u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			fieldErrors(c, map[string]string{"email": "Email is already in use."})
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	h.audit.Record(c, audit.Entry{
		Action:     models.AuditUpdate,
		Resource:   "user",
		ResourceID: u.ID.String(),
		Details:    gin.H{"email": u.Email, "role": u.Role},
	})
	response.OK(c, u.ToPublic())
}

// Delete handles DELETE /users/:id. Deleting your own account is rejected.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if v, ok := c.Get(middleware.ContextUserID); ok {
		if self, ok := v.(uuid.UUID); ok && self == id {
			response.BadRequest(c, "You cannot delete your own account.")
			return
		}
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	h.audit.Record(c, audit.Entry{
		Action:     models.AuditDelete,
		Resource:   "user",
		ResourceID: id.String(),
	})
	response.NoContent(c)
}
