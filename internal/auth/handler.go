package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enqueta/backend/internal/audit"
	"github.com/enqueta/backend/internal/ctxkeys"
	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
	"github.com/enqueta/backend/pkg/utils"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Handler handles authentication endpoints.
type Handler struct {
	repo  *Repository
	jwt   *JWTService
	audit *audit.Recorder
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, recorder *audit.Recorder) *Handler {
	return &Handler{repo: repo, jwt: jwt, audit: recorder}
}

// Login handles POST /auth/login. Unknown email and wrong password share one
// message.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid data")
		return
	}

	u, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Unauthorized(c, "Invalid email or password.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}
	if !utils.CheckPassword(req.Password, u.PasswordHash) {
		response.Unauthorized(c, "Invalid email or password.")
		return
	}

	token, err := h.jwt.Generate(u.ID, u.Email, string(u.Role))
	if err != nil {
		response.Internal(c, "Failed to issue token.")
		return
	}

	// No session exists yet, so the actor is passed explicitly.
	h.audit.Record(c, audit.Entry{
		Action:   models.AuditLogin,
		Resource: "user",
		UserID:   &u.ID,
	})
	response.OK(c, gin.H{"token": token, "user": u.ToPublic()})
}

// Me handles GET /auth/me (authenticated).
func (h *Handler) Me(c *gin.Context) {
	v, ok := c.Get(ctxkeys.UserID)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Unauthorized(c, "account no longer exists")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}
	response.OK(c, u.ToPublic())
}
