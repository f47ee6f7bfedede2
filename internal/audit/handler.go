package audit

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
)

// Handler serves the audit log to admins.
type Handler struct {
	repo *Repository
}

// NewHandler creates an audit handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /audit-logs?limit=N (admin only).
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}
	if list == nil {
		list = []models.AuditLog{}
	}
	response.OK(c, list)
}
