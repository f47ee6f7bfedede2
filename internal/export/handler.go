package export

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/enqueta/backend/internal/models"
	"github.com/enqueta/backend/pkg/response"
)

// SurveyStore loads the survey whose responses are exported.
type SurveyStore interface {
	GetByIDWithQuestions(ctx context.Context, id uuid.UUID) (*models.Survey, error)
}

// ResponseStore lists a survey's responses with answers.
type ResponseStore interface {
	ListBySurvey(ctx context.Context, surveyID uuid.UUID) ([]models.Response, error)
}

// Handler serves CSV downloads of survey responses.
type Handler struct {
	surveys   SurveyStore
	responses ResponseStore
}

// NewHandler creates an export handler.
func NewHandler(surveys SurveyStore, responses ResponseStore) *Handler {
	return &Handler{surveys: surveys, responses: responses}
}

// Download handles GET /surveys/:id/export (admin only). Columns follow the
// survey's question order; cell values are escaped against spreadsheet
// formula injection.
func (h *Handler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid survey id")
		return
	}

	survey, err := h.surveys.GetByIDWithQuestions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "Survey not found.")
			return
		}
		response.Internal(c, "Database error occurred.")
		return
	}

	list, err := h.responses.ListBySurvey(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "Database error occurred.")
		return
	}

	doc := BuildDocument(survey.Questions, list)
	c.Header("Content-Disposition", `attachment; filename="`+survey.Slug+`-responses.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(doc))
}
