package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadwise/roadwise-api/internal/models"
	"github.com/roadwise/roadwise-api/internal/service"
	"github.com/roadwise/roadwise-api/pkg/response"
)

type insightsProvider interface {
	GetSchedulingInsights(ctx context.Context, instructorID string) *models.SchedulingInsights
	Export(ctx context.Context, format, instructorID string) (string, string, []byte, error)
}

// InsightsHandler exposes scheduling analytics endpoints.
type InsightsHandler struct {
	service insightsProvider
}

// NewInsightsHandler constructs the handler.
func NewInsightsHandler(svc *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: svc}
}

// Get returns the scheduling insights bundle. Instructors are scoped to
// their own report.
func (h *InsightsHandler) Get(c *gin.Context) {
	instructorID := c.Query("instructorId")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleInstructor {
		instructorID = claims.UserID
	}
	insights := h.service.GetSchedulingInsights(c.Request.Context(), instructorID)
	response.JSON(c, http.StatusOK, insights, nil)
}

// Export streams the insights report as CSV or PDF.
func (h *InsightsHandler) Export(c *gin.Context) {
	instructorID := c.Query("instructorId")
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleInstructor {
		instructorID = claims.UserID
	}
	filename, contentType, payload, err := h.service.Export(c.Request.Context(), c.DefaultQuery("format", "csv"), instructorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}
