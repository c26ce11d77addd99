package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadwise/roadwise-api/internal/dto"
	"github.com/roadwise/roadwise-api/internal/models"
	"github.com/roadwise/roadwise-api/internal/service"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
	"github.com/roadwise/roadwise-api/pkg/response"
)

type availabilityManager interface {
	Create(ctx context.Context, req dto.CreateAvailabilityRequest) ([]dto.AvailabilitySlotResponse, error)
	GetAvailability(ctx context.Context, instructorID string, from, to time.Time) ([]dto.AvailabilitySlotResponse, error)
	Update(ctx context.Context, req dto.UpdateAvailabilityRequest) (*dto.AvailabilitySlotResponse, error)
}

// AvailabilityHandler exposes instructor availability endpoints.
type AvailabilityHandler struct {
	service availabilityManager
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: svc}
}

// Create stores a batch of availability declarations.
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req dto.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleInstructor {
		for _, slot := range req.Slots {
			if slot.InstructorID != claims.UserID {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructors may only manage their own availability"))
				return
			}
		}
	}
	slots, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slots)
}

// List returns an instructor's slots for a date range.
func (h *AvailabilityHandler) List(c *gin.Context) {
	instructorID := c.Query("instructorId")
	from, err := parseDateQuery(c, "from", models.DateOnly(time.Now()))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDateQuery(c, "to", from.AddDate(0, 0, 30))
	if err != nil {
		response.Error(c, err)
		return
	}

	slots, err := h.service.GetAvailability(c.Request.Context(), instructorID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Update toggles availability for an exact window.
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req dto.UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability update payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleInstructor && req.InstructorID != claims.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "instructors may only manage their own availability"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return date, nil
}
