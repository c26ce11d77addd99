package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadwise/roadwise-api/internal/dto"
	"github.com/roadwise/roadwise-api/internal/service"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
	"github.com/roadwise/roadwise-api/pkg/response"
)

type autoScheduler interface {
	AutoSchedule(ctx context.Context, req dto.AutoScheduleRequest) ([]dto.ScheduleSuggestionResponse, error)
}

type conflictChecker interface {
	Check(ctx context.Context, req dto.ConflictCheckRequest) ([]dto.ConflictResponse, error)
}

// ScheduleHandler exposes the auto-scheduling endpoints.
type ScheduleHandler struct {
	scheduler autoScheduler
	conflicts conflictChecker
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(scheduler *service.SchedulerService, conflicts *service.ConflictService) *ScheduleHandler {
	return &ScheduleHandler{scheduler: scheduler, conflicts: conflicts}
}

// AutoSuggest returns ranked, conflict-free lesson suggestions.
func (h *ScheduleHandler) AutoSuggest(c *gin.Context) {
	var req dto.AutoScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid auto schedule payload"))
		return
	}
	suggestions, err := h.scheduler.AutoSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}

// CheckConflicts reports collisions for a proposed lesson window.
func (h *ScheduleHandler) CheckConflicts(c *gin.Context) {
	var req dto.ConflictCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflict check payload"))
		return
	}
	conflicts, err := h.conflicts.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"hasConflicts": len(conflicts) > 0,
		"conflicts":    conflicts,
	}, nil)
}
