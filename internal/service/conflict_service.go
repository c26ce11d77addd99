package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roadwise/roadwise-api/internal/dto"
	"github.com/roadwise/roadwise-api/internal/models"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
)

type conflictBookingReader interface {
	ListByInstructorAndDate(ctx context.Context, instructorID string, date time.Time) ([]models.Booking, error)
}

type conflictBlockReader interface {
	ListUnavailableByDate(ctx context.Context, instructorID string, date time.Time) ([]models.AvailabilitySlot, error)
}

// ConflictService decides whether a lesson window collides with existing
// bookings or explicitly blocked time.
type ConflictService struct {
	bookings  conflictBookingReader
	blocks    conflictBlockReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConflictService wires conflict detection dependencies.
func NewConflictService(bookings conflictBookingReader, blocks conflictBlockReader, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{
		bookings:  bookings,
		blocks:    blocks,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Check validates the request and reports all conflicts for the window.
func (s *ConflictService) Check(ctx context.Context, req dto.ConflictCheckRequest) ([]dto.ConflictResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict check payload")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	start, err := models.ParseClock(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	end, err := models.ParseClock(req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must precede end time")
	}

	conflicts := s.CheckWindow(ctx, req.InstructorID, date, start, end, req.ExcludeBookingID)
	responses := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, conflict := range conflicts {
		responses = append(responses, dto.ConflictResponse{
			Type:      string(conflict.Type),
			BookingID: conflict.BookingID,
			StartTime: models.FormatClock(conflict.StartMinute),
			EndTime:   models.FormatClock(conflict.EndMinute),
			Message:   conflict.Message,
		})
	}
	return responses, nil
}

// CheckWindow reports every collision between the candidate window and the
// instructor's day. A read failure never clears a window: the detector fails
// closed by reporting a synthetic conflict covering the whole window.
func (s *ConflictService) CheckWindow(ctx context.Context, instructorID string, date time.Time, startMinute, endMinute int, excludeBookingID string) []models.Conflict {
	conflicts := make([]models.Conflict, 0, 2)

	bookings, err := s.bookings.ListByInstructorAndDate(ctx, instructorID, date)
	if err != nil {
		s.logger.Error("booking lookup failed during conflict check, treating window as conflicted",
			zap.String("instructor_id", instructorID),
			zap.Time("date", date),
			zap.Error(err))
		s.metrics.RecordConflictCheck("error")
		return []models.Conflict{failClosedConflict(startMinute, endMinute)}
	}
	for _, booking := range bookings {
		if excludeBookingID != "" && booking.ID == excludeBookingID {
			continue
		}
		if overlaps(startMinute, endMinute, booking.StartMinute, booking.EndMinute()) {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictBooking,
				BookingID:   booking.ID,
				StartMinute: booking.StartMinute,
				EndMinute:   booking.EndMinute(),
				Message:     "window overlaps an existing booking",
			})
		}
	}

	blocked, err := s.blocks.ListUnavailableByDate(ctx, instructorID, date)
	if err != nil {
		s.logger.Error("blocked-time lookup failed during conflict check, treating window as conflicted",
			zap.String("instructor_id", instructorID),
			zap.Time("date", date),
			zap.Error(err))
		s.metrics.RecordConflictCheck("error")
		return []models.Conflict{failClosedConflict(startMinute, endMinute)}
	}
	for _, slot := range blocked {
		if overlaps(startMinute, endMinute, slot.StartMinute, slot.EndMinute) {
			conflicts = append(conflicts, models.Conflict{
				Type:        models.ConflictUnavailable,
				StartMinute: slot.StartMinute,
				EndMinute:   slot.EndMinute,
				Message:     "window overlaps blocked instructor time",
			})
		}
	}

	if len(conflicts) > 0 {
		s.metrics.RecordConflictCheck("conflict")
	} else {
		s.metrics.RecordConflictCheck("clear")
	}
	return conflicts
}

// overlaps applies half-open interval logic: windows that merely touch at a
// boundary do not collide.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

func failClosedConflict(startMinute, endMinute int) models.Conflict {
	return models.Conflict{
		Type:        models.ConflictOverlapping,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Message:     "conflict state could not be verified",
	}
}
