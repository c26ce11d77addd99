package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roadwise/roadwise-api/internal/dto"
	"github.com/roadwise/roadwise-api/internal/models"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
)

// Recurring definitions expand into concrete day rows. The cap keeps a
// distant recurrence end from fanning out into unbounded inserts.
const maxExpansionPerSlot = 366

type availabilitySlotStore interface {
	InsertBatch(ctx context.Context, slots []models.AvailabilitySlot) error
	ListByInstructorAndRange(ctx context.Context, instructorID string, from, to time.Time) ([]models.AvailabilitySlot, error)
	Upsert(ctx context.Context, slot *models.AvailabilitySlot) error
}

type availabilityInstructorReader interface {
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type availabilityChangeNotifier interface {
	NotifyChange()
}

// AvailabilityService manages instructor availability declarations.
type AvailabilityService struct {
	slots       availabilitySlotStore
	instructors availabilityInstructorReader
	notifier    availabilityChangeNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAvailabilityService wires availability dependencies.
func NewAvailabilityService(slots availabilitySlotStore, instructors availabilityInstructorReader, notifier availabilityChangeNotifier, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		slots:       slots,
		instructors: instructors,
		notifier:    notifier,
		validator:   validate,
		logger:      logger,
	}
}

// Create validates and stores a batch of availability declarations. The batch
// is all-or-nothing: one malformed slot rejects the whole request and nothing
// is written.
func (s *AvailabilityService) Create(ctx context.Context, req dto.CreateAvailabilityRequest) ([]dto.AvailabilitySlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}

	expanded := make([]models.AvailabilitySlot, 0, len(req.Slots))
	for i, input := range req.Slots {
		slots, err := s.expandSlot(ctx, input)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot %d: %s", i, appErrors.FromError(err).Message))
		}
		expanded = append(expanded, slots...)
	}

	if err := s.slots.InsertBatch(ctx, expanded); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store availability slots")
	}

	if s.notifier != nil {
		s.notifier.NotifyChange()
	}

	responses := make([]dto.AvailabilitySlotResponse, 0, len(expanded))
	for _, slot := range expanded {
		responses = append(responses, toAvailabilityResponse(slot))
	}
	return responses, nil
}

// GetAvailability lists an instructor's declared slots inside [from, to].
// Read failures degrade to an empty result so a flaky read never blocks the
// calendar view.
func (s *AvailabilityService) GetAvailability(ctx context.Context, instructorID string, from, to time.Time) ([]dto.AvailabilitySlotResponse, error) {
	if instructorID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "instructor id is required")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "range end must not precede range start")
	}

	slots, err := s.slots.ListByInstructorAndRange(ctx, instructorID, from, to)
	if err != nil {
		s.logger.Warn("availability read failed, returning empty set",
			zap.String("instructor_id", instructorID),
			zap.Error(err))
		return []dto.AvailabilitySlotResponse{}, nil
	}

	responses := make([]dto.AvailabilitySlotResponse, 0, len(slots))
	for _, slot := range slots {
		responses = append(responses, toAvailabilityResponse(slot))
	}
	return responses, nil
}

// Update toggles availability for an exact window, creating the row when the
// window was never declared.
func (s *AvailabilityService) Update(ctx context.Context, req dto.UpdateAvailabilityRequest) (*dto.AvailabilitySlotResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability update payload")
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

	slot := &models.AvailabilitySlot{
		InstructorID: req.InstructorID,
		SlotDate:     date,
		StartMinute:  start,
		EndMinute:    end,
		IsAvailable:  req.IsAvailable,
	}
	if err := s.slots.Upsert(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update availability slot")
	}

	if s.notifier != nil {
		s.notifier.NotifyChange()
	}

	resp := toAvailabilityResponse(*slot)
	return &resp, nil
}

func (s *AvailabilityService) expandSlot(ctx context.Context, input dto.AvailabilitySlotInput) ([]models.AvailabilitySlot, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	start, err := models.ParseClock(input.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	end, err := models.ParseClock(input.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start time must precede end time")
	}

	if s.instructors != nil {
		if _, err := s.instructors.FindByID(ctx, input.InstructorID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("instructor %s not found", input.InstructorID))
		}
	}

	base := models.AvailabilitySlot{
		InstructorID: input.InstructorID,
		SlotDate:     date,
		StartMinute:  start,
		EndMinute:    end,
		IsAvailable:  input.IsAvailable,
		Recurrence:   models.RecurrenceNone,
	}

	if !input.IsRecurring {
		return []models.AvailabilitySlot{base}, nil
	}

	pattern := models.RecurrencePattern(input.Recurrence)
	interval := pattern.Interval()
	if interval == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurring slot requires a daily, weekly or monthly pattern")
	}
	if input.RecurrenceEnd == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurring slot requires a recurrence end date")
	}
	until, err := models.ParseDate(input.RecurrenceEnd)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if until.Before(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "recurrence end must not precede the slot date")
	}

	base.IsRecurring = true
	base.Recurrence = pattern
	base.RecurrenceEnd = &until

	// The first row carries the recurring definition; every derived occurrence
	// is stored as a plain one-off so it can be edited or blocked individually
	// without touching the template.
	slots := make([]models.AvailabilitySlot, 0, 8)
	for current := date; !current.After(until); current = current.AddDate(0, 0, interval) {
		instance := base
		instance.SlotDate = current
		if !current.Equal(date) {
			instance.IsRecurring = false
			instance.Recurrence = models.RecurrenceNone
			instance.RecurrenceEnd = nil
		}
		slots = append(slots, instance)
		if len(slots) >= maxExpansionPerSlot {
			break
		}
	}
	return slots, nil
}

func toAvailabilityResponse(slot models.AvailabilitySlot) dto.AvailabilitySlotResponse {
	return dto.AvailabilitySlotResponse{
		ID:           slot.ID,
		InstructorID: slot.InstructorID,
		Date:         slot.SlotDate.Format(models.DateLayout),
		StartTime:    models.FormatClock(slot.StartMinute),
		EndTime:      models.FormatClock(slot.EndMinute),
		IsAvailable:  slot.IsAvailable,
		IsRecurring:  slot.IsRecurring,
		Recurrence:   string(slot.Recurrence),
	}
}
