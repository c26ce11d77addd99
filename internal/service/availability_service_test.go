package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roadwise/roadwise-api/internal/dto"
	"github.com/roadwise/roadwise-api/internal/models"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
)

type slotStoreStub struct {
	inserted  []models.AvailabilitySlot
	listed    []models.AvailabilitySlot
	upserted  []models.AvailabilitySlot
	insertErr error
	listErr   error
}

func (s *slotStoreStub) InsertBatch(ctx context.Context, slots []models.AvailabilitySlot) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, slots...)
	return nil
}

func (s *slotStoreStub) ListByInstructorAndRange(ctx context.Context, instructorID string, from, to time.Time) ([]models.AvailabilitySlot, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listed, nil
}

func (s *slotStoreStub) Upsert(ctx context.Context, slot *models.AvailabilitySlot) error {
	s.upserted = append(s.upserted, *slot)
	return nil
}

type notifierStub struct {
	calls int
}

func (n *notifierStub) NotifyChange() { n.calls++ }

func newAvailabilityFixture() (*slotStoreStub, *notifierStub, *AvailabilityService) {
	store := &slotStoreStub{}
	notifier := &notifierStub{}
	instructors := &instructorReaderStub{
		items: []models.Instructor{{ID: "inst-1", FullName: "Dian Lestari", Active: true}},
	}
	return store, notifier, NewAvailabilityService(store, instructors, notifier, validator.New(), zap.NewNop())
}

func TestAvailabilityServiceCreateSingleSlot(t *testing.T) {
	store, notifier, service := newAvailabilityFixture()

	responses, err := service.Create(context.Background(), dto.CreateAvailabilityRequest{
		Slots: []dto.AvailabilitySlotInput{
			{InstructorID: "inst-1", Date: "2026-09-07", StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
		},
	})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, 540, store.inserted[0].StartMinute)
	assert.Equal(t, 720, store.inserted[0].EndMinute)
	assert.Equal(t, 1, notifier.calls)
}

func TestAvailabilityServiceWeeklyRecurrenceExpansion(t *testing.T) {
	store, _, service := newAvailabilityFixture()

	// 2026-09-07 through 2026-10-05 inclusive covers five Mondays.
	_, err := service.Create(context.Background(), dto.CreateAvailabilityRequest{
		Slots: []dto.AvailabilitySlotInput{
			{
				InstructorID:  "inst-1",
				Date:          "2026-09-07",
				StartTime:     "09:00",
				EndTime:       "12:00",
				IsAvailable:   true,
				IsRecurring:   true,
				Recurrence:    "weekly",
				RecurrenceEnd: "2026-10-05",
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, store.inserted, 5)
	for i, slot := range store.inserted {
		expected := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i*7)
		assert.Equal(t, expected, slot.SlotDate)
	}
}

func TestAvailabilityServiceDerivedOccurrencesAreOneOffs(t *testing.T) {
	store, _, service := newAvailabilityFixture()

	_, err := service.Create(context.Background(), dto.CreateAvailabilityRequest{
		Slots: []dto.AvailabilitySlotInput{
			{
				InstructorID:  "inst-1",
				Date:          "2026-09-07",
				StartTime:     "09:00",
				EndTime:       "12:00",
				IsAvailable:   true,
				IsRecurring:   true,
				Recurrence:    "weekly",
				RecurrenceEnd: "2026-09-21",
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, store.inserted, 3)

	// The first row is the recurring template.
	assert.True(t, store.inserted[0].IsRecurring)
	assert.Equal(t, models.RecurrenceWeekly, store.inserted[0].Recurrence)
	require.NotNil(t, store.inserted[0].RecurrenceEnd)

	// Derived occurrences must be editable on their own, so they carry no
	// recurrence marks.
	for _, slot := range store.inserted[1:] {
		assert.False(t, slot.IsRecurring, "derived occurrence on %s must not be flagged recurring", slot.SlotDate)
		assert.Equal(t, models.RecurrenceNone, slot.Recurrence)
		assert.Nil(t, slot.RecurrenceEnd)
	}
}

func TestAvailabilityServiceDailyRecurrenceStopsAtEnd(t *testing.T) {
	store, _, service := newAvailabilityFixture()

	_, err := service.Create(context.Background(), dto.CreateAvailabilityRequest{
		Slots: []dto.AvailabilitySlotInput{
			{
				InstructorID:  "inst-1",
				Date:          "2026-09-07",
				StartTime:     "08:00",
				EndTime:       "09:00",
				IsAvailable:   true,
				IsRecurring:   true,
				Recurrence:    "daily",
				RecurrenceEnd: "2026-09-09",
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, store.inserted, 3)
}

func TestAvailabilityServiceRejectsWholeBatchOnOneBadSlot(t *testing.T) {
	store, notifier, service := newAvailabilityFixture()

	_, err := service.Create(context.Background(), dto.CreateAvailabilityRequest{
		Slots: []dto.AvailabilitySlotInput{
			{InstructorID: "inst-1", Date: "2026-09-07", StartTime: "09:00", EndTime: "12:00", IsAvailable: true},
			{InstructorID: "inst-1", Date: "2026-09-08", StartTime: "14:00", EndTime: "13:00", IsAvailable: true},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.inserted, "nothing may be written when any slot is malformed")
	assert.Zero(t, notifier.calls)
}

func TestAvailabilityServiceRecurringSlotRequiresEndDate(t *testing.T) {
	store, _, service := newAvailabilityFixture()

	_, err := service.Create(context.Background(), dto.CreateAvailabilityRequest{
		Slots: []dto.AvailabilitySlotInput{
			{
				InstructorID: "inst-1",
				Date:         "2026-09-07",
				StartTime:    "09:00",
				EndTime:      "12:00",
				IsAvailable:  true,
				IsRecurring:  true,
				Recurrence:   "weekly",
			},
		},
	})
	require.Error(t, err)
	assert.Empty(t, store.inserted)
}

func TestAvailabilityServiceGetAvailabilityFailsSoft(t *testing.T) {
	store, _, service := newAvailabilityFixture()
	store.listErr = assert.AnError

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	responses, err := service.GetAvailability(context.Background(), "inst-1", from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestAvailabilityServiceUpdateUpserts(t *testing.T) {
	store, notifier, service := newAvailabilityFixture()

	resp, err := service.Update(context.Background(), dto.UpdateAvailabilityRequest{
		InstructorID: "inst-1",
		Date:         "2026-09-07",
		StartTime:    "09:00",
		EndTime:      "12:00",
		IsAvailable:  false,
	})
	require.NoError(t, err)
	require.Len(t, store.upserted, 1)
	assert.False(t, store.upserted[0].IsAvailable)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.Equal(t, 1, notifier.calls)
}
