package service

import (
	"context"
	"fmt"
	"math/rand"
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

type blockReaderStub struct {
	byDay map[time.Time][]models.AvailabilitySlot
	err   error
}

func (s *blockReaderStub) ListUnavailableByDate(ctx context.Context, instructorID string, date time.Time) ([]models.AvailabilitySlot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byDay[models.DateOnly(date)], nil
}

func newConflictFixture() (*bookingReaderStub, *blockReaderStub, *ConflictService) {
	bookings := &bookingReaderStub{byDay: make(map[time.Time][]models.Booking)}
	blocks := &blockReaderStub{byDay: make(map[time.Time][]models.AvailabilitySlot)}
	return bookings, blocks, NewConflictService(bookings, blocks, nil, validator.New(), zap.NewNop())
}

func TestConflictServiceDetectsBookingOverlap(t *testing.T) {
	bookings, _, service := newConflictFixture()
	bookings.byDay[testDate] = []models.Booking{
		booking("booking-1", "inst-1", testDate, "10:00", 60),
	}

	conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, 630, 690, "")
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictBooking, conflicts[0].Type)
	assert.Equal(t, "booking-1", conflicts[0].BookingID)
}

func TestConflictServiceTouchingWindowsDoNotCollide(t *testing.T) {
	bookings, _, service := newConflictFixture()
	bookings.byDay[testDate] = []models.Booking{
		booking("booking-1", "inst-1", testDate, "10:00", 60),
	}

	// 09:00-10:00 ends exactly where the booking starts.
	conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, 540, 600, "")
	assert.Empty(t, conflicts)

	// 11:00-12:00 starts exactly where the booking ends.
	conflicts = service.CheckWindow(context.Background(), "inst-1", testDate, 660, 720, "")
	assert.Empty(t, conflicts)
}

func TestConflictServiceExcludesRescheduledBooking(t *testing.T) {
	bookings, _, service := newConflictFixture()
	bookings.byDay[testDate] = []models.Booking{
		booking("booking-1", "inst-1", testDate, "10:00", 60),
	}

	conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, 600, 660, "booking-1")
	assert.Empty(t, conflicts, "a booking being moved must not conflict with itself")
}

func TestConflictServiceDetectsBlockedTime(t *testing.T) {
	_, blocks, service := newConflictFixture()
	blocks.byDay[testDate] = []models.AvailabilitySlot{
		{InstructorID: "inst-1", SlotDate: testDate, StartMinute: 720, EndMinute: 780, IsAvailable: false},
	}

	conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, 750, 810, "")
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictUnavailable, conflicts[0].Type)
}

func TestConflictServiceReportsAllCollisions(t *testing.T) {
	bookings, blocks, service := newConflictFixture()
	bookings.byDay[testDate] = []models.Booking{
		booking("booking-1", "inst-1", testDate, "10:00", 60),
	}
	blocks.byDay[testDate] = []models.AvailabilitySlot{
		{InstructorID: "inst-1", SlotDate: testDate, StartMinute: 645, EndMinute: 705, IsAvailable: false},
	}

	conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, 630, 700, "")
	require.Len(t, conflicts, 2)
	assert.Equal(t, models.ConflictBooking, conflicts[0].Type)
	assert.Equal(t, models.ConflictUnavailable, conflicts[1].Type)
}

func TestConflictServiceRandomWindowsMatchOverlapOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		bookings, _, service := newConflictFixture()

		day := make([]models.Booking, 0, 4)
		for b := 0; b < 1+rng.Intn(4); b++ {
			start := 480 + rng.Intn(480)
			day = append(day, models.Booking{
				ID:              fmt.Sprintf("booking-%d", b),
				InstructorID:    "inst-1",
				LessonDate:      testDate,
				StartMinute:     start,
				DurationMinutes: 30 + 15*rng.Intn(6),
				Status:          models.BookingConfirmed,
			})
		}
		bookings.byDay[testDate] = day

		start := 480 + rng.Intn(480)
		end := start + 30 + 15*rng.Intn(6)

		expected := 0
		for _, b := range day {
			if start < b.EndMinute() && b.StartMinute < end {
				expected++
			}
		}

		conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, start, end, "")
		assert.Len(t, conflicts, expected, "window %d [%d,%d) against %+v", i, start, end, day)
	}
}

func TestConflictServiceFailsClosedOnReadError(t *testing.T) {
	bookings, _, service := newConflictFixture()
	bookings.listErr = assert.AnError

	conflicts := service.CheckWindow(context.Background(), "inst-1", testDate, 540, 600, "")
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictOverlapping, conflicts[0].Type)
	assert.Equal(t, 540, conflicts[0].StartMinute)
	assert.Equal(t, 600, conflicts[0].EndMinute)
}

func TestConflictServiceCheckValidatesPayload(t *testing.T) {
	_, _, service := newConflictFixture()

	_, err := service.Check(context.Background(), dto.ConflictCheckRequest{
		InstructorID: "inst-1",
		Date:         "2026-09-07",
		StartTime:    "11:00",
		EndTime:      "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestConflictServiceCheckMapsResponses(t *testing.T) {
	bookings, _, service := newConflictFixture()
	bookings.byDay[testDate] = []models.Booking{
		booking("booking-1", "inst-1", testDate, "10:00", 60),
	}

	responses, err := service.Check(context.Background(), dto.ConflictCheckRequest{
		InstructorID: "inst-1",
		Date:         "2026-09-07",
		StartTime:    "10:30",
		EndTime:      "11:30",
	})
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "booking", responses[0].Type)
	assert.Equal(t, "10:00", responses[0].StartTime)
	assert.Equal(t, "11:00", responses[0].EndTime)
}
