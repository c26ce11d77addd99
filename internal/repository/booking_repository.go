package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roadwise/roadwise-api/internal/models"
)

// BookingRepository exposes read access to lesson bookings. Booking writes
// belong to the booking-commit flow, which is a separate service.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListByInstructorAndDate returns non-cancelled bookings for one instructor
// day with the lesson duration joined from the booked course.
func (r *BookingRepository) ListByInstructorAndDate(ctx context.Context, instructorID string, date time.Time) ([]models.Booking, error) {
	const query = `SELECT b.id, b.student_id, b.instructor_id, b.course_id, b.lesson_date, b.start_minute, c.duration_minutes, b.status, b.created_at, b.updated_at
        FROM bookings b
        JOIN courses c ON c.id = b.course_id
        WHERE b.instructor_id = $1 AND b.lesson_date = $2 AND b.status <> 'cancelled'
        ORDER BY b.start_minute ASC`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, instructorID, date); err != nil {
		return nil, fmt.Errorf("list bookings by instructor and date: %w", err)
	}
	return bookings, nil
}

// CountActiveInRange counts an instructor's non-cancelled bookings whose
// lesson date falls inside [from, to]. Used as the workload signal.
func (r *BookingRepository) CountActiveInRange(ctx context.Context, instructorID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM bookings WHERE instructor_id = $1 AND lesson_date >= $2 AND lesson_date <= $3 AND status <> 'cancelled'`
	var total int
	if err := r.db.GetContext(ctx, &total, query, instructorID, from, to); err != nil {
		return 0, fmt.Errorf("count active bookings: %w", err)
	}
	return total, nil
}
