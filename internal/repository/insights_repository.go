package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roadwise/roadwise-api/internal/models"
)

// InsightsRepository runs the aggregate queries behind scheduling insights.
type InsightsRepository struct {
	db *sqlx.DB
}

// NewInsightsRepository creates a new insights repository.
func NewInsightsRepository(db *sqlx.DB) *InsightsRepository {
	return &InsightsRepository{db: db}
}

// PeakHours returns booking counts grouped by starting hour inside the window,
// optionally filtered to one instructor.
func (r *InsightsRepository) PeakHours(ctx context.Context, from, to time.Time, instructorID string) ([]models.PeakHour, error) {
	var query strings.Builder
	query.WriteString(`SELECT start_minute / 60 AS hour, COUNT(*) AS bookings FROM bookings WHERE status <> 'cancelled' AND lesson_date >= $1 AND lesson_date <= $2`)
	args := []interface{}{from, to}
	if instructorID != "" {
		query.WriteString(fmt.Sprintf(" AND instructor_id = $%d", len(args)+1))
		args = append(args, instructorID)
	}
	query.WriteString(" GROUP BY start_minute / 60 ORDER BY bookings DESC, hour ASC")

	var hours []models.PeakHour
	if err := r.db.SelectContext(ctx, &hours, query.String(), args...); err != nil {
		return nil, fmt.Errorf("aggregate peak hours: %w", err)
	}
	return hours, nil
}

// BusyDays returns booking counts grouped by weekday name inside the window.
func (r *InsightsRepository) BusyDays(ctx context.Context, from, to time.Time, instructorID string) ([]models.BusyDay, error) {
	var query strings.Builder
	query.WriteString(`SELECT TRIM(TO_CHAR(lesson_date, 'Day')) AS weekday, COUNT(*) AS bookings FROM bookings WHERE status <> 'cancelled' AND lesson_date >= $1 AND lesson_date <= $2`)
	args := []interface{}{from, to}
	if instructorID != "" {
		query.WriteString(fmt.Sprintf(" AND instructor_id = $%d", len(args)+1))
		args = append(args, instructorID)
	}
	query.WriteString(" GROUP BY TRIM(TO_CHAR(lesson_date, 'Day')) ORDER BY bookings DESC, weekday ASC")

	var days []models.BusyDay
	if err := r.db.SelectContext(ctx, &days, query.String(), args...); err != nil {
		return nil, fmt.Errorf("aggregate busy days: %w", err)
	}
	return days, nil
}

// Utilization reports booked minutes as a percentage of declared available
// minutes per active instructor over the window. Instructors without declared
// availability report zero available minutes and zero utilization.
func (r *InsightsRepository) Utilization(ctx context.Context, from, to time.Time) ([]models.InstructorUtilization, error) {
	const query = `SELECT i.id AS instructor_id, i.full_name AS instructor_name,
            COALESCE(b.booked_minutes, 0) AS booked_minutes,
            COALESCE(a.available_minutes, 0) AS available_minutes
        FROM instructors i
        LEFT JOIN (
            SELECT b.instructor_id, SUM(c.duration_minutes) AS booked_minutes
            FROM bookings b JOIN courses c ON c.id = b.course_id
            WHERE b.status <> 'cancelled' AND b.lesson_date >= $1 AND b.lesson_date <= $2
            GROUP BY b.instructor_id
        ) b ON b.instructor_id = i.id
        LEFT JOIN (
            SELECT instructor_id, SUM(end_minute - start_minute) AS available_minutes
            FROM availability_slots
            WHERE is_available = TRUE AND slot_date >= $1 AND slot_date <= $2
            GROUP BY instructor_id
        ) a ON a.instructor_id = i.id
        WHERE i.active = TRUE
        ORDER BY i.full_name ASC`

	var rows []models.InstructorUtilization
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("aggregate instructor utilization: %w", err)
	}
	for i := range rows {
		if rows[i].AvailableMinutes > 0 {
			rows[i].Utilization = float64(rows[i].BookedMinutes) / float64(rows[i].AvailableMinutes) * 100
		}
	}
	return rows, nil
}

// PopularCourses returns the most-booked courses inside the window with their
// average lesson rating, capped at limit.
func (r *InsightsRepository) PopularCourses(ctx context.Context, from, to time.Time, limit int) ([]models.PopularCourse, error) {
	const query = `SELECT c.id AS course_id, c.name AS course_name,
            COUNT(b.id) AS bookings,
            COALESCE(AVG(lr.rating), 0) AS average_rating
        FROM courses c
        JOIN bookings b ON b.course_id = c.id AND b.status <> 'cancelled'
        LEFT JOIN lesson_ratings lr ON lr.booking_id = b.id
        WHERE b.lesson_date >= $1 AND b.lesson_date <= $2
        GROUP BY c.id, c.name
        ORDER BY bookings DESC, c.name ASC
        LIMIT $3`

	var courses []models.PopularCourse
	if err := r.db.SelectContext(ctx, &courses, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("aggregate popular courses: %w", err)
	}
	return courses, nil
}
