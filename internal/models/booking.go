package models

import "time"

// BookingStatus tracks the lifecycle of a lesson booking.
type BookingStatus string

const (
	BookingScheduled   BookingStatus = "scheduled"
	BookingConfirmed   BookingStatus = "confirmed"
	BookingInProgress  BookingStatus = "in_progress"
	BookingCompleted   BookingStatus = "completed"
	BookingCancelled   BookingStatus = "cancelled"
	BookingRescheduled BookingStatus = "rescheduled"
)

// Booking represents a student lesson with an instructor. DurationMinutes is
// joined from the booked course; lesson times use minutes from midnight.
type Booking struct {
	ID              string        `db:"id" json:"id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	InstructorID    string        `db:"instructor_id" json:"instructor_id"`
	CourseID        string        `db:"course_id" json:"course_id"`
	LessonDate      time.Time     `db:"lesson_date" json:"lesson_date"`
	StartMinute     int           `db:"start_minute" json:"start_minute"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	Status          BookingStatus `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// EndMinute returns the exclusive end of the lesson window.
func (b Booking) EndMinute() int {
	return b.StartMinute + b.DurationMinutes
}
