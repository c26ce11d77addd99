package models

import "time"

// RecurrencePattern enumerates supported availability recurrence intervals.
type RecurrencePattern string

const (
	RecurrenceNone    RecurrencePattern = "none"
	RecurrenceDaily   RecurrencePattern = "daily"
	RecurrenceWeekly  RecurrencePattern = "weekly"
	RecurrenceMonthly RecurrencePattern = "monthly"
)

// Interval returns the day step for a recurrence pattern. Monthly is a
// 30-day approximation, not calendar-month aware.
func (p RecurrencePattern) Interval() int {
	switch p {
	case RecurrenceDaily:
		return 1
	case RecurrenceWeekly:
		return 7
	case RecurrenceMonthly:
		return 30
	default:
		return 0
	}
}

// AvailabilitySlot represents a declared instructor time window. Times are
// stored as minutes from midnight in the school's local timezone.
type AvailabilitySlot struct {
	ID            string            `db:"id" json:"id"`
	InstructorID  string            `db:"instructor_id" json:"instructor_id"`
	SlotDate      time.Time         `db:"slot_date" json:"slot_date"`
	StartMinute   int               `db:"start_minute" json:"start_minute"`
	EndMinute     int               `db:"end_minute" json:"end_minute"`
	IsAvailable   bool              `db:"is_available" json:"is_available"`
	IsRecurring   bool              `db:"is_recurring" json:"is_recurring"`
	Recurrence    RecurrencePattern `db:"recurrence" json:"recurrence"`
	RecurrenceEnd *time.Time        `db:"recurrence_end" json:"recurrence_end,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}
