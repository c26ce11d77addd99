package models

import "time"

// ConflictType classifies why a candidate window is not bookable.
type ConflictType string

const (
	ConflictBooking     ConflictType = "booking"
	ConflictUnavailable ConflictType = "unavailable"
	ConflictOverlapping ConflictType = "overlapping"
)

// Conflict describes a collision between a candidate window and existing data.
type Conflict struct {
	Type        ConflictType `json:"type"`
	BookingID   string       `json:"booking_id,omitempty"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`
	Message     string       `json:"message"`
}

// ScheduleCandidate is a conflict-free lesson window under consideration.
// It only lives for the duration of one scheduling request.
type ScheduleCandidate struct {
	InstructorID   string
	InstructorName string
	Date           time.Time
	StartMinute    int
	EndMinute      int
}

// ScheduleSuggestion is a scored candidate returned to the caller.
type ScheduleSuggestion struct {
	ScheduleCandidate
	Score   int
	Reasons []string
}
