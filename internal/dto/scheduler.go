package dto

// AutoScheduleRequest asks the scheduler for ranked lesson suggestions.
// Dates use YYYY-MM-DD, times use HH:MM.
type AutoScheduleRequest struct {
	CourseID        string   `json:"courseId" validate:"required"`
	StudentID       string   `json:"studentId" validate:"required"`
	InstructorID    string   `json:"instructorId"`
	PreferredDates  []string `json:"preferredDates"`
	PreferredTimes  []string `json:"preferredTimes"`
	DurationMinutes int      `json:"durationMinutes" validate:"omitempty,gt=0"`
	EarliestDate    string   `json:"earliestDate"`
	LatestDate      string   `json:"latestDate"`
	AvoidWeekends   bool     `json:"avoidWeekends"`
}

// ScheduleSuggestionResponse is one ranked suggestion returned to callers.
type ScheduleSuggestionResponse struct {
	InstructorID   string   `json:"instructorId"`
	InstructorName string   `json:"instructorName"`
	Date           string   `json:"date"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	Score          int      `json:"score"`
	Reasons        []string `json:"reasons"`
}

// ConflictCheckRequest asks whether a window is bookable for an instructor.
type ConflictCheckRequest struct {
	InstructorID     string `json:"instructorId" validate:"required"`
	Date             string `json:"date" validate:"required"`
	StartTime        string `json:"startTime" validate:"required"`
	EndTime          string `json:"endTime" validate:"required"`
	ExcludeBookingID string `json:"excludeBookingId"`
}

// ConflictResponse describes one detected conflict.
type ConflictResponse struct {
	Type      string `json:"type"`
	BookingID string `json:"bookingId,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Message   string `json:"message"`
}
