package dto

// AvailabilitySlotInput declares one instructor time window.
type AvailabilitySlotInput struct {
	InstructorID  string `json:"instructorId" validate:"required"`
	Date          string `json:"date" validate:"required"`
	StartTime     string `json:"startTime" validate:"required"`
	EndTime       string `json:"endTime" validate:"required"`
	IsAvailable   bool   `json:"isAvailable"`
	IsRecurring   bool   `json:"isRecurring"`
	Recurrence    string `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
	RecurrenceEnd string `json:"recurrenceEnd"`
}

// CreateAvailabilityRequest carries a batch of slots. The batch is rejected
// as a whole when any slot is malformed.
type CreateAvailabilityRequest struct {
	Slots []AvailabilitySlotInput `json:"slots" validate:"required,min=1,dive"`
}

// UpdateAvailabilityRequest toggles the availability flag for an exact window.
type UpdateAvailabilityRequest struct {
	InstructorID string `json:"instructorId" validate:"required"`
	Date         string `json:"date" validate:"required"`
	StartTime    string `json:"startTime" validate:"required"`
	EndTime      string `json:"endTime" validate:"required"`
	IsAvailable  bool   `json:"isAvailable"`
}

// AvailabilitySlotResponse is the wire form of a stored slot.
type AvailabilitySlotResponse struct {
	ID           string `json:"id"`
	InstructorID string `json:"instructorId"`
	Date         string `json:"date"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
	IsAvailable  bool   `json:"isAvailable"`
	IsRecurring  bool   `json:"isRecurring"`
	Recurrence   string `json:"recurrence"`
}
