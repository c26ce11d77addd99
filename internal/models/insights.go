package models

import "time"

// PeakHour counts bookings starting within one hour of the day.
type PeakHour struct {
	Hour     int `db:"hour" json:"hour"`
	Bookings int `db:"bookings" json:"bookings"`
}

// BusyDay counts bookings per day of week.
type BusyDay struct {
	Weekday  string `db:"weekday" json:"weekday"`
	Bookings int    `db:"bookings" json:"bookings"`
}

// InstructorUtilization relates booked lesson time to declared availability.
type InstructorUtilization struct {
	InstructorID     string  `db:"instructor_id" json:"instructor_id"`
	InstructorName   string  `db:"instructor_name" json:"instructor_name"`
	BookedMinutes    int     `db:"booked_minutes" json:"booked_minutes"`
	AvailableMinutes int     `db:"available_minutes" json:"available_minutes"`
	Utilization      float64 `db:"utilization" json:"utilization"`
}

// PopularCourse aggregates booking volume and review ratings per course.
type PopularCourse struct {
	CourseID      string  `db:"course_id" json:"course_id"`
	CourseName    string  `db:"course_name" json:"course_name"`
	Bookings      int     `db:"bookings" json:"bookings"`
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}

// SchedulingInsights bundles the read-only analytics fed to dashboards.
type SchedulingInsights struct {
	PeakHours      []PeakHour              `json:"peak_hours"`
	BusyDays       []BusyDay               `json:"busy_days"`
	Utilization    []InstructorUtilization `json:"utilization,omitempty"`
	PopularCourses []PopularCourse         `json:"popular_courses"`
	WindowDays     int                     `json:"window_days"`
	GeneratedAt    time.Time               `json:"generated_at"`
}
