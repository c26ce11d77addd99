package models

import "time"

// Course represents a bookable lesson type with a fixed duration.
type Course struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
