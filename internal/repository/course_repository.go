package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/roadwise/roadwise-api/internal/models"
)

// CourseRepository provides lookups for course metadata.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, duration_minutes, active, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}
