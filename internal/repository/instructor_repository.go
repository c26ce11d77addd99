package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roadwise/roadwise-api/internal/models"
)

// InstructorRepository provides lookups against the instructor directory.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository creates a new instructor repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// ListActive returns all active instructors ordered by name.
func (r *InstructorRepository) ListActive(ctx context.Context) ([]models.Instructor, error) {
	const query = `SELECT id, full_name, email, phone, active, created_at, updated_at FROM instructors WHERE active = TRUE ORDER BY full_name ASC`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list active instructors: %w", err)
	}
	return instructors, nil
}

// FindByID loads a single instructor.
func (r *InstructorRepository) FindByID(ctx context.Context, id string) (*models.Instructor, error) {
	const query = `SELECT id, full_name, email, phone, active, created_at, updated_at FROM instructors WHERE id = $1`
	var instructor models.Instructor
	if err := r.db.GetContext(ctx, &instructor, query, id); err != nil {
		return nil, err
	}
	return &instructor, nil
}
