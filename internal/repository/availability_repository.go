package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roadwise/roadwise-api/internal/models"
)

// AvailabilityRepository provides persistence for instructor availability slots.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository creates a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

const availabilityColumns = "id, instructor_id, slot_date, start_minute, end_minute, is_available, is_recurring, recurrence, recurrence_end, created_at, updated_at"

// InsertBatch stores all slots within a single transaction. A recurring
// definition and its expanded instances land atomically or not at all.
func (r *AvailabilityRepository) InsertBatch(ctx context.Context, slots []models.AvailabilitySlot) (err error) {
	if len(slots) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert availability batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range slots {
		payload := slots[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err = tx.NamedExecContext(ctx, `INSERT INTO availability_slots (id, instructor_id, slot_date, start_minute, end_minute, is_available, is_recurring, recurrence, recurrence_end, created_at, updated_at) VALUES (:id, :instructor_id, :slot_date, :start_minute, :end_minute, :is_available, :is_recurring, :recurrence, :recurrence_end, :created_at, :updated_at)`, &payload); err != nil {
			return fmt.Errorf("insert availability slot: %w", err)
		}
		slots[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert availability batch: %w", err)
	}
	return nil
}

// ListByInstructorAndRange returns every slot (available and unavailable)
// whose date falls inside [from, to], ordered by date then start time.
func (r *AvailabilityRepository) ListByInstructorAndRange(ctx context.Context, instructorID string, from, to time.Time) ([]models.AvailabilitySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_slots WHERE instructor_id = $1 AND slot_date >= $2 AND slot_date <= $3 ORDER BY slot_date ASC, start_minute ASC", availabilityColumns)
	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, instructorID, from, to); err != nil {
		return nil, fmt.Errorf("list availability by range: %w", err)
	}
	return slots, nil
}

// ListUnavailableByDate returns explicitly blocked windows for one day.
func (r *AvailabilityRepository) ListUnavailableByDate(ctx context.Context, instructorID string, date time.Time) ([]models.AvailabilitySlot, error) {
	query := fmt.Sprintf("SELECT %s FROM availability_slots WHERE instructor_id = $1 AND slot_date = $2 AND is_available = FALSE ORDER BY start_minute ASC", availabilityColumns)
	var slots []models.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, instructorID, date); err != nil {
		return nil, fmt.Errorf("list unavailable slots: %w", err)
	}
	return slots, nil
}

// Upsert updates the availability flag of an exact (instructor, date, window)
// match or inserts a new non-recurring row when none exists.
func (r *AvailabilityRepository) Upsert(ctx context.Context, slot *models.AvailabilitySlot) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE availability_slots SET is_available = $1, updated_at = $2 WHERE instructor_id = $3 AND slot_date = $4 AND start_minute = $5 AND end_minute = $6`,
		slot.IsAvailable, now, slot.InstructorID, slot.SlotDate, slot.StartMinute, slot.EndMinute)
	if err != nil {
		return fmt.Errorf("update availability slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update availability slot rows: %w", err)
	}
	if affected > 0 {
		slot.UpdatedAt = now
		return nil
	}

	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.IsRecurring = false
	slot.Recurrence = models.RecurrenceNone
	slot.CreatedAt = now
	slot.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, `INSERT INTO availability_slots (id, instructor_id, slot_date, start_minute, end_minute, is_available, is_recurring, recurrence, recurrence_end, created_at, updated_at) VALUES (:id, :instructor_id, :slot_date, :start_minute, :end_minute, :is_available, :is_recurring, :recurrence, :recurrence_end, :created_at, :updated_at)`, slot); err != nil {
		return fmt.Errorf("insert availability slot on upsert: %w", err)
	}
	return nil
}
