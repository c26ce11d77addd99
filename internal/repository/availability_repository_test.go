package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwise/roadwise-api/internal/models"
)

func newAvailabilityRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAvailabilityRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_slots")).
		WithArgs(sqlmock.AnyArg(), "inst-1", sqlmock.AnyArg(), 540, 720, true, false, "none", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_slots")).
		WithArgs(sqlmock.AnyArg(), "inst-1", sqlmock.AnyArg(), 780, 1020, true, false, "none", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	slots := []models.AvailabilitySlot{
		{InstructorID: "inst-1", SlotDate: date, StartMinute: 540, EndMinute: 720, IsAvailable: true, Recurrence: models.RecurrenceNone},
		{InstructorID: "inst-1", SlotDate: date, StartMinute: 780, EndMinute: 1020, IsAvailable: true, Recurrence: models.RecurrenceNone},
	}

	require.NoError(t, repo.InsertBatch(context.Background(), slots))
	assert.NotEmpty(t, slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryInsertBatchRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_slots")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	slots := []models.AvailabilitySlot{
		{InstructorID: "inst-1", SlotDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), StartMinute: 540, EndMinute: 600, IsAvailable: true, Recurrence: models.RecurrenceNone},
	}

	require.Error(t, repo.InsertBatch(context.Background(), slots))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListByInstructorAndRange(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "instructor_id", "slot_date", "start_minute", "end_minute", "is_available", "is_recurring", "recurrence", "recurrence_end", "created_at", "updated_at"}).
		AddRow("slot-1", "inst-1", from, 540, 720, true, false, "none", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, instructor_id, slot_date, start_minute, end_minute, is_available, is_recurring, recurrence, recurrence_end, created_at, updated_at FROM availability_slots WHERE instructor_id = $1 AND slot_date >= $2 AND slot_date <= $3 ORDER BY slot_date ASC, start_minute ASC")).
		WithArgs("inst-1", from, to).
		WillReturnRows(rows)

	slots, err := repo.ListByInstructorAndRange(context.Background(), "inst-1", from, to)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, 540, slots[0].StartMinute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpsertUpdatesExistingWindow(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE availability_slots SET is_available = $1, updated_at = $2 WHERE instructor_id = $3 AND slot_date = $4 AND start_minute = $5 AND end_minute = $6")).
		WithArgs(false, sqlmock.AnyArg(), "inst-1", date, 540, 720).
		WillReturnResult(sqlmock.NewResult(0, 1))

	slot := &models.AvailabilitySlot{InstructorID: "inst-1", SlotDate: date, StartMinute: 540, EndMinute: 720, IsAvailable: false}
	require.NoError(t, repo.Upsert(context.Background(), slot))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpsertInsertsWhenMissing(t *testing.T) {
	db, mock, cleanup := newAvailabilityRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE availability_slots SET")).
		WithArgs(true, sqlmock.AnyArg(), "inst-1", date, 540, 720).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_slots")).
		WithArgs(sqlmock.AnyArg(), "inst-1", date, 540, 720, true, false, "none", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.AvailabilitySlot{InstructorID: "inst-1", SlotDate: date, StartMinute: 540, EndMinute: 720, IsAvailable: true}
	require.NoError(t, repo.Upsert(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
