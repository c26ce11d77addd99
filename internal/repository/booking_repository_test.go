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
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBookingRepositoryListByInstructorAndDate(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "instructor_id", "course_id", "lesson_date", "start_minute", "duration_minutes", "status", "created_at", "updated_at"}).
		AddRow("booking-1", "student-1", "inst-1", "course-1", date, 600, 60, "scheduled", time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM bookings b\\s+JOIN courses c").
		WithArgs("inst-1", date).
		WillReturnRows(rows)

	bookings, err := repo.ListByInstructorAndDate(context.Background(), "inst-1", date)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, 660, bookings[0].EndMinute())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCountActiveInRange(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 14)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings WHERE instructor_id = $1 AND lesson_date >= $2 AND lesson_date <= $3 AND status <> 'cancelled'")).
		WithArgs("inst-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.CountActiveInRange(context.Background(), "inst-1", from, to)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
