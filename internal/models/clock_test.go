package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	minute, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minute)

	minute, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Zero(t, minute)

	_, err = ParseClock("24:00")
	assert.Error(t, err)

	_, err = ParseClock("9h30")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:30", FormatClock(570))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "23:45", FormatClock(1425))
}

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2026-09-07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC), date)

	_, err = ParseDate("07/09/2026")
	assert.Error(t, err)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsWeekend(time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsWeekend(time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)))
}

func TestRecurrenceInterval(t *testing.T) {
	assert.Equal(t, 1, RecurrenceDaily.Interval())
	assert.Equal(t, 7, RecurrenceWeekly.Interval())
	assert.Equal(t, 30, RecurrenceMonthly.Interval())
	assert.Zero(t, RecurrenceNone.Interval())
}
