package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadwise/roadwise-api/internal/dto"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
)

type autoSchedulerStub struct {
	suggestions []dto.ScheduleSuggestionResponse
	err         error
}

func (s autoSchedulerStub) AutoSchedule(ctx context.Context, req dto.AutoScheduleRequest) ([]dto.ScheduleSuggestionResponse, error) {
	return s.suggestions, s.err
}

type conflictCheckerStub struct {
	conflicts []dto.ConflictResponse
	err       error
}

func (s conflictCheckerStub) Check(ctx context.Context, req dto.ConflictCheckRequest) ([]dto.ConflictResponse, error) {
	return s.conflicts, s.err
}

func newScheduleRouter(scheduler autoScheduler, conflicts conflictChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := &ScheduleHandler{scheduler: scheduler, conflicts: conflicts}
	router.POST("/schedule/auto-suggest", h.AutoSuggest)
	router.POST("/schedule/conflicts", h.CheckConflicts)
	return router
}

func TestScheduleHandlerAutoSuggest(t *testing.T) {
	router := newScheduleRouter(autoSchedulerStub{
		suggestions: []dto.ScheduleSuggestionResponse{
			{InstructorID: "inst-1", Date: "2026-09-07", StartTime: "09:00", EndTime: "10:00", Score: 115},
		},
	}, conflictCheckerStub{})

	payload, _ := json.Marshal(dto.AutoScheduleRequest{CourseID: "course-1", StudentID: "student-1"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/schedule/auto-suggest", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"score":115`)
}

func TestScheduleHandlerAutoSuggestInvalidBody(t *testing.T) {
	router := newScheduleRouter(autoSchedulerStub{}, conflictCheckerStub{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/schedule/auto-suggest", bytes.NewReader([]byte("{")))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestScheduleHandlerAutoSuggestServiceError(t *testing.T) {
	router := newScheduleRouter(autoSchedulerStub{
		err: appErrors.Clone(appErrors.ErrNotFound, "course not found"),
	}, conflictCheckerStub{})

	payload, _ := json.Marshal(dto.AutoScheduleRequest{CourseID: "missing", StudentID: "student-1"})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/schedule/auto-suggest", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "course not found")
}

func TestScheduleHandlerCheckConflicts(t *testing.T) {
	router := newScheduleRouter(autoSchedulerStub{}, conflictCheckerStub{
		conflicts: []dto.ConflictResponse{
			{Type: "booking", BookingID: "booking-1", StartTime: "10:00", EndTime: "11:00"},
		},
	})

	payload, _ := json.Marshal(dto.ConflictCheckRequest{
		InstructorID: "inst-1",
		Date:         "2026-09-07",
		StartTime:    "10:30",
		EndTime:      "11:30",
	})
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/schedule/conflicts", bytes.NewReader(payload))
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"hasConflicts":true`)
	assert.Contains(t, recorder.Body.String(), "booking-1")
}
