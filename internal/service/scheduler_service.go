package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/roadwise/roadwise-api/internal/dto"
	"github.com/roadwise/roadwise-api/internal/models"
	"github.com/roadwise/roadwise-api/pkg/config"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
)

type schedulerInstructorReader interface {
	ListActive(ctx context.Context) ([]models.Instructor, error)
	FindByID(ctx context.Context, id string) (*models.Instructor, error)
}

type schedulerCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type schedulerBookingReader interface {
	ListByInstructorAndDate(ctx context.Context, instructorID string, date time.Time) ([]models.Booking, error)
	CountActiveInRange(ctx context.Context, instructorID string, from, to time.Time) (int, error)
}

type schedulerAvailabilityReader interface {
	ListByInstructorAndRange(ctx context.Context, instructorID string, from, to time.Time) ([]models.AvailabilitySlot, error)
}

// SchedulerService generates ranked lesson suggestions by sliding a
// fixed-step window across declared availability and discarding anything
// that collides with existing commitments.
type SchedulerService struct {
	instructors  schedulerInstructorReader
	courses      schedulerCourseReader
	bookings     schedulerBookingReader
	availability schedulerAvailabilityReader
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          config.SchedulerConfig
}

// NewSchedulerService wires scheduler dependencies.
func NewSchedulerService(
	instructors schedulerInstructorReader,
	courses schedulerCourseReader,
	bookings schedulerBookingReader,
	availability schedulerAvailabilityReader,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg config.SchedulerConfig,
) *SchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StepMinutes <= 0 {
		cfg.StepMinutes = 15
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = 20
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 5000
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = 30
	}
	return &SchedulerService{
		instructors:  instructors,
		courses:      courses,
		bookings:     bookings,
		availability: availability,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
	}
}

// AutoSchedule returns ranked, conflict-free suggestions for the request.
func (s *SchedulerService) AutoSchedule(ctx context.Context, req dto.AutoScheduleRequest) ([]dto.ScheduleSuggestionResponse, error) {
	started := time.Now()
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid auto schedule payload")
	}

	course, err := s.courses.FindByID(ctx, req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if !course.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course is not active")
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = course.DurationMinutes
	}
	if duration <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson duration must be positive")
	}

	instructors, err := s.resolveInstructors(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}

	earliest, latest, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	prefs, err := buildPreferences(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	candidates := s.generateCandidates(ctx, instructors, earliest, latest, duration, req.AvoidWeekends)

	suggestions := make([]models.ScheduleSuggestion, 0, len(candidates))
	workloads := s.loadWorkloads(ctx, instructors, earliest, latest)
	for _, candidate := range candidates {
		score, reasons := scoreCandidate(candidate, prefs, workloads[candidate.InstructorID])
		suggestions = append(suggestions, models.ScheduleSuggestion{
			ScheduleCandidate: candidate,
			Score:             score,
			Reasons:           reasons,
		})
	}

	// Stable sort keeps the generation order (earlier dates and times first)
	// among equally scored suggestions.
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > s.cfg.MaxSuggestions {
		suggestions = suggestions[:s.cfg.MaxSuggestions]
	}

	responses := make([]dto.ScheduleSuggestionResponse, 0, len(suggestions))
	for _, suggestion := range suggestions {
		responses = append(responses, dto.ScheduleSuggestionResponse{
			InstructorID:   suggestion.InstructorID,
			InstructorName: suggestion.InstructorName,
			Date:           suggestion.Date.Format(models.DateLayout),
			StartTime:      models.FormatClock(suggestion.StartMinute),
			EndTime:        models.FormatClock(suggestion.EndMinute),
			Score:          suggestion.Score,
			Reasons:        suggestion.Reasons,
		})
	}

	s.metrics.ObserveSuggestionRequest(time.Since(started), len(responses))
	return responses, nil
}

func (s *SchedulerService) resolveInstructors(ctx context.Context, instructorID string) ([]models.Instructor, error) {
	if instructorID != "" {
		instructor, err := s.instructors.FindByID(ctx, instructorID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
		}
		if !instructor.Active {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "instructor is not active")
		}
		return []models.Instructor{*instructor}, nil
	}

	instructors, err := s.instructors.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	if len(instructors) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active instructors available")
	}
	return instructors, nil
}

func (s *SchedulerService) resolveWindow(req dto.AutoScheduleRequest) (time.Time, time.Time, error) {
	earliest := models.DateOnly(time.Now())
	if req.EarliestDate != "" {
		parsed, err := models.ParseDate(req.EarliestDate)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		earliest = parsed
	}

	latest := earliest.AddDate(0, 0, s.cfg.HorizonDays)
	if req.LatestDate != "" {
		parsed, err := models.ParseDate(req.LatestDate)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		latest = parsed
	}

	if latest.Before(earliest) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "latest date must not precede earliest date")
	}
	return earliest, latest, nil
}

// generateCandidates slides a step-aligned window across every available slot
// and keeps the conflict-free positions. Bookings are fetched once per
// instructor day through a request-scoped cache, however many windows probe
// that day.
func (s *SchedulerService) generateCandidates(ctx context.Context, instructors []models.Instructor, earliest, latest time.Time, duration int, avoidWeekends bool) []models.ScheduleCandidate {
	candidates := make([]models.ScheduleCandidate, 0, 64)
	evaluated := 0
	defer func() { s.metrics.AddCandidatesEvaluated(evaluated) }()

	for _, instructor := range instructors {
		slots, err := s.availability.ListByInstructorAndRange(ctx, instructor.ID, earliest, latest)
		if err != nil {
			s.logger.Warn("availability read failed, skipping instructor",
				zap.String("instructor_id", instructor.ID),
				zap.Error(err))
			continue
		}

		day := newInstructorDayCache(s.bookings, slots)
		checker := NewConflictService(day, day, s.metrics, s.validator, s.logger)

		for _, slot := range slots {
			if !slot.IsAvailable {
				continue
			}
			if avoidWeekends && models.IsWeekend(slot.SlotDate) {
				continue
			}
			for start := slot.StartMinute; start+duration <= slot.EndMinute; start += s.cfg.StepMinutes {
				if ctx.Err() != nil {
					s.logger.Warn("suggestion window exploration timed out, ranking partial results",
						zap.Int("evaluated", evaluated))
					return candidates
				}
				if evaluated >= s.cfg.MaxCandidates {
					s.logger.Warn("candidate cap reached, ranking partial results",
						zap.Int("cap", s.cfg.MaxCandidates))
					return candidates
				}
				evaluated++
				end := start + duration
				if len(checker.CheckWindow(ctx, instructor.ID, slot.SlotDate, start, end, "")) > 0 {
					continue
				}
				candidates = append(candidates, models.ScheduleCandidate{
					InstructorID:   instructor.ID,
					InstructorName: instructor.FullName,
					Date:           slot.SlotDate,
					StartMinute:    start,
					EndMinute:      end,
				})
			}
		}
	}
	return candidates
}

// neutralWorkload sits inside the band that earns neither the low-workload
// bonus nor the high-workload penalty.
const neutralWorkload = 7

// loadWorkloads counts active bookings once per instructor. A failed count
// degrades to the neutral band rather than failing the whole request: an
// unverified workload must not hand out the low-workload bonus.
func (s *SchedulerService) loadWorkloads(ctx context.Context, instructors []models.Instructor, from, to time.Time) map[string]int {
	workloads := make(map[string]int, len(instructors))
	for _, instructor := range instructors {
		count, err := s.bookings.CountActiveInRange(ctx, instructor.ID, from, to)
		if err != nil {
			s.logger.Warn("workload count failed, skipping workload adjustment",
				zap.String("instructor_id", instructor.ID),
				zap.Error(err))
			count = neutralWorkload
		}
		workloads[instructor.ID] = count
	}
	return workloads
}

type schedulePreferences struct {
	dates map[time.Time]bool
	times map[int]bool
}

func buildPreferences(req dto.AutoScheduleRequest) (schedulePreferences, error) {
	prefs := schedulePreferences{
		dates: make(map[time.Time]bool, len(req.PreferredDates)),
		times: make(map[int]bool, len(req.PreferredTimes)),
	}
	for _, raw := range req.PreferredDates {
		date, err := models.ParseDate(raw)
		if err != nil {
			return prefs, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		prefs.dates[date] = true
	}
	for _, raw := range req.PreferredTimes {
		minute, err := models.ParseClock(raw)
		if err != nil {
			return prefs, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		prefs.times[minute] = true
	}
	return prefs, nil
}

// scoreCandidate is deterministic: the same candidate, preferences and
// workload always produce the same score and reasons.
func scoreCandidate(candidate models.ScheduleCandidate, prefs schedulePreferences, workload int) (int, []string) {
	score := 100
	reasons := []string{"Available time slot"}

	if prefs.dates[models.DateOnly(candidate.Date)] {
		score += 20
		reasons = append(reasons, "Matches preferred date")
	}
	if prefs.times[candidate.StartMinute] {
		score += 15
		reasons = append(reasons, "Matches preferred time")
	}

	hour := candidate.StartMinute / 60
	switch {
	case hour >= 9 && hour <= 12:
		score += 10
		reasons = append(reasons, "Optimal morning time")
	case hour >= 13 && hour <= 17:
		score += 5
		reasons = append(reasons, "Good afternoon time")
	}

	switch {
	case workload > 10:
		score -= 10
		reasons = append(reasons, "High instructor workload")
	case workload < 5:
		score += 5
		reasons = append(reasons, "Low instructor workload")
	}

	return score, reasons
}

// instructorDayCache serves the conflict detector during candidate
// generation. Bookings are memoized per day and blocked windows come from the
// availability rows already loaded for the search range, so sliding hundreds
// of windows over one day costs a single booking query.
type instructorDayCache struct {
	bookings schedulerBookingReader
	byDay    map[time.Time][]models.Booking
	blocked  map[time.Time][]models.AvailabilitySlot
}

func newInstructorDayCache(bookings schedulerBookingReader, slots []models.AvailabilitySlot) *instructorDayCache {
	blocked := make(map[time.Time][]models.AvailabilitySlot)
	for _, slot := range slots {
		if slot.IsAvailable {
			continue
		}
		key := models.DateOnly(slot.SlotDate)
		blocked[key] = append(blocked[key], slot)
	}
	return &instructorDayCache{
		bookings: bookings,
		byDay:    make(map[time.Time][]models.Booking),
		blocked:  blocked,
	}
}

func (c *instructorDayCache) ListByInstructorAndDate(ctx context.Context, instructorID string, date time.Time) ([]models.Booking, error) {
	key := models.DateOnly(date)
	if cached, ok := c.byDay[key]; ok {
		return cached, nil
	}
	bookings, err := c.bookings.ListByInstructorAndDate(ctx, instructorID, date)
	if err != nil {
		return nil, err
	}
	c.byDay[key] = bookings
	return bookings, nil
}

func (c *instructorDayCache) ListUnavailableByDate(_ context.Context, _ string, date time.Time) ([]models.AvailabilitySlot, error) {
	return c.blocked[models.DateOnly(date)], nil
}
