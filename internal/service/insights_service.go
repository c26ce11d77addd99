package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/roadwise/roadwise-api/internal/models"
	"github.com/roadwise/roadwise-api/pkg/config"
	appErrors "github.com/roadwise/roadwise-api/pkg/errors"
	"github.com/roadwise/roadwise-api/pkg/export"
	"github.com/roadwise/roadwise-api/pkg/jobs"
)

const (
	insightsCacheKeyAll    = "insights:scheduling:all"
	insightsCachePrefix    = "insights:scheduling:"
	insightsRefreshJobType = "insights.refresh"
	popularCourseLimit     = 10
)

type insightsAggregator interface {
	PeakHours(ctx context.Context, from, to time.Time, instructorID string) ([]models.PeakHour, error)
	BusyDays(ctx context.Context, from, to time.Time, instructorID string) ([]models.BusyDay, error)
	Utilization(ctx context.Context, from, to time.Time) ([]models.InstructorUtilization, error)
	PopularCourses(ctx context.Context, from, to time.Time, limit int) ([]models.PopularCourse, error)
}

// InsightsService produces read-only scheduling analytics for dashboards.
// It degrades section by section: a failed aggregate empties that section
// instead of failing the report.
type InsightsService struct {
	repo   insightsAggregator
	cache  *CacheService
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	queue  *jobs.Queue
	logger *zap.Logger
	cfg    config.InsightsConfig
}

// NewInsightsService wires insight dependencies and the background cache
// warmer that keeps the shared report fresh after availability changes.
func NewInsightsService(repo insightsAggregator, cache *CacheService, csvExporter *export.CSVExporter, pdfExporter *export.PDFExporter, logger *zap.Logger, cfg config.InsightsConfig) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 30
	}
	s := &InsightsService{
		repo:   repo,
		cache:  cache,
		csv:    csvExporter,
		pdf:    pdfExporter,
		logger: logger,
		cfg:    cfg,
	}
	s.queue = jobs.NewQueue("insights-refresh", s.handleRefreshJob, jobs.QueueConfig{
		Workers:    cfg.RefreshQueue,
		MaxRetries: cfg.RefreshRetry,
		RetryDelay: cfg.RefreshDelay,
		Logger:     logger,
	})
	return s
}

// StartRefresher begins the background cache warmer.
func (s *InsightsService) StartRefresher(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop halts the background cache warmer.
func (s *InsightsService) Stop() {
	s.queue.Stop()
}

// NotifyChange schedules an asynchronous rebuild of the shared report. Used
// by write paths so dashboards converge without blocking the writer.
func (s *InsightsService) NotifyChange() {
	if err := s.queue.Enqueue(jobs.Job{Type: insightsRefreshJobType}); err != nil {
		s.logger.Debug("insights refresh not scheduled", zap.Error(err))
	}
}

// GetSchedulingInsights returns the analytics bundle, serving from cache when
// possible. It never returns an error: worst case is an empty report.
func (s *InsightsService) GetSchedulingInsights(ctx context.Context, instructorID string) *models.SchedulingInsights {
	key := insightsCacheKey(instructorID)
	cached := &models.SchedulingInsights{}
	if hit, err := s.cache.Get(ctx, key, cached); err == nil && hit {
		return cached
	}

	insights := s.compute(ctx, instructorID)
	if err := s.cache.Set(ctx, key, insights, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache insights", zap.String("key", key), zap.Error(err))
	}
	return insights
}

// Export renders the current report as a downloadable document.
func (s *InsightsService) Export(ctx context.Context, format, instructorID string) (string, string, []byte, error) {
	insights := s.GetSchedulingInsights(ctx, instructorID)
	dataset := insightsDataset(insights)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return fmt.Sprintf("scheduling-insights-%s.csv", stamp), "text/csv", payload, nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Scheduling Insights")
		if err != nil {
			return "", "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return fmt.Sprintf("scheduling-insights-%s.pdf", stamp), "application/pdf", payload, nil
	default:
		return "", "", nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *InsightsService) compute(ctx context.Context, instructorID string) *models.SchedulingInsights {
	to := models.DateOnly(time.Now())
	from := to.AddDate(0, 0, -s.cfg.WindowDays)

	insights := &models.SchedulingInsights{
		PeakHours:      []models.PeakHour{},
		BusyDays:       []models.BusyDay{},
		PopularCourses: []models.PopularCourse{},
		WindowDays:     s.cfg.WindowDays,
		GeneratedAt:    time.Now().UTC(),
	}

	if hours, err := s.repo.PeakHours(ctx, from, to, instructorID); err != nil {
		s.logger.Warn("peak hours aggregate failed", zap.Error(err))
	} else {
		insights.PeakHours = hours
	}

	if days, err := s.repo.BusyDays(ctx, from, to, instructorID); err != nil {
		s.logger.Warn("busy days aggregate failed", zap.Error(err))
	} else {
		insights.BusyDays = days
	}

	// Utilization compares whole calendars, so it only belongs in the
	// school-wide report.
	if instructorID == "" {
		if utilization, err := s.repo.Utilization(ctx, from, to); err != nil {
			s.logger.Warn("utilization aggregate failed", zap.Error(err))
		} else {
			insights.Utilization = utilization
		}
	}

	if courses, err := s.repo.PopularCourses(ctx, from, to, popularCourseLimit); err != nil {
		s.logger.Warn("popular courses aggregate failed", zap.Error(err))
	} else {
		insights.PopularCourses = courses
	}

	return insights
}

func (s *InsightsService) handleRefreshJob(ctx context.Context, _ jobs.Job) error {
	insights := s.compute(ctx, "")
	if err := s.cache.Set(ctx, insightsCacheKeyAll, insights, s.cfg.CacheTTL); err != nil {
		return fmt.Errorf("warm insights cache: %w", err)
	}
	// Instructor-scoped reports are invalidated rather than rebuilt; they
	// repopulate lazily on next read.
	if err := s.cache.Invalidate(ctx, insightsCachePrefix+"instructor:*"); err != nil {
		s.logger.Warn("failed to invalidate instructor insights", zap.Error(err))
	}
	return nil
}

func insightsCacheKey(instructorID string) string {
	if instructorID == "" {
		return insightsCacheKeyAll
	}
	return insightsCachePrefix + "instructor:" + instructorID
}

func insightsDataset(insights *models.SchedulingInsights) export.Dataset {
	dataset := export.Dataset{Headers: []string{"section", "metric", "value"}}
	for _, hour := range insights.PeakHours {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"section": "peak_hours",
			"metric":  models.FormatClock(hour.Hour * 60),
			"value":   strconv.Itoa(hour.Bookings),
		})
	}
	for _, day := range insights.BusyDays {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"section": "busy_days",
			"metric":  day.Weekday,
			"value":   strconv.Itoa(day.Bookings),
		})
	}
	for _, row := range insights.Utilization {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"section": "utilization",
			"metric":  row.InstructorName,
			"value":   fmt.Sprintf("%.2f", row.Utilization),
		})
	}
	for _, course := range insights.PopularCourses {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"section": "popular_courses",
			"metric":  course.CourseName,
			"value":   fmt.Sprintf("%d bookings, %.1f rating", course.Bookings, course.AverageRating),
		})
	}
	return dataset
}
