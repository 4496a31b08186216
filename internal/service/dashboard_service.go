package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/repository"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:overview"

type dashboardRepository interface {
	EntityCounts(ctx context.Context) (*dto.DashboardSummary, error)
	AttendanceRate(ctx context.Context, from, to time.Time) (float64, error)
	QuarterGradeAverage(ctx context.Context, from, to time.Time) (float64, error)
	CountsByStatus(ctx context.Context, table string) (map[string]int, error)
	ClassCountsByShift(ctx context.Context) (map[string]int, error)
	EnrollmentsByMonth(ctx context.Context, since time.Time) ([]dto.MonthCount, error)
	AttendanceByMonth(ctx context.Context, since time.Time) ([]dto.MonthRate, error)
	LowAttendanceStudents(ctx context.Context, from, to time.Time, threshold float64, limit int) ([]repository.LowAttendanceStudent, error)
	CountOverduePayments(ctx context.Context) (int, error)
	CountExpiredAnnouncements(ctx context.Context) (int, error)
	RecentEnrollments(ctx context.Context, since time.Time, limit int) ([]models.EnrollmentDetail, error)
	RecentGrades(ctx context.Context, since time.Time, limit int) ([]models.GradeDetail, error)
	RecentPayments(ctx context.Context, since time.Time, limit int) ([]models.PaymentDetail, error)
	RecentAnnouncements(ctx context.Context, since time.Time, limit int) ([]models.Announcement, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type dashboardMetrics interface {
	RecordCacheOperation(hit bool)
}

// DashboardConfig tunes window sizes and feed caps.
type DashboardConfig struct {
	CacheTTL                time.Duration
	LowAttendanceThreshold  float64
	AttendanceWindowDays    int
	RecentActivityWindow    time.Duration
	MaxAlerts               int
	MaxRecentActivities     int
	ActivitySamplePerSource int
}

// DashboardService aggregates the overview payload from every corner of
// the schema, with a short-lived cache in front.
type DashboardService struct {
	repo    dashboardRepository
	cache   dashboardCache
	metrics dashboardMetrics
	logger  *zap.Logger
	config  DashboardConfig
	now     func() time.Time
}

// SetMetrics attaches an optional cache hit/miss recorder.
func (s *DashboardService) SetMetrics(metrics dashboardMetrics) {
	s.metrics = metrics
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(repo dashboardRepository, cache dashboardCache, logger *zap.Logger, config DashboardConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.AttendanceWindowDays <= 0 {
		config.AttendanceWindowDays = 30
	}
	if config.LowAttendanceThreshold <= 0 {
		config.LowAttendanceThreshold = 75
	}
	if config.RecentActivityWindow <= 0 {
		config.RecentActivityWindow = 7 * 24 * time.Hour
	}
	if config.MaxAlerts <= 0 {
		config.MaxAlerts = 10
	}
	if config.MaxRecentActivities <= 0 {
		config.MaxRecentActivities = 15
	}
	if config.ActivitySamplePerSource <= 0 {
		config.ActivitySamplePerSource = 5
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, config: config, now: func() time.Time { return time.Now().UTC() }}
}

// Overview assembles the full dashboard payload, serving from cache when
// a fresh copy exists.
func (s *DashboardService) Overview(ctx context.Context) (*dto.DashboardResponse, error) {
	if s.cache != nil {
		var cached dto.DashboardResponse
		err := s.cache.Get(ctx, dashboardCacheKey, &cached)
		if err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}

	now := s.now()

	summary, err := s.repo.EntityCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard counts")
	}

	attendanceFrom := now.AddDate(0, 0, -s.config.AttendanceWindowDays)
	rate, err := s.repo.AttendanceRate(ctx, attendanceFrom, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute attendance rate")
	}
	summary.AttendanceRate = rate

	quarter := models.QuarterForMonth(now.Month())
	qFrom, qTo := quarterWindow(now)
	avg, err := s.repo.QuarterGradeAverage(ctx, qFrom, qTo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute quarter average")
	}
	summary.QuarterAverage = avg
	summary.CurrentQuarter = quarter

	categories, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}

	charts, err := s.charts(ctx, now)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts(ctx, now)
	if err != nil {
		return nil, err
	}

	activity, err := s.recentActivity(ctx, now)
	if err != nil {
		return nil, err
	}

	response := &dto.DashboardResponse{
		Summary:        *summary,
		Categories:     *categories,
		Charts:         *charts,
		Alerts:         alerts,
		RecentActivity: activity,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, response, s.config.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return response, nil
}

func (s *DashboardService) categories(ctx context.Context) (*dto.CategoryStats, error) {
	students, err := s.repo.CountsByStatus(ctx, "students")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down students")
	}
	teachers, err := s.repo.CountsByStatus(ctx, "teachers")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down teachers")
	}
	classes, err := s.repo.CountsByStatus(ctx, "classes")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down classes")
	}
	payments, err := s.repo.CountsByStatus(ctx, "student_payments")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down payments")
	}
	shifts, err := s.repo.ClassCountsByShift(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to break down class shifts")
	}
	return &dto.CategoryStats{
		Students:       categoryStat(students, string(models.StudentStatusEnrolled)),
		Teachers:       categoryStat(teachers, string(models.TeacherStatusActive)),
		Classes:        categoryStat(classes, string(models.ClassStatusActive)),
		Payments:       categoryStat(payments, string(models.PaymentStatusPaid)),
		ClassesByShift: shifts,
	}, nil
}

// categoryStat folds a status breakdown into an active/inactive summary.
// Every status other than the active one counts as inactive.
func categoryStat(byStatus map[string]int, activeStatus string) dto.CategoryStat {
	stat := dto.CategoryStat{Active: byStatus[activeStatus]}
	for _, count := range byStatus {
		stat.Total += count
	}
	stat.Inactive = stat.Total - stat.Active
	if stat.Total > 0 {
		stat.PercentActive = float64(stat.Active) * 100 / float64(stat.Total)
	}
	return stat
}

func (s *DashboardService) charts(ctx context.Context, now time.Time) (*dto.DashboardCharts, error) {
	yearAgo := now.AddDate(-1, 0, 0)

	enrollments, err := s.repo.EnrollmentsByMonth(ctx, yearAgo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to chart enrollments")
	}
	attendance, err := s.repo.AttendanceByMonth(ctx, yearAgo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to chart attendance")
	}

	// The quarter series is derived from the attendance year's grade
	// data, one aggregate query per quarter of the current year.
	averages := make([]dto.QuarterAverage, 0, 4)
	for q := 1; q <= 4; q++ {
		from, to := quarterBounds(now.Year(), q)
		avg, err := s.repo.QuarterGradeAverage(ctx, from, to)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to chart quarter averages")
		}
		averages = append(averages, dto.QuarterAverage{Quarter: q, Average: avg})
	}

	return &dto.DashboardCharts{
		EnrollmentsByMonth: enrollments,
		AttendanceByMonth:  attendance,
		QuarterAverages:    averages,
	}, nil
}

// alerts collects warnings ordered by severity: one high alert per
// low-attendance student, then a single medium alert carrying the
// overdue payment count and a single low alert carrying the expired
// announcement count, capped overall.
func (s *DashboardService) alerts(ctx context.Context, now time.Time) ([]dto.Alert, error) {
	limit := s.config.MaxAlerts
	alerts := make([]dto.Alert, 0, limit)

	attendanceFrom := now.AddDate(0, 0, -s.config.AttendanceWindowDays)
	lowAttendance, err := s.repo.LowAttendanceStudents(ctx, attendanceFrom, now, s.config.LowAttendanceThreshold, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find low attendance")
	}
	for _, row := range lowAttendance {
		if len(alerts) >= limit {
			return alerts, nil
		}
		alerts = append(alerts, dto.Alert{
			Severity: dto.AlertSeverityHigh,
			Kind:     dto.AlertKindLowAttendance,
			Message:  fmt.Sprintf("%s attendance at %.1f%%", row.StudentName, row.Rate),
			RefID:    row.StudentID,
		})
	}

	overdue, err := s.repo.CountOverduePayments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count overdue payments")
	}
	if overdue > 0 && len(alerts) < limit {
		alerts = append(alerts, dto.Alert{
			Severity: dto.AlertSeverityMedium,
			Kind:     dto.AlertKindOverduePayment,
			Message:  fmt.Sprintf("%d payments overdue", overdue),
		})
	}

	expired, err := s.repo.CountExpiredAnnouncements(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count expired announcements")
	}
	if expired > 0 && len(alerts) < limit {
		alerts = append(alerts, dto.Alert{
			Severity: dto.AlertSeverityLow,
			Kind:     dto.AlertKindExpiredAnnouncement,
			Message:  fmt.Sprintf("%d announcements expired", expired),
		})
	}
	return alerts, nil
}

// recentActivity merges a per-source sample of recent events into one
// feed sorted newest first and capped.
func (s *DashboardService) recentActivity(ctx context.Context, now time.Time) ([]dto.ActivityItem, error) {
	since := now.Add(-s.config.RecentActivityWindow)
	sample := s.config.ActivitySamplePerSource

	type timedItem struct {
		at   time.Time
		item dto.ActivityItem
	}
	var merged []timedItem

	enrollments, err := s.repo.RecentEnrollments(ctx, since, sample)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent enrollments")
	}
	for _, e := range enrollments {
		merged = append(merged, timedItem{at: e.CreatedAt, item: dto.ActivityItem{
			Kind:       dto.ActivityKindEnrollment,
			Message:    fmt.Sprintf("%s enrolled in %s", e.StudentName, e.ClassName),
			RefID:      e.ID,
			OccurredAt: e.CreatedAt.Format(time.RFC3339),
		}})
	}

	grades, err := s.repo.RecentGrades(ctx, since, sample)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent grades")
	}
	for _, g := range grades {
		merged = append(merged, timedItem{at: g.UpdatedAt, item: dto.ActivityItem{
			Kind:       dto.ActivityKindGrade,
			Message:    fmt.Sprintf("%s scored %.1f on %s", g.StudentName, g.Score, g.AssessmentName),
			RefID:      g.ID,
			OccurredAt: g.UpdatedAt.Format(time.RFC3339),
		}})
	}

	payments, err := s.repo.RecentPayments(ctx, since, sample)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent payments")
	}
	for _, p := range payments {
		if p.PaidAt == nil {
			continue
		}
		merged = append(merged, timedItem{at: *p.PaidAt, item: dto.ActivityItem{
			Kind:       dto.ActivityKindPayment,
			Message:    fmt.Sprintf("%s paid %.2f", p.StudentName, valueOrAmount(p)),
			RefID:      p.ID,
			OccurredAt: p.PaidAt.Format(time.RFC3339),
		}})
	}

	announcements, err := s.repo.RecentAnnouncements(ctx, since, sample)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent announcements")
	}
	for _, a := range announcements {
		if a.PublishedAt == nil {
			continue
		}
		merged = append(merged, timedItem{at: *a.PublishedAt, item: dto.ActivityItem{
			Kind:       dto.ActivityKindAnnouncement,
			Message:    fmt.Sprintf("announcement %q published", a.Title),
			RefID:      a.ID,
			OccurredAt: a.PublishedAt.Format(time.RFC3339),
		}})
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].at.After(merged[j].at) })

	if len(merged) > s.config.MaxRecentActivities {
		merged = merged[:s.config.MaxRecentActivities]
	}
	items := make([]dto.ActivityItem, 0, len(merged))
	for _, m := range merged {
		items = append(items, m.item)
	}
	return items, nil
}

func valueOrAmount(p models.PaymentDetail) float64 {
	if p.PaidAmount != nil {
		return *p.PaidAmount
	}
	return p.Amount
}

// quarterWindow returns the date bounds of the academic quarter holding
// the given instant. January belongs to the fourth quarter of the
// previous year, so its window starts the prior November.
func quarterWindow(now time.Time) (time.Time, time.Time) {
	year := now.Year()
	if now.Month() == time.January {
		year--
	}
	return quarterBounds(year, models.QuarterForMonth(now.Month()))
}

// quarterBounds maps a year and quarter to its date range. The fourth
// quarter spans the year boundary: November through January.
func quarterBounds(year, quarter int) (time.Time, time.Time) {
	switch quarter {
	case 1:
		return date(year, time.February, 1), date(year, time.April, 30)
	case 2:
		return date(year, time.May, 1), date(year, time.July, 31)
	case 3:
		return date(year, time.August, 1), date(year, time.October, 31)
	default:
		return date(year, time.November, 1), date(year+1, time.January, 31)
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
