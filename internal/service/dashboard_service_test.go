package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	"github.com/sige-edu/sige-api/internal/repository"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type fakeDashboardRepo struct {
	countsCalls   int
	byStatus      map[string]map[string]int
	lowAttendance []repository.LowAttendanceStudent
	overdueCount  int
	expiredCount  int
	payments      []models.PaymentDetail
	grades        []models.GradeDetail
}

func (f *fakeDashboardRepo) EntityCounts(_ context.Context) (*dto.DashboardSummary, error) {
	f.countsCalls++
	return &dto.DashboardSummary{TotalSchools: 3, ActiveSchools: 2, TotalStudents: 120, ActiveStudents: 110, TotalUsers: 140, ActiveUsers: 130}, nil
}

func (f *fakeDashboardRepo) AttendanceRate(_ context.Context, _, _ time.Time) (float64, error) {
	return 91.5, nil
}

func (f *fakeDashboardRepo) QuarterGradeAverage(_ context.Context, _, _ time.Time) (float64, error) {
	return 7.4, nil
}

func (f *fakeDashboardRepo) CountsByStatus(_ context.Context, table string) (map[string]int, error) {
	if counts, ok := f.byStatus[table]; ok {
		return counts, nil
	}
	return map[string]int{"ACTIVE": 3}, nil
}

func (f *fakeDashboardRepo) ClassCountsByShift(_ context.Context) (map[string]int, error) {
	return map[string]int{"MORNING": 2}, nil
}

func (f *fakeDashboardRepo) EnrollmentsByMonth(_ context.Context, _ time.Time) ([]dto.MonthCount, error) {
	return nil, nil
}

func (f *fakeDashboardRepo) AttendanceByMonth(_ context.Context, _ time.Time) ([]dto.MonthRate, error) {
	return nil, nil
}

func (f *fakeDashboardRepo) LowAttendanceStudents(_ context.Context, _, _ time.Time, _ float64, _ int) ([]repository.LowAttendanceStudent, error) {
	return f.lowAttendance, nil
}

func (f *fakeDashboardRepo) CountOverduePayments(_ context.Context) (int, error) {
	return f.overdueCount, nil
}

func (f *fakeDashboardRepo) CountExpiredAnnouncements(_ context.Context) (int, error) {
	return f.expiredCount, nil
}

func (f *fakeDashboardRepo) RecentEnrollments(_ context.Context, _ time.Time, _ int) ([]models.EnrollmentDetail, error) {
	return nil, nil
}

func (f *fakeDashboardRepo) RecentGrades(_ context.Context, _ time.Time, _ int) ([]models.GradeDetail, error) {
	return f.grades, nil
}

func (f *fakeDashboardRepo) RecentPayments(_ context.Context, _ time.Time, _ int) ([]models.PaymentDetail, error) {
	return f.payments, nil
}

func (f *fakeDashboardRepo) RecentAnnouncements(_ context.Context, _ time.Time, _ int) ([]models.Announcement, error) {
	return nil, nil
}

type fakeDashboardCache struct {
	stored map[string]*dto.DashboardResponse
}

func (f *fakeDashboardCache) Get(_ context.Context, key string, dest interface{}) error {
	cached, ok := f.stored[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*dest.(*dto.DashboardResponse) = *cached
	return nil
}

func (f *fakeDashboardCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if f.stored == nil {
		f.stored = map[string]*dto.DashboardResponse{}
	}
	f.stored[key] = value.(*dto.DashboardResponse)
	return nil
}

func TestOverviewAssemblesAndCaches(t *testing.T) {
	repo := &fakeDashboardRepo{}
	cache := &fakeDashboardCache{}
	svc := NewDashboardService(repo, cache, nil, DashboardConfig{CacheTTL: time.Minute})

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, resp.Summary.TotalStudents)
	assert.Equal(t, 2, resp.Summary.ActiveSchools)
	assert.Equal(t, 130, resp.Summary.ActiveUsers)
	assert.Equal(t, 91.5, resp.Summary.AttendanceRate)
	assert.Equal(t, 7.4, resp.Summary.QuarterAverage)
	assert.Len(t, resp.Charts.QuarterAverages, 4)
	require.Contains(t, cache.stored, "dashboard:overview")

	// Second call is served from cache without touching the store again.
	_, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.countsCalls)
}

func TestOverviewAggregatesPaymentAndAnnouncementAlerts(t *testing.T) {
	repo := &fakeDashboardRepo{overdueCount: 7, expiredCount: 3}
	repo.lowAttendance = []repository.LowAttendanceStudent{
		{StudentID: "stu-1", StudentName: "Ana Souza", Rate: 60},
		{StudentID: "stu-2", StudentName: "Bruno Lima", Rate: 70},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{})

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 4)
	assert.Equal(t, dto.AlertSeverityHigh, resp.Alerts[0].Severity)
	assert.Equal(t, dto.AlertSeverityHigh, resp.Alerts[1].Severity)
	assert.Equal(t, dto.AlertSeverityMedium, resp.Alerts[2].Severity)
	assert.Equal(t, "7 payments overdue", resp.Alerts[2].Message)
	assert.Equal(t, dto.AlertSeverityLow, resp.Alerts[3].Severity)
	assert.Equal(t, "3 announcements expired", resp.Alerts[3].Message)
}

func TestOverviewAlertsAreCapped(t *testing.T) {
	repo := &fakeDashboardRepo{overdueCount: 4, expiredCount: 2}
	for i := 0; i < 5; i++ {
		repo.lowAttendance = append(repo.lowAttendance, repository.LowAttendanceStudent{
			StudentID: "stu", StudentName: "Student", Rate: 60,
		})
	}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{MaxAlerts: 6})

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.Alerts, 6)
	assert.Equal(t, dto.AlertSeverityHigh, resp.Alerts[0].Severity)
	assert.Equal(t, dto.AlertSeverityMedium, resp.Alerts[5].Severity)
}

func TestOverviewBuildsCategoryRecords(t *testing.T) {
	repo := &fakeDashboardRepo{byStatus: map[string]map[string]int{
		"students": {"ENROLLED": 80, "TRANSFERRED": 15, "INACTIVE": 5},
		"classes":  {"ACTIVE": 6, "ARCHIVED": 2},
	}}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{})

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Categories.Students.Total)
	assert.Equal(t, 80, resp.Categories.Students.Active)
	assert.Equal(t, 20, resp.Categories.Students.Inactive)
	assert.InDelta(t, 80.0, resp.Categories.Students.PercentActive, 0.001)
	assert.Equal(t, 8, resp.Categories.Classes.Total)
	assert.InDelta(t, 75.0, resp.Categories.Classes.PercentActive, 0.001)
}

func TestCategoryStatEmptyPopulation(t *testing.T) {
	stat := categoryStat(map[string]int{}, "ACTIVE")
	assert.Zero(t, stat.Total)
	assert.Zero(t, stat.PercentActive)
}

func TestOverviewFeedsGradePostings(t *testing.T) {
	now := time.Now().UTC()
	repo := &fakeDashboardRepo{grades: []models.GradeDetail{
		{
			Grade:          models.Grade{ID: "grd-1", Score: 8.5, UpdatedAt: now.Add(-time.Hour)},
			AssessmentName: "Prova 1",
			StudentName:    "Ana Souza",
		},
	}}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{})

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.RecentActivity, 1)
	assert.Equal(t, dto.ActivityKindGrade, resp.RecentActivity[0].Kind)
	assert.Equal(t, "Ana Souza scored 8.5 on Prova 1", resp.RecentActivity[0].Message)
}

func TestOverviewSkipsUnpaidActivity(t *testing.T) {
	repo := &fakeDashboardRepo{payments: []models.PaymentDetail{
		{StudentPayment: models.StudentPayment{ID: "pay-1", Amount: 100}},
	}}
	svc := NewDashboardService(repo, nil, nil, DashboardConfig{})

	resp, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, resp.RecentActivity)
}

func TestQuarterBounds(t *testing.T) {
	from, to := quarterBounds(2026, 1)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC), to)

	from, to = quarterBounds(2026, 4)
	assert.Equal(t, time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2027, time.January, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestQuarterWindowTracksCurrentQuarter(t *testing.T) {
	from, to := quarterWindow(time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.July, 31, 0, 0, 0, 0, time.UTC), to)
}

func TestQuarterWindowJanuaryUsesPreviousYear(t *testing.T) {
	from, to := quarterWindow(time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC), to)
}
