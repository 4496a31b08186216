package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
	"github.com/sige-edu/sige-api/pkg/jobs"
)

type fakeReportRepo struct {
	jobs map[string]*models.ReportJob
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{jobs: map[string]*models.ReportJob{}}
}

func (f *fakeReportRepo) Create(_ context.Context, job *models.ReportJob) error {
	job.ID = "job-1"
	job.Status = models.ReportJobPending
	job.CreatedAt = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeReportRepo) FindByID(_ context.Context, id string) (*models.ReportJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (f *fakeReportRepo) ListByRequester(_ context.Context, _ string, _ int) ([]models.ReportJob, error) {
	return nil, nil
}

func (f *fakeReportRepo) MarkProcessing(_ context.Context, id string) error {
	f.jobs[id].Status = models.ReportJobProcessing
	return nil
}

func (f *fakeReportRepo) MarkCompleted(_ context.Context, id, filePath string) error {
	f.jobs[id].Status = models.ReportJobCompleted
	f.jobs[id].FilePath = &filePath
	return nil
}

func (f *fakeReportRepo) MarkFailed(_ context.Context, id, reason string) error {
	f.jobs[id].Status = models.ReportJobFailed
	f.jobs[id].Error = &reason
	return nil
}

type fakeReportData struct{}

func (fakeReportData) ListStudents(_ context.Context, _ models.StudentFilter) ([]models.StudentDetail, int, error) {
	return []models.StudentDetail{{
		Student: models.Student{
			RegistrationCode: "2026-0001",
			Status:           models.StudentStatusEnrolled,
			EnrolledAt:       time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC),
		},
		Name:  "Ana Lima",
		Email: "ana@school.test",
	}}, 1, nil
}

func (fakeReportData) ListGrades(_ context.Context, _ models.GradeFilter) ([]models.GradeDetail, int, error) {
	return nil, 0, nil
}

func (fakeReportData) ListAttendance(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return nil, 0, nil
}

func (fakeReportData) ListPayments(_ context.Context, _ models.PaymentFilter) ([]models.PaymentDetail, int, error) {
	return nil, 0, nil
}

type fakeReportStore struct {
	saved map[string][]byte
}

func (f *fakeReportStore) Save(filename string, data []byte) (string, error) {
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return filename, nil
}

func (f *fakeReportStore) Path(filename string) string {
	return "/var/reports/" + filename
}

type fakeEnqueuer struct {
	enqueued []jobs.Job
	fail     bool
}

func (f *fakeEnqueuer) Enqueue(job jobs.Job) error {
	if f.fail {
		return assert.AnError
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

type fakeReportSigner struct{}

func (fakeReportSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	return jobID + ":" + relPath, time.Now().Add(time.Hour), nil
}

func (fakeReportSigner) Parse(token string) (string, string, time.Time, error) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 {
		return "", "", time.Time{}, assert.AnError
	}
	return parts[0], parts[1], time.Now().Add(time.Hour), nil
}

func newTestReportService(repo *fakeReportRepo, store *fakeReportStore, queue *fakeEnqueuer) *ReportService {
	svc := NewReportService(repo, fakeReportData{}, store, fakeReportSigner{}, nil)
	if queue != nil {
		svc.SetQueue(queue)
	}
	return svc
}

func TestGenerateEnqueuesJob(t *testing.T) {
	repo := newFakeReportRepo()
	queue := &fakeEnqueuer{}
	svc := newTestReportService(repo, &fakeReportStore{}, queue)

	resp, err := svc.Generate(context.Background(), "usr-1", dto.GenerateReportRequest{
		Type:   models.ReportTypeStudents,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", resp.ID)
	assert.Equal(t, models.ReportJobPending, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, "job-1", queue.enqueued[0].ID)
}

func TestGenerateMarksFailedWhenQueueRejects(t *testing.T) {
	repo := newFakeReportRepo()
	svc := newTestReportService(repo, &fakeReportStore{}, &fakeEnqueuer{fail: true})

	_, err := svc.Generate(context.Background(), "usr-1", dto.GenerateReportRequest{
		Type:   models.ReportTypeStudents,
		Format: models.ReportFormatCSV,
	})
	require.Error(t, err)
	assert.Equal(t, models.ReportJobFailed, repo.jobs["job-1"].Status)
}

func TestProcessRendersAndCompletes(t *testing.T) {
	repo := newFakeReportRepo()
	store := &fakeReportStore{}
	svc := newTestReportService(repo, store, &fakeEnqueuer{})

	_, err := svc.Generate(context.Background(), "usr-1", dto.GenerateReportRequest{
		Type:   models.ReportTypeStudents,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), jobs.Job{ID: "job-1", Payload: "job-1"}))

	job := repo.jobs["job-1"]
	assert.Equal(t, models.ReportJobCompleted, job.Status)
	require.NotNil(t, job.FilePath)
	assert.Equal(t, "students/job-1.csv", *job.FilePath)
	assert.Contains(t, string(store.saved["students/job-1.csv"]), "Ana Lima")
}

func TestProcessSkipsFinishedJob(t *testing.T) {
	repo := newFakeReportRepo()
	path := "students/job-1.csv"
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Status: models.ReportJobCompleted, FilePath: &path}
	store := &fakeReportStore{}
	svc := newTestReportService(repo, store, &fakeEnqueuer{})

	require.NoError(t, svc.Process(context.Background(), jobs.Job{ID: "job-1", Payload: "job-1"}))
	assert.Empty(t, store.saved)
}

func TestProcessRenderFailureDoesNotRetry(t *testing.T) {
	repo := newFakeReportRepo()
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Type: "BOGUS", Status: models.ReportJobPending}
	svc := newTestReportService(repo, &fakeReportStore{}, &fakeEnqueuer{})

	// A nil return keeps the queue from retrying an unrenderable job.
	require.NoError(t, svc.Process(context.Background(), jobs.Job{ID: "job-1", Payload: "job-1"}))
	assert.Equal(t, models.ReportJobFailed, repo.jobs["job-1"].Status)
}

func TestStatusHidesForeignJobs(t *testing.T) {
	repo := newFakeReportRepo()
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Status: models.ReportJobPending, RequestedBy: "usr-1"}
	svc := newTestReportService(repo, &fakeReportStore{}, &fakeEnqueuer{})

	_, err := svc.Status(context.Background(), "usr-2", models.RoleTeacher, "job-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	// Admins see every job.
	_, err = svc.Status(context.Background(), "usr-2", models.RoleAdmin, "job-1")
	require.NoError(t, err)
}

func TestStatusSignsCompletedDownload(t *testing.T) {
	repo := newFakeReportRepo()
	path := "students/job-1.csv"
	repo.jobs["job-1"] = &models.ReportJob{
		ID: "job-1", Status: models.ReportJobCompleted, FilePath: &path, RequestedBy: "usr-1",
	}
	svc := newTestReportService(repo, &fakeReportStore{}, &fakeEnqueuer{})

	status, err := svc.Status(context.Background(), "usr-1", models.RoleTeacher, "job-1")
	require.NoError(t, err)
	require.NotNil(t, status.DownloadURL)
	assert.Equal(t, "/reports/download?token=job-1:students/job-1.csv", *status.DownloadURL)
}

func TestResolveDownload(t *testing.T) {
	repo := newFakeReportRepo()
	path := "students/job-1.csv"
	repo.jobs["job-1"] = &models.ReportJob{
		ID: "job-1", Type: models.ReportTypeStudents, Format: models.ReportFormatCSV,
		Status: models.ReportJobCompleted, FilePath: &path,
		CreatedAt: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
	svc := newTestReportService(repo, &fakeReportStore{}, &fakeEnqueuer{})

	absPath, filename, err := svc.ResolveDownload(context.Background(), "job-1:students/job-1.csv")
	require.NoError(t, err)
	assert.Equal(t, "/var/reports/students/job-1.csv", absPath)
	assert.Equal(t, "students-20260310.csv", filename)
}

func TestResolveDownloadRejectsStalePath(t *testing.T) {
	repo := newFakeReportRepo()
	path := "students/job-1.csv"
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Status: models.ReportJobCompleted, FilePath: &path}
	svc := newTestReportService(repo, &fakeReportStore{}, &fakeEnqueuer{})

	_, _, err := svc.ResolveDownload(context.Background(), "job-1:students/other.csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
