package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

const (
	testClassID      = "0f6e7c9e-6679-4d27-9d6e-550e8400e29b"
	testEnrollmentID = "550e8400-e29b-41d4-a716-446655440000"
)

type fakeAttendanceRepo struct {
	created []models.AttendanceRecord
}

func (f *fakeAttendanceRepo) List(_ context.Context, _ models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return nil, 0, nil
}

func (f *fakeAttendanceRepo) CreateBatch(_ context.Context, records []models.AttendanceRecord) error {
	f.created = append(f.created, records...)
	return nil
}

func (f *fakeAttendanceRepo) SummaryByClass(_ context.Context, _ string, _, _ time.Time) ([]models.AttendanceSummary, error) {
	return nil, nil
}

type fakeAttendanceEnrollments struct {
	enrollments map[string]*models.Enrollment
}

func (f *fakeAttendanceEnrollments) ActiveStudentIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (f *fakeAttendanceEnrollments) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	enrollment, ok := f.enrollments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return enrollment, nil
}

func attendanceRequest(date string) dto.RecordAttendanceRequest {
	return dto.RecordAttendanceRequest{
		ClassID: testClassID,
		Date:    date,
		Entries: []dto.AttendanceEntry{
			{EnrollmentID: testEnrollmentID, Present: true},
		},
	}
}

func TestRecordAttendance(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	enrollments := &fakeAttendanceEnrollments{enrollments: map[string]*models.Enrollment{
		testEnrollmentID: {ID: testEnrollmentID, ClassID: testClassID, Status: models.EnrollmentStatusActive},
	}}
	svc := NewAttendanceService(repo, enrollments, nil, nil)

	count, err := svc.Record(context.Background(), "usr-1", attendanceRequest("2026-03-10"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, repo.created, 1)
	assert.Equal(t, testEnrollmentID, repo.created[0].EnrollmentID)
	assert.Equal(t, "usr-1", repo.created[0].RecordedBy)
	assert.True(t, repo.created[0].Present)
}

func TestRecordAttendanceRejectsFutureDate(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	enrollments := &fakeAttendanceEnrollments{enrollments: map[string]*models.Enrollment{
		testEnrollmentID: {ID: testEnrollmentID, ClassID: testClassID},
	}}
	svc := NewAttendanceService(repo, enrollments, nil, nil)

	future := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	_, err := svc.Record(context.Background(), "usr-1", attendanceRequest(future))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestRecordAttendanceRejectsForeignEnrollment(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	enrollments := &fakeAttendanceEnrollments{enrollments: map[string]*models.Enrollment{
		testEnrollmentID: {ID: testEnrollmentID, ClassID: "b7e23ec2-9084-4a43-9f0c-8c7f9a1d2e3f"},
	}}
	svc := NewAttendanceService(repo, enrollments, nil, nil)

	_, err := svc.Record(context.Background(), "usr-1", attendanceRequest("2026-03-10"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestRecordAttendanceUnknownEnrollment(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	svc := NewAttendanceService(repo, &fakeAttendanceEnrollments{enrollments: map[string]*models.Enrollment{}}, nil, nil)

	_, err := svc.Record(context.Background(), "usr-1", attendanceRequest("2026-03-10"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}
