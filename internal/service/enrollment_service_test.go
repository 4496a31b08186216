package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type fakeEnrollmentRepo struct {
	enrollment *models.Enrollment
	setCalled  bool
	setStatus  models.EnrollmentStatus
}

func (f *fakeEnrollmentRepo) List(_ context.Context, _ models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeEnrollmentRepo) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	if f.enrollment == nil || f.enrollment.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *f.enrollment
	return &copied, nil
}

func (f *fakeEnrollmentRepo) SetStatus(_ context.Context, _ string, status models.EnrollmentStatus) error {
	f.setCalled = true
	f.setStatus = status
	return nil
}

func enrollmentWithStatus(status models.EnrollmentStatus) *models.Enrollment {
	return &models.Enrollment{ID: "enr-1", ClassID: "cls-1", StudentID: "stu-1", Status: status}
}

func TestSetStatusAllowedTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.EnrollmentStatus
		to   models.EnrollmentStatus
	}{
		{"active to locked", models.EnrollmentStatusActive, models.EnrollmentStatusLocked},
		{"active to transferred", models.EnrollmentStatusActive, models.EnrollmentStatusTransferred},
		{"active to completed", models.EnrollmentStatusActive, models.EnrollmentStatusCompleted},
		{"locked to active", models.EnrollmentStatusLocked, models.EnrollmentStatusActive},
		{"locked to transferred", models.EnrollmentStatusLocked, models.EnrollmentStatusTransferred},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeEnrollmentRepo{enrollment: enrollmentWithStatus(tc.from)}
			svc := NewEnrollmentService(repo, nil, nil)

			updated, err := svc.SetStatus(context.Background(), "enr-1", tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.to, updated.Status)
			assert.True(t, repo.setCalled)
			assert.Equal(t, tc.to, repo.setStatus)
		})
	}
}

func TestSetStatusRejectsInvalidTransitions(t *testing.T) {
	cases := []struct {
		name string
		from models.EnrollmentStatus
		to   models.EnrollmentStatus
	}{
		{"completed is terminal", models.EnrollmentStatusCompleted, models.EnrollmentStatusActive},
		{"transferred is terminal", models.EnrollmentStatusTransferred, models.EnrollmentStatusActive},
		{"locked cannot complete", models.EnrollmentStatusLocked, models.EnrollmentStatusCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeEnrollmentRepo{enrollment: enrollmentWithStatus(tc.from)}
			svc := NewEnrollmentService(repo, nil, nil)

			_, err := svc.SetStatus(context.Background(), "enr-1", tc.to)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
			assert.False(t, repo.setCalled)
		})
	}
}

func TestSetStatusSameStatusIsNoop(t *testing.T) {
	repo := &fakeEnrollmentRepo{enrollment: enrollmentWithStatus(models.EnrollmentStatusActive)}
	svc := NewEnrollmentService(repo, nil, nil)

	updated, err := svc.SetStatus(context.Background(), "enr-1", models.EnrollmentStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, updated.Status)
	assert.False(t, repo.setCalled)
}

func TestSetStatusNotFound(t *testing.T) {
	svc := NewEnrollmentService(&fakeEnrollmentRepo{}, nil, nil)

	_, err := svc.SetStatus(context.Background(), "missing", models.EnrollmentStatusLocked)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
