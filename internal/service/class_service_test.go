package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type fakeClassRepo struct {
	class *models.ClassDetail

	codeExists  bool
	codeChecked string
	created     *models.Class
}

func (f *fakeClassRepo) List(context.Context, models.ClassFilter) ([]models.ClassDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeClassRepo) FindByID(context.Context, string) (*models.ClassDetail, error) {
	return f.class, nil
}

func (f *fakeClassRepo) ExistsByCode(_ context.Context, code, _ string) (bool, error) {
	f.codeChecked = code
	return f.codeExists, nil
}

func (f *fakeClassRepo) Create(_ context.Context, class *models.Class) error {
	f.created = class
	return nil
}
func (f *fakeClassRepo) Update(context.Context, *models.Class) error { return nil }
func (f *fakeClassRepo) Delete(context.Context, string) error        { return nil }

type fakeRosterEnrollments struct {
	active []string

	appliedRemovals   []string
	appliedAdditions  []models.Enrollment
	applyCalled       bool
	createdEnrollment *models.Enrollment
}

func (f *fakeRosterEnrollments) List(context.Context, models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeRosterEnrollments) ActiveStudentIDs(context.Context, string) ([]string, error) {
	return f.active, nil
}

func (f *fakeRosterEnrollments) CountActive(context.Context, string) (int, error) {
	return len(f.active), nil
}

func (f *fakeRosterEnrollments) Create(_ context.Context, enrollment *models.Enrollment) error {
	f.createdEnrollment = enrollment
	return nil
}

func (f *fakeRosterEnrollments) ApplyRosterChanges(_ context.Context, _ string, removals []string, additions []models.Enrollment) error {
	f.applyCalled = true
	f.appliedRemovals = removals
	f.appliedAdditions = additions
	return nil
}

type fakeRosterStudents struct {
	existing map[string]bool
}

func (f *fakeRosterStudents) FilterExistingIDs(_ context.Context, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if f.existing[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func newRosterService(class *models.ClassDetail, active []string, existing map[string]bool) (*ClassService, *fakeRosterEnrollments) {
	enrollments := &fakeRosterEnrollments{active: active}
	svc := NewClassService(&fakeClassRepo{class: class}, enrollments, &fakeRosterStudents{existing: existing}, nil, nil, nil)
	return svc, enrollments
}

func rosterClass(capacity int) *models.ClassDetail {
	return &models.ClassDetail{
		Class: models.Class{ID: "cls-1", Name: "1A", Year: 2026, Capacity: capacity, Status: models.ClassStatusActive},
	}
}

func TestCreateClassNormalizesCode(t *testing.T) {
	repo := &fakeClassRepo{}
	svc := NewClassService(repo, nil, nil, nil, nil, nil)

	class, err := svc.Create(context.Background(), dto.CreateClassRequest{
		SchoolID: "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		CourseID: "550e8400-e29b-41d4-a716-446655440000",
		Name:     "1º Ano A",
		Code:     "  1a-2026  ",
		Year:     2026,
		Shift:    models.ShiftMorning,
		Capacity: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "1A-2026", class.Code)
	assert.Equal(t, "1A-2026", repo.codeChecked)
	require.NotNil(t, repo.created)
	assert.Equal(t, "1A-2026", repo.created.Code)
}

func TestCreateClassRejectsDuplicateCode(t *testing.T) {
	repo := &fakeClassRepo{codeExists: true}
	svc := NewClassService(repo, nil, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateClassRequest{
		SchoolID: "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		CourseID: "550e8400-e29b-41d4-a716-446655440000",
		Name:     "1º Ano A",
		Code:     "1A-2026",
		Year:     2026,
		Shift:    models.ShiftMorning,
		Capacity: 30,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestSyncRosterAddsAndRemoves(t *testing.T) {
	svc, enrollments := newRosterService(rosterClass(30),
		[]string{"stu-1", "stu-2", "stu-3"},
		map[string]bool{"stu-2": true, "stu-3": true, "stu-4": true},
	)

	result, err := svc.SyncRoster(context.Background(), "cls-1", dto.SyncRosterRequest{
		StudentIDs: []string{"stu-2", "stu-3", "stu-4"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"stu-4"}, result.Added)
	assert.Equal(t, []string{"stu-1"}, result.Removed)
	assert.Equal(t, 2, result.Kept)
	assert.Equal(t, 3, result.TotalActive)

	assert.Equal(t, []string{"stu-1"}, enrollments.appliedRemovals)
	require.Len(t, enrollments.appliedAdditions, 1)
	assert.Equal(t, "stu-4", enrollments.appliedAdditions[0].StudentID)
	assert.Equal(t, 2026, enrollments.appliedAdditions[0].AcademicYear)
	assert.NotEmpty(t, enrollments.appliedAdditions[0].EnrollmentNumber)
}

func TestSyncRosterIdempotent(t *testing.T) {
	svc, enrollments := newRosterService(rosterClass(30),
		[]string{"stu-1", "stu-2"},
		map[string]bool{"stu-1": true, "stu-2": true},
	)

	result, err := svc.SyncRoster(context.Background(), "cls-1", dto.SyncRosterRequest{
		StudentIDs: []string{"stu-1", "stu-2"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
	assert.Equal(t, 2, result.Kept)
	assert.Empty(t, enrollments.appliedRemovals)
	assert.Empty(t, enrollments.appliedAdditions)
}

func TestSyncRosterDropsUnknownIDs(t *testing.T) {
	svc, enrollments := newRosterService(rosterClass(30),
		nil,
		map[string]bool{"stu-1": true},
	)

	result, err := svc.SyncRoster(context.Background(), "cls-1", dto.SyncRosterRequest{
		StudentIDs: []string{"stu-1", "ghost-1", "ghost-2"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"stu-1"}, result.Added)
	assert.Equal(t, 1, result.TotalActive)
	require.Len(t, enrollments.appliedAdditions, 1)
}

func TestSyncRosterCollapsesDuplicates(t *testing.T) {
	svc, _ := newRosterService(rosterClass(30),
		nil,
		map[string]bool{"stu-1": true},
	)

	result, err := svc.SyncRoster(context.Background(), "cls-1", dto.SyncRosterRequest{
		StudentIDs: []string{"stu-1", "stu-1", "stu-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1"}, result.Added)
	assert.Equal(t, 1, result.TotalActive)
}

func TestSyncRosterRejectsOverCapacity(t *testing.T) {
	svc, enrollments := newRosterService(rosterClass(2),
		nil,
		map[string]bool{"stu-1": true, "stu-2": true, "stu-3": true},
	)

	_, err := svc.SyncRoster(context.Background(), "cls-1", dto.SyncRosterRequest{
		StudentIDs: []string{"stu-1", "stu-2", "stu-3"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.False(t, enrollments.applyCalled)
}

func TestEnrollStampsYearAndNotes(t *testing.T) {
	svc, enrollments := newRosterService(rosterClass(30),
		nil,
		map[string]bool{"550e8400-e29b-41d4-a716-446655440000": true},
	)

	notes := "bolsista integral"
	enrollment, err := svc.Enroll(context.Background(), "cls-1", dto.EnrollStudentRequest{
		StudentID: "550e8400-e29b-41d4-a716-446655440000",
		Notes:     &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, 2026, enrollment.AcademicYear)
	require.NotNil(t, enrollment.Notes)
	assert.Equal(t, notes, *enrollment.Notes)
	assert.Same(t, enrollment, enrollments.createdEnrollment)
}

func TestDiffRosterDeterministicOrder(t *testing.T) {
	changes := diffRoster([]string{"a", "b", "c"}, []string{"c", "d", "e"})
	assert.Equal(t, []string{"d", "e"}, changes.ToAdd)
	assert.Equal(t, []string{"a", "b"}, changes.ToRemove)
}

func TestEnrollmentNumberShape(t *testing.T) {
	number, err := enrollmentNumber("7c9e6679-7425-40de-944b-e07fc1f90ae7", "550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)

	parts := strings.Split(number, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "T7C9E6679", parts[0])
	assert.Equal(t, "A550E8400", parts[1])
	assert.Len(t, parts[2], 6)
	assert.Equal(t, strings.ToUpper(number), number)
}
