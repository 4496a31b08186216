package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/models"
)

func TestEnrollmentRepositoryActiveStudentIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id"}).AddRow("stu-1").AddRow("stu-2")
	mock.ExpectQuery("SELECT student_id FROM enrollments WHERE class_id =").
		WithArgs("cls-1", models.EnrollmentStatusActive).
		WillReturnRows(rows)

	ids, err := repo.ActiveStudentIDs(context.Background(), "cls-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1", "stu-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryApplyRosterChanges(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollments SET status =").
		WithArgs(models.EnrollmentStatusTransferred, sqlmock.AnyArg(), sqlmock.AnyArg(), "cls-1", models.EnrollmentStatusActive, "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollments").
		WithArgs(sqlmock.AnyArg(), "cls-1", "stu-4", "T1234-A5678-ABCDEF", 2026, models.EnrollmentStatusActive, sqlmock.AnyArg(), nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ApplyRosterChanges(context.Background(), "cls-1",
		[]string{"stu-1"},
		[]models.Enrollment{{StudentID: "stu-4", EnrollmentNumber: "T1234-A5678-ABCDEF", AcademicYear: 2026}},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryApplyRosterChangesNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	// No transaction is opened when there is nothing to change.
	err := repo.ApplyRosterChanges(context.Background(), "cls-1", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryApplyRosterChangesRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollments SET status =").
		WithArgs(models.EnrollmentStatusTransferred, sqlmock.AnyArg(), sqlmock.AnyArg(), "cls-1", models.EnrollmentStatusActive, "stu-1").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ApplyRosterChanges(context.Background(), "cls-1", []string{"stu-1"}, nil)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCountActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("cls-1", models.EnrollmentStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(28))

	count, err := repo.CountActive(context.Background(), "cls-1")
	require.NoError(t, err)
	assert.Equal(t, 28, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
