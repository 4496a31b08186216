package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryFilterExistingIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id"}).AddRow("stu-1").AddRow("stu-3")
	mock.ExpectQuery("SELECT id FROM students WHERE id IN").
		WithArgs("stu-1", "stu-2", "stu-3").
		WillReturnRows(rows)

	existing, err := repo.FilterExistingIDs(context.Background(), []string{"stu-1", "stu-2", "stu-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1", "stu-3"}, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFilterExistingIDsEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	existing, err := repo.FilterExistingIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, existing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByRegistrationNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM students WHERE registration_code = $1 LIMIT 1")).
		WithArgs("RA2026-ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByRegistration(context.Background(), "RA2026-ABC123", "")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositorySetStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET status").
		WithArgs("stu-1", models.StudentStatusDropped, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetStatus(context.Background(), "stu-1", models.StudentStatusDropped)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "school_id", "registration_code", "birth_date", "gender", "document_number", "address",
		"guardian_name", "guardian_phone", "guardian_email", "status", "enrolled_at", "created_at", "updated_at",
		"name", "email", "phone", "user_status",
	}).AddRow(
		"stu-1", "usr-1", "sch-1", "RA2026-000001", now, nil, nil, nil,
		nil, nil, nil, models.StudentStatusEnrolled, now, now, now,
		"Ana Souza", "ana@example.com", nil, models.UserStatusActive,
	)
	mock.ExpectQuery("SELECT .* FROM students s JOIN users u ON u.id = s.user_id WHERE 1=1 AND s.school_id =").
		WithArgs("sch-1").
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("sch-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{SchoolID: "sch-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "Ana Souza", students[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
