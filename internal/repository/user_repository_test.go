package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sige-edu/sige-api/internal/models"
)

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "full_name", "email", "password_hash", "role", "status",
		"phone", "document_number", "photo_path", "last_login", "created_at", "updated_at",
	}).AddRow("usr-1", "Ana Souza", "ana@example.com", "hash", models.RoleAdmin, models.UserStatusActive,
		nil, nil, nil, nil, now, now)
	mock.ExpectQuery("SELECT .* FROM users WHERE LOWER").
		WithArgs("Ana@Example.com").
		WillReturnRows(rows)

	user, err := repo.FindByEmail(context.Background(), "Ana@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", user.ID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .* FROM users WHERE LOWER").
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "missing@example.com")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindRefreshToken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "revoked_at", "created_at"}).
		AddRow("tok-1", "usr-1", "abc123", now.Add(time.Hour), nil, now)
	mock.ExpectQuery("SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens").
		WithArgs("abc123").
		WillReturnRows(rows)

	token, err := repo.FindRefreshToken(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", token.UserID)
	assert.True(t, token.Valid(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRevokeUserRefreshTokens(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at =").
		WithArgs("usr-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.RevokeUserRefreshTokens(context.Background(), "usr-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
