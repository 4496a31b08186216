package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sige-edu/sige-api/internal/dto"
	"github.com/sige-edu/sige-api/internal/models"
	appErrors "github.com/sige-edu/sige-api/pkg/errors"
)

type fakeAuthRepo struct {
	user          *models.User
	refreshTokens map[string]*models.RefreshToken
	revokedIDs    []string
	revokedAllFor string
	lastLoginSet  bool
	passwordHash  string
}

func newFakeAuthRepo(user *models.User) *fakeAuthRepo {
	return &fakeAuthRepo{user: user, refreshTokens: map[string]*models.RefreshToken{}}
}

func (f *fakeAuthRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeAuthRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return f.user, nil
}

func (f *fakeAuthRepo) UpdateLastLogin(_ context.Context, _ string, _ time.Time) error {
	f.lastLoginSet = true
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(_ context.Context, _ string, hash string, _ time.Time) error {
	f.passwordHash = hash
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(_ context.Context, token *models.RefreshToken) error {
	token.ID = "tok-" + token.TokenHash[:8]
	f.refreshTokens[token.TokenHash] = token
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	token, ok := f.refreshTokens[tokenHash]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return token, nil
}

func (f *fakeAuthRepo) RevokeRefreshToken(_ context.Context, id string, revokedAt time.Time) error {
	f.revokedIDs = append(f.revokedIDs, id)
	for _, token := range f.refreshTokens {
		if token.ID == id {
			at := revokedAt
			token.RevokedAt = &at
		}
	}
	return nil
}

func (f *fakeAuthRepo) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	f.revokedAllFor = userID
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "sige-api",
	}
}

func activeUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return &models.User{
		ID:           "usr-1",
		FullName:     "Maria Souza",
		Email:        "maria@school.test",
		PasswordHash: string(hash),
		Role:         models.RoleDirector,
		Status:       models.UserStatusActive,
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.True(t, repo.lastLoginSet)
	assert.Len(t, repo.refreshTokens, 1)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "usr-1", claims.UserID)
	assert.Equal(t, models.RoleDirector, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@school.test", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeUser("s3cret-pass")
	user.Status = models.UserStatusSuspended
	svc := NewAuthService(newFakeAuthRepo(user), nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "s3cret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Len(t, repo.revokedIDs, 1)

	// The used token was revoked and cannot be replayed.
	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshExpiredToken(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	cfg := testAuthConfig()
	cfg.RefreshTokenExpiry = -time.Minute
	svc := NewAuthService(repo, nil, nil, cfg)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), "usr-other", login.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(context.Background(), "usr-1", login.RefreshToken))
	assert.Len(t, repo.revokedIDs, 1)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "usr-1", dto.ChangePasswordRequest{
		CurrentPassword: "s3cret-pass",
		NewPassword:     "brand-new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "usr-1", repo.revokedAllFor)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordHash), []byte("brand-new-pass")))
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	repo := newFakeAuthRepo(activeUser("s3cret-pass"))
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "usr-1", dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "brand-new-pass",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revokedAllFor)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	svc := NewAuthService(newFakeAuthRepo(activeUser("s3cret-pass")), nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{Email: "maria@school.test", Password: "s3cret-pass"})
	require.NoError(t, err)

	other := NewAuthService(newFakeAuthRepo(nil), nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
