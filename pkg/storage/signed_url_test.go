package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedURLRoundtrip(t *testing.T) {
	signer := NewSignedURLSigner("token-secret", time.Hour)

	token, expiresAt, err := signer.Generate("job-1", "students/job-1.csv")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, relPath, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "students/job-1.csv", relPath)
	assert.Equal(t, expiresAt.Unix(), parsedExpiry.Unix())
}

func TestSignedURLRejectsTamperedPath(t *testing.T) {
	signer := NewSignedURLSigner("token-secret", time.Hour)

	token, _, err := signer.Generate("job-1", "students/job-1.csv")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	parts[2] = "Zm9yZ2VkL3BhdGguY3N2"
	_, _, _, err = signer.Parse(strings.Join(parts, "."))
	require.Error(t, err)
}

func TestSignedURLRejectsForeignSecret(t *testing.T) {
	signer := NewSignedURLSigner("token-secret", time.Hour)
	other := NewSignedURLSigner("other-secret", time.Hour)

	token, _, err := signer.Generate("job-1", "students/job-1.csv")
	require.NoError(t, err)

	_, _, _, err = other.Parse(token)
	require.Error(t, err)
}

func TestSignedURLExpires(t *testing.T) {
	signer := NewSignedURLSigner("token-secret", time.Nanosecond)

	token, _, err := signer.Generate("job-1", "students/job-1.csv")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, _, _, err = signer.Parse(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestSignedURLRejectsEmptyInput(t *testing.T) {
	signer := NewSignedURLSigner("token-secret", time.Hour)

	_, _, err := signer.Generate("", "students/job-1.csv")
	require.Error(t, err)

	_, _, _, err = signer.Parse("not-a-token")
	require.Error(t, err)
}
