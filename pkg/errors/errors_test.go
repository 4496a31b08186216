package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrNotFound, "class not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, ErrNotFound.Code, err.Code)
	assert.Equal(t, "class not found", err.Message)
	// The sentinel itself must stay untouched.
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load class")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFromErrorNormalises(t *testing.T) {
	typed := FromError(fmt.Errorf("boom"))
	require.NotNil(t, typed)
	assert.Equal(t, ErrInternal.Code, typed.Code)

	passthrough := FromError(Clone(ErrForbidden, ""))
	assert.Equal(t, ErrForbidden.Code, passthrough.Code)

	assert.Nil(t, FromError(nil))
}
