package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCode(t *testing.T) {
	assert.True(t, IsCode(ErrLockConflict, CodeLockConflict))
	assert.False(t, IsCode(ErrLockConflict, CodeStatusConflict))
	assert.False(t, IsCode(errors.New("plain"), CodeLockConflict))
}

func TestWithHelpersCopy(t *testing.T) {
	base := ErrStatusConflict

	withDetail := base.WithDetail("chapter is finalized")
	withMeta := base.WithMeta(map[string]any{"from": "reviewing"})

	// 预定义错误不被就地修改
	assert.Empty(t, base.Detail)
	assert.Nil(t, base.Meta)

	assert.Equal(t, "chapter is finalized", withDetail.Detail)
	assert.Equal(t, "reviewing", withMeta.Meta["from"])
	assert.Equal(t, base.Code, withDetail.Code)
	assert.Equal(t, base.HTTPStatus, withMeta.HTTPStatus)
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{ErrLockConflict, http.StatusConflict},
		{ErrStatusConflict, http.StatusConflict},
		{ErrNotProjectMember, http.StatusForbidden},
		{ErrUnlockDenied, http.StatusForbidden},
		{ErrSnapshotShape, http.StatusUnprocessableEntity},
		{ErrTransientStore, http.StatusServiceUnavailable},
		{ErrChapterNotFound, http.StatusNotFound},
		{ErrInvalidParam, http.StatusBadRequest},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus, string(tt.err.Code))
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeDatabaseError, "failed to load chapter")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, CodeDatabaseError, err.Code)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestAsAppError(t *testing.T) {
	appErr := AsAppError(ErrForbidden)
	assert.Equal(t, CodeForbidden, appErr.Code)

	wrapped := AsAppError(errors.New("plain"))
	assert.Equal(t, CodeUnknown, wrapped.Code)
}
