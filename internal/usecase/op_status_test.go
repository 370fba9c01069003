package usecase_test

import (
	"errors"
	"net/http"
	"testing"

	"heat/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpStatus(t *testing.T) {
	s := usecase.NewOpStatus()

	require.NoError(t, s.Begin("u1"))
	assert.True(t, s.IsLoading("u1"))
	assert.ErrorIs(t, s.Begin("u1"), usecase.ErrBusy)
	// キーが違えば独立
	require.NoError(t, s.Begin("u2"))

	s.End("u1", usecase.NewHTTPError(http.StatusInternalServerError, "Error al crear orden"))
	assert.False(t, s.IsLoading("u1"))
	assert.Equal(t, "Error al crear orden", s.LastError("u1"))

	s.End("u2", errors.New("plain"))
	assert.Equal(t, "plain", s.LastError("u2"))

	// Begin でエラーは消える
	require.NoError(t, s.Begin("u1"))
	assert.Empty(t, s.LastError("u1"))
	s.End("u1", nil)
	assert.Empty(t, s.LastError("u1"))
}
