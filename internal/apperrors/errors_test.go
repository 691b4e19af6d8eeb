package apperrors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestTypedErrors(t *testing.T) {
	err := NewNotFoundError("purchase order %s not found", "abc")
	require.True(t, IsNotFound(err))
	require.False(t, IsValidation(err))
	require.Equal(t, http.StatusNotFound, StatusCode(err))
	require.Equal(t, "NOT_FOUND", CodeOf(err))
	require.Equal(t, "purchase order abc not found", err.Error())
}

func TestWrappedErrorsKeepTheirType(t *testing.T) {
	err := errors.Wrap(NewValidationError("bad input"), "handling request")
	require.True(t, IsValidation(err))
	require.Equal(t, http.StatusBadRequest, StatusCode(err))
}

func TestWrapDatabaseError(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDatabaseError(cause, "failed to list customers")

	require.True(t, IsDatabase(err))
	require.Equal(t, http.StatusInternalServerError, StatusCode(err))
	require.Equal(t, "DATABASE_ERROR", CodeOf(err))
	require.Equal(t, "failed to list customers: connection reset", err.Error())
	require.True(t, errors.Is(err, cause))
}

func TestUnknownErrorDefaults(t *testing.T) {
	err := errors.New("boom")
	require.False(t, IsNotFound(err))
	require.Equal(t, http.StatusInternalServerError, StatusCode(err))
	require.Equal(t, "INTERNAL_ERROR", CodeOf(err))
}
