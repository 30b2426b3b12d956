package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	base := New("TEST", "something failed", http.StatusBadRequest)
	wrapped := base.WithInternal(errors.New("boom"))

	require.Equal(t, "something failed: boom", wrapped.Error())
	require.Equal(t, "something failed", base.Error())
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	err := New("CUSTOM", "custom failure", http.StatusConflict)

	converted := FromError(err)
	require.Same(t, err, converted)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	cause := errors.New("db down")
	converted := FromError(cause)

	require.Equal(t, ErrInternalServer.Code, converted.Code)
	require.ErrorIs(t, converted, cause)
}

func TestUnwrapExposesInternal(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := Wrap(cause, "operation failed")

	require.ErrorIs(t, wrapped, cause)
	require.Equal(t, http.StatusInternalServerError, wrapped.StatusCode)
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestErrorsIsMatchesAcrossCopies(t *testing.T) {
	base := New("UPSTREAM_FAILED", "upstream failed", http.StatusBadGateway)

	wrapped := base.WithInternal(errors.New("timeout"))
	require.ErrorIs(t, wrapped, base)

	reworded := base.WithMessage("the upstream call failed")
	require.ErrorIs(t, reworded, base)

	other := New("OTHER", "different failure", http.StatusBadGateway)
	require.NotErrorIs(t, wrapped, other)
	require.NotErrorIs(t, wrapped, errors.New("timeout failure"))
}
