package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:    http.StatusBadRequest,
		KindUpstream:      http.StatusBadRequest,
		KindConflict:      http.StatusConflict,
		KindUnauthorized:  http.StatusUnauthorized,
		KindNotFound:      http.StatusNotFound,
		KindInternal:      http.StatusInternalServerError,
		KindConfiguration: http.StatusInternalServerError,
	}
	for kind, want := range cases {
		require.Equal(t, want, kind.Status(), kind.String())
	}
}

func TestStatusThroughWrapping(t *testing.T) {
	base := Conflict("taken")
	wrapped := fmt.Errorf("register: %w", base)

	require.Equal(t, http.StatusConflict, Status(wrapped))
	require.True(t, Is(wrapped, KindConflict))
	require.False(t, Is(wrapped, KindValidation))

	ae, ok := As(wrapped)
	require.True(t, ok)
	require.Equal(t, "taken", ae.Message)
}

func TestUntaggedIsInternal(t *testing.T) {
	require.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
	_, ok := As(errors.New("boom"))
	require.False(t, ok)
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("bucket missing")
	err := Upstream("Failed to upload avatar", cause)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "bucket missing")
}
