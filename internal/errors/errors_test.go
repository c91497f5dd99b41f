package errors_test

import (
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		err := &errors.APIError{StatusCode: http.StatusNotFound, Method: http.MethodGet, Path: "/investor"}
		require.EqualError(t, err, "GET /investor: 404 Not Found")
	})

	t.Run("long body truncated on a rune boundary", func(t *testing.T) {
		body := "a" + strings.Repeat("é", 250)
		err := &errors.APIError{StatusCode: http.StatusBadRequest, Method: http.MethodPost, Path: "/project", Body: []byte(body)}

		msg := err.Error()
		require.True(t, utf8.ValidString(msg))
		require.True(t, strings.HasSuffix(msg, "..."))
		require.Contains(t, msg, "a"+strings.Repeat("é", 199)+"...")
		require.NotContains(t, msg, strings.Repeat("é", 200))
	})
}

func TestAPIError_Is(t *testing.T) {
	cases := map[int]error{
		http.StatusUnauthorized:       errors.ErrUnauthorized,
		http.StatusForbidden:          errors.ErrForbidden,
		http.StatusNotFound:           errors.ErrNotFound,
		http.StatusConflict:           errors.ErrConflict,
		http.StatusServiceUnavailable: errors.ErrInternal,
	}
	for status, sentinel := range cases {
		err := errors.Wrapf(&errors.APIError{StatusCode: status}, "call")
		require.ErrorIs(t, err, sentinel)
		require.Equal(t, status, errors.StatusCode(err))
	}
	require.Zero(t, errors.StatusCode(errors.ErrTransport))
}
