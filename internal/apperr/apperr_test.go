package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Conflict, KindOf(New(Conflict, "duplicate email")))
	assert.Equal(t, Internal, KindOf(errors.New("plain error")))

	wrapped := fmt.Errorf("handler: %w", New(Unauthorized, "bad token"))
	assert.Equal(t, Unauthorized, KindOf(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ServiceUnavailable, "provider call failed", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "provider call failed")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessageHidesInternalDetail(t *testing.T) {
	assert.Equal(t, "Internal server error", Message(errors.New("pq: syntax error near SELECT")))
	assert.Equal(t, "Session not found", Message(New(NotFound, "Session not found")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		Conflict:           http.StatusConflict,
		Unauthorized:       http.StatusUnauthorized,
		NotFound:           http.StatusNotFound,
		InvalidArgument:    http.StatusBadRequest,
		ServiceUnavailable: http.StatusServiceUnavailable,
		Internal:           http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(New(kind, "x")))
	}
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unclassified")))
}
