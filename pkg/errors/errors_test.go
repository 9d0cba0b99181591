package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := NewConflictError("stream already present")
	want := "CONFLICT: stream already present"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	wrapped := NewInternalError("snapshot store write failed")
	wrapped.Cause = errors.New("connection refused")
	if got := wrapped.Error(); got != "INTERNAL_ERROR: snapshot store write failed (caused by: connection refused)" {
		t.Errorf("unexpected message with cause: %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("redis down")
	err := NewInternalError("save failed")
	err.Cause = cause

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through AppError to the cause")
	}
}

func TestAppError_WithContext(t *testing.T) {
	err := NewInvalidInputError("bad stream id").
		WithContext("stream_id", "has spaces").
		WithContext("field", "stream_id")

	if err.Context["stream_id"] != "has spaces" {
		t.Error("context value lost")
	}
	if len(err.Context) != 2 {
		t.Errorf("expected 2 context entries, got %d", len(err.Context))
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   ErrorCode
		status int
	}{
		{NewInvalidInputError("x"), ErrCodeInvalidInput, http.StatusBadRequest},
		{NewNotFoundError("session"), ErrCodeNotFound, http.StatusNotFound},
		{NewUnauthorizedError("x"), ErrCodeUnauthorized, http.StatusUnauthorized},
		{NewConflictError("x"), ErrCodeConflict, http.StatusConflict},
		{NewRateLimitError(), ErrCodeRateLimit, http.StatusTooManyRequests},
		{NewInternalError("x"), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestNotFoundError_MessageNamesResource(t *testing.T) {
	err := NewNotFoundError("snapshot")
	if err.Message != "snapshot not found" {
		t.Errorf("unexpected message: %q", err.Message)
	}
}

func TestGetAppError(t *testing.T) {
	app := NewConflictError("layout is full")

	if got := GetAppError(app); got != app {
		t.Error("direct AppError not extracted")
	}
	if got := GetAppError(fmt.Errorf("handler: %w", app)); got != app {
		t.Error("wrapped AppError not extracted")
	}
	if got := GetAppError(errors.New("plain")); got != nil {
		t.Error("plain error should yield nil")
	}
	if got := GetAppError(nil); got != nil {
		t.Error("nil error should yield nil")
	}
}
