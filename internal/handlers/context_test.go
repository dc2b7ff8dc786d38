package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/irisvest/backend/internal/apperr"
)

func TestHttpErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{apperr.NotFound("post %s", "abc"), http.StatusNotFound},
		{apperr.Unprocessable("already reported"), http.StatusUnprocessableEntity},
		{apperr.BadRequest("bad cursor"), http.StatusBadRequest},
		{apperr.Internal("mongo down"), http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		var httpErr *echo.HTTPError
		if !errors.As(httpError(tt.err), &httpErr) {
			t.Fatalf("httpError(%v) is not an *echo.HTTPError", tt.err)
		}
		if httpErr.Code != tt.code {
			t.Errorf("httpError(%v) code = %d, want %d", tt.err, httpErr.Code, tt.code)
		}
	}
}

func TestHttpErrorHidesInternalDetail(t *testing.T) {
	var httpErr *echo.HTTPError
	if !errors.As(httpError(apperr.Internal("dsn=secret")), &httpErr) {
		t.Fatal("expected *echo.HTTPError")
	}
	if msg, ok := httpErr.Message.(string); !ok || msg != "Internal server error" {
		t.Errorf("internal error message = %v, must not leak detail", httpErr.Message)
	}
}
