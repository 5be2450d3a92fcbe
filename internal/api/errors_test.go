package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mdt-generator/backend/internal/parser"
	"github.com/mdt-generator/backend/internal/storage"
	"github.com/mdt-generator/backend/internal/viserio"
	"github.com/mdt-generator/backend/internal/wcl"
	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no entries", &viserio.NoEntriesError{Parsed: 2, Skipped: 2}, http.StatusUnprocessableEntity, "NO_ENTRIES"},
		{"malformed timestamp", fmt.Errorf("parse: %w", &parser.MalformedTimestampError{Value: "1-30", Reason: "x"}), http.StatusBadRequest, "MALFORMED_TIMESTAMP"},
		{"storage not found", fmt.Errorf("740: %w", storage.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"fight not found", fmt.Errorf("fight 9: %w", wcl.ErrFightNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"no token", wcl.ErrNoToken, http.StatusNotFound, "NO_TOKEN"},
		{"bad url", wcl.ErrInvalidReportURL, http.StatusBadRequest, "BAD_REQUEST"},
		{"upstream status", &wcl.StatusError{StatusCode: 500, Body: "boom"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"graphql", &wcl.GraphQLError{Message: "nope"}, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"api error passthrough", NewValidationError("id"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err, "operation failed")
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	e := echo.New()

	t.Run("api error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(NewNotFoundError("fetch job", "abc"), c)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"code":"NOT_FOUND","message":"fetch job not found: abc"}`, rec.Body.String())
	})

	t.Run("echo error", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"), c)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"HTTP_ERROR"`)
	})

	t.Run("unknown error hides details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		ErrorHandler(errors.New("secret"), c)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "secret")
	})
}

func TestIsStreamPath(t *testing.T) {
	assert.True(t, IsStreamPath("/api/fetch/abc/status"))
	assert.True(t, IsStreamPath("/mdt/api/fetch/abc/status"))
	assert.False(t, IsStreamPath("/api/fetch/abc"))
	assert.False(t, IsStreamPath("/api/health"))
}
