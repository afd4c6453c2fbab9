package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/my-books/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantText   string
	}{
		{"bad_params", fmt.Errorf("%w: title is required", domain.ErrBadParams), 400, domain.ErrCodeBadParams, "title is required"},
		{"duplicate", fmt.Errorf("%w: user x", domain.ErrDuplicateRating), 400, domain.ErrCodeDuplicateRating, "book already rated by this user"},
		{"unauth_hides_details", fmt.Errorf("%w: %w", domain.ErrUnauth, errors.New("token is expired: details")), 401, domain.ErrCodeUnauth, "token is expired"},
		{"forbidden", domain.ErrForbidden, 403, domain.ErrCodeForbidden, "forbidden"},
		{"not_found", fmt.Errorf("%w: book 1", domain.ErrNotFound), 404, domain.ErrCodeNotFound, "book 1 not found"},
		{"method", domain.ErrMethodNotAllowed, 405, domain.ErrCodeMethodNotAllowed, "method not allowed"},
		{"internal", errors.New("pg: connection refused"), 500, domain.ErrCodeUnexpected, "unexpected"},
		{"cancelled", context.Canceled, 500, domain.ErrCodeUnexpected, "unexpected"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := MapDomainError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.wantCode, env.Error.Code)
			assert.Equal(t, tc.wantText, env.Error.Text)
		})
	}
}

func TestWriteDomainError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books/x", nil)
	WriteDomainError(rec, req, domain.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env domain.APIEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.ErrCodeNotFound, env.Error.Code)
}

func TestWriteJSON_Head(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteOK(rec, httptest.NewRequest(http.MethodHead, "/", nil), map[string]string{"a": "b"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
