package util

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dense-analysis/fxwave/internal/apperr"
	"github.com/dense-analysis/fxwave/pkg/lax"
	"go.uber.org/zap"
)

func TestRespondError(t *testing.T) {
	request := &lax.Request{Request: httptest.NewRequest("GET", "/api/users/1", nil)}
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperr.Invalid("pair", "is required"), http.StatusBadRequest, "validation failed"},
		{"not found", apperr.NotFoundf("user 1 not found"), http.StatusNotFound, "user 1 not found"},
		{"conflict", apperr.Conflictf("taken"), http.StatusConflict, "taken"},
		{"unavailable", apperr.Wrap(apperr.Unavailable, "dial tcp 10.0.0.1:5432", errors.New("refused")), http.StatusServiceUnavailable, "storage is unavailable, try again later"},
		{"internal", errors.New("password for user fx is wrong"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := RespondError(zap.NewNop(), request, tt.err)
			body := response.Data.(ErrorBody)

			if response.Status != tt.status {
				t.Errorf("Status = %d, want %d", response.Status, tt.status)
			}

			if body.Message != tt.message {
				t.Errorf("Message = %q, want %q", body.Message, tt.message)
			}
		})
	}
}

func TestParseIDReportsNotFound(t *testing.T) {
	request := &lax.Request{Request: httptest.NewRequest("GET", "/api/alerts/xyz", nil)}

	if _, response := ParseID(request, "id"); response == nil || response.Status != http.StatusNotFound {
		t.Fatalf("ParseID() response = %+v", response)
	}
}
