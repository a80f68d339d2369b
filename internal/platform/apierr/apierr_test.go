package apierr

import (
	"errors"
	"net/http"
	"testing"

	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty selection", domainagg.NewError(domainagg.CodeValidation, "op", "no topics", domainagg.ErrEmptySelection), http.StatusBadRequest, "empty_selection"},
		{"invalid topics", domainagg.NewError(domainagg.CodeValidation, "op", "unknown", domainagg.ErrInvalidTopics), http.StatusBadRequest, "invalid_topics"},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "op", "roadmap", nil), http.StatusNotFound, "not_found"},
		{"retryable", domainagg.NewError(domainagg.CodeRetryable, "op", "db down", nil), http.StatusServiceUnavailable, "store_unavailable"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "fallback"},
		{"passthrough", New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err, "fallback")
			if got.Status != tc.status || got.Code != tc.code {
				t.Fatalf("got status=%d code=%q, want %d %q", got.Status, got.Code, tc.status, tc.code)
			}
		})
	}
	if FromError(nil, "x") != nil {
		t.Fatalf("nil error should map to nil")
	}
}
