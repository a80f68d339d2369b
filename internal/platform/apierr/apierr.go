package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/sayevvv/LearnUp-sub001/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// FromError maps aggregate error codes onto HTTP statuses. fallbackCode is used for
// anything that does not carry an aggregate code.
func FromError(err error, fallbackCode string) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domainagg.ErrEmptySelection):
		return New(http.StatusBadRequest, "empty_selection", err)
	case errors.Is(err, domainagg.ErrInvalidTopics):
		return New(http.StatusBadRequest, "invalid_topics", err)
	}
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation:
		return New(http.StatusBadRequest, "validation_failed", err)
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, "not_found", err)
	case domainagg.CodeConflict:
		return New(http.StatusConflict, "conflict", err)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, "store_unavailable", err)
	}
	return New(http.StatusInternalServerError, fallbackCode, err)
}
