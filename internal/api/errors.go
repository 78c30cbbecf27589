package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/spigell/alumni-referrer/internal/outreach"
	"github.com/spigell/alumni-referrer/internal/referral"
	"github.com/spigell/alumni-referrer/internal/store"
)

// apiError carries the status and client message for a failed request.
type apiError struct {
	Code    int
	Message string
	Err     error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *apiError) Unwrap() error {
	return e.Err
}

func badRequest(message string, err error) *apiError {
	return &apiError{Code: http.StatusBadRequest, Message: message, Err: err}
}

// classify maps domain errors onto HTTP responses.
func classify(err error) *apiError {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, store.ErrNotFound):
		return &apiError{Code: http.StatusNotFound, Message: "alumni not found", Err: err}
	case errors.Is(err, outreach.ErrInvalidRequest), errors.Is(err, referral.ErrInvalidInput):
		return &apiError{Code: http.StatusBadRequest, Message: "invalid request", Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return &apiError{Code: http.StatusServiceUnavailable, Message: "store unavailable", Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &apiError{Code: http.StatusServiceUnavailable, Message: "request cancelled", Err: err}
	default:
		return &apiError{Code: http.StatusInternalServerError, Message: "an unexpected error occurred", Err: err}
	}
}
