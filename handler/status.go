package handler

import (
	"errors"
	"net/http"

	"github.com/workmate-ai/assistant-be/types"
)

// statusFor maps pipeline errors onto HTTP statuses: bad input is the
// caller's fault, a timed-out generation is retryable.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrMalformedDocument),
		errors.Is(err, types.ErrEmptyDocument),
		errors.Is(err, types.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrGenerationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
