package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/lojasmm/wamcp/internal/tools"
	"github.com/lojasmm/wamcp/internal/whatsapp"
)

// statusFor maps an operation error onto the HTTP status returned to callers.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tools.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, tools.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, whatsapp.ErrNotConnected):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
