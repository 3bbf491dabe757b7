package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/contrib-leaderboard/internal/domain/stats"
	"github.com/okian/contrib-leaderboard/internal/domain/types"
)

// statusFor maps an error kind to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, stats.ErrInvalidRange):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, types.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeFailure writes err with the status its kind maps to.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}
