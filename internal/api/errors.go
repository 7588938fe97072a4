package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/xclbin/internal/xclbinstore"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// statusFor maps store and container errors onto an HTTP status and error type.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, axlf.ErrSectionNotFound), errors.Is(err, xclbinstore.ErrKernelNotFound):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, axlf.ErrOutOfBounds),
		errors.Is(err, axlf.ErrTruncatedSection),
		errors.Is(err, axlf.ErrMalformedSection):
		return http.StatusUnprocessableEntity, "section_error"
	case errors.Is(err, axlf.ErrClosed):
		return http.StatusServiceUnavailable, "server_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
