package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// StatusCoder is implemented by API errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// IsTransient reports whether err is worth retrying: a retryable HTTP
// status, a network timeout, or a dropped connection. Context cancellation
// is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrBreakerOpen) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return IsTransientHTTPStatus(sc.HTTPStatus())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{"connection reset by peer", "broken pipe", "i/o timeout", "tls handshake timeout"} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether an HTTP status is safe to retry.
func IsTransientHTTPStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}
