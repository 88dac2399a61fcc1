package matrix

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/usersearch/internal/core/domain"
)

// Matrix error codes.
const (
	ErrCodeNotFound       = "M_NOT_FOUND"
	ErrCodeUnknownToken   = "M_UNKNOWN_TOKEN"
	ErrCodeMissingToken   = "M_MISSING_TOKEN"
	ErrCodeForbidden      = "M_FORBIDDEN"
	ErrCodeLimitExceeded  = "M_LIMIT_EXCEEDED"
	ErrCodeTermsNotSigned = "M_TERMS_NOT_SIGNED"
)

// ErrNoServer is returned by every call of a client without a base URL.
var ErrNoServer = fmt.Errorf("%w: no server configured", domain.ErrTransport)

// APIError is a non-2xx response from a Matrix server.
type APIError struct {
	StatusCode int
	ErrCode    string `json:"errcode"`
	Message    string `json:"error"`
	RetryAfter time.Duration
	URL        string
}

func (e *APIError) Error() string {
	if e.ErrCode != "" {
		return fmt.Sprintf("matrix: %s (%d): %s", e.ErrCode, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("matrix: HTTP %d from %s", e.StatusCode, e.URL)
}

// Unwrap maps the response to a domain sentinel.
func (e *APIError) Unwrap() error {
	switch {
	case e.ErrCode == ErrCodeNotFound || e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.ErrCode == ErrCodeLimitExceeded || e.StatusCode == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case e.ErrCode == ErrCodeUnknownToken || e.ErrCode == ErrCodeMissingToken ||
		e.StatusCode == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case e.ErrCode == ErrCodeTermsNotSigned:
		return domain.ErrConsentRequired
	case e.ErrCode == ErrCodeForbidden || e.StatusCode == http.StatusForbidden:
		return domain.ErrUnauthorized
	default:
		return domain.ErrTransport
	}
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}
