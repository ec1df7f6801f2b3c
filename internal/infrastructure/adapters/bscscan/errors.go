package bscscan

import (
	"errors"
	"fmt"
)

// APIError is a response whose status is not "1".
type APIError struct {
	Action  string
	Status  string
	Message string
	Result  string
}

func (e *APIError) Error() string {
	if e.Result != "" {
		return fmt.Sprintf("explorer %s failed: %s (%s)", e.Action, e.Message, e.Result)
	}
	return fmt.Sprintf("explorer %s failed: %s", e.Action, e.Message)
}

// IsRateLimited reports whether the explorer rejected the call for exceeding its quota.
func (e *APIError) IsRateLimited() bool {
	return e.Result == "Max rate limit reached"
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("explorer HTTP error: status %d", e.StatusCode)
}

var ErrInvalidResponse = errors.New("invalid explorer response")
