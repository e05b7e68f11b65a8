package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork wraps failures to reach the backend at all
var ErrNetwork = errors.New("api: backend unreachable")

// Error is a non-2xx answer from the backend
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// genericMessage is shown when the payload carries no message
func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return "request failed: " + text
	}
	return "request failed"
}

func networkError(err error) error {
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
