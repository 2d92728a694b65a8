package telegram

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is returned when no bot token is configured
	ErrMissingToken = errors.New("telegram bot token is not configured")

	// ErrNetworkError is returned when the Bot API cannot be reached
	ErrNetworkError = errors.New("network error")
)

// APIError is a non-ok Bot API response
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram api error (status %d): %s", e.StatusCode, e.Description)
}
