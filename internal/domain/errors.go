package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState reports a malformed or unknown OAuth state token.
	// Fatal to the single callback that carried it.
	ErrInvalidState = errors.New("invalid oauth state")

	// ErrConfigMissing reports that no app key/secret is on file for the
	// seller and marketplace. The seller must configure credentials first.
	ErrConfigMissing = errors.New("marketplace credentials not configured")
)

// APIError is a nonzero response code returned by the marketplace. It is
// fatal during token exchange and recoverable during sync aggregation.
type APIError struct {
	Code      int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("marketplace api error %d: %s (request_id=%s)", e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("marketplace api error %d: %s", e.Code, e.Message)
}
