package longport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredentials is returned by NewQuoteContext when app key, app secret or access token is empty.
var ErrMissingCredentials = errors.New("longport: app key, app secret and access token are required")

// APIError is a failure reported by the gateway, either as an HTTP status or an envelope code.
type APIError struct {
	Status  int    // HTTP status
	Code    int    // gateway error code, 0 when only the status is known
	Message string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("longport: status %d code %d: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("longport: status %d: %s", e.Status, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}
