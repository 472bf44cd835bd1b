package mangaplus

import (
	"errors"
	"fmt"
)

// APIError is the error result carried in a title detail response.
// It is terminal for the run.
type APIError struct {
	// Action is the client action code suggested by the service.
	Action    int
	Subject   string
	Body      string
	DebugInfo string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("mangaplus API error (action %d)", e.Action)
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.DebugInfo != "" {
		msg += " [" + e.DebugInfo + "]"
	}
	return msg
}

// IsAPIError reports whether err (or any error in its chain) is an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// StatusError is returned when the service answers with a non-2xx status
// and a body that does not decode into an error result.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
