package parallel

import (
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned before any network call when no credential could
// be resolved from the client or the PARALLEL_API_KEY environment variable.
var ErrNoAPIKey = errors.New("parallel: PARALLEL_API_KEY not set and no API key provided")

// APIError is a non-200 response from the Parallel API. The raw body is
// carried verbatim for caller diagnostics; no retry is attempted.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parallel: API error (%d): %s", e.StatusCode, e.Body)
}
