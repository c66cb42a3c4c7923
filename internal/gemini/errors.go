package gemini

import (
	"fmt"

	"github.com/gardenbase/seedvault/internal/errors"
)

// Sentinel failures surfaced to callers. None of them is retried here; a
// manual re-submit is the retry mechanism.
var (
	// ErrMissingAPIKey is returned before any network traffic when no
	// key is configured.
	ErrMissingAPIKey = errors.NewStd("gemini API key is not configured")

	// ErrEmptyResponse covers a blank generation and a finish reason
	// other than a normal stop.
	ErrEmptyResponse = errors.NewStd("model returned an empty response")
)

// APIErrorKind sub-classifies provider rejections for clearer reporting.
type APIErrorKind string

const (
	APIErrorGeneric    APIErrorKind = "generic"
	APIErrorInvalidKey APIErrorKind = "invalid-key"
	APIErrorSafety     APIErrorKind = "safety-block"
)

// APIError is a non-2xx response from the provider with the provider's
// message attached.
type APIError struct {
	StatusCode int
	Message    string
	Kind       APIErrorKind
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API error (%d, %s): %s", e.StatusCode, e.Kind, e.Message)
}

// excerptLimit bounds the raw-text excerpt attached to malformed JSON
// errors.
const excerptLimit = 200

// excerpt truncates raw model output for diagnostics.
func excerpt(s string) string {
	if len(s) <= excerptLimit {
		return s
	}
	return s[:excerptLimit] + "..."
}
