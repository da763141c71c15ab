package llm

import "fmt"

// BackendError is the base error type for model-backend failures.
type BackendError struct {
	Message   string
	Provider  string
	Retryable bool
	Cause     error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// Concrete backend error types.

// AuthenticationError indicates a rejected API key. Never retryable.
type AuthenticationError struct{ BackendError }

// RateLimitError indicates the provider throttled the request.
type RateLimitError struct{ BackendError }

// ContextLengthError indicates the request exceeded the model context window.
type ContextLengthError struct{ BackendError }

// ServerError indicates a 5xx-class provider failure.
type ServerError struct{ BackendError }

// ExtractionError indicates a forced-structured response could not be parsed
// into an action selection.
type ExtractionError struct{ BackendError }

// IsRetryable reports whether the error is safe to retry at the adapter level.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch e := err.(type) {
	case *AuthenticationError:
		return false
	case *ContextLengthError:
		return false
	case *ExtractionError:
		return false
	case *RateLimitError:
		return true
	case *ServerError:
		return true
	case *BackendError:
		return e.Retryable
	default:
		// Unknown errors default to retryable.
		return true
	}
}
