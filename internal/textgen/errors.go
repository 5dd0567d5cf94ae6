package textgen

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure.
type Kind int

const (
	KindUnclassified Kind = iota
	KindCredential
	KindRateLimit
	KindModelUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindCredential:
		return "credential"
	case KindRateLimit:
		return "rate_limit"
	case KindModelUnavailable:
		return "model_unavailable"
	default:
		return "unclassified"
	}
}

var (
	// ErrMissingAPIKey is returned when no credential was configured.
	ErrMissingAPIKey = errors.New("api key not configured")
	// ErrEmptyResponse is returned when the backend answered without any text.
	ErrEmptyResponse = errors.New("no content in response")
)

// Error is a classified generation failure. Message is safe to show to end
// users; Err keeps the backend detail for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// NewCredentialError reports a missing or rejected API credential.
func NewCredentialError(err error) *Error {
	return &Error{
		Kind:    KindCredential,
		Message: "Text generation API key is missing or invalid. Please check the server configuration.",
		Err:     err,
	}
}

// NewRateLimitError reports throttling by the backend.
func NewRateLimitError(err error) *Error {
	return &Error{
		Kind:    KindRateLimit,
		Message: "Rate limit exceeded. Please wait a moment and try again.",
		Err:     err,
	}
}

// NewModelUnavailableError reports that the backend rejected the configured model.
func NewModelUnavailableError(model string, err error) *Error {
	return &Error{
		Kind:    KindModelUnavailable,
		Message: fmt.Sprintf("Model %q is unavailable or has been deprecated. Please update the configuration.", model),
		Err:     err,
	}
}

// NewUnclassifiedError wraps any other backend failure, keeping its message.
func NewUnclassifiedError(err error) *Error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Kind:    KindUnclassified,
		Message: "Text generation error: " + msg,
		Err:     err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind, true
	}
	return KindUnclassified, false
}
