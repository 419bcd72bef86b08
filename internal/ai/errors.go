// errors.go - Error taxonomy shared by the gateway, the decoder and the action handlers

package ai

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes why an analysis failed
type ErrorKind string

const (
	ErrorMissingInput       ErrorKind = "missing_input"
	ErrorRateLimited        ErrorKind = "rate_limited"
	ErrorServiceUnavailable ErrorKind = "service_unavailable"
	ErrorUnauthenticated    ErrorKind = "unauthenticated"
	ErrorMalformedResponse  ErrorKind = "malformed_response"
	ErrorUnknown            ErrorKind = "unknown"
)

// AnalysisError is a categorized failure. StatusCode is the remote status (0 when there
// was none) and Raw holds the completion text for malformed responses.
type AnalysisError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Raw        string
	Cause      error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status: %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// NewMissingInputError reports a request rejected before any remote call
func NewMissingInputError(message string) *AnalysisError {
	return &AnalysisError{Kind: ErrorMissingInput, Message: message}
}

// KindOf extracts the ErrorKind of err. Uncategorized errors are ErrorUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr.Kind
	}
	return ErrorUnknown
}

// StatusCodeOf returns the remote status code carried by err, or 0
func StatusCodeOf(err error) int {
	var analysisErr *AnalysisError
	if errors.As(err, &analysisErr) {
		return analysisErr.StatusCode
	}
	return 0
}
