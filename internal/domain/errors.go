package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a blank or otherwise unusable search term.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTransport signals that the upstream user directory could not be reached
	// or answered with a non-success status.
	ErrTransport = errors.New("upstream transport error")
	// ErrParse signals an upstream payload that lacks required fields.
	ErrParse = errors.New("upstream payload invalid")
	// ErrRender signals a report request without any matches.
	ErrRender = errors.New("report render failed")
	// ErrReportNotFound signals a missing or expired report artifact.
	ErrReportNotFound = errors.New("report not found")
)

// TransportError wraps ErrTransport with the failing status and cause.
// StatusCode is zero when no HTTP response was received.
type TransportError struct {
	StatusCode int
	Cause      error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", ErrTransport.Error(), e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %v", ErrTransport.Error(), e.Cause)
}

// Is reports ErrTransport so callers can match with errors.Is while
// Unwrap still exposes the underlying cause.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Cause }

// NewTransportError creates a transport error for the given status and cause.
func NewTransportError(statusCode int, cause error) error {
	return &TransportError{StatusCode: statusCode, Cause: cause}
}

// User-facing messages, one per error class.
const (
	MsgBlankTerm      = "Please enter a search term."
	MsgNoResults      = "No results found."
	MsgPayloadInvalid = "API Error: upstream returned an invalid user payload"
	MsgRenderFailed   = "Report could not be generated: no matching users."
	MsgReportNotFound = "Report not found or expired."
	MsgInternal       = "internal error"
)

// UserMessage maps err to exactly one message fit for display.
// Transport failures are surfaced verbatim with their cause.
func UserMessage(err error) string {
	var te *TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return MsgBlankTerm
	case errors.As(err, &te):
		return "API Error: " + te.Cause.Error()
	case errors.Is(err, ErrTransport):
		return "API Error: " + err.Error()
	case errors.Is(err, ErrParse):
		return MsgPayloadInvalid
	case errors.Is(err, ErrRender):
		return MsgRenderFailed
	case errors.Is(err, ErrReportNotFound):
		return MsgReportNotFound
	default:
		return MsgInternal
	}
}
