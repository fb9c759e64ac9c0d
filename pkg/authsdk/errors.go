package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ============================================================================
// Display Messages
// ============================================================================

const (
	// ConnectionErrorMessage is what the user sees for any transport failure.
	// The underlying error is logged, never shown.
	ConnectionErrorMessage = "Could not reach the server. Check your connection and try again."

	// DefaultRejectionMessage is shown when the gateway said no without
	// saying why.
	DefaultRejectionMessage = "The request was rejected by the server."

	// UnexpectedErrorMessage covers anything outside the taxonomy.
	UnexpectedErrorMessage = "Something went wrong. Please try again."
)

var fieldLabels = map[string]string{
	FieldIdentifier:  "Email or username",
	FieldEmail:       "Email",
	FieldSecret:      "Password",
	FieldDisplayName: "Username",
	FieldToken:       "Session token",
}

// ============================================================================
// ValidationError - local input errors
// ============================================================================

// ValidationError reports malformed or missing local input. It is always
// produced before any network call.
type ValidationError struct {
	// Field is one of the Field* constants.
	Field string

	// Reason is a lower-case phrase that reads after the field label,
	// e.g. "is required".
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Message renders the error for display, e.g. "Password is required".
func (e *ValidationError) Message() string {
	label, ok := fieldLabels[e.Field]
	if !ok {
		label = e.Field
	}
	return label + " " + e.Reason
}

// ============================================================================
// RejectionError - the gateway answered success=false
// ============================================================================

// RejectionError is returned when the gateway replied with success=false.
// Message is passed through to the user verbatim.
type RejectionError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway rejected request (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("gateway rejected request (status %d): %s", e.StatusCode, e.Message)
}

// ============================================================================
// TransportError - network, timeout and parse failures
// ============================================================================

// TransportError wraps anything that went wrong between sending the request
// and decoding a well-formed reply.
type TransportError struct {
	// Op is the SDK operation, e.g. "login".
	Op string

	// StatusCode is set when a response arrived but could not be used.
	StatusCode int

	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("authsdk: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("authsdk: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline expiry.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ============================================================================
// Error Helpers
// ============================================================================

// DisplayMessage maps any error onto the string the presentation layer
// should show. Internals of transport failures never leak through.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message()
	}

	var rejErr *RejectionError
	if errors.As(err, &rejErr) {
		if rejErr.Message == "" {
			return DefaultRejectionMessage
		}
		return rejErr.Message
	}

	var transErr *TransportError
	if errors.As(err, &transErr) {
		return ConnectionErrorMessage
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectionErrorMessage
	}

	return UnexpectedErrorMessage
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsRejection reports whether err is a *RejectionError.
func IsRejection(err error) bool {
	var rejErr *RejectionError
	return errors.As(err, &rejErr)
}

// IsTransport reports whether err is a *TransportError.
func IsTransport(err error) bool {
	var transErr *TransportError
	return errors.As(err, &transErr)
}
