// Package api provides the REST client for the TeraBox backend.
package api

import (
	"errors"
	"fmt"
)

// Kind discriminates API failures for the presentation layer. Every error
// leaving this package is an *Error with one of these kinds, so callers
// branch on the kind instead of string-matching messages.
type Kind string

const (
	// KindValidation is caller misuse (empty file handle, concurrent
	// upload attempt). Never retried; the caller must fix the request.
	KindValidation Kind = "validation"

	// KindNetwork is a transport failure or timeout. Safe to re-trigger;
	// nothing changed server-side.
	KindNetwork Kind = "network"

	// KindNotFound means the referenced id no longer exists server-side.
	// Benign for delete, fatal for download.
	KindNotFound Kind = "not_found"

	// KindServer is a non-2xx response. Message carries the server's
	// detail text when it sent one.
	KindServer Kind = "server"
)

// Error is the discriminated outcome for all client operations: a kind plus
// a human-readable message, optionally wrapping the underlying cause.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int // HTTP status for server-originated errors, 0 otherwise
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports caller misuse.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "network error", Err: err}
}

// NewNotFoundError reports a missing server-side resource.
func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, StatusCode: 404}
}

// NewServerError wraps a non-2xx response. message should be the server's
// detail text; pass "" for the generic fallback.
func NewServerError(statusCode int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("server error (status %d)", statusCode)
	}
	return &Error{Kind: KindServer, Message: message, StatusCode: statusCode}
}

func isKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsValidation reports whether err is caller misuse.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsNotFound reports whether err means the resource is gone server-side.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsServer reports whether err is a non-2xx server response.
func IsServer(err error) bool { return isKind(err, KindServer) }
