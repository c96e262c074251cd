// Package apierr is the error taxonomy shared by the gateway and the
// components that consume it.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNetwork          Kind = "network"
	KindProtocol         Kind = "protocol_error"
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindConflict         Kind = "conflict"
	KindValidation       Kind = "validation_error"
	KindPayloadTooLarge  Kind = "payload_too_large"
	KindUnsupportedMedia Kind = "unsupported_media"
	KindRemoteFailure    Kind = "remote_failure"
	// KindRejected covers 4xx answers without a dedicated kind.
	KindRejected Kind = "rejected"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrProtocol         = &Error{Kind: KindProtocol}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrConflict         = &Error{Kind: KindConflict}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrPayloadTooLarge  = &Error{Kind: KindPayloadTooLarge}
	ErrUnsupportedMedia = &Error{Kind: KindUnsupportedMedia}
	ErrRemoteFailure    = &Error{Kind: KindRemoteFailure}
	ErrRejected         = &Error{Kind: KindRejected}
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = defaultMessage(e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// UserMessage is the single inline line shown next to the triggering form.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return defaultMessage(e.Kind, e.Status)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// FromStatus classifies a non-2xx HTTP status. message is the server's
// human-readable error text, or empty to use the generic one.
func FromStatus(status int, message string) *Error {
	return &Error{Kind: KindForStatus(status), Status: status, Message: message}
}

func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status == http.StatusRequestEntityTooLarge:
		return KindPayloadTooLarge
	case status == http.StatusUnsupportedMediaType:
		return KindUnsupportedMedia
	case status >= 500:
		return KindRemoteFailure
	case status >= 400:
		return KindRejected
	default:
		return KindProtocol
	}
}

// KindOf extracts the kind of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing line for any error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func defaultMessage(kind Kind, status int) string {
	switch kind {
	case KindNetwork:
		return "Network error. Please try again."
	case KindProtocol:
		return "Unexpected response from server"
	case KindUnauthenticated:
		return "Session expired, please log in again"
	case KindForbidden:
		return "You do not have permission to do that"
	case KindNotFound:
		return "Not found"
	case KindConflict:
		return "Already exists"
	case KindValidation:
		return "Invalid input"
	case KindPayloadTooLarge:
		return "File is too large"
	case KindUnsupportedMedia:
		return "Unsupported media type"
	case KindRemoteFailure:
		return fmt.Sprintf("Server error (%d), please try again later", status)
	case KindRejected:
		return fmt.Sprintf("Request rejected (%d)", status)
	}
	return "Unknown error"
}
