// Package domainerrors carries typed error codes across layer boundaries.
//
// Services return these so transports can map them to protocol responses without
// string matching, and so callers can branch on HasCode instead of errors.As
// gymnastics. Infra layers return pkg/platform/sentinel errors; services are the
// translation point.
package domainerrors

import (
	"errors"
	"fmt"
)

type Code string

const (
	// Access and isolation failures. Cross-tenant probes always surface as
	// CodeForbidden, never CodeNotFound, so existence is not leaked.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	// Resource absence within the caller's own tenant.
	CodeNotFound Code = "not_found"
	CodeConflict Code = "conflict"

	// Input validation. Local, non-retryable without a new request.
	CodeInvalidInput         Code = "invalid_input"
	CodeBadRequest           Code = "bad_request"
	CodeInvariantViolation   Code = "invariant_violation"
	CodeUnsupportedMediaType Code = "unsupported_media_type"
	CodePayloadTooLarge      Code = "payload_too_large"
	CodeInvalidDimensions    Code = "invalid_dimensions"

	// Pipeline-stage failures. Retryable by resubmitting a better image; never
	// retried internally.
	CodeValidationFailed     Code = "validation_failed"
	CodePoorImageQuality     Code = "poor_image_quality"
	CodeDataExtractionFailed Code = "data_extraction_failed"
	CodeFaceNotDetected      Code = "face_not_detected"

	CodeTimeout  Code = "timeout"
	CodeInternal Code = "internal"
)

// Error is a domain error with a stable code and an operator-facing message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the chain
// for errors.Is/As.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
	}
	return false
}

// CodeOf returns the outermost domain code in the chain, or CodeInternal when
// the error carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or a generic fallback.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
