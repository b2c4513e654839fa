// Package domainerrors provides the typed error envelope used across service
// boundaries. Services create these; handlers translate them to HTTP statuses.
// Stores do not use this package directly; they return sentinel errors from
// pkg/platform/sentinel and services wrap them here.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a failure for callers. Codes are part of the wire contract:
// handlers serialize them into the JSON error envelope.
type Code string

const (
	// Domain codes.
	CodeInvalidAmount           Code = "invalid_amount"
	CodeTransferFailed          Code = "transfer_failed"
	CodeProofVerificationFailed Code = "proof_verification_failed"
	CodeTokenNotFound           Code = "token_not_found"
	CodeUnauthorized            Code = "unauthorized"

	// Ambient codes.
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"
)

// DomainError carries a code, a caller-safe message, and an optional cause.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New creates a DomainError with no underlying cause.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (anywhere in its chain) is a DomainError with
// the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in a service.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to the HTTP status the transport layer responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidAmount, CodeBadRequest:
		return http.StatusBadRequest
	case CodeTransferFailed:
		return http.StatusPaymentRequired
	case CodeProofVerificationFailed:
		return http.StatusUnprocessableEntity
	case CodeTokenNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
