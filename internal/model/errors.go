package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode categorizes data-layer errors.
type ErrorCode string

const (
	// ErrCodeValidation marks input rejected before anything was written.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNotFound marks a lookup of a missing record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeStoreUnavailable marks a durable store that cannot be opened, read or written.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// ErrCodeRemoteDelivery marks a failed or timed-out delivery to the remote service.
	// It never reaches interactive callers; the executor absorbs it by queuing.
	ErrCodeRemoteDelivery ErrorCode = "REMOTE_DELIVERY"

	// ErrCodeInvalidCredentials marks a login with an unknown user or a wrong PIN.
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"

	// ErrCodeNoSession marks an operation that needs a logged-in user.
	ErrCodeNoSession ErrorCode = "NO_SESSION"
)

// Error is the structured error returned across the data layer.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the operation that failed (e.g. "store.get", "checkout").
	Op string

	// Message is a human-readable description.
	Message string

	// Fields maps offending input fields to a reason (validation only).
	Fields map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Op != "" {
		b.WriteString(" ")
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", k, e.Fields[k]))
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a VALIDATION error. fields may be nil.
func Validation(op, message string, fields map[string]string) *Error {
	return &Error{Code: ErrCodeValidation, Op: op, Message: message, Fields: fields}
}

// NotFound returns a NOT_FOUND error for a missing record.
func NotFound(op string, c Collection, id string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Op:      op,
		Message: fmt.Sprintf("%s %q not found", c, id),
	}
}

// StoreUnavailable wraps a driver failure as STORE_UNAVAILABLE.
func StoreUnavailable(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeStoreUnavailable,
		Op:      op,
		Message: "durable store unavailable",
		Err:     err,
	}
}

// RemoteDelivery wraps a delivery failure as REMOTE_DELIVERY.
func RemoteDelivery(op string, err error) *Error {
	return &Error{
		Code:    ErrCodeRemoteDelivery,
		Op:      op,
		Message: "remote delivery failed",
		Err:     err,
	}
}

// InvalidCredentials returns the error for a failed login. It does not say
// whether the user or the PIN was wrong.
func InvalidCredentials(op string) *Error {
	return &Error{Code: ErrCodeInvalidCredentials, Op: op, Message: "invalid username or PIN"}
}

// NoSession returns the error for an operation attempted while logged out.
func NoSession(op string) *Error {
	return &Error{Code: ErrCodeNoSession, Op: op, Message: "no active session; log in first"}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return CodeOf(err) == ErrCodeValidation }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return CodeOf(err) == ErrCodeNotFound }

// IsStoreUnavailable reports whether err is a STORE_UNAVAILABLE error.
func IsStoreUnavailable(err error) bool { return CodeOf(err) == ErrCodeStoreUnavailable }

// IsRemoteDelivery reports whether err is a REMOTE_DELIVERY error.
func IsRemoteDelivery(err error) bool { return CodeOf(err) == ErrCodeRemoteDelivery }

// IsInvalidCredentials reports whether err is an INVALID_CREDENTIALS error.
func IsInvalidCredentials(err error) bool { return CodeOf(err) == ErrCodeInvalidCredentials }

// IsNoSession reports whether err is a NO_SESSION error.
func IsNoSession(err error) bool { return CodeOf(err) == ErrCodeNoSession }
