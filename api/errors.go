// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for thermostress.

package api

import "fmt"

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeNotSupported
	ErrCodeSensorUnavailable
	ErrCodeAffinityDenied
	ErrCodeWorkloadFailure
	ErrCodeLogWriteFailure
	ErrCodeLaunchFailure
	ErrCodeInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeOK:
		return "ok"
	case ErrCodeInvalidArgument:
		return "invalid_argument"
	case ErrCodeNotSupported:
		return "not_supported"
	case ErrCodeSensorUnavailable:
		return "sensor_unavailable"
	case ErrCodeAffinityDenied:
		return "affinity_denied"
	case ErrCodeWorkloadFailure:
		return "workload_failure"
	case ErrCodeLogWriteFailure:
		return "log_write_failure"
	case ErrCodeLaunchFailure:
		return "launch_failure"
	default:
		return "internal"
	}
}

// Common errors used across the library. Match them with errors.Is; any
// *Error carrying the same code matches.
var (
	ErrInvalidArgument   = NewError(ErrCodeInvalidArgument, "invalid argument")
	ErrNotSupported      = NewError(ErrCodeNotSupported, "operation not supported")
	ErrSensorUnavailable = NewError(ErrCodeSensorUnavailable, "temperature sensor unavailable")
	ErrAffinityDenied    = NewError(ErrCodeAffinityDenied, "affinity change denied")
	ErrWorkloadFailure   = NewError(ErrCodeWorkloadFailure, "workload failed")
	ErrLogWriteFailure   = NewError(ErrCodeLogWriteFailure, "telemetry write failed")
	ErrLaunchFailure     = NewError(ErrCodeLaunchFailure, "worker launch failed")
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if len(e.Context) > 0 {
		msg = fmt.Sprintf("%s (context: %+v)", msg, e.Context)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a structured error with the given code around cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// CodeOf extracts the ErrorCode of err, or ErrCodeInternal when err carries none.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ErrCodeInternal
}
