// Package maperr defines the structured errors returned by the map core.
//
// Every validation failure carries a machine-readable Code that the HTTP layer
// maps onto a status and writes into the error envelope unchanged.
//
//	err := maperr.New(maperr.CodeFloorNotFound, "floor %d not found", n)
//	if maperr.Is(err, maperr.CodeFloorNotFound) {
//	    // 404
//	}
package maperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeInvalidDimension      Code = "invalid_dimension"
	CodeDuplicateFloor        Code = "duplicate_floor"
	CodeFloorNotFound         Code = "floor_not_found"
	CodeCoordinateOutOfBounds Code = "coordinate_out_of_bounds"
	CodeOutOfBounds           Code = "out_of_bounds"
	CodeNodeNotFound          Code = "node_not_found"
	CodeEdgeNotFound          Code = "edge_not_found"
	CodeMapNotFound           Code = "map_not_found"
	CodeMapConflict           Code = "map_conflict"
	CodeSessionNotFound       Code = "session_not_found"
	CodeValidation            Code = "validation_failed"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an Error that keeps cause in the chain.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in the chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
