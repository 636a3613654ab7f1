// Package cramberry implements the Cramberry compact binary record format:
// a buffered Writer and Reader for single messages, and a StreamWriter and
// StreamReader for length-delimited message sequences.
package cramberry

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
// These can be checked using errors.Is().
var (
	// ErrUnexpectedEOF indicates the data was truncated unexpectedly.
	ErrUnexpectedEOF = errors.New("cramberry: unexpected end of data")

	// ErrInvalidWireType indicates an unknown or invalid wire type.
	ErrInvalidWireType = errors.New("cramberry: invalid wire type")

	// ErrMaxDepthExceeded indicates the maximum nesting depth was exceeded.
	ErrMaxDepthExceeded = errors.New("cramberry: maximum nesting depth exceeded")

	// ErrMaxSizeExceeded indicates the maximum message size was exceeded.
	ErrMaxSizeExceeded = errors.New("cramberry: maximum message size exceeded")

	// ErrMaxStringLength indicates the maximum string length was exceeded.
	ErrMaxStringLength = errors.New("cramberry: maximum string length exceeded")

	// ErrMaxBytesLength indicates the maximum bytes length was exceeded.
	ErrMaxBytesLength = errors.New("cramberry: maximum bytes length exceeded")

	// ErrMaxArrayLength indicates the maximum array length was exceeded.
	ErrMaxArrayLength = errors.New("cramberry: maximum array length exceeded")

	// ErrInvalidUTF8 indicates a string contains invalid UTF-8.
	ErrInvalidUTF8 = errors.New("cramberry: invalid UTF-8 string")

	// ErrInvalidFieldNumber indicates an invalid field number (must be > 0).
	ErrInvalidFieldNumber = errors.New("cramberry: invalid field number")

	// ErrUnknownField indicates an unknown field was encountered in strict mode.
	ErrUnknownField = errors.New("cramberry: unknown field")

	// ErrOverflow indicates an integer overflow during decoding.
	ErrOverflow = errors.New("cramberry: integer overflow")
)

// DecodeError provides detailed context for decoding failures.
type DecodeError struct {
	// Type is the name of the record being decoded (if known).
	Type string

	// FieldNumber is the wire field number (if applicable).
	FieldNumber int

	// Offset is the byte offset in the input where the error occurred,
	// or -1 when unknown.
	Offset int

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *DecodeError) Error() string {
	prefix := e.Type
	if prefix != "" && e.FieldNumber > 0 {
		prefix = fmt.Sprintf("%s field %d", prefix, e.FieldNumber)
	}

	if prefix != "" {
		if e.Offset >= 0 {
			return fmt.Sprintf("cramberry: decode %s at offset %d: %s", prefix, e.Offset, e.Message)
		}
		return fmt.Sprintf("cramberry: decode %s: %s", prefix, e.Message)
	}

	if e.Offset >= 0 {
		return fmt.Sprintf("cramberry: decode at offset %d: %s", e.Offset, e.Message)
	}
	return fmt.Sprintf("cramberry: decode: %s", e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the cause matches the target.
func (e *DecodeError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// NewDecodeError creates a new DecodeError without offset information.
func NewDecodeError(message string, cause error) *DecodeError {
	return &DecodeError{
		Offset:  -1,
		Message: message,
		Cause:   cause,
	}
}

// NewDecodeErrorAt creates a new DecodeError with offset information.
func NewDecodeErrorAt(offset int, message string, cause error) *DecodeError {
	return &DecodeError{
		Offset:  offset,
		Message: message,
		Cause:   cause,
	}
}

// NewFieldDecodeError creates a DecodeError for a specific field of a record.
func NewFieldDecodeError(typeName string, fieldNum int, offset int, message string, cause error) *DecodeError {
	return &DecodeError{
		Type:        typeName,
		FieldNumber: fieldNum,
		Offset:      offset,
		Message:     message,
		Cause:       cause,
	}
}

// EncodeError provides detailed context for encoding failures.
type EncodeError struct {
	// Type is the name of the record being encoded.
	Type string

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *EncodeError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("cramberry: encode %s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("cramberry: encode: %s", e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// Is reports whether the cause matches the target.
func (e *EncodeError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

// NewEncodeError creates a new EncodeError.
func NewEncodeError(message string, cause error) *EncodeError {
	return &EncodeError{
		Message: message,
		Cause:   cause,
	}
}

// IsLimitExceeded returns true if the error indicates a configured limit was exceeded.
func IsLimitExceeded(err error) bool {
	switch {
	case errors.Is(err, ErrMaxDepthExceeded),
		errors.Is(err, ErrMaxSizeExceeded),
		errors.Is(err, ErrMaxStringLength),
		errors.Is(err, ErrMaxBytesLength),
		errors.Is(err, ErrMaxArrayLength):
		return true
	default:
		return false
	}
}
