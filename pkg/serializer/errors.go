package serializer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownFormat indicates a format name was not found in the registry.
	ErrUnknownFormat = errors.New("serializer: unknown format")

	// ErrDuplicateFormat indicates a format name was registered more than once.
	ErrDuplicateFormat = errors.New("serializer: duplicate format")

	// ErrUnsupportedShape indicates a dataset shape the format cannot handle.
	ErrUnsupportedShape = errors.New("serializer: unsupported shape")

	// ErrEntryNotFound indicates an archive lacks the expected single entry.
	ErrEntryNotFound = errors.New("serializer: archive entry not found")

	// ErrMalformed indicates encoded data that does not match the format's layout.
	ErrMalformed = errors.New("serializer: malformed data")

	// ErrLimitExceeded indicates input rejected by a configured codec limit.
	ErrLimitExceeded = errors.New("serializer: codec limit exceeded")
)

// FormatError reports a failure of one format operation.
type FormatError struct {
	// Format is the name of the format.
	Format string
	// Op is "encode" or "decode".
	Op string
	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted error message.
func (e *FormatError) Error() string {
	return fmt.Sprintf("serializer: %s %s: %v", e.Op, e.Format, e.Cause)
}

// Unwrap returns the underlying cause of the error.
func (e *FormatError) Unwrap() error {
	return e.Cause
}

func newFormatError(format, op string, cause error) error {
	if cause == nil {
		return nil
	}
	var fe *FormatError
	if errors.As(cause, &fe) {
		return cause
	}
	return &FormatError{Format: format, Op: op, Cause: cause}
}

func malformed(format string, msg string, args ...any) error {
	return newFormatError(format, "decode", fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(msg, args...)))
}
