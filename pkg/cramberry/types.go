package cramberry

import "github.com/blockberries/sercompare/internal/wire"

// WireType describes how the value following a tag is laid out.
type WireType = wire.WireType

// Wire types, re-exported from the wire package.
const (
	WireVarint  = wire.WireVarint
	WireFixed64 = wire.WireFixed64
	WireBytes   = wire.WireBytes
	WireFixed32 = wire.WireFixed32
	WireSVarint = wire.WireSVarint
)

// Limits defines resource limits for encoding/decoding.
type Limits struct {
	// MaxMessageSize is the maximum size of a single message in bytes.
	// A value of 0 means no limit.
	MaxMessageSize int64

	// MaxDepth is the maximum nesting depth of messages.
	// A value of 0 means no limit.
	MaxDepth int

	// MaxStringLength is the maximum length of a string in bytes.
	// A value of 0 means no limit.
	MaxStringLength int

	// MaxBytesLength is the maximum length of a byte slice.
	// A value of 0 means no limit.
	MaxBytesLength int

	// MaxArrayLength is the maximum number of elements in a packed list
	// or the record count of a stream.
	// A value of 0 means no limit.
	MaxArrayLength int
}

// DefaultLimits are generous limits suitable for benchmark datasets.
var DefaultLimits = Limits{
	MaxMessageSize:  64 * 1024 * 1024, // 64 MB
	MaxDepth:        32,
	MaxStringLength: 10 * 1024 * 1024, // 10 MB
	MaxBytesLength:  10 * 1024 * 1024,
	MaxArrayLength:  1<<31 - 1,
}

// SecureLimits are conservative limits for untrusted input.
var SecureLimits = Limits{
	MaxMessageSize:  1 * 1024 * 1024, // 1 MB
	MaxDepth:        8,
	MaxStringLength: 64 * 1024,
	MaxBytesLength:  64 * 1024,
	MaxArrayLength:  10_000,
}

// NoLimits disables all resource limits.
var NoLimits = Limits{}

// Options configures encoding/decoding behavior.
type Options struct {
	// Limits specifies resource limits.
	Limits Limits

	// StrictMode rejects unknown fields during decoding.
	StrictMode bool

	// ValidateUTF8 validates that decoded strings are valid UTF-8.
	ValidateUTF8 bool

	// OmitEmpty skips zero-value fields during encoding.
	OmitEmpty bool
}

// DefaultOptions are the default encoding/decoding options.
var DefaultOptions = Options{
	Limits:       DefaultLimits,
	ValidateUTF8: true,
	OmitEmpty:    true,
}

// SecureOptions are conservative options for untrusted input.
var SecureOptions = Options{
	Limits:       SecureLimits,
	StrictMode:   true,
	ValidateUTF8: true,
	OmitEmpty:    true,
}

// FastOptions skip UTF-8 validation. Use when decoding output of the same encoder.
var FastOptions = Options{
	Limits:    DefaultLimits,
	OmitEmpty: true,
}

// Size constants for primitive types.
const (
	// Fixed64Size is the encoded size of a fixed 64-bit value.
	Fixed64Size = wire.Fixed64Size

	// Fixed32Size is the encoded size of a fixed 32-bit value.
	Fixed32Size = 4

	// MaxVarintLen64 is the maximum encoded size of a varint64.
	MaxVarintLen64 = wire.MaxVarintLen64
)

// MaxInt is the maximum value of int (platform dependent).
const MaxInt = int(^uint(0) >> 1)
