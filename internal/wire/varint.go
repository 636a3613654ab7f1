// Package wire provides the low-level primitives of the Cramberry record format:
// base-128 varints, zig-zag signed varints, little-endian fixed-width values
// and compact field tags.
package wire

import "errors"

// MaxVarintLen64 is the maximum number of bytes of a varint-encoded uint64.
const MaxVarintLen64 = 10

// Errors for varint decoding.
var (
	// ErrVarintOverflow indicates the varint overflows a 64-bit integer.
	ErrVarintOverflow = errors.New("cramberry: varint overflows uint64")

	// ErrTruncated indicates the input ended in the middle of a value.
	ErrTruncated = errors.New("cramberry: truncated value")

	// ErrVarintTooLong indicates the varint encoding exceeds MaxVarintLen64 bytes.
	ErrVarintTooLong = errors.New("cramberry: varint exceeds maximum length")
)

// AppendUvarint appends the varint encoding of v to buf.
//
// Seven bits per byte, least significant group first, MSB set on every
// byte except the last:
//   - 1   → [0x01]
//   - 127 → [0x7f]
//   - 300 → [0xac, 0x02]
func AppendUvarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendSvarint appends the zig-zag varint encoding of v to buf.
// 0 → 0, -1 → 1, 1 → 2, -2 → 3, ...
func AppendSvarint(buf []byte, v int64) []byte {
	return AppendUvarint(buf, ZigZag(v))
}

// ZigZag maps a signed integer onto an unsigned one so that values with a
// small magnitude get a short encoding regardless of sign.
func ZigZag(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// UnZigZag reverses ZigZag.
func UnZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// DecodeUvarint decodes a varint from the front of data and returns the value
// and the number of bytes consumed.
func DecodeUvarint(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrTruncated
	}
	if data[0] < 0x80 {
		return uint64(data[0]), 1, nil
	}

	var v uint64
	var shift uint
	for i, b := range data {
		if i == MaxVarintLen64-1 {
			// the tenth byte carries bit 63 only
			if b >= 0x80 {
				return 0, 0, ErrVarintTooLong
			}
			if b > 1 {
				return 0, 0, ErrVarintOverflow
			}
		}
		v |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncated
}

// DecodeSvarint decodes a zig-zag varint from the front of data.
func DecodeSvarint(data []byte) (int64, int, error) {
	u, n, err := DecodeUvarint(data)
	if err != nil {
		return 0, n, err
	}
	return UnZigZag(u), n, nil
}

// UvarintSize returns the encoded length of v.
func UvarintSize(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// SvarintSize returns the encoded length of the zig-zag form of v.
func SvarintSize(v int64) int {
	return UvarintSize(ZigZag(v))
}
