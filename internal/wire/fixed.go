package wire

import (
	"encoding/binary"
	"math"
)

// Fixed64Size is the encoded size of every fixed 64-bit value.
const Fixed64Size = 8

// canonicalNaN64 is the quiet NaN every NaN payload is folded into.
const canonicalNaN64 = 0x7FF8000000000000

// AppendFixed64 appends v in little-endian order.
func AppendFixed64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

// DecodeFixed64 decodes a little-endian 64-bit value.
func DecodeFixed64(data []byte) (uint64, error) {
	if len(data) < Fixed64Size {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(data), nil
}

// AppendFloat64 appends the canonical bits of v in little-endian order.
// Negative zero becomes +0 and every NaN becomes the canonical quiet NaN,
// so equal values always produce equal bytes.
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendFixed64(buf, CanonicalFloat64Bits(v))
}

// DecodeFloat64 decodes a little-endian float64.
func DecodeFloat64(data []byte) (float64, error) {
	bits, err := DecodeFixed64(data)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// CanonicalFloat64Bits returns the bit pattern AppendFloat64 writes for v.
func CanonicalFloat64Bits(v float64) uint64 {
	bits := math.Float64bits(v)
	if bits&0x7FF0000000000000 == 0x7FF0000000000000 && bits&0x000FFFFFFFFFFFFF != 0 {
		return canonicalNaN64
	}
	if bits == 0x8000000000000000 {
		return 0
	}
	return bits
}
