package wire

import "errors"

// WireType describes how the value following a tag is laid out.
type WireType byte

const (
	// WireVarint is an unsigned varint (booleans, counts).
	WireVarint WireType = 0

	// WireFixed64 is eight little-endian bytes (float64).
	WireFixed64 WireType = 1

	// WireBytes is a varint length followed by that many bytes
	// (strings, byte slices, nested messages, packed lists).
	WireBytes WireType = 2

	// WireFixed32 is four little-endian bytes.
	WireFixed32 WireType = 3

	// WireSVarint is a zig-zag signed varint.
	WireSVarint WireType = 4
)

// String returns a human-readable name for the wire type.
func (w WireType) String() string {
	switch w {
	case WireVarint:
		return "Varint"
	case WireFixed64:
		return "Fixed64"
	case WireBytes:
		return "Bytes"
	case WireFixed32:
		return "Fixed32"
	case WireSVarint:
		return "SVarint"
	default:
		return "Unknown"
	}
}

// IsValid reports whether w is a known wire type.
func (w WireType) IsValid() bool {
	return w <= WireSVarint
}

// Compact tag layout:
//
//	fields 1-15:  [fieldNum:4][wireType:3][0:1]  one byte
//	fields 16+:   [0:4][wireType:3][1:1]         followed by a varint field number
//	end marker:   0x00
const (
	// EndMarker terminates the fields of a message.
	EndMarker byte = 0x00

	tagExtendedBit   byte = 0x01
	tagWireTypeMask  byte = 0x0E
	tagWireTypeShift      = 1
	tagFieldNumShift      = 4

	// MaxCompactFieldNum is the largest field number that fits in one tag byte.
	MaxCompactFieldNum = 15

	// MaxFieldNumber bounds extended field numbers.
	MaxFieldNumber = 1<<29 - 1
)

var (
	// ErrInvalidWireType indicates an unknown wire type in a tag.
	ErrInvalidWireType = errors.New("cramberry: invalid wire type")

	// ErrInvalidFieldNumber indicates a field number outside [1, MaxFieldNumber].
	ErrInvalidFieldNumber = errors.New("cramberry: invalid field number")
)

// AppendCompactTag appends the tag for fieldNum/wireType to buf.
func AppendCompactTag(buf []byte, fieldNum int, wireType WireType) []byte {
	if fieldNum <= MaxCompactFieldNum {
		return append(buf, byte(fieldNum<<tagFieldNumShift)|byte(wireType)<<tagWireTypeShift)
	}
	buf = append(buf, byte(wireType)<<tagWireTypeShift|tagExtendedBit)
	return AppendUvarint(buf, uint64(fieldNum))
}

// CompactTagSize returns the encoded length of the tag for fieldNum.
func CompactTagSize(fieldNum int) int {
	if fieldNum <= MaxCompactFieldNum {
		return 1
	}
	return 1 + UvarintSize(uint64(fieldNum))
}

// DecodeCompactTag decodes a tag from the front of data. A field number of 0
// with n == 1 is the end marker.
func DecodeCompactTag(data []byte) (fieldNum int, wireType WireType, n int, err error) {
	if len(data) == 0 {
		return 0, 0, 0, ErrTruncated
	}
	tag := data[0]
	if tag == EndMarker {
		return 0, 0, 1, nil
	}

	wireType = WireType((tag & tagWireTypeMask) >> tagWireTypeShift)
	if !wireType.IsValid() {
		return 0, 0, 0, ErrInvalidWireType
	}

	if tag&tagExtendedBit == 0 {
		return int(tag >> tagFieldNumShift), wireType, 1, nil
	}
	if tag>>tagFieldNumShift != 0 {
		return 0, 0, 0, ErrInvalidFieldNumber
	}

	num, m, err := DecodeUvarint(data[1:])
	if err != nil {
		return 0, 0, 0, err
	}
	if num <= MaxCompactFieldNum || num > MaxFieldNumber {
		return 0, 0, 0, ErrInvalidFieldNumber
	}
	return int(num), wireType, 1 + m, nil
}
