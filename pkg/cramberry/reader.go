package cramberry

import (
	"errors"
	"unicode/utf8"

	"github.com/blockberries/sercompare/internal/wire"
)

// Reader decodes a single message from a byte slice with position tracking.
// Like Writer, it records the first error and returns zero values afterwards.
//
// The zero value is not ready for use; create with NewReader.
type Reader struct {
	data  []byte
	pos   int
	opts  Options
	depth int
	err   error
}

// NewReader creates a new Reader for the given data.
func NewReader(data []byte) *Reader {
	return NewReaderWithOptions(data, DefaultOptions)
}

// NewReaderWithOptions is like NewReader with explicit limits and validation settings.
func NewReaderWithOptions(data []byte, opts Options) *Reader {
	return &Reader{
		data: data,
		opts: opts,
	}
}

// Reset resets the reader to read from new data.
func (r *Reader) Reset(data []byte) {
	r.data = data
	r.pos = 0
	r.depth = 0
	r.err = nil
}

// Options returns the reader's current options.
func (r *Reader) Options() Options {
	return r.opts
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// EOF returns true if all data has been read.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Err returns the first error that occurred during reading, if any.
func (r *Reader) Err() error {
	return r.err
}

// SetError records err unless an earlier error is already present.
// Record decoders use it to report semantic failures such as unknown fields.
func (r *Reader) SetError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// setErrorAt records an error with position information.
func (r *Reader) setErrorAt(err error, message string) {
	if r.err == nil {
		r.err = NewDecodeErrorAt(r.pos, message, err)
	}
}

// ensure checks that n bytes are available.
func (r *Reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.setErrorAt(ErrUnexpectedEOF, "unexpected end of data")
		return false
	}
	return true
}

// Skip skips n bytes.
func (r *Reader) Skip(n int) {
	if !r.ensure(n) {
		return
	}
	r.pos += n
}

// ReadBool reads a boolean value.
func (r *Reader) ReadBool() bool {
	return r.ReadUvarint() != 0
}

// ReadUvarint reads an unsigned varint.
func (r *Reader) ReadUvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := wire.DecodeUvarint(r.data[r.pos:])
	if err != nil {
		if errors.Is(err, wire.ErrTruncated) {
			err = ErrUnexpectedEOF
		}
		r.setErrorAt(err, "invalid varint")
		return 0
	}
	r.pos += n
	return v
}

// ReadSvarint reads a zig-zag signed varint.
func (r *Reader) ReadSvarint() int64 {
	return wire.UnZigZag(r.ReadUvarint())
}

// ReadInt32 reads a zig-zag varint that must fit in 32 bits.
func (r *Reader) ReadInt32() int32 {
	v := r.ReadSvarint()
	if v < -1<<31 || v > 1<<31-1 {
		r.setErrorAt(ErrOverflow, "int32 overflow")
		return 0
	}
	return int32(v)
}

// ReadFloat64 reads a little-endian float64.
func (r *Reader) ReadFloat64() float64 {
	if !r.ensure(Fixed64Size) {
		return 0
	}
	v, _ := wire.DecodeFloat64(r.data[r.pos:])
	r.pos += Fixed64Size
	return v
}

// readLength reads a length prefix and checks it against limit.
func (r *Reader) readLength(limit int, limitErr error) int {
	length := r.ReadUvarint()
	if r.err != nil {
		return 0
	}
	if length > uint64(MaxInt) {
		r.setErrorAt(ErrOverflow, "length overflow")
		return 0
	}
	n := int(length)
	if limit > 0 && n > limit {
		r.SetError(limitErr)
		return 0
	}
	if !r.ensure(n) {
		return 0
	}
	return n
}

// ReadString reads a length-prefixed string. The result does not alias
// the reader's buffer.
func (r *Reader) ReadString() string {
	n := r.readLength(r.opts.Limits.MaxStringLength, ErrMaxStringLength)
	if r.err != nil {
		return ""
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	if r.opts.ValidateUTF8 && !utf8.ValidString(s) {
		r.setErrorAt(ErrInvalidUTF8, "invalid string")
		return ""
	}
	return s
}

// ReadBytes reads a length-prefixed byte slice into a fresh copy.
func (r *Reader) ReadBytes() []byte {
	n := r.readLength(r.opts.Limits.MaxBytesLength, ErrMaxBytesLength)
	if r.err != nil {
		return nil
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b
}

// ReadPackedInt32 reads a length-prefixed run of zig-zag varints.
func (r *Reader) ReadPackedInt32() []int32 {
	n := r.readLength(0, nil)
	if r.err != nil {
		return nil
	}
	end := r.pos + n
	var vals []int32
	for r.pos < end && r.err == nil {
		if limit := r.opts.Limits.MaxArrayLength; limit > 0 && len(vals) >= limit {
			r.SetError(ErrMaxArrayLength)
			return nil
		}
		vals = append(vals, r.ReadInt32())
	}
	if r.err != nil {
		return nil
	}
	if r.pos != end {
		r.setErrorAt(ErrOverflow, "packed list overruns its length")
		return nil
	}
	return vals
}

// ReadTag reads a compact field tag. A field number of 0 means the end
// marker was consumed and the current message has no more fields.
func (r *Reader) ReadTag() (fieldNum int, wireType WireType) {
	if r.err != nil {
		return 0, 0
	}
	fn, wt, n, err := wire.DecodeCompactTag(r.data[r.pos:])
	if err != nil {
		switch {
		case errors.Is(err, wire.ErrTruncated):
			err = ErrUnexpectedEOF
		case errors.Is(err, wire.ErrInvalidWireType):
			err = ErrInvalidWireType
		case errors.Is(err, wire.ErrInvalidFieldNumber):
			err = ErrInvalidFieldNumber
		}
		r.setErrorAt(err, "invalid field tag")
		return 0, 0
	}
	r.pos += n
	return fn, wt
}

// BeginMessage starts reading a length-prefixed nested message.
// Returns the end position that should be passed to EndMessage.
func (r *Reader) BeginMessage() int {
	if r.err != nil {
		return -1
	}
	if r.opts.Limits.MaxDepth > 0 && r.depth >= r.opts.Limits.MaxDepth {
		r.SetError(ErrMaxDepthExceeded)
		return -1
	}
	r.depth++
	length := r.ReadUvarint()
	if r.err != nil {
		return -1
	}
	if length > uint64(MaxInt) {
		r.setErrorAt(ErrOverflow, "message length overflow")
		return -1
	}
	msgLen := int(length)
	if r.opts.Limits.MaxMessageSize > 0 && int64(msgLen) > r.opts.Limits.MaxMessageSize {
		r.SetError(ErrMaxSizeExceeded)
		return -1
	}
	if !r.ensure(msgLen) {
		return -1
	}
	return r.pos + msgLen
}

// EndMessage finishes reading a nested message. Unread bytes are skipped;
// reading past the boundary is an error.
func (r *Reader) EndMessage(endPos int) {
	if endPos < 0 || r.err != nil {
		return
	}
	if r.depth > 0 {
		r.depth--
	}
	if r.pos < endPos {
		r.pos = endPos
	} else if r.pos > endPos {
		r.setErrorAt(ErrOverflow, "read past message boundary")
	}
}

// SkipValue skips a value based on its wire type. In strict mode the
// skip itself is an error.
func (r *Reader) SkipValue(wireType WireType) {
	if r.err != nil {
		return
	}
	if r.opts.StrictMode {
		r.setErrorAt(ErrUnknownField, "unknown field")
		return
	}
	switch wireType {
	case WireVarint, WireSVarint:
		_ = r.ReadUvarint()
	case WireFixed64:
		r.Skip(Fixed64Size)
	case WireFixed32:
		r.Skip(Fixed32Size)
	case WireBytes:
		r.Skip(r.readLength(0, nil))
	default:
		r.setErrorAt(ErrInvalidWireType, "unknown wire type")
	}
}
