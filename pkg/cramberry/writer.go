package cramberry

import (
	"github.com/blockberries/sercompare/internal/wire"
)

// Writer encodes a single message into an in-memory buffer.
// Writers can be reused to reduce allocations.
//
// The first error is recorded and every later write becomes a no-op;
// check Err once the message is complete.
type Writer struct {
	buf    []byte
	opts   Options
	depth  int
	err    error
	frozen bool // prevents further writes after Bytes() is called
}

// NewWriter creates a new Writer with default options.
func NewWriter() *Writer {
	return NewWriterWithOptions(DefaultOptions)
}

// NewWriterWithOptions is like NewWriter with explicit options.
func NewWriterWithOptions(opts Options) *Writer {
	return &Writer{
		buf:  make([]byte, 0, 256),
		opts: opts,
	}
}

// Reset clears the writer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.depth = 0
	w.err = nil
	w.frozen = false
}

// SetOptions updates the writer's options.
func (w *Writer) SetOptions(opts Options) {
	w.opts = opts
}

// Options returns the writer's current options.
func (w *Writer) Options() Options {
	return w.opts
}

// Len returns the current length of the encoded data.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded data and freezes the writer.
// The returned slice is only valid until the next call to Reset.
func (w *Writer) Bytes() []byte {
	w.frozen = true
	return w.buf
}

// Err returns the first error that occurred during writing, if any.
func (w *Writer) Err() error {
	return w.err
}

// setError records the first error that occurs.
func (w *Writer) setError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// checkWrite ensures we can write to the buffer.
func (w *Writer) checkWrite() bool {
	if w.frozen {
		w.setError(NewEncodeError("writer is frozen after Bytes() call", nil))
		return false
	}
	return w.err == nil
}

// grow ensures the buffer has room for n more bytes.
func (w *Writer) grow(n int) bool {
	if w.opts.Limits.MaxMessageSize > 0 && int64(len(w.buf)+n) > w.opts.Limits.MaxMessageSize {
		w.setError(ErrMaxSizeExceeded)
		return false
	}
	if len(w.buf)+n <= cap(w.buf) {
		return true
	}
	newCap := cap(w.buf) * 2
	if newCap < len(w.buf)+n {
		newCap = len(w.buf) + n
	}
	newBuf := make([]byte, len(w.buf), newCap)
	copy(newBuf, w.buf)
	w.buf = newBuf
	return true
}

// WriteBool writes a boolean as a one-byte varint.
func (w *Writer) WriteBool(v bool) {
	if !w.checkWrite() || !w.grow(1) {
		return
	}
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteUvarint writes an unsigned varint.
func (w *Writer) WriteUvarint(v uint64) {
	if !w.checkWrite() || !w.grow(wire.UvarintSize(v)) {
		return
	}
	w.buf = wire.AppendUvarint(w.buf, v)
}

// WriteSvarint writes a zig-zag signed varint.
func (w *Writer) WriteSvarint(v int64) {
	if !w.checkWrite() || !w.grow(wire.SvarintSize(v)) {
		return
	}
	w.buf = wire.AppendSvarint(w.buf, v)
}

// WriteFloat64 writes a canonical little-endian float64.
func (w *Writer) WriteFloat64(v float64) {
	if !w.checkWrite() || !w.grow(Fixed64Size) {
		return
	}
	w.buf = wire.AppendFloat64(w.buf, v)
}

// WriteString writes a length-prefixed string.
func (w *Writer) WriteString(s string) {
	if !w.checkWrite() {
		return
	}
	if w.opts.Limits.MaxStringLength > 0 && len(s) > w.opts.Limits.MaxStringLength {
		w.setError(ErrMaxStringLength)
		return
	}
	if !w.grow(wire.UvarintSize(uint64(len(s))) + len(s)) {
		return
	}
	w.buf = wire.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes writes a length-prefixed byte slice.
func (w *Writer) WriteBytes(b []byte) {
	if !w.checkWrite() {
		return
	}
	if w.opts.Limits.MaxBytesLength > 0 && len(b) > w.opts.Limits.MaxBytesLength {
		w.setError(ErrMaxBytesLength)
		return
	}
	if !w.grow(wire.UvarintSize(uint64(len(b))) + len(b)) {
		return
	}
	w.buf = wire.AppendUvarint(w.buf, uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteTag writes a compact field tag.
func (w *Writer) WriteTag(fieldNum int, wireType WireType) {
	if !w.checkWrite() {
		return
	}
	if fieldNum <= 0 || fieldNum > wire.MaxFieldNumber {
		w.setError(ErrInvalidFieldNumber)
		return
	}
	if !w.grow(wire.CompactTagSize(fieldNum)) {
		return
	}
	w.buf = wire.AppendCompactTag(w.buf, fieldNum, wireType)
}

// WriteEndMarker terminates the fields of the current message.
func (w *Writer) WriteEndMarker() {
	if !w.checkWrite() || !w.grow(1) {
		return
	}
	w.buf = append(w.buf, wire.EndMarker)
}

// BeginMessage starts writing a length-prefixed nested message.
// Returns a checkpoint that must be passed to EndMessage.
func (w *Writer) BeginMessage() int {
	if !w.checkWrite() {
		return -1
	}
	if w.opts.Limits.MaxDepth > 0 && w.depth >= w.opts.Limits.MaxDepth {
		w.setError(ErrMaxDepthExceeded)
		return -1
	}
	w.depth++
	// reserve room for the longest possible length prefix
	checkpoint := len(w.buf)
	if !w.grow(MaxVarintLen64) {
		return -1
	}
	w.buf = append(w.buf, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	return checkpoint
}

// EndMessage finishes a message started with BeginMessage, writing its
// length prefix and closing the gap left by the reservation.
func (w *Writer) EndMessage(checkpoint int) {
	if checkpoint < 0 || w.err != nil {
		return
	}
	if w.depth > 0 {
		w.depth--
	}

	msgStart := checkpoint + MaxVarintLen64
	msgLen := len(w.buf) - msgStart

	var lenBuf [MaxVarintLen64]byte
	lenBytes := wire.AppendUvarint(lenBuf[:0], uint64(msgLen))
	if shift := MaxVarintLen64 - len(lenBytes); shift > 0 {
		copy(w.buf[checkpoint+len(lenBytes):], w.buf[msgStart:])
		w.buf = w.buf[:len(w.buf)-shift]
	}
	copy(w.buf[checkpoint:], lenBytes)
}

// WritePackedInt32 writes a length-prefixed run of zig-zag varints.
func (w *Writer) WritePackedInt32(vals []int32) {
	if !w.checkWrite() {
		return
	}
	if w.opts.Limits.MaxArrayLength > 0 && len(vals) > w.opts.Limits.MaxArrayLength {
		w.setError(ErrMaxArrayLength)
		return
	}
	size := 0
	for _, v := range vals {
		size += wire.SvarintSize(int64(v))
	}
	if !w.grow(wire.UvarintSize(uint64(size)) + size) {
		return
	}
	w.buf = wire.AppendUvarint(w.buf, uint64(size))
	for _, v := range vals {
		w.buf = wire.AppendSvarint(w.buf, int64(v))
	}
}

// Field helpers write a tag and value, skipping zero values when
// OmitEmpty is set.

// WriteInt32Field writes a signed integer field.
func (w *Writer) WriteInt32Field(fieldNum int, v int32) {
	if v == 0 && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireSVarint)
	w.WriteSvarint(int64(v))
}

// WriteInt64Field writes a signed 64-bit integer field.
func (w *Writer) WriteInt64Field(fieldNum int, v int64) {
	if v == 0 && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireSVarint)
	w.WriteSvarint(v)
}

// WriteBoolField writes a boolean field.
func (w *Writer) WriteBoolField(fieldNum int, v bool) {
	if !v && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireVarint)
	w.WriteBool(v)
}

// WriteFloat64Field writes a float64 field. Negative zero counts as zero.
func (w *Writer) WriteFloat64Field(fieldNum int, v float64) {
	if wire.CanonicalFloat64Bits(v) == 0 && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireFixed64)
	w.WriteFloat64(v)
}

// WriteStringField writes a string field.
func (w *Writer) WriteStringField(fieldNum int, s string) {
	if s == "" && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireBytes)
	w.WriteString(s)
}

// WriteBytesField writes a byte slice field.
func (w *Writer) WriteBytesField(fieldNum int, b []byte) {
	if len(b) == 0 && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireBytes)
	w.WriteBytes(b)
}

// WritePackedInt32Field writes a packed list of signed integers.
func (w *Writer) WritePackedInt32Field(fieldNum int, vals []int32) {
	if len(vals) == 0 && w.opts.OmitEmpty {
		return
	}
	w.WriteTag(fieldNum, WireBytes)
	w.WritePackedInt32(vals)
}
