package cramberry

import (
	"bufio"
	"errors"
	"io"

	"github.com/blockberries/sercompare/internal/wire"
)

// StreamWriter writes a sequence of length-delimited messages to an
// io.Writer through a buffer.
//
// StreamWriter is not safe for use from multiple goroutines.
type StreamWriter struct {
	w       *bufio.Writer
	opts    Options
	err     error
	closed  bool
	scratch [MaxVarintLen64]byte
}

// NewStreamWriter creates a new StreamWriter that writes to w.
// The default buffer size is 4096 bytes.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return NewStreamWriterSize(w, 4096)
}

// NewStreamWriterSize creates a new StreamWriter with a specified buffer size.
func NewStreamWriterSize(w io.Writer, bufSize int) *StreamWriter {
	return &StreamWriter{
		w:    bufio.NewWriterSize(w, bufSize),
		opts: DefaultOptions,
	}
}

// NewStreamWriterWithOptions creates a new StreamWriter with options.
func NewStreamWriterWithOptions(w io.Writer, opts Options) *StreamWriter {
	sw := NewStreamWriter(w)
	sw.opts = opts
	return sw
}

// Options returns the writer's current options.
func (sw *StreamWriter) Options() Options {
	return sw.opts
}

// Flush writes any buffered data to the underlying writer.
func (sw *StreamWriter) Flush() error {
	if sw.err != nil {
		return sw.err
	}
	if err := sw.w.Flush(); err != nil {
		sw.err = NewEncodeError("flush failed", err)
	}
	return sw.err
}

// Close flushes buffered data. The underlying io.Writer is not closed.
func (sw *StreamWriter) Close() error {
	if sw.closed {
		return sw.err
	}
	sw.closed = true
	return sw.Flush()
}

// Err returns any error that occurred during writing.
func (sw *StreamWriter) Err() error {
	return sw.err
}

func (sw *StreamWriter) setError(err error) {
	if sw.err == nil {
		sw.err = err
	}
}

func (sw *StreamWriter) checkWrite() bool {
	if sw.closed {
		sw.setError(NewEncodeError("writer is closed", nil))
		return false
	}
	return sw.err == nil
}

func (sw *StreamWriter) write(b []byte) {
	if !sw.checkWrite() {
		return
	}
	if _, err := sw.w.Write(b); err != nil {
		sw.setError(NewEncodeError("write failed", err))
	}
}

// WriteUvarint writes an unsigned varint.
func (sw *StreamWriter) WriteUvarint(v uint64) {
	sw.write(wire.AppendUvarint(sw.scratch[:0], v))
}

// WriteMessage writes data with a varint length prefix.
func (sw *StreamWriter) WriteMessage(data []byte) {
	if !sw.checkWrite() {
		return
	}
	if sw.opts.Limits.MaxMessageSize > 0 && int64(len(data)) > sw.opts.Limits.MaxMessageSize {
		sw.setError(ErrMaxSizeExceeded)
		return
	}
	sw.WriteUvarint(uint64(len(data)))
	sw.write(data)
}

// WriteRecord encodes one message with fn into a pooled Writer and writes
// it length-delimited.
func (sw *StreamWriter) WriteRecord(fn func(w *Writer)) error {
	if !sw.checkWrite() {
		return sw.err
	}
	w := GetWriter()
	defer PutWriter(w)
	w.SetOptions(sw.opts)
	fn(w)
	if err := w.Err(); err != nil {
		sw.setError(err)
		return err
	}
	sw.WriteMessage(w.Bytes())
	return sw.err
}

// StreamReader reads length-delimited messages from an io.Reader.
//
// StreamReader is not safe for use from multiple goroutines.
type StreamReader struct {
	r    *bufio.Reader
	opts Options
	err  error
	buf  []byte
}

// NewStreamReader creates a new StreamReader that reads from r.
// The default buffer size is 4096 bytes.
func NewStreamReader(r io.Reader) *StreamReader {
	return NewStreamReaderSize(r, 4096)
}

// NewStreamReaderSize creates a new StreamReader with a specified buffer size.
func NewStreamReaderSize(r io.Reader, bufSize int) *StreamReader {
	return &StreamReader{
		r:    bufio.NewReaderSize(r, bufSize),
		opts: DefaultOptions,
	}
}

// NewStreamReaderWithOptions creates a new StreamReader with options.
func NewStreamReaderWithOptions(r io.Reader, opts Options) *StreamReader {
	sr := NewStreamReader(r)
	sr.opts = opts
	return sr
}

// Options returns the reader's current options.
func (sr *StreamReader) Options() Options {
	return sr.opts
}

// Err returns any error that occurred during reading.
func (sr *StreamReader) Err() error {
	return sr.err
}

func (sr *StreamReader) setError(err error) {
	if sr.err == nil {
		sr.err = err
	}
}

// ReadUvarint reads an unsigned varint.
func (sr *StreamReader) ReadUvarint() uint64 {
	if sr.err != nil {
		return 0
	}
	var result uint64
	var shift uint
	for i := 0; i < MaxVarintLen64; i++ {
		b, err := sr.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				sr.setError(ErrUnexpectedEOF)
			} else {
				sr.setError(NewDecodeError("read varint failed", err))
			}
			return 0
		}
		if i == MaxVarintLen64-1 && b > 1 {
			sr.setError(wire.ErrVarintOverflow)
			return 0
		}
		result |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return result
		}
		shift += 7
	}
	sr.setError(wire.ErrVarintTooLong)
	return 0
}

// ReadCount reads a record count and checks it against MaxArrayLength.
func (sr *StreamReader) ReadCount() int {
	n := sr.ReadUvarint()
	if sr.err != nil {
		return 0
	}
	if limit := sr.opts.Limits.MaxArrayLength; limit > 0 && n > uint64(limit) {
		sr.setError(ErrMaxArrayLength)
		return 0
	}
	if n > uint64(MaxInt) {
		sr.setError(ErrOverflow)
		return 0
	}
	return int(n)
}

// ReadMessage reads a length-prefixed message. The returned slice is reused
// by the next call.
func (sr *StreamReader) ReadMessage() []byte {
	length := sr.ReadUvarint()
	if sr.err != nil {
		return nil
	}
	if length > uint64(MaxInt) {
		sr.setError(ErrOverflow)
		return nil
	}
	n := int(length)
	if sr.opts.Limits.MaxMessageSize > 0 && int64(n) > sr.opts.Limits.MaxMessageSize {
		sr.setError(ErrMaxSizeExceeded)
		return nil
	}
	if cap(sr.buf) < n {
		sr.buf = make([]byte, n)
	}
	buf := sr.buf[:n]
	if _, err := io.ReadFull(sr.r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			sr.setError(ErrUnexpectedEOF)
		} else {
			sr.setError(NewDecodeError("read message failed", err))
		}
		return nil
	}
	return buf
}

// ReadRecord reads one length-delimited message and decodes it with fn.
func (sr *StreamReader) ReadRecord(fn func(r *Reader)) error {
	data := sr.ReadMessage()
	if sr.err != nil {
		return sr.err
	}
	r := NewReaderWithOptions(data, sr.opts)
	fn(r)
	if err := r.Err(); err != nil {
		sr.setError(err)
	}
	return sr.err
}

// More reports whether another message follows. A clean end of input
// yields false with no error.
func (sr *StreamReader) More() bool {
	if sr.err != nil {
		return false
	}
	if _, err := sr.r.Peek(1); err != nil {
		if !errors.Is(err, io.EOF) {
			sr.setError(NewDecodeError("peek failed", err))
		}
		return false
	}
	return true
}
