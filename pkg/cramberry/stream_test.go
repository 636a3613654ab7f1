package cramberry

import (
	"bytes"
	"errors"
	"testing"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestStreamRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	names := []string{"alpha", "", "gamma"}
	sw.WriteUvarint(uint64(len(names)))
	for i, name := range names {
		err := sw.WriteRecord(func(w *Writer) {
			w.WriteInt32Field(1, int32(i))
			w.WriteStringField(2, name)
			w.WriteEndMarker()
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}

	sr := NewStreamReader(&buf)
	count := sr.ReadCount()
	if count != len(names) {
		t.Fatalf("expected %d records, got %d", len(names), count)
	}
	for i := 0; i < count; i++ {
		var id int32
		var name string
		err := sr.ReadRecord(func(r *Reader) {
			for {
				field, wt := r.ReadTag()
				if field == 0 || r.Err() != nil {
					return
				}
				switch field {
				case 1:
					id = r.ReadInt32()
				case 2:
					name = r.ReadString()
				default:
					r.SkipValue(wt)
				}
			}
		})
		if err != nil {
			t.Fatal(err)
		}
		if id != int32(i) || name != names[i] {
			t.Errorf("record %d: expected (%d, %q), got (%d, %q)", i, i, names[i], id, name)
		}
	}
	if sr.More() {
		t.Error("expected no more messages")
	}
	if sr.Err() != nil {
		t.Errorf("expected clean end, got %v", sr.Err())
	}
}

func TestStreamReaderTruncated(t *testing.T) {
	sr := NewStreamReader(bytes.NewReader([]byte{0x05, 0x01, 0x02}))
	if sr.ReadMessage() != nil {
		t.Error("expected nil message")
	}
	if !errors.Is(sr.Err(), ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", sr.Err())
	}
}

func TestStreamReaderCountLimit(t *testing.T) {
	opts := DefaultOptions
	opts.Limits.MaxArrayLength = 10
	sr := NewStreamReaderWithOptions(bytes.NewReader([]byte{0x0b}), opts)
	sr.ReadCount()
	if !errors.Is(sr.Err(), ErrMaxArrayLength) {
		t.Errorf("expected ErrMaxArrayLength, got %v", sr.Err())
	}
}

func TestStreamWriterErrors(t *testing.T) {
	sw := NewStreamWriterSize(failingWriter{}, 16)
	sw.WriteMessage(make([]byte, 64))
	if err := sw.Flush(); err == nil {
		t.Fatal("expected write error")
	}
	var encErr *EncodeError
	if !errors.As(sw.Err(), &encErr) {
		t.Errorf("expected EncodeError, got %T", sw.Err())
	}

	var buf bytes.Buffer
	sw = NewStreamWriter(&buf)
	_ = sw.Close()
	sw.WriteUvarint(1)
	if sw.Err() == nil {
		t.Error("expected error writing after Close")
	}

	sw = NewStreamWriter(&buf)
	err := sw.WriteRecord(func(w *Writer) { w.WriteTag(0, WireVarint) })
	if !errors.Is(err, ErrInvalidFieldNumber) {
		t.Errorf("expected ErrInvalidFieldNumber, got %v", err)
	}
}
