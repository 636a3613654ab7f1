package serializer

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"errors"
	"fmt"
	"io"
	"time"
)

// Deflate levels accepted by NewArchive.
const (
	MinLevel     = flate.HuffmanOnly
	MaxLevel     = flate.BestCompression
	DefaultLevel = flate.BestCompression
)

// ErrEntryExists indicates a second entry was requested for an archive.
var ErrEntryExists = errors.New("serializer: archive already has an entry")

// Archive is a zip archive holding a single deflated entry.
type Archive struct {
	zw    *zip.Writer
	entry bool
}

// NewArchive starts a zip archive on w whose deflate compressor uses level,
// between MinLevel and MaxLevel.
func NewArchive(w io.Writer, level int) (*Archive, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("serializer: invalid deflate level %d", level)
	}
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	return &Archive{zw: zw}, nil
}

// CreateEntry adds the archive's only entry and returns its writer. The
// writer is valid until Close.
func (a *Archive) CreateEntry(name string, modified time.Time) (io.Writer, error) {
	if a.entry {
		return nil, ErrEntryExists
	}
	a.entry = true
	return a.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
}

// Close finishes the entry and writes the central directory.
func (a *Archive) Close() error {
	return a.zw.Close()
}

// OpenEntry opens the single entry of the zip archive in data. It fails
// with ErrEntryNotFound unless the archive holds exactly one entry named name.
func OpenEntry(data []byte, name string) (io.ReadCloser, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("serializer: open archive: %w", err)
	}
	if len(zr.File) != 1 {
		return nil, fmt.Errorf("%w: archive holds %d entries", ErrEntryNotFound, len(zr.File))
	}
	if got := zr.File[0].Name; got != name {
		return nil, fmt.Errorf("%w: expected %q, found %q", ErrEntryNotFound, name, got)
	}
	return zr.File[0].Open()
}
