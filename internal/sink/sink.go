// Package sink stores the files produced by a run.
package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zarlcorp/core/pkg/zfilesystem"
)

// DirName is the directory created under the desktop directory.
const DirName = "SerializersCompare"

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// DefaultDir returns $XDG_DESKTOP_DIR/SerializersCompare, falling back to
// ~/Desktop/SerializersCompare.
func DefaultDir() string {
	if d := os.Getenv("XDG_DESKTOP_DIR"); d != "" {
		return filepath.Join(d, DirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DirName
	}
	return filepath.Join(home, "Desktop", DirName)
}

// Sink writes named files into one directory.
type Sink struct {
	fs  zfilesystem.ReadWriteFileFS
	dir string
}

// Open creates dir, and any missing parents, through a filesystem rooted at
// its parent and returns a Sink writing to it.
func Open(dir string) (*Sink, error) {
	dir = filepath.Clean(dir)
	parent := zfilesystem.NewOSFileSystem(filepath.Dir(dir))
	if err := parent.MkdirAll(filepath.Base(dir), dirPerm); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return New(zfilesystem.NewOSFileSystem(dir), dir), nil
}

// New returns a Sink over fsys. dir is only used for display.
func New(fsys zfilesystem.ReadWriteFileFS, dir string) *Sink {
	return &Sink{fs: fsys, dir: dir}
}

// Dir returns the directory the sink writes to.
func (s *Sink) Dir() string {
	return s.dir
}

// Path returns the display path of name.
func (s *Sink) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Write replaces the contents of name with data.
func (s *Sink) Write(name string, data []byte) error {
	if err := s.fs.WriteFile(name, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadFile returns the contents of name.
func (s *Sink) ReadFile(name string) ([]byte, error) {
	data, err := s.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Size returns the length of name in bytes.
func (s *Sink) Size(name string) (int64, error) {
	data, err := s.ReadFile(name)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}
