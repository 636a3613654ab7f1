// Package serializer implements the encodings the benchmark compares.
// Each Format writes a whole Dataset to an io.Writer and reads it back;
// the runner times Encode and the verification pass uses Decode.
package serializer

import (
	"io"

	"github.com/blockberries/sercompare/pkg/model"
)

// FileSet names the files a format produces.
type FileSet struct {
	// Plain is the output file name of the uncompressed encoding.
	Plain string
	// Archive is the output file name of the zip archive.
	Archive string
	// Entry is the name of the single entry inside the archive.
	Entry string
}

// Format is one serialization technique.
type Format interface {
	// Name is the label printed in reports.
	Name() string
	// Files returns the output file names.
	Files() FileSet
	// Encode writes ds to w.
	Encode(w io.Writer, ds *model.Dataset) error
	// Decode reads a dataset of the given shape from r.
	Decode(r io.Reader, shape model.Shape) (*model.Dataset, error)
}

func checkShape(format, op string, shape model.Shape) error {
	if shape != model.ShapeCurrent && shape != model.ShapeLegacy {
		return newFormatError(format, op, ErrUnsupportedShape)
	}
	return nil
}
