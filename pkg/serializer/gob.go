package serializer

import (
	"encoding/gob"
	"io"

	"github.com/blockberries/sercompare/pkg/model"
)

type gobFormat struct {
	base
}

// Gob returns Go's native object graph encoding of the record slice.
func Gob() Format {
	return gobFormat{base{
		name:  "Gob",
		files: FileSet{Plain: "persons.gob", Archive: "personsGob.zip", Entry: "persons.gob"},
	}}
}

func (f gobFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	return newFormatError(f.name, "encode", gob.NewEncoder(w).Encode(ds.Records()))
}

func (f gobFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	ds, err := decodeInto(shape, gob.NewDecoder(r).Decode)
	return ds, newFormatError(f.name, "decode", err)
}
