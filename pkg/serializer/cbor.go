package serializer

import (
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"

	"github.com/blockberries/sercompare/pkg/model"
)

type cborFormat struct {
	base
	enc cbor.EncMode
	dec cbor.DecMode
}

// CBOR returns the CBOR encoding of the record slice, with timestamps as
// RFC 3339 text.
func CBOR() Format {
	enc, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	dec, err := cbor.DecOptions{MaxArrayElements: math.MaxInt32}.DecMode()
	if err != nil {
		panic(err)
	}
	return cborFormat{
		base: base{
			name:  "CBOR",
			files: FileSet{Plain: "persons.cbor", Archive: "personsCbor.zip", Entry: "persons.cbor"},
		},
		enc: enc,
		dec: dec,
	}
}

func (f cborFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	return newFormatError(f.name, "encode", f.enc.NewEncoder(w).Encode(ds.Records()))
}

func (f cborFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	ds, err := decodeInto(shape, f.dec.NewDecoder(r).Decode)
	return ds, newFormatError(f.name, "decode", err)
}
