package serializer

import (
	"encoding/binary"
	"io"

	"github.com/davecgh/go-xdr/xdr"

	"github.com/blockberries/sercompare/pkg/model"
)

type xdrList struct {
	Persons []flatPerson
}

type xdrLegacyList struct {
	Persons []model.LegacyPerson
}

type xdrFormat struct {
	base
}

// XDR returns the RFC 4506 encoding of the record list.
func XDR() Format {
	return xdrFormat{base{
		name:  "XDR",
		files: FileSet{Plain: "persons.xdr", Archive: "personsXdr.zip", Entry: "persons.xdr"},
	}}
}

func (f xdrFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	var v any = &xdrList{Persons: flatten(ds.Persons)}
	if ds.Shape == model.ShapeLegacy {
		v = &xdrLegacyList{Persons: ds.Legacy}
	}
	data, err := xdr.Marshal(v)
	if err != nil {
		return newFormatError(f.name, "encode", err)
	}
	_, err = w.Write(data)
	return newFormatError(f.name, "encode", err)
}

func (f xdrFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	// every record takes at least one 4-byte XDR unit
	if len(data) < 4 {
		return nil, malformed(f.name, "missing record count")
	}
	if n := binary.BigEndian.Uint32(data); int64(n) > int64(len(data)-4)/4 {
		return nil, malformed(f.name, "record count %d exceeds input size", n)
	}
	if shape == model.ShapeLegacy {
		var list xdrLegacyList
		rest, err := xdr.Unmarshal(data, &list)
		if err != nil {
			return nil, newFormatError(f.name, "decode", err)
		}
		if len(rest) != 0 {
			return nil, malformed(f.name, "%d trailing bytes", len(rest))
		}
		return model.NewLegacyDataset(list.Persons), nil
	}

	var list xdrList
	rest, err := xdr.Unmarshal(data, &list)
	if err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	if len(rest) != 0 {
		return nil, malformed(f.name, "%d trailing bytes", len(rest))
	}
	persons, err := unflatten(f.name, list.Persons)
	if err != nil {
		return nil, err
	}
	return model.NewDataset(persons), nil
}
