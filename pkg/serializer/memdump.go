package serializer

import (
	"io"

	"github.com/alexflint/go-memdump"

	"github.com/blockberries/sercompare/pkg/model"
)

type memdumpList struct {
	Persons []flatPerson
}

type memdumpLegacyList struct {
	Persons []model.LegacyPerson
}

type memdumpFormat struct {
	base
}

// Memdump returns the in-memory layout dump of the record list.
func Memdump() Format {
	return memdumpFormat{base{
		name:  "Memdump",
		files: FileSet{Plain: "persons.memdump", Archive: "personsMemdump.zip", Entry: "persons.memdump"},
	}}
}

func (f memdumpFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	var err error
	if ds.Shape == model.ShapeLegacy {
		err = memdump.Encode(w, &memdumpLegacyList{Persons: ds.Legacy})
	} else {
		err = memdump.Encode(w, &memdumpList{Persons: flatten(ds.Persons)})
	}
	return newFormatError(f.name, "encode", err)
}

func (f memdumpFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	if shape == model.ShapeLegacy {
		var list *memdumpLegacyList
		if err := memdump.Decode(r, &list); err != nil {
			return nil, newFormatError(f.name, "decode", err)
		}
		if list == nil {
			return nil, malformed(f.name, "empty dump")
		}
		return model.NewLegacyDataset(list.Persons), nil
	}

	var list *memdumpList
	if err := memdump.Decode(r, &list); err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	if list == nil {
		return nil, malformed(f.name, "empty dump")
	}
	persons, err := unflatten(f.name, list.Persons)
	if err != nil {
		return nil, err
	}
	return model.NewDataset(persons), nil
}
