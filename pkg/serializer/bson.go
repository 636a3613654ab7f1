package serializer

import (
	"io"

	"gopkg.in/mgo.v2/bson"

	"github.com/blockberries/sercompare/pkg/model"
)

type bsonDoc struct {
	Persons []flatPerson `bson:"persons"`
}

type bsonLegacyDoc struct {
	Persons []model.LegacyPerson `bson:"persons"`
}

type bsonFormat struct {
	base
}

// BSON returns a single BSON document holding the record list.
func BSON() Format {
	return bsonFormat{base{
		name:  "BSON",
		files: FileSet{Plain: "persons.bson", Archive: "personsBson.zip", Entry: "persons.bson"},
	}}
}

func (f bsonFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	var doc any = &bsonDoc{Persons: flatten(ds.Persons)}
	if ds.Shape == model.ShapeLegacy {
		doc = &bsonLegacyDoc{Persons: ds.Legacy}
	}
	data, err := bson.Marshal(doc)
	if err != nil {
		return newFormatError(f.name, "encode", err)
	}
	_, err = w.Write(data)
	return newFormatError(f.name, "encode", err)
}

func (f bsonFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	if shape == model.ShapeLegacy {
		var doc bsonLegacyDoc
		if err := bson.Unmarshal(data, &doc); err != nil {
			return nil, newFormatError(f.name, "decode", err)
		}
		return model.NewLegacyDataset(doc.Persons), nil
	}

	var doc bsonDoc
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	persons, err := unflatten(f.name, doc.Persons)
	if err != nil {
		return nil, err
	}
	return model.NewDataset(persons), nil
}
