package serializer

import (
	"encoding/json"
	"io"

	"github.com/bytedance/sonic"

	"github.com/blockberries/sercompare/pkg/model"
)

type jsonFormat struct {
	base
}

// JSON returns the encoding/json format: the record slice as one JSON array.
func JSON() Format {
	return jsonFormat{base{
		name:  "JSON",
		files: FileSet{Plain: "persons.json", Archive: "personsJson.zip", Entry: "persons.json"},
	}}
}

func (f jsonFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	return newFormatError(f.name, "encode", json.NewEncoder(w).Encode(ds.Records()))
}

func (f jsonFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	ds, err := decodeInto(shape, json.NewDecoder(r).Decode)
	return ds, newFormatError(f.name, "decode", err)
}

type sonicFormat struct {
	base
}

// Sonic returns the same JSON document written by the sonic encoder.
func Sonic() Format {
	return sonicFormat{base{
		name:  "Sonic",
		files: FileSet{Plain: "sonicPersons.json", Archive: "sonicPersonsJson.zip", Entry: "persons.json"},
	}}
}

func (f sonicFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	return newFormatError(f.name, "encode", sonic.ConfigDefault.NewEncoder(w).Encode(ds.Records()))
}

func (f sonicFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	ds, err := decodeInto(shape, sonic.ConfigDefault.NewDecoder(r).Decode)
	return ds, newFormatError(f.name, "decode", err)
}

// decodeInto fills a record slice of the given shape with decode and
// wraps it in a Dataset.
func decodeInto(shape model.Shape, decode func(v any) error) (*model.Dataset, error) {
	if shape == model.ShapeLegacy {
		var persons []model.LegacyPerson
		if err := decode(&persons); err != nil {
			return nil, err
		}
		return model.NewLegacyDataset(persons), nil
	}
	var persons []model.Person
	if err := decode(&persons); err != nil {
		return nil, err
	}
	return model.NewDataset(persons), nil
}
