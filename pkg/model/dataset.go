package model

import (
	"errors"
	"fmt"
	"strings"
)

// Shape selects which record type a Dataset holds.
type Shape int

const (
	// ShapeCurrent holds Person records.
	ShapeCurrent Shape = iota
	// ShapeLegacy holds LegacyPerson records.
	ShapeLegacy
)

// Shapes lists every shape.
var Shapes = []Shape{ShapeCurrent, ShapeLegacy}

// String returns the flag spelling of the shape.
func (s Shape) String() string {
	switch s {
	case ShapeCurrent:
		return "current"
	case ShapeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// ParseShape parses "current" or "legacy", case-insensitively.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current", "":
		return ShapeCurrent, nil
	case "legacy":
		return ShapeLegacy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
	}
}

// UnmarshalText lets flag parsers fill a Shape directly.
func (s *Shape) UnmarshalText(text []byte) error {
	v, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	// ErrUnknownShape indicates an unrecognised shape name.
	ErrUnknownShape = errors.New("model: unknown shape")

	// ErrShapeMismatch indicates two datasets hold different shapes.
	ErrShapeMismatch = errors.New("model: shape mismatch")

	// ErrLengthMismatch indicates two datasets hold different record counts.
	ErrLengthMismatch = errors.New("model: length mismatch")

	// ErrRecordMismatch indicates two records at the same index differ.
	ErrRecordMismatch = errors.New("model: record mismatch")
)

// Dataset is the set of records of one shape processed by a run.
// Exactly one of the record slices is populated, matching Shape.
type Dataset struct {
	Shape   Shape
	Persons []Person
	Legacy  []LegacyPerson
}

// NewDataset returns a dataset of current-shape records.
func NewDataset(persons []Person) *Dataset {
	return &Dataset{Shape: ShapeCurrent, Persons: persons}
}

// NewLegacyDataset returns a dataset of legacy-shape records.
func NewLegacyDataset(persons []LegacyPerson) *Dataset {
	return &Dataset{Shape: ShapeLegacy, Legacy: persons}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d.Shape == ShapeLegacy {
		return len(d.Legacy)
	}
	return len(d.Persons)
}

// Records returns the records as a slice of the shape's type
// ([]Person or []LegacyPerson).
func (d *Dataset) Records() any {
	if d.Shape == ShapeLegacy {
		return d.Legacy
	}
	return d.Persons
}

// Compare returns nil when other holds the same shape and records as d.
// Otherwise it returns an error wrapping ErrShapeMismatch,
// ErrLengthMismatch or ErrRecordMismatch; for the latter the message
// names the first differing index.
func (d *Dataset) Compare(other *Dataset) error {
	if d.Shape != other.Shape {
		return fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, d.Shape, other.Shape)
	}
	if d.Len() != other.Len() {
		return fmt.Errorf("%w: %d vs %d records", ErrLengthMismatch, d.Len(), other.Len())
	}
	if d.Shape == ShapeLegacy {
		for i := range d.Legacy {
			if !d.Legacy[i].Equal(other.Legacy[i]) {
				return fmt.Errorf("%w at index %d: %+v vs %+v", ErrRecordMismatch, i, d.Legacy[i], other.Legacy[i])
			}
		}
		return nil
	}
	for i := range d.Persons {
		if !d.Persons[i].Equal(other.Persons[i]) {
			return fmt.Errorf("%w at index %d: %+v vs %+v", ErrRecordMismatch, i, d.Persons[i], other.Persons[i])
		}
	}
	return nil
}
