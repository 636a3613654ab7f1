// Package model defines the records the benchmark serializes: the current
// Person shape, the legacy shape with a nested Address, and the Dataset
// that holds a run's records.
package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Person is a record of the current shape.
type Person struct {
	ID          int32     `json:"id"`
	TransportID uuid.UUID `json:"transportId"`
	Name        string    `json:"name"`
	SequenceID  int32     `json:"sequenceId"`
	CreditCards []int32   `json:"creditCards"`
	Age         int32     `json:"age"`
	Phones      []string  `json:"phones"`
	BirthDate   time.Time `json:"birthDate"`
	Salary      float64   `json:"salary"`
	IsMarried   bool      `json:"isMarried"`
}

// Equal reports whether p and o hold the same field values.
// Nil and empty lists are equal; timestamps compare by instant.
func (p Person) Equal(o Person) bool {
	return p.ID == o.ID &&
		p.TransportID == o.TransportID &&
		p.Name == o.Name &&
		p.SequenceID == o.SequenceID &&
		slices.Equal(p.CreditCards, o.CreditCards) &&
		p.Age == o.Age &&
		slices.Equal(p.Phones, o.Phones) &&
		p.BirthDate.Equal(o.BirthDate) &&
		p.Salary == o.Salary &&
		p.IsMarried == o.IsMarried
}

// Address is the nested value of a LegacyPerson.
type Address struct {
	Value1 int32   `json:"value1"`
	Value2 float64 `json:"value2"`
	Value3 bool    `json:"value3"`
}

// LegacyPerson is a record of the legacy shape.
type LegacyPerson struct {
	ID      int32   `json:"id"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
	Phones  []int32 `json:"phones"`
}

// LegacyPhoneCount is the fixed number of phones of a LegacyPerson.
const LegacyPhoneCount = 3

// Equal reports whether p and o hold the same field values.
func (p LegacyPerson) Equal(o LegacyPerson) bool {
	return p.ID == o.ID &&
		p.Name == o.Name &&
		p.Address == o.Address &&
		slices.Equal(p.Phones, o.Phones)
}
