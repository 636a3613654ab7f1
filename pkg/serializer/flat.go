package serializer

import (
	"time"

	"github.com/google/uuid"

	"github.com/blockberries/sercompare/pkg/model"
)

// base carries the name and file set shared by every format.
type base struct {
	name  string
	files FileSet
}

func (b base) Name() string   { return b.name }
func (b base) Files() FileSet { return b.files }

// flatPerson mirrors model.Person with only plain values, for encoders
// that cannot handle uuid.UUID or time.Time: the transport id is raw bytes
// and the birth date is Unix seconds plus nanoseconds, which covers every
// time.Time including the zero value.
type flatPerson struct {
	ID          int32    `bson:"id"`
	TransportID []byte   `bson:"transportId"`
	Name        string   `bson:"name"`
	SequenceID  int32    `bson:"sequenceId"`
	CreditCards []int32  `bson:"creditCards"`
	Age         int32    `bson:"age"`
	Phones      []string `bson:"phones"`
	BirthSec    int64    `bson:"birthSec"`
	BirthNanos  int32    `bson:"birthNanos"`
	Salary      float64  `bson:"salary"`
	IsMarried   bool     `bson:"isMarried"`
}

func flatten(persons []model.Person) []flatPerson {
	out := make([]flatPerson, len(persons))
	for i, p := range persons {
		out[i] = flatPerson{
			ID:          p.ID,
			TransportID: p.TransportID[:],
			Name:        p.Name,
			SequenceID:  p.SequenceID,
			CreditCards: p.CreditCards,
			Age:         p.Age,
			Phones:      p.Phones,
			BirthSec:    p.BirthDate.Unix(),
			BirthNanos:  int32(p.BirthDate.Nanosecond()),
			Salary:      p.Salary,
			IsMarried:   p.IsMarried,
		}
	}
	return out
}

func unflatten(format string, flat []flatPerson) ([]model.Person, error) {
	out := make([]model.Person, len(flat))
	for i, f := range flat {
		id, err := uuid.FromBytes(f.TransportID)
		if err != nil {
			return nil, malformed(format, "record %d transport id: %v", i, err)
		}
		out[i] = model.Person{
			ID:          f.ID,
			TransportID: id,
			Name:        f.Name,
			SequenceID:  f.SequenceID,
			CreditCards: f.CreditCards,
			Age:         f.Age,
			Phones:      f.Phones,
			BirthDate:   time.Unix(f.BirthSec, int64(f.BirthNanos)).UTC(),
			Salary:      f.Salary,
			IsMarried:   f.IsMarried,
		}
	}
	return out, nil
}
