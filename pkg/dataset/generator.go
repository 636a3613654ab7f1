// Package dataset generates the pseudo-random records a benchmark run
// serializes.
package dataset

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/blockberries/sercompare/pkg/model"
)

// PhoneCount is the number of phones and credit cards per record.
const PhoneCount = model.LegacyPhoneCount

// tick is the unit of the random birth date offset.
const tick = 100 * time.Nanosecond

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now as the base of generated birth dates.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator produces datasets from a ChaCha8 stream. Two generators built
// with the same non-zero seed and clock produce identical datasets.
type Generator struct {
	seed uint64
	src  *rand.ChaCha8
	rng  *rand.Rand
	now  func() time.Time
}

// New returns a generator seeded with seed. A zero seed picks a fresh
// random seed, so every run differs.
func New(seed uint64, opts ...Option) *Generator {
	for seed == 0 {
		seed = rand.Uint64()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	g := &Generator{
		seed: seed,
		src:  src,
		rng:  rand.New(src),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Seed returns the effective seed, which can be passed back to New to
// reproduce a run.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Generate returns n records of the given shape.
func (g *Generator) Generate(shape model.Shape, n int) *model.Dataset {
	if n < 0 {
		n = 0
	}
	if shape == model.ShapeLegacy {
		persons := make([]model.LegacyPerson, n)
		for i := range persons {
			persons[i] = g.legacyPerson()
		}
		return model.NewLegacyDataset(persons)
	}

	base := g.now().UTC()
	persons := make([]model.Person, n)
	for i := range persons {
		persons[i] = g.person(int32(i), base)
	}
	return model.NewDataset(persons)
}

func (g *Generator) person(seq int32, base time.Time) model.Person {
	id := g.rng.Int32()
	p := model.Person{
		ID:          id,
		TransportID: g.uuid(),
		Name:        name(id),
		SequenceID:  seq,
		CreditCards: make([]int32, PhoneCount),
		Age:         g.rng.Int32N(100),
		Phones:      make([]string, PhoneCount),
	}
	for i := range p.CreditCards {
		p.CreditCards[i] = g.rng.Int32()
	}
	for i := range p.Phones {
		p.Phones[i] = strconv.FormatInt(int64(g.rng.Int32()), 10)
	}
	p.BirthDate = base.Add(time.Duration(g.rng.Int32()) * tick).Truncate(time.Millisecond)
	p.Salary = g.rng.Float64()
	p.IsMarried = g.rng.Int32() > math.MaxInt32/2
	return p
}

func (g *Generator) legacyPerson() model.LegacyPerson {
	id := g.rng.Int32()
	p := model.LegacyPerson{
		ID:   id,
		Name: name(id),
		Address: model.Address{
			Value1: g.rng.Int32(),
			Value2: g.rng.Float64(),
			Value3: g.rng.IntN(2) == 1,
		},
		Phones: make([]int32, PhoneCount),
	}
	for i := range p.Phones {
		p.Phones[i] = g.rng.Int32()
	}
	return p
}

// uuid draws a version 4 UUID from the generator's stream.
func (g *Generator) uuid() uuid.UUID {
	// ChaCha8.Read never fails
	id, _ := uuid.NewRandomFromReader(g.src)
	return id
}

func name(id int32) string {
	return "Person " + strconv.FormatInt(int64(id), 10) + " name"
}
