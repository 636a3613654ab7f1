package serializer

import (
	"bufio"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	"github.com/blockberries/sercompare/pkg/model"
)

type protobufFormat struct {
	base
}

// Protobuf returns the Protocol Buffers encoding of a PersonList (or
// LegacyPersonList) message. Records are written with protowire and read
// back through a dynamic message built from the schema in protoschema.go.
func Protobuf() Format {
	return protobufFormat{base{
		name:  "Protobuf",
		files: FileSet{Plain: "personsProto.bin", Archive: "personsProto.zip", Entry: "persons.bin"},
	}}
}

func (f protobufFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	var rec, hdr []byte
	writeRecord := func() error {
		hdr = protowire.AppendTag(hdr[:0], pbListPersons, protowire.BytesType)
		hdr = protowire.AppendVarint(hdr, uint64(len(rec)))
		if _, err := bw.Write(hdr); err != nil {
			return err
		}
		_, err := bw.Write(rec)
		return err
	}

	if ds.Shape == model.ShapeLegacy {
		for i := range ds.Legacy {
			rec = appendPbLegacyPerson(rec[:0], &ds.Legacy[i])
			if err := writeRecord(); err != nil {
				return newFormatError(f.name, "encode", err)
			}
		}
	} else {
		for i := range ds.Persons {
			rec = appendPbPerson(rec[:0], &ds.Persons[i])
			if err := writeRecord(); err != nil {
				return newFormatError(f.name, "encode", err)
			}
		}
	}
	return newFormatError(f.name, "encode", bw.Flush())
}

func (f protobufFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	file, err := personsFile()
	if err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}

	listName := protoreflect.Name("PersonList")
	if shape == model.ShapeLegacy {
		listName = "LegacyPersonList"
	}
	listDesc := file.Messages().ByName(listName)
	msg := dynamicpb.NewMessage(listDesc)
	if err := proto.Unmarshal(data, msg); err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	list := msg.Get(listDesc.Fields().ByNumber(pbListPersons)).List()

	if shape == model.ShapeLegacy {
		persons := make([]model.LegacyPerson, list.Len())
		for i := range persons {
			persons[i] = pbLegacyPersonFrom(list.Get(i).Message())
		}
		return model.NewLegacyDataset(persons), nil
	}

	persons := make([]model.Person, list.Len())
	for i := range persons {
		p, err := pbPersonFrom(list.Get(i).Message())
		if err != nil {
			return nil, malformed(f.name, "record %d: %v", i, err)
		}
		persons[i] = p
	}
	return model.NewDataset(persons), nil
}

// Encoding follows proto3 rules: zero scalars are omitted, repeated
// scalars are packed.

func appendPbInt32(b []byte, num protowire.Number, v int32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendPbInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendPbDouble(b []byte, num protowire.Number, v float64) []byte {
	bits := math.Float64bits(v)
	if bits == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, bits)
}

func appendPbBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendPbString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendPbPackedInt32(b []byte, num protowire.Number, vals []int32) []byte {
	if len(vals) == 0 {
		return b
	}
	size := 0
	for _, v := range vals {
		size += protowire.SizeVarint(uint64(int64(v)))
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	for _, v := range vals {
		b = protowire.AppendVarint(b, uint64(int64(v)))
	}
	return b
}

func sizePbVarintField(v uint64) int {
	if v == 0 {
		return 0
	}
	return protowire.SizeTag(1) + protowire.SizeVarint(v)
}

func appendPbTimestamp(b []byte, num protowire.Number, t time.Time) []byte {
	if t.IsZero() {
		return b
	}
	sec, nanos := t.Unix(), int64(t.Nanosecond())
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(sizePbVarintField(uint64(sec))+sizePbVarintField(uint64(nanos))))
	b = appendPbInt64(b, pbTimestampSeconds, sec)
	return appendPbInt64(b, pbTimestampNanos, nanos)
}

func appendPbPerson(b []byte, p *model.Person) []byte {
	b = appendPbInt32(b, pbPersonID, p.ID)
	b = protowire.AppendTag(b, pbPersonTransportID, protowire.BytesType)
	b = protowire.AppendBytes(b, p.TransportID[:])
	b = appendPbString(b, pbPersonName, p.Name)
	b = appendPbInt32(b, pbPersonSequenceID, p.SequenceID)
	b = appendPbPackedInt32(b, pbPersonCreditCards, p.CreditCards)
	b = appendPbInt32(b, pbPersonAge, p.Age)
	for _, phone := range p.Phones {
		// repeated elements are written even when empty
		b = protowire.AppendTag(b, pbPersonPhones, protowire.BytesType)
		b = protowire.AppendString(b, phone)
	}
	b = appendPbTimestamp(b, pbPersonBirthDate, p.BirthDate)
	b = appendPbDouble(b, pbPersonSalary, p.Salary)
	return appendPbBool(b, pbPersonIsMarried, p.IsMarried)
}

func appendPbLegacyPerson(b []byte, p *model.LegacyPerson) []byte {
	b = appendPbInt32(b, pbLegacyID, p.ID)
	b = appendPbString(b, pbLegacyName, p.Name)

	a := p.Address
	size := sizePbVarintField(uint64(int64(a.Value1)))
	if math.Float64bits(a.Value2) != 0 {
		size += protowire.SizeTag(pbAddressValue2) + protowire.SizeFixed64()
	}
	if a.Value3 {
		size += protowire.SizeTag(pbAddressValue3) + 1
	}
	b = protowire.AppendTag(b, pbLegacyAddress, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(size))
	b = appendPbInt32(b, pbAddressValue1, a.Value1)
	b = appendPbDouble(b, pbAddressValue2, a.Value2)
	b = appendPbBool(b, pbAddressValue3, a.Value3)

	return appendPbPackedInt32(b, pbLegacyPhones, p.Phones)
}

func pbPersonFrom(m protoreflect.Message) (model.Person, error) {
	fields := m.Descriptor().Fields()
	get := func(num protoreflect.FieldNumber) protoreflect.Value {
		return m.Get(fields.ByNumber(num))
	}

	p := model.Person{
		ID:         int32(get(pbPersonID).Int()),
		Name:       get(pbPersonName).String(),
		SequenceID: int32(get(pbPersonSequenceID).Int()),
		Age:        int32(get(pbPersonAge).Int()),
		Salary:     get(pbPersonSalary).Float(),
		IsMarried:  get(pbPersonIsMarried).Bool(),
	}
	if raw := get(pbPersonTransportID).Bytes(); len(raw) > 0 {
		id, err := uuid.FromBytes(raw)
		if err != nil {
			return p, err
		}
		p.TransportID = id
	}
	if cards := get(pbPersonCreditCards).List(); cards.Len() > 0 {
		p.CreditCards = make([]int32, cards.Len())
		for i := range p.CreditCards {
			p.CreditCards[i] = int32(cards.Get(i).Int())
		}
	}
	if phones := get(pbPersonPhones).List(); phones.Len() > 0 {
		p.Phones = make([]string, phones.Len())
		for i := range p.Phones {
			p.Phones[i] = phones.Get(i).String()
		}
	}
	if fd := fields.ByNumber(pbPersonBirthDate); m.Has(fd) {
		ts := m.Get(fd).Message()
		tsFields := ts.Descriptor().Fields()
		sec := ts.Get(tsFields.ByNumber(pbTimestampSeconds)).Int()
		nanos := ts.Get(tsFields.ByNumber(pbTimestampNanos)).Int()
		p.BirthDate = time.Unix(sec, nanos).UTC()
	}
	return p, nil
}

func pbLegacyPersonFrom(m protoreflect.Message) model.LegacyPerson {
	fields := m.Descriptor().Fields()
	p := model.LegacyPerson{
		ID:   int32(m.Get(fields.ByNumber(pbLegacyID)).Int()),
		Name: m.Get(fields.ByNumber(pbLegacyName)).String(),
	}
	if fd := fields.ByNumber(pbLegacyAddress); m.Has(fd) {
		a := m.Get(fd).Message()
		aFields := a.Descriptor().Fields()
		p.Address = model.Address{
			Value1: int32(a.Get(aFields.ByNumber(pbAddressValue1)).Int()),
			Value2: a.Get(aFields.ByNumber(pbAddressValue2)).Float(),
			Value3: a.Get(aFields.ByNumber(pbAddressValue3)).Bool(),
		}
	}
	if phones := m.Get(fields.ByNumber(pbLegacyPhones)).List(); phones.Len() > 0 {
		p.Phones = make([]int32, phones.Len())
		for i := range p.Phones {
			p.Phones[i] = int32(phones.Get(i).Int())
		}
	}
	return p
}
