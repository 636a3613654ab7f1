package serializer

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/blockberries/sercompare/pkg/cramberry"
	"github.com/blockberries/sercompare/pkg/model"
)

// Cramberry record layout. Every message, nested ones included, ends with
// the end marker; zero values are omitted.
//
//	Person:        1 id svarint, 2 transport id bytes, 3 name, 4 sequence id,
//	               5 credit cards packed, 6 age, 7 phones (one field each),
//	               8 birth date {1 seconds, 2 nanos}, 9 salary fixed64,
//	               10 is married varint
//	LegacyPerson:  1 id, 2 name, 3 address {1 value1, 2 value2, 3 value3},
//	               4 phones packed
const (
	crPersonID          = 1
	crPersonTransportID = 2
	crPersonName        = 3
	crPersonSequenceID  = 4
	crPersonCreditCards = 5
	crPersonAge         = 6
	crPersonPhones      = 7
	crPersonBirthDate   = 8
	crPersonSalary      = 9
	crPersonIsMarried   = 10

	crTimeSeconds = 1
	crTimeNanos   = 2

	crLegacyID      = 1
	crLegacyName    = 2
	crLegacyAddress = 3
	crLegacyPhones  = 4

	crAddressValue1 = 1
	crAddressValue2 = 2
	crAddressValue3 = 3
)

type cramberryFormat struct {
	base
	opts cramberry.Options
}

// Cramberry returns the compact binary record stream: a record count
// followed by one length-delimited message per record.
func Cramberry() Format {
	return CramberryWithOptions(cramberry.FastOptions)
}

// CramberryWithOptions is like Cramberry with explicit codec options.
func CramberryWithOptions(opts cramberry.Options) Format {
	return cramberryFormat{
		base: base{
			name:  "Cramberry",
			files: FileSet{Plain: "personsCramberry.bin", Archive: "personsCramberry.zip", Entry: "persons.bin"},
		},
		opts: opts,
	}
}

func (f cramberryFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	sw := cramberry.NewStreamWriterWithOptions(w, f.opts)
	sw.WriteUvarint(uint64(ds.Len()))
	if ds.Shape == model.ShapeLegacy {
		for i := range ds.Legacy {
			p := &ds.Legacy[i]
			if err := sw.WriteRecord(func(cw *cramberry.Writer) { writeCrLegacyPerson(cw, p) }); err != nil {
				return f.fail("encode", err)
			}
		}
	} else {
		for i := range ds.Persons {
			p := &ds.Persons[i]
			if err := sw.WriteRecord(func(cw *cramberry.Writer) { writeCrPerson(cw, p) }); err != nil {
				return f.fail("encode", err)
			}
		}
	}
	return f.fail("encode", sw.Close())
}

func (f cramberryFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	sr := cramberry.NewStreamReaderWithOptions(r, f.opts)
	n := sr.ReadCount()
	if err := sr.Err(); err != nil {
		return nil, f.fail("decode", err)
	}
	// the count is untrusted until the records arrive
	capHint := min(n, 1<<16)

	if shape == model.ShapeLegacy {
		persons := make([]model.LegacyPerson, 0, capHint)
		for i := 0; i < n; i++ {
			var p model.LegacyPerson
			if err := sr.ReadRecord(func(cr *cramberry.Reader) { readCrLegacyPerson(cr, &p) }); err != nil {
				return nil, f.fail("decode", fmt.Errorf("record %d: %w", i, err))
			}
			persons = append(persons, p)
		}
		if sr.More() {
			return nil, malformed(f.name, "trailing data after %d records", n)
		}
		return model.NewLegacyDataset(persons), nil
	}

	persons := make([]model.Person, 0, capHint)
	for i := 0; i < n; i++ {
		var p model.Person
		if err := sr.ReadRecord(func(cr *cramberry.Reader) { readCrPerson(cr, &p) }); err != nil {
			return nil, f.fail("decode", fmt.Errorf("record %d: %w", i, err))
		}
		persons = append(persons, p)
	}
	if sr.More() {
		return nil, malformed(f.name, "trailing data after %d records", n)
	}
	return model.NewDataset(persons), nil
}

// fail wraps a codec error, marking errors caused by the configured limits.
func (f cramberryFormat) fail(op string, err error) error {
	if cramberry.IsLimitExceeded(err) {
		err = fmt.Errorf("%w: %w", ErrLimitExceeded, err)
	}
	return newFormatError(f.name, op, err)
}

func writeCrPerson(w *cramberry.Writer, p *model.Person) {
	w.WriteInt32Field(crPersonID, p.ID)
	w.WriteBytesField(crPersonTransportID, p.TransportID[:])
	w.WriteStringField(crPersonName, p.Name)
	w.WriteInt32Field(crPersonSequenceID, p.SequenceID)
	w.WritePackedInt32Field(crPersonCreditCards, p.CreditCards)
	w.WriteInt32Field(crPersonAge, p.Age)
	for _, phone := range p.Phones {
		w.WriteTag(crPersonPhones, cramberry.WireBytes)
		w.WriteString(phone)
	}
	if !p.BirthDate.IsZero() {
		w.WriteTag(crPersonBirthDate, cramberry.WireBytes)
		cp := w.BeginMessage()
		w.WriteInt64Field(crTimeSeconds, p.BirthDate.Unix())
		w.WriteInt64Field(crTimeNanos, int64(p.BirthDate.Nanosecond()))
		w.WriteEndMarker()
		w.EndMessage(cp)
	}
	w.WriteFloat64Field(crPersonSalary, p.Salary)
	w.WriteBoolField(crPersonIsMarried, p.IsMarried)
	w.WriteEndMarker()
}

func readCrPerson(r *cramberry.Reader, p *model.Person) {
	for {
		field, wt := r.ReadTag()
		if field == 0 || r.Err() != nil {
			return
		}
		switch field {
		case crPersonID:
			p.ID = r.ReadInt32()
		case crPersonTransportID:
			raw := r.ReadBytes()
			if r.Err() != nil {
				return
			}
			id, err := uuid.FromBytes(raw)
			if err != nil {
				r.SetError(cramberry.NewFieldDecodeError("Person", field, r.Pos(), "transport id", err))
				return
			}
			p.TransportID = id
		case crPersonName:
			p.Name = r.ReadString()
		case crPersonSequenceID:
			p.SequenceID = r.ReadInt32()
		case crPersonCreditCards:
			p.CreditCards = r.ReadPackedInt32()
		case crPersonAge:
			p.Age = r.ReadInt32()
		case crPersonPhones:
			p.Phones = append(p.Phones, r.ReadString())
		case crPersonBirthDate:
			p.BirthDate = readCrTime(r)
		case crPersonSalary:
			p.Salary = r.ReadFloat64()
		case crPersonIsMarried:
			p.IsMarried = r.ReadBool()
		default:
			r.SkipValue(wt)
		}
	}
}

func readCrTime(r *cramberry.Reader) time.Time {
	end := r.BeginMessage()
	var sec, nanos int64
	for {
		field, wt := r.ReadTag()
		if field == 0 || r.Err() != nil {
			break
		}
		switch field {
		case crTimeSeconds:
			sec = r.ReadSvarint()
		case crTimeNanos:
			nanos = r.ReadSvarint()
		default:
			r.SkipValue(wt)
		}
	}
	r.EndMessage(end)
	return time.Unix(sec, nanos).UTC()
}

func writeCrLegacyPerson(w *cramberry.Writer, p *model.LegacyPerson) {
	w.WriteInt32Field(crLegacyID, p.ID)
	w.WriteStringField(crLegacyName, p.Name)
	w.WriteTag(crLegacyAddress, cramberry.WireBytes)
	cp := w.BeginMessage()
	w.WriteInt32Field(crAddressValue1, p.Address.Value1)
	w.WriteFloat64Field(crAddressValue2, p.Address.Value2)
	w.WriteBoolField(crAddressValue3, p.Address.Value3)
	w.WriteEndMarker()
	w.EndMessage(cp)
	w.WritePackedInt32Field(crLegacyPhones, p.Phones)
	w.WriteEndMarker()
}

func readCrLegacyPerson(r *cramberry.Reader, p *model.LegacyPerson) {
	for {
		field, wt := r.ReadTag()
		if field == 0 || r.Err() != nil {
			return
		}
		switch field {
		case crLegacyID:
			p.ID = r.ReadInt32()
		case crLegacyName:
			p.Name = r.ReadString()
		case crLegacyAddress:
			end := r.BeginMessage()
			for {
				af, awt := r.ReadTag()
				if af == 0 || r.Err() != nil {
					break
				}
				switch af {
				case crAddressValue1:
					p.Address.Value1 = r.ReadInt32()
				case crAddressValue2:
					p.Address.Value2 = r.ReadFloat64()
				case crAddressValue3:
					p.Address.Value3 = r.ReadBool()
				default:
					r.SkipValue(awt)
				}
			}
			r.EndMessage(end)
		case crLegacyPhones:
			p.Phones = r.ReadPackedInt32()
		default:
			r.SkipValue(wt)
		}
	}
}
