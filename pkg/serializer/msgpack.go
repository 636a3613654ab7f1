package serializer

import (
	"io"

	"github.com/tinylib/msgp/msgp"

	"github.com/blockberries/sercompare/pkg/model"
)

type msgpackFormat struct {
	base
}

// MsgPack returns a MessagePack array holding one map per record.
func MsgPack() Format {
	return msgpackFormat{base{
		name:  "MsgPack",
		files: FileSet{Plain: "persons.msgpack", Archive: "personsMsgpack.zip", Entry: "persons.msgpack"},
	}}
}

func (f msgpackFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	en := msgp.NewWriter(w)
	err := en.WriteArrayHeader(uint32(ds.Len()))
	if err != nil {
		return newFormatError(f.name, "encode", err)
	}
	if ds.Shape == model.ShapeLegacy {
		for i := range ds.Legacy {
			if err = encodeMsgLegacyPerson(en, &ds.Legacy[i]); err != nil {
				return newFormatError(f.name, "encode", msgp.WrapError(err, i))
			}
		}
	} else {
		for i := range ds.Persons {
			if err = encodeMsgPerson(en, &ds.Persons[i]); err != nil {
				return newFormatError(f.name, "encode", msgp.WrapError(err, i))
			}
		}
	}
	return newFormatError(f.name, "encode", en.Flush())
}

func (f msgpackFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	dc := msgp.NewReader(r)
	n, err := dc.ReadArrayHeader()
	if err != nil {
		return nil, newFormatError(f.name, "decode", err)
	}
	hint := capHint(n)

	if shape == model.ShapeLegacy {
		persons := make([]model.LegacyPerson, 0, hint)
		for i := uint32(0); i < n; i++ {
			var p model.LegacyPerson
			if err = decodeMsgLegacyPerson(dc, &p); err != nil {
				return nil, newFormatError(f.name, "decode", msgp.WrapError(err, i))
			}
			persons = append(persons, p)
		}
		return model.NewLegacyDataset(persons), nil
	}
	persons := make([]model.Person, 0, hint)
	for i := uint32(0); i < n; i++ {
		var p model.Person
		if err = decodeMsgPerson(dc, &p); err != nil {
			return nil, newFormatError(f.name, "decode", msgp.WrapError(err, i))
		}
		persons = append(persons, p)
	}
	return model.NewDataset(persons), nil
}

func encodeMsgPerson(en *msgp.Writer, z *model.Person) (err error) {
	// map header, size 10
	if err = en.WriteMapHeader(10); err != nil {
		return
	}
	if err = en.WriteString("id"); err != nil {
		return
	}
	if err = en.WriteInt32(z.ID); err != nil {
		return msgp.WrapError(err, "ID")
	}
	if err = en.WriteString("transportId"); err != nil {
		return
	}
	if err = en.WriteBytes(z.TransportID[:]); err != nil {
		return msgp.WrapError(err, "TransportID")
	}
	if err = en.WriteString("name"); err != nil {
		return
	}
	if err = en.WriteString(z.Name); err != nil {
		return msgp.WrapError(err, "Name")
	}
	if err = en.WriteString("sequenceId"); err != nil {
		return
	}
	if err = en.WriteInt32(z.SequenceID); err != nil {
		return msgp.WrapError(err, "SequenceID")
	}
	if err = en.WriteString("creditCards"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.CreditCards))); err != nil {
		return msgp.WrapError(err, "CreditCards")
	}
	for i := range z.CreditCards {
		if err = en.WriteInt32(z.CreditCards[i]); err != nil {
			return msgp.WrapError(err, "CreditCards", i)
		}
	}
	if err = en.WriteString("age"); err != nil {
		return
	}
	if err = en.WriteInt32(z.Age); err != nil {
		return msgp.WrapError(err, "Age")
	}
	if err = en.WriteString("phones"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Phones))); err != nil {
		return msgp.WrapError(err, "Phones")
	}
	for i := range z.Phones {
		if err = en.WriteString(z.Phones[i]); err != nil {
			return msgp.WrapError(err, "Phones", i)
		}
	}
	if err = en.WriteString("birthDate"); err != nil {
		return
	}
	if err = en.WriteTime(z.BirthDate); err != nil {
		return msgp.WrapError(err, "BirthDate")
	}
	if err = en.WriteString("salary"); err != nil {
		return
	}
	if err = en.WriteFloat64(z.Salary); err != nil {
		return msgp.WrapError(err, "Salary")
	}
	if err = en.WriteString("isMarried"); err != nil {
		return
	}
	if err = en.WriteBool(z.IsMarried); err != nil {
		return msgp.WrapError(err, "IsMarried")
	}
	return
}

func decodeMsgPerson(dc *msgp.Reader, z *model.Person) (err error) {
	var field []byte
	var zb0001 uint32
	zb0001, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for zb0001 > 0 {
		zb0001--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "id":
			z.ID, err = dc.ReadInt32()
			if err != nil {
				return msgp.WrapError(err, "ID")
			}
		case "transportId":
			err = dc.ReadExactBytes(z.TransportID[:])
			if err != nil {
				return msgp.WrapError(err, "TransportID")
			}
		case "name":
			z.Name, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Name")
			}
		case "sequenceId":
			z.SequenceID, err = dc.ReadInt32()
			if err != nil {
				return msgp.WrapError(err, "SequenceID")
			}
		case "creditCards":
			var n uint32
			n, err = dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "CreditCards")
			}
			z.CreditCards = make([]int32, 0, capHint(n))
			for i := uint32(0); i < n; i++ {
				var v int32
				v, err = dc.ReadInt32()
				if err != nil {
					return msgp.WrapError(err, "CreditCards", i)
				}
				z.CreditCards = append(z.CreditCards, v)
			}
		case "age":
			z.Age, err = dc.ReadInt32()
			if err != nil {
				return msgp.WrapError(err, "Age")
			}
		case "phones":
			var n uint32
			n, err = dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Phones")
			}
			z.Phones = make([]string, 0, capHint(n))
			for i := uint32(0); i < n; i++ {
				var v string
				v, err = dc.ReadString()
				if err != nil {
					return msgp.WrapError(err, "Phones", i)
				}
				z.Phones = append(z.Phones, v)
			}
		case "birthDate":
			z.BirthDate, err = dc.ReadTime()
			if err != nil {
				return msgp.WrapError(err, "BirthDate")
			}
		case "salary":
			z.Salary, err = dc.ReadFloat64()
			if err != nil {
				return msgp.WrapError(err, "Salary")
			}
		case "isMarried":
			z.IsMarried, err = dc.ReadBool()
			if err != nil {
				return msgp.WrapError(err, "IsMarried")
			}
		default:
			err = dc.Skip()
			if err != nil {
				return
			}
		}
	}
	return
}

func encodeMsgLegacyPerson(en *msgp.Writer, z *model.LegacyPerson) (err error) {
	// map header, size 4
	if err = en.WriteMapHeader(4); err != nil {
		return
	}
	if err = en.WriteString("id"); err != nil {
		return
	}
	if err = en.WriteInt32(z.ID); err != nil {
		return msgp.WrapError(err, "ID")
	}
	if err = en.WriteString("name"); err != nil {
		return
	}
	if err = en.WriteString(z.Name); err != nil {
		return msgp.WrapError(err, "Name")
	}
	if err = en.WriteString("address"); err != nil {
		return
	}
	// map header, size 3
	if err = en.WriteMapHeader(3); err != nil {
		return msgp.WrapError(err, "Address")
	}
	if err = en.WriteString("value1"); err != nil {
		return
	}
	if err = en.WriteInt32(z.Address.Value1); err != nil {
		return msgp.WrapError(err, "Address", "Value1")
	}
	if err = en.WriteString("value2"); err != nil {
		return
	}
	if err = en.WriteFloat64(z.Address.Value2); err != nil {
		return msgp.WrapError(err, "Address", "Value2")
	}
	if err = en.WriteString("value3"); err != nil {
		return
	}
	if err = en.WriteBool(z.Address.Value3); err != nil {
		return msgp.WrapError(err, "Address", "Value3")
	}
	if err = en.WriteString("phones"); err != nil {
		return
	}
	if err = en.WriteArrayHeader(uint32(len(z.Phones))); err != nil {
		return msgp.WrapError(err, "Phones")
	}
	for i := range z.Phones {
		if err = en.WriteInt32(z.Phones[i]); err != nil {
			return msgp.WrapError(err, "Phones", i)
		}
	}
	return
}

func decodeMsgLegacyPerson(dc *msgp.Reader, z *model.LegacyPerson) (err error) {
	var field []byte
	var zb0001 uint32
	zb0001, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for zb0001 > 0 {
		zb0001--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "id":
			z.ID, err = dc.ReadInt32()
			if err != nil {
				return msgp.WrapError(err, "ID")
			}
		case "name":
			z.Name, err = dc.ReadString()
			if err != nil {
				return msgp.WrapError(err, "Name")
			}
		case "address":
			err = decodeMsgAddress(dc, &z.Address)
			if err != nil {
				return msgp.WrapError(err, "Address")
			}
		case "phones":
			var n uint32
			n, err = dc.ReadArrayHeader()
			if err != nil {
				return msgp.WrapError(err, "Phones")
			}
			z.Phones = make([]int32, 0, capHint(n))
			for i := uint32(0); i < n; i++ {
				var v int32
				v, err = dc.ReadInt32()
				if err != nil {
					return msgp.WrapError(err, "Phones", i)
				}
				z.Phones = append(z.Phones, v)
			}
		default:
			err = dc.Skip()
			if err != nil {
				return
			}
		}
	}
	return
}

func decodeMsgAddress(dc *msgp.Reader, z *model.Address) (err error) {
	var field []byte
	var zb0001 uint32
	zb0001, err = dc.ReadMapHeader()
	if err != nil {
		return
	}
	for zb0001 > 0 {
		zb0001--
		field, err = dc.ReadMapKeyPtr()
		if err != nil {
			return
		}
		switch msgp.UnsafeString(field) {
		case "value1":
			z.Value1, err = dc.ReadInt32()
			if err != nil {
				return msgp.WrapError(err, "Value1")
			}
		case "value2":
			z.Value2, err = dc.ReadFloat64()
			if err != nil {
				return msgp.WrapError(err, "Value2")
			}
		case "value3":
			z.Value3, err = dc.ReadBool()
			if err != nil {
				return msgp.WrapError(err, "Value3")
			}
		default:
			err = dc.Skip()
			if err != nil {
				return
			}
		}
	}
	return
}

// capHint bounds the preallocation for an array header, which is untrusted
// until its elements arrive.
func capHint(n uint32) int {
	return int(min(n, 1<<16))
}
