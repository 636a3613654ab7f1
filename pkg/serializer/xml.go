package serializer

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/blockberries/sercompare/pkg/model"
)

const (
	xmlDeclaration = `version="1.0" encoding="UTF-8" standalone="yes"`
	xmlDoctype     = `DOCTYPE Persons SYSTEM "Persons.dtd"`
	xmlCataloger   = "PersonCataloger"
	xmlCatalogInst = "out-of-print"
)

type xmlFormat struct {
	base
}

// XML returns an unindented XML document built token by token: a
// declaration, a DOCTYPE, a PersonCataloger processing instruction and a
// persons root with one person element per record.
func XML() Format {
	return xmlFormat{base{
		name:  "XML",
		files: FileSet{Plain: "persons.xml", Archive: "personsXml.zip", Entry: "persons.xml"},
	}}
}

func (f xmlFormat) Encode(w io.Writer, ds *model.Dataset) error {
	if err := checkShape(f.name, "encode", ds.Shape); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	x := &xmlWriter{enc: xml.NewEncoder(bw)}

	x.token(xml.ProcInst{Target: "xml", Inst: []byte(xmlDeclaration)})
	x.token(xml.Directive(xmlDoctype))
	x.token(xml.ProcInst{Target: xmlCataloger, Inst: []byte(xmlCatalogInst)})
	x.start("persons")
	if ds.Shape == model.ShapeLegacy {
		for i := range ds.Legacy {
			x.legacyPerson(&ds.Legacy[i])
		}
	} else {
		for i := range ds.Persons {
			x.person(&ds.Persons[i])
		}
	}
	x.end("persons")
	if x.err == nil {
		x.err = x.enc.Flush()
	}
	if x.err == nil {
		x.err = bw.Flush()
	}
	return newFormatError(f.name, "encode", x.err)
}

// xmlWriter records the first encoder error; later calls are no-ops.
type xmlWriter struct {
	enc *xml.Encoder
	err error
}

func (x *xmlWriter) token(t xml.Token) {
	if x.err == nil {
		x.err = x.enc.EncodeToken(t)
	}
}

func (x *xmlWriter) start(name string, attrs ...xml.Attr) {
	x.token(xml.StartElement{Name: xml.Name{Local: name}, Attr: attrs})
}

func (x *xmlWriter) end(name string) {
	x.token(xml.EndElement{Name: xml.Name{Local: name}})
}

func (x *xmlWriter) text(name, value string) {
	x.start(name)
	x.token(xml.CharData(value))
	x.end(name)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatInt32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}

func (x *xmlWriter) person(p *model.Person) {
	x.start("person",
		attr("id", formatInt32(p.ID)),
		attr("transportId", p.TransportID.String()),
		attr("name", p.Name),
		attr("sequenceId", formatInt32(p.SequenceID)),
		attr("age", formatInt32(p.Age)),
		attr("birthDate", p.BirthDate.Format(time.RFC3339Nano)),
		attr("salary", formatFloat(p.Salary)),
		attr("isMarried", strconv.FormatBool(p.IsMarried)),
	)
	x.start("creditCards")
	for _, c := range p.CreditCards {
		x.text("creditCard", formatInt32(c))
	}
	x.end("creditCards")
	x.start("phones")
	for _, phone := range p.Phones {
		x.text("phone", phone)
	}
	x.end("phones")
	x.end("person")
}

func (x *xmlWriter) legacyPerson(p *model.LegacyPerson) {
	x.start("person",
		attr("id", formatInt32(p.ID)),
		attr("name", p.Name),
	)
	x.start("address")
	x.text("value1", formatInt32(p.Address.Value1))
	x.text("value2", formatFloat(p.Address.Value2))
	x.text("value3", strconv.FormatBool(p.Address.Value3))
	x.end("address")
	x.start("phones")
	for _, phone := range p.Phones {
		x.text("phone", formatInt32(phone))
	}
	x.end("phones")
	x.end("person")
}

func (f xmlFormat) Decode(r io.Reader, shape model.Shape) (*model.Dataset, error) {
	if err := checkShape(f.name, "decode", shape); err != nil {
		return nil, err
	}
	d := xml.NewDecoder(bufio.NewReader(r))
	var (
		persons []model.Person
		legacy  []model.LegacyPerson
		cur     *model.Person
		curOld  *model.LegacyPerson
		root    bool
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, newFormatError(f.name, "decode", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "persons":
				root = true
			case "person":
				if shape == model.ShapeLegacy {
					curOld = &model.LegacyPerson{}
					err = parseLegacyAttrs(t.Attr, curOld)
				} else {
					cur = &model.Person{}
					err = parsePersonAttrs(t.Attr, cur)
				}
			case "creditCards", "phones", "address":
				// containers; their children arrive as separate tokens
			case "creditCard", "phone", "value1", "value2", "value3":
				var text string
				if err = d.DecodeElement(&text, &t); err == nil {
					err = xmlChild(t.Name.Local, text, cur, curOld)
				}
			default:
				err = d.Skip()
			}
			if err != nil {
				return nil, malformed(f.name, "element %s at offset %d: %v", t.Name.Local, d.InputOffset(), err)
			}
		case xml.EndElement:
			if t.Name.Local != "person" {
				continue
			}
			if cur != nil {
				persons = append(persons, *cur)
				cur = nil
			}
			if curOld != nil {
				legacy = append(legacy, *curOld)
				curOld = nil
			}
		}
	}
	if !root {
		return nil, malformed(f.name, "missing persons element")
	}
	if shape == model.ShapeLegacy {
		return model.NewLegacyDataset(legacy), nil
	}
	return model.NewDataset(persons), nil
}

func xmlChild(name, text string, cur *model.Person, old *model.LegacyPerson) error {
	switch {
	case cur != nil && name == "creditCard":
		v, err := parseInt32(text)
		cur.CreditCards = append(cur.CreditCards, v)
		return err
	case cur != nil && name == "phone":
		cur.Phones = append(cur.Phones, text)
		return nil
	case old != nil && name == "phone":
		v, err := parseInt32(text)
		old.Phones = append(old.Phones, v)
		return err
	case old != nil && name == "value1":
		v, err := parseInt32(text)
		old.Address.Value1 = v
		return err
	case old != nil && name == "value2":
		v, err := strconv.ParseFloat(text, 64)
		old.Address.Value2 = v
		return err
	case old != nil && name == "value3":
		v, err := strconv.ParseBool(text)
		old.Address.Value3 = v
		return err
	default:
		return fmt.Errorf("unexpected element %s", name)
	}
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	return int32(v), err
}

func parsePersonAttrs(attrs []xml.Attr, p *model.Person) error {
	var err error
	for _, a := range attrs {
		switch a.Name.Local {
		case "id":
			p.ID, err = parseInt32(a.Value)
		case "transportId":
			p.TransportID, err = uuid.Parse(a.Value)
		case "name":
			p.Name = a.Value
		case "sequenceId":
			p.SequenceID, err = parseInt32(a.Value)
		case "age":
			p.Age, err = parseInt32(a.Value)
		case "birthDate":
			p.BirthDate, err = time.Parse(time.RFC3339Nano, a.Value)
		case "salary":
			p.Salary, err = strconv.ParseFloat(a.Value, 64)
		case "isMarried":
			p.IsMarried, err = strconv.ParseBool(a.Value)
		}
		if err != nil {
			return fmt.Errorf("attribute %s: %w", a.Name.Local, err)
		}
	}
	return nil
}

func parseLegacyAttrs(attrs []xml.Attr, p *model.LegacyPerson) error {
	var err error
	for _, a := range attrs {
		switch a.Name.Local {
		case "id":
			p.ID, err = parseInt32(a.Value)
		case "name":
			p.Name = a.Value
		}
		if err != nil {
			return fmt.Errorf("attribute %s: %w", a.Name.Local, err)
		}
	}
	return nil
}
