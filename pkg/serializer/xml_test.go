package serializer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/blockberries/sercompare/pkg/model"
)

func encodeXML(t *testing.T, ds *model.Dataset) string {
	t.Helper()
	var buf bytes.Buffer
	if err := XML().Encode(&buf, ds); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestXMLPrologue(t *testing.T) {
	out := encodeXML(t, testDataset(model.ShapeCurrent, 2))
	prologue := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<!DOCTYPE Persons SYSTEM "Persons.dtd">` +
		`<?PersonCataloger out-of-print?>` +
		`<persons>`
	if !strings.HasPrefix(out, prologue) {
		t.Errorf("expected prologue %q, got %q", prologue, out[:min(len(out), len(prologue))])
	}
	if !strings.HasSuffix(out, "</persons>") {
		t.Errorf("expected document to end with </persons>")
	}
	if strings.Contains(out, "\n") {
		t.Error("expected unindented output")
	}
}

func TestXMLWellFormed(t *testing.T) {
	for _, shape := range model.Shapes {
		t.Run(shape.String(), func(t *testing.T) {
			out := encodeXML(t, testDataset(shape, 25))
			d := xml.NewDecoder(strings.NewReader(out))
			depth, persons := 0, 0
			for {
				tok, err := d.Token()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					t.Fatalf("document is not well-formed: %v", err)
				}
				switch el := tok.(type) {
				case xml.StartElement:
					depth++
					if el.Name.Local == "person" {
						persons++
					}
				case xml.EndElement:
					depth--
				}
			}
			if depth != 0 {
				t.Errorf("unbalanced elements, depth %d", depth)
			}
			if persons != 25 {
				t.Errorf("expected 25 person elements, got %d", persons)
			}
		})
	}
}

func TestXMLCurrentLayout(t *testing.T) {
	ds := edgePersons()
	ds.Persons = ds.Persons[1:]
	out := encodeXML(t, ds)

	p := ds.Persons[0]
	for _, want := range []string{
		`<person id="-2147483648" transportId="` + p.TransportID.String() + `"`,
		`name="Quote &#34; &amp; &lt;tag&gt; &#39;x&#39; ünïcode"`,
		`sequenceId="2147483647"`,
		`age="-5"`,
		`birthDate="1969-12-31T23:59:59.999Z"`,
		`salary="-1234.5678"`,
		`isMarried="true"`,
		`<creditCards><creditCard>-1</creditCard><creditCard>0</creditCard><creditCard>2147483647</creditCard></creditCards>`,
		`<phones><phone></phone><phone>+1 555 0100</phone></phones></person>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestXMLLegacyLayout(t *testing.T) {
	ds := model.NewLegacyDataset([]model.LegacyPerson{
		{ID: 3, Name: "Person 3 name", Address: model.Address{Value1: 9, Value2: 0.125, Value3: true}, Phones: []int32{1, 2, 3}},
	})
	out := encodeXML(t, ds)
	want := `<persons><person id="3" name="Person 3 name">` +
		`<address><value1>9</value1><value2>0.125</value2><value3>true</value3></address>` +
		`<phones><phone>1</phone><phone>2</phone><phone>3</phone></phones>` +
		`</person></persons>`
	if !strings.HasSuffix(out, want) {
		t.Errorf("expected body %q, got %q", want, out)
	}
}

func TestXMLDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no_root", `<?xml version="1.0"?><people></people>`},
		{"bad_id", `<persons><person id="x"></person></persons>`},
		{"bad_card", `<persons><person id="1"><creditCards><creditCard>abc</creditCard></creditCards></person></persons>`},
		{"truncated", `<persons><person id="1">`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := XML().Decode(strings.NewReader(tc.doc), model.ShapeCurrent)
			if err == nil {
				t.Fatal("expected an error")
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("expected FormatError, got %T", err)
			}
		})
	}
}

func TestXMLDecodeSkipsUnknownElements(t *testing.T) {
	doc := `<persons><person id="4" name="n"><nickname><x/></nickname><phones><phone>7</phone></phones></person></persons>`
	ds, err := XML().Decode(strings.NewReader(doc), model.ShapeCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Len() != 1 || ds.Persons[0].ID != 4 || len(ds.Persons[0].Phones) != 1 {
		t.Errorf("unexpected result %+v", ds.Persons)
	}
}
