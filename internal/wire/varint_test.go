package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

var uvarintCases = []struct {
	name     string
	value    uint64
	expected []byte
}{
	{"zero", 0, []byte{0x00}},
	{"one", 1, []byte{0x01}},
	{"max_1_byte", 127, []byte{0x7f}},
	{"min_2_byte", 128, []byte{0x80, 0x01}},
	{"300", 300, []byte{0xac, 0x02}},
	{"max_2_byte", 16383, []byte{0xff, 0x7f}},
	{"max_uint32", math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	{"max_uint64", math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
}

var svarintCases = []struct {
	name     string
	value    int64
	expected []byte
}{
	{"zero", 0, []byte{0x00}},
	{"minus_one", -1, []byte{0x01}},
	{"one", 1, []byte{0x02}},
	{"minus_64", -64, []byte{0x7f}},
	{"64", 64, []byte{0x80, 0x01}},
	{"max_int32", math.MaxInt32, []byte{0xfe, 0xff, 0xff, 0xff, 0x0f}},
	{"min_int32", math.MinInt32, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	{"min_int64", math.MinInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
}

func TestUvarint(t *testing.T) {
	for _, tc := range uvarintCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AppendUvarint(nil, tc.value)
			if !bytes.Equal(got, tc.expected) {
				t.Fatalf("AppendUvarint(%d) = %x, want %x", tc.value, got, tc.expected)
			}
			if size := UvarintSize(tc.value); size != len(tc.expected) {
				t.Errorf("UvarintSize(%d) = %d, want %d", tc.value, size, len(tc.expected))
			}
			v, n, err := DecodeUvarint(got)
			if err != nil {
				t.Fatalf("DecodeUvarint: %v", err)
			}
			if v != tc.value || n != len(tc.expected) {
				t.Errorf("DecodeUvarint = (%d, %d), want (%d, %d)", v, n, tc.value, len(tc.expected))
			}
		})
	}
}

func TestSvarint(t *testing.T) {
	for _, tc := range svarintCases {
		t.Run(tc.name, func(t *testing.T) {
			got := AppendSvarint(nil, tc.value)
			if !bytes.Equal(got, tc.expected) {
				t.Fatalf("AppendSvarint(%d) = %x, want %x", tc.value, got, tc.expected)
			}
			if size := SvarintSize(tc.value); size != len(tc.expected) {
				t.Errorf("SvarintSize(%d) = %d, want %d", tc.value, size, len(tc.expected))
			}
			v, n, err := DecodeSvarint(got)
			if err != nil {
				t.Fatalf("DecodeSvarint: %v", err)
			}
			if v != tc.value || n != len(tc.expected) {
				t.Errorf("DecodeSvarint = (%d, %d), want (%d, %d)", v, n, tc.value, len(tc.expected))
			}
		})
	}
}

func TestDecodeUvarintErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, ErrTruncated},
		{"truncated", []byte{0x80, 0x80}, ErrTruncated},
		{"overflow", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x02}, ErrVarintOverflow},
		{"too_long", []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x80, 0x01}, ErrVarintTooLong},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeUvarint(tc.data)
			if !errors.Is(err, tc.err) {
				t.Errorf("expected %v, got %v", tc.err, err)
			}
		})
	}
}

func TestDecodeUvarintTrailingData(t *testing.T) {
	v, n, err := DecodeUvarint([]byte{0xac, 0x02, 0xff})
	if err != nil {
		t.Fatal(err)
	}
	if v != 300 || n != 2 {
		t.Errorf("expected (300, 2), got (%d, %d)", v, n)
	}
}
