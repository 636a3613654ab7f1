// Package benchmark compares the encode and decode cost and the encoded size
// of every registered serializer on generated person records.
package benchmark

import (
	"bytes"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/blockberries/sercompare/pkg/dataset"
	"github.com/blockberries/sercompare/pkg/model"
	"github.com/blockberries/sercompare/pkg/serializer"
)

// ============================================================================
// Test Data Construction
// ============================================================================

var baseTime = time.Date(2025, 1, 22, 0, 0, 0, 0, time.UTC)

func makeDataset(shape model.Shape, n int) *model.Dataset {
	return dataset.New(42, dataset.WithClock(func() time.Time { return baseTime })).Generate(shape, n)
}

func encode(tb testing.TB, f serializer.Format, ds *model.Dataset) []byte {
	tb.Helper()
	var buf bytes.Buffer
	if err := f.Encode(&buf, ds); err != nil {
		tb.Fatalf("%s encode: %v", f.Name(), err)
	}
	return buf.Bytes()
}

func encodeArchive(tb testing.TB, f serializer.Format, ds *model.Dataset, level int) []byte {
	tb.Helper()
	var buf bytes.Buffer
	a, err := serializer.NewArchive(&buf, level)
	if err != nil {
		tb.Fatal(err)
	}
	w, err := a.CreateEntry(f.Files().Entry, baseTime)
	if err != nil {
		tb.Fatal(err)
	}
	if err := f.Encode(w, ds); err != nil {
		tb.Fatalf("%s encode: %v", f.Name(), err)
	}
	if err := a.Close(); err != nil {
		tb.Fatal(err)
	}
	return buf.Bytes()
}

var batchSizes = []int{100, 1000}

// ============================================================================
// Benchmarks - Encode
// ============================================================================

func BenchmarkEncode(b *testing.B) {
	for _, shape := range model.Shapes {
		for _, n := range batchSizes {
			ds := makeDataset(shape, n)
			for _, f := range serializer.Default().Formats() {
				b.Run(fmt.Sprintf("%s/%s/%d", shape, f.Name(), n), func(b *testing.B) {
					b.SetBytes(int64(len(encode(b, f, ds))))
					b.ResetTimer()
					b.ReportAllocs()
					for i := 0; i < b.N; i++ {
						_ = f.Encode(io.Discard, ds)
					}
				})
			}
		}
	}
}

// ============================================================================
// Benchmarks - Decode
// ============================================================================

func BenchmarkDecode(b *testing.B) {
	for _, shape := range model.Shapes {
		for _, n := range batchSizes {
			ds := makeDataset(shape, n)
			for _, f := range serializer.Default().Formats() {
				data := encode(b, f, ds)
				b.Run(fmt.Sprintf("%s/%s/%d", shape, f.Name(), n), func(b *testing.B) {
					b.SetBytes(int64(len(data)))
					b.ResetTimer()
					b.ReportAllocs()
					for i := 0; i < b.N; i++ {
						_, _ = f.Decode(bytes.NewReader(data), shape)
					}
				})
			}
		}
	}
}

// ============================================================================
// Benchmarks - Encode Into Archive
// ============================================================================

func BenchmarkEncodeArchive(b *testing.B) {
	ds := makeDataset(model.ShapeCurrent, 1000)
	for _, level := range []int{1, serializer.DefaultLevel} {
		for _, f := range serializer.Default().Formats() {
			b.Run(fmt.Sprintf("%s/level%d", f.Name(), level), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					_ = encodeArchive(b, f, ds, level)
				}
			})
		}
	}
}

// ============================================================================
// Size Comparison Tests
// ============================================================================

func TestEncodedSizes(t *testing.T) {
	const n = 1000
	for _, shape := range model.Shapes {
		ds := makeDataset(shape, n)
		formats := serializer.Default().Formats()
		baseline := encode(t, serializer.Protobuf(), ds)
		baselineZip := encodeArchive(t, serializer.Protobuf(), ds, serializer.DefaultLevel)

		t.Logf("\n=== Encoded Size Comparison (%s, %s records) ===", shape, humanize.Comma(n))
		t.Log("| Format    | Plain      | Zipped     | Plain/PB | Zip/PB  |")
		t.Log("|-----------|------------|------------|----------|---------|")

		for _, f := range formats {
			plain := encode(t, f, ds)
			zipped := encodeArchive(t, f, ds, serializer.DefaultLevel)
			if len(plain) == 0 {
				t.Errorf("%s: empty output", f.Name())
				continue
			}

			plainRatio := float64(len(plain)) / float64(len(baseline))
			zipRatio := float64(len(zipped)) / float64(len(baselineZip))

			t.Logf("| %-9s | %10s | %10s | %7.2fx | %6.2fx |",
				f.Name(), humanize.Bytes(uint64(len(plain))), humanize.Bytes(uint64(len(zipped))), plainRatio, zipRatio)
		}
	}
}

func TestCompactFormatsBeatText(t *testing.T) {
	ds := makeDataset(model.ShapeCurrent, 500)
	text := len(encode(t, serializer.XML(), ds))
	for _, f := range []serializer.Format{serializer.Protobuf(), serializer.Cramberry(), serializer.MsgPack(), serializer.CBOR()} {
		if size := len(encode(t, f, ds)); size >= text {
			t.Errorf("%s: expected output below XML's %d bytes, got %d", f.Name(), text, size)
		}
	}
}
