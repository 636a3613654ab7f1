package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/core/pkg/zfilesystem"

	"github.com/blockberries/sercompare/internal/report"
	"github.com/blockberries/sercompare/internal/sink"
	"github.com/blockberries/sercompare/pkg/cramberry"
	"github.com/blockberries/sercompare/pkg/dataset"
	"github.com/blockberries/sercompare/pkg/model"
	"github.com/blockberries/sercompare/pkg/serializer"
)

// tickClock advances 10ms on every reading.
type tickClock struct {
	t time.Time
}

func (c *tickClock) now() time.Time {
	c.t = c.t.Add(10 * time.Millisecond)
	return c.t
}

func testDataset(n int) *model.Dataset {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return dataset.New(99, dataset.WithClock(func() time.Time { return base })).Generate(model.ShapeCurrent, n)
}

func lookup(t *testing.T, names ...string) []serializer.Format {
	t.Helper()
	formats, err := serializer.Default().Select(names)
	if err != nil {
		t.Fatal(err)
	}
	return formats
}

type fixture struct {
	fs      *zfilesystem.MemFS
	sink    *sink.Sink
	out     *bytes.Buffer
	console *report.Console
}

func newFixture() *fixture {
	fs := zfilesystem.NewMemFS()
	out := &bytes.Buffer{}
	return &fixture{
		fs:      fs,
		sink:    sink.New(fs, "mem"),
		out:     out,
		console: report.NewConsole(out),
	}
}

func (fx *fixture) runner(opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = (&tickClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}).now
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(fx.sink, fx.console, log, opts)
}

func TestRunPlainAndArchive(t *testing.T) {
	fx := newFixture()
	ds := testDataset(50)
	r := fx.runner(Options{
		Formats: lookup(t, "Protobuf", "XML"),
		Archive: true,
		Level:   serializer.DefaultLevel,
		Verify:  true,
	})

	results, err := r.Run(context.Background(), ds)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}

	wantLabels := []string{"Protobuf", "XML", "Protobuf + zip", "XML + zip"}
	wantFiles := []string{"personsProto.bin", "persons.xml", "personsProto.zip", "personsXml.zip"}
	for i, res := range results {
		if res.Label() != wantLabels[i] {
			t.Errorf("result %d: expected %s, got %s", i, wantLabels[i], res.Label())
		}
		if res.Elapsed != 10*time.Millisecond {
			t.Errorf("result %d: expected 10ms, got %v", i, res.Elapsed)
		}
		size, err := fx.sink.Size(wantFiles[i])
		if err != nil {
			t.Fatal(err)
		}
		if size != res.Size {
			t.Errorf("%s: expected file size %d, got %d", wantFiles[i], res.Size, size)
		}
	}

	lines := strings.Split(fx.out.String(), "\n")
	if len(lines) != 6 || lines[2] != "" {
		t.Fatalf("expected two results, a blank line and two results, got %q", fx.out.String())
	}
	if !strings.HasPrefix(lines[0], "Protobuf       \t00:00:00.01\t") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "Protobuf + zip \t") {
		t.Errorf("unexpected archive line %q", lines[3])
	}

	data, err := fx.sink.ReadFile("personsXml.zip")
	if err != nil {
		t.Fatal(err)
	}
	rc, err := serializer.OpenEntry(data, "persons.xml")
	if err != nil {
		t.Fatalf("expected a single persons.xml entry: %v", err)
	}
	rc.Close()
}

func TestRunNoArchive(t *testing.T) {
	fx := newFixture()
	r := fx.runner(Options{Formats: lookup(t, "JSON"), Level: serializer.DefaultLevel})

	results, err := r.Run(context.Background(), testDataset(5))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Archived {
		t.Fatalf("expected one plain result, got %+v", results)
	}
	if _, err := fx.sink.ReadFile("personsJson.zip"); err == nil {
		t.Error("expected no archive file")
	}
	if strings.Count(fx.out.String(), "\n") != 1 {
		t.Errorf("expected a single line, got %q", fx.out.String())
	}
}

func TestRunAllFormatsVerify(t *testing.T) {
	fx := newFixture()
	r := fx.runner(Options{
		Formats: serializer.Default().Formats(),
		Archive: true,
		Level:   1,
		Verify:  true,
	})
	results, err := r.Run(context.Background(), testDataset(30))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 22 {
		t.Errorf("expected 22 results, got %d", len(results))
	}
}

func TestRunCancelled(t *testing.T) {
	fx := newFixture()
	r := fx.runner(Options{Formats: lookup(t, "JSON", "XML"), Archive: true, Level: 9})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := r.Run(ctx, testDataset(5))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 0 || fx.out.Len() != 0 {
		t.Errorf("expected no steps to run, got %d results", len(results))
	}
}

// cancelFormat cancels the run while encoding.
type cancelFormat struct {
	serializer.Format
	cancel context.CancelFunc
}

func (f cancelFormat) Encode(w io.Writer, ds *model.Dataset) error {
	f.cancel()
	return f.Format.Encode(w, ds)
}

func TestRunStopsBetweenSteps(t *testing.T) {
	fx := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	formats := []serializer.Format{cancelFormat{serializer.JSON(), cancel}, serializer.XML()}
	r := fx.runner(Options{Formats: formats, Archive: true, Level: 9})

	results, err := r.Run(ctx, testDataset(5))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(results) != 1 || results[0].Format != "JSON" {
		t.Errorf("expected only the JSON step, got %+v", results)
	}
	if _, err := fx.sink.ReadFile("persons.xml"); err == nil {
		t.Error("expected the XML step not to run")
	}
}

type failFormat struct {
	serializer.Format
}

func (failFormat) Encode(io.Writer, *model.Dataset) error {
	return errors.New("boom")
}

func TestRunEncodeError(t *testing.T) {
	fx := newFixture()
	r := fx.runner(Options{Formats: []serializer.Format{failFormat{serializer.CBOR()}}, Level: 9})

	_, err := r.Run(context.Background(), testDataset(5))
	if err == nil || !strings.Contains(err.Error(), "CBOR: boom") {
		t.Errorf("expected the failing format in the error, got %v", err)
	}
}

func TestRunCodecLimit(t *testing.T) {
	fx := newFixture()
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))
	tight := serializer.CramberryWithOptions(cramberry.Options{
		Limits:    cramberry.Limits{MaxStringLength: 4},
		OmitEmpty: true,
	})
	r := New(fx.sink, fx.console, log, Options{
		Formats: []serializer.Format{tight},
		Level:   9,
		Clock:   (&tickClock{t: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}).now,
	})

	_, err := r.Run(context.Background(), testDataset(5))
	if !errors.Is(err, serializer.ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "Cramberry: ") {
		t.Errorf("expected the step label in the error, got %v", err)
	}
	if !strings.Contains(logs.String(), `msg="codec limit exceeded" step=Cramberry`) {
		t.Errorf("expected a limit warning, got %q", logs.String())
	}
}

// corruptFormat writes valid output but decodes nothing.
type corruptFormat struct {
	serializer.Format
}

func (corruptFormat) Decode(io.Reader, model.Shape) (*model.Dataset, error) {
	return model.NewDataset(nil), nil
}

func TestRunVerifyDetectsMismatch(t *testing.T) {
	fx := newFixture()
	r := fx.runner(Options{Formats: []serializer.Format{corruptFormat{serializer.Gob()}}, Level: 9, Verify: true})

	_, err := r.Run(context.Background(), testDataset(5))
	if !errors.Is(err, model.ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestRunInvalidLevel(t *testing.T) {
	fx := newFixture()
	r := fx.runner(Options{Formats: lookup(t, "JSON"), Archive: true, Level: 42})
	results, err := r.Run(context.Background(), testDataset(5))
	if err == nil {
		t.Fatal("expected an error for an invalid level")
	}
	if len(results) != 1 {
		t.Errorf("expected the plain step to complete, got %d results", len(results))
	}
}
