package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestStopwatch(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	sw := NewStopwatchWithClock(clock.now)

	if sw.Running() || sw.Elapsed() != 0 {
		t.Fatalf("expected a stopped zero stopwatch")
	}

	sw.Restart()
	clock.advance(1500 * time.Millisecond)
	if got := sw.Elapsed(); got != 1500*time.Millisecond {
		t.Errorf("expected running elapsed 1.5s, got %v", got)
	}
	clock.advance(500 * time.Millisecond)
	if got := sw.Stop(); got != 2*time.Second {
		t.Errorf("expected 2s, got %v", got)
	}

	clock.advance(time.Hour)
	if got := sw.Elapsed(); got != 2*time.Second {
		t.Errorf("expected stopped elapsed to stay 2s, got %v", got)
	}
	if got := sw.Stop(); got != 2*time.Second {
		t.Errorf("expected second Stop to return 2s, got %v", got)
	}

	sw.Restart()
	clock.advance(10 * time.Millisecond)
	if got := sw.Stop(); got != 10*time.Millisecond {
		t.Errorf("expected restart to zero the reading, got %v", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00.00"},
		{9 * time.Millisecond, "00:00:00.00"},
		{10 * time.Millisecond, "00:00:00.01"},
		{999 * time.Millisecond, "00:00:00.99"},
		{1234 * time.Millisecond, "00:00:01.23"},
		{time.Hour + 2*time.Minute + 3*time.Second + 456*time.Millisecond, "01:02:03.45"},
		{100 * time.Hour, "100:00:00.00"},
		{-time.Second, "00:00:00.00"},
	}
	for _, tc := range tests {
		if got := FormatElapsed(tc.d); got != tc.want {
			t.Errorf("FormatElapsed(%v): expected %s, got %s", tc.d, tc.want, got)
		}
	}
}

func TestFormatKB(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0"},
		{999, "0"},
		{1000, "1"},
		{123_456, "123"},
		{1_234_567, "1,234"},
		{9_876_543_210, "9,876,543"},
	}
	for _, tc := range tests {
		if got := FormatKB(tc.size); got != tc.want {
			t.Errorf("FormatKB(%d): expected %s, got %s", tc.size, tc.want, got)
		}
	}
}

func TestConsoleLines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Begin()
	c.Result(Result{Format: "Protobuf", Elapsed: 1234 * time.Millisecond, Size: 5_678_901})
	c.Break()
	c.Result(Result{Format: "XML", Archived: true, Elapsed: 61 * time.Second, Size: 42_000})
	c.Done()
	if err := c.Err(); err != nil {
		t.Fatal(err)
	}

	want := "Processing...\n\n" +
		"Protobuf       \t00:00:01.23\t5,678 KB\n" +
		"\n" +
		"XML + zip      \t00:01:01.00\t42 KB\n" +
		"\nDone\n"
	if got := buf.String(); got != want {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestConsoleSummary(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)
	c.Summary([]Result{
		{Format: "Protobuf", Elapsed: time.Second, Size: 10_000},
		{Format: "JSON", Elapsed: 3 * time.Second, Size: 25_000},
		{Format: "JSON", Archived: true, Elapsed: time.Second, Size: 5_000},
	}, "Protobuf")
	out := buf.String()

	for _, want := range []string{"Summary", "size/Protobuf", "Protobuf", "JSON", "1.00x", "2.50x", "3.00x", "JSON + zip"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q\n%s", want, out)
		}
	}

	// no archived baseline, so the archive row has no ratios
	var zipRow string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "JSON + zip") {
			zipRow = line
		}
	}
	if strings.Contains(zipRow, "x ") || !strings.Contains(zipRow, "-") {
		t.Errorf("expected archive row without ratios, got %q", zipRow)
	}
}

func TestConsoleSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Summary(nil, "Protobuf")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("closed")
}

func TestConsoleKeepsFirstError(t *testing.T) {
	w := &failingWriter{}
	c := NewConsole(w)
	c.Begin()
	c.Result(Result{Format: "JSON"})
	c.Done()
	if c.Err() == nil {
		t.Fatal("expected an error")
	}
	if w.calls != 1 {
		t.Errorf("expected writes to stop after the first error, got %d calls", w.calls)
	}
}
