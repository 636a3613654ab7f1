package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blockberries/sercompare/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Parse([]string{"-o", dir, "-n", "25", "-f", "cbor", "-f", "msgpack", "--summary", "--baseline", "cbor"}, "test")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := run(context.Background(), cfg, discardLogger(), &out); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"persons.cbor", "persons.msgpack", "personsCbor.zip", "personsMsgpack.zip"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	for _, want := range []string{"Processing...", "CBOR           \t", "MsgPack + zip  \t", "size/CBOR", "Done"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected output to contain %q\n%s", want, out.String())
		}
	}
}

func TestRunCancelled(t *testing.T) {
	cfg, err := config.Parse([]string{"-o", t.TempDir(), "-n", "5"}, "test")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := run(ctx, cfg, discardLogger(), &out); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if strings.Contains(out.String(), "Done") {
		t.Error("expected a cancelled run not to finish")
	}
}

func TestPause(t *testing.T) {
	var out bytes.Buffer
	pause(strings.NewReader("\n"), &out)
	if out.String() != "Press Enter to exit" {
		t.Errorf("unexpected prompt %q", out.String())
	}
}
