// Command sercompare generates a dataset of person records, encodes it with
// every registered serializer, plain and zipped, and prints the time and size
// of each step. Output files land in ~/Desktop/SerializersCompare unless
// -o is given.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/zarlcorp/core/pkg/zapp"

	"github.com/blockberries/sercompare/internal/config"
	"github.com/blockberries/sercompare/internal/report"
	"github.com/blockberries/sercompare/internal/runner"
	"github.com/blockberries/sercompare/internal/sink"
	"github.com/blockberries/sercompare/pkg/dataset"
	"github.com/blockberries/sercompare/pkg/serializer"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cfg := config.MustLoad(version)
	log := cfg.Logger(os.Stderr)
	slog.SetDefault(log)

	app := zapp.New(zapp.WithName("sercompare"))
	ctx, cancel := zapp.SignalContext(context.Background())

	err := run(ctx, cfg, log, os.Stdout)
	if cfg.Pause {
		pause(os.Stdin, os.Stdout)
	}
	cancel()

	if closeErr := app.Close(); closeErr != nil {
		log.Error("shutdown", "err", closeErr)
		if err == nil {
			err = closeErr
		}
	}
	if err != nil {
		log.Error("run", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) error {
	reg := serializer.Default()
	formats, err := reg.Select(cfg.Formats)
	if err != nil {
		return err
	}
	s, err := sink.Open(cfg.OutDir())
	if err != nil {
		return err
	}

	console := report.NewConsole(out)
	console.Begin()

	gen := dataset.New(cfg.Seed)
	log.Info("generating dataset",
		"records", humanize.Comma(int64(cfg.Count)),
		"shape", cfg.Shape,
		"seed", gen.Seed(),
	)
	ds := gen.Generate(cfg.Shape, cfg.Count)

	r := runner.New(s, console, log, runner.Options{
		Formats: formats,
		Archive: cfg.Archive(),
		Level:   cfg.Level,
		Verify:  cfg.Verify,
	})
	results, err := r.Run(ctx, ds)
	if err != nil {
		return err
	}

	if cfg.Summary {
		baseline, err := reg.Lookup(cfg.Baseline)
		if err != nil {
			return err
		}
		console.Summary(results, baseline.Name())
	}
	console.Done()
	return console.Err()
}

func pause(in io.Reader, out io.Writer) {
	fmt.Fprint(out, "Press Enter to exit")
	_, _ = bufio.NewReader(in).ReadString('\n')
}
