// Package runner drives one comparison run: every selected format encodes
// the dataset once plain and once into a zip archive, and each step is
// timed, reported and written out.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/blockberries/sercompare/internal/report"
	"github.com/blockberries/sercompare/internal/sink"
	"github.com/blockberries/sercompare/pkg/model"
	"github.com/blockberries/sercompare/pkg/serializer"
)

// ErrSizeMismatch indicates a written file differs in length from the
// reported size.
var ErrSizeMismatch = errors.New("runner: written size differs from reported size")

// Options configures a Runner.
type Options struct {
	// Formats to run, in order.
	Formats []serializer.Format
	// Archive enables the zip pass after the plain pass.
	Archive bool
	// Level is the deflate level of the zip pass.
	Level int
	// Verify decodes every written file and compares it with the dataset.
	Verify bool
	// Clock drives the stopwatch and archive timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Runner executes the encode steps of a run.
type Runner struct {
	opts    Options
	sink    *sink.Sink
	console *report.Console
	log     *slog.Logger
	watch   *report.Stopwatch
}

// New returns a Runner writing files to s and results to console.
func New(s *sink.Sink, console *report.Console, log *slog.Logger, opts Options) *Runner {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		opts:    opts,
		sink:    s,
		console: console,
		log:     log,
		watch:   report.NewStopwatchWithClock(opts.Clock),
	}
}

// Run encodes ds with every format, plain first, then archived. The context
// is checked between steps; the first failing step ends the run. Results of
// the completed steps are returned either way.
func (r *Runner) Run(ctx context.Context, ds *model.Dataset) ([]report.Result, error) {
	results := make([]report.Result, 0, 2*len(r.opts.Formats))

	for _, f := range r.opts.Formats {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.plain(f, ds)
		if err != nil {
			return results, r.fail(f.Name(), err)
		}
		results = append(results, res)
	}

	if r.opts.Archive {
		r.console.Break()
		for _, f := range r.opts.Formats {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			res, err := r.archive(f, ds)
			if err != nil {
				return results, r.fail(f.Name()+report.ArchiveSuffix, err)
			}
			results = append(results, res)
		}
	}

	if err := r.console.Err(); err != nil {
		return results, fmt.Errorf("console: %w", err)
	}
	r.log.Info("run complete", "steps", len(results), "dir", r.sink.Dir())
	return results, nil
}

func (r *Runner) fail(label string, err error) error {
	if errors.Is(err, serializer.ErrLimitExceeded) {
		r.log.Warn("codec limit exceeded", "step", label, "err", err)
	}
	return fmt.Errorf("%s: %w", label, err)
}

func (r *Runner) plain(f serializer.Format, ds *model.Dataset) (report.Result, error) {
	var buf bytes.Buffer

	r.watch.Restart()
	err := f.Encode(&buf, ds)
	elapsed := r.watch.Stop()
	if err != nil {
		return report.Result{}, err
	}

	res := report.Result{Format: f.Name(), Elapsed: elapsed, Size: int64(buf.Len())}
	return res, r.finish(f, ds, res, f.Files().Plain, buf.Bytes())
}

func (r *Runner) archive(f serializer.Format, ds *model.Dataset) (report.Result, error) {
	var buf bytes.Buffer
	files := f.Files()
	modified := r.opts.Clock()

	r.watch.Restart()
	err := r.encodeArchive(&buf, f, files.Entry, modified, ds)
	elapsed := r.watch.Stop()
	if err != nil {
		return report.Result{}, err
	}

	res := report.Result{Format: f.Name(), Archived: true, Elapsed: elapsed, Size: int64(buf.Len())}
	return res, r.finish(f, ds, res, files.Archive, buf.Bytes())
}

func (r *Runner) encodeArchive(w io.Writer, f serializer.Format, entry string, modified time.Time, ds *model.Dataset) error {
	a, err := serializer.NewArchive(w, r.opts.Level)
	if err != nil {
		return err
	}
	ew, err := a.CreateEntry(entry, modified)
	if err != nil {
		return err
	}
	if err := f.Encode(ew, ds); err != nil {
		return err
	}
	return a.Close()
}

// finish reports a completed step, writes its file and optionally
// verifies it.
func (r *Runner) finish(f serializer.Format, ds *model.Dataset, res report.Result, name string, data []byte) error {
	r.console.Result(res)
	r.log.Debug("encoded",
		"format", res.Label(),
		"size", humanize.Bytes(uint64(res.Size)),
		"elapsed", res.Elapsed,
	)

	if err := r.sink.Write(name, data); err != nil {
		return err
	}
	if !r.opts.Verify {
		return nil
	}
	if err := r.verify(f, ds, res, name); err != nil {
		return fmt.Errorf("verify %s: %w", name, err)
	}
	r.log.Info("verified", "file", r.sink.Path(name), "records", humanize.Comma(int64(ds.Len())))
	return nil
}

// verify reads name back, checks its length and decodes it.
func (r *Runner) verify(f serializer.Format, ds *model.Dataset, res report.Result, name string) error {
	data, err := r.sink.ReadFile(name)
	if err != nil {
		return err
	}
	if int64(len(data)) != res.Size {
		return fmt.Errorf("%w: reported %d, wrote %d", ErrSizeMismatch, res.Size, len(data))
	}

	var src io.Reader = bytes.NewReader(data)
	if res.Archived {
		rc, err := serializer.OpenEntry(data, f.Files().Entry)
		if err != nil {
			return err
		}
		defer rc.Close()
		src = rc
	}

	got, err := f.Decode(src, ds.Shape)
	if err != nil {
		return err
	}
	return ds.Compare(got)
}
