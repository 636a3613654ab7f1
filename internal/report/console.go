// Package report prints the per-step timing and size results of a run and
// an optional comparison summary.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/zarlcorp/core/pkg/zstyle"
)

// ArchiveSuffix is appended to a format name for archive results.
const ArchiveSuffix = " + zip"

// Result is the outcome of one encode step.
type Result struct {
	Format   string
	Archived bool
	Elapsed  time.Duration
	Size     int64
}

// Label is the name printed for the result.
func (r Result) Label() string {
	if r.Archived {
		return r.Format + ArchiveSuffix
	}
	return r.Format
}

// Console writes results to a terminal or any other writer.
type Console struct {
	w   io.Writer
	err error
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Err returns the first write error, if any.
func (c *Console) Err() error {
	return c.err
}

func (c *Console) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

// Begin announces the start of a run.
func (c *Console) Begin() {
	c.printf("Processing...\n\n")
}

// Result prints one line: label, elapsed time and size in kilobytes.
func (c *Console) Result(r Result) {
	c.printf("%-15s\t%s\t%s KB\n", r.Label(), FormatElapsed(r.Elapsed), FormatKB(r.Size))
}

// Break separates the plain results from the archive results.
func (c *Console) Break() {
	c.printf("\n")
}

// Done announces the end of a run.
func (c *Console) Done() {
	c.printf("\nDone\n")
}

// Summary prints the results as a table of size and time ratios against
// baseline. Plain and archive results are compared with the baseline of the
// same kind; ratios are "-" when that baseline is missing.
func (c *Console) Summary(results []Result, baseline string) {
	if len(results) == 0 {
		return
	}
	base := make(map[bool]Result, 2)
	for _, r := range results {
		if strings.EqualFold(r.Format, baseline) {
			base[r.Archived] = r
		}
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		b, ok := base[r.Archived]
		sizeRatio, timeRatio := "-", "-"
		if ok {
			sizeRatio = ratio(float64(r.Size), float64(b.Size))
			timeRatio = ratio(float64(r.Elapsed), float64(b.Elapsed))
		}
		rows = append(rows, []string{
			r.Label(),
			FormatElapsed(r.Elapsed),
			FormatKB(r.Size) + " KB",
			sizeRatio,
			timeRatio,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(zstyle.MutedText).
		Headers("format", "time", "size", "size/"+baseline, "time/"+baseline).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				s = s.Align(lipgloss.Right)
			}
			return s
		})

	c.printf("\n%s\n", zstyle.Subtitle.Render("Summary"))
	c.printf("%s\n", t.Render())
}

func ratio(v, base float64) string {
	if base <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", v/base)
}
