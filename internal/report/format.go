package report

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatElapsed renders d as HH:MM:SS.hh. Hundredths are truncated, not
// rounded, and negative durations render as zero.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%02d", int64(h), int64(m), int64(s), int64(d/(10*time.Millisecond)))
}

// FormatKB renders a byte count as whole kilobytes (1000 bytes) with
// thousands grouping.
func FormatKB(size int64) string {
	return printer.Sprintf("%d", size/1000)
}
