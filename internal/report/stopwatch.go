package report

import "time"

// Stopwatch measures one step at a time. A single Stopwatch is reused
// across every step of a run.
type Stopwatch struct {
	now     func() time.Time
	start   time.Time
	elapsed time.Duration
	running bool
}

// NewStopwatch returns a stopped Stopwatch reading the wall clock.
func NewStopwatch() *Stopwatch {
	return NewStopwatchWithClock(time.Now)
}

// NewStopwatchWithClock returns a stopped Stopwatch reading now.
func NewStopwatchWithClock(now func() time.Time) *Stopwatch {
	return &Stopwatch{now: now}
}

// Restart zeroes the elapsed time and starts measuring.
func (s *Stopwatch) Restart() {
	s.elapsed = 0
	s.start = s.now()
	s.running = true
}

// Stop stops measuring and returns the elapsed time. Stopping a stopped
// Stopwatch returns the previous reading.
func (s *Stopwatch) Stop() time.Duration {
	if s.running {
		s.elapsed = s.now().Sub(s.start)
		s.running = false
	}
	return s.elapsed
}

// Elapsed returns the time measured so far.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.running {
		return s.now().Sub(s.start)
	}
	return s.elapsed
}

// Running reports whether the Stopwatch is measuring.
func (s *Stopwatch) Running() bool {
	return s.running
}
