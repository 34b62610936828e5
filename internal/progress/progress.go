// Package progress reports analysis progress to the host and lets it cancel.
package progress

import (
	"log/slog"
	"sync"
)

// Sink receives progress updates. Returning true asks the pass to stop.
// fraction is in [0,1] within the current phase.
type Sink interface {
	Report(label string, fraction float64) (cancel bool)
}

// Nop never cancels and discards updates.
type Nop struct{}

// Report implements Sink.
func (Nop) Report(string, float64) bool { return false }

// Func adapts a function to Sink.
type Func func(label string, fraction float64) bool

// Report implements Sink.
func (f Func) Report(label string, fraction float64) bool { return f(label, fraction) }

// Log writes updates to a logger at debug level, throttled to one record
// per Step of progress. It never cancels.
type Log struct {
	Logger *slog.Logger
	Step   float64 // default 0.1

	mu   sync.Mutex
	last map[string]float64
}

// NewLog returns a Log sink.
func NewLog(logger *slog.Logger) *Log {
	return &Log{Logger: logger, Step: 0.1}
}

// Report implements Sink.
func (l *Log) Report(label string, fraction float64) bool {
	if l.Logger == nil {
		return false
	}
	step := l.Step
	if step <= 0 {
		step = 0.1
	}

	l.mu.Lock()
	if l.last == nil {
		l.last = make(map[string]float64)
	}
	prev, seen := l.last[label]
	emit := !seen || fraction-prev >= step || fraction >= 1
	if emit {
		l.last[label] = fraction
	}
	l.mu.Unlock()

	if emit {
		l.Logger.Debug("progress", "phase", label, "fraction", fraction)
	}
	return false
}
