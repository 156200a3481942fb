// Package utils holds small helpers shared by the services and commands.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// slowThreshold is the duration above which a timed operation is logged at warn.
const slowThreshold = 10 * time.Second

// Timer measures one operation and logs its duration on Stop
type Timer struct {
	start    time.Time
	name     string
	log      zerolog.Logger
	observer func(time.Duration)
}

// NewTimer starts a timer for the named operation
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
	}
}

// Observe registers fn to receive the measured duration on Stop.
func (t *Timer) Observe(fn func(time.Duration)) *Timer {
	t.observer = fn
	return t
}

// Stop logs the elapsed time at debug, or warn when slow, and returns it.
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	t.log.Debug().
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Msg("Performance measurement")

	if duration > slowThreshold {
		t.log.Warn().
			Str("operation", t.name).
			Dur("duration", duration).
			Msg("Slow operation detected")
	}

	if t.observer != nil {
		t.observer(duration)
	}
	return duration
}

// OperationTimer provides a defer-friendly way to measure operation duration
//
//	defer utils.OperationTimer("frontier", log)()
func OperationTimer(operation string, log zerolog.Logger) func() {
	t := NewTimer(operation, log)
	return func() { t.Stop() }
}
