// File: telemetry/stop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package telemetry

import (
	"sync"
	"sync/atomic"
)

// StopSignal is a set-once flag observed by the telemetry task.
// It is never cleared.
type StopSignal struct {
	once sync.Once
	set  atomic.Bool
	ch   chan struct{}
}

// NewStopSignal returns an unset signal.
func NewStopSignal() *StopSignal {
	return &StopSignal{ch: make(chan struct{})}
}

// Set raises the signal. It reports whether this call performed the transition.
func (s *StopSignal) Set() bool {
	fired := false
	s.once.Do(func() {
		s.set.Store(true)
		close(s.ch)
		fired = true
	})
	return fired
}

// IsSet reports whether the signal has been raised.
func (s *StopSignal) IsSet() bool {
	return s.set.Load()
}

// Done is closed when the signal is raised.
func (s *StopSignal) Done() <-chan struct{} {
	return s.ch
}
