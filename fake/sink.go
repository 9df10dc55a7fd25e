// File: fake/sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"errors"
	"sync"
	"time"

	"github.com/momentics/thermostress/api"
)

// ErrSinkFull is returned once a Sink's FailAfter budget is used up.
var ErrSinkFull = errors.New("fake sink: out of space")

// Sink keeps samples in memory and records when each write happened.
type Sink struct {
	mu      sync.Mutex
	samples []api.ThermalSample
	writes  []time.Time
	flushes int
	closed  bool
	// FailAfter, when positive, fails every Append beyond that many samples.
	FailAfter int
}

var _ api.SampleSink = (*Sink)(nil)

func (s *Sink) Append(sample api.ThermalSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("fake sink: closed")
	}
	if s.FailAfter > 0 && len(s.samples) >= s.FailAfter {
		return ErrSinkFull
	}
	s.samples = append(s.samples, sample)
	s.writes = append(s.writes, time.Now())
	return nil
}

func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Samples returns the appended samples.
func (s *Sink) Samples() []api.ThermalSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.ThermalSample(nil), s.samples...)
}

// WriteTimes returns the wall time of every successful Append.
func (s *Sink) WriteTimes() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.writes...)
}

// Closed reports whether Close was called.
func (s *Sink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
