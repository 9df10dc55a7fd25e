// File: fake/sampler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"context"
	"sync"
	"time"

	"github.com/momentics/thermostress/api"
)

// Trace replays a scripted temperature sequence, one entry per call. Once the
// script is used up it keeps returning the last entry; OnExhausted runs on the
// first such call, before it returns.
type Trace struct {
	mu          sync.Mutex
	values      [][]float64
	errs        map[int]error
	next        int
	calls       int
	OnExhausted func()
}

var _ api.TemperatureSampler = (*Trace)(nil)

// NewTrace scripts a single-domain sensor.
func NewTrace(values ...float64) *Trace {
	multi := make([][]float64, len(values))
	for i, v := range values {
		multi[i] = []float64{v}
	}
	return NewMultiTrace(multi...)
}

// NewMultiTrace scripts a sensor with several thermal domains per reading.
func NewMultiTrace(values ...[]float64) *Trace {
	return &Trace{values: values, errs: make(map[int]error)}
}

// FailAt makes the call with the given index return err instead of a value.
// The failed call still consumes its trace entry.
func (t *Trace) FailAt(call int, err error) *Trace {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs[call] = err
	return t
}

func (t *Trace) ReadTemperatures(ctx context.Context) ([]float64, error) {
	t.mu.Lock()
	call := t.calls
	t.calls++
	idx := t.next
	if t.next < len(t.values) {
		t.next++
	}
	var hook func()
	if idx >= len(t.values) && t.OnExhausted != nil {
		hook, t.OnExhausted = t.OnExhausted, nil
	}
	err := t.errs[call]
	t.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	if len(t.values) == 0 {
		return nil, api.NewError(api.ErrCodeSensorUnavailable, "empty trace")
	}
	if idx >= len(t.values) {
		idx = len(t.values) - 1
	}
	return append([]float64(nil), t.values[idx]...), nil
}

// Calls returns how many readings were requested.
func (t *Trace) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Constant is a sensor that always reports the same value.
type Constant float64

func (c Constant) ReadTemperatures(context.Context) ([]float64, error) {
	return []float64{float64(c)}, nil
}

// Step is one phase of a Schedule: Value holds from After onwards.
type Step struct {
	After time.Duration
	Value float64
}

// Schedule reports temperature as a function of time since its first read,
// so several readers sharing it see the same trace. OnEnd runs once, on the
// first read at or after End.
type Schedule struct {
	mu    sync.Mutex
	steps []Step
	end   time.Duration
	start time.Time
	OnEnd func()
}

var _ api.TemperatureSampler = (*Schedule)(nil)

// NewSchedule builds a schedule; steps must be ordered by After.
func NewSchedule(end time.Duration, steps ...Step) *Schedule {
	return &Schedule{steps: steps, end: end}
}

func (s *Schedule) ReadTemperatures(context.Context) ([]float64, error) {
	s.mu.Lock()
	if s.start.IsZero() {
		s.start = time.Now()
	}
	elapsed := time.Since(s.start)
	var hook func()
	if elapsed >= s.end && s.OnEnd != nil {
		hook, s.OnEnd = s.OnEnd, nil
	}
	if len(s.steps) == 0 {
		s.mu.Unlock()
		return nil, api.NewError(api.ErrCodeSensorUnavailable, "empty schedule")
	}
	value := s.steps[0].Value
	for _, st := range s.steps {
		if st.After > elapsed {
			break
		}
		value = st.Value
	}
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return []float64{value}, nil
}
