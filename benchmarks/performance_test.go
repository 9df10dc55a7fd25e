// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks for thermostress components.

package benchmarks

import (
	"context"
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/momentics/thermostress/affinity"
	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/internal/concurrency"
	"github.com/momentics/thermostress/scheduler"
	"github.com/momentics/thermostress/telemetry"
	"github.com/momentics/thermostress/workload"
)

// BenchmarkMatMul measures one workload unit at the default size.
func BenchmarkMatMul(b *testing.B) {
	fn, err := workload.Lookup("matmul")
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		if err := workload.Run(context.Background(), fn, 128); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkHysteresisObserve measures one control decision.
func BenchmarkHysteresisObserve(b *testing.B) {
	h, err := scheduler.NewHysteresis(scheduler.DefaultTMin, scheduler.DefaultTMax)
	if err != nil {
		b.Fatal(err)
	}
	trace := []float64{33, 35, 40, 43, 44, 41, 33}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Observe(trace[i%len(trace)])
	}
}

// BenchmarkCSVSinkRow measures appending and flushing one telemetry row.
func BenchmarkCSVSinkRow(b *testing.B) {
	sink, err := telemetry.NewCSVSink(io.Discard, api.AggregateMax)
	if err != nil {
		b.Fatal(err)
	}
	sample := api.ThermalSample{Elapsed: 1500 * time.Millisecond, Readings: []float64{41.5, 43, 39}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := sink.Append(sample); err != nil {
			b.Fatal(err)
		}
		if err := sink.Flush(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkPinRoundTrip measures one affinity change of the calling thread.
func BenchmarkPinRoundTrip(b *testing.B) {
	if runtime.GOOS != "linux" {
		b.Skip("affinity is linux-only")
	}
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctl := affinity.New(api.ScopeThread)
	self, err := concurrency.CurrentThreadID()
	if err != nil {
		b.Fatal(err)
	}
	mask, err := ctl.Get(self)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ctl.Pin(self, mask); err != nil {
			b.Fatal(err)
		}
	}
}
