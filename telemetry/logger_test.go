// File: telemetry/logger_test.go
// Author: momentics <momentics@gmail.com>

package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/fake"
	"github.com/momentics/thermostress/telemetry"
)

func quietLogger() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func TestLogger_RowCountFollowsInterval(t *testing.T) {
	sink := &fake.Sink{}
	stop := telemetry.NewStopSignal()
	l := telemetry.NewLogger(fake.Constant(40), sink, stop, telemetry.Options{
		Interval: 20 * time.Millisecond,
		Log:      quietLogger(),
	})
	l.Start(context.Background())
	time.Sleep(210 * time.Millisecond)
	stop.Set()
	require.NoError(t, l.Wait())

	// 210ms / 20ms plus the row at t=0, with slack for timer jitter
	rows := len(sink.Samples())
	assert.InDelta(t, 11, rows, 4)
	assert.EqualValues(t, rows, l.Rows())
	assert.True(t, sink.Closed())
}

func TestLogger_ElapsedIsMonotonic(t *testing.T) {
	sink := &fake.Sink{}
	stop := telemetry.NewStopSignal()
	l := telemetry.NewLogger(fake.Constant(40), sink, stop, telemetry.Options{
		Interval: 5 * time.Millisecond,
		Log:      quietLogger(),
	})
	l.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	stop.Set()
	require.NoError(t, l.Wait())

	samples := sink.Samples()
	require.NotEmpty(t, samples)
	for i := 1; i < len(samples); i++ {
		assert.Greater(t, samples[i].Elapsed, samples[i-1].Elapsed)
	}
}

func TestLogger_NoWritesAfterStop(t *testing.T) {
	sink := &fake.Sink{}
	stop := telemetry.NewStopSignal()
	interval := 10 * time.Millisecond
	l := telemetry.NewLogger(fake.Constant(40), sink, stop, telemetry.Options{
		Interval: interval,
		Log:      quietLogger(),
	})
	l.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	stop.Set()
	stoppedAt := time.Now()

	select {
	case <-l.Done():
	case <-time.After(interval + 50*time.Millisecond):
		t.Fatal("telemetry did not observe the stop signal")
	}
	for _, at := range sink.WriteTimes() {
		assert.False(t, at.After(stoppedAt), "row written after stop")
	}
}

func TestLogger_StopBeforeStartWritesNothing(t *testing.T) {
	sink := &fake.Sink{}
	stop := telemetry.NewStopSignal()
	stop.Set()
	l := telemetry.NewLogger(fake.Constant(40), sink, stop, telemetry.Options{Log: quietLogger()})
	l.Start(context.Background())
	require.NoError(t, l.Wait())
	assert.Empty(t, sink.Samples())
	assert.True(t, sink.Closed())
}

func TestLogger_SensorErrorSkipsRow(t *testing.T) {
	sink := &fake.Sink{}
	stop := telemetry.NewStopSignal()
	trace := fake.NewTrace(40, 41, 42).FailAt(1, api.ErrSensorUnavailable)
	trace.OnExhausted = func() { stop.Set() }
	l := telemetry.NewLogger(trace, sink, stop, telemetry.Options{
		Interval: time.Millisecond,
		Log:      quietLogger(),
	})
	l.Start(context.Background())
	require.NoError(t, l.Wait())

	samples := sink.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, 40.0, samples[0].Value(api.AggregateMax))
	assert.Equal(t, 42.0, samples[1].Value(api.AggregateMax))
}

func TestLogger_SinkFailureEndsTask(t *testing.T) {
	sink := &fake.Sink{FailAfter: 3}
	stop := telemetry.NewStopSignal()
	l := telemetry.NewLogger(fake.Constant(40), sink, stop, telemetry.Options{
		Interval: time.Millisecond,
		Log:      quietLogger(),
	})
	l.Start(context.Background())

	err := l.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrLogWriteFailure)
	assert.True(t, errors.Is(err, fake.ErrSinkFull))
	assert.EqualValues(t, 3, l.Rows())
	assert.Same(t, err, l.Err())
	assert.False(t, stop.IsSet(), "a dead telemetry task must not stop the run")
}

func TestLogger_ExitsOnCancel(t *testing.T) {
	sink := &fake.Sink{}
	ctx, cancel := context.WithCancel(context.Background())
	l := telemetry.NewLogger(fake.Constant(40), sink, telemetry.NewStopSignal(), telemetry.Options{
		Interval: 5 * time.Millisecond,
		Log:      quietLogger(),
	})
	l.Start(ctx)
	time.Sleep(15 * time.Millisecond)
	cancel()
	require.NoError(t, l.Wait())
	assert.True(t, sink.Closed())
}
