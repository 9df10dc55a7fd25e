// File: telemetry/logger.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Logger is the independent telemetry task of a run: it samples temperature
// at a fixed interval and appends timestamped rows to a sink until stopped.

package telemetry

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/thermostress/api"
)

// DefaultInterval is the sampling period used when Options.Interval is zero.
const DefaultInterval = 500 * time.Millisecond

// Options tune a Logger.
type Options struct {
	Interval    time.Duration
	Aggregation api.Aggregation
	Metrics     api.Metrics
	Log         logrus.FieldLogger
}

// Logger owns the sink for the duration of the run and closes it on exit.
type Logger struct {
	sampler api.TemperatureSampler
	sink    api.SampleSink
	stop    *StopSignal
	opts    Options
	log     logrus.FieldLogger

	startOnce sync.Once
	done      chan struct{}
	rows      atomic.Int64
	err       error // written before done is closed
}

// NewLogger wires a telemetry task. It does not start sampling.
func NewLogger(sampler api.TemperatureSampler, sink api.SampleSink, stop *StopSignal, opts Options) *Logger {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Aggregation == "" {
		opts.Aggregation = api.AggregateMax
	}
	if opts.Metrics == nil {
		opts.Metrics = api.NopMetrics{}
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{
		sampler: sampler,
		sink:    sink,
		stop:    stop,
		opts:    opts,
		log:     log.WithField("component", "telemetry"),
		done:    make(chan struct{}),
	}
}

// Start launches the sampling goroutine. Only the first call has an effect.
func (l *Logger) Start(ctx context.Context) {
	l.startOnce.Do(func() {
		go l.run(ctx)
	})
}

// Wait blocks until the task has exited and returns its failure, if any.
func (l *Logger) Wait() error {
	<-l.done
	return l.err
}

// Err returns the task's failure once it has exited, nil while it runs.
func (l *Logger) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Done is closed when the task has exited.
func (l *Logger) Done() <-chan struct{} {
	return l.done
}

// Rows returns the number of rows made durable so far.
func (l *Logger) Rows() int64 {
	return l.rows.Load()
}

func (l *Logger) run(ctx context.Context) {
	defer close(l.done)
	defer l.closeSink()

	l.log.WithField("interval", l.opts.Interval).Info("telemetry started")
	start := time.Now()
	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	for {
		if l.stop.IsSet() || ctx.Err() != nil {
			break
		}
		if err := l.tick(ctx, start); err != nil {
			l.err = err
			l.log.WithError(err).Error("telemetry sink failed, thermal history is no longer recorded")
			return
		}
		select {
		case <-l.stop.Done():
		case <-ctx.Done():
		case <-ticker.C:
			continue
		}
		break
	}
	l.log.WithField("rows", l.rows.Load()).Info("telemetry finished")
}

// tick records one row. Sensor errors skip the row; sink errors are returned.
func (l *Logger) tick(ctx context.Context, start time.Time) error {
	temps, err := l.sampler.ReadTemperatures(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		l.opts.Metrics.RecordSensorError()
		l.log.WithError(err).Warn("temperature read failed, skipping row")
		return nil
	}
	if len(temps) == 0 {
		l.opts.Metrics.RecordSensorError()
		return nil
	}
	sample := api.ThermalSample{Elapsed: time.Since(start), Readings: temps}
	if l.stop.IsSet() {
		return nil
	}
	if err := l.sink.Append(sample); err != nil {
		return asWriteFailure(err)
	}
	if err := l.sink.Flush(); err != nil {
		return asWriteFailure(err)
	}
	l.rows.Add(1)
	l.opts.Metrics.RecordTelemetryRow()
	l.log.WithFields(logrus.Fields{
		"time": sample.Elapsed.Seconds(),
		"temp": sample.Value(l.opts.Aggregation),
	}).Debug("logged")
	return nil
}

func (l *Logger) closeSink() {
	if err := l.sink.Close(); err != nil && l.err == nil {
		l.err = asWriteFailure(err)
		l.log.WithError(err).Error("telemetry sink close failed")
	}
}

func asWriteFailure(err error) error {
	if errors.Is(err, api.ErrLogWriteFailure) {
		return err
	}
	return api.Wrap(api.ErrCodeLogWriteFailure, "telemetry write failed", err)
}
