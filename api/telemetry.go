// File: api/telemetry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sensor and sample-sink contracts consumed by the scheduler and telemetry logger.

package api

import "context"

// TemperatureSampler reads one value per monitored thermal domain, in degrees.
type TemperatureSampler interface {
	// ReadTemperatures returns at least one reading or an error wrapping
	// ErrSensorUnavailable. Callers treat failures as transient.
	ReadTemperatures(ctx context.Context) ([]float64, error)
}

// SampleSink persists a time series of thermal samples.
type SampleSink interface {
	Append(sample ThermalSample) error
	// Flush makes every appended sample durable.
	Flush() error
	Close() error
}
