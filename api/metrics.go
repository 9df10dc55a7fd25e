// File: api/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Metrics defines the observation hooks emitted by a run.

package api

// Metrics collects run observations. Implementations must be safe for
// concurrent use and fast; they are called from the control loop and the
// telemetry task.
type Metrics interface {
	RecordTemperature(value float64)
	RecordSensorError()
	RecordTelemetryRow()
	RecordAffinityAction(action string)
	RecordPinFailure()
	RecordWorkersAlive(n int)
	RecordMode(mode ExecutionMode)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) RecordTemperature(float64)   {}
func (NopMetrics) RecordSensorError()          {}
func (NopMetrics) RecordTelemetryRow()         {}
func (NopMetrics) RecordAffinityAction(string) {}
func (NopMetrics) RecordPinFailure()           {}
func (NopMetrics) RecordWorkersAlive(int)      {}
func (NopMetrics) RecordMode(ExecutionMode)    {}
