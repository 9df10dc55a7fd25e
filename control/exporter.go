// File: control/exporter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus rendition of api.Metrics.

package control

import (
	"errors"
	"fmt"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/thermostress/api"
)

// DefaultNamespace prefixes every exported series.
const DefaultNamespace = "thermostress"

var knownModes = []api.ExecutionMode{
	api.ModeConcurrent,
	api.ModeSequential,
	api.ModeHybridSingle,
	api.ModeHybridDouble,
}

// MetricsExporter adapts api.Metrics to Prometheus collectors.
type MetricsExporter struct {
	temperature     prom.Gauge
	workersAlive    prom.Gauge
	executionMode   *prom.GaugeVec
	affinityActions *prom.CounterVec
	pinFailures     prom.Counter
	sensorErrors    prom.Counter
	telemetryRows   prom.Counter
}

var _ api.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil). Collectors already registered
// under the same name are reused.
func NewMetricsExporter(namespace string, reg prom.Registerer) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	temperature := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "temperature_celsius",
		Help:      "Last aggregated temperature seen by the control loop.",
	})
	workersAlive := prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "workers_alive",
		Help:      "Number of workers still running.",
	})
	mode := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "execution_mode",
		Help:      "1 for the core-assignment mode currently applied, 0 otherwise.",
	}, []string{"mode"})
	actions := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "affinity_actions_total",
		Help:      "Affinity transitions applied to the whole pool.",
	}, []string{"action"})
	pinFailures := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "pin_failures_total",
		Help:      "Rejected per-worker affinity changes.",
	})
	sensorErrors := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "sensor_errors_total",
		Help:      "Failed temperature reads.",
	})
	rows := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "telemetry_rows_total",
		Help:      "Rows appended to the telemetry file.",
	})

	var err error
	if temperature, err = registerCollector(reg, temperature); err != nil {
		return nil, err
	}
	if workersAlive, err = registerCollector(reg, workersAlive); err != nil {
		return nil, err
	}
	if mode, err = registerCollector(reg, mode); err != nil {
		return nil, err
	}
	if actions, err = registerCollector(reg, actions); err != nil {
		return nil, err
	}
	if pinFailures, err = registerCollector(reg, pinFailures); err != nil {
		return nil, err
	}
	if sensorErrors, err = registerCollector(reg, sensorErrors); err != nil {
		return nil, err
	}
	if rows, err = registerCollector(reg, rows); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		temperature:     temperature,
		workersAlive:    workersAlive,
		executionMode:   mode,
		affinityActions: actions,
		pinFailures:     pinFailures,
		sensorErrors:    sensorErrors,
		telemetryRows:   rows,
	}, nil
}

func (m *MetricsExporter) RecordTemperature(value float64) {
	if m == nil {
		return
	}
	m.temperature.Set(value)
}

func (m *MetricsExporter) RecordSensorError() {
	if m == nil {
		return
	}
	m.sensorErrors.Inc()
}

func (m *MetricsExporter) RecordTelemetryRow() {
	if m == nil {
		return
	}
	m.telemetryRows.Inc()
}

func (m *MetricsExporter) RecordAffinityAction(action string) {
	if m == nil {
		return
	}
	if action == "" {
		action = "unknown"
	}
	m.affinityActions.WithLabelValues(action).Inc()
}

func (m *MetricsExporter) RecordPinFailure() {
	if m == nil {
		return
	}
	m.pinFailures.Inc()
}

func (m *MetricsExporter) RecordWorkersAlive(n int) {
	if m == nil {
		return
	}
	m.workersAlive.Set(float64(n))
}

// RecordMode raises the gauge of mode and lowers every other mode.
func (m *MetricsExporter) RecordMode(mode api.ExecutionMode) {
	if m == nil {
		return
	}
	for _, known := range knownModes {
		m.executionMode.WithLabelValues(string(known)).Set(0)
	}
	m.executionMode.WithLabelValues(string(mode)).Set(1)
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prom.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}
	return collector, err
}
