// File: facade/thermostress.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thermostress aggregates every component of one stress run behind a single
// facade: temperature sensor, affinity controller, worker pool, telemetry
// logger, thermal scheduler and debug probes. Each collaborator can be
// replaced through Options; the defaults talk to the real host.

package facade

import (
	"context"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/momentics/thermostress/affinity"
	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/control"
	"github.com/momentics/thermostress/internal/concurrency"
	"github.com/momentics/thermostress/scheduler"
	"github.com/momentics/thermostress/sensor"
	"github.com/momentics/thermostress/telemetry"
	"github.com/momentics/thermostress/workload"
)

// Options overrides the host-facing collaborators.
type Options struct {
	Log      *logrus.Logger
	Metrics  api.Metrics
	Sampler  api.TemperatureSampler
	Affinity api.AffinityController
	Launcher concurrency.Launcher
	Sink     api.SampleSink
}

// Thermostress is a single-use run.
type Thermostress struct {
	cfg      *Config
	schedCfg scheduler.Config
	log      *logrus.Logger
	entry    logrus.FieldLogger
	metrics  api.Metrics
	probes   *control.DebugProbes

	sampler  api.TemperatureSampler
	sink     api.SampleSink
	outPath  string
	stop     *telemetry.StopSignal
	tel      *telemetry.Logger
	pool     *concurrency.Pool
	sched    *scheduler.Scheduler
	launcher concurrency.Launcher

	mu      sync.Mutex
	started bool
	closed  bool
}

var _ api.GracefulShutdown = (*Thermostress)(nil)

// New validates cfg and wires the run. The telemetry file is created (and
// truncated) here, so a second run of the same mode overwrites the first.
func New(cfg *Config, opts Options) (*Thermostress, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	schedCfg, err := cfg.SchedulerConfig()
	if err != nil {
		return nil, err
	}

	t := &Thermostress{cfg: cfg, schedCfg: schedCfg, log: opts.Log, metrics: opts.Metrics}
	if t.log == nil {
		if t.log, err = NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
			return nil, err
		}
	}
	t.entry = t.log.WithField("component", "facade")
	if t.metrics == nil {
		t.metrics = api.NopMetrics{}
	}

	t.sampler = opts.Sampler
	if t.sampler == nil {
		if t.sampler, err = sensor.NewSysfs(cfg.ThermalRoot, cfg.Zones...); err != nil {
			return nil, err
		}
	}

	t.launcher = opts.Launcher
	if t.launcher == nil {
		if t.launcher, err = newLauncher(cfg); err != nil {
			return nil, err
		}
	}
	aff := opts.Affinity
	if aff == nil {
		aff = affinity.New(t.launcher.Scope())
	}

	t.outPath = telemetry.PathFor(cfg.OutDir, schedCfg.Mode())
	t.sink = opts.Sink
	if t.sink == nil {
		if t.sink, err = telemetry.CreateCSV(t.outPath, schedCfg.Aggregation, cfg.SyncWrites); err != nil {
			return nil, err
		}
	}

	t.stop = telemetry.NewStopSignal()
	t.tel = telemetry.NewLogger(t.sampler, t.sink, t.stop, telemetry.Options{
		Interval:    cfg.LogInterval,
		Aggregation: schedCfg.Aggregation,
		Metrics:     t.metrics,
		Log:         t.log,
	})
	t.pool = concurrency.NewPool(t.launcher, aff, concurrency.Options{Metrics: t.metrics, Log: t.log})
	t.sched, err = scheduler.New(schedCfg, t.pool, t.sampler, t.tel, t.stop, scheduler.Options{
		Metrics: t.metrics,
		Log:     t.log,
	})
	if err != nil {
		t.sink.Close()
		return nil, err
	}

	t.probes = control.NewDebugProbes()
	t.registerProbes()
	return t, nil
}

func newLauncher(cfg *Config) (concurrency.Launcher, error) {
	if cfg.Launcher == LauncherThread {
		fn, err := workload.Lookup(cfg.Workload)
		if err != nil {
			return nil, err
		}
		return &concurrency.ThreadLauncher{Workload: fn, Size: cfg.Size, Duration: cfg.Duration}, nil
	}
	return &concurrency.ProcessLauncher{
		Workload: cfg.Workload,
		Size:     cfg.Size,
		Duration: cfg.Duration,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}, nil
}

func (t *Thermostress) registerProbes() {
	t.probes.RegisterDebugProbe("config.strategy", func() any { return string(t.schedCfg.Strategy) })
	t.probes.RegisterDebugProbe("config.cores", func() any { return t.schedCfg.Cores.String() })
	t.probes.RegisterDebugProbe("config.thresholds", func() any {
		return map[string]float64{"t_min": t.schedCfg.TMin, "t_max": t.schedCfg.TMax}
	})
	t.probes.RegisterDebugProbe("telemetry.path", func() any { return t.outPath })
	t.probes.RegisterDebugProbe("telemetry.rows", func() any { return t.tel.Rows() })
	t.probes.RegisterDebugProbe("scheduler.mode", func() any { return string(t.sched.Mode()) })
	t.probes.RegisterDebugProbe("scheduler.ticks", func() any { return t.sched.Ticks() })
	t.probes.RegisterDebugProbe("hysteresis", func() any {
		h := t.sched.State()
		return map[string]bool{"hot_applied": h.HotApplied, "cool_applied": h.CoolApplied}
	})
	t.probes.RegisterDebugProbe("workers.alive", func() any { return t.pool.AliveCount() })
	t.probes.RegisterDebugProbe("workers.cores", func() any {
		out := make(map[int]string)
		for _, w := range t.pool.Workers() {
			out[w.ID()] = w.Cores().String()
		}
		return out
	})
	control.RegisterPlatformProbes(t.probes)
}

// Run pins the scheduler process, executes the configured strategy and
// returns its summary. It may be called once.
func (t *Thermostress) Run(ctx context.Context) (*scheduler.Result, error) {
	t.mu.Lock()
	if t.started || t.closed {
		t.mu.Unlock()
		return nil, api.NewError(api.ErrCodeInvalidArgument, "run already started or shut down")
	}
	t.started = true
	t.mu.Unlock()

	if core := t.cfg.SchedulerCore; core >= 0 {
		if err := affinity.PinSelf(api.NewCoreSet(core)); err != nil {
			t.entry.WithError(err).WithField("core", core).Warn("could not pin scheduler process")
		} else {
			t.entry.WithField("core", core).Info("scheduler process pinned")
		}
	}
	t.entry.WithFields(logrus.Fields{
		"mode":     string(t.schedCfg.Mode()),
		"output":   t.outPath,
		"launcher": t.cfg.Launcher,
		"workload": t.cfg.Workload,
		"size":     t.cfg.Size,
		"load_for": t.cfg.Duration.String(),
	}).Info("stress run starting")

	res, err := t.sched.Run(ctx)
	t.report(res, err)
	return res, err
}

func (t *Thermostress) report(res *scheduler.Result, err error) {
	fields := logrus.Fields{}
	for k, v := range t.probes.Stats() {
		fields[k] = v
	}
	t.entry.WithFields(fields).Debug("final state")
	if res == nil {
		return
	}
	entry := t.entry.WithFields(logrus.Fields{
		"duration":    res.Duration,
		"transitions": len(res.Decisions),
		"rows":        res.TelemetryRows,
		"failed":      res.Failed(),
	})
	switch {
	case err != nil:
		entry.WithError(err).Error("stress run ended early")
	case res.TelemetryErr != nil:
		entry.WithError(res.TelemetryErr).Warn("stress run finished with incomplete telemetry")
	default:
		entry.Info("stress run finished")
	}
}

// Control exposes the debug probes.
func (t *Thermostress) Control() api.Control { return t.probes }

// Probes returns the probe registry, e.g. to serve it over HTTP.
func (t *Thermostress) Probes() *control.DebugProbes { return t.probes }

// OutputPath is the telemetry file of this run.
func (t *Thermostress) OutputPath() string { return t.outPath }

// Scheduler returns the underlying scheduler.
func (t *Thermostress) Scheduler() *scheduler.Scheduler { return t.sched }

// Shutdown releases the telemetry sink of a run that never started. After
// Run the telemetry task has already closed it.
func (t *Thermostress) Shutdown() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.started {
		return nil
	}
	return t.sink.Close()
}
