// File: cmd/thermostress/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/control"
	"github.com/momentics/thermostress/facade"
)

func runCommand() *cli.Command {
	def := facade.DefaultConfig()
	return &cli.Command{
		Name:  "run",
		Usage: "run one stress test and write stress_<mode>.csv",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML file applied before flags"},
			&cli.StringFlag{Name: "strategy", Aliases: []string{"s"}, Value: def.Strategy, Usage: "concurrent, sequential or hybrid"},
			&cli.StringFlag{Name: "collapse", Value: def.Collapse, Usage: "hybrid collapse policy: single or double"},
			&cli.Float64Flag{Name: "t-min", Value: def.TMin, Usage: "restore threshold in °C"},
			&cli.Float64Flag{Name: "t-max", Value: def.TMax, Usage: "collapse threshold in °C"},
			&cli.IntFlag{Name: "size", Value: def.Size, Usage: "workload size, e.g. matrix dimension"},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Value: def.Duration, Usage: "how long each worker repeats its workload, 0 for one pass"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"n"}, Value: def.Workers, Usage: "number of workers"},
			&cli.StringFlag{Name: "cores", Value: def.Cores, Usage: "dedicated cores, one per worker"},
			&cli.IntFlag{Name: "shared-core", Value: def.SharedCore, Usage: "sequential core, -1 for the first dedicated core"},
			&cli.IntFlag{Name: "scheduler-core", Value: def.SchedulerCore, Usage: "core the scheduler itself runs on, -1 to leave unpinned"},
			&cli.StringFlag{Name: "aggregation", Value: def.Aggregation, Usage: "reduce thermal zones with max or mean"},
			&cli.DurationFlag{Name: "poll", Value: def.PollInterval, Usage: "control loop period"},
			&cli.DurationFlag{Name: "settle", Value: def.SettleDelay, Usage: "delay before thermal feedback starts"},
			&cli.DurationFlag{Name: "cooldown", Value: def.SwitchCooldown, Usage: "pause after each applied transition"},
			&cli.DurationFlag{Name: "log-interval", Value: def.LogInterval, Usage: "telemetry sampling period"},
			&cli.StringFlag{Name: "out-dir", Value: def.OutDir, Usage: "directory of the telemetry CSV"},
			&cli.IntSliceFlag{Name: "zones", Usage: "thermal zone indices, all zones when empty"},
			&cli.StringFlag{Name: "thermal-root", Value: def.ThermalRoot, Hidden: true},
			&cli.StringFlag{Name: "launcher", Value: def.Launcher, Usage: "process or thread"},
			&cli.StringFlag{Name: "workload", Aliases: []string{"w"}, Value: def.Workload, Usage: "workload name"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve /metrics and /debug/state on this address"},
			&cli.StringFlag{Name: "log-level", Value: def.LogLevel},
			&cli.StringFlag{Name: "log-format", Value: def.LogFormat, Usage: "text or json"},
		},
		Action: runAction,
	}
}

// loadConfig applies --config, then every flag given explicitly.
func loadConfig(c *cli.Context) (*facade.Config, error) {
	cfg := facade.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = facade.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	str := map[string]*string{
		"strategy":     &cfg.Strategy,
		"collapse":     &cfg.Collapse,
		"cores":        &cfg.Cores,
		"aggregation":  &cfg.Aggregation,
		"out-dir":      &cfg.OutDir,
		"thermal-root": &cfg.ThermalRoot,
		"launcher":     &cfg.Launcher,
		"workload":     &cfg.Workload,
		"metrics-addr": &cfg.MetricsAddr,
		"log-level":    &cfg.LogLevel,
		"log-format":   &cfg.LogFormat,
	}
	for name, dst := range str {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	ints := map[string]*int{
		"size":           &cfg.Size,
		"workers":        &cfg.Workers,
		"shared-core":    &cfg.SharedCore,
		"scheduler-core": &cfg.SchedulerCore,
	}
	for name, dst := range ints {
		if c.IsSet(name) {
			*dst = c.Int(name)
		}
	}
	durations := map[string]*time.Duration{
		"poll":         &cfg.PollInterval,
		"settle":       &cfg.SettleDelay,
		"cooldown":     &cfg.SwitchCooldown,
		"log-interval": &cfg.LogInterval,
		"duration":     &cfg.Duration,
	}
	for name, dst := range durations {
		if c.IsSet(name) {
			*dst = c.Duration(name)
		}
	}
	if c.IsSet("t-min") {
		cfg.TMin = c.Float64("t-min")
	}
	if c.IsSet("t-max") {
		cfg.TMax = c.Float64("t-max")
	}
	if c.IsSet("zones") {
		cfg.Zones = c.IntSlice("zones")
	}
	return cfg, nil
}

func runAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	log, err := facade.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	var metrics api.Metrics = api.NopMetrics{}
	var reg *prom.Registry
	if cfg.MetricsAddr != "" {
		reg = prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		exporter, err := control.NewMetricsExporter(control.DefaultNamespace, reg)
		if err != nil {
			return err
		}
		metrics = exporter
	}

	ts, err := facade.New(cfg, facade.Options{Log: log, Metrics: metrics})
	if err != nil {
		if errors.Is(err, api.ErrInvalidArgument) {
			return cli.Exit(err.Error(), 2)
		}
		return err
	}
	defer ts.Shutdown()

	if reg != nil {
		srv := serveMetrics(cfg.MetricsAddr, reg, ts.Probes(), log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := ts.Run(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		return cli.Exit("interrupted", 130)
	case err != nil:
		return err
	}
	log.WithFields(logrus.Fields{
		"output":      ts.OutputPath(),
		"transitions": len(res.Decisions),
		"failed":      res.Failed(),
	}).Info("done")
	return nil
}

func serveMetrics(addr string, reg *prom.Registry, probes *control.DebugProbes, log logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/debug/state", probes)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	log.WithField("addr", addr).Info("metrics server listening")
	return srv
}
