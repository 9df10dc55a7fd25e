// File: facade/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Run configuration: defaults, YAML loading and validation.

package facade

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/scheduler"
	"github.com/momentics/thermostress/sensor"
	"github.com/momentics/thermostress/telemetry"
	"github.com/momentics/thermostress/workload"
)

// Launcher kinds.
const (
	LauncherProcess = "process"
	LauncherThread  = "thread"
)

// Config holds parameters immutable per run. Durations are Go duration
// strings in YAML ("500ms", "5s").
type Config struct {
	Strategy    string  `yaml:"strategy"`
	Collapse    string  `yaml:"collapse"`
	Workers     int     `yaml:"workers"`
	Cores       string  `yaml:"cores"`       // dedicated cores, "2,3,4,5" or "2-5"
	SharedCore  int     `yaml:"shared_core"` // sequential core, -1 selects the first of Cores
	TMin        float64 `yaml:"t_min"`       // restore threshold, °C
	TMax        float64 `yaml:"t_max"`       // collapse threshold, °C
	Aggregation string  `yaml:"aggregation"` // max or mean over thermal zones
	HistoryMax  int     `yaml:"history_limit"`

	SettleDelay    time.Duration `yaml:"settle"`
	PollInterval   time.Duration `yaml:"poll"`
	SwitchCooldown time.Duration `yaml:"cooldown"`

	// SchedulerCore pins the scheduler process itself; -1 leaves it unpinned.
	SchedulerCore int `yaml:"scheduler_core"`

	Workload string        `yaml:"workload"`
	Size     int           `yaml:"size"`
	Duration time.Duration `yaml:"duration"` // per-worker load time, 0 runs one pass
	Launcher string        `yaml:"launcher"`

	ThermalRoot string `yaml:"thermal_root"`
	Zones       []int  `yaml:"zones"` // empty reads every zone

	LogInterval time.Duration `yaml:"log_interval"`
	OutDir      string        `yaml:"out_dir"`
	SyncWrites  bool          `yaml:"sync_writes"` // fsync every telemetry row

	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // text or json
}

// DefaultConfig returns the reference hybrid run: four matmul workers
// loading cores 2-5 for two minutes, collapsing onto core 2 above 42.5°C and spreading back out
// below 34.2°C.
func DefaultConfig() *Config {
	return &Config{
		Strategy:      string(api.StrategyHybrid),
		Collapse:      string(api.CollapseSingle),
		Workers:       scheduler.DefaultWorkers,
		Cores:         "2,3,4,5",
		SharedCore:    scheduler.SharedCoreAuto,
		TMin:          scheduler.DefaultTMin,
		TMax:          scheduler.DefaultTMax,
		Aggregation:   string(api.AggregateMax),
		HistoryMax:    scheduler.DefaultHistoryLimit,
		SettleDelay:   scheduler.DefaultSettleDelay,
		PollInterval:  scheduler.DefaultPollInterval,
		SchedulerCore: 3,
		Workload:      "matmul",
		Size:          400,
		Duration:      workload.DefaultDuration,
		Launcher:      LauncherProcess,
		ThermalRoot:   sensor.DefaultRoot,
		LogInterval:   telemetry.DefaultInterval,
		OutDir:        ".",
		SyncWrites:    true,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys absent from the
// file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeInvalidArgument, "read config", err).WithContext("path", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, api.Wrap(api.ErrCodeInvalidArgument, "parse config", err).WithContext("path", path)
	}
	return cfg, nil
}

// SchedulerConfig converts the textual fields into a validated
// scheduler.Config.
func (c *Config) SchedulerConfig() (scheduler.Config, error) {
	strategy, err := api.ParseStrategy(c.Strategy)
	if err != nil {
		return scheduler.Config{}, err
	}
	collapse, err := api.ParseCollapsePolicy(c.Collapse)
	if err != nil {
		return scheduler.Config{}, err
	}
	agg, err := api.ParseAggregation(c.Aggregation)
	if err != nil {
		return scheduler.Config{}, err
	}
	cores, err := api.ParseCoreSet(c.Cores)
	if err != nil {
		return scheduler.Config{}, err
	}
	sc := scheduler.Config{
		Strategy:       strategy,
		Collapse:       collapse,
		Workers:        c.Workers,
		Cores:          cores,
		SharedCore:     c.SharedCore,
		TMin:           c.TMin,
		TMax:           c.TMax,
		Aggregation:    agg,
		SettleDelay:    c.SettleDelay,
		PollInterval:   c.PollInterval,
		SwitchCooldown: c.SwitchCooldown,
		HistoryLimit:   c.HistoryMax,
	}
	if err := sc.Validate(); err != nil {
		return scheduler.Config{}, err
	}
	return sc, nil
}

// Validate checks every field, including the scheduler part.
func (c *Config) Validate() error {
	if _, err := c.SchedulerConfig(); err != nil {
		return err
	}
	switch c.Launcher {
	case LauncherProcess, LauncherThread:
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown launcher").WithContext("launcher", c.Launcher)
	}
	if _, err := workload.Lookup(c.Workload); err != nil {
		return err
	}
	if c.Size <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "size must be positive").WithContext("size", c.Size)
	}
	if c.Duration < 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "duration must not be negative").WithContext("duration", c.Duration.String())
	}
	if c.LogInterval <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "log interval must be positive").WithContext("log_interval", c.LogInterval.String())
	}
	for _, z := range c.Zones {
		if z < 0 {
			return api.NewError(api.ErrCodeInvalidArgument, "thermal zone index must not be negative").WithContext("zone", z)
		}
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown log format").WithContext("log_format", c.LogFormat)
	}
	return nil
}
