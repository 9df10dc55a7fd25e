// File: scheduler/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package scheduler

import (
	"time"

	"github.com/momentics/thermostress/api"
)

// Defaults of the reference configuration.
const (
	DefaultWorkers      = 4
	DefaultTMin         = 34.2
	DefaultTMax         = 42.5
	DefaultSettleDelay  = 5 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultHistoryLimit = 1024
	SharedCoreAuto      = -1
)

// Config is the immutable per-run scheduler configuration.
type Config struct {
	Strategy api.Strategy
	Collapse api.CollapsePolicy
	Workers  int
	// Cores are the dedicated cores of the concurrent assignment; worker i
	// runs on Cores[i]. Collapse policies reuse the leading entries.
	Cores api.CoreSet
	// SharedCore hosts all workers of the sequential strategy;
	// SharedCoreAuto selects Cores[0].
	SharedCore     int
	TMin           float64
	TMax           float64
	Aggregation    api.Aggregation
	SettleDelay    time.Duration
	PollInterval   time.Duration
	SwitchCooldown time.Duration
	HistoryLimit   int
}

// DefaultConfig returns the reference hybrid configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:     api.StrategyHybrid,
		Collapse:     api.CollapseSingle,
		Workers:      DefaultWorkers,
		Cores:        api.NewCoreSet(2, 3, 4, 5),
		SharedCore:   SharedCoreAuto,
		TMin:         DefaultTMin,
		TMax:         DefaultTMax,
		Aggregation:  api.AggregateMax,
		SettleDelay:  DefaultSettleDelay,
		PollInterval: DefaultPollInterval,
		HistoryLimit: DefaultHistoryLimit,
	}
}

// Mode returns the ExecutionMode label a run of this configuration is filed
// under.
func (c Config) Mode() api.ExecutionMode {
	switch c.Strategy {
	case api.StrategySequential:
		return api.ModeSequential
	case api.StrategyHybrid:
		return api.CollapsedMode(c.Collapse)
	default:
		return api.ModeConcurrent
	}
}

// SharedCoreIndex resolves the core used by the sequential strategy.
func (c Config) SharedCoreIndex() int {
	if c.SharedCore >= 0 || len(c.Cores) == 0 {
		return c.SharedCore
	}
	return c.Cores[0]
}

// Validate rejects configurations the scheduler cannot run.
func (c Config) Validate() error {
	invalid := func(msg string) *api.Error {
		return api.NewError(api.ErrCodeInvalidArgument, msg)
	}
	if c.Workers <= 0 {
		return invalid("workers must be positive").WithContext("workers", c.Workers)
	}
	switch c.Strategy {
	case api.StrategyConcurrent, api.StrategySequential, api.StrategyHybrid:
	default:
		return invalid("unknown strategy").WithContext("strategy", string(c.Strategy))
	}
	for _, core := range c.Cores {
		if core < 0 {
			return invalid("core index must not be negative").WithContext("core", core)
		}
	}
	if c.Strategy != api.StrategySequential && len(c.Cores) < c.Workers {
		return invalid("need one distinct core per worker").
			WithContext("workers", c.Workers).
			WithContext("cores", c.Cores.String())
	}
	if c.Strategy == api.StrategySequential && c.SharedCoreIndex() < 0 {
		return invalid("sequential strategy needs a shared core")
	}
	if c.Strategy != api.StrategyHybrid {
		return nil
	}
	if _, err := NewHysteresis(c.TMin, c.TMax); err != nil {
		return err
	}
	switch c.Collapse {
	case api.CollapseSingle:
	case api.CollapseDouble:
		if len(c.Cores) < 2 {
			return invalid("double collapse needs two cores")
		}
	default:
		return invalid("unknown collapse policy").WithContext("collapse", string(c.Collapse))
	}
	switch c.Aggregation {
	case api.AggregateMax, api.AggregateMean:
	default:
		return invalid("unknown aggregation").WithContext("aggregation", string(c.Aggregation))
	}
	if c.PollInterval <= 0 {
		return invalid("poll interval must be positive").WithContext("poll", c.PollInterval.String())
	}
	if c.SettleDelay < 0 || c.SwitchCooldown < 0 {
		return invalid("delays must not be negative")
	}
	return nil
}
