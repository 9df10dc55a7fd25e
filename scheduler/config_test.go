// File: scheduler/config_test.go
// Author: momentics <momentics@gmail.com>

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/thermostress/api"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, api.ModeHybridSingle, cfg.Mode())
	assert.Equal(t, 2, cfg.SharedCoreIndex())
}

func TestConfig_Mode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Collapse = api.CollapseDouble
	assert.Equal(t, api.ModeHybridDouble, cfg.Mode())
	cfg.Strategy = api.StrategySequential
	assert.Equal(t, api.ModeSequential, cfg.Mode())
	cfg.Strategy = api.StrategyConcurrent
	assert.Equal(t, api.ModeConcurrent, cfg.Mode())
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(*Config){
		"no workers":          func(c *Config) { c.Workers = 0 },
		"unknown strategy":    func(c *Config) { c.Strategy = "turbo" },
		"negative core":       func(c *Config) { c.Cores = api.CoreSet{-1, 2, 3, 4} },
		"too few cores":       func(c *Config) { c.Workers = 5 },
		"inverted thresholds": func(c *Config) { c.TMin, c.TMax = 50, 40 },
		"equal thresholds":    func(c *Config) { c.TMin, c.TMax = 40, 40 },
		"double on one core": func(c *Config) {
			c.Collapse, c.Workers, c.Cores = api.CollapseDouble, 1, api.NewCoreSet(2)
		},
		"unknown collapse":    func(c *Config) { c.Collapse = "triple" },
		"unknown aggregation": func(c *Config) { c.Aggregation = "median" },
		"zero poll":           func(c *Config) { c.PollInterval = 0 },
		"negative settle":     func(c *Config) { c.SettleDelay = -1 },
		"sequential no core": func(c *Config) {
			c.Strategy, c.Cores = api.StrategySequential, nil
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), api.ErrInvalidArgument)
		})
	}
}

func TestConfig_ThresholdsOnlyMatterForHybrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Strategy = api.StrategyConcurrent
	cfg.TMin, cfg.TMax = 50, 40
	assert.NoError(t, cfg.Validate())

	cfg.Strategy = api.StrategySequential
	cfg.Cores = nil
	cfg.SharedCore = 3
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.SharedCoreIndex())
}
