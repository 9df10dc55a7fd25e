// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations and constants.

package api

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Strategy selects the top-level execution strategy of a run.
type Strategy string

const (
	StrategyConcurrent Strategy = "concurrent"
	StrategySequential Strategy = "sequential"
	StrategyHybrid     Strategy = "hybrid"
)

// ParseStrategy accepts the long names and the single-letter forms "c" and "s".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "concurrent", "c":
		return StrategyConcurrent, nil
	case "sequential", "s":
		return StrategySequential, nil
	case "hybrid", "h":
		return StrategyHybrid, nil
	}
	return "", NewError(ErrCodeInvalidArgument, "unknown strategy").WithContext("strategy", s)
}

// CollapsePolicy decides how many shared cores workers collapse onto when hot.
type CollapsePolicy string

const (
	CollapseSingle CollapsePolicy = "single"
	CollapseDouble CollapsePolicy = "double"
)

// ParseCollapsePolicy validates a collapse policy name.
func ParseCollapsePolicy(s string) (CollapsePolicy, error) {
	switch CollapsePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case CollapseSingle:
		return CollapseSingle, nil
	case CollapseDouble:
		return CollapseDouble, nil
	}
	return "", NewError(ErrCodeInvalidArgument, "unknown collapse policy").WithContext("collapse", s)
}

// ExecutionMode is the core-assignment policy active for the whole pool.
type ExecutionMode string

const (
	ModeConcurrent   ExecutionMode = "concurrent"
	ModeSequential   ExecutionMode = "sequential"
	ModeHybridSingle ExecutionMode = "hybrid-single"
	ModeHybridDouble ExecutionMode = "hybrid-double"
)

// CollapsedMode maps a collapse policy to the mode it produces.
func CollapsedMode(p CollapsePolicy) ExecutionMode {
	if p == CollapseDouble {
		return ModeHybridDouble
	}
	return ModeHybridSingle
}

// Aggregation reduces per-domain readings to a single temperature.
type Aggregation string

const (
	AggregateMax  Aggregation = "max"
	AggregateMean Aggregation = "mean"
)

// ParseAggregation validates an aggregation name.
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(strings.TrimSpace(s))) {
	case AggregateMax:
		return AggregateMax, nil
	case AggregateMean, "avg":
		return AggregateMean, nil
	}
	return "", NewError(ErrCodeInvalidArgument, "unknown aggregation").WithContext("aggregation", s)
}

// Apply reduces readings. It returns false when readings is empty.
func (a Aggregation) Apply(readings []float64) (float64, bool) {
	if len(readings) == 0 {
		return 0, false
	}
	switch a {
	case AggregateMean:
		sum := 0.0
		for _, r := range readings {
			sum += r
		}
		return sum / float64(len(readings)), true
	default:
		m := readings[0]
		for _, r := range readings[1:] {
			if r > m {
				m = r
			}
		}
		return m, true
	}
}

// ThermalSample is one elapsed-time/temperature observation.
type ThermalSample struct {
	Elapsed  time.Duration
	Readings []float64
}

// Value aggregates the sample's readings.
func (s ThermalSample) Value(a Aggregation) float64 {
	v, _ := a.Apply(s.Readings)
	return v
}

// CoreSet is a sorted, de-duplicated set of logical CPU indices.
type CoreSet []int

// NewCoreSet builds a normalized CoreSet.
func NewCoreSet(cores ...int) CoreSet {
	seen := make(map[int]struct{}, len(cores))
	out := make(CoreSet, 0, len(cores))
	for _, c := range cores {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// ParseCoreSet parses "2,3,4-5" style lists.
func ParseCoreSet(s string) (CoreSet, error) {
	var cores []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			a, err1 := strconv.Atoi(lo)
			b, err2 := strconv.Atoi(hi)
			if err1 != nil || err2 != nil || a > b {
				return nil, NewError(ErrCodeInvalidArgument, "bad core range").WithContext("range", part)
			}
			for c := a; c <= b; c++ {
				cores = append(cores, c)
			}
			continue
		}
		c, err := strconv.Atoi(part)
		if err != nil {
			return nil, NewError(ErrCodeInvalidArgument, "bad core index").WithContext("core", part)
		}
		cores = append(cores, c)
	}
	return NewCoreSet(cores...), nil
}

// Equal reports whether both sets hold the same cores.
func (cs CoreSet) Equal(other CoreSet) bool {
	if len(cs) != len(other) {
		return false
	}
	for i := range cs {
		if cs[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the set in taskset list form, e.g. "4,5".
func (cs CoreSet) String() string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}
