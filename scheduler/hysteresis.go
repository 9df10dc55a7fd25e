// File: scheduler/hysteresis.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Two-threshold state machine deciding when workers collapse onto shared
// cores and when they spread back out.

package scheduler

import "github.com/momentics/thermostress/api"

// Action is the affinity change requested by one control tick.
type Action int

const (
	ActionNone Action = iota
	// ActionCollapse moves workers onto the shared collapse cores.
	ActionCollapse
	// ActionRestore moves workers back to one dedicated core each.
	ActionRestore
)

func (a Action) String() string {
	switch a {
	case ActionCollapse:
		return "collapse"
	case ActionRestore:
		return "restore"
	default:
		return "none"
	}
}

// Hysteresis holds the thresholds and the applied flags. A crossing is acted
// on once; the opposite crossing re-arms it.
type Hysteresis struct {
	TMin        float64
	TMax        float64
	HotApplied  bool
	CoolApplied bool
}

// NewHysteresis validates TMin < TMax. Runs start on the distinct-core
// assignment, so the cool action counts as already applied.
func NewHysteresis(tMin, tMax float64) (Hysteresis, error) {
	if !(tMin < tMax) {
		return Hysteresis{}, api.NewError(api.ErrCodeInvalidArgument, "t_min must be below t_max").
			WithContext("t_min", tMin).
			WithContext("t_max", tMax)
	}
	return Hysteresis{TMin: tMin, TMax: tMax, CoolApplied: true}, nil
}

// Decide returns the action temp calls for without changing state.
func (h *Hysteresis) Decide(temp float64) Action {
	switch {
	case temp >= h.TMax && !h.HotApplied:
		return ActionCollapse
	case temp <= h.TMin && !h.CoolApplied:
		return ActionRestore
	default:
		return ActionNone
	}
}

// Commit moves the flags past a.
func (h *Hysteresis) Commit(a Action) {
	switch a {
	case ActionCollapse:
		h.HotApplied = true
		h.CoolApplied = false
	case ActionRestore:
		h.CoolApplied = true
		h.HotApplied = false
	}
}

// Observe decides and commits in one step.
func (h *Hysteresis) Observe(temp float64) Action {
	a := h.Decide(temp)
	h.Commit(a)
	return a
}
