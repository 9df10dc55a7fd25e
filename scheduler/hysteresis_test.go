// File: scheduler/hysteresis_test.go
// Author: momentics <momentics@gmail.com>

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/thermostress/api"
)

func TestNewHysteresis_RequiresOrderedThresholds(t *testing.T) {
	_, err := NewHysteresis(42.5, 42.5)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	_, err = NewHysteresis(50, 40)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	h, err := NewHysteresis(DefaultTMin, DefaultTMax)
	require.NoError(t, err)
	assert.True(t, h.CoolApplied)
	assert.False(t, h.HotApplied)
}

func TestHysteresis_ReferenceTrace(t *testing.T) {
	h, err := NewHysteresis(34.2, 42.5)
	require.NoError(t, err)

	var got []Action
	for _, temp := range []float64{33, 35, 40, 43, 44, 41, 33} {
		got = append(got, h.Observe(temp))
	}
	assert.Equal(t, []Action{
		ActionNone, ActionNone, ActionNone, ActionCollapse, ActionNone, ActionNone, ActionRestore,
	}, got)
}

func TestHysteresis_ThresholdsAreInclusive(t *testing.T) {
	h, _ := NewHysteresis(34.2, 42.5)
	assert.Equal(t, ActionCollapse, h.Observe(42.5))
	assert.Equal(t, ActionRestore, h.Observe(34.2))
}

func TestHysteresis_FlagsNeverBothSet(t *testing.T) {
	h, _ := NewHysteresis(30, 40)
	for _, temp := range []float64{45, 20, 35, 41, 41, 29, 50, 10} {
		h.Observe(temp)
		assert.False(t, h.HotApplied && h.CoolApplied)
	}
}

func TestHysteresis_DecideDoesNotCommit(t *testing.T) {
	h, _ := NewHysteresis(30, 40)
	assert.Equal(t, ActionCollapse, h.Decide(45))
	assert.Equal(t, ActionCollapse, h.Decide(45))
	h.Commit(ActionCollapse)
	assert.Equal(t, ActionNone, h.Decide(45))
	h.Commit(ActionNone)
	assert.True(t, h.HotApplied)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "none", ActionNone.String())
	assert.Equal(t, "collapse", ActionCollapse.String())
	assert.Equal(t, "restore", ActionRestore.String())
}
