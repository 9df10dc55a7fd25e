// File: scheduler/assignment_test.go
// Author: momentics <momentics@gmail.com>

package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momentics/thermostress/api"
)

func sets(cores ...int) []api.CoreSet {
	out := make([]api.CoreSet, len(cores))
	for i, c := range cores {
		out[i] = api.NewCoreSet(c)
	}
	return out
}

func TestDistinctAssignment(t *testing.T) {
	assert.Equal(t, sets(2, 3, 4, 5), DistinctAssignment(api.NewCoreSet(2, 3, 4, 5), 4))
	assert.Equal(t, sets(0, 1), DistinctAssignment(api.NewCoreSet(0, 1, 2), 2))
}

func TestCollapseAssignment(t *testing.T) {
	cores := api.NewCoreSet(2, 3, 4, 5)
	assert.Equal(t, sets(2, 2, 2, 2), CollapseAssignment(api.CollapseSingle, cores, 4))
	assert.Equal(t, sets(2, 2, 3, 3), CollapseAssignment(api.CollapseDouble, cores, 4))
	assert.Equal(t, sets(2, 2, 3), CollapseAssignment(api.CollapseDouble, cores, 3))
	assert.Equal(t, sets(2), CollapseAssignment(api.CollapseDouble, cores, 1))
}

func TestSequentialAssignment(t *testing.T) {
	assert.Equal(t, sets(3, 3, 3), SequentialAssignment(3, 3))
}
