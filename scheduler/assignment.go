// File: scheduler/assignment.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package scheduler

import "github.com/momentics/thermostress/api"

// DistinctAssignment gives worker i the dedicated core cores[i].
func DistinctAssignment(cores api.CoreSet, n int) []api.CoreSet {
	out := make([]api.CoreSet, n)
	for i := 0; i < n; i++ {
		out[i] = api.NewCoreSet(cores[i%len(cores)])
	}
	return out
}

// CollapseAssignment maps workers onto the shared cores of policy: single puts
// everyone on cores[0]; double splits the workers in halves over cores[0] and
// cores[1].
func CollapseAssignment(policy api.CollapsePolicy, cores api.CoreSet, n int) []api.CoreSet {
	out := make([]api.CoreSet, n)
	for i := 0; i < n; i++ {
		if policy == api.CollapseDouble && len(cores) > 1 {
			out[i] = api.NewCoreSet(cores[i*2/n])
			continue
		}
		out[i] = api.NewCoreSet(cores[0])
	}
	return out
}

// SequentialAssignment pins every worker to the same single core.
func SequentialAssignment(core int, n int) []api.CoreSet {
	out := make([]api.CoreSet, n)
	for i := range out {
		out[i] = api.NewCoreSet(core)
	}
	return out
}
