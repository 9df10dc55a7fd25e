// Package api
// Author: momentics@gmail.com
//
// CPU affinity contract used to retarget running workers.

package api

// AffinityController binds an OS process or thread to a set of CPU cores.
type AffinityController interface {
	// Pin restricts id (PID or TID) to cores. Pinning to the current set is a no-op.
	Pin(id int, cores CoreSet) error
	// Get returns the cores id may currently run on.
	Get(id int) (CoreSet, error)
}

// AffinityScope selects what an identifier passed to Pin refers to.
type AffinityScope int

const (
	// ScopeProcess pins every thread of the process with the given PID.
	ScopeProcess AffinityScope = iota
	// ScopeThread pins exactly the given thread ID.
	ScopeThread
)

func (s AffinityScope) String() string {
	if s == ScopeThread {
		return "thread"
	}
	return "process"
}
