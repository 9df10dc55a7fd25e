// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity of other processes and threads.
// Platform-specific implementations are located in separate files
// (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"os"
	"runtime"

	"github.com/momentics/thermostress/api"
)

// Controller implements api.AffinityController on top of the OS scheduler.
type Controller struct {
	scope api.AffinityScope
}

var _ api.AffinityController = (*Controller)(nil)

// New returns a Controller. With api.ScopeProcess every thread of the target
// process is re-pinned, which is what a multi-threaded child needs.
func New(scope api.AffinityScope) *Controller {
	return &Controller{scope: scope}
}

// Scope returns the binding scope.
func (c *Controller) Scope() api.AffinityScope {
	return c.scope
}

// Pin restricts id to cores.
func (c *Controller) Pin(id int, cores api.CoreSet) error {
	if len(cores) == 0 {
		return api.NewError(api.ErrCodeAffinityDenied, "empty core set").WithContext("id", id)
	}
	for _, core := range cores {
		if core < 0 || core >= MaxCPUs {
			return api.NewError(api.ErrCodeAffinityDenied, "core index out of range").
				WithContext("id", id).
				WithContext("core", core)
		}
	}
	if err := pinPlatform(id, cores, c.scope); err != nil {
		return api.Wrap(api.ErrCodeAffinityDenied, "set affinity failed", err).
			WithContext("id", id).
			WithContext("cores", cores.String())
	}
	return nil
}

// Get returns the cores id may run on.
func (c *Controller) Get(id int) (api.CoreSet, error) {
	cores, err := getPlatform(id)
	if err != nil {
		return nil, api.Wrap(api.ErrCodeAffinityDenied, "get affinity failed", err).WithContext("id", id)
	}
	return cores, nil
}

// PinSelf pins the calling process (all of its threads) to cores.
func PinSelf(cores api.CoreSet) error {
	return New(api.ScopeProcess).Pin(os.Getpid(), cores)
}

// NumCPUs returns the number of logical CPUs usable by this process.
func NumCPUs() int {
	return runtime.NumCPU()
}
