// File: workload/workload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Named registry of CPU-bound kernels executed by workers. The scheduler never
// looks inside a workload; it only starts, watches and retargets it.

package workload

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/momentics/thermostress/api"
)

// DefaultDuration is how long a worker keeps repeating its kernel by default.
// It outlasts the hybrid settle delay so the control loop gets to act.
const DefaultDuration = 2 * time.Minute

// Func is one unit of compute. size is forwarded opaquely from the CLI.
type Func func(ctx context.Context, size int) error

var (
	mu       sync.RWMutex
	registry = map[string]Func{}
)

// Register adds or replaces a workload under name.
func Register(name string, fn Func) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = fn
}

// Lookup returns the workload registered under name.
func Lookup(name string) (Func, error) {
	mu.RLock()
	defer mu.RUnlock()
	fn, ok := registry[name]
	if !ok {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "unknown workload").WithContext("workload", name)
	}
	return fn, nil
}

// Names lists registered workloads in lexical order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes fn, turning a panic into a workload failure.
func Run(ctx context.Context, fn Func, size int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = api.Wrap(api.ErrCodeWorkloadFailure, "workload panicked", fmt.Errorf("%v", r))
		}
	}()
	if err := fn(ctx, size); err != nil {
		return api.Wrap(api.ErrCodeWorkloadFailure, "workload returned error", err)
	}
	return nil
}

// ForDuration repeats fn until d has elapsed. The last pass always runs to
// completion. d <= 0 returns fn unchanged, a single pass.
func ForDuration(fn Func, d time.Duration) Func {
	if d <= 0 {
		return fn
	}
	return func(ctx context.Context, size int) error {
		deadline := time.Now().Add(d)
		for {
			if err := fn(ctx, size); err != nil {
				return err
			}
			if !time.Now().Before(deadline) {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}
