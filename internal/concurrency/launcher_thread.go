// File: internal/concurrency/launcher_thread.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ThreadLauncher runs each workload on a dedicated, locked OS thread inside
// this process. The thread is never unlocked, so the runtime discards it
// together with its affinity mask when the workload returns.

package concurrency

import (
	"context"
	"runtime"
	"time"

	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/workload"
)

// ThreadLauncher starts one locked OS thread per worker.
type ThreadLauncher struct {
	Workload workload.Func
	Size     int
	// Duration the workload is repeated for; zero runs one pass.
	Duration time.Duration
}

var _ Launcher = (*ThreadLauncher)(nil)

// Scope reports that handles carry TIDs.
func (l *ThreadLauncher) Scope() api.AffinityScope { return api.ScopeThread }

// Launch starts the workload and returns once its thread ID is known.
func (l *ThreadLauncher) Launch(ctx context.Context, index int) (Handle, error) {
	if l.Workload == nil {
		return nil, api.NewError(api.ErrCodeLaunchFailure, "no workload configured").WithContext("worker", index)
	}
	fn := workload.ForDuration(l.Workload, l.Duration)
	h := &threadHandle{done: make(chan struct{})}
	ready := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer close(h.done)
		tid, err := CurrentThreadID()
		if err != nil {
			ready <- err
			return
		}
		h.tid = tid
		ready <- nil
		h.err = workload.Run(ctx, fn, l.Size)
	}()
	if err := <-ready; err != nil {
		return nil, api.Wrap(api.ErrCodeLaunchFailure, "start worker thread", err).WithContext("worker", index)
	}
	return h, nil
}

type threadHandle struct {
	tid  int
	done chan struct{}
	err  error
}

func (h *threadHandle) ID() int               { return h.tid }
func (h *threadHandle) Done() <-chan struct{} { return h.done }
func (h *threadHandle) Err() error            { return h.err }
