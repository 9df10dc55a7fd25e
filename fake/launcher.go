// File: fake/launcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/internal/concurrency"
)

// BaseID is added to the worker index to form fake PIDs.
const BaseID = 1000

// Handle is a controllable stand-in for a running workload.
type Handle struct {
	id      int
	done    chan struct{}
	once    sync.Once
	err     error
	endedAt time.Time
}

func (h *Handle) ID() int               { return h.id }
func (h *Handle) Done() <-chan struct{} { return h.done }
func (h *Handle) Err() error            { return h.err }

// Finish terminates the fake workload with err.
func (h *Handle) Finish(err error) {
	h.once.Do(func() {
		h.err = err
		h.endedAt = time.Now()
		close(h.done)
	})
}

// EndedAt returns when Finish ran.
func (h *Handle) EndedAt() time.Time {
	<-h.done
	return h.endedAt
}

// Launcher hands out Handles. With Run set, each handle finishes when Run
// returns; otherwise the test finishes handles explicitly.
type Launcher struct {
	mu      sync.Mutex
	handles []*Handle
	// Run is the simulated workload body.
	Run func(ctx context.Context, index int) error
	// FailAt makes the launch of that worker index fail.
	FailAt map[int]bool
}

var _ concurrency.Launcher = (*Launcher)(nil)

// Scope reports process-style identifiers.
func (l *Launcher) Scope() api.AffinityScope { return api.ScopeProcess }

func (l *Launcher) Launch(ctx context.Context, index int) (concurrency.Handle, error) {
	if l.FailAt[index] {
		return nil, api.Wrap(api.ErrCodeLaunchFailure, "fake launch failure", errors.New("no such binary"))
	}
	h := &Handle{id: BaseID + index, done: make(chan struct{})}
	l.mu.Lock()
	l.handles = append(l.handles, h)
	l.mu.Unlock()
	if l.Run != nil {
		go func() { h.Finish(l.Run(ctx, index)) }()
	}
	return h, nil
}

// Handles returns launched handles in launch order.
func (l *Launcher) Handles() []*Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Handle(nil), l.handles...)
}

// FinishAll terminates every launched handle cleanly.
func (l *Launcher) FinishAll() {
	for _, h := range l.Handles() {
		h.Finish(nil)
	}
}

// Sleeper returns a Run body that sleeps d.
func Sleeper(d time.Duration) func(context.Context, int) error {
	return func(ctx context.Context, _ int) error {
		select {
		case <-time.After(d):
		case <-ctx.Done():
		}
		return nil
	}
}
