// File: internal/concurrency/worker.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"sync"
	"time"

	"github.com/momentics/thermostress/api"
)

// Handle is what a Launcher returns for one running workload.
type Handle interface {
	// ID is the OS identifier used for affinity (PID or TID).
	ID() int
	// Done is closed when the workload has terminated.
	Done() <-chan struct{}
	// Err reports the workload failure. Valid once Done is closed.
	Err() error
}

// Worker is one running instance of the workload.
type Worker struct {
	index     int
	handle    Handle
	startedAt time.Time

	mu    sync.Mutex
	cores api.CoreSet

	joinOnce sync.Once
	joinErr  error
	joinedAt time.Time
}

// Index is the worker's position in the pool.
func (w *Worker) Index() int { return w.index }

// ID is the PID or TID of the worker.
func (w *Worker) ID() int { return w.handle.ID() }

// StartedAt returns the launch time.
func (w *Worker) StartedAt() time.Time { return w.startedAt }

// Cores returns the last successfully applied core assignment.
func (w *Worker) Cores() api.CoreSet {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cores
}

func (w *Worker) setCores(cores api.CoreSet) {
	w.mu.Lock()
	w.cores = cores
	w.mu.Unlock()
}

// IsAlive reports, without blocking, whether the workload is still running.
func (w *Worker) IsAlive() bool {
	select {
	case <-w.handle.Done():
		return false
	default:
		return true
	}
}

// Done is closed when the workload terminates.
func (w *Worker) Done() <-chan struct{} {
	return w.handle.Done()
}

// Join blocks until the workload terminates and returns its failure, if any.
// Repeated calls return the same result.
func (w *Worker) Join() error {
	<-w.handle.Done()
	w.joinOnce.Do(func() {
		w.joinErr = w.handle.Err()
		w.mu.Lock()
		w.joinedAt = time.Now()
		w.mu.Unlock()
	})
	return w.joinErr
}

// JoinedAt returns when the first Join completed, or the zero time.
func (w *Worker) JoinedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.joinedAt
}
