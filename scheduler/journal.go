// File: scheduler/journal.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package scheduler

import (
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/thermostress/api"
)

// Decision records one attempted affinity transition.
type Decision struct {
	Tick        int
	Elapsed     time.Duration
	Temperature float64
	Action      Action
	Mode        api.ExecutionMode
	// Failed counts workers whose pin was rejected; the transition is
	// retried on the next tick when non-zero.
	Failed int
}

// Applied reports whether every pin of the transition succeeded.
func (d Decision) Applied() bool { return d.Failed == 0 }

// journal is a bounded FIFO of decisions; the oldest entries are dropped.
type journal struct {
	mu    sync.Mutex
	q     *queue.Queue
	limit int
}

func newJournal(limit int) *journal {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &journal{q: queue.New(), limit: limit}
}

func (j *journal) add(d Decision) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.q.Add(d)
	for j.q.Length() > j.limit {
		j.q.Remove()
	}
}

func (j *journal) snapshot() []Decision {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Decision, j.q.Length())
	for i := range out {
		out[i] = j.q.Get(i).(Decision)
	}
	return out
}
