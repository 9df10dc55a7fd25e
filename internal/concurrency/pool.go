// File: internal/concurrency/pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/thermostress/api"
)

// Launcher starts one workload instance.
type Launcher interface {
	Launch(ctx context.Context, index int) (Handle, error)
	// Scope tells what kind of identifier the handles carry.
	Scope() api.AffinityScope
}

// Options tune a Pool.
type Options struct {
	Metrics api.Metrics
	Log     logrus.FieldLogger
}

// Pool launches workers and retargets them on behalf of the scheduler.
type Pool struct {
	launcher Launcher
	affinity api.AffinityController
	metrics  api.Metrics
	log      logrus.FieldLogger

	mu      sync.Mutex
	workers []*Worker
}

// NewPool creates an empty pool.
func NewPool(launcher Launcher, affinity api.AffinityController, opts Options) *Pool {
	if opts.Metrics == nil {
		opts.Metrics = api.NopMetrics{}
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pool{
		launcher: launcher,
		affinity: affinity,
		metrics:  opts.Metrics,
		log:      log.WithField("component", "workerpool"),
	}
}

// Start launches worker index and immediately pins it to cores. A pin failure
// is logged and tolerated; a launch failure is returned as api.ErrLaunchFailure.
func (p *Pool) Start(ctx context.Context, index int, cores api.CoreSet) (*Worker, error) {
	h, err := p.launcher.Launch(ctx, index)
	if err != nil {
		if !errors.Is(err, api.ErrLaunchFailure) {
			err = api.Wrap(api.ErrCodeLaunchFailure, "launch worker", err)
		}
		return nil, err
	}
	w := &Worker{index: index, handle: h, startedAt: time.Now()}
	p.mu.Lock()
	p.workers = append(p.workers, w)
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{"worker": index, "id": h.ID()}).Info("worker started")
	_ = p.Pin(w, cores)
	p.metrics.RecordWorkersAlive(p.AliveCount())
	return w, nil
}

// Pin retargets w to cores. Dead workers are skipped. Failures are logged,
// counted and returned; the recorded assignment changes only on success.
func (p *Pool) Pin(w *Worker, cores api.CoreSet) error {
	if !w.IsAlive() {
		return nil
	}
	if err := p.affinity.Pin(w.ID(), cores); err != nil {
		p.metrics.RecordPinFailure()
		p.log.WithError(err).WithFields(logrus.Fields{
			"worker": w.index,
			"id":     w.ID(),
			"cores":  cores.String(),
		}).Warn("pin failed")
		return err
	}
	w.setCores(cores)
	p.log.WithFields(logrus.Fields{"worker": w.index, "cores": cores.String()}).Debug("worker pinned")
	return nil
}

// Workers returns the launched workers in launch order.
func (p *Pool) Workers() []*Worker {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*Worker(nil), p.workers...)
}

// AliveCount returns the number of running workers.
func (p *Pool) AliveCount() int {
	n := 0
	for _, w := range p.Workers() {
		if w.IsAlive() {
			n++
		}
	}
	return n
}

// AnyAlive reports whether at least one worker is running.
func (p *Pool) AnyAlive() bool {
	for _, w := range p.Workers() {
		if w.IsAlive() {
			return true
		}
	}
	return false
}

// Join waits for w and logs a workload failure without propagating it as fatal.
func (p *Pool) Join(w *Worker) error {
	err := w.Join()
	entry := p.log.WithFields(logrus.Fields{"worker": w.index, "id": w.ID()})
	if err != nil {
		entry.WithError(err).Warn("worker failed")
	} else {
		entry.Info("worker joined")
	}
	p.metrics.RecordWorkersAlive(p.AliveCount())
	return err
}

// JoinAll joins every worker in launch order. The result holds one entry per
// worker, nil for clean exits.
func (p *Pool) JoinAll() []error {
	workers := p.Workers()
	errs := make([]error, len(workers))
	for i, w := range workers {
		errs[i] = p.Join(w)
	}
	return errs
}
