// File: scheduler/scheduler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thermal scheduler: runs the worker pool under one of three strategies and,
// for the hybrid strategy, retargets worker affinity from live temperature.

package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/thermostress/api"
	"github.com/momentics/thermostress/internal/concurrency"
	"github.com/momentics/thermostress/telemetry"
)

// Telemetry is the background sampling task driven by the scheduler.
type Telemetry interface {
	Start(ctx context.Context)
	Wait() error
	Rows() int64
}

// Options carries the ambient collaborators of a Scheduler.
type Options struct {
	Metrics api.Metrics
	Log     logrus.FieldLogger
}

// Result summarizes a finished (or aborted) run.
type Result struct {
	Strategy      api.Strategy
	Mode          api.ExecutionMode
	Started       time.Time
	Duration      time.Duration
	WorkerErrors  []error
	Decisions     []Decision
	TelemetryRows int64
	// TelemetryErr is set when the telemetry task died; the thermal history
	// after that point is lost.
	TelemetryErr error
	SensorErrors int
}

// Failed counts workers that ended with a workload failure.
func (r *Result) Failed() int {
	n := 0
	for _, err := range r.WorkerErrors {
		if err != nil {
			n++
		}
	}
	return n
}

// Scheduler owns the control loop of one run. It is single-use.
type Scheduler struct {
	cfg       Config
	pool      *concurrency.Pool
	sampler   api.TemperatureSampler
	telemetry Telemetry
	stop      *telemetry.StopSignal
	metrics   api.Metrics
	log       logrus.FieldLogger
	journal   *journal

	mu           sync.Mutex
	mode         api.ExecutionMode
	hyst         Hysteresis
	tick         int
	sensorErrors int
	started      time.Time
}

// New validates cfg and assembles a Scheduler. sampler is polled directly by
// the hybrid loop, independently of the telemetry task.
func New(cfg Config, pool *concurrency.Pool, sampler api.TemperatureSampler, tel Telemetry, stop *telemetry.StopSignal, opts Options) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pool == nil || tel == nil || stop == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "scheduler needs a pool, telemetry and a stop signal")
	}
	if cfg.Strategy == api.StrategyHybrid && sampler == nil {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "hybrid strategy needs a temperature sampler")
	}
	if opts.Metrics == nil {
		opts.Metrics = api.NopMetrics{}
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Scheduler{
		cfg:       cfg,
		pool:      pool,
		sampler:   sampler,
		telemetry: tel,
		stop:      stop,
		metrics:   opts.Metrics,
		log:       log.WithFields(logrus.Fields{"component": "scheduler", "strategy": string(cfg.Strategy)}),
		journal:   newJournal(cfg.HistoryLimit),
	}
	if cfg.Strategy == api.StrategyHybrid {
		s.hyst, _ = NewHysteresis(cfg.TMin, cfg.TMax)
	}
	return s, nil
}

// Mode returns the execution mode currently applied to the pool.
func (s *Scheduler) Mode() api.ExecutionMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns a copy of the hysteresis flags.
func (s *Scheduler) State() Hysteresis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hyst
}

// Ticks returns the number of control ticks executed so far.
func (s *Scheduler) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// History returns the journaled transitions, oldest first.
func (s *Scheduler) History() []Decision {
	return s.journal.snapshot()
}

// Run executes the configured strategy until every worker has terminated or
// ctx is cancelled. Only a worker launch failure or cancellation is returned
// as an error; workload and telemetry failures are reported in the Result.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()
	s.log.WithFields(logrus.Fields{
		"workers": s.cfg.Workers,
		"cores":   s.cfg.Cores.String(),
	}).Info("run started")

	var err error
	switch s.cfg.Strategy {
	case api.StrategySequential:
		err = s.runSequential(ctx)
	case api.StrategyHybrid:
		err = s.runHybrid(ctx)
	default:
		err = s.runConcurrent(ctx)
	}
	return s.result(), err
}

// runConcurrent pins all workers to distinct cores and joins them.
func (s *Scheduler) runConcurrent(ctx context.Context) error {
	s.telemetry.Start(ctx)
	s.setMode(api.ModeConcurrent)
	if err := s.launchAll(ctx, DistinctAssignment(s.cfg.Cores, s.cfg.Workers)); err != nil {
		return err
	}
	for _, w := range s.pool.Workers() {
		if err := s.join(ctx, w); err != nil {
			return err
		}
	}
	return s.finish()
}

// runSequential runs one worker at a time on the shared core.
func (s *Scheduler) runSequential(ctx context.Context) error {
	s.telemetry.Start(ctx)
	s.setMode(api.ModeSequential)
	assignment := SequentialAssignment(s.cfg.SharedCoreIndex(), s.cfg.Workers)
	for i := 0; i < s.cfg.Workers; i++ {
		if err := ctx.Err(); err != nil {
			return s.abort(err)
		}
		w, err := s.pool.Start(ctx, i, assignment[i])
		if err != nil {
			return s.launchFailed(ctx, err)
		}
		if err := s.join(ctx, w); err != nil {
			return err
		}
	}
	return s.finish()
}

// runHybrid is the hysteresis control loop.
func (s *Scheduler) runHybrid(ctx context.Context) error {
	base := DistinctAssignment(s.cfg.Cores, s.cfg.Workers)
	collapsed := CollapseAssignment(s.cfg.Collapse, s.cfg.Cores, s.cfg.Workers)

	s.telemetry.Start(ctx)
	s.setMode(api.ModeConcurrent)
	if err := s.launchAll(ctx, base); err != nil {
		return err
	}

	if !sleep(ctx, s.cfg.SettleDelay) {
		return s.abort(ctx.Err())
	}
	for s.pool.AnyAlive() {
		s.controlTick(ctx, base, collapsed)
		if !sleep(ctx, s.cfg.PollInterval) {
			return s.abort(ctx.Err())
		}
	}
	return s.finish()
}

// controlTick samples temperature once, decides at most one transition and
// then re-pins every live worker that is off the current mode's assignment.
// Flags are committed at decision time; pins that fail are reconciled on the
// following ticks.
func (s *Scheduler) controlTick(ctx context.Context, base, collapsed []api.CoreSet) {
	s.mu.Lock()
	tick := s.tick
	s.tick++
	s.mu.Unlock()

	action := ActionNone
	temp, ok := s.sample(ctx, tick)
	if ok {
		s.mu.Lock()
		action = s.hyst.Observe(temp)
		s.mu.Unlock()
	}
	if ctx.Err() != nil {
		return
	}

	target, mode := base, api.ModeConcurrent
	if s.State().HotApplied {
		target, mode = collapsed, api.CollapsedMode(s.cfg.Collapse)
	}
	failed := s.reconcile(target, action != ActionNone)

	if action == ActionNone {
		if failed > 0 {
			s.log.WithFields(logrus.Fields{"tick": tick, "failed": failed}).Warn("workers still off assignment")
		}
		return
	}
	s.setMode(mode)
	s.metrics.RecordAffinityAction(action.String())
	s.journal.add(Decision{
		Tick:        tick,
		Elapsed:     time.Since(s.started),
		Temperature: temp,
		Action:      action,
		Mode:        mode,
		Failed:      failed,
	})
	entry := s.log.WithFields(logrus.Fields{
		"tick":   tick,
		"temp":   temp,
		"action": action.String(),
		"mode":   string(mode),
	})
	if failed > 0 {
		entry.WithField("failed", failed).Warn("transition incomplete, retrying next tick")
	} else {
		entry.Info("affinity transition applied")
	}

	if s.cfg.SwitchCooldown > 0 {
		sleep(ctx, s.cfg.SwitchCooldown)
	}
}

// sample reads and aggregates one temperature. A failed read is counted and
// reported as !ok.
func (s *Scheduler) sample(ctx context.Context, tick int) (float64, bool) {
	temps, err := s.sampler.ReadTemperatures(ctx)
	if err == nil && len(temps) == 0 {
		err = api.NewError(api.ErrCodeSensorUnavailable, "sensor returned no readings")
	}
	if err != nil {
		if ctx.Err() != nil {
			return 0, false
		}
		s.mu.Lock()
		s.sensorErrors++
		s.mu.Unlock()
		s.metrics.RecordSensorError()
		s.log.WithError(err).WithField("tick", tick).Warn("temperature read failed, skipping decision")
		return 0, false
	}
	temp, _ := s.cfg.Aggregation.Apply(temps)
	s.metrics.RecordTemperature(temp)
	s.log.WithFields(logrus.Fields{"tick": tick, "temp": temp}).Debug("control tick")
	return temp, true
}

// reconcile pins live workers to target and returns the number of pins that
// failed. A transition pins every worker; otherwise only workers whose cores
// differ from target are touched.
func (s *Scheduler) reconcile(target []api.CoreSet, all bool) int {
	failed := 0
	for _, w := range s.pool.Workers() {
		want := target[w.Index()]
		if !w.IsAlive() || (!all && w.Cores().Equal(want)) {
			continue
		}
		if err := s.pool.Pin(w, want); err != nil {
			failed++
		}
	}
	return failed
}

// launchAll starts one worker per assignment entry.
func (s *Scheduler) launchAll(ctx context.Context, assignment []api.CoreSet) error {
	for i := 0; i < s.cfg.Workers; i++ {
		if _, err := s.pool.Start(ctx, i, assignment[i]); err != nil {
			return s.launchFailed(ctx, err)
		}
	}
	s.metrics.RecordWorkersAlive(s.pool.AliveCount())
	return nil
}

// join waits for w, giving up only when ctx is cancelled.
func (s *Scheduler) join(ctx context.Context, w *concurrency.Worker) error {
	select {
	case <-w.Done():
		_ = s.pool.Join(w)
		return nil
	case <-ctx.Done():
		return s.abort(ctx.Err())
	}
}

// finish stops telemetry once every worker has terminated, then reaps them.
func (s *Scheduler) finish() error {
	if s.stop.Set() {
		s.log.Debug("stop signal raised")
	}
	if err := s.telemetry.Wait(); err != nil {
		s.log.WithError(err).Warn("telemetry stopped early, thermal history of this run is incomplete")
	}
	s.pool.JoinAll()
	s.metrics.RecordWorkersAlive(0)
	s.log.WithField("elapsed", time.Since(s.started)).Info("run finished")
	return nil
}

// launchFailed handles a worker that could not be started at all. Workers
// already running are waited for, never killed, before the run is ended.
func (s *Scheduler) launchFailed(ctx context.Context, err error) error {
	s.log.WithError(err).Error("worker launch failed, ending run")
	for _, w := range s.pool.Workers() {
		if jerr := s.join(ctx, w); jerr != nil {
			return errors.Join(err, jerr)
		}
	}
	s.stop.Set()
	if terr := s.telemetry.Wait(); terr != nil {
		s.log.WithError(terr).Warn("telemetry stopped early")
	}
	return err
}

// abort ends the run on cancellation. The stop signal stays unset because
// workers may still be running; the telemetry task exits on ctx itself.
func (s *Scheduler) abort(err error) error {
	s.log.WithError(err).Warn("run aborted")
	_ = s.telemetry.Wait()
	return err
}

func (s *Scheduler) setMode(mode api.ExecutionMode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()
	s.metrics.RecordMode(mode)
}

func (s *Scheduler) result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Result{
		Strategy:      s.cfg.Strategy,
		Mode:          s.mode,
		Started:       s.started,
		Duration:      time.Since(s.started),
		Decisions:     s.journal.snapshot(),
		TelemetryRows: s.telemetry.Rows(),
		SensorErrors:  s.sensorErrors,
	}
	for _, w := range s.pool.Workers() {
		if w.IsAlive() {
			r.WorkerErrors = append(r.WorkerErrors, nil)
			continue
		}
		r.WorkerErrors = append(r.WorkerErrors, w.Join())
	}
	// every exit path has already waited for the telemetry task
	r.TelemetryErr = s.telemetry.Wait()
	return r
}

// sleep waits d or until ctx is done; it reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
