package queuectl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AdvikNarendran/queueCtl-Flam/executor"
	"github.com/AdvikNarendran/queueCtl-Flam/internal"
	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

// WorkerConfig defines the runtime behavior of a Worker.
//
// PollInterval is how long a Worker sleeps after finding nothing to claim.
// StaleLock is how old a Processing lock must be before Claim reclaims it.
// ShellMode selects shell-invoked ("sh -c") versus tokenized argv
// execution for every command this Worker runs.
// Backoff controls the retry delay applied on failure.
type WorkerConfig struct {
	PollInterval time.Duration
	StaleLock    time.Duration
	ShellMode    bool
	Backoff      BackoffConfig
}

// Worker is one independent execution context with a unique id. It
// repeatedly claims a job from a Store, runs it through an Executor, and
// writes the resulting transition back, one job at a time.
//
// Worker has a strict lifecycle: Start may only be called once per run,
// and Stop cancels any in-flight command before waiting for the claim
// loop to exit.
type Worker struct {
	lcBase

	id    string
	store Store
	clock Clock
	exec  *executor.Executor
	pool  *internal.WorkerPool[*job.Job]
	log   *slog.Logger

	interval  time.Duration
	staleLock time.Duration
	shellMode bool
	backoff   BackoffConfig

	pullDone internal.DoneChan
	pullStop context.CancelFunc
}

// NewWorker creates a Worker bound to the given Store and id. The worker
// is not started automatically; call Start.
func NewWorker(id string, store Store, clock Clock, cfg WorkerConfig, log *slog.Logger) *Worker {
	if clock == nil {
		clock = SystemClock()
	}
	return &Worker{
		id:        id,
		store:     store,
		clock:     clock,
		exec:      executor.New(),
		pool:      internal.NewWorkerPool[*job.Job](1, 1, log),
		log:       log,
		interval:  cfg.PollInterval,
		staleLock: cfg.StaleLock,
		shellMode: cfg.ShellMode,
		backoff:   cfg.Backoff,
	}
}

// ID returns the worker's unique identifier.
func (w *Worker) ID() string {
	return w.id
}

func (w *Worker) claimLoop(ctx context.Context) {
	for {
		j, err := w.store.Claim(ctx, w.id, w.clock.Now(), w.staleLock)
		if err != nil {
			w.log.Error("claim failed", "worker", w.id, "err", err)
		}
		if j != nil {
			if !w.pool.Push(j) {
				return
			}
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.interval):
		}
	}
}

func (w *Worker) run(ctx context.Context, j *job.Job) {
	var timeout time.Duration
	if j.Timeout != nil {
		timeout = *j.Timeout
	}

	result, err := w.exec.Run(ctx, j.Command, timeout, w.shellMode)

	var outcome Outcome
	switch {
	case err == nil && result.ExitCode == 0:
		outcome = Success
		j.Output = result.Output()
	case err == nil:
		outcome = NonZeroExit
		j.Output = result.Output()
	case errors.Is(err, executor.ErrTimeout):
		outcome = Timeout
		j.Output = "Error: timeout: " + err.Error()
	default:
		outcome = Error
		j.Output = "Error: " + err.Error()
	}

	transition := decide(j.Attempts, j.MaxRetries, outcome, w.backoff)
	j.State = transition.State
	j.Attempts = transition.Attempts
	if transition.State == job.Failed {
		next := w.clock.Now().Add(transition.NextRetryIn)
		j.NextRetryAt = &next
	} else {
		j.NextRetryAt = nil
	}

	if err := w.store.Update(ctx, j, w.id); err != nil {
		w.log.Error("update failed", "worker", w.id, "job", j.ID, "err", err)
	}
}

// Start begins the worker's claim loop under ctx. Start returns
// ErrDoubleStarted if the worker is already running.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	w.pool.Start(ctx, w.run)

	pullCtx, cancel := context.WithCancel(ctx)
	w.pullStop = cancel
	w.pullDone = make(internal.DoneChan)
	go func() {
		defer close(w.pullDone)
		w.claimLoop(pullCtx)
	}()
	return nil
}

func (w *Worker) doStop() internal.DoneChan {
	w.exec.Cancel()
	w.pullStop()
	poolDone := w.pool.Stop()
	return internal.Combine(w.pullDone, poolDone)
}

// Stop signals the claim loop and any in-flight command to stop, then
// waits up to timeout for them to exit. Stop returns ErrDoubleStopped if
// the worker is not running, or ErrStopTimeout if shutdown does not
// complete within timeout.
func (w *Worker) Stop(timeout time.Duration) error {
	return w.tryStop(timeout, w.doStop)
}
