package queuectl

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/AdvikNarendran/queueCtl-Flam/config"
	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

// Queue is the single entry point a CLI or long-running process embeds: a
// Store bound to one or more backing Workers, sized and tuned from a
// Config. It owns id generation and default wiring so callers never touch
// job.New or BackoffConfig directly.
type Queue struct {
	store Store
	clock Clock
	cfg   *config.Config
	pool  *Pool
}

// NewQueue builds a Queue around store and cfg. clock may be nil, in which
// case SystemClock is used. log may be nil, in which case slog.Default is
// used.
func NewQueue(store Store, cfg *config.Config, clock Clock, log *slog.Logger) *Queue {
	if clock == nil {
		clock = SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	poolCfg := PoolConfig{
		WorkerConfig: WorkerConfig{
			PollInterval: cfg.PollInterval(),
			StaleLock:    cfg.StaleLockSeconds(),
			Backoff: BackoffConfig{
				BackoffBase: cfg.BackoffBase(),
				MaxInterval: time.Hour,
			},
		},
	}
	return &Queue{
		store: store,
		clock: clock,
		cfg:   cfg,
		pool:  NewPool("worker", store, clock, poolCfg, log),
	}
}

// EnqueueOptions customizes a single Enqueue call. The zero value enqueues
// an immediately-eligible job with the Config's default MaxRetries and no
// execution timeout.
type EnqueueOptions struct {
	// ID overrides the generated job id. Leave empty to let Enqueue
	// generate one with uuid.NewString, mirroring the source's
	// generate_id.
	ID string
	// MaxRetries overrides the Config default for this job only.
	MaxRetries uint32
	// RunAt delays eligibility until this time. Nil means immediately
	// eligible.
	RunAt *time.Time
	// Timeout bounds a single execution attempt. Nil means unbounded.
	Timeout *time.Duration
}

// Enqueue durably adds command as a new Pending job and returns its id.
func (q *Queue) Enqueue(ctx context.Context, command string, opts EnqueueOptions) (string, error) {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = q.cfg.MaxRetries()
	}
	j := job.New(id, command, maxRetries, opts.Timeout, opts.RunAt)
	if err := q.store.Add(ctx, j); err != nil {
		return "", err
	}
	return id, nil
}

// List enumerates jobs, optionally filtered by state (job.Unknown for no
// filter).
func (q *Queue) List(ctx context.Context, state job.State) ([]*job.Job, error) {
	return q.store.List(ctx, state)
}

// Stats returns a count of jobs per state.
func (q *Queue) Stats(ctx context.Context) (map[job.State]int64, error) {
	return q.store.Stats(ctx)
}

// Requeue resets a Dead job back to Pending, clearing its attempt count and
// lock. It fails with ErrNotFound or ErrInvalidState if id is missing or
// not currently Dead.
func (q *Queue) Requeue(ctx context.Context, id string) error {
	return q.store.Requeue(ctx, id)
}

// Start spawns the Config's configured worker count, all using shellMode
// for command invocation, and begins claiming jobs.
func (q *Queue) Start(ctx context.Context, shellMode bool) error {
	return q.pool.Start(ctx, q.cfg.WorkerCount(), shellMode)
}

// Stop signals all workers to stop and waits for them to join.
func (q *Queue) Stop() error {
	return q.pool.Stop()
}

// ActiveWorkers returns the number of workers currently started.
func (q *Queue) ActiveWorkers() int {
	return q.pool.ActiveCount()
}
