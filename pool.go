package queuectl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AdvikNarendran/queueCtl-Flam/internal"
)

// PoolConfig configures a Pool's Workers.
type PoolConfig struct {
	WorkerConfig
	// StopTimeout bounds how long Pool.Stop waits for all Workers to
	// exit. The spec recommends 5s per worker; Pool applies it once to
	// the whole fleet since Workers shut down concurrently.
	StopTimeout time.Duration
}

// Pool supervises a fixed-size set of Workers sharing one Store. Workers
// do not communicate directly; the Store is the only state they share.
//
// Pool has the same strict lifecycle as Worker: Start may only be called
// once per run, and a subsequent Start after Stop is permitted (R3).
type Pool struct {
	lcBase

	store       Store
	clock       Clock
	cfg         PoolConfig
	log         *slog.Logger
	idPrefix    string
	stopTimeout time.Duration

	mu      sync.Mutex
	workers []*Worker
	active  atomic.Int32
}

// NewPool creates a Pool that will run Workers against store.
func NewPool(idPrefix string, store Store, clock Clock, cfg PoolConfig, log *slog.Logger) *Pool {
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = 5 * time.Second
	}
	return &Pool{
		store:       store,
		clock:       clock,
		cfg:         cfg,
		log:         log,
		idPrefix:    idPrefix,
		stopTimeout: stopTimeout,
	}
}

// Start spawns count Workers, all using shellMode for command invocation.
// Start returns ErrDoubleStarted if the pool is already running.
func (p *Pool) Start(ctx context.Context, count int, shellMode bool) error {
	if err := p.tryStart(); err != nil {
		return err
	}

	cfg := p.cfg.WorkerConfig
	cfg.ShellMode = shellMode

	p.mu.Lock()
	p.workers = make([]*Worker, 0, count)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("%s-%d", p.idPrefix, i)
		w := NewWorker(id, p.store, p.clock, cfg, p.log)
		if err := w.Start(ctx); err != nil {
			p.mu.Unlock()
			return err
		}
		p.workers = append(p.workers, w)
		p.active.Add(1)
	}
	p.mu.Unlock()
	return nil
}

func (p *Pool) doStop() internal.DoneChan {
	p.mu.Lock()
	workers := p.workers
	p.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			if err := w.Stop(p.stopTimeout); err != nil {
				p.log.Warn("worker stop failed", "worker", w.ID(), "err", err)
			}
			p.active.Add(-1)
		}(w)
	}
	return internal.WrapWaitGroup(&wg)
}

// Stop signals all Workers to stop and waits for them to join within the
// pool's StopTimeout. Stop returns ErrDoubleStopped if the pool is not
// running.
func (p *Pool) Stop() error {
	err := p.tryStop(p.stopTimeout+time.Second, p.doStop)
	p.mu.Lock()
	p.workers = nil
	p.mu.Unlock()
	return err
}

// ActiveCount returns the number of Workers currently started.
func (p *Pool) ActiveCount() int {
	return int(p.active.Load())
}
