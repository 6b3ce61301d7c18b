package queuectl

import (
	"sync/atomic"
	"time"

	"github.com/AdvikNarendran/queueCtl-Flam/internal"
)

const (
	stopped = iota
	started
)

// lcBase gives Worker and Pool a strict start/stop lifecycle: Start may
// only succeed once per run, Stop only while running, and Stop blocks for
// at most a given timeout before reporting ErrStopTimeout.
type lcBase struct {
	state atomic.Int32
}

func (lb *lcBase) tryStart() error {
	if !lb.state.CompareAndSwap(stopped, started) {
		return ErrDoubleStarted
	}
	return nil
}

func (lb *lcBase) tryStop(timeout time.Duration, df internal.DoneFunc) error {
	if !lb.state.CompareAndSwap(started, stopped) {
		return ErrDoubleStopped
	}
	done := df()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}
