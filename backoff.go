package queuectl

import (
	"math"
	"time"

	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

// Outcome classifies the result of one execution attempt, as reported by
// the Executor and consumed by decide.
type Outcome int

const (
	// Success means the command exited with status 0.
	Success Outcome = iota
	// NonZeroExit means the command ran to completion but returned a
	// non-zero exit status.
	NonZeroExit
	// Timeout means the command exceeded its per-job timeout and was
	// terminated.
	Timeout
	// Error means the command could not be spawned, or execution was
	// canceled (worker shutdown).
	Error
)

// BackoffConfig controls the Scheduler Policy's retry delay computation.
//
// Delay grows as BackoffBase^attempts seconds, capped at MaxInterval. A cap
// is a deliberate deviation from the Python source, whose backoff grows
// unbounded; see DESIGN.md.
type BackoffConfig struct {
	BackoffBase float64
	MaxInterval time.Duration
}

// DefaultBackoffConfig matches the core's documented defaults
// (backoff_base=2, capped at one hour).
func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		BackoffBase: 2,
		MaxInterval: time.Hour,
	}
}

// Transition is the result the Scheduler Policy computes for one execution
// attempt: the Job's next state, its attempt count, and (for Failed) the
// delay before it becomes eligible again.
type Transition struct {
	State       job.State
	Attempts    uint32
	NextRetryIn time.Duration // only meaningful when State == Failed
}

func (bc BackoffConfig) delay(attempts uint32) time.Duration {
	base := bc.BackoffBase
	if base <= 0 {
		base = 2
	}
	seconds := math.Pow(base, float64(attempts))
	d := time.Duration(seconds * float64(time.Second))
	if bc.MaxInterval > 0 && d > bc.MaxInterval {
		d = bc.MaxInterval
	}
	return d
}

// decide is the pure Scheduler Policy function: given the attempt count
// prior to this execution, the job's retry budget, and the outcome of the
// attempt just made, it computes the next transition.
//
//   - Success -> Completed, Attempts unchanged.
//   - any other outcome -> Attempts+1; Dead if that meets maxRetries,
//     otherwise Failed with an exponential backoff delay.
func decide(attempts, maxRetries uint32, outcome Outcome, cfg BackoffConfig) Transition {
	if outcome == Success {
		return Transition{State: job.Completed, Attempts: attempts}
	}
	next := attempts + 1
	if next >= maxRetries {
		return Transition{State: job.Dead, Attempts: next}
	}
	return Transition{
		State:       job.Failed,
		Attempts:    next,
		NextRetryIn: cfg.delay(next),
	}
}
