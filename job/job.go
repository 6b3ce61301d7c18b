// Package job defines the Job type shared by the queue's storage,
// scheduling and execution layers.
package job

import "time"

// Job represents one unit of work: an opaque shell/process command plus
// the delivery state and scheduling metadata needed to run it durably.
//
// CreatedAt is set once at insertion. UpdatedAt is refreshed on every
// state transition.
//
// LockedBy and LockedAt are set together, only while State is Processing.
// NextRetryAt gates eligibility while State is Failed. RunAt gates
// eligibility for delayed jobs while State is Pending.
//
// Job values are snapshots of storage state. Mutating a Job in place does
// not change the underlying queue; transitions happen only through the
// Store's Claim/Update/Requeue operations.
type Job struct {
	ID      string
	Command string

	State    State
	Attempts uint32

	// MaxRetries is the terminal threshold: Attempts never exceeds it and
	// a job becomes Dead once Attempts reaches it after a failure.
	MaxRetries uint32

	CreatedAt time.Time
	UpdatedAt time.Time

	// LockedBy is the id of the worker currently holding the job, or ""
	// if the job is not locked.
	LockedBy string
	LockedAt *time.Time

	NextRetryAt *time.Time
	RunAt       *time.Time

	// Timeout bounds the wall-clock duration of a single execution
	// attempt. Nil means no per-job limit.
	Timeout *time.Duration

	// Output holds the captured stdout/stderr of the last attempt, or an
	// "Error: ..." summary when the attempt could not run to completion.
	Output string
}

// New builds a Job in the Pending state, ready for Store.Add.
//
// New does not generate ids: id is used as given, so the caller supplies
// one (Queue.Enqueue generates one via uuid.NewString when its own caller
// does not). maxRetries must be >= 1.
func New(id, command string, maxRetries uint32, timeout *time.Duration, runAt *time.Time) *Job {
	now := time.Now().UTC()
	j := &Job{
		ID:         id,
		Command:    command,
		State:      Pending,
		MaxRetries: maxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
		Timeout:    timeout,
	}
	if runAt != nil {
		r := runAt.UTC()
		j.RunAt = &r
	} else {
		j.RunAt = &now
	}
	return j
}

// Locked reports whether the job currently holds a worker lock.
func (j *Job) Locked() bool {
	return j.LockedBy != ""
}
