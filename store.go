package queuectl

import (
	"context"
	"time"

	"github.com/AdvikNarendran/queueCtl-Flam/job"
)

// Store defines the durable persistence contract for the queue. It is the
// only shared mutable state between Workers: every transition a Worker
// makes to a Job is written back through a Store implementation.
//
// Store implementations must provide a single atomic primitive, Claim,
// such that two concurrent Claim calls from distinct workers never return
// the same row. Package store provides a bun/sqlite backed implementation
// using a serializable UPDATE ... RETURNING statement.
type Store interface {
	// Add inserts a new job in the Pending state. It fails with
	// ErrAlreadyExists if a job with the same id already exists.
	Add(ctx context.Context, j *job.Job) error

	// Claim atomically selects at most one eligible job and transitions
	// it to Processing, setting LockedBy=workerID and LockedAt=now.
	//
	// A job is eligible iff all of:
	//
	//   - State is Pending or Failed
	//   - it is unlocked, or its lock is older than staleLock
	//   - NextRetryAt is unset or <= now
	//   - RunAt is unset or <= now
	//
	// Among eligible rows, Pending sorts before Failed, ties broken by
	// ascending CreatedAt.
	//
	// On a storage I/O error, Claim returns (nil, nil): the caller
	// treats it as "nothing to do" and retries on its next poll tick.
	Claim(ctx context.Context, workerID string, now time.Time, staleLock time.Duration) (*job.Job, error)

	// Update writes back a job previously returned by Claim. The caller
	// must still hold the lock (LockedBy == workerID) for the update to
	// apply; otherwise ErrLockLost is returned, signaling that the lock
	// was reclaimed by another worker in the meantime.
	//
	// Update always clears LockedBy/LockedAt, regardless of the resulting
	// state: Update is never used to transition a job into Processing, so
	// the job is never meant to stay locked afterwards. In particular a
	// Failed job becomes reclaimable by Claim as soon as NextRetryAt
	// passes, not after a full staleLock window.
	Update(ctx context.Context, j *job.Job, workerID string) error

	// List enumerates jobs, optionally filtered by state. state ==
	// job.Unknown means no filter.
	List(ctx context.Context, state job.State) ([]*job.Job, error)

	// Stats returns a count of jobs per state.
	Stats(ctx context.Context) (map[job.State]int64, error)

	// Requeue resets a Dead job back to Pending with Attempts=0, clearing
	// its lock and NextRetryAt. It fails with ErrNotFound if the id does
	// not exist, or ErrInvalidState if the job is not currently Dead.
	Requeue(ctx context.Context, id string) error
}
