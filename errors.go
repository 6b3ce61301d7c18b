package queuectl

import (
	"errors"
)

var (
	// ErrAlreadyExists is returned by Store.Add when a job with the same
	// id has already been inserted.
	ErrAlreadyExists = errors.New("job already exists")

	// ErrNotFound is returned by Store.Requeue when no job with the given
	// id exists.
	ErrNotFound = errors.New("job not found")

	// ErrInvalidState is returned by Store.Requeue when the target job is
	// not currently Dead.
	ErrInvalidState = errors.New("job is not in a requeueable state")

	// ErrLockLost is returned by Store.Update when the caller no longer
	// holds the job's lock (it expired and was reclaimed by another
	// worker, or the job already left Processing).
	ErrLockLost = errors.New("job lock lost")

	// ErrDoubleStarted is returned when Start is called on a Worker or
	// Pool that is already running.
	ErrDoubleStarted = errors.New("already started")

	// ErrDoubleStopped is returned when Stop is called on a Worker or
	// Pool that is not running.
	ErrDoubleStopped = errors.New("already stopped")

	// ErrStopTimeout is returned when a Worker or Pool fails to shut down
	// within the requested deadline. Background goroutines may still be
	// terminating.
	ErrStopTimeout = errors.New("stop timeout")
)

// StorageError wraps an underlying persistence I/O failure so callers can
// distinguish it from the core's own sentinel errors while still reaching
// the cause via errors.Unwrap/errors.Is.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage error during " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err as a StorageError attributed to op. Store
// implementations use this to surface persistence I/O failures from
// operations other than Claim (which swallows them per §7 of the spec).
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
