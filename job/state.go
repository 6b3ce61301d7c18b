package job

import "fmt"

// State represents the current lifecycle state of a Job.
//
// The state machine is:
//
//	Pending    -> Processing
//	Processing -> Completed
//	Processing -> Failed    (retriable failure, scheduled via NextRetryAt)
//	Processing -> Dead      (retries exhausted)
//	Failed     -> Processing
//	Dead       -> Pending   (explicit Requeue)
//
// A Pending job whose RunAt is still in the future is never claimed, so
// there is no Processing -> Pending transition.
//
// Unknown is reserved as a zero value and may be used to indicate
// an unspecified or invalid state in filtering contexts.
type State uint8

const (
	// Unknown represents an unspecified or invalid job state.
	// It is the zero value of State.
	Unknown State = iota

	// Pending indicates that the job is available for claiming.
	// A Pending job may have a future RunAt, delaying execution.
	Pending

	// Processing indicates that the job has been claimed and is currently
	// locked by a worker.
	Processing

	// Failed indicates a retriable execution failure. The job becomes
	// eligible again once NextRetryAt has passed.
	Failed

	// Completed indicates successful execution. Terminal.
	Completed

	// Dead indicates that retries are exhausted. Terminal until Requeue.
	Dead
)

func stateToString(s State) string {
	switch s {
	case Pending:
		return "pending"
	case Processing:
		return "processing"
	case Failed:
		return "failed"
	case Completed:
		return "completed"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

func stateFromString(s string) (State, error) {
	switch s {
	case "pending":
		return Pending, nil
	case "processing":
		return Processing, nil
	case "failed":
		return Failed, nil
	case "completed":
		return Completed, nil
	case "dead":
		return Dead, nil
	case "unknown", "":
		return Unknown, nil
	default:
		return 0, fmt.Errorf("unknown state: %s", s)
	}
}

// ParseState converts a string representation of a state into a State value.
func ParseState(s string) (State, error) {
	return stateFromString(s)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(stateToString(s)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	state, err := stateFromString(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// String returns the canonical string representation of the state.
func (s State) String() string {
	return stateToString(s)
}

// Terminal reports whether s is a terminal state (Completed or Dead).
// No further automatic transitions occur from a terminal state; Dead
// jobs may only leave it via an explicit Requeue.
func (s State) Terminal() bool {
	return s == Completed || s == Dead
}
