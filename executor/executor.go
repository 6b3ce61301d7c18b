// Package executor runs one shell/process command per Job in a child
// process, enforcing a wall-clock timeout and capturing bounded output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"
)

var (
	// ErrSpawn indicates the child process could not be started: the
	// program does not exist, is not permitted to run, or (in tokenized
	// mode) the command line could not be split into argv.
	ErrSpawn = errors.New("spawn error")

	// ErrTimeout indicates the command exceeded its configured timeout
	// and was terminated.
	ErrTimeout = errors.New("execution timeout")

	// ErrCanceled indicates the command was terminated because the
	// Executor's Cancel method was called (worker shutdown).
	ErrCanceled = errors.New("execution canceled")
)

// maxCapturedBytes bounds how much of stdout/stderr is retained per
// stream. Output beyond the cap is dropped and a truncation marker is
// appended.
const maxCapturedBytes = 64 * 1024

// killGrace is how long a timed-out or canceled child is given to exit
// after SIGTERM before it is force-killed.
const killGrace = 5 * time.Second

// Result is the outcome of one successfully spawned and awaited command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Output renders Result the way it is stored on Job.Output: the captured
// stdout/stderr on a normal (including non-zero) exit.
func (r Result) Output() string {
	return fmt.Sprintf("STDOUT:\n%s\nSTDERR:\n%s", r.Stdout, r.Stderr)
}

// Executor spawns and supervises a single child process at a time. Only
// one command may be in flight per Executor; Cancel signals whichever one
// is currently running.
type Executor struct {
	mu       sync.Mutex
	cmd      *exec.Cmd
	canceled chan struct{}
}

// New creates an idle Executor.
func New() *Executor {
	return &Executor{}
}

// Run executes command and waits for it to finish, to be canceled via
// Cancel, or to exceed timeout (0 means no limit).
//
// shellMode selects invocation style: true runs the command through "sh
// -c", false tokenizes it into argv via shellwords and execs the first
// token directly. Tokenized mode is the safer default; shell mode is a
// known footgun (word-splitting, injection via unsanitized input) kept
// only for callers that explicitly opt in.
//
// On timeout, the child is sent SIGTERM; if it has not exited within
// killGrace, it is force-killed. Run returns ErrTimeout in both cases.
// If the child cannot be started at all, Run returns ErrSpawn. If Cancel
// is called while the child is running, Run returns ErrCanceled.
func (e *Executor) Run(ctx context.Context, command string, timeout time.Duration, shellMode bool) (Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	name, args, err := splitCommand(command, shellMode)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	cmd := exec.Command(name, args...)
	var stdout, stderr boundedBuffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	canceled := make(chan struct{})
	e.mu.Lock()
	e.cmd = cmd
	e.canceled = canceled
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cmd = nil
		e.canceled = nil
		e.mu.Unlock()
	}()

	waitErr := e.wait(runCtx, cmd, canceled)
	if waitErr != nil {
		return Result{}, waitErr
	}

	return Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

func (e *Executor) wait(ctx context.Context, cmd *exec.Cmd, canceled chan struct{}) error {
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		select {
		case <-canceled:
			return ErrCanceled
		default:
		}
		if err != nil {
			if _, ok := err.(*exec.ExitError); !ok {
				return fmt.Errorf("%w: %v", ErrSpawn, err)
			}
		}
		return nil
	case <-canceled:
		// Cancel was called explicitly: report ErrCanceled regardless of
		// how the child actually exited (it may have already died from
		// the signal Cancel sent before this case was even selected).
		terminated := terminate(cmd, done)
		return combineOutcome(ErrCanceled, terminated)
	case <-ctx.Done():
		terminated := terminate(cmd, done)
		if ctx.Err() == context.Canceled {
			return combineOutcome(ErrCanceled, terminated)
		}
		return combineOutcome(ErrTimeout, terminated)
	}
}

func combineOutcome(primary error, terminated bool) error {
	if !terminated {
		return fmt.Errorf("%w: grace period exceeded, process force-killed", primary)
	}
	return primary
}

// terminate signals the process to stop and waits up to killGrace for a
// graceful exit before force-killing it. It returns true if the process
// exited within the grace period.
func terminate(cmd *exec.Cmd, done chan error) bool {
	if cmd.Process != nil {
		_ = cmd.Process.Signal(exitSignal())
	}
	select {
	case <-done:
		return true
	case <-time.After(killGrace):
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return false
	}
}

// Cancel signals the in-flight child, if any, causing Run to return
// ErrCanceled. It is safe to call Cancel when no command is running, and
// safe to call more than once for the same command.
func (e *Executor) Cancel() {
	e.mu.Lock()
	cmd := e.cmd
	canceled := e.canceled
	if cmd == nil || cmd.Process == nil {
		e.mu.Unlock()
		return
	}
	select {
	case <-canceled:
		// already canceled
	default:
		close(canceled)
	}
	e.mu.Unlock()
	_ = cmd.Process.Signal(exitSignal())
}

func splitCommand(command string, shellMode bool) (string, []string, error) {
	if shellMode {
		return "sh", []string{"-c", command}, nil
	}
	parser := shellwords.NewParser()
	tokens, err := parser.Parse(strings.TrimSpace(command))
	if err != nil {
		return "", nil, err
	}
	if len(tokens) == 0 {
		return "", nil, errors.New("empty command")
	}
	return tokens[0], tokens[1:], nil
}

// boundedBuffer caps how many bytes are retained from a stream, appending
// a truncation marker the first time the cap is exceeded.
type boundedBuffer struct {
	buf       bytes.Buffer
	truncated bool
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if b.truncated {
		return n, nil
	}
	remaining := maxCapturedBytes - b.buf.Len()
	if remaining <= 0 {
		b.truncated = true
		b.buf.WriteString("\n...[truncated]")
		return n, nil
	}
	if len(p) > remaining {
		b.buf.Write(p[:remaining])
		b.truncated = true
		b.buf.WriteString("\n...[truncated]")
		return n, nil
	}
	b.buf.Write(p)
	return n, nil
}

func (b *boundedBuffer) String() string {
	return b.buf.String()
}
