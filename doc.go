// Package queuectl provides a durable, single-host job queue for running
// shell/process commands with worker pools, retries with exponential
// backoff, delayed scheduling, per-job timeouts, and a dead-letter queue.
//
// # Overview
//
// queuectl models a durable queue of commands, distinct from a generic
// message queue: each Job (package job) is a shell command plus retry and
// scheduling metadata. Jobs are persisted through a Store, claimed
// atomically by Workers, executed by an Executor (package executor) in a
// child process, and transitioned by the Scheduler Policy (decide) based on
// the execution outcome.
//
// # Delivery Semantics
//
// A job may be executed more than once: a crashed worker's lock is
// eventually reclaimed via stale-lock recovery, and the rescued job is
// claimed again. Commands should therefore be idempotent where possible;
// queuectl does not guarantee exactly-once execution.
//
// # Lease Model
//
// When a job is claimed, it transitions from Pending (or Failed) to
// Processing and receives a worker id and lock timestamp. While locked, the
// job is invisible to other workers unless the lock grows older than
// stale_lock_seconds, at which point it is eligible for reclamation by
// Claim.
//
// # State Machine
//
// Jobs follow this lifecycle:
//
//	Pending    -> Processing
//	Processing -> Completed       [terminal]
//	Processing -> Failed          (retriable; eligible again after NextRetryAt)
//	Processing -> Dead            [terminal until Requeue]
//	Dead       -> Pending         (explicit Requeue)
//
// Claim never returns a job whose run_at is still in the future, so a
// claimed job always executes.
//
// # Retry Policy
//
// Retry behavior is controlled by BackoffConfig. When a command fails
// (non-zero exit, timeout, or spawn error), decide computes whether the job
// is retried with an exponential backoff delay or moved to Dead once
// MaxRetries is reached.
//
// # Interfaces
//
// queuectl defines the following primary interfaces:
//
//	Store — durable persistence and atomic claim/update/requeue
//	Clock — injectable time source
//
// Worker and Pool coordinate claiming, dispatching, retrying and completing
// jobs on top of a Store implementation; package store provides a bun/sqlite
// backed one.
//
// # Concurrency Model
//
// Each Worker processes jobs sequentially: only one child process is ever
// in flight per Worker. Pool supervises a fixed number of independent
// Workers, each with its own claim loop; the Store is the only state shared
// between them.
//
// Shutdown is graceful: in-flight commands are signaled to terminate and
// given a grace period before being force-killed, subject to a configurable
// deadline on Pool.Stop / Worker.Stop.
//
// # Storage Expectations
//
// Store implementations must provide atomic claim-and-lock semantics
// (no two concurrent Claim calls may return the same job) and durable
// writes. queuectl does not manage connection pooling or schema migration;
// see package store.
package queuectl
