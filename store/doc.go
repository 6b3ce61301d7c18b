// Package store implements queuectl.Store using github.com/uptrace/bun
// over an embedded SQLite database (modernc.org/sqlite).
//
// # Overview
//
// This is the only storage backend queuectl ships. It provides:
//
//   - durable persistence of jobs
//   - atomic claim-and-lock via a single UPDATE ... RETURNING statement
//   - stale-lock reclamation without a heartbeat
//   - scheduled (run_at) and retry (next_retry_at) eligibility, both
//     folded into the same Claim query
//
// Any type satisfying queuectl.Store may be substituted in its place.
//
// # Concurrency Model
//
// Claim selects and locks a single row in one atomic UPDATE with a
// subquery, so two concurrent Claim calls never return the same job.
// Correct behavior under concurrent workers depends on the database's
// isolation guarantees; SQLite users should enable WAL mode and set a
// busy_timeout, since the driver otherwise surfaces lock contention as
// SQLITE_BUSY errors rather than blocking.
//
// # Schema
//
// InitDB (or MustInitDB) creates the jobs table and four indexes:
// (state, next_retry_at), (state, locked_at), (state, created_at), and
// (run_at). These back Claim's eligibility predicates. InitDB is
// idempotent and transactional, and performs no destructive migrations.
//
// # Limitations
//
// Locking uses a locked_by owner column plus a locked_at timestamp, not
// lease tokens or optimistic version counters. Update additionally
// conditions on locked_by matching the caller, so a worker whose lock
// was reclaimed cannot overwrite the new owner's write. Delivery
// remains at-least-once.
package store
